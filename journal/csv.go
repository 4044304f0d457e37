package journal

import (
	"bytes"
	"encoding/csv"
	"io"
)

// ExportFilename is the attachment name used for CSV exports.
const ExportFilename = "filtered_trade_export.csv"

var csvHeader = []string{"Symbol", "Entry", "SL", "TP", "RR Ratio", "Date"}

// WriteCSV writes trades as CSV with a header row.
func WriteCSV(w io.Writer, trades []Trade) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range trades {
		err := cw.Write([]string{
			t.Symbol,
			t.Entry.String(),
			t.SL.String(),
			t.TP.String(),
			t.RRString(),
			t.DateString(),
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportCSV renders trades into an in-memory CSV file.
func ExportCSV(trades []Trade) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, trades); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
