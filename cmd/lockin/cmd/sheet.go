package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/rustyeddy/lockin/config"
	"github.com/rustyeddy/lockin/journal"
	"github.com/spf13/cobra"
)

var sheetCmd = &cobra.Command{
	Use:   "sheet",
	Short: "Work with a linked Google Sheet journal",
	Long: `Access a Google Sheet journal with the bot's service account.

Subcommands:
  check  - Verify the service account can open a sheet
  export - Write a sheet's trades as CSV

Examples:
  lockin sheet check --sheet 1AbC...
  lockin sheet export --sheet 1AbC... --symbol EURUSD -o eurusd.csv`,
}

var sheetCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify access to a sheet",
	RunE:  runSheetCheck,
}

var sheetExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a sheet's trades as CSV",
	RunE:  runSheetExport,
}

var (
	sheetID     string
	sheetSymbol string
	sheetDate   string
	sheetOutput string
)

func init() {
	rootCmd.AddCommand(sheetCmd)
	sheetCmd.AddCommand(sheetCheckCmd)
	sheetCmd.AddCommand(sheetExportCmd)

	sheetCmd.PersistentFlags().StringVar(&sheetID, "sheet", "", "spreadsheet ID (required)")
	sheetCmd.MarkPersistentFlagRequired("sheet")

	sheetExportCmd.Flags().StringVar(&sheetSymbol, "symbol", "", "only trades for this symbol")
	sheetExportCmd.Flags().StringVar(&sheetDate, "date", "", "only trades whose date starts with this prefix")
	sheetExportCmd.Flags().StringVarP(&sheetOutput, "output", "o", "", "output file (default stdout)")
}

func loadSheet() (*journal.Sheet, string, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, "", err
	}
	cfg.Sheets.Enabled = true
	s, email, err := openSheets(cfg)
	if err != nil {
		return nil, "", fmt.Errorf("sheets: %w", err)
	}
	return s, email, nil
}

func runSheetCheck(cmd *cobra.Command, args []string) error {
	s, email, err := loadSheet()
	if err != nil {
		return err
	}
	if err := s.Open(cmd.Context(), sheetID); err != nil {
		if errors.Is(err, journal.ErrUnauthorized) {
			return fmt.Errorf("%w: share the sheet with %s as Editor", err, email)
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Sheet %s is accessible by %s\n", sheetID, email)
	return nil
}

func runSheetExport(cmd *cobra.Command, args []string) error {
	if sheetSymbol != "" && sheetDate != "" {
		return fmt.Errorf("use either --symbol or --date, not both")
	}
	s, _, err := loadSheet()
	if err != nil {
		return err
	}

	f := journal.Filter{}
	switch {
	case sheetSymbol != "":
		f = journal.BySymbol(sheetSymbol)
	case sheetDate != "":
		f = journal.ByDatePrefix(sheetDate)
	}
	trades, err := s.List(cmd.Context(), sheetID, f)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if sheetOutput != "" {
		file, err := os.Create(sheetOutput)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer file.Close()
		out = file
	}
	if err := journal.WriteCSV(out, trades); err != nil {
		return err
	}
	if sheetOutput != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d trades to %s\n", len(trades), sheetOutput)
	}
	return nil
}
