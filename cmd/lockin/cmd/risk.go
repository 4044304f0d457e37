package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/rustyeddy/lockin/risk"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var riskCmd = &cobra.Command{
	Use:   "risk [SYMBOL] capital:N entry:N sl:N tp:N lot:N",
	Short: "Calculate risk, reward and RR for a trade",
	Long: `Calculate the risk and reward of a trade before entering it.

Arguments use the same key:value form as the bot's /riskcalc command.
With --interactive the values are prompted for instead.

Examples:
  lockin risk EURUSD capital:1000 entry:1.1000 sl:1.0950 tp:1.1100 lot:0.1
  lockin risk -i`,
	RunE: runRisk,
}

var (
	riskInteractive bool
	riskMaxPct      float64
	riskMinRR       float64
)

func init() {
	rootCmd.AddCommand(riskCmd)
	riskCmd.Flags().BoolVarP(&riskInteractive, "interactive", "i", false, "prompt for trade values")
	riskCmd.Flags().Float64Var(&riskMaxPct, "max-risk", risk.DefaultPolicy().MaxRiskPct, "warn above this percent of capital")
	riskCmd.Flags().Float64Var(&riskMinRR, "min-rr", risk.DefaultPolicy().MinRR, "warn below this RR ratio")
}

var (
	riskTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			MarginBottom(1)

	riskBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 2)

	riskLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Width(14)

	riskOKStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	riskWarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B")).
			Bold(true)
)

func runRisk(cmd *cobra.Command, args []string) error {
	var (
		symbol string
		in     risk.Inputs
		err    error
	)
	if riskInteractive {
		symbol, in, err = promptTrade()
	} else {
		symbol, in, err = risk.ParseTrade(args)
	}
	if err != nil {
		return err
	}

	m, err := risk.Compute(in)
	if err != nil {
		return err
	}
	policy := risk.Policy{MaxRiskPct: riskMaxPct, MinRR: riskMinRR}
	renderRisk(cmd.OutOrStdout(), symbol, in, m, policy)
	return nil
}

func renderRisk(w io.Writer, symbol string, in risk.Inputs, m risk.Metrics, p risk.Policy) {
	row := func(label, value string) string {
		return riskLabelStyle.Render(label) + value
	}

	lines := []string{
		row("Capital", "$"+in.Capital.String()),
		row("Entry", in.Entry.String()),
		row("Stop Loss", in.SL.String()),
		row("Take Profit", in.TP.String()),
		row("Lot Size", in.Lot.String()),
		"",
		row("Risk", fmt.Sprintf("$%.2f (%.2f%%, %.1f pips)", m.RiskAmount, m.RiskPercent, m.RiskPips)),
		row("Reward", fmt.Sprintf("$%.2f (%.1f pips)", m.RewardAmount, m.RewardPips)),
		row("RR Ratio", fmt.Sprintf("1:%.2f", m.RRRatio)),
	}
	if lot, ok := risk.MaxLot(in.Capital, in.Entry, in.SL, p.MaxRiskPct); ok {
		lines = append(lines, row("Max Lot", fmt.Sprintf("%s at %g%% risk", lot.StringFixed(2), p.MaxRiskPct)))
	}

	fmt.Fprintln(w, riskTitleStyle.Render("Trade Risk Summary ("+symbol+")"))
	fmt.Fprintln(w, riskBoxStyle.Render(strings.Join(lines, "\n")))

	warnings := risk.Check(p, m)
	if len(warnings) == 0 {
		fmt.Fprintln(w, riskOKStyle.Render("✓ Risk & RR look solid!"))
		return
	}
	for _, warn := range warnings {
		fmt.Fprintln(w, riskWarnStyle.Render("⚠ "+warn.Msg))
	}
}

func promptTrade() (string, risk.Inputs, error) {
	symbol := risk.DefaultSymbol
	if err := survey.AskOne(&survey.Input{
		Message: "Symbol:",
		Default: risk.DefaultSymbol,
	}, &symbol); err != nil {
		return "", risk.Inputs{}, err
	}

	fields := []struct {
		label string
		dst   *decimal.Decimal
	}{
		{"Capital ($):", new(decimal.Decimal)},
		{"Entry price:", new(decimal.Decimal)},
		{"Stop loss:", new(decimal.Decimal)},
		{"Take profit:", new(decimal.Decimal)},
		{"Lot size:", new(decimal.Decimal)},
	}
	for _, f := range fields {
		var raw string
		err := survey.AskOne(&survey.Input{Message: f.label}, &raw,
			survey.WithValidator(survey.Required),
			survey.WithValidator(decimalValidator))
		if err != nil {
			return "", risk.Inputs{}, err
		}
		*f.dst, _ = decimal.NewFromString(strings.TrimSpace(raw))
	}

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		symbol = risk.DefaultSymbol
	}
	return symbol, risk.Inputs{
		Capital: *fields[0].dst,
		Entry:   *fields[1].dst,
		SL:      *fields[2].dst,
		TP:      *fields[3].dst,
		Lot:     *fields[4].dst,
	}, nil
}

func decimalValidator(val interface{}) error {
	s, ok := val.(string)
	if !ok {
		return errors.New("expected text")
	}
	if _, err := decimal.NewFromString(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("%q is not a number", s)
	}
	return nil
}
