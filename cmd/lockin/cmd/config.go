package cmd

import (
	"fmt"

	"github.com/rustyeddy/lockin/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage bot configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Secrets (BOT_TOKEN, GOOGLE_CREDENTIALS) are best kept in the environment
or a .env file rather than in the config file.

Examples:
  lockin config init -o lockin.yaml
  lockin config validate -f lockin.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	RunE:  runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "lockin.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Created default configuration: %s\n", configInitOutput)
	fmt.Fprintln(out, "\nSet BOT_TOKEN (and GOOGLE_CREDENTIALS for sheets), then run:")
	fmt.Fprintf(out, "  lockin serve -c %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Configuration valid: %s\n", configValidatePath)
	fmt.Fprintf(out, "  Bot: %s mode, %d workers\n", cfg.Bot.Mode, cfg.Bot.Workers)
	fmt.Fprintf(out, "  Sheets: enabled=%t\n", cfg.Sheets.Enabled)
	fmt.Fprintf(out, "  Journal: %s (recompute on edit: %t)\n", cfg.Journal.Type, cfg.Journal.RecomputeOnEdit)
	fmt.Fprintf(out, "  Risk: max %.1f%%, min RR %.2f\n", cfg.Risk.MaxRiskPct, cfg.Risk.MinRR)
	return nil
}
