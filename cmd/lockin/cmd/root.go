package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lockin",
	Short: "Lock-In Pal: forex risk calculator and trade journal bot",
	Long: `Lock-In Pal is a Telegram bot and CLI for forex traders.

It provides tools for:
  - Calculating trade risk, reward and RR ratio before entering
  - Journaling trades locally or in a linked Google Sheet
  - Editing, deleting and exporting journal entries as CSV
  - One-shot trade reminders

Run "lockin serve" to start the bot.`,
	SilenceUsage: true,
}

var configPath string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (YAML or JSON); defaults plus environment when empty")
}
