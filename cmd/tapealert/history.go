package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/revpol/tapealert/internal/config"
	"github.com/revpol/tapealert/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history [device]",
	Short: "Show recorded drive checks",
	Long: `Prints recent drive checks from the history database, newest first,
optionally filtered to one device.

Examples:
  tapealert history
  tapealert history /dev/nst0
  tapealert history -o json -n 50`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringP("output", "o", "table", "Output format: table, json")
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of checks to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	outputFmt, _ := cmd.Flags().GetString("output")
	limit, _ := cmd.Flags().GetInt("limit")

	device := ""
	if len(args) > 0 {
		device = args[0]
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	db, err := history.New(cfg.History.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	checks, err := db.RecentChecks(device, limit)
	if err != nil {
		return err
	}

	if outputFmt == "json" {
		return history.PrintJSON(os.Stdout, checks)
	}
	history.PrintTable(os.Stdout, checks)
	return nil
}
