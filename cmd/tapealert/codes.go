package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/revpol/tapealert/internal/tapealert"
)

var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "List the TapeAlert flag table",
	Long: `Prints all 64 TapeAlert flags with their code, severity, name, and
description, as defined by the SSC TapeAlert log page.`,
	RunE: runCodes,
}

func init() {
	codesCmd.Flags().StringP("output", "o", "table", "Output format: table, json")
}

func runCodes(cmd *cobra.Command, args []string) error {
	outputFmt, _ := cmd.Flags().GetString("output")

	flags := tapealert.Flags()
	if outputFmt == "json" {
		return tapealert.PrintJSON(os.Stdout, flags)
	}
	tapealert.PrintTable(os.Stdout, flags)
	return nil
}
