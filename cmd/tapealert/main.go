package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/revpol/tapealert/internal/version"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	// Logger
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tapealert [flags] <device>",
	Short: "Report tape drive TapeAlert flags to the Bacula SD",
	Long: `tapealert locates the SCSI generic (sg) node behind a tape drive's
device node, runs tapeinfo against it, and prints one TapeAlert[n] line
per active flag for the Storage Daemon to act on.

sg numbering can change across reboots and hardware rescans, so the
drive's /dev/nst#, /dev/tape/by-id/*, or /dev/tape/by-path/* node is
matched to the current sg node by SCSI address on every run.

Examples:
  tapealert /dev/tape/by-id/scsi-350110a0012345678-nst
  tapealert -l -i 1234 /dev/nst0
  tapealert -t /dev/nst0     # parse built-in sample output, no drive access`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       version.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runCheck,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/tapealert/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.Flags().BoolP("test", "t", false, "Parse built-in sample output instead of touching a drive")
	rootCmd.Flags().BoolP("logging", "l", false, "Append run records to the log file")
	rootCmd.Flags().StringP("logfile", "f", "", "Log file path (default is /opt/bacula/log/tapealert.log)")
	rootCmd.Flags().StringP("email", "e", "", "Email TapeAlert summaries to this address")
	rootCmd.Flags().StringP("jobid", "i", "", "Bacula job id to tag log lines and mail with")

	rootCmd.AddCommand(codesCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
