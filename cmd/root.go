// Package cmd wires the pipeline's operations to CLI commands.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Default values may be set at compile time.
	version          = "0.1.0"
	buildDate        = "2025-01-02T03:04+0000"
	stackDumpOnPanic bool
	logLevel         string
	projectID        string
)

var rootCmd = &cobra.Command{
	Use: "rxpipe",
	Long: `Rxpipe moves pharmacy data feeds from a vendor SFTP mailbox into the
warehouse. Run 'fetch' on a schedule to land new feed files in cloud storage,
'process' when a file lands to normalize and load it, or 'serve' to expose
both as HTTP triggers.`,
}

func init() {
	cobra.EnableCommandSorting = false
	rootCmd.PersistentFlags().BoolVar(&stackDumpOnPanic, "print-stack", false, "Print a stack dump if there is a panic")
	_ = rootCmd.PersistentFlags().MarkHidden("print-stack")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: error, warn, info, debug, trace")
	rootCmd.PersistentFlags().StringVarP(&projectID, "project", "p", "", "Cloud project id (defaults to GOOGLE_CLOUD_PROJECT)")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Execute() prints the error.
		os.Exit(1)
	}
}
