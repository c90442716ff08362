// Package cli implements the stagelower command line: the file-loading
// wrapper around the lowering pass. The pass itself lives in
// internal/lower; everything here is plumbing.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "stagelower",
		Short:         "Lower ETL job graphs to the target platform IR",
		Long:          "stagelower reads an ASG job graph document and lowers it to the intermediate representation consumed by the downstream job generator.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newTranslateCmd(&verbose))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// newLogger builds the CLI logger: text records on stderr, debug level
// when verbose, with a per-invocation run id on every record.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("run_id", uuid.NewString())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stagelower %s (%s)\n", version, commit)
		},
	}
}
