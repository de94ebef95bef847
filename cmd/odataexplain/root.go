package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// rootOptions holds global flags for all commands.
type rootOptions struct {
	Verbose bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "odataexplain",
		Short:        "Explain OData $filter and $orderby options",
		Long:         "Parses query options against a sample catalog and shows the bound semantic tree and its SQL translation.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(newPrintCommand(opts))
	cmd.AddCommand(newServeCommand(opts))
	return cmd
}

// newLogger writes text logs to w at level, or at debug level when verbose.
func newLogger(w io.Writer, level slog.Level, verbose bool) *slog.Logger {
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
