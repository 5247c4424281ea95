package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// runSync handles `docsync <file|dir>`.
func runSync(cmd *cobra.Command, args []string) error {
	// Argument errors print usage; runtime errors do not.
	cmd.SilenceUsage = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if quietFlag {
		out = io.Discard
	}
	a, err := newApp(cfg, nil, logger, newProgressReporter(out, quietFlag), dryRunFlag, out)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.processPath(ctx, args[0])
}
