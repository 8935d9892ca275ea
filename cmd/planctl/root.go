package main

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	"github.com/fdg312/fitplanner/internal/config"
	"github.com/fdg312/fitplanner/internal/persist"
	"github.com/fdg312/fitplanner/internal/storage/backend"
)

type rootOptions struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "planctl",
		Short: "Operator tool for the weekly fitness and meal plan",
		Long: `planctl reads and writes the same store as the API server.

Storage is selected with the usual environment (STORAGE_MODE, DATA_DIR,
DATABASE_URL, S3_*), so point it at the deployment you want to inspect.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log storage diagnostics to stderr")

	cmd.AddCommand(
		newShowCmd(opts),
		newSummaryCmd(opts),
		newResetCmd(opts),
		newExportCmd(opts),
	)
	return cmd
}

// openRepository resolves config and storage for one command run. An
// unreachable database is an error here, never an empty in-memory week.
// The returned close func releases the backend.
func openRepository(ctx context.Context, cmd *cobra.Command, opts *rootOptions) (*persist.Repository, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logOut := io.Discard
	if opts.verbose {
		logOut = cmd.ErrOrStderr()
	}
	logger := log.New(logOut, "", log.LstdFlags)

	kv, mode, err := backend.OpenStrict(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	logger.Printf("INFO planctl: storage=%s", mode)

	return persist.NewRepository(kv, logger), func() { _ = kv.Close() }, nil
}
