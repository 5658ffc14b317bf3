package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"finanze/internal/cli"
	"finanze/internal/config"
	"finanze/internal/log"
	"finanze/internal/ports"
	"finanze/internal/services"
)

// app holds what every subcommand needs once the root has initialised.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	store   ports.Store
	cleanup func() error

	ledger      *services.LedgerService
	summaries   *services.SummaryService
	provisioner *services.Provisioner
}

func (a *app) close() {
	if a.cleanup == nil {
		return
	}
	if err := a.cleanup(); err != nil {
		a.logger.Warn("Failed to close store", log.FieldError, err)
	}
	a.cleanup = nil
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var logLevel string

	root := &cobra.Command{
		Use:           "finanze",
		Short:         "Operate the finanze ledger: seed accounts, record transactions, report",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cli.LoadEnvFile()
			cfg, err := cli.LoadConfig()
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			a.cfg = cfg
			a.logger = cli.SetupLogger(cfg.LogLevel, log.ComponentCLI)

			// Neither touches the ledger store.
			if cmd.Name() == "migrate" || cmd.Name() == "announce" {
				return nil
			}
			return a.open(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error).")

	root.AddCommand(
		newSeedCmd(a),
		newTagCmd(a),
		newAppendCmd(a),
		newBalanceCmd(a),
		newSummaryCmd(a),
		newListCmd(a),
		newCheckCmd(a),
		newMigrateCmd(a),
		newAnnounceCmd(a),
	)
	return root
}

func (a *app) open(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := cli.InitBackend(ctx, a.logger, a.cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	a.store = res.Store
	a.cleanup = res.Cleanup
	a.ledger = services.NewLedgerService(a.store, cli.LedgerConfig(a.cfg))
	a.summaries = services.NewSummaryService(a.store)
	a.provisioner = services.NewProvisioner(a.store)
	return nil
}
