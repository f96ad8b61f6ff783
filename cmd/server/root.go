package main

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"dndtools/app/internal/app/bootstrap"
	"dndtools/app/internal/config"
	applog "dndtools/app/internal/log"
)

// cliState holds what every subcommand needs once the environment is loaded.
type cliState struct {
	cfg       *config.Config
	logger    *logrus.Logger
	sentryHub *sentry.Hub
	flush     func()
}

func (r *cliState) deps() bootstrap.Dependencies {
	return bootstrap.Dependencies{
		Config:    r.cfg,
		Logger:    r.logger,
		SentryHub: r.sentryHub,
		Version:   version,
	}
}

func newRootCmd() *cobra.Command {
	rt := &cliState{flush: func() {}}
	var envFile string

	root := &cobra.Command{
		Use:           "server",
		Short:         "Browse tabletop rules reference data",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.load(envFile)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			rt.flush()
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(
		newServeCmd(rt),
		newMigrateCmd(rt),
		newSeedCmd(rt),
		newCuratorCmd(rt),
		newVerifySpellCmd(rt),
	)
	return root
}

func (r *cliState) load(envFile string) error {
	if envFile != "" {
		// A missing file is fine; the environment may already be populated.
		_ = godotenv.Load(envFile)
	}

	cfg, err := config.Load()
	if err != nil {
		return eris.Wrap(err, "failure loading configuration")
	}

	logger, err := applog.NewLogger(cfg.LogLevel)
	if err != nil {
		return eris.Wrap(err, "failure initialising logger")
	}

	hub, flush, err := applog.InitSentry(logger, applog.SentrySettings{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
		Release:     version,
	})
	if err != nil {
		return eris.Wrap(err, "failure initialising sentry")
	}

	r.cfg = cfg
	r.logger = logger
	r.sentryHub = hub
	r.flush = flush
	return nil
}

// withCatalog opens the migrated catalog for the duration of fn.
func (r *cliState) withCatalog(ctx context.Context, fn func(*bootstrap.Catalog) error) error {
	cat, err := bootstrap.OpenCatalog(ctx, r.deps())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := cat.Close(); closeErr != nil {
			r.logger.WithError(closeErr).Error("closing database")
		}
	}()
	return fn(cat)
}
