package main

import (
	"context"
	"fmt"

	"github.com/plfog/backoffice/internal/bootstrap"
	"github.com/plfog/backoffice/internal/infrastructure/config"
	"github.com/plfog/backoffice/internal/infrastructure/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	configPath string
	logLevel   string
}

// NewRootCommand builds the plfog command tree
func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "plfog",
		Short:         "Makerspace back office",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: search ./config.toml, ./config, /etc/plfog)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")

	cmd.AddCommand(
		newServeCommand(opts),
		newBillTabsCommand(opts),
		newPayoutReportCommand(opts),
		newSeedDataCommand(opts),
		newSetupRolesCommand(opts),
		newGenerateFixtureCommand(),
		newLoadDataCommand(opts),
		newCreateUserCommand(opts),
		newMigrateCommand(opts),
	)
	return cmd
}

// load reads the configuration and builds a logger. Management commands
// keep stdout for their own output, so their logs go to stderr.
func (o *options) load(management bool) (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadFile(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if management && cfg.Log.Output == "stdout" {
		cfg.Log.Output = "stderr"
	}
	log, err := logger.FromConfig(cfg.App, cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

// run builds the application, hands it to fn and closes it afterwards
func (o *options) run(cmd *cobra.Command, management bool, fn func(ctx context.Context, a *bootstrap.App) error) error {
	cfg, log, err := o.load(management)
	if err != nil {
		return err
	}
	defer logger.Sync(log)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	if management {
		ctx, _ = logger.WithJob(ctx, a.Logger, cmd.Name())
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), bootstrap.ShutdownTimeout)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			log.Warn("Error during cleanup", zap.Error(err))
		}
	}()
	return fn(ctx, a)
}

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the job scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, false, func(ctx context.Context, a *bootstrap.App) error {
				return a.Serve(ctx)
			})
		},
	}
}
