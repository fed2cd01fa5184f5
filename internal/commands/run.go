package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/driftersoft/janitord/internal/api"
	"github.com/driftersoft/janitord/internal/scheduler"
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the retention daemon: scheduled cleanup cycles plus the admin API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			cleaner, err := newCleaner(cfg, log)
			if err != nil {
				return err
			}

			sched, err := scheduler.New(cleaner, cfg.Schedule, cfg.DryRun, log)
			if err != nil {
				return err
			}

			base := cmd.Context()
			if base == nil {
				base = context.Background()
			}
			ctx, stop := signal.NotifyContext(base, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := sched.Start(ctx); err != nil {
				return fmt.Errorf("start scheduler: %w", err)
			}
			defer sched.Stop()

			log.Info("janitord running",
				"root", cleaner.Root(),
				"schedule", cfg.Schedule,
				"dry_run", cfg.DryRun,
			)

			g, ctx := errgroup.WithContext(ctx)
			if cfg.Listen != "" {
				srv := api.NewServer(cleaner, log)
				g.Go(func() error { return srv.Serve(ctx, cfg.Listen) })
			}
			g.Go(func() error {
				<-ctx.Done()
				return nil
			})

			if err := g.Wait(); err != nil {
				return err
			}
			log.Info("janitord stopped")
			return nil
		},
	}
	return cmd
}
