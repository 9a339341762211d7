package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/skillweaver/skillweaver/internal/config"
	"github.com/skillweaver/skillweaver/internal/container"
	"github.com/skillweaver/skillweaver/internal/gateway"
	"github.com/skillweaver/skillweaver/internal/hotreload"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP/websocket gateway",
	Long: `Run the gateway with the store watcher and the periodic revalidation
sweep. Capabilities added or edited on disk become available without a
restart.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (overrides config)")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if serveListen != "" {
		cfg.Gateway.Listen = serveListen
	}

	services, err := container.New(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.StorePath(), 0o755); err != nil {
		return fmt.Errorf("create store: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := gateway.New(services.Engine(), services.Factory(), services.Registry(), cfg.Gateway.Listen)
	watcher := hotreload.NewWatcher(services.Manager(), cfg.StorePath(), 0)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(ctx) })
	g.Go(func() error {
		err := watcher.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	// The sweep is a backstop for edits the watcher missed (e.g. a
	// bind-mounted store where inotify does not fire).
	if cfg.Store.SweepSchedule != "" {
		sched := cron.New()
		_, err := sched.AddFunc(cfg.Store.SweepSchedule, func() {
			if err := services.Manager().Reload(); err != nil {
				slog.Warn("periodic store sweep failed", "err", err)
			}
		})
		if err != nil {
			return fmt.Errorf("invalid sweep schedule %q: %w", cfg.Store.SweepSchedule, err)
		}
		sched.Start()
		defer sched.Stop()
	}

	fmt.Printf("%s Gateway on %s, store at %s\n", logo, cfg.Gateway.Listen, cfg.StorePath())
	return g.Wait()
}
