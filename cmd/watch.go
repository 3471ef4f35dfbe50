package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/resy-notifier/internal/browser"
	"github.com/example/resy-notifier/internal/config"
	"github.com/example/resy-notifier/internal/logger"
	"github.com/example/resy-notifier/internal/model"
	"github.com/example/resy-notifier/internal/notify"
	"github.com/example/resy-notifier/internal/payload"
	"github.com/example/resy-notifier/internal/scheduler"
	"github.com/example/resy-notifier/internal/status"
	"github.com/example/resy-notifier/internal/store"
	"github.com/example/resy-notifier/internal/util"
)

var (
	watchMode string
	watchFile string

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Poll availability and notify recipients",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch()
		},
	}
)

func init() {
	watchCmd.Flags().StringVar(&watchMode, "mode", "", "browser mode: amd64 (local chromedriver) or arch (remote grid)")
	watchCmd.Flags().StringVar(&watchFile, "file", "query.json", "path to query file")
}

func runWatch() error {
	// 1) load config; CLI flags win over file/env
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if watchMode != "" {
		cfg.Browser.Mode = watchMode
	}
	if _, err := cfg.Browser.Endpoint(); err != nil {
		return err
	}

	runID := util.NewID()

	log, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	log = log.With(zap.String("run", runID))

	// 2) query file + payloads; config/validation failures end the run
	builder := payload.NewBuilder(log)
	payloads, err := loadPayloads(builder, watchFile)
	if err != nil {
		log.Error("query file rejected", zap.Error(err))
		return err
	}

	// 3) ledger
	st, err := store.New(cfg.Store.Dir, runID)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}

	// 4) per-batch factories: one browser session and one transport client per
	// worker, both constructed inside the worker so failures stay batch-scoped
	sched := &scheduler.Scheduler{
		Workers: cfg.Scheduler.Workers,
		OpenChecker: func(ctx context.Context) (scheduler.Checker, error) {
			return browser.NewChecker(ctx, cfg.Browser, log)
		},
		OpenNotifier: func() (scheduler.Notifier, error) {
			tw, err := notify.NewTwilioProvider(cfg.Notify.Twilio)
			if err != nil {
				return nil, err
			}
			return notify.New(st, tw, cfg.Notify.Threshold(), log), nil
		},
		Log: log,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5) optional status server for long-running loops
	if cfg.HTTP.Addr != "" {
		srv := status.NewServer(st)
		go func() {
			if err := srv.Start(cfg.HTTP.Addr); err != nil {
				log.Warn("status server exited", zap.Error(err))
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	sched.Run(ctx, payloads)

	// single pass unless an interval is configured
	if cfg.Scheduler.Interval <= 0 {
		return nil
	}

	t := time.NewTicker(cfg.Scheduler.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return nil
		case <-t.C:
			// re-read each cycle: day-range expansion is relative to "today",
			// and edits to the query file take effect on the next pass
			payloads, err := loadPayloads(builder, watchFile)
			if err != nil {
				log.Error("query file rejected", zap.Error(err))
				return err
			}
			sched.Run(ctx, payloads)
		}
	}
}

// loadPayloads reads the query file and expands it into payloads. Called once
// per scheduler pass so long-running loops pick up file changes.
func loadPayloads(b *payload.Builder, path string) ([]model.Payload, error) {
	entries, err := payload.LoadQueryFile(path)
	if err != nil {
		return nil, err
	}
	return b.Build(entries)
}
