// Background worker for KeyIP-Landscape: consumes asset sync events and runs
// the scheduled analytics refresh and cleanup jobs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/KeyIP-Landscape/internal/config"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/monitoring/logging"
)

var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: KEYIP_* environment)")
	consumers := flag.Int("consumers", 0, "number of Kafka consumers in the group (overrides worker.concurrency)")
	runNow := flag.String("run", "", "run one job by name and exit (analytics-refresh | analytics-cleanup)")
	flag.Parse()

	if err := run(*configPath, *consumers, *runNow); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, consumers int, runNow string) error {
	cfg, err := config.LoadOrEnv(configPath)
	if err != nil {
		return err
	}
	if consumers > 0 {
		cfg.Worker.Concurrency = consumers
	}

	logger, err := logging.NewLogger(cfg.Log.Logging())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logging.Sync(logger)
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := newWorker(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer w.Close()

	if runNow != "" {
		logger.Info("running job once", logging.String("job", runNow))
		return w.scheduler.RunNow(ctx, runNow)
	}

	logger.Info("starting KeyIP-Landscape worker",
		logging.String("version", version),
		logging.Int("consumers", len(w.consumers)),
		logging.Int("health_port", cfg.Worker.HealthPort),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(w.health.ListenAndServe)
	g.Go(func() error { return w.start(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down worker")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return w.stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("worker exited with error", logging.Err(err))
		return err
	}
	logger.Info("worker stopped")
	return nil
}

//Personal.AI order the ending
