// Package main runs the HTTP API and, when a feed is configured, the live
// transaction monitor:
// - API: wallet scans, report history, transaction assessments, metrics
// - Monitor: assesses every transaction announced by the feed
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chain-risk-lab/internal/alert"
	"chain-risk-lab/internal/api"
	"chain-risk-lab/internal/app"
	"chain-risk-lab/internal/config"
	"chain-risk-lab/internal/logging"
	"chain-risk-lab/internal/monitor"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "Optional YAML config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.HTTPAddr = *addr
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Dev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, *useMemory, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func run(cfg *config.Config, useMemory bool, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, initiating graceful shutdown", zap.String("signal", sig.String()))
		cancel()

		// Second signal forces exit
		sig = <-sigCh
		logger.Warn("received second signal, forcing immediate shutdown", zap.String("signal", sig.String()))
		os.Exit(1)
	}()

	stores, err := app.NewStores(ctx, cfg, useMemory, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	publisher, err := app.NewPublisher(cfg.Kafka, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	p := app.NewProvider(cfg.Provider)
	coll, err := app.NewCollector(cfg, p, logger)
	if err != nil {
		return err
	}
	wf := app.NewWorkflow(p, logger)

	server := api.NewServer(coll, wf,
		api.WithLogger(logger.Named("api")),
		api.WithReportStore(stores.Reports),
		api.WithAssessmentStore(stores.Assessments),
		api.WithPublisher(publisher),
	)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting HTTP server", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if cfg.Monitor.FeedURL != "" {
		g.Go(func() error {
			return runMonitor(gctx, cfg, wf, stores, publisher, logger)
		})
	} else {
		logger.Info("monitor feed not configured, live monitoring disabled")
	}

	return g.Wait()
}

func runMonitor(ctx context.Context, cfg *config.Config, a monitor.Assessor, stores *app.Stores, publisher alert.Publisher, logger *zap.Logger) error {
	feedCfg := monitor.DefaultFeedConfig()
	feed, err := monitor.NewFeedClient(ctx, cfg.Monitor.FeedURL, &feedCfg, logger.Named("feed"))
	if err != nil {
		return fmt.Errorf("connect feed: %w", err)
	}
	defer feed.Close()

	m := monitor.New(a,
		monitor.WithStore(stores.Assessments),
		monitor.WithPublisher(publisher),
		monitor.WithDefaultChain(cfg.Monitor.Chain),
		monitor.WithWorkers(cfg.Monitor.Workers),
		monitor.WithLogger(logger.Named("monitor")),
	)
	logger.Info("monitor started", zap.String("feed", cfg.Monitor.FeedURL))
	return m.Run(ctx, feed.Events())
}
