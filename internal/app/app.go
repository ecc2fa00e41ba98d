// Package app assembles the analysis components from configuration. It is
// shared by the binaries under cmd/.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"chain-risk-lab/internal/advisory"
	"chain-risk-lab/internal/alert"
	"chain-risk-lab/internal/collector"
	"chain-risk-lab/internal/config"
	"chain-risk-lab/internal/dex"
	"chain-risk-lab/internal/provider"
	"chain-risk-lab/internal/storage"
	chstore "chain-risk-lab/internal/storage/clickhouse"
	"chain-risk-lab/internal/storage/memory"
	"chain-risk-lab/internal/storage/migrations"
	pgstore "chain-risk-lab/internal/storage/postgres"
	"chain-risk-lab/internal/workflow"
)

// Stores holds the persistence backends.
type Stores struct {
	Reports     storage.ScanReportStore
	Assessments storage.AssessmentStore
	close       func()
}

// Close releases database connections.
func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

// NewProvider builds the transaction data provider client.
func NewProvider(cfg config.ProviderConfig) provider.Client {
	return provider.NewHTTPClient(cfg.APIKey,
		provider.WithBaseURL(cfg.BaseURL),
		provider.WithTimeout(cfg.Timeout),
		provider.WithMaxPages(cfg.MaxPages),
	)
}

// NewAdvisor builds the advisory analyzer. Without an API key the analyzer
// is disabled and scans degrade to the unknown signal.
func NewAdvisor(cfg config.AdvisoryConfig) advisory.Analyzer {
	if cfg.APIKey == "" {
		return advisory.Disabled{}
	}
	return advisory.NewOpenAIClient(cfg.APIKey,
		advisory.WithBaseURL(cfg.BaseURL),
		advisory.WithModel(cfg.Model),
		advisory.WithTimeout(cfg.Timeout),
	)
}

// NewClassifier seeds the default routers and adds configured ones.
func NewClassifier(cfg config.DexConfig) (*dex.Classifier, error) {
	routers, err := cfg.Routers()
	if err != nil {
		return nil, err
	}
	c := dex.NewClassifier()
	for addr, venue := range routers {
		c.RegisterRouter(addr, venue)
	}
	return c, nil
}

// NewCollector builds the collection pipeline on p.
func NewCollector(cfg *config.Config, p provider.Client, logger *zap.Logger) (*collector.Collector, error) {
	classifier, err := NewClassifier(cfg.Dex)
	if err != nil {
		return nil, err
	}
	logger.Info("dex routers loaded",
		zap.Int("routers", len(classifier.Routers())),
		zap.Int("configured", len(cfg.Dex.ExtraRouters)),
	)
	return collector.New(p,
		collector.WithClassifier(classifier),
		collector.WithAdvisor(NewAdvisor(cfg.Advisory)),
		collector.WithConcurrency(cfg.Collector.Concurrency),
		collector.WithLogger(logger.Named("collector")),
	), nil
}

// NewWorkflow builds the multi-tool workflow on p.
func NewWorkflow(p provider.Client, logger *zap.Logger) *workflow.Workflow {
	return workflow.New(p, workflow.WithLogger(logger.Named("workflow")))
}

// NewStores opens PostgreSQL and ClickHouse when their DSNs are set and runs
// migrations. Either store falls back to memory when its DSN is empty or
// useMemory is set.
func NewStores(ctx context.Context, cfg *config.Config, useMemory bool, logger *zap.Logger) (*Stores, error) {
	s := &Stores{
		Reports:     memory.NewScanReportStore(),
		Assessments: memory.NewAssessmentStore(),
	}
	if useMemory {
		logger.Info("using in-memory storage")
		return s, nil
	}

	var closers []func()
	s.close = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Postgres.DSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			s.Close()
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		s.Reports = pgstore.NewScanReportStore(pool)
	} else {
		logger.Warn("postgres DSN not set, scan reports kept in memory")
	}

	if cfg.Clickhouse.DSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Clickhouse.DSN)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		closers = append(closers, func() { _ = conn.Close() })
		s.Assessments = chstore.NewAssessmentStore(conn)
	} else {
		logger.Warn("clickhouse DSN not set, assessments kept in memory")
	}

	return s, nil
}

// NewPublisher returns a Kafka publisher when brokers are configured and a
// no-op publisher otherwise.
func NewPublisher(cfg config.KafkaConfig, logger *zap.Logger) (alert.Publisher, error) {
	if len(cfg.Brokers) == 0 {
		logger.Info("kafka brokers not set, alerts disabled")
		return alert.Nop{}, nil
	}
	p, err := alert.NewKafkaPublisher(cfg.Brokers, cfg.Topic)
	if err != nil {
		return nil, fmt.Errorf("connect to kafka: %w", err)
	}
	return p, nil
}
