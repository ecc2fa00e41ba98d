// Package main runs the multi-tool risk workflow for one transaction and
// prints the merged result as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"chain-risk-lab/internal/alert"
	"chain-risk-lab/internal/app"
	"chain-risk-lab/internal/config"
	"chain-risk-lab/internal/logging"
	"chain-risk-lab/internal/provider"
	"chain-risk-lab/internal/provider/stub"
	"chain-risk-lab/internal/workflow"
)

func main() {
	configPath := flag.String("config", "", "Optional YAML config file")
	chain := flag.String("chain", "eth-mainnet", "Provider chain name")
	hash := flag.String("hash", "", "Transaction hash")
	fixture := flag.String("fixture", "", "Serve transactions from a JSON fixture instead of the provider")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of ClickHouse")
	flag.Parse()

	if *hash == "" {
		fmt.Fprintln(os.Stderr, "-hash is required")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Dev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	var p provider.Client
	if *fixture != "" {
		c, err := stub.LoadFile(*fixture)
		if err != nil {
			logger.Fatal("load fixture", zap.Error(err))
		}
		p = c
	} else {
		p = app.NewProvider(cfg.Provider)
	}

	stores, err := app.NewStores(ctx, cfg, *useMemory, logger)
	if err != nil {
		logger.Fatal("create stores", zap.Error(err))
	}
	defer stores.Close()

	publisher, err := app.NewPublisher(cfg.Kafka, logger)
	if err != nil {
		logger.Fatal("create publisher", zap.Error(err))
	}
	defer publisher.Close()

	result := app.NewWorkflow(p, logger).Execute(ctx, *chain, *hash)

	now := time.Now()
	a := workflow.Assess(result, *chain, *hash, now)
	if err := stores.Assessments.Insert(ctx, a); err != nil {
		logger.Warn("store assessment failed", zap.Error(err))
	}
	if al, ok := alert.ForAssessment(a, now); ok {
		if err := publisher.Publish(ctx, al); err != nil {
			logger.Warn("publish alert failed", zap.Error(err))
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		logger.Fatal("write result", zap.Error(err))
	}
	if !result.Success {
		logger.Error("assessment failed", zap.String("error", result.Error), zap.Strings("failed_tools", a.FailedTools))
		os.Exit(1)
	}
}
