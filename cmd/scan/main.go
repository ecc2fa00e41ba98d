// Package main scans one or more wallets and prints a risk report.
//
// Usage:
//
//	scan -chain eth-mainnet -address 0xabc[,0xdef] [-format markdown|csv|json] [-fixture file.json]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"chain-risk-lab/internal/alert"
	"chain-risk-lab/internal/app"
	"chain-risk-lab/internal/collector"
	"chain-risk-lab/internal/config"
	"chain-risk-lab/internal/domain"
	"chain-risk-lab/internal/logging"
	"chain-risk-lab/internal/provider"
	"chain-risk-lab/internal/provider/stub"
	"chain-risk-lab/internal/reporting"
)

func main() {
	configPath := flag.String("config", "", "Optional YAML config file")
	chain := flag.String("chain", "eth-mainnet", "Provider chain name")
	addresses := flag.String("address", "", "Comma-separated wallet addresses")
	format := flag.String("format", "markdown", "Output format: markdown, csv or json")
	fixture := flag.String("fixture", "", "Serve transactions from a JSON fixture instead of the provider")
	output := flag.String("output", "", "Write output to file instead of stdout")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	flag.Parse()

	wallets := splitList(*addresses)
	if len(wallets) == 0 {
		fmt.Fprintln(os.Stderr, "-address is required")
		os.Exit(2)
	}
	switch *format {
	case "markdown", "csv", "json":
	default:
		fmt.Fprintf(os.Stderr, "unknown format %q\n", *format)
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

	ok, err := scanTo(*output, func(out io.Writer) (bool, error) {
		return run(cfg, *chain, wallets, *format, *fixture, *useMemory, out, logger)
	})
	if err != nil {
		logger.Fatal("scan failed", zap.Error(err))
	}
	if !ok {
		logger.Sync() //nolint:errcheck
		os.Exit(1)
	}
}

// scanTo runs fn against stdout or the named file.
func scanTo(path string, fn func(io.Writer) (bool, error)) (bool, error) {
	if path == "" {
		return fn(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return false, fmt.Errorf("create output file: %w", err)
	}
	ok, err := fn(f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close output file: %w", cerr)
	}
	return ok, err
}

// run returns false when any collection failed.
func run(cfg *config.Config, chain string, wallets []string, format, fixture string, useMemory bool, out io.Writer, logger *zap.Logger) (bool, error) {
	ctx := context.Background()

	var p provider.Client
	if fixture != "" {
		c, err := stub.LoadFile(fixture)
		if err != nil {
			return false, fmt.Errorf("load fixture: %w", err)
		}
		p = c
	} else {
		if cfg.Provider.APIKey == "" {
			logger.Warn("provider API key not set, requests will likely be rejected")
		}
		p = app.NewProvider(cfg.Provider)
	}

	coll, err := app.NewCollector(cfg, p, logger)
	if err != nil {
		return false, err
	}

	stores, err := app.NewStores(ctx, cfg, useMemory, logger)
	if err != nil {
		return false, err
	}
	defer stores.Close()

	publisher, err := app.NewPublisher(cfg.Kafka, logger)
	if err != nil {
		return false, err
	}
	defer publisher.Close()

	reqs := make([]collector.Request, len(wallets))
	for i, w := range wallets {
		reqs[i] = collector.Request{Chain: chain, Address: w}
	}
	results := coll.CollectMany(ctx, reqs)

	now := time.Now().UTC()
	generator := reporting.NewGenerator(stores.Reports).WithClock(func() time.Time { return now })

	allOK := true
	for i, res := range results {
		wallet := wallets[i]
		if !res.Success {
			allOK = false
			logger.Error("collection failed", zap.String("wallet", wallet), zap.String("error", res.Error))
			if format == "json" {
				if err := writeJSON(out, res); err != nil {
					return false, err
				}
			}
			continue
		}

		if err := render(ctx, out, format, generator, chain, wallet, res); err != nil {
			return false, err
		}
		persist(ctx, stores, publisher, chain, wallet, res, now, logger)
	}
	return allOK, nil
}

func render(ctx context.Context, out io.Writer, format string, g *reporting.Generator, chain, wallet string, res domain.CollectionResult) error {
	if format == "json" {
		return writeJSON(out, res)
	}

	report, err := g.Generate(ctx, chain, wallet, res)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	switch format {
	case "csv":
		_, err = io.WriteString(out, reporting.RenderTradesCSV(report.Trades))
	default:
		_, err = io.WriteString(out, reporting.RenderMarkdown(report))
	}
	return err
}

// persist stores the scan and raises an alert. Failures are logged only.
func persist(ctx context.Context, stores *app.Stores, publisher alert.Publisher, chain, wallet string, res domain.CollectionResult, now time.Time, logger *zap.Logger) {
	rep := collector.ScanReport(res, chain, wallet, now)
	if rep == nil {
		return
	}
	if err := stores.Reports.Insert(ctx, rep); err != nil {
		logger.Warn("store scan report failed", zap.String("wallet", wallet), zap.Error(err))
	}
	if a, ok := alert.ForScan(rep, now); ok {
		if err := publisher.Publish(ctx, a); err != nil {
			logger.Warn("publish alert failed", zap.String("wallet", wallet), zap.Error(err))
		}
	}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
