// Package collector drives one wallet's history through trade reconstruction,
// profiling and risk scoring.
package collector

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chain-risk-lab/internal/address"
	"chain-risk-lab/internal/advisory"
	"chain-risk-lab/internal/dex"
	"chain-risk-lab/internal/domain"
	"chain-risk-lab/internal/observability"
	"chain-risk-lab/internal/profile"
	"chain-risk-lab/internal/provider"
	"chain-risk-lab/internal/risk"
)

// Failure messages.
const (
	ErrMsgMissingInput    = "chain and wallet address are required"
	ErrMsgInvalidResponse = "Invalid response from blockchain data provider"
)

// DefaultConcurrency bounds CollectMany.
const DefaultConcurrency = 4

// timespanLayout matches ISO-8601 with millisecond precision.
const timespanLayout = "2006-01-02T15:04:05.000Z07:00"

// State is a collection pipeline state.
type State string

// Pipeline states.
const (
	StateFetching       State = "fetching"
	StateClassifying    State = "classifying"
	StateReconstructing State = "reconstructing"
	StateProfiling      State = "profiling"
	StateScoringRisk    State = "scoring_risk"
	StateDone           State = "done"
	StateFailed         State = "failed"
)

// Collector runs the collection pipeline. It holds no per-run state and is
// safe for concurrent use.
type Collector struct {
	provider    provider.Client
	classifier  *dex.Classifier
	advisor     advisory.Analyzer
	logger      *zap.Logger
	concurrency int
}

// Option configures Collector.
type Option func(*Collector)

// WithClassifier sets the router classifier.
func WithClassifier(c *dex.Classifier) Option {
	return func(col *Collector) {
		col.classifier = c
	}
}

// WithAdvisor sets the advisory analyzer.
func WithAdvisor(a advisory.Analyzer) Option {
	return func(col *Collector) {
		col.advisor = a
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(col *Collector) {
		col.logger = l
	}
}

// WithConcurrency bounds the number of concurrent runs in CollectMany.
func WithConcurrency(n int) Option {
	return func(col *Collector) {
		if n > 0 {
			col.concurrency = n
		}
	}
}

// New creates a Collector.
func New(p provider.Client, opts ...Option) *Collector {
	c := &Collector{
		provider:    p,
		classifier:  dex.NewClassifier(),
		advisor:     advisory.Disabled{},
		logger:      zap.NewNop(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// run tracks the state of one invocation.
type run struct {
	state  State
	logger *zap.Logger
}

func (r *run) advance(next State) {
	r.logger.Debug("collection state",
		zap.String("from", string(r.state)),
		zap.String("to", string(next)))
	r.state = next
	observability.RecordStage(string(next))
}

// Collect runs the pipeline for one (chain, address) pair. Only the fetch can
// fail; every later stage absorbs malformed data.
func (c *Collector) Collect(ctx context.Context, chain, wallet string) domain.CollectionResult {
	start := time.Now()
	res := c.collect(ctx, chain, wallet)

	status := "success"
	if !res.Success {
		status = "failure"
	}
	observability.RecordCollection(status, time.Since(start).Seconds())
	return res
}

func (c *Collector) collect(ctx context.Context, chain, wallet string) domain.CollectionResult {
	if chain == "" || wallet == "" {
		return domain.FailedCollection(ErrMsgMissingInput)
	}

	logger := c.logger.With(zap.String("chain", chain), zap.String("wallet", wallet))
	if address.Detect(wallet) == address.FormatUnknown {
		logger.Info("unrecognized address format, passing to provider as-is")
	}

	r := &run{state: StateFetching, logger: logger}
	observability.RecordStage(string(StateFetching))

	resp, err := c.provider.GetTransactionsForAddress(ctx, chain, wallet)
	if err != nil {
		r.advance(StateFailed)
		logger.Warn("transaction fetch failed", zap.Error(err))
		return domain.FailedCollection(fetchErrorMessage(err))
	}
	if !resp.HasItems() {
		r.advance(StateFailed)
		logger.Warn("provider response has no item list")
		return domain.FailedCollection(ErrMsgInvalidResponse)
	}

	txs := make([]domain.RawTransaction, len(resp.Items))
	copy(txs, resp.Items)
	for i := range txs {
		txs[i].Normalize()
	}

	r.advance(StateClassifying)
	r.advance(StateReconstructing)
	trades := c.classifier.Reconstruct(chain, txs)
	observability.RecordTrades(len(trades))
	logger.Debug("trades reconstructed",
		zap.Int("transactions", len(txs)),
		zap.Int("trades", len(trades)))

	r.advance(StateProfiling)
	prof := profile.Build(trades)

	r.advance(StateScoringRisk)
	adv := advisory.Evaluate(ctx, c.advisor, trades, logger)
	analysis := risk.Analyze(trades, adv)
	observability.RecordRiskLevel(analysis.RiskLevel.String())

	r.advance(StateDone)
	logger.Info("collection complete",
		zap.Int("trades", len(trades)),
		zap.String("risk_level", analysis.RiskLevel.String()),
		zap.Float64("scam_probability", analysis.ScamProbability))

	return domain.CollectionResult{
		Success:      true,
		Trades:       trades,
		Profile:      &prof,
		ScamAnalysis: &analysis,
		Summary: &domain.Summary{
			TotalTransactions: len(txs),
			DexTransactions:   len(trades),
			Timespan:          Timespan(txs),
			Transactions:      txs,
		},
	}
}

// fetchErrorMessage prefers the provider's own message.
func fetchErrorMessage(err error) string {
	var apiErr *provider.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return ErrMsgInvalidResponse
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return ErrMsgInvalidResponse
}

// Timespan bounds the parseable block timestamps of txs. Both fields are
// empty when none parse.
func Timespan(txs []domain.RawTransaction) domain.Timespan {
	var first, last time.Time
	found := false
	for i := range txs {
		ts, ok := txs[i].SignedAt()
		if !ok {
			continue
		}
		if !found || ts.Before(first) {
			first = ts
		}
		if !found || ts.After(last) {
			last = ts
		}
		found = true
	}
	if !found {
		return domain.Timespan{}
	}
	return domain.Timespan{
		Start: first.UTC().Format(timespanLayout),
		End:   last.UTC().Format(timespanLayout),
	}
}

// Request identifies one collection.
type Request struct {
	Chain   string
	Address string
}

// CollectMany runs independent collections concurrently. Results are returned
// in request order; one run failing never affects another.
func (c *Collector) CollectMany(ctx context.Context, reqs []Request) []domain.CollectionResult {
	results := make([]domain.CollectionResult, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, req := range reqs {
		g.Go(func() error {
			results[i] = c.Collect(gctx, req.Chain, req.Address)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
