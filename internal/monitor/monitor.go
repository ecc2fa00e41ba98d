// Package monitor assesses transactions announced by a live event feed.
package monitor

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chain-risk-lab/internal/alert"
	"chain-risk-lab/internal/domain"
	"chain-risk-lab/internal/observability"
	"chain-risk-lab/internal/storage"
	"chain-risk-lab/internal/workflow"
)

// DefaultWorkers bounds concurrent assessments.
const DefaultWorkers = 8

// Assessor runs the risk workflow for one transaction.
type Assessor interface {
	Execute(ctx context.Context, chain, hash string) domain.WorkflowResult
}

// Monitor assesses feed events, stores the outcome and raises alerts.
type Monitor struct {
	assessor     Assessor
	store        storage.AssessmentStore
	publisher    alert.Publisher
	logger       *zap.Logger
	defaultChain string
	workers      int
	now          func() time.Time
}

// Option configures Monitor.
type Option func(*Monitor)

// WithStore persists every assessment.
func WithStore(s storage.AssessmentStore) Option {
	return func(m *Monitor) { m.store = s }
}

// WithPublisher publishes alerts for suspicious transactions.
func WithPublisher(p alert.Publisher) Option {
	return func(m *Monitor) { m.publisher = p }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Monitor) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithDefaultChain sets the chain used for events that name none.
func WithDefaultChain(chain string) Option {
	return func(m *Monitor) { m.defaultChain = chain }
}

// WithWorkers bounds concurrent assessments.
func WithWorkers(n int) Option {
	return func(m *Monitor) {
		if n > 0 {
			m.workers = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// New creates a monitor.
func New(a Assessor, opts ...Option) *Monitor {
	m := &Monitor{
		assessor:     a,
		publisher:    alert.Nop{},
		logger:       zap.NewNop(),
		defaultChain: "eth-mainnet",
		workers:      DefaultWorkers,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run assesses events until the channel closes or ctx is canceled.
// Per-event failures are logged and never stop the loop.
func (m *Monitor) Run(ctx context.Context, events <-chan Event) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)

loop:
	for {
		select {
		case <-gctx.Done():
			break loop
		case ev, ok := <-events:
			if !ok {
				break loop
			}
			g.Go(func() error {
				if _, err := m.Handle(gctx, ev); err != nil {
					m.logger.Warn("event handling failed", zap.String("hash", ev.Hash), zap.Error(err))
				}
				return nil
			})
		}
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Handle assesses one event. The returned error reports persistence or
// publishing failures; the assessment itself is always returned.
func (m *Monitor) Handle(ctx context.Context, ev Event) (*domain.Assessment, error) {
	observability.RecordMonitorEvent()

	chain := ev.Chain
	if chain == "" {
		chain = m.defaultChain
	}

	result := m.assessor.Execute(ctx, chain, ev.Hash)
	a := workflow.Assess(result, chain, ev.Hash, m.now())

	var errs []error
	if m.store != nil {
		if err := m.store.Insert(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	if al, ok := alert.ForAssessment(a, m.now()); ok {
		if err := m.publisher.Publish(ctx, al); err != nil {
			errs = append(errs, err)
		}
	}

	m.logger.Debug("transaction assessed",
		zap.String("chain", chain),
		zap.String("hash", ev.Hash),
		zap.Bool("success", a.Success),
		zap.String("risk_level", string(a.RiskLevel)),
	)
	return a, errors.Join(errs...)
}
