// Package workflow runs the four transaction analysis tools concurrently and
// merges their payloads.
package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chain-risk-lab/internal/domain"
	"chain-risk-lab/internal/observability"
	"chain-risk-lab/internal/provider"
	"chain-risk-lab/internal/tools"
)

// Failure messages.
const (
	ErrMsgMissingInput = "Chain and hash are required"
	ErrMsgAllFailed    = "All analyses failed"
	ErrMsgNoTools      = "No analysis tools configured"
)

var (
	// ErrMissingInput is returned by Run when chain or hash is empty.
	ErrMissingInput = errors.New("workflow: chain and hash are required")
	// ErrAllToolsFailed is returned by Run when no tool produced a payload.
	ErrAllToolsFailed = errors.New("workflow: all analyses failed")
	// ErrNoTools is returned by Run when the tool registry is empty.
	ErrNoTools = errors.New("workflow: no analysis tools configured")
)

// Workflow executes the tool registry against one transaction.
type Workflow struct {
	provider provider.Client
	tools    []tools.Tool
	logger   *zap.Logger
}

// Option configures Workflow.
type Option func(*Workflow)

// WithTools replaces the default tool registry.
func WithTools(ts []tools.Tool) Option {
	return func(w *Workflow) {
		w.tools = ts
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Workflow) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a workflow over the default tool registry.
func New(p provider.Client, opts ...Option) *Workflow {
	w := &Workflow{
		provider: p,
		tools:    tools.Registry(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Execute runs every tool and returns the merged result. It never returns a
// Go error; failures are reported inside WorkflowResult.
func (w *Workflow) Execute(ctx context.Context, chain, hash string) domain.WorkflowResult {
	result, _ := w.Run(ctx, chain, hash)
	return result
}

// Run is Execute with the workflow-level failure also returned as an error
// (ErrMissingInput, ErrNoTools or ErrAllToolsFailed). Tools run concurrently
// and Run returns once every tool has finished; one tool failing never
// cancels the others.
func (w *Workflow) Run(ctx context.Context, chain, hash string) (domain.WorkflowResult, error) {
	if chain == "" || hash == "" {
		observability.RecordWorkflowRun("invalid")
		return domain.FailedWorkflow(ErrMsgMissingInput), ErrMissingInput
	}
	if len(w.tools) == 0 {
		observability.RecordWorkflowRun("invalid")
		return domain.FailedWorkflow(ErrMsgNoTools), ErrNoTools
	}

	payloads := make([]json.RawMessage, len(w.tools))
	var g errgroup.Group
	for i, tool := range w.tools {
		g.Go(func() error {
			payloads[i] = w.runTool(ctx, tool, chain, hash)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, p := range payloads {
		if domain.IsErrorMarker(p) {
			failed++
		}
	}
	if failed == len(payloads) {
		observability.RecordWorkflowRun("failed")
		w.logger.Warn("all analyses failed", zap.String("chain", chain), zap.String("hash", hash))
		return domain.FailedWorkflow(ErrMsgAllFailed), ErrAllToolsFailed
	}

	result := domain.WorkflowResult{Success: true}
	for i, tool := range w.tools {
		assign(&result, tool.Name, payloads[i])
	}
	observability.RecordWorkflowRun("success")
	w.logger.Debug("workflow complete",
		zap.String("chain", chain),
		zap.String("hash", hash),
		zap.Int("failed_tools", failed),
	)
	return result, nil
}

// runTool fetches the transaction and runs one tool, returning its payload or
// an error marker.
func (w *Workflow) runTool(ctx context.Context, tool tools.Tool, chain, hash string) json.RawMessage {
	start := time.Now()
	payload, err := w.analyze(ctx, tool, chain, hash)
	observability.RecordTool(tool.Name, time.Since(start).Seconds(), err != nil)
	if err != nil {
		w.logger.Warn("analysis tool failed",
			zap.String("tool", tool.Name),
			zap.String("hash", hash),
			zap.Error(err),
		)
		marker, _ := json.Marshal(domain.ErrorMarker{Error: tool.FailureLabel})
		return marker
	}
	return payload
}

func (w *Workflow) analyze(ctx context.Context, tool tools.Tool, chain, hash string) (payload json.RawMessage, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool %s panicked: %v", tool.Name, r)
		}
	}()

	resp, err := w.provider.GetTransaction(ctx, chain, hash)
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	if resp == nil || len(resp.Items) == 0 {
		return nil, fmt.Errorf("No transaction found for hash %s", hash)
	}
	tx := resp.Items[0]
	tx.Normalize()

	out, err := tool.Analyze(chain, &tx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", tool.Name, err)
	}
	return data, nil
}

// FailedTools lists the tools whose payload is an error marker.
func FailedTools(r domain.WorkflowResult) []string {
	failed := make([]string, 0, len(toolNames))
	for _, name := range toolNames {
		if !r.Success || domain.IsErrorMarker(payload(r, name)) {
			failed = append(failed, name)
		}
	}
	return failed
}

var toolNames = []string{
	tools.NameTradingPattern,
	tools.NameMarketSentiment,
	tools.NameVolumeAnalysis,
	tools.NameReputationAnalysis,
}

func assign(r *domain.WorkflowResult, name string, p json.RawMessage) {
	switch name {
	case tools.NameTradingPattern:
		r.TradingPattern = p
	case tools.NameMarketSentiment:
		r.MarketSentiment = p
	case tools.NameVolumeAnalysis:
		r.VolumeAnalysis = p
	case tools.NameReputationAnalysis:
		r.ReputationAnalysis = p
	}
}

func payload(r domain.WorkflowResult, name string) json.RawMessage {
	switch name {
	case tools.NameTradingPattern:
		return r.TradingPattern
	case tools.NameMarketSentiment:
		return r.MarketSentiment
	case tools.NameVolumeAnalysis:
		return r.VolumeAnalysis
	case tools.NameReputationAnalysis:
		return r.ReputationAnalysis
	}
	return nil
}
