// Package advisory consults an optional text-completion service about a trade
// batch and reduces its free-text answer to a coarse risk signal.
package advisory

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"chain-risk-lab/internal/domain"
	"chain-risk-lab/internal/observability"
)

// ErrDisabled is returned by Disabled.
var ErrDisabled = errors.New("advisory analysis disabled")

// ParsedConfidence is the confidence assigned to any parsed answer.
const ParsedConfidence = 0.8

// PatternKeywords are matched case-insensitively against the answer, in order.
var PatternKeywords = []string{
	"rug pull",
	"honeypot",
	"pump and dump",
	"flash loan",
	"front running",
	"price manipulation",
	"phishing",
	"impersonation",
}

// Analyzer produces an advisory signal for a batch of trades.
type Analyzer interface {
	Analyze(ctx context.Context, trades []domain.Trade) (domain.AdvisoryResult, error)
}

// Disabled is an Analyzer that always fails, so callers degrade to the
// unknown signal.
type Disabled struct{}

// Analyze implements Analyzer.
func (Disabled) Analyze(context.Context, []domain.Trade) (domain.AdvisoryResult, error) {
	return domain.AdvisoryResult{}, ErrDisabled
}

// ParseResponse extracts the risk label and mentioned patterns from free text.
func ParseResponse(text string) domain.AdvisoryResult {
	lower := strings.ToLower(text)

	assessment := "low"
	switch {
	case strings.Contains(lower, "high risk"):
		assessment = "high"
	case strings.Contains(lower, "medium risk"):
		assessment = "medium"
	}

	patterns := make([]string, 0)
	for _, kw := range PatternKeywords {
		if strings.Contains(lower, kw) {
			patterns = append(patterns, kw)
		}
	}

	return domain.AdvisoryResult{
		RiskAssessment:   assessment,
		Confidence:       ParsedConfidence,
		DetectedPatterns: patterns,
	}
}

// Evaluate runs the analyzer and degrades any failure to the unknown,
// zero-confidence signal. It never returns an error.
func Evaluate(ctx context.Context, a Analyzer, trades []domain.Trade, logger *zap.Logger) domain.AdvisoryResult {
	if logger == nil {
		logger = zap.NewNop()
	}
	if a == nil {
		a = Disabled{}
	}

	res, err := a.Analyze(ctx, trades)
	if err != nil {
		if !errors.Is(err, ErrDisabled) {
			logger.Warn("advisory analysis failed", zap.Error(err))
		}
		observability.RecordAdvisory("degraded")
		return domain.UnknownAdvisory(err.Error())
	}
	if res.DetectedPatterns == nil {
		res.DetectedPatterns = []string{}
	}
	observability.RecordAdvisory("ok")
	return res
}
