// Package tools holds the per-transaction analysis tools run by the risk
// workflow. Every tool is a pure function of one transaction.
package tools

import (
	"fmt"
	"math/big"

	ethmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/shopspring/decimal"

	"chain-risk-lab/internal/domain"
)

// Tool names, as they appear in WorkflowResult.
const (
	NameTradingPattern     = "tradingPattern"
	NameMarketSentiment    = "marketSentiment"
	NameVolumeAnalysis     = "volumeAnalysis"
	NameReputationAnalysis = "reputationAnalysis"
)

// AnalyzeFunc derives a JSON-serializable opinion from one transaction.
type AnalyzeFunc func(chain string, tx *domain.RawTransaction) (any, error)

// Tool is a named analyzer plus the message used in its error marker.
type Tool struct {
	Name         string
	FailureLabel string
	Analyze      AnalyzeFunc
}

// Registry returns the four tools in result order.
func Registry() []Tool {
	return []Tool{
		{Name: NameTradingPattern, FailureLabel: "Trading pattern analysis failed", Analyze: TradingPattern},
		{Name: NameMarketSentiment, FailureLabel: "Market sentiment analysis failed", Analyze: MarketSentiment},
		{Name: NameVolumeAnalysis, FailureLabel: "Volume analysis failed", Analyze: VolumeAnalysis},
		{Name: NameReputationAnalysis, FailureLabel: "Reputation analysis failed", Analyze: ReputationAnalysis},
	}
}

// Unit scales.
var (
	weiPerEth  = decimal.New(1, 18)
	weiPerGwei = decimal.New(1, 9)
)

// SubErrors records failed sub-analyses of a tool payload by field name.
type SubErrors map[string]string

func (s SubErrors) capture(field string, err error) bool {
	if err == nil {
		return false
	}
	s[field] = err.Error()
	return true
}

func (s SubErrors) orNil() SubErrors {
	if len(s) == 0 {
		return nil
	}
	return s
}

// parseDecimal reads a quantity as an exact decimal. Empty means zero.
func parseDecimal(field string, q domain.Quantity) (decimal.Decimal, error) {
	d, err := q.Decimal()
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %s %q: %w", field, q, err)
	}
	return d, nil
}

// parseInteger reads a quantity as a 256-bit integer. Empty means zero.
func parseInteger(field string, q domain.Quantity) (*big.Int, error) {
	if q == "" {
		return new(big.Int), nil
	}
	v, ok := ethmath.ParseBig256(q.String())
	if !ok {
		return nil, fmt.Errorf("parse %s %q: not an integer", field, q)
	}
	return v, nil
}
