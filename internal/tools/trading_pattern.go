package tools

import (
	"github.com/shopspring/decimal"

	"chain-risk-lab/internal/address"
	"chain-risk-lab/internal/domain"
)

// Transaction types.
const (
	TypeContractInteraction = "contract_interaction"
	TypeTransfer            = "transfer"
	TypeStandardTransfer    = "standard_transfer"
)

const tradingStyleConfidence = 0.8

// TradingPatternReport is the trading pattern tool payload.
type TradingPatternReport struct {
	TransactionDetails TransactionDetails `json:"transactionDetails"`
	RiskLevel          *RiskScore         `json:"riskLevel"`
	TradingStyle       *TradingStyle      `json:"tradingStyle"`
	SubErrors          SubErrors          `json:"subErrors,omitempty"`
}

// TransactionDetails echoes the analyzed transaction.
type TransactionDetails struct {
	Value     string `json:"value"`
	Timestamp string `json:"timestamp"`
	From      string `json:"from"`
	To        string `json:"to"`
	GasPrice  string `json:"gasPrice"`
	GasSpent  string `json:"gasSpent"`
}

// RiskScore averages a value score and a gas price score, each capped at 100.
type RiskScore struct {
	Value     string  `json:"value"`
	GasPrice  string  `json:"gasPrice"`
	RiskScore float64 `json:"riskScore"`
}

// TradingStyle classifies the interaction.
type TradingStyle struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// TradingPattern analyzes value, gas price and recipient kind.
func TradingPattern(chain string, tx *domain.RawTransaction) (any, error) {
	report := TradingPatternReport{
		TransactionDetails: TransactionDetails{
			Value:     tx.Value.String(),
			Timestamp: tx.BlockSignedAt,
			From:      tx.FromAddress,
			To:        tx.ToAddress,
			GasPrice:  tx.GasPrice.String(),
			GasSpent:  tx.GasSpent.String(),
		},
	}
	errs := SubErrors{}

	score, err := riskScore(tx)
	if !errs.capture("riskLevel", err) {
		report.RiskLevel = score
	}
	report.TradingStyle = &TradingStyle{
		Type:       transactionType(chain, tx.ToAddress, TypeTransfer),
		Confidence: tradingStyleConfidence,
	}

	report.SubErrors = errs.orNil()
	return report, nil
}

func riskScore(tx *domain.RawTransaction) (*RiskScore, error) {
	value, err := parseDecimal("value", tx.Value)
	if err != nil {
		return nil, err
	}
	gasPrice, err := parseDecimal("gas price", tx.GasPrice)
	if err != nil {
		return nil, err
	}

	hundred := decimal.NewFromInt(100)
	valueScore := decimal.Min(value.Div(weiPerEth).Mul(decimal.NewFromInt(10)), hundred)
	gasScore := decimal.Min(gasPrice.Div(weiPerGwei).Div(hundred), hundred)

	return &RiskScore{
		Value:     value.String(),
		GasPrice:  gasPrice.String(),
		RiskScore: valueScore.Add(gasScore).Div(decimal.NewFromInt(2)).InexactFloat64(),
	}, nil
}

// transactionType labels contract calls; fallback names the other case.
func transactionType(chain, to, fallback string) string {
	if to != "" && address.IsContract(chain, to) {
		return TypeContractInteraction
	}
	return fallback
}
