package tools

import (
	"github.com/shopspring/decimal"

	"chain-risk-lab/internal/domain"
)

const (
	baseSenderScore   = 50
	complexInputChars = 100
)

var highGasWei = decimal.New(1, 11)

// Risk factor strings.
const (
	FactorHighValue   = "High-value transaction"
	FactorHighGas     = "High gas price - potential urgency"
	FactorContractUse = "Contract interaction"
)

// ReputationReport is the reputation tool payload. A sub-analysis that
// could not run is null and explained in SubErrors.
type ReputationReport struct {
	SenderScore        *float64            `json:"senderScore"`
	RiskFactors        []string            `json:"riskFactors"`
	TransactionProfile *TransactionProfile `json:"transactionProfile"`
	SecurityMetrics    *SecurityMetrics    `json:"securityMetrics"`
	SubErrors          SubErrors           `json:"subErrors,omitempty"`
}

type TransactionProfile struct {
	Type      string     `json:"type"`
	Value     string     `json:"value"`
	GasUsage  GasMetrics `json:"gasUsage"`
	Timestamp string     `json:"timestamp"`
}

type SecurityMetrics struct {
	RiskLevel        string           `json:"riskLevel"`
	ComplexityScore  string           `json:"complexityScore"`
	ValidationStatus ValidationStatus `json:"validationStatus"`
}

type ValidationStatus struct {
	IsValid bool     `json:"isValid"`
	Checks  []string `json:"checks"`
}

// ReputationAnalysis scores the sender and lists risk factors.
func ReputationAnalysis(chain string, tx *domain.RawTransaction) (any, error) {
	report := ReputationReport{
		TransactionProfile: &TransactionProfile{
			Type:  transactionType(chain, tx.ToAddress, TypeStandardTransfer),
			Value: tx.Value.String(),
			GasUsage: GasMetrics{
				Price: tx.GasPrice.String(),
				Spent: tx.GasSpent.String(),
			},
			Timestamp: tx.BlockSignedAt,
		},
	}
	errs := SubErrors{}

	value, verr := parseDecimal("value", tx.Value)
	gasPrice, gerr := parseDecimal("gas price", tx.GasPrice)
	numErr := verr
	if numErr == nil {
		numErr = gerr
	}

	if !errs.capture("senderScore", numErr) {
		score := senderScore(value, gasPrice)
		report.SenderScore = &score
	}
	if !errs.capture("riskFactors", numErr) {
		report.RiskFactors = riskFactors(chain, tx, value, gasPrice)
	}
	if !errs.capture("securityMetrics", numErr) {
		report.SecurityMetrics = &SecurityMetrics{
			RiskLevel:       securityRiskLevel(value, gasPrice),
			ComplexityScore: complexity(tx.Input),
			ValidationStatus: ValidationStatus{
				IsValid: true,
				Checks:  []string{"valid_addresses", "valid_value", "valid_gas"},
			},
		}
	}

	report.SubErrors = errs.orNil()
	return report, nil
}

func senderScore(value, gasPrice decimal.Decimal) float64 {
	score := float64(baseSenderScore)
	if value.GreaterThan(weiPerEth) {
		score -= 10
	}
	if gasPrice.GreaterThan(highGasWei) {
		score -= 5
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func riskFactors(chain string, tx *domain.RawTransaction, value, gasPrice decimal.Decimal) []string {
	factors := make([]string, 0, 3)
	if value.GreaterThan(weiPerEth) {
		factors = append(factors, FactorHighValue)
	}
	if gasPrice.GreaterThan(highGasWei) {
		factors = append(factors, FactorHighGas)
	}
	if transactionType(chain, tx.ToAddress, "") == TypeContractInteraction {
		factors = append(factors, FactorContractUse)
	}
	return factors
}

func securityRiskLevel(value, gasPrice decimal.Decimal) string {
	highValue := value.GreaterThan(weiPerEth)
	highGas := gasPrice.GreaterThan(highGasWei)
	switch {
	case highValue && highGas:
		return "high"
	case highValue || highGas:
		return "medium"
	default:
		return "low"
	}
}

func complexity(input string) string {
	if len(input) > complexInputChars {
		return "high"
	}
	return "low"
}
