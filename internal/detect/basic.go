// Package detect implements heuristic scam-pattern detectors over trade sequences.
//
// Detectors compare trades in array order, not time order. Callers that need
// chronological semantics must sort before calling.
package detect

import (
	ethmath "github.com/ethereum/go-ethereum/common/math"

	"chain-risk-lab/internal/domain"
)

// Detector is a named pure heuristic with its contribution to a risk score.
type Detector struct {
	Name   string
	Label  string
	Weight float64
	Detect func(trades []domain.Trade) bool
}

// Basic detector names.
const (
	NamePhishing    = "phishing"
	NameRugPull     = "rugPull"
	NamePumpAndDump = "pumpAndDump"
	NameHoneypot    = "honeypot"
)

// Thresholds.
const (
	RugPullWindowMillis = 3_600_000
	RugPullMinAmount    = 1_000_000
	PumpSpikeFactor     = 3
	PumpMinSpikes       = 2
)

// MaxUint256 is the decimal form of 2^256-1, the unlimited-approval amount.
var MaxUint256 = ethmath.MaxBig256.String()

// BasicBank is the fixed-order basic detector bank.
var BasicBank = []Detector{
	{Name: NamePhishing, Label: "Phishing", Weight: 0.3, Detect: Phishing},
	{Name: NameRugPull, Label: "Rug Pull", Weight: 0.3, Detect: RugPull},
	{Name: NamePumpAndDump, Label: "Pump and Dump", Weight: 0.2, Detect: PumpAndDump},
	{Name: NameHoneypot, Label: "Honeypot", Weight: 0.2, Detect: Honeypot},
}

// Phishing flags any trade whose tokenIn amount is the max uint256 value.
func Phishing(trades []domain.Trade) bool {
	for _, t := range trades {
		if t.TokenIn.Amount.String() == MaxUint256 {
			return true
		}
	}
	return false
}

// RugPull flags an adjacent pair less than an hour apart where the later
// trade moves more than RugPullMinAmount. Pairs without block times are skipped.
func RugPull(trades []domain.Trade) bool {
	for i := 1; i < len(trades); i++ {
		delta, ok := trades[i].Since(trades[i-1])
		if !ok {
			continue
		}
		if delta < RugPullWindowMillis && trades[i].TokenIn.Amount.Float() > RugPullMinAmount {
			return true
		}
	}
	return false
}

// PumpAndDump flags at least two adjacent volume spikes of more than 3x.
func PumpAndDump(trades []domain.Trade) bool {
	if len(trades) < 2 {
		return false
	}
	spikes := 0
	for i := 1; i < len(trades); i++ {
		cur := trades[i].TokenIn.Amount.Float()
		prev := trades[i-1].TokenIn.Amount.Float()
		if cur > prev*PumpSpikeFactor {
			spikes++
		}
	}
	return spikes >= PumpMinSpikes
}

// Honeypot flags sequences with at least one buy and no sell.
func Honeypot(trades []domain.Trade) bool {
	buys, sells := 0, 0
	for _, t := range trades {
		if !t.TokenOut.Amount.IsZero() {
			buys++
		}
		if !t.TokenIn.Amount.IsZero() {
			sells++
		}
	}
	return buys > 0 && sells == 0
}

// Run evaluates every detector of a bank in order.
func Run(bank []Detector, trades []domain.Trade) []domain.Finding {
	findings := make([]domain.Finding, 0, len(bank))
	for _, d := range bank {
		findings = append(findings, domain.Finding{
			Name:     d.Name,
			Detected: d.Detect(trades),
			Weight:   d.Weight,
		})
	}
	return findings
}

// Basic runs the basic bank and folds the findings into PatternFlags.
func Basic(trades []domain.Trade) (domain.PatternFlags, []domain.Finding) {
	findings := Run(BasicBank, trades)
	var flags domain.PatternFlags
	for _, f := range findings {
		switch f.Name {
		case NamePhishing:
			flags.Phishing = f.Detected
		case NameRugPull:
			flags.RugPull = f.Detected
		case NamePumpAndDump:
			flags.PumpAndDump = f.Detected
		case NameHoneypot:
			flags.Honeypot = f.Detected
		}
	}
	return flags, findings
}
