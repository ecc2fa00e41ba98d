package detect

import (
	"math"

	"chain-risk-lab/internal/domain"
)

// Sophisticated detector names.
const (
	NameFlashLoan    = "flashLoan"
	NameFrontRunning = "frontRunning"
	NameSandwich     = "sandwich"
)

// Labels reported for detected sophisticated patterns.
const (
	LabelFlashLoan    = "Flash Loan Attack Pattern"
	LabelFrontRunning = "Front-Running Pattern"
	LabelSandwich     = "Sandwich Attack Pattern"
)

// Thresholds.
const (
	FlashLoanSpread      = 1000
	FrontRunBlockWindow  = 2
	SandwichWindowMillis = 60_000
)

// SophisticatedBank is the fixed-order weighted detector bank.
var SophisticatedBank = []Detector{
	{Name: NameFlashLoan, Label: LabelFlashLoan, Weight: 0.4, Detect: FlashLoan},
	{Name: NameFrontRunning, Label: LabelFrontRunning, Weight: 0.3, Detect: FrontRunning},
	{Name: NameSandwich, Label: LabelSandwich, Weight: 0.3, Detect: Sandwich},
}

// FlashLoan flags any block holding two or more trades whose largest tokenIn
// amount exceeds FlashLoanSpread times the smallest. A group containing an
// unparseable amount never flags.
func FlashLoan(trades []domain.Trade) bool {
	groups := make(map[int64][]float64)
	for _, t := range trades {
		groups[t.BlockHeight] = append(groups[t.BlockHeight], t.TokenIn.Amount.Float())
	}

	for _, values := range groups {
		if len(values) < 2 {
			continue
		}
		maxV, minV := values[0], values[0]
		poisoned := false
		for _, v := range values {
			if math.IsNaN(v) {
				poisoned = true
				break
			}
			if v > maxV {
				maxV = v
			}
			if v < minV {
				minV = v
			}
		}
		if !poisoned && maxV > minV*FlashLoanSpread {
			return true
		}
	}
	return false
}

// FrontRunning flags adjacent trades at most FrontRunBlockWindow blocks apart
// (later minus earlier, so a decreasing height also matches) that share the
// same tokenIn and tokenOut symbols.
func FrontRunning(trades []domain.Trade) bool {
	for i := 1; i < len(trades); i++ {
		cur, prev := trades[i], trades[i-1]
		if cur.BlockHeight-prev.BlockHeight > FrontRunBlockWindow {
			continue
		}
		if cur.TokenIn.Symbol == prev.TokenIn.Symbol && cur.TokenOut.Symbol == prev.TokenOut.Symbol {
			return true
		}
	}
	return false
}

// Sandwich flags three consecutive trades spanning under a minute where the
// outer trades share a tokenIn symbol that the middle trade does not. Only
// the outer trades' block times are compared.
func Sandwich(trades []domain.Trade) bool {
	for i := 2; i < len(trades); i++ {
		first, mid, last := trades[i-2], trades[i-1], trades[i]
		span, ok := last.Since(first)
		if !ok || span >= SandwichWindowMillis {
			continue
		}
		if first.TokenIn.Symbol == last.TokenIn.Symbol && mid.TokenIn.Symbol != first.TokenIn.Symbol {
			return true
		}
	}
	return false
}

// Structural runs the sophisticated bank. It returns the findings, the
// labels of detected patterns in bank order and the summed weight.
func Structural(trades []domain.Trade) ([]domain.Finding, []string, float64) {
	findings := Run(SophisticatedBank, trades)
	labels := make([]string, 0, len(findings))
	var score float64
	for i, f := range findings {
		if !f.Detected {
			continue
		}
		labels = append(labels, SophisticatedBank[i].Label)
		score += f.Weight
	}
	return findings, labels, score
}
