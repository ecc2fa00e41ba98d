// Package risk combines detector outcomes into scores, levels and warnings.
package risk

import (
	"math"

	"chain-risk-lab/internal/detect"
	"chain-risk-lab/internal/domain"
)

// Basic flag weights.
const (
	WeightPhishing    = 0.3
	WeightRugPull     = 0.3
	WeightPumpAndDump = 0.2
	WeightHoneypot    = 0.2
)

// Level thresholds.
const (
	HighThreshold   = 0.6
	MediumThreshold = 0.3
)

// AdvisoryWeight scales the advisory confidence added to the structural score.
const AdvisoryWeight = 0.5

// Warning strings, one per basic flag.
const (
	WarningPhishing    = "⚠️ Potential phishing attempt detected. Be cautious with token approvals."
	WarningRugPull     = "⚠️ Suspicious liquidity patterns detected. Possible rug pull risk."
	WarningPumpAndDump = "⚠️ Unusual price manipulation patterns detected. Potential pump and dump scheme."
	WarningHoneypot    = "⚠️ Token shows characteristics of a honeypot. Selling might be restricted."
)

// Score is the weighted sum of the basic flags, in [0,1].
func Score(flags domain.PatternFlags) float64 {
	var score float64
	if flags.Phishing {
		score += WeightPhishing
	}
	if flags.RugPull {
		score += WeightRugPull
	}
	if flags.PumpAndDump {
		score += WeightPumpAndDump
	}
	if flags.Honeypot {
		score += WeightHoneypot
	}
	return clamp01(score)
}

// Level maps a score to a discrete risk level.
func Level(score float64) domain.RiskLevel {
	switch {
	case score >= HighThreshold:
		return domain.RiskHigh
	case score >= MediumThreshold:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// Warnings returns one warning per set flag in the order
// phishing, rug pull, pump and dump, honeypot.
func Warnings(flags domain.PatternFlags) []string {
	warnings := make([]string, 0, 4)
	if flags.Phishing {
		warnings = append(warnings, WarningPhishing)
	}
	if flags.RugPull {
		warnings = append(warnings, WarningRugPull)
	}
	if flags.PumpAndDump {
		warnings = append(warnings, WarningPumpAndDump)
	}
	if flags.Honeypot {
		warnings = append(warnings, WarningHoneypot)
	}
	return warnings
}

// Sophisticated scores the weighted structural bank plus half the advisory
// confidence, capped at 1. Labels list structural patterns first, then the
// advisory keywords.
func Sophisticated(trades []domain.Trade, advisory domain.AdvisoryResult) domain.SophisticatedAnalysis {
	findings, labels, score := detect.Structural(trades)

	conf := advisory.Confidence
	if math.IsNaN(conf) || conf < 0 {
		conf = 0
	}
	score = math.Min(score+conf*AdvisoryWeight, 1)

	labels = append(labels, advisory.DetectedPatterns...)
	if advisory.DetectedPatterns == nil {
		advisory.DetectedPatterns = []string{}
	}

	return domain.SophisticatedAnalysis{
		Patterns:   labels,
		RiskLevel:  Level(score),
		Confidence: score,
		Findings:   findings,
		Advisory:   advisory,
	}
}

// Analyze runs both banks and merges them. The sophisticated outcome is
// reported alongside the basic score, never in place of it.
func Analyze(trades []domain.Trade, advisory domain.AdvisoryResult) domain.ScamAnalysis {
	flags, findings := detect.Basic(trades)
	score := Score(flags)
	soph := Sophisticated(trades, advisory)

	return domain.ScamAnalysis{
		RiskLevel:              Level(score),
		ScamProbability:        score,
		Warnings:               Warnings(flags),
		DetectedPatterns:       flags,
		Findings:               append(findings, soph.Findings...),
		SophisticatedPatterns:  soph.Patterns,
		SophisticatedRiskLevel: soph.RiskLevel,
		Confidence:             soph.Confidence,
		Advisory:               soph.Advisory,
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
