package collector

import (
	"strings"
	"time"

	"chain-risk-lab/internal/domain"
	"chain-risk-lab/internal/idhash"
)

// ScanReport condenses a successful collection into a persistable report.
// Returns nil for failed collections.
func ScanReport(r domain.CollectionResult, chain, wallet string, now time.Time) *domain.ScanReport {
	if !r.Success || r.ScamAnalysis == nil {
		return nil
	}
	at := now.UnixMilli()
	wallet = strings.ToLower(wallet)
	report := &domain.ScanReport{
		ReportID:              idhash.ComputeReportID(chain, wallet, at),
		Chain:                 chain,
		WalletAddress:         wallet,
		RiskLevel:             r.ScamAnalysis.RiskLevel,
		ScamProbability:       r.ScamAnalysis.ScamProbability,
		Confidence:            r.ScamAnalysis.Confidence,
		Warnings:              append([]string{}, r.ScamAnalysis.Warnings...),
		SophisticatedPatterns: append([]string{}, r.ScamAnalysis.SophisticatedPatterns...),
		GeneratedAt:           at,
	}
	if r.Profile != nil {
		report.RiskProfile = r.Profile.RiskProfile
	}
	if r.Summary != nil {
		report.TotalTransactions = r.Summary.TotalTransactions
		report.DexTransactions = r.Summary.DexTransactions
	}
	return report
}
