package reporting

import (
	"context"
	"errors"
	"time"

	"chain-risk-lab/internal/address"
	"chain-risk-lab/internal/domain"
	"chain-risk-lab/internal/storage"
)

// DefaultHistoryLimit bounds the history section.
const DefaultHistoryLimit = 20

// ErrFailedCollection is returned when asked to report on a failed collection.
var ErrFailedCollection = errors.New("reporting: collection failed")

// Generator produces reports from collection results and stored history.
type Generator struct {
	reports      storage.ScanReportStore
	historyLimit int
	now          func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator. reports may be nil, in which
// case the history section stays empty.
func NewGenerator(reports storage.ScanReportStore) *Generator {
	return &Generator{
		reports:      reports,
		historyLimit: DefaultHistoryLimit,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithHistoryLimit sets how many stored reports are listed.
func (g *Generator) WithHistoryLimit(n int) *Generator {
	g.historyLimit = n
	return g
}

// Generate builds the report for one collection result.
func (g *Generator) Generate(ctx context.Context, chain, wallet string, res domain.CollectionResult) (*Report, error) {
	if !res.Success {
		return nil, ErrFailedCollection
	}

	r := &Report{
		GeneratedAt:   g.now(),
		Chain:         chain,
		WalletAddress: displayAddress(wallet),
		Trades:        tradeRows(res.Trades),
	}

	if s := res.Summary; s != nil {
		r.Summary = SummarySection{
			TotalTransactions: s.TotalTransactions,
			DexTransactions:   s.DexTransactions,
			TimespanStart:     s.Timespan.Start,
			TimespanEnd:       s.Timespan.End,
		}
	}
	if a := res.ScamAnalysis; a != nil {
		r.Risk = riskSection(a)
	}
	if p := res.Profile; p != nil {
		r.Profile = ProfileSection{
			TotalTrades:          p.TotalTrades,
			UniqueDexCount:       p.UniqueDexCount,
			UniqueTokenCount:     p.UniqueTokenCount,
			PreferredDex:         p.PreferredDex,
			AvgTimeBetweenTrades: p.AvgTimeBetweenTrades,
			TradingFrequency:     p.TradingFrequency,
			RiskProfile:          p.RiskProfile,
		}
	}

	if g.reports != nil {
		stored, err := g.reports.ListByWallet(ctx, chain, wallet, g.historyLimit)
		if err != nil {
			return nil, err
		}
		r.History = historyRows(stored)
	}

	return r, nil
}

func riskSection(a *domain.ScamAnalysis) RiskSection {
	findings := make([]FindingRow, 0, len(a.Findings))
	for _, f := range a.Findings {
		findings = append(findings, FindingRow{Name: f.Name, Detected: f.Detected, Weight: f.Weight})
	}

	advisory := a.Advisory.RiskAssessment
	if a.Advisory.Error != "" {
		advisory = "unavailable: " + a.Advisory.Error
	}

	return RiskSection{
		Level:                  string(a.RiskLevel),
		ScamProbability:        a.ScamProbability,
		Warnings:               a.Warnings,
		Findings:               findings,
		SophisticatedPatterns:  a.SophisticatedPatterns,
		SophisticatedRiskLevel: string(a.SophisticatedRiskLevel),
		Confidence:             a.Confidence,
		Advisory:               advisory,
	}
}

func tradeRows(trades []domain.Trade) []TradeRow {
	rows := make([]TradeRow, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, TradeRow{
			Timestamp:   t.Timestamp,
			TxHash:      t.TxHash,
			Dex:         t.Dex,
			TokenIn:     t.TokenIn.Symbol,
			AmountIn:    t.TokenIn.Amount.String(),
			TokenOut:    t.TokenOut.Symbol,
			AmountOut:   t.TokenOut.Amount.String(),
			BlockHeight: t.BlockHeight,
		})
	}
	return rows
}

func historyRows(reports []*domain.ScanReport) []HistoryRow {
	rows := make([]HistoryRow, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, HistoryRow{
			ReportID:        r.ReportID,
			GeneratedAt:     r.GeneratedAt,
			RiskLevel:       string(r.RiskLevel),
			ScamProbability: r.ScamProbability,
			Confidence:      r.Confidence,
			WarningCount:    len(r.Warnings),
		})
	}
	return rows
}

// displayAddress renders EVM wallets in EIP-55 form and leaves others untouched.
func displayAddress(wallet string) string {
	if sum, err := address.Checksum(wallet); err == nil {
		return sum
	}
	return wallet
}
