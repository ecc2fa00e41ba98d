package reporting

import "time"

// Report is the rendered view of one wallet scan plus its stored history.
type Report struct {
	// Metadata
	GeneratedAt   time.Time
	Chain         string
	WalletAddress string

	Summary SummarySection
	Risk    RiskSection
	Profile ProfileSection

	// Trades in history order
	Trades []TradeRow

	// Previous scans of the same wallet, newest first
	History []HistoryRow
}

// SummarySection describes the fetched history.
type SummarySection struct {
	TotalTransactions int
	DexTransactions   int
	TimespanStart     string
	TimespanEnd       string
}

// RiskSection holds the scored outcome.
type RiskSection struct {
	Level                  string
	ScamProbability        float64
	Warnings               []string
	Findings               []FindingRow
	SophisticatedPatterns  []string
	SophisticatedRiskLevel string
	Confidence             float64
	Advisory               string // risk assessment, or "unavailable: <reason>"
}

// FindingRow is one detector outcome.
type FindingRow struct {
	Name     string
	Detected bool
	Weight   float64
}

// ProfileSection mirrors the trader profile.
type ProfileSection struct {
	TotalTrades          int
	UniqueDexCount       int
	UniqueTokenCount     int
	PreferredDex         string
	AvgTimeBetweenTrades float64 // ms
	TradingFrequency     float64
	RiskProfile          string
}

// TradeRow represents one row in the trades table.
type TradeRow struct {
	Timestamp   int64 // Unix ms
	TxHash      string
	Dex         string
	TokenIn     string
	AmountIn    string
	TokenOut    string
	AmountOut   string
	BlockHeight int64
}

// HistoryRow is one stored scan report.
type HistoryRow struct {
	ReportID        string
	GeneratedAt     int64 // Unix ms
	RiskLevel       string
	ScamProbability float64
	Confidence      float64
	WarningCount    int
}
