package domain

// Trade is a DEX interaction reconstructed from one transaction's transfer logs.
// Trades live only for the duration of one collection run.
type Trade struct {
	BlockHeight   int64    `json:"blockHeight"`
	Timestamp     int64    `json:"timestamp"` // Unix ms, 0 when the block time is unparseable
	NoTimestamp   bool     `json:"-"`         // block time was missing or unparseable
	TxHash        string   `json:"txHash"`
	WalletAddress string   `json:"walletAddress"`
	Dex           string   `json:"dex"` // venue identifier or VenueUnknown
	TokenIn       TokenLeg `json:"tokenIn"`
	TokenOut      TokenLeg `json:"tokenOut"`
}

// Since returns the milliseconds from prev to t. ok is false when either
// trade has no usable block time; such pairs never satisfy a time window.
func (t Trade) Since(prev Trade) (int64, bool) {
	if t.NoTimestamp || prev.NoTimestamp {
		return 0, false
	}
	return t.Timestamp - prev.Timestamp, true
}

// TokenLeg is one side of a trade.
type TokenLeg struct {
	Address string   `json:"address"`
	Symbol  string   `json:"symbol"`
	Amount  Quantity `json:"amount"`
}

// EmptyLeg is the placeholder returned when no matching transfer exists.
func EmptyLeg() TokenLeg {
	return TokenLeg{Address: "", Symbol: "", Amount: ZeroQuantity}
}

// Venue and symbol sentinels.
const (
	VenueUnknown  = "unknown"
	SymbolUnknown = "UNKNOWN"

	// NativeTokenAddress identifies the chain's native asset in a TokenLeg.
	NativeTokenAddress = "0x0000000000000000000000000000000000000000"
)

// Risk tiers of a TraderProfile.
const (
	RiskTierConservative = "conservative"
	RiskTierMedium       = "medium_risk"
	RiskTierHigh         = "high_risk"
)

// TraderProfile aggregates a trade sequence. Recomputed on every run.
type TraderProfile struct {
	TotalTrades          int     `json:"totalTrades"`
	UniqueDexCount       int     `json:"uniqueDexCount"`
	UniqueTokenCount     int     `json:"uniqueTokenCount"`
	PreferredDex         string  `json:"preferredDex"`
	AvgTimeBetweenTrades float64 `json:"avgTimeBetweenTrades"` // ms
	TradingFrequency     float64 `json:"tradingFrequency"`     // trades per week-in-ms
	RiskProfile          string  `json:"riskProfile"`
}
