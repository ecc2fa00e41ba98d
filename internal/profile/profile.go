// Package profile aggregates a trade sequence into a trader profile.
package profile

import (
	"chain-risk-lab/internal/domain"
)

// WeekMillis is the divisor used for trading frequency.
const WeekMillis = 7 * 24 * 60 * 60 * 1000

// Risk tier thresholds on unique token count.
const (
	HighRiskTokenCount   = 10
	MediumRiskTokenCount = 5
)

// Build computes a TraderProfile from trades in array order.
// An empty sequence yields a zero-valued conservative profile.
func Build(trades []domain.Trade) domain.TraderProfile {
	tokens := make(map[string]struct{})
	for _, t := range trades {
		for _, sym := range []string{t.TokenIn.Symbol, t.TokenOut.Symbol} {
			if validSymbol(sym) {
				tokens[sym] = struct{}{}
			}
		}
	}

	venues := make([]string, 0, len(trades))
	uniqueVenues := make(map[string]struct{})
	for _, t := range trades {
		if validVenue(t.Dex) {
			venues = append(venues, t.Dex)
			uniqueVenues[t.Dex] = struct{}{}
		}
	}

	return domain.TraderProfile{
		TotalTrades:          len(trades),
		UniqueDexCount:       len(uniqueVenues),
		UniqueTokenCount:     len(tokens),
		PreferredDex:         mostFrequent(venues),
		AvgTimeBetweenTrades: avgInterval(trades),
		TradingFrequency:     float64(len(trades)) / WeekMillis,
		RiskProfile:          RiskTier(len(tokens)),
	}
}

// RiskTier maps a unique token count to a tier.
func RiskTier(uniqueTokens int) string {
	switch {
	case uniqueTokens > HighRiskTokenCount:
		return domain.RiskTierHigh
	case uniqueTokens > MediumRiskTokenCount:
		return domain.RiskTierMedium
	default:
		return domain.RiskTierConservative
	}
}

func validSymbol(sym string) bool {
	return sym != "" && sym != domain.SymbolUnknown && sym != "undefined"
}

func validVenue(venue string) bool {
	return venue != "" && venue != domain.VenueUnknown
}

// avgInterval averages the positive deltas between adjacent trades that
// both have a block time.
func avgInterval(trades []domain.Trade) float64 {
	var sum float64
	var n int
	for i := 1; i < len(trades); i++ {
		delta, ok := trades[i].Since(trades[i-1])
		if !ok || delta <= 0 {
			continue
		}
		sum += float64(delta)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// mostFrequent returns the most common value; ties go to the value seen first.
func mostFrequent(values []string) string {
	counts := make(map[string]int, len(values))
	var best string
	bestCount := 0
	for _, v := range values {
		counts[v]++
	}
	for _, v := range values {
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}
	return best
}
