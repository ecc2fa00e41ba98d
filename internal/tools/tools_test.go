package tools

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chain-risk-lab/internal/domain"
)

const (
	oneEth   = "1000000000000000000"
	twoEth   = "2000000000000000000"
	fiveGwei = "5000000000"
)

func tx(value, gasPrice string) *domain.RawTransaction {
	return &domain.RawTransaction{
		TxHash:        "0xabc",
		BlockSignedAt: "2024-01-01T00:00:00Z",
		FromAddress:   "0x00000000000000000000000000000000000000aa",
		ToAddress:     "0x7a250d5630b4cf539739df2c5dacb4c659f2488d",
		Value:         domain.Quantity(value),
		GasPrice:      domain.Quantity(gasPrice),
		GasSpent:      "21000",
	}
}

func TestRegistry(t *testing.T) {
	reg := Registry()
	require.Len(t, reg, 4)
	assert.Equal(t, NameTradingPattern, reg[0].Name)
	assert.Equal(t, "Trading pattern analysis failed", reg[0].FailureLabel)
	assert.Equal(t, NameReputationAnalysis, reg[3].Name)
	for _, tool := range reg {
		assert.NotNil(t, tool.Analyze, tool.Name)
	}
}

func TestTradingPattern(t *testing.T) {
	out, err := TradingPattern("eth-mainnet", tx(twoEth, "300000000000"))
	require.NoError(t, err)
	report := out.(TradingPatternReport)

	assert.Equal(t, twoEth, report.TransactionDetails.Value)
	assert.Equal(t, "21000", report.TransactionDetails.GasSpent)
	require.NotNil(t, report.RiskLevel)
	// value score 20, gas score 300/100 = 3
	assert.InDelta(t, 11.5, report.RiskLevel.RiskScore, 1e-9)
	require.NotNil(t, report.TradingStyle)
	assert.Equal(t, TypeContractInteraction, report.TradingStyle.Type)
	assert.Equal(t, 0.8, report.TradingStyle.Confidence)
	assert.Nil(t, report.SubErrors)
}

func TestTradingPattern_ScoreCaps(t *testing.T) {
	out, err := TradingPattern("eth-mainnet", tx("100000000000000000000", "100000000000000"))
	require.NoError(t, err)
	assert.Equal(t, 100.0, out.(TradingPatternReport).RiskLevel.RiskScore)
}

func TestTradingPattern_UnparseableValue(t *testing.T) {
	out, err := TradingPattern("eth-mainnet", tx("lots", fiveGwei))
	require.NoError(t, err)
	report := out.(TradingPatternReport)
	assert.Nil(t, report.RiskLevel)
	assert.Contains(t, report.SubErrors, "riskLevel")

	data, err := json.Marshal(report)
	require.NoError(t, err)
	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, "null", string(payload["riskLevel"]))
}

func TestTradingPattern_Transfer(t *testing.T) {
	in := tx(oneEth, fiveGwei)
	in.ToAddress = ""
	out, err := TradingPattern("eth-mainnet", in)
	require.NoError(t, err)
	assert.Equal(t, TypeTransfer, out.(TradingPatternReport).TradingStyle.Type)
}

func TestMarketSentiment(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		gas      string
		overall  string
		fomo     float64
		fear     float64
		greed    float64
		nRecs    int
		strength float64
	}{
		{"bullish", twoEth, fiveGwei, SentimentBullish, 0.8, 0.2, 0.8, 2, 0.6},
		{"moderately bullish", twoEth, "1000000000", SentimentModeratelyBullish, 0.3, 0.2, 0.8, 1, 0.6},
		{"urgent", "5", fiveGwei, SentimentUrgent, 0.8, 0.7, 0.4, 1, 0.6},
		{"neutral at thresholds", oneEth, "1000000000", SentimentNeutral, 0.3, 0.2, 0.4, 0, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := MarketSentiment("eth-mainnet", tx(tt.value, tt.gas))
			require.NoError(t, err)
			report := out.(MarketSentimentReport)

			assert.Equal(t, tt.overall, report.MarketSentiment.Overall)
			assert.Equal(t, 0.7, report.MarketSentiment.Confidence)
			assert.Equal(t, tt.strength, report.MarketSentiment.Momentum.Strength)
			assert.Equal(t, tt.fomo, report.EmotionalBias.Fomo)
			assert.Equal(t, tt.fear, report.EmotionalBias.FearLevel)
			assert.Equal(t, tt.greed, report.EmotionalBias.GreedIndex)
			assert.Len(t, report.MarketTiming.Recommendations, tt.nRecs)
			assert.Equal(t, "entry", report.MarketTiming.Timing.Phase)
		})
	}
}

func TestMarketSentiment_BigValues(t *testing.T) {
	out, err := MarketSentiment("eth-mainnet", tx("115792089237316195423570985008687907853269984665640564039457584007913129639935", "1"))
	require.NoError(t, err)
	assert.Equal(t, SentimentModeratelyBullish, out.(MarketSentimentReport).MarketSentiment.Overall)
}

func TestMarketSentiment_UnparseableFails(t *testing.T) {
	_, err := MarketSentiment("eth-mainnet", tx("1.5", fiveGwei))
	assert.Error(t, err)

	_, err = MarketSentiment("eth-mainnet", tx(oneEth, "fast"))
	assert.Error(t, err)
}

func TestVolumeAnalysis(t *testing.T) {
	tests := []struct {
		value  string
		size   string
		impact string
	}{
		{"100000000000000000001", "large", "high"},
		{"100000000000000000000", "medium", "medium"},
		{"10000000000000000000", "small", "low"},
		{"0", "small", "low"},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			out, err := VolumeAnalysis("eth-mainnet", tx(tt.value, fiveGwei))
			require.NoError(t, err)
			report := out.(VolumeReport)
			assert.Equal(t, tt.size, report.VolumeProfile.Size)
			assert.Equal(t, tt.impact, report.VolumeProfile.Impact)
			assert.Equal(t, tt.value, report.TransactionValue)
		})
	}

	out, err := VolumeAnalysis("eth-mainnet", tx("1500000000000000000", fiveGwei))
	require.NoError(t, err)
	report := out.(VolumeReport)
	assert.InDelta(t, 1.5, report.Metrics.ValueInEth, 1e-12)
	assert.InDelta(t, 5, report.Metrics.GasPriceInGwei, 1e-12)

	_, err = VolumeAnalysis("eth-mainnet", tx("garbage", fiveGwei))
	assert.Error(t, err)
}

func TestReputationAnalysis(t *testing.T) {
	out, err := ReputationAnalysis("eth-mainnet", tx(twoEth, "200000000000"))
	require.NoError(t, err)
	report := out.(ReputationReport)

	require.NotNil(t, report.SenderScore)
	assert.Equal(t, 35.0, *report.SenderScore)
	assert.Equal(t, []string{FactorHighValue, FactorHighGas, FactorContractUse}, report.RiskFactors)
	require.NotNil(t, report.SecurityMetrics)
	assert.Equal(t, "high", report.SecurityMetrics.RiskLevel)
	assert.Equal(t, "low", report.SecurityMetrics.ComplexityScore)
	assert.True(t, report.SecurityMetrics.ValidationStatus.IsValid)
	assert.Equal(t, TypeContractInteraction, report.TransactionProfile.Type)
	assert.Nil(t, report.SubErrors)
}

func TestReputationAnalysis_Levels(t *testing.T) {
	out, _ := ReputationAnalysis("eth-mainnet", tx("1", "1"))
	report := out.(ReputationReport)
	assert.Equal(t, 50.0, *report.SenderScore)
	assert.Equal(t, "low", report.SecurityMetrics.RiskLevel)

	out, _ = ReputationAnalysis("eth-mainnet", tx(twoEth, "1"))
	assert.Equal(t, "medium", out.(ReputationReport).SecurityMetrics.RiskLevel)
}

func TestReputationAnalysis_ComplexInput(t *testing.T) {
	in := tx(oneEth, fiveGwei)
	in.Input = "0xa9059cbb" + strings.Repeat("00", 64)
	out, err := ReputationAnalysis("eth-mainnet", in)
	require.NoError(t, err)
	assert.Equal(t, "high", out.(ReputationReport).SecurityMetrics.ComplexityScore)
}

func TestReputationAnalysis_SubAnalysisFailure(t *testing.T) {
	out, err := ReputationAnalysis("eth-mainnet", tx("NaN-ish", fiveGwei))
	require.NoError(t, err)
	report := out.(ReputationReport)

	assert.Nil(t, report.SenderScore)
	assert.Nil(t, report.RiskFactors)
	assert.Nil(t, report.SecurityMetrics)
	require.NotNil(t, report.TransactionProfile)
	assert.Len(t, report.SubErrors, 3)
}

func TestReputationAnalysis_SolanaProgramRecipient(t *testing.T) {
	in := tx("1", "1")
	in.ToAddress = "not-a-solana-key"
	out, err := ReputationAnalysis("solana-mainnet", in)
	require.NoError(t, err)
	report := out.(ReputationReport)
	assert.Equal(t, TypeStandardTransfer, report.TransactionProfile.Type)
	assert.NotContains(t, report.RiskFactors, FactorContractUse)
}
