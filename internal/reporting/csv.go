package reporting

import (
	"fmt"
	"strings"
)

// RenderTradesCSV renders reconstructed trades as CSV string.
func RenderTradesCSV(trades []TradeRow) string {
	var sb strings.Builder

	sb.WriteString("timestamp_ms,block_height,tx_hash,dex,token_in,amount_in,token_out,amount_out\n")
	for _, t := range trades {
		sb.WriteString(fmt.Sprintf("%d,%d,%s,%s,%s,%s,%s,%s\n",
			t.Timestamp,
			t.BlockHeight,
			t.TxHash,
			t.Dex,
			csvField(t.TokenIn),
			t.AmountIn,
			csvField(t.TokenOut),
			t.AmountOut,
		))
	}

	return sb.String()
}

// RenderHistoryCSV renders stored scan reports as CSV string.
func RenderHistoryCSV(history []HistoryRow) string {
	var sb strings.Builder

	sb.WriteString("report_id,generated_at_ms,risk_level,scam_probability,confidence,warning_count\n")
	for _, h := range history {
		sb.WriteString(fmt.Sprintf("%s,%d,%s,%.6f,%.6f,%d\n",
			h.ReportID,
			h.GeneratedAt,
			h.RiskLevel,
			h.ScamProbability,
			h.Confidence,
			h.WarningCount,
		))
	}

	return sb.String()
}

// csvField quotes token symbols, which come from untrusted log data.
func csvField(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
