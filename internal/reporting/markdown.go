package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Wallet Risk Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Chain: %s | Wallet: `%s`\n\n", r.Chain, r.WalletAddress))

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Transactions | %d |\n", r.Summary.TotalTransactions))
	sb.WriteString(fmt.Sprintf("| DEX Transactions | %d |\n", r.Summary.DexTransactions))
	sb.WriteString(fmt.Sprintf("| First Seen | %s |\n", orDash(r.Summary.TimespanStart)))
	sb.WriteString(fmt.Sprintf("| Last Seen | %s |\n", orDash(r.Summary.TimespanEnd)))
	sb.WriteString("\n")

	// Risk
	sb.WriteString("## Risk Assessment\n\n")
	sb.WriteString(fmt.Sprintf("**Risk level: %s** (scam probability %.2f)\n\n", strings.ToUpper(r.Risk.Level), r.Risk.ScamProbability))
	if len(r.Risk.Warnings) > 0 {
		for _, w := range r.Risk.Warnings {
			sb.WriteString(fmt.Sprintf("- %s\n", w))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("No warnings.\n\n")
	}

	if len(r.Risk.Findings) > 0 {
		sb.WriteString("### Detectors\n\n")
		sb.WriteString("| Detector | Weight | Status |\n")
		sb.WriteString("|----------|--------|--------|\n")
		for _, f := range r.Risk.Findings {
			status := "clear"
			if f.Detected {
				status = "DETECTED"
			}
			sb.WriteString(fmt.Sprintf("| %s | %.2f | %s |\n", f.Name, f.Weight, status))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("### Sophisticated Patterns\n\n")
	sb.WriteString(fmt.Sprintf("Level: %s | Confidence: %.2f | Advisory: %s\n\n",
		orDash(r.Risk.SophisticatedRiskLevel), r.Risk.Confidence, orDash(r.Risk.Advisory)))
	if len(r.Risk.SophisticatedPatterns) > 0 {
		for _, p := range r.Risk.SophisticatedPatterns {
			sb.WriteString(fmt.Sprintf("- %s\n", p))
		}
	} else {
		sb.WriteString("No sophisticated patterns detected.\n")
	}
	sb.WriteString("\n")

	// Profile
	sb.WriteString("## Trader Profile\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Trades | %d |\n", r.Profile.TotalTrades))
	sb.WriteString(fmt.Sprintf("| Unique DEXes | %d |\n", r.Profile.UniqueDexCount))
	sb.WriteString(fmt.Sprintf("| Unique Tokens | %d |\n", r.Profile.UniqueTokenCount))
	sb.WriteString(fmt.Sprintf("| Preferred DEX | %s |\n", orDash(r.Profile.PreferredDex)))
	sb.WriteString(fmt.Sprintf("| Avg Time Between Trades (ms) | %.0f |\n", r.Profile.AvgTimeBetweenTrades))
	sb.WriteString(fmt.Sprintf("| Risk Profile | %s |\n", r.Profile.RiskProfile))
	sb.WriteString("\n")

	// Trades
	sb.WriteString("## Trades\n\n")
	if len(r.Trades) > 0 {
		sb.WriteString("| Time (ms) | Tx | DEX | In | Amount In | Out | Amount Out |\n")
		sb.WriteString("|-----------|----|-----|----|-----------|-----|------------|\n")
		for _, t := range r.Trades {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s | %s |\n",
				t.Timestamp, shortHash(t.TxHash), t.Dex,
				orDash(t.TokenIn), t.AmountIn, orDash(t.TokenOut), t.AmountOut))
		}
	} else {
		sb.WriteString("No DEX trades reconstructed.\n")
	}
	sb.WriteString("\n")

	// History
	sb.WriteString("## Scan History\n\n")
	if len(r.History) > 0 {
		sb.WriteString("| Generated (ms) | Risk | Probability | Confidence | Warnings |\n")
		sb.WriteString("|----------------|------|-------------|------------|----------|\n")
		for _, h := range r.History {
			sb.WriteString(fmt.Sprintf("| %d | %s | %.2f | %.2f | %d |\n",
				h.GeneratedAt, h.RiskLevel, h.ScamProbability, h.Confidence, h.WarningCount))
		}
	} else {
		sb.WriteString("No previous scans.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func shortHash(h string) string {
	if len(h) <= 14 {
		return h
	}
	return h[:8] + "…" + h[len(h)-6:]
}
