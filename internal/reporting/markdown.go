package reporting

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"token-risk-agent/internal/domain"
)

// RenderAnalysis renders the full risk report.
func RenderAnalysis(r *Report) string {
	ra := r.Assessment
	if ra.InsufficientData {
		return renderInsufficient(r)
	}

	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("## Risk Analysis: %s\n", r.Title))
	sb.WriteString(fmt.Sprintf("**Risk Score: %d/10** - %s\n", ra.Score, ra.Verdict.Level()))
	sb.WriteString(fmt.Sprintf("Token: `%s`\n\n", r.Address))

	// Red flags
	sb.WriteString("### Critical Red Flags\n")
	if len(ra.RedFlags) == 0 {
		sb.WriteString("- None detected\n")
	}
	for _, f := range ra.RedFlags {
		sb.WriteString(fmt.Sprintf("- %s\n", f))
	}
	sb.WriteString("\n")

	// Metrics
	sb.WriteString("### Key Metrics\n")
	for _, m := range r.Metrics {
		sb.WriteString(fmt.Sprintf("- **%s**: %s (Source: %s)\n", m.Name, m.Value, m.Source))
	}
	sb.WriteString("\n")

	// Verdict
	sb.WriteString("### Verdict & Recommendation\n")
	sb.WriteString(fmt.Sprintf("**%s**\n\n", ra.Verdict))
	sb.WriteString(Rationale(ra))
	sb.WriteString("\n")

	if len(r.Unavailable) > 0 {
		sb.WriteString(fmt.Sprintf("\n_Unavailable data: %s_\n", strings.Join(r.Unavailable, ", ")))
	}
	return sb.String()
}

// RenderQuick renders a Phase 1 scan.
func RenderQuick(r *Report) string {
	ra := r.Assessment
	if ra.InsufficientData {
		return renderInsufficient(r)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Quick Scan: %s\n", r.Title))
	sb.WriteString(fmt.Sprintf("**Risk Score: %d/10** - %s (**%s**)\n\n", ra.Score, ra.Verdict.Level(), ra.Verdict))

	freeze := "Unknown"
	if ra.Security != nil {
		freeze = authorityLabel(ra.Security.FreezeAuthorityRenounced)
	}
	for _, m := range r.Metrics {
		switch m.Name {
		case "Liquidity", "Audit Status", "Mint Authority":
			sb.WriteString(fmt.Sprintf("- **%s**: %s (Source: %s)\n", m.Name, m.Value, m.Source))
		}
	}
	sb.WriteString(fmt.Sprintf("- **Freeze Authority**: %s\n", freeze))
	if ra.Details != nil {
		if age, ok := ra.Details.AgeAt(ra.GeneratedAt); ok {
			sb.WriteString(fmt.Sprintf("- **Pair Age**: %s\n", humanize.RelTime(ra.GeneratedAt.Add(-age), ra.GeneratedAt, "old", "")))
		}
	}

	for _, f := range ra.RedFlags {
		sb.WriteString(fmt.Sprintf("- ⚠ %s\n", f))
	}
	sb.WriteString("\nQuick scan covers security, audit and market data only. Run `analyze` for holder, incident and transaction checks.\n")
	return sb.String()
}

// RenderHolders renders holder concentration and pool context.
func RenderHolders(h HolderReport) string {
	var sb strings.Builder

	name := ShortAddress(h.Address)
	if h.Metadata != nil && h.Metadata.Symbol != "" {
		name = h.Metadata.Symbol
	}
	sb.WriteString(fmt.Sprintf("## Holder Analysis: %s\n", name))
	sb.WriteString(fmt.Sprintf("Token: `%s`\n\n", h.Address))

	if h.Metadata != nil {
		sb.WriteString(fmt.Sprintf("- **Name**: %s (Source: %s)\n", h.Metadata.Name, SourceName(h.Metadata.Source)))
		if h.Metadata.Holders != nil {
			sb.WriteString(fmt.Sprintf("- **Reported Holders**: %s\n", humanize.Comma(int64(*h.Metadata.Holders))))
		}
		if h.Metadata.Supply != nil {
			sb.WriteString(fmt.Sprintf("- **Total Supply**: %s\n", humanize.CommafWithDigits(*h.Metadata.Supply, 2)))
		}
	}

	if h.Holders == nil {
		sb.WriteString("- **Holder Distribution**: unavailable\n")
	} else {
		d := h.Holders
		sb.WriteString(fmt.Sprintf("- **Top 10 Concentration**: %.2f%% (%s) of a %d-holder sample (Source: %s)\n",
			d.Top10ConcentrationPct, d.ConcentrationRisk, d.SampleSize, SourceName(d.Source)))
		sb.WriteString(fmt.Sprintf("- **Top Holder**: %.2f%%\n", d.TopHolderPct))

		if len(d.TopHolders) > 0 {
			sb.WriteString("\n| # | Holder | Share |\n")
			sb.WriteString("|---|--------|-------|\n")
			for i, hs := range d.TopHolders {
				sb.WriteString(fmt.Sprintf("| %d | `%s` | %.2f%% |\n", i+1, ShortAddress(hs.Owner), hs.Pct))
			}
		}
	}

	if h.Pool != nil {
		sb.WriteString(fmt.Sprintf("\n- **Pool Liquidity**: %s across %d pair(s) (Source: DexScreener)\n", USD(h.Pool.LiquidityUSD), h.Pool.PairCount))
		sb.WriteString(fmt.Sprintf("- **Market Cap**: %s\n", USD(h.Pool.MarketCap)))
	}

	if len(h.Failed) > 0 {
		sb.WriteString(fmt.Sprintf("\n_Unavailable data: %s_\n", strings.Join(h.Failed, ", ")))
	}
	return sb.String()
}

// RenderTrending renders the trending list.
func RenderTrending(list []domain.TrendingToken) string {
	var sb strings.Builder
	sb.WriteString("## Trending Solana Tokens\n\n")
	if len(list) == 0 {
		sb.WriteString("No trending tokens available.\n")
		return sb.String()
	}

	sb.WriteString("| # | Token | Price | 24h | Volume 24h | Liquidity |\n")
	sb.WriteString("|---|-------|-------|-----|------------|-----------|\n")
	for i, t := range list {
		sb.WriteString(fmt.Sprintf("| %d | %s `%s` | %s | %s | %s | %s |\n",
			i+1, t.Symbol, ShortAddress(t.Address), USD(t.PriceUSD), Percent(t.PriceChange24h),
			USD(t.Volume24h), USD(t.LiquidityUSD)))
	}
	sb.WriteString("\nTrending is not an endorsement. Run `analyze <address>` before buying.\n")
	return sb.String()
}

func renderInsufficient(r *Report) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Risk Analysis: %s\n", r.Title))
	sb.WriteString("**Risk Score: insufficient data**\n\n")
	sb.WriteString("Every data source failed for this token, so no score can be given. ")
	sb.WriteString("This is not a safety signal. Try again later or verify the address.\n")
	if len(r.Unavailable) > 0 {
		sb.WriteString("\nFailed tools:\n")
		for _, t := range r.Unavailable {
			sb.WriteString(fmt.Sprintf("- %s\n", t))
		}
	}
	return sb.String()
}
