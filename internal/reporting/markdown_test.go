package reporting

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/scoring"
	"token-risk-agent/internal/tools"
)

const testMint = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }

func assess(results ...domain.ToolResult) domain.RiskAssessment {
	return scoring.NewEvaluator().Evaluate(scoring.Input{
		Address: testMint,
		Signals: scoring.Collect(results),
		Now:     now,
	})
}

func TestRenderAnalysis_Sections(t *testing.T) {
	created := now.Add(-90 * 24 * time.Hour)
	ra := assess(
		domain.Success(tools.SecurityCheck, "goplus", domain.SecuritySignal{MintAuthorityRenounced: boolPtr(true), FreezeAuthorityRenounced: boolPtr(true)}),
		domain.Success(tools.AuditStatus, "certik", domain.AuditStatus{Status: domain.AuditStatusNotAudited}),
		domain.Success(tools.TokenDetails, "dexscreener", domain.TokenDetails{Symbol: "BONK", LiquidityUSD: floatPtr(1_250_000), Volume24h: 500_000, PairCreatedAt: &created}),
		domain.Failure(tools.HolderDistribution, "timeout"),
	)

	out := RenderAnalysis(NewReport(ra))

	for _, want := range []string{
		"## Risk Analysis: BONK",
		"**Risk Score: ",
		"### Critical Red Flags",
		"### Key Metrics",
		"- **Liquidity**: $1,250,000 (Source: DexScreener)",
		"- **Top 10 Concentration**: unknown (Source: unavailable)",
		"- **Audit Status**: Not Audited (Source: CertiK)",
		"- **Mint Authority**: Renounced (Source: GoPlus)",
		"- **24h Volume**: $500,000 (Source: DexScreener)",
		"- **Security Incidents**: not checked",
		"### Verdict & Recommendation",
		"Not scored: Holders.",
		"_Unavailable data: " + tools.HolderDistribution + "_",
	} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "Critical Red Flags"), strings.Index(out, "Key Metrics"))
	assert.Less(t, strings.Index(out, "Key Metrics"), strings.Index(out, "Verdict & Recommendation"))
}

func TestRenderAnalysis_DoesNotAlterScore(t *testing.T) {
	ra := assess(domain.Success(tools.TokenDetails, "dexscreener", domain.TokenDetails{LiquidityUSD: floatPtr(300)}))
	before := ra.Score

	out := RenderAnalysis(NewReport(ra))
	assert.Equal(t, before, ra.Score)
	assert.Contains(t, out, "Risk Score: 10/10")
	assert.Contains(t, out, "## Risk Analysis: "+ShortAddress(testMint))
}

func TestRenderAnalysis_InsufficientData(t *testing.T) {
	ra := assess(
		domain.Failure(tools.SecurityCheck, "down"),
		domain.Failure(tools.TokenDetails, "down"),
	)

	out := RenderAnalysis(NewReport(ra))
	assert.Contains(t, out, "insufficient data")
	assert.Contains(t, out, "- "+tools.SecurityCheck)
	assert.NotContains(t, out, "/10")
}

func TestRenderQuick(t *testing.T) {
	created := now.Add(-3 * time.Hour)
	ra := assess(
		domain.Success(tools.SecurityCheck, "goplus", domain.SecuritySignal{MintAuthorityRenounced: boolPtr(false)}),
		domain.Success(tools.TokenDetails, "dexscreener", domain.TokenDetails{Symbol: "NEW", LiquidityUSD: floatPtr(5_000), PairCreatedAt: &created}),
	)

	out := RenderQuick(NewReport(ra))
	assert.Contains(t, out, "## Quick Scan: NEW")
	assert.Contains(t, out, "- **Mint Authority**: Active")
	assert.Contains(t, out, "- **Pair Age**: 3 hours old")
	assert.Contains(t, out, "Run `analyze`")
}

func TestRenderHolders(t *testing.T) {
	holders := 812345
	dist := domain.NewHolderDistribution([]string{testMint, "short"}, []float64{75, 25}, "helius")
	out := RenderHolders(HolderReport{
		Address:  testMint,
		Metadata: &domain.TokenMetadata{Name: "Bonk", Symbol: "BONK", Holders: &holders, Source: "solscan"},
		Holders:  &dist,
		Pool:     &domain.PoolSnapshot{LiquidityUSD: 1_000_000, PairCount: 3},
	})

	assert.Contains(t, out, "## Holder Analysis: BONK")
	assert.Contains(t, out, "- **Reported Holders**: 812,345")
	assert.Contains(t, out, "100.00% (CRITICAL) of a 2-holder sample (Source: Helius)")
	assert.Contains(t, out, "| 1 | `DezX...B263` | 75.00% |")
	assert.Contains(t, out, "$1,000,000 across 3 pair(s)")
}

func TestRenderTrending(t *testing.T) {
	out := RenderTrending([]domain.TrendingToken{
		{Symbol: "WIF", Address: testMint, PriceUSD: 2.5, PriceChange24h: 12.5, Volume24h: 1_000_000, LiquidityUSD: 250_000},
	})
	assert.Contains(t, out, "| 1 | WIF `DezX...B263` | $2.5 | +12.50% | $1,000,000 | $250,000 |")

	assert.Contains(t, RenderTrending(nil), "No trending tokens available.")
}

func TestRenderTrendingCSV(t *testing.T) {
	out := RenderTrendingCSV([]domain.TrendingToken{
		{Symbol: "A,B", Address: "addr", PriceUSD: 0.5, Volume24h: 10, LiquidityUSD: 20},
	})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, `1,"A,B",addr,0.5,0.0000,10.00,20.00`, lines[1])
}

func TestUSD(t *testing.T) {
	assert.Equal(t, "$0", USD(0))
	assert.Equal(t, "$0.00002310", USD(0.0000231))
	assert.Equal(t, "$0.5000", USD(0.5))
	assert.Equal(t, "$1,234.57", USD(1234.567))
}
