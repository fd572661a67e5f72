package reporting

import (
	"fmt"
	"strings"

	"token-risk-agent/internal/domain"
)

// RenderTrendingCSV renders the trending list as CSV.
func RenderTrendingCSV(list []domain.TrendingToken) string {
	var sb strings.Builder

	// Header
	sb.WriteString("rank,symbol,address,price_usd,price_change_24h,volume_24h,liquidity_usd\n")

	// Rows
	for i, t := range list {
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%.10g,%.4f,%.2f,%.2f\n",
			i+1,
			csvField(t.Symbol),
			t.Address,
			t.PriceUSD,
			t.PriceChange24h,
			t.Volume24h,
			t.LiquidityUSD,
		))
	}

	return sb.String()
}

// csvField quotes values containing separators.
func csvField(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
