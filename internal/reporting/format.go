package reporting

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// USD formats an amount as dollars with thousands separators.
func USD(v float64) string {
	switch {
	case v == 0:
		return "$0"
	case math.Abs(v) < 0.01:
		return fmt.Sprintf("$%.8f", v)
	case math.Abs(v) < 1:
		return fmt.Sprintf("$%.4f", v)
	}
	return "$" + humanize.CommafWithDigits(v, 2)
}

// Percent formats a signed percentage change.
func Percent(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}
