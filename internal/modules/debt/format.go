package debt

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Undefined is how a missing rate is rendered.
const Undefined = "—"

// FormatPct renders a decimal fraction as a percentage with two decimals.
func FormatPct(v *float64) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return Undefined
	}
	return fmt.Sprintf("%.2f%%", *v*100)
}

// FormatWeight renders a weight fraction as a percentage.
func FormatWeight(w float64) string {
	return fmt.Sprintf("%.2f%%", w*100)
}

// FormatMoney0 renders an amount with thousands separators and no decimals.
func FormatMoney0(v float64) string {
	return humanize.FormatFloat("#,###.", v)
}

// FormatMoney2 renders an amount as currency with two decimals.
func FormatMoney2(v float64) string {
	s := humanize.FormatFloat("#,###.##", v)
	if strings.HasPrefix(s, "-") {
		return "-$" + s[1:]
	}
	return "$" + s
}

// FormatDays renders a day count rounded to an integer, or "" when unknown.
func FormatDays(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return ""
	}
	return fmt.Sprintf("%.0f", *v)
}

var moneyReplacer = strings.NewReplacer("$", "", ",", "", " ", "", "\u00a0", "", "−", "-")

// ParseMoney reads a formatted amount such as "$1,234.50" or "−12". It
// returns false for empty or unparseable text.
func ParseMoney(s string) (decimal.Decimal, bool) {
	clean := moneyReplacer.Replace(strings.TrimSpace(s))
	if clean == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
