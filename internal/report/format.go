package report

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// NotApplicable is printed in the Rate and Amount columns of unrated rows.
const NotApplicable = "N/A"

// RunningLabel replaces end time and duration for entries without an end.
const RunningLabel = "Running"

// FormatDuration renders seconds as "1h 2m 3s", dropping leading zero
// units. Negative input is treated as zero.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// FormatTotalDuration renders a minute total as "H hours and M minutes",
// or "M minutes" below one hour.
func FormatTotalDuration(minutes int64) string {
	h := minutes / 60
	m := minutes % 60
	if h > 0 {
		return fmt.Sprintf("%d hours and %d minutes", h, m)
	}
	return fmt.Sprintf("%d minutes", m)
}

// CurrencySymbol maps EUR to "€" and every other code to "$". Reports
// never convert between currencies, so this is only a label.
func CurrencySymbol(code string) string {
	if code == "EUR" {
		return "€"
	}
	return "$"
}

// FormatMoney prints an amount with two decimals behind the currency symbol.
func FormatMoney(symbol string, amount decimal.Decimal) string {
	return symbol + FormatAmount(amount)
}

// FormatAmount prints amount with two decimals. Rounding follows printf on
// the float value, so 0.125 prints as 0.12.
func FormatAmount(amount decimal.Decimal) string {
	return fixed2(amount.InexactFloat64())
}

// FormatRate prints an hourly rate as "€25.00/h".
func FormatRate(symbol string, rate float64) string {
	return symbol + fixed2(rate) + "/h"
}

func fixed2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
