package report

import (
	"github.com/sadopc/timebill/internal/store"
	"github.com/shopspring/decimal"
)

var secondsPerHour = decimal.NewFromInt(3600)

// Line holds the derived values for one report row.
type Line struct {
	Row store.ReportRow

	// Seconds is the exact elapsed time, clamped at zero. It is only
	// meaningful when HasEnd is true.
	Seconds int64
	HasEnd  bool
	// Minutes is what the row contributes to the total duration.
	Minutes int64

	Duration string
	Billable bool
	Rate     string
	Amount   string
	Value    decimal.Decimal
}

// Summary is the aggregation of a batch of report rows.
type Summary struct {
	Lines []Line
	// HasRates is set when any row carries a rate, even a zero one; the
	// Rate and Amount columns are then shown for every row.
	HasRates     bool
	TotalMinutes int64
	TotalAmount  decimal.Decimal
	// TotalSymbol is the symbol of the first row with a positive rate, empty
	// when no row is billable.
	TotalSymbol string
}

// ShowTotalAmount reports whether a total amount line belongs in the report.
func (s Summary) ShowTotalAmount() bool {
	return s.HasRates && s.TotalAmount.IsPositive()
}

// Summarize derives durations, amounts and totals from rows, keeping input
// order. Every output format is built from this.
func Summarize(rows []store.ReportRow) Summary {
	sum := Summary{Lines: make([]Line, 0, len(rows))}

	for _, r := range rows {
		if r.Rate != nil {
			sum.HasRates = true
		}
	}

	for _, r := range rows {
		l := Line{Row: r, Value: decimal.Zero}

		if r.EndTime != nil {
			l.HasEnd = true
			l.Seconds = int64(r.EndTime.Sub(r.StartTime).Seconds())
			if l.Seconds < 0 {
				l.Seconds = 0
			}
			l.Minutes = l.Seconds / 60
			l.Duration = FormatDuration(l.Seconds)
		} else {
			if r.DurationMinutes != nil && *r.DurationMinutes > 0 {
				l.Minutes = *r.DurationMinutes
			}
			l.Duration = RunningLabel
		}

		l.Billable = r.Rate != nil && *r.Rate > 0
		if l.Billable {
			symbol := CurrencySymbol(r.Currency)
			if sum.TotalSymbol == "" {
				sum.TotalSymbol = symbol
			}
			rate := decimal.NewFromFloat(*r.Rate)
			switch {
			case l.HasEnd:
				l.Value = rate.Mul(decimal.NewFromInt(l.Seconds)).Div(secondsPerHour)
			case l.Minutes > 0:
				l.Value = rate.Mul(decimal.NewFromInt(l.Minutes)).Div(decimal.NewFromInt(60))
			}
			l.Rate = FormatRate(symbol, *r.Rate)
			l.Amount = FormatMoney(symbol, l.Value)
		} else if sum.HasRates {
			l.Rate = NotApplicable
			l.Amount = NotApplicable
		}

		sum.TotalMinutes += l.Minutes
		sum.TotalAmount = sum.TotalAmount.Add(l.Value)
		sum.Lines = append(sum.Lines, l)
	}
	return sum
}
