package goal

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Progress holds the derived metrics for one month. All three values are
// read-only and recomputed on every request, never cached.
type Progress struct {
	Remaining    decimal.Decimal `json:"remaining"`
	Percent      decimal.Decimal `json:"percent"`
	DailyRunRate decimal.Decimal `json:"daily_run_rate"`
}

// ComputeProgress derives the remaining amount, percent complete and the
// required daily run-rate from a monthly target, the cumulative recorded
// total and the business days still available.
//
// A zero target yields 0% rather than a division error, and zero business
// days yields a zero run-rate: nothing further required or no days left.
func ComputeProgress(target, totalRecorded decimal.Decimal, businessDaysLeft int) Progress {
	remaining := target.Sub(totalRecorded)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	percent := decimal.Zero
	if target.IsPositive() {
		percent = totalRecorded.Div(target).Mul(hundred)
	}

	runRate := decimal.Zero
	if businessDaysLeft > 0 {
		runRate = remaining.Div(decimal.NewFromInt(int64(businessDaysLeft)))
	}

	return Progress{
		Remaining:    remaining,
		Percent:      percent,
		DailyRunRate: runRate,
	}
}
