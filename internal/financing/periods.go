package financing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/credisur/credisur/internal/catalog"
)

var periodsPerMonth = map[catalog.Frequency]decimal.Decimal{
	catalog.Daily:    decimal.NewFromInt(30),
	catalog.Weekly:   decimal.RequireFromString("4.33"),
	catalog.Biweekly: decimal.NewFromInt(2),
	catalog.Monthly:  decimal.NewFromInt(1),
}

// PeriodsPerMonth returns how many payment periods of freq fit in a month.
// Unknown frequencies count as monthly.
func PeriodsPerMonth(freq catalog.Frequency) decimal.Decimal {
	if p, ok := periodsPerMonth[freq]; ok {
		return p
	}
	return decimal.NewFromInt(1)
}

// PeriodsForTerm converts a term in months to a whole number of periods,
// rounding up so the last period covers any remainder.
func PeriodsForTerm(months int, freq catalog.Frequency) int {
	if months <= 0 {
		return 0
	}
	return int(decimal.NewFromInt(int64(months)).Mul(PeriodsPerMonth(freq)).Ceil().IntPart())
}

// NextDue advances t by one period of freq.
func NextDue(t time.Time, freq catalog.Frequency) time.Time {
	switch freq {
	case catalog.Daily:
		return t.AddDate(0, 0, 1)
	case catalog.Weekly:
		return t.AddDate(0, 0, 7)
	case catalog.Biweekly:
		return t.AddDate(0, 0, 14)
	default:
		return t.AddDate(0, 1, 0)
	}
}

func ceilDiv(a, b int64) int64 {
	if b <= 0 {
		return 0
	}
	q := a / b
	if a%b != 0 && a > 0 {
		q++
	}
	return q
}
