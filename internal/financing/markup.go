package financing

import (
	"github.com/shopspring/decimal"

	"github.com/credisur/credisur/internal/catalog"
)

// DefaultMonthlyMarkup is the flat surcharge per month of term.
const DefaultMonthlyMarkup = 0.035

// DefaultMarkupTerms are the terms, in months, the markup rule offers.
var DefaultMarkupTerms = []int{3, 6, 9, 12, 18, 24}

// MarkupRule applies a linear surcharge of Rate per month of term to the
// cash price: financed = base × (1 + Rate × months).
type MarkupRule struct {
	Rate  decimal.Decimal
	Terms []int
}

// NewMarkupRule returns a MarkupRule. A non-positive rate or empty terms
// fall back to the defaults.
func NewMarkupRule(rate float64, terms []int) *MarkupRule {
	if rate <= 0 {
		rate = DefaultMonthlyMarkup
	}
	if len(terms) == 0 {
		terms = DefaultMarkupTerms
	}
	return &MarkupRule{
		Rate:  decimal.NewFromFloat(rate),
		Terms: sortedCopy(terms),
	}
}

func (r *MarkupRule) Name() string     { return RuleMarkup }
func (r *MarkupRule) TermUnit() string { return "months" }
func (r *MarkupRule) DefaultTerm() int { return 6 }

// OfferedTerms is the configured term list regardless of selection.
func (r *MarkupRule) OfferedTerms(_ []Line) []int {
	return append([]int(nil), r.Terms...)
}

// UnitPrice returns the financed price of one unit, rounded up to a whole
// currency unit.
func (r *MarkupRule) UnitPrice(base int64, months int) int64 {
	factor := decimal.NewFromInt(1).Add(r.Rate.Mul(decimal.NewFromInt(int64(months))))
	return decimal.NewFromInt(base).Mul(factor).Ceil().IntPart()
}

// Quote prices every line with UnitPrice and spreads the balance evenly
// over ceil(months × periods-per-month) periods.
func (r *MarkupRule) Quote(lines []Line, terms Terms) Quote {
	periods := PeriodsForTerm(terms.Term, terms.Frequency)
	q := Quote{
		Rule:        RuleMarkup,
		Term:        terms.Term,
		Frequency:   terms.Frequency,
		Periods:     periods,
		DownPayment: terms.DownPayment,
		Lines:       make([]LineQuote, 0, len(lines)),
	}

	for _, l := range lines {
		a := l.Article
		qty := int64(l.Quantity)
		unit := r.UnitPrice(a.CashPrice, terms.Term)
		q.Lines = append(q.Lines, LineQuote{
			ArticleID:    a.ID,
			Name:         a.Name,
			Quantity:     l.Quantity,
			UnitBase:     a.CashPrice,
			UnitFinanced: unit,
			LineBase:     a.CashPrice * qty,
			LineFinanced: unit * qty,
			PerPeriod:    ceilDiv(unit*qty, int64(periods)),
		})
	}

	q.totals()
	q.PerPeriodPayment = ceilDiv(q.BalanceToFinance, int64(periods))
	return q
}

// DeriveOptions builds an option table for a from the markup formula: one
// row per (term, frequency), with the installment count being the number of
// periods in the term.
func (r *MarkupRule) DeriveOptions(a catalog.Article, freqs []catalog.Frequency) []catalog.InstallmentOption {
	var opts []catalog.InstallmentOption
	type optionKey struct {
		n int
		f catalog.Frequency
	}
	seen := make(map[optionKey]bool)
	for _, months := range r.Terms {
		total := r.UnitPrice(a.CashPrice, months)
		for _, f := range freqs {
			n := PeriodsForTerm(months, f)
			key := optionKey{n, f}
			if n <= 0 || seen[key] {
				continue
			}
			seen[key] = true
			opts = append(opts, catalog.InstallmentOption{
				Installments: n,
				Frequency:    f,
				TotalPrice:   total,
				PerPeriod:    ceilDiv(total, int64(n)),
			})
		}
	}
	return opts
}

// EnsureOptions returns a copy of articles where every article lacking an
// option table has one derived by r.
func (r *MarkupRule) EnsureOptions(articles []catalog.Article, freqs []catalog.Frequency) []catalog.Article {
	out := make([]catalog.Article, len(articles))
	for i, a := range articles {
		if len(a.Options) == 0 {
			a.Options = r.DeriveOptions(a, freqs)
		}
		out[i] = a
	}
	return out
}
