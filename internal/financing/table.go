package financing

import (
	"sort"

	"go.uber.org/zap"

	"github.com/credisur/credisur/internal/catalog"
)

// TableRule prices each article from its precomputed option table. It is the
// canonical rule; articles without a table get one from DeriveOptions.
type TableRule struct {
	logger *zap.Logger
}

// NewTableRule returns a TableRule. A nil logger discards lookup misses.
func NewTableRule(logger *zap.Logger) *TableRule {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TableRule{logger: logger}
}

func (r *TableRule) Name() string     { return RuleTable }
func (r *TableRule) TermUnit() string { return "installments" }
func (r *TableRule) DefaultTerm() int { return 12 }

// OfferedTerms returns the installment counts every line's table offers.
func (r *TableRule) OfferedTerms(lines []Line) []int {
	return IntersectInstallments(lines)
}

// Quote looks up each line's option for (term, frequency). A miss falls back
// to the article's first option and is logged, never returned as an error.
//
// When every line was priced with the same plan, the quote follows that plan
// and, with no down payment, pays the sum of the table rows per period.
// Otherwise the balance is spread evenly over the plan's periods, rounding
// up, so the schedule never carries empty installments.
func (r *TableRule) Quote(lines []Line, terms Terms) Quote {
	q := Quote{
		Rule:        RuleTable,
		Term:        terms.Term,
		Frequency:   terms.Frequency,
		Periods:     terms.Term,
		DownPayment: terms.DownPayment,
		Lines:       make([]LineQuote, 0, len(lines)),
	}

	for _, l := range lines {
		a := l.Article
		qty := int64(l.Quantity)
		lq := LineQuote{
			ArticleID: a.ID,
			Name:      a.Name,
			Quantity:  l.Quantity,
			UnitBase:  a.CashPrice,
			LineBase:  a.CashPrice * qty,
		}

		opt, ok := a.Option(terms.Term, terms.Frequency)
		if !ok {
			lq.Fallback = true
			if len(a.Options) > 0 {
				opt = a.Options[0]
				r.logger.Warn("installment option not in table, using first option",
					zap.String("article_id", a.ID),
					zap.Int("requested_installments", terms.Term),
					zap.String("requested_frequency", string(terms.Frequency)),
					zap.Int("fallback_installments", opt.Installments),
					zap.String("fallback_frequency", string(opt.Frequency)),
				)
			} else {
				opt = catalog.InstallmentOption{
					Installments: terms.Term,
					Frequency:    terms.Frequency,
					TotalPrice:   a.CashPrice,
					PerPeriod:    ceilDiv(a.CashPrice, int64(terms.Term)),
				}
				r.logger.Warn("article has no option table, financing at cash price",
					zap.String("article_id", a.ID),
				)
			}
		}

		lq.Installments = opt.Installments
		lq.Frequency = opt.Frequency
		lq.UnitFinanced = opt.TotalPrice
		lq.LineFinanced = opt.TotalPrice * qty
		lq.PerPeriod = opt.PerPeriod * qty
		q.PerPeriodPayment += lq.PerPeriod
		q.Lines = append(q.Lines, lq)
	}

	q.totals()
	q.settlePlan()
	return q
}

// settlePlan fixes Periods, Frequency and PerPeriodPayment once the lines
// and totals are known.
func (q *Quote) settlePlan() {
	shared := len(q.Lines) > 0
	for _, l := range q.Lines {
		if l.Installments != q.Lines[0].Installments || l.Frequency != q.Lines[0].Frequency {
			shared = false
			break
		}
	}
	if shared && q.Lines[0].Installments > 0 {
		q.Periods = q.Lines[0].Installments
		q.Frequency = q.Lines[0].Frequency
	}
	if q.Periods <= 0 {
		q.PerPeriodPayment = 0
		return
	}
	if shared && q.DownPayment == 0 {
		return
	}
	q.PerPeriodPayment = ceilDiv(q.BalanceToFinance, int64(q.Periods))
}

// IntersectInstallments returns, ascending, the installment counts present
// in every line's option table. No lines yields nil.
func IntersectInstallments(lines []Line) []int {
	if len(lines) == 0 {
		return nil
	}

	common := make(map[int]bool)
	for _, n := range lines[0].Article.InstallmentCounts() {
		common[n] = true
	}
	for _, l := range lines[1:] {
		have := make(map[int]bool)
		for _, n := range l.Article.InstallmentCounts() {
			have[n] = true
		}
		for n := range common {
			if !have[n] {
				delete(common, n)
			}
		}
	}

	out := make([]int, 0, len(common))
	for n := range common {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}
