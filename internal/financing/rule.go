package financing

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/credisur/credisur/internal/catalog"
)

// Rule names accepted by NewRule and the financing.rule config key.
const (
	RuleTable  = "table"
	RuleMarkup = "markup"
)

// Line is a selected article and how many units of it are financed.
type Line struct {
	Article  catalog.Article
	Quantity int
}

// Terms are the session inputs a quote depends on besides the lines.
type Terms struct {
	Term        int
	Frequency   catalog.Frequency
	DownPayment int64
}

// LineQuote is the priced form of one Line.
type LineQuote struct {
	ArticleID    string
	Name         string
	Quantity     int
	UnitBase     int64
	UnitFinanced int64
	LineBase     int64
	LineFinanced int64
	PerPeriod    int64
	// Installments and Frequency are the plan the line was actually priced
	// with. They differ from the requested terms only on a fallback.
	Installments int
	Frequency    catalog.Frequency
	// Fallback is set when the requested term/frequency was not in the
	// article's option table and its first option was used instead.
	Fallback bool
}

// Quote aggregates a financing calculation. Amounts are whole currency units.
// Term is the requested term; Periods and Frequency describe the payment
// plan the schedule follows.
type Quote struct {
	Rule               string
	Term               int
	Frequency          catalog.Frequency
	Periods            int
	Lines              []LineQuote
	TotalBase          int64
	TotalFinancedGross int64
	DownPayment        int64
	BalanceToFinance   int64
	PerPeriodPayment   int64
}

// Rule prices a set of lines for a term and frequency.
type Rule interface {
	// Name is RuleTable or RuleMarkup.
	Name() string
	// TermUnit labels the term: "months" or "installments".
	TermUnit() string
	// DefaultTerm is the term a new session starts with.
	DefaultTerm() int
	// OfferedTerms lists the terms valid for the given lines, ascending.
	OfferedTerms(lines []Line) []int
	// Quote derives all totals. It never mutates lines.
	Quote(lines []Line, terms Terms) Quote
}

// NewRule builds the named rule. markup is the monthly surcharge used by
// the markup rule; markupTerms its offered terms in months.
func NewRule(name string, markup float64, markupTerms []int, logger *zap.Logger) (Rule, error) {
	switch name {
	case RuleTable, "":
		return NewTableRule(logger), nil
	case RuleMarkup:
		return NewMarkupRule(markup, markupTerms), nil
	default:
		return nil, fmt.Errorf("unknown financing rule %q (want %q or %q)", name, RuleTable, RuleMarkup)
	}
}

// totals fills the aggregate fields from the priced lines.
func (q *Quote) totals() {
	q.TotalBase = 0
	q.TotalFinancedGross = 0
	for _, l := range q.Lines {
		q.TotalBase += l.LineBase
		q.TotalFinancedGross += l.LineFinanced
	}
	q.BalanceToFinance = q.TotalFinancedGross - q.DownPayment
	if q.BalanceToFinance < 0 {
		q.BalanceToFinance = 0
	}
}

// Contains reports whether term is in terms.
func Contains(terms []int, term int) bool {
	for _, t := range terms {
		if t == term {
			return true
		}
	}
	return false
}

func sortedCopy(terms []int) []int {
	out := append([]int(nil), terms...)
	sort.Ints(out)
	return out
}
