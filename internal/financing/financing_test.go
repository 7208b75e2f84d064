package financing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/credisur/credisur/internal/catalog"
)

func articleWithCounts(id string, counts ...int) catalog.Article {
	a := catalog.Article{ID: id, Name: id, CashPrice: 1000}
	for _, n := range counts {
		a.Options = append(a.Options, catalog.InstallmentOption{
			Installments: n, Frequency: catalog.Monthly, TotalPrice: 1000 + int64(n)*10, PerPeriod: 100,
		})
	}
	return a
}

func TestMarkupRule_ExampleScenario(t *testing.T) {
	r := NewMarkupRule(0.035, nil)
	article := catalog.Article{ID: "A", Name: "A", CashPrice: 1_000_000}

	assert.Equal(t, int64(1_210_000), r.UnitPrice(1_000_000, 6))

	q := r.Quote([]Line{{Article: article, Quantity: 2}}, Terms{Term: 6, Frequency: catalog.Biweekly, DownPayment: 200_000})

	assert.Equal(t, int64(2_000_000), q.TotalBase)
	assert.Equal(t, int64(2_420_000), q.TotalFinancedGross)
	assert.Equal(t, int64(2_220_000), q.BalanceToFinance)
	assert.Equal(t, 12, q.Periods)
	assert.Equal(t, int64(185_000), q.PerPeriodPayment)
	require.Len(t, q.Lines, 1)
	assert.Equal(t, int64(1_210_000), q.Lines[0].UnitFinanced)
}

func TestMarkupRule_FinancedNeverBelowCash(t *testing.T) {
	r := NewMarkupRule(0.035, nil)
	for _, base := range []int64{0, 1, 999, 310_000, 3_900_000} {
		for _, months := range []int{1, 3, 6, 12, 24, 36} {
			for qty := 1; qty <= 3; qty++ {
				q := r.Quote(
					[]Line{{Article: catalog.Article{ID: "x", CashPrice: base}, Quantity: qty}},
					Terms{Term: months, Frequency: catalog.Monthly},
				)
				assert.GreaterOrEqual(t, q.TotalFinancedGross, q.TotalBase, "base=%d months=%d qty=%d", base, months, qty)
			}
		}
	}
}

func TestMarkupRule_PeriodsRoundUp(t *testing.T) {
	r := NewMarkupRule(0.035, nil)
	line := []Line{{Article: catalog.Article{ID: "x", CashPrice: 100_000}, Quantity: 1}}

	weekly := r.Quote(line, Terms{Term: 6, Frequency: catalog.Weekly})
	assert.Equal(t, 26, weekly.Periods)

	daily := r.Quote(line, Terms{Term: 2, Frequency: catalog.Daily})
	assert.Equal(t, 60, daily.Periods)

	// 121,000 / 26 = 4653.8 -> 4654 so 26 payments cover the balance.
	assert.Equal(t, int64(4654), weekly.PerPeriodPayment)
	assert.GreaterOrEqual(t, weekly.PerPeriodPayment*int64(weekly.Periods), weekly.BalanceToFinance)
}

func TestMarkupRule_DownPaymentAboveGrossFloorsBalance(t *testing.T) {
	r := NewMarkupRule(0.035, nil)
	q := r.Quote(
		[]Line{{Article: catalog.Article{ID: "x", CashPrice: 1000}, Quantity: 1}},
		Terms{Term: 3, Frequency: catalog.Monthly, DownPayment: 5000},
	)
	assert.Equal(t, int64(0), q.BalanceToFinance)
	assert.Equal(t, int64(0), q.PerPeriodPayment)
}

func TestMarkupRule_OfferedTermsIgnoreSelection(t *testing.T) {
	r := NewMarkupRule(0, []int{12, 6})
	assert.Equal(t, []int{6, 12}, r.OfferedTerms(nil))
	assert.Equal(t, 6, r.DefaultTerm())
}

func TestIntersectInstallments_ExampleScenario(t *testing.T) {
	lines := []Line{
		{Article: articleWithCounts("a", 6, 12, 18), Quantity: 1},
		{Article: articleWithCounts("b", 12, 18, 24), Quantity: 1},
	}
	assert.Equal(t, []int{12, 18}, IntersectInstallments(lines))
}

func TestIntersectInstallments_ContainsEveryCommonCount(t *testing.T) {
	tables := [][]int{{3, 6, 9, 12}, {6, 12, 24}, {12, 6, 36}}
	var lines []Line
	for i, counts := range tables {
		lines = append(lines, Line{Article: articleWithCounts(string(rune('a'+i)), counts...), Quantity: 1})
	}

	got := IntersectInstallments(lines)
	for _, n := range []int{6, 12} {
		assert.Contains(t, got, n)
	}
	assert.Equal(t, []int{6, 12}, got)
	assert.Nil(t, IntersectInstallments(nil))
}

func TestTableRule_SumsTableRows(t *testing.T) {
	r := NewTableRule(nil)
	tv, _ := catalog.FindArticle(catalog.SeedArticles(), "ART-001")
	fridge, _ := catalog.FindArticle(catalog.SeedArticles(), "ART-002")

	q := r.Quote([]Line{{Article: tv, Quantity: 1}, {Article: fridge, Quantity: 1}},
		Terms{Term: 12, Frequency: catalog.Biweekly, DownPayment: 82_000})

	assert.Equal(t, RuleTable, q.Rule)
	assert.Equal(t, 12, q.Periods)
	assert.Equal(t, int64(4_200_000), q.TotalBase)
	assert.Equal(t, int64(5_082_000), q.TotalFinancedGross)
	assert.Equal(t, int64(5_000_000), q.BalanceToFinance)
	// A down payment spreads the balance instead of summing table rows.
	assert.Equal(t, int64(416_667), q.PerPeriodPayment)
	for _, l := range q.Lines {
		assert.False(t, l.Fallback)
	}
}

func TestTableRule_NoDownPaymentSumsRowPayments(t *testing.T) {
	r := NewTableRule(nil)
	tv, _ := catalog.FindArticle(catalog.SeedArticles(), "ART-001")
	fridge, _ := catalog.FindArticle(catalog.SeedArticles(), "ART-002")

	q := r.Quote([]Line{{Article: tv, Quantity: 1}, {Article: fridge, Quantity: 1}},
		Terms{Term: 12, Frequency: catalog.Biweekly})

	assert.Equal(t, catalog.Biweekly, q.Frequency)
	assert.Equal(t, int64(181_500+242_000), q.PerPeriodPayment)
}

func TestTableRule_ScheduleWithDownPaymentHasNoEmptyInstallments(t *testing.T) {
	r := NewTableRule(nil)
	tv, _ := catalog.FindArticle(catalog.SeedArticles(), "ART-001")

	q := r.Quote([]Line{{Article: tv, Quantity: 1}},
		Terms{Term: 12, Frequency: catalog.Biweekly, DownPayment: 1_000_000})
	require.Equal(t, int64(1_178_000), q.BalanceToFinance)
	assert.Equal(t, 12, q.Periods)
	assert.Equal(t, int64(98_167), q.PerPeriodPayment)

	sched := Schedule(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), q)
	require.Len(t, sched, 12)
	var sum int64
	for _, inst := range sched {
		assert.Positive(t, inst.Amount, "installment %d", inst.Number)
		sum += inst.Amount
	}
	assert.Equal(t, q.BalanceToFinance, sum)
}

func TestTableRule_FallbackFollowsTheOptionUsed(t *testing.T) {
	r := NewTableRule(nil)
	phone, _ := catalog.FindArticle(catalog.SeedArticles(), "ART-004")

	q := r.Quote([]Line{{Article: phone, Quantity: 1}}, Terms{Term: 12, Frequency: catalog.Biweekly})

	require.True(t, q.Lines[0].Fallback)
	assert.Equal(t, 12, q.Term)
	assert.Equal(t, 6, q.Periods)
	assert.Equal(t, catalog.Monthly, q.Frequency)
	assert.Len(t, Schedule(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), q), 6)
}

func TestTableRule_MixedPlansSpreadOverRequestedPeriods(t *testing.T) {
	r := NewTableRule(nil)
	tv, _ := catalog.FindArticle(catalog.SeedArticles(), "ART-001")
	phone, _ := catalog.FindArticle(catalog.SeedArticles(), "ART-004")

	q := r.Quote([]Line{{Article: tv, Quantity: 1}, {Article: phone, Quantity: 1}},
		Terms{Term: 12, Frequency: catalog.Biweekly})

	assert.Equal(t, 12, q.Periods)
	assert.Equal(t, catalog.Biweekly, q.Frequency)
	assert.Equal(t, int64(2_178_000+786_500), q.BalanceToFinance)
	assert.Equal(t, ceilDiv(q.BalanceToFinance, 12), q.PerPeriodPayment)

	sched := Schedule(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), q)
	require.Len(t, sched, 12)
	assert.Positive(t, sched[11].Amount)
}

func TestTableRule_QuantityScalesLine(t *testing.T) {
	r := NewTableRule(nil)
	tv, _ := catalog.FindArticle(catalog.SeedArticles(), "ART-001")

	q := r.Quote([]Line{{Article: tv, Quantity: 3}}, Terms{Term: 6, Frequency: catalog.Monthly})
	assert.Equal(t, int64(3*2_178_000), q.TotalFinancedGross)
	assert.Equal(t, int64(3*363_000), q.PerPeriodPayment)
}

func TestTableRule_MissFallsBackToFirstOptionAndLogs(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := NewTableRule(zap.New(core))
	tv, _ := catalog.FindArticle(catalog.SeedArticles(), "ART-001")

	q := r.Quote([]Line{{Article: tv, Quantity: 1}}, Terms{Term: 24, Frequency: catalog.Monthly})

	require.Len(t, q.Lines, 1)
	assert.True(t, q.Lines[0].Fallback)
	assert.Equal(t, tv.Options[0].TotalPrice, q.Lines[0].UnitFinanced)
	assert.Equal(t, 1, logs.FilterField(zap.String("article_id", "ART-001")).Len())
}

func TestTableRule_ArticleWithoutTableUsesCashPrice(t *testing.T) {
	r := NewTableRule(nil)
	q := r.Quote([]Line{{Article: catalog.Article{ID: "bare", CashPrice: 1200}, Quantity: 1}},
		Terms{Term: 12, Frequency: catalog.Monthly})

	assert.True(t, q.Lines[0].Fallback)
	assert.Equal(t, int64(1200), q.TotalFinancedGross)
	assert.Equal(t, int64(100), q.PerPeriodPayment)
}

func TestDeriveOptions_UsesMarkupPerFrequency(t *testing.T) {
	r := NewMarkupRule(0.035, []int{6})
	opts := r.DeriveOptions(catalog.Article{ID: "x", CashPrice: 1_000_000},
		[]catalog.Frequency{catalog.Monthly, catalog.Biweekly})

	require.Len(t, opts, 2)
	assert.Equal(t, catalog.InstallmentOption{Installments: 6, Frequency: catalog.Monthly, TotalPrice: 1_210_000, PerPeriod: 201_667}, opts[0])
	assert.Equal(t, catalog.InstallmentOption{Installments: 12, Frequency: catalog.Biweekly, TotalPrice: 1_210_000, PerPeriod: 100_834}, opts[1])
}

func TestEnsureOptions_KeepsExistingTables(t *testing.T) {
	r := NewMarkupRule(0.035, nil)
	seed := catalog.SeedArticles()
	out := r.EnsureOptions(seed, []catalog.Frequency{catalog.Monthly})

	require.Len(t, out, len(seed))
	for i := range out {
		assert.NotEmpty(t, out[i].Options, out[i].ID)
		if len(seed[i].Options) > 0 {
			assert.Equal(t, seed[i].Options, out[i].Options)
		}
	}
	assert.Empty(t, seed[5].Options, "input must not be mutated")
}

func TestNewRule(t *testing.T) {
	r, err := NewRule("", 0, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, RuleTable, r.Name())

	r, err = NewRule(RuleMarkup, 0.05, []int{3}, nil)
	require.NoError(t, err)
	assert.Equal(t, "months", r.TermUnit())

	_, err = NewRule("compound", 0, nil, nil)
	assert.Error(t, err)
}

func TestSchedule_SumsToBalance(t *testing.T) {
	start := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	q := Quote{Frequency: catalog.Weekly, Periods: 26, BalanceToFinance: 121_000, PerPeriodPayment: 4654}

	sched := Schedule(start, q)
	require.Len(t, sched, 26)

	var sum int64
	for _, inst := range sched {
		sum += inst.Amount
	}
	assert.Equal(t, int64(121_000), sum)
	assert.Equal(t, start.AddDate(0, 0, 7), sched[0].DueDate)
	assert.Equal(t, int64(121_000-25*4654), sched[25].Amount)
}

func TestSchedule_LastInstallmentCoversShortfall(t *testing.T) {
	q := Quote{Frequency: catalog.Monthly, Periods: 3, BalanceToFinance: 1000, PerPeriodPayment: 300}
	sched := Schedule(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), q)

	require.Len(t, sched, 3)
	assert.Equal(t, []int64{300, 300, 400}, []int64{sched[0].Amount, sched[1].Amount, sched[2].Amount})
	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), sched[2].DueDate)
}

func TestSchedule_StopsOnceBalanceIsCovered(t *testing.T) {
	q := Quote{Frequency: catalog.Monthly, Periods: 4, BalanceToFinance: 5, PerPeriodPayment: 2}
	sched := Schedule(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), q)

	require.Len(t, sched, 3)
	assert.Equal(t, []int64{2, 2, 1}, []int64{sched[0].Amount, sched[1].Amount, sched[2].Amount})
}

func TestSchedule_EmptyWhenNothingOwed(t *testing.T) {
	assert.Nil(t, Schedule(time.Now(), Quote{Periods: 6}))
	assert.Nil(t, Schedule(time.Now(), Quote{BalanceToFinance: 10}))
}
