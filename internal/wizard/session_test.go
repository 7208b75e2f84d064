package wizard

import (
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credisur/credisur/internal/catalog"
	"github.com/credisur/credisur/internal/financing"
)

var fixedNow = func() time.Time { return time.Date(2026, 3, 10, 15, 4, 5, 0, time.UTC) }

func newTableSession(t *testing.T) *Session {
	t.Helper()
	return NewSession(catalog.SeedClients(), catalog.SeedArticles(), financing.NewTableRule(nil), Options{Now: fixedNow})
}

func mustArticle(t *testing.T, id string) catalog.Article {
	t.Helper()
	a, ok := catalog.FindArticle(catalog.SeedArticles(), id)
	require.True(t, ok, id)
	return a
}

func TestNewSession_Defaults(t *testing.T) {
	s := newTableSession(t)

	assert.Equal(t, StepSelectClient, s.Step())
	assert.Equal(t, 12, s.Term())
	assert.Equal(t, catalog.Biweekly, s.Frequency())
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), s.StartDate())
	assert.NotEmpty(t, s.ID())
	assert.False(t, s.Busy())

	markup := NewSession(nil, nil, financing.NewMarkupRule(0, nil), Options{})
	assert.Equal(t, 6, markup.Term())

	custom := NewSession(nil, nil, financing.NewMarkupRule(0, nil), Options{DefaultTerm: 9, DefaultFrequency: catalog.Weekly})
	assert.Equal(t, 9, custom.Term())
	assert.Equal(t, catalog.Weekly, custom.Frequency())
}

func TestAddArticle_TwiceIncrementsQuantity(t *testing.T) {
	s := newTableSession(t)
	tv := mustArticle(t, "ART-001")

	require.NoError(t, s.AddArticle(tv))
	require.NoError(t, s.AddArticle(tv))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestChangeQuantity_ClampsToOne(t *testing.T) {
	s := newTableSession(t)
	require.NoError(t, s.AddArticleByID("ART-001"))

	require.NoError(t, s.ChangeQuantity("ART-001", 3))
	assert.Equal(t, 4, s.Quantity("ART-001"))

	require.NoError(t, s.ChangeQuantity("ART-001", -999))
	assert.Equal(t, 1, s.Quantity("ART-001"))
}

func TestSelection_UnknownIDsChangeNothing(t *testing.T) {
	s := newTableSession(t)
	require.NoError(t, s.AddArticleByID("ART-001"))

	assert.True(t, errors.Is(s.ChangeQuantity("nope", 1), ErrUnknownArticle))
	assert.True(t, errors.Is(s.RemoveArticle("nope"), ErrUnknownArticle))
	assert.True(t, errors.Is(s.AddArticleByID("nope"), ErrUnknownArticle))
	assert.True(t, errors.Is(s.SelectClient("nope"), ErrUnknownClient))
	assert.Len(t, s.Items(), 1)

	var werr *Error
	require.True(t, errors.As(s.RemoveArticle("nope"), &werr))
	assert.Equal(t, CodeInvalidArgument, werr.Code)
}

func TestRemoveArticle(t *testing.T) {
	s := newTableSession(t)
	require.NoError(t, s.AddArticleByID("ART-001"))
	require.NoError(t, s.AddArticleByID("ART-003"))

	require.NoError(t, s.RemoveArticle("ART-001"))
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "ART-003", items[0].Article.ID)
}

func TestItems_ResolveUnitFinancedFromQuote(t *testing.T) {
	s := newTableSession(t)
	require.NoError(t, s.AddArticleByID("ART-001"))

	items := s.Items()
	require.Len(t, items, 1)
	// 12 BIWEEKLY row of the TV table.
	assert.Equal(t, int64(2_178_000), items[0].UnitFinanced)

	require.NoError(t, s.SetFrequency(catalog.Monthly))
	assert.Equal(t, int64(2_556_000), s.Items()[0].UnitFinanced)
}

func TestTermAutoCorrectsToFirstOffered(t *testing.T) {
	s := newTableSession(t)
	require.NoError(t, s.AddArticleByID("ART-003")) // 6, 12, 18, 24
	require.NoError(t, s.SetTerm(24))

	require.NoError(t, s.AddArticleByID("ART-005")) // 6, 12, 18
	assert.Equal(t, []int{6, 12, 18}, s.OfferedTerms())
	assert.Equal(t, 6, s.Term())
	assert.True(t, financing.Contains(s.OfferedTerms(), s.Term()))
}

func TestSetTerm_SnapsTermOutsideOfferToFirstOffered(t *testing.T) {
	s := newTableSession(t)
	require.NoError(t, s.AddArticleByID("ART-001")) // 6, 12, 18

	require.NoError(t, s.SetTerm(24))
	assert.Equal(t, 6, s.Term())

	require.NoError(t, s.SetTerm(18))
	assert.Equal(t, 18, s.Term())

	assert.True(t, errors.Is(s.SetTerm(0), ErrTermNotOffered))
	assert.Equal(t, 18, s.Term())
}

func TestSetTerm_AcceptsAnyTermBeforeArticles(t *testing.T) {
	s := newTableSession(t)
	require.NoError(t, s.SetTerm(24))
	assert.Equal(t, 24, s.Term())
}

func TestSetDownPayment(t *testing.T) {
	s := NewSession(nil, nil, financing.NewMarkupRule(0.035, nil), Options{})
	require.NoError(t, s.AddArticle(catalog.Article{ID: "A", CashPrice: 1_000_000}))
	require.NoError(t, s.AddArticle(catalog.Article{ID: "A", CashPrice: 1_000_000}))
	require.NoError(t, s.SetTerm(6))

	assert.True(t, errors.Is(s.SetDownPayment(-1), ErrNegativeDownPayment))
	require.NoError(t, s.SetDownPayment(200_000))

	q := s.Quote()
	assert.Equal(t, int64(2_420_000), q.TotalFinancedGross)
	assert.Equal(t, int64(2_220_000), q.BalanceToFinance)
}

func TestSetFrequency_RejectsUnknown(t *testing.T) {
	s := newTableSession(t)
	assert.True(t, errors.Is(s.SetFrequency("HOURLY"), ErrUnknownFrequency))
	assert.Equal(t, catalog.Biweekly, s.Frequency())
}

func TestNext_RequiresClientThenArticles(t *testing.T) {
	s := newTableSession(t)

	step, err := s.Next()
	assert.ErrorIs(t, err, ErrClientRequired)
	assert.Equal(t, StepSelectClient, step)

	require.NoError(t, s.SelectClient("CLI-006")) // blacklisted clients are still selectable
	step, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, StepSelectArticles, step)

	_, err = s.Next()
	assert.ErrorIs(t, err, ErrArticlesRequired)
	assert.Equal(t, StepSelectArticles, s.Step())

	require.NoError(t, s.AddArticleByID("ART-004"))
	step, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, StepConfigureTerms, step)

	step, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, StepConfirm, step)

	_, err = s.Next()
	assert.ErrorIs(t, err, ErrNotAtConfirm)
}

func TestBack(t *testing.T) {
	s := newTableSession(t)

	_, err := s.Back()
	assert.ErrorIs(t, err, ErrFirstStep)

	require.NoError(t, s.SelectClient("CLI-001"))
	_, err = s.Next()
	require.NoError(t, err)

	step, err := s.Back()
	require.NoError(t, err)
	assert.Equal(t, StepSelectClient, step)
}

func TestTransitions_SerializedWhileBusy(t *testing.T) {
	s := newTableSession(t)
	require.NoError(t, s.SelectClient("CLI-001"))

	pending, err := s.BeginNext()
	require.NoError(t, err)
	assert.Equal(t, StepSelectArticles, pending)
	assert.True(t, s.Busy())
	assert.Equal(t, StepSelectClient, s.Step())

	_, err = s.BeginNext()
	assert.ErrorIs(t, err, ErrTransitionInFlight)
	_, err = s.BeginBack()
	assert.ErrorIs(t, err, ErrTransitionInFlight)

	step, err := s.Finish()
	require.NoError(t, err)
	assert.Equal(t, StepSelectArticles, step)
	assert.False(t, s.Busy())

	_, err = s.Finish()
	assert.ErrorIs(t, err, ErrNoPendingTransition)
}

func TestTransitions_ConcurrentRequestsNeverInterleave(t *testing.T) {
	s := newTableSession(t)
	require.NoError(t, s.SelectClient("CLI-001"))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.BeginNext(); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	step, err := s.Finish()
	require.NoError(t, err)
	assert.Equal(t, StepSelectArticles, step)
}

func advanceToConfirm(t *testing.T, s *Session) {
	t.Helper()
	require.NoError(t, s.SelectClient("CLI-001"))
	for s.Step() < StepConfirm {
		if s.Step() == StepSelectArticles && len(s.Items()) == 0 {
			require.NoError(t, s.AddArticleByID("ART-001"))
		}
		_, err := s.Next()
		require.NoError(t, err)
	}
}

func TestConfirm(t *testing.T) {
	s := newTableSession(t)

	_, err := s.Confirm()
	assert.ErrorIs(t, err, ErrNotAtConfirm)

	advanceToConfirm(t, s)
	require.NoError(t, s.SetDownPayment(178_000))
	require.NoError(t, s.SetNotes("entrega a domicilio"))

	r, err := s.Confirm()
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, s.ID(), r.SessionID)
	assert.Equal(t, "CLI-001", r.Client.ID)
	assert.Equal(t, DefaultRedirectPath, r.RedirectTo)
	assert.Equal(t, fixedNow(), r.CreatedAt)
	assert.Equal(t, int64(2_000_000), r.Quote.BalanceToFinance)
	require.Len(t, r.Schedule, 12)

	var sum int64
	for _, inst := range r.Schedule {
		sum += inst.Amount
	}
	assert.Equal(t, r.Quote.BalanceToFinance, sum)

	_, err = s.Confirm()
	assert.ErrorIs(t, err, ErrAlreadyConfirmed)
	assert.ErrorIs(t, s.AddArticleByID("ART-002"), ErrAlreadyConfirmed)
	_, err = s.Back()
	assert.ErrorIs(t, err, ErrAlreadyConfirmed)
}

func TestConfirm_RejectedWhileBusy(t *testing.T) {
	s := newTableSession(t)
	advanceToConfirm(t, s)

	_, err := s.BeginBack()
	require.NoError(t, err)
	_, err = s.Confirm()
	assert.ErrorIs(t, err, ErrTransitionInFlight)
}

func TestAddClient_SelectsNewClient(t *testing.T) {
	s := newTableSession(t)
	c := catalog.Client{ID: "NEW-1", GivenNames: "Ana", Surnames: "Paz", RiskTier: catalog.TierGreen}

	require.NoError(t, s.AddClient(c))
	got, ok := s.Client()
	require.True(t, ok)
	assert.Equal(t, "NEW-1", got.ID)
	assert.Len(t, s.Clients(), len(catalog.SeedClients())+1)
}

func TestReplaceArticles_DropsVanishedLines(t *testing.T) {
	s := newTableSession(t)
	require.NoError(t, s.AddArticleByID("ART-001"))
	require.NoError(t, s.AddArticleByID("ART-003"))

	var kept []catalog.Article
	for _, a := range catalog.SeedArticles() {
		if a.ID != "ART-001" {
			kept = append(kept, a)
		}
	}
	s.ReplaceArticles(kept)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "ART-003", items[0].Article.ID)
}

func TestReplaceClients_DeselectsVanishedClient(t *testing.T) {
	s := newTableSession(t)
	require.NoError(t, s.SelectClient("CLI-002"))

	s.ReplaceClients(catalog.SeedClients()[:1])
	_, ok := s.Client()
	assert.False(t, ok)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$ 0", FormatAmount(0))
	assert.Equal(t, "$ 999", FormatAmount(999))
	assert.Equal(t, "$ 1.210.000", FormatAmount(1_210_000))
	assert.Equal(t, "-$ 12.500", FormatAmount(-12_500))
}

func TestFormatAmount_ExtremeValues(t *testing.T) {
	assert.Equal(t, "-$ 9.223.372.036.854.775.808", FormatAmount(math.MinInt64))
	assert.Equal(t, "$ 9.223.372.036.854.775.807", FormatAmount(math.MaxInt64))
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount("$ 1.210.000")
	require.NoError(t, err)
	assert.Equal(t, int64(1_210_000), v)

	v, err = ParseAmount("  ")
	require.NoError(t, err)
	assert.Zero(t, v)

	_, err = ParseAmount("doce mil")
	assert.Error(t, err)
}

func TestReceiptMarkdown(t *testing.T) {
	s := newTableSession(t)
	advanceToConfirm(t, s)
	require.NoError(t, s.SetNotes("cliente frecuente"))

	r, err := s.Confirm()
	require.NoError(t, err)

	md := r.Markdown()
	assert.True(t, strings.HasPrefix(md, "# Credit confirmed"))
	assert.Contains(t, md, r.Client.FullName())
	assert.Contains(t, md, "$ 2.178.000")
	assert.Contains(t, md, "cliente frecuente")
	assert.Contains(t, md, "## Schedule")
}

func TestStepLabels(t *testing.T) {
	assert.Equal(t, []string{"Client", "Articles", "Terms", "Confirm"}, StepLabels())
	assert.Equal(t, "Terms", StepConfigureTerms.String())
}
