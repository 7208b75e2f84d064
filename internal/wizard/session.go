package wizard

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/credisur/credisur/internal/catalog"
	"github.com/credisur/credisur/internal/financing"
)

// Step is a position in the credit wizard.
type Step int

const (
	StepSelectClient Step = iota + 1
	StepSelectArticles
	StepConfigureTerms
	StepConfirm
)

// StepCount is the number of wizard steps.
const StepCount = int(StepConfirm)

var stepLabels = map[Step]string{
	StepSelectClient:   "Client",
	StepSelectArticles: "Articles",
	StepConfigureTerms: "Terms",
	StepConfirm:        "Confirm",
}

// StepLabels returns the step labels in order.
func StepLabels() []string {
	out := make([]string, 0, StepCount)
	for s := StepSelectClient; s <= StepConfirm; s++ {
		out = append(out, stepLabels[s])
	}
	return out
}

func (s Step) String() string {
	if l, ok := stepLabels[s]; ok {
		return l
	}
	return "Unknown"
}

// DefaultRedirectPath is where a confirmed credit sends the user.
const DefaultRedirectPath = "/creditos"

// Options configures a new Session. Zero values take the rule's or the
// package's defaults.
type Options struct {
	DefaultTerm      int
	DefaultFrequency catalog.Frequency
	StartDate        time.Time
	RedirectPath     string
	Logger           *zap.Logger
	Now              func() time.Time
}

// LineItem is a selected article, its quantity and its per-unit financed
// price under the current terms.
type LineItem struct {
	Article      catalog.Article
	Quantity     int
	UnitFinanced int64
}

// Session holds the state of one credit wizard run. Catalogs are passed in
// by the caller and never mutated. All methods are safe for concurrent use;
// step transitions are serialized through a busy flag.
type Session struct {
	mu sync.Mutex

	id       string
	clients  []catalog.Client
	articles []catalog.Article
	rule     financing.Rule
	logger   *zap.Logger
	now      func() time.Time
	redirect string

	step      Step
	pending   Step
	busy      bool
	confirmed bool

	clientID    string
	lines       []LineItem
	term        int
	frequency   catalog.Frequency
	downPayment int64
	startDate   time.Time
	notes       string
}

// NewSession starts a wizard at step 1.
func NewSession(clients []catalog.Client, articles []catalog.Article, rule financing.Rule, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DefaultTerm <= 0 {
		opts.DefaultTerm = rule.DefaultTerm()
	}
	if opts.DefaultFrequency == "" {
		opts.DefaultFrequency = catalog.Biweekly
	}
	if opts.StartDate.IsZero() {
		opts.StartDate = truncateDay(opts.Now())
	}
	if opts.RedirectPath == "" {
		opts.RedirectPath = DefaultRedirectPath
	}

	s := &Session{
		id:        uuid.NewString(),
		clients:   append([]catalog.Client(nil), clients...),
		articles:  append([]catalog.Article(nil), articles...),
		rule:      rule,
		now:       opts.Now,
		redirect:  opts.RedirectPath,
		step:      StepSelectClient,
		term:      opts.DefaultTerm,
		frequency: opts.DefaultFrequency,
		startDate: opts.StartDate,
	}
	s.logger = opts.Logger.With(zap.String("session_id", s.id))
	s.logger.Debug("wizard session started",
		zap.String("rule", rule.Name()),
		zap.Int("term", s.term),
		zap.String("frequency", string(s.frequency)),
	)
	return s
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (s *Session) ID() string { return s.id }

// Rule returns the financing rule the session prices with.
func (s *Session) Rule() financing.Rule { return s.rule }

// Clients returns the client catalog the session selects from.
func (s *Session) Clients() []catalog.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]catalog.Client(nil), s.clients...)
}

// Articles returns the article catalog the session selects from.
func (s *Session) Articles() []catalog.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]catalog.Article(nil), s.articles...)
}

func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Busy reports whether a transition has begun and not yet finished.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *Session) Confirmed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confirmed
}

// ---------------------------------------------------------------------------
// Client selection
// ---------------------------------------------------------------------------

// SelectClient chooses the client by id. The risk tier is not checked.
func (s *Session) SelectClient(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.confirmed {
		return ErrAlreadyConfirmed
	}
	if _, ok := catalog.FindClient(s.clients, id); !ok {
		return withID(ErrUnknownClient, id)
	}
	s.clientID = id
	return nil
}

// ClearClient drops the client selection.
func (s *Session) ClearClient() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.confirmed {
		s.clientID = ""
	}
}

// AddClient appends a newly created client to the session catalog and
// selects it.
func (s *Session) AddClient(c catalog.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.confirmed {
		return ErrAlreadyConfirmed
	}
	if c.ID == "" {
		return withID(ErrUnknownClient, "(empty id)")
	}
	if _, ok := catalog.FindClient(s.clients, c.ID); !ok {
		s.clients = append(s.clients, c)
	}
	s.clientID = c.ID
	s.logger.Info("client added to session", zap.String("client_id", c.ID))
	return nil
}

// ReplaceClients swaps the client catalog. A selected client that no longer
// exists is deselected.
func (s *Session) ReplaceClients(clients []catalog.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients = append([]catalog.Client(nil), clients...)
	if _, ok := catalog.FindClient(s.clients, s.clientID); !ok && s.clientID != "" && !s.confirmed {
		s.logger.Warn("selected client vanished from catalog", zap.String("client_id", s.clientID))
		s.clientID = ""
	}
}

// Client returns the selected client.
func (s *Session) Client() (catalog.Client, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clientID == "" {
		return catalog.Client{}, false
	}
	return catalog.FindClient(s.clients, s.clientID)
}

// ---------------------------------------------------------------------------
// Article selection
// ---------------------------------------------------------------------------

// AddArticle increments the quantity of an already selected article or
// appends it with quantity 1.
func (s *Session) AddArticle(a catalog.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.confirmed {
		return ErrAlreadyConfirmed
	}
	if i := s.lineIndex(a.ID); i >= 0 {
		s.lines[i].Quantity++
	} else {
		s.lines = append(s.lines, LineItem{Article: a, Quantity: 1, UnitFinanced: a.CashPrice})
	}
	s.reconcileTerm()
	return nil
}

// AddArticleByID looks the article up in the session catalog and adds it.
func (s *Session) AddArticleByID(id string) error {
	s.mu.Lock()
	a, ok := catalog.FindArticle(s.articles, id)
	s.mu.Unlock()
	if !ok {
		return withID(ErrUnknownArticle, id)
	}
	return s.AddArticle(a)
}

// RemoveArticle deletes the line item for id.
func (s *Session) RemoveArticle(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.confirmed {
		return ErrAlreadyConfirmed
	}
	i := s.lineIndex(id)
	if i < 0 {
		return withID(ErrUnknownArticle, id)
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	s.reconcileTerm()
	return nil
}

// ChangeQuantity adds delta to the quantity of id, never going below 1.
func (s *Session) ChangeQuantity(id string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.confirmed {
		return ErrAlreadyConfirmed
	}
	i := s.lineIndex(id)
	if i < 0 {
		return withID(ErrUnknownArticle, id)
	}
	s.lines[i].Quantity = max(1, s.lines[i].Quantity+delta)
	s.reconcileTerm()
	return nil
}

// ReplaceArticles swaps the article catalog. Selected lines pick up the new
// article data; lines whose article disappeared are dropped.
func (s *Session) ReplaceArticles(articles []catalog.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles = append([]catalog.Article(nil), articles...)
	if s.confirmed {
		return
	}
	kept := s.lines[:0]
	for _, l := range s.lines {
		a, ok := catalog.FindArticle(s.articles, l.Article.ID)
		if !ok {
			s.logger.Warn("selected article vanished from catalog", zap.String("article_id", l.Article.ID))
			continue
		}
		l.Article = a
		kept = append(kept, l)
	}
	s.lines = kept
	s.reconcileTerm()
}

// Items returns the selected line items with unit financed prices resolved
// against the current quote.
func (s *Session) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items()
}

func (s *Session) items() []LineItem {
	out := append([]LineItem(nil), s.lines...)
	if len(out) == 0 {
		return out
	}
	q := s.quote()
	for i := range out {
		if i < len(q.Lines) {
			out[i].UnitFinanced = q.Lines[i].UnitFinanced
		}
	}
	return out
}

// Quantity returns how many units of id are selected.
func (s *Session) Quantity(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.lineIndex(id); i >= 0 {
		return s.lines[i].Quantity
	}
	return 0
}

func (s *Session) lineIndex(id string) int {
	for i, l := range s.lines {
		if l.Article.ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) financingLines() []financing.Line {
	out := make([]financing.Line, len(s.lines))
	for i, l := range s.lines {
		out[i] = financing.Line{Article: l.Article, Quantity: l.Quantity}
	}
	return out
}

// ---------------------------------------------------------------------------
// Terms
// ---------------------------------------------------------------------------

// OfferedTerms lists the terms valid for the current selection.
func (s *Session) OfferedTerms() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rule.OfferedTerms(s.financingLines())
}

// reconcileTerm moves the term to the first offered one when the current
// term is no longer offered. An empty offer leaves the term alone.
func (s *Session) reconcileTerm() {
	offered := s.rule.OfferedTerms(s.financingLines())
	if len(offered) == 0 || financing.Contains(offered, s.term) {
		return
	}
	s.logger.Debug("term no longer offered, auto-correcting",
		zap.Int("from", s.term),
		zap.Int("to", offered[0]),
	)
	s.term = offered[0]
}

func (s *Session) Term() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term
}

// SetTerm chooses a term. With articles selected, a term outside the offer
// snaps to the first offered term, the same way a selection change does.
func (s *Session) SetTerm(term int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.confirmed {
		return ErrAlreadyConfirmed
	}
	if term <= 0 {
		return ErrTermNotOffered
	}
	s.term = term
	if len(s.lines) > 0 {
		s.reconcileTerm()
	}
	return nil
}

func (s *Session) Frequency() catalog.Frequency {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frequency
}

func (s *Session) SetFrequency(f catalog.Frequency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.confirmed {
		return ErrAlreadyConfirmed
	}
	if _, ok := catalog.ParseFrequency(string(f)); !ok {
		return withID(ErrUnknownFrequency, string(f))
	}
	s.frequency = f
	return nil
}

func (s *Session) DownPayment() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.downPayment
}

// SetDownPayment records the amount paid up front. A down payment above the
// financed total is accepted; the balance floors at zero.
func (s *Session) SetDownPayment(amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.confirmed {
		return ErrAlreadyConfirmed
	}
	if amount < 0 {
		return ErrNegativeDownPayment
	}
	s.downPayment = amount
	return nil
}

func (s *Session) StartDate() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startDate
}

func (s *Session) SetStartDate(t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.confirmed {
		return ErrAlreadyConfirmed
	}
	s.startDate = truncateDay(t)
	return nil
}

func (s *Session) Notes() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notes
}

func (s *Session) SetNotes(notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.confirmed {
		return ErrAlreadyConfirmed
	}
	s.notes = notes
	return nil
}

// Quote prices the current selection. It is recomputed on every call.
func (s *Session) Quote() financing.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quote()
}

func (s *Session) quote() financing.Quote {
	return s.rule.Quote(s.financingLines(), financing.Terms{
		Term:        s.term,
		Frequency:   s.frequency,
		DownPayment: s.downPayment,
	})
}

// Schedule lists the installments of the current quote.
func (s *Session) Schedule() []financing.Installment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return financing.Schedule(s.startDate, s.quote())
}
