package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/credisur/credisur/internal/catalog"
	"github.com/credisur/credisur/internal/clients"
	"github.com/credisur/credisur/internal/notify"
	"github.com/credisur/credisur/internal/tui/components"
	"github.com/credisur/credisur/internal/tui/styles"
	"github.com/credisur/credisur/internal/wizard"
)

// ---------------------------------------------------------------------------
// Tea messages
// ---------------------------------------------------------------------------

// transitionMsg fires when the transition delay has elapsed.
type transitionMsg struct{}

type clientCreatedMsg struct {
	client catalog.Client
	err    error
}

type notifyDoneMsg struct{ err error }

// CatalogReloadMsg carries catalogs re-read after a file change. A nil slice
// leaves that catalog untouched.
type CatalogReloadMsg struct {
	Clients  []catalog.Client
	Articles []catalog.Article
	Err      error
}

// ---------------------------------------------------------------------------
// Step 3 fields
// ---------------------------------------------------------------------------

type termsField int

const (
	fieldTerm termsField = iota
	fieldFrequency
	fieldDownPayment
	fieldStartDate
	fieldNotes
)

const termsFieldCount = 5

const dateLayout = "2006-01-02"

// ---------------------------------------------------------------------------
// CreditWizardModel
// ---------------------------------------------------------------------------

// CreditWizardDeps are the collaborators of the wizard model.
type CreditWizardDeps struct {
	Session  *wizard.Session
	Provider clients.Provider
	Notifier notify.Notifier
	Logger   *zap.Logger
	// TransitionDelay is the pause between accepting a step change and
	// applying it. Zero applies it on the next message.
	TransitionDelay time.Duration
	// Offline marks a client list served from the static fallback.
	Offline bool
}

// CreditWizardModel implements tea.Model for `credisur new`. It walks the
// operator through four steps:
//
//	1. Client    -- search, filter by tier, select or create a client
//	2. Articles  -- search, filter by category, sort by price, build the cart
//	3. Terms     -- term, frequency, down payment, start date, notes
//	4. Confirm   -- summary, schedule, confirmation and receipt
//
// All business state lives in the wizard.Session; the model only holds
// cursors, inputs and overlays.
type CreditWizardModel struct {
	session  *wizard.Session
	provider clients.Provider
	notifier notify.Notifier
	logger   *zap.Logger
	delay    time.Duration
	offline  bool

	// Step 1 -- Client
	clientQuery  textinput.Model
	tierIndex    int
	clientCursor int

	// Step 2 -- Articles
	articleQuery  textinput.Model
	categoryIndex int
	order         catalog.PriceOrder
	articleCursor int
	cartFocus     bool
	cartCursor    int

	// Step 3 -- Terms
	field       termsField
	downInput   textinput.Model
	startInput  textinput.Model
	notesInput  textinput.Model

	// Search mode on steps 1 and 2.
	searching bool

	// New-client form (huh), open over step 1.
	form       *huh.Form
	formFields *newClientFields

	// Credit confirmation dialog on step 4.
	dialog *components.ConfirmDialog

	// Outcome
	receipt     *wizard.Receipt
	receiptView string
	notifying   bool
	notifyErr   error

	flash    string
	flashErr bool
	busySpin spinner.Model

	confirmQuit bool

	width  int
	height int
}

// NewCreditWizardModel creates the wizard model at step 1.
func NewCreditWizardModel(deps CreditWizardDeps) CreditWizardModel {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.AccentPrimary)

	m := CreditWizardModel{
		session:      deps.Session,
		provider:     deps.Provider,
		notifier:     deps.Notifier,
		logger:       deps.Logger.Named("tui"),
		delay:        deps.TransitionDelay,
		offline:      deps.Offline,
		clientQuery:  newInput("search clients", 40),
		articleQuery: newInput("search articles", 40),
		downInput:    newInput("0", 16),
		startInput:   newInput(dateLayout, 10),
		notesInput:   newInput("optional", 120),
		busySpin:     s,
		width:        80,
		height:       40,
	}
	if m.offline {
		m.setInfo("Client service unavailable, showing the offline catalog.")
	}
	return m
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Prompt = "› "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(styles.AccentPrimary)
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.TextPrimary)
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(styles.AccentPrimary)
	return ti
}

// Receipt returns the confirmed credit once the operator has confirmed.
func (m CreditWizardModel) Receipt() (wizard.Receipt, bool) {
	if m.receipt == nil {
		return wizard.Receipt{}, false
	}
	return *m.receipt, true
}

// Session exposes the wizard session driving the model.
func (m CreditWizardModel) Session() *wizard.Session { return m.session }

// ---------------------------------------------------------------------------
// tea.Model interface
// ---------------------------------------------------------------------------

func (m CreditWizardModel) Init() tea.Cmd {
	return nil
}

// Update processes messages and key events.
func (m CreditWizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.width < 60 {
			m.width = 60
		}
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case transitionMsg:
		return m.finishTransition()

	case clientCreatedMsg:
		return m.handleClientCreated(msg)

	case CatalogReloadMsg:
		return m.handleCatalogReload(msg)

	case notifyDoneMsg:
		m.notifying = false
		m.notifyErr = msg.err
		return m, nil

	case spinner.TickMsg:
		if m.session.Busy() || m.notifying {
			var cmd tea.Cmd
			m.busySpin, cmd = m.busySpin.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	// The nested form needs its own non-key messages (blink, init).
	if m.form != nil {
		return m.updateForm(msg)
	}

	return m, nil
}

// View renders the current wizard step.
func (m CreditWizardModel) View() string {
	if m.receipt != nil {
		return m.viewReceipt()
	}

	var sections []string

	clientName := ""
	if c, ok := m.session.Client(); ok {
		clientName = c.FullName()
	}
	header := components.Header{
		Rule:    m.session.Rule().Name(),
		Client:  clientName,
		Offline: m.offline,
		Width:   m.width,
	}
	sections = append(sections, header.Render(), "")

	busy := m.session.Busy()
	progress := components.ProgressStep{
		Steps:   wizard.StepLabels(),
		Current: int(m.session.Step()) - 1,
		Busy:    busy,
	}
	progressLine := "  " + progress.Render()
	if busy {
		progressLine += "  " + m.busySpin.View()
	}
	sections = append(sections, progressLine, "")
	sections = append(sections, "  "+styles.Divider(clampWidth(m.width-4, 76)), "")

	if m.form != nil {
		sections = append(sections, m.viewForm())
	} else {
		switch m.session.Step() {
		case wizard.StepSelectClient:
			sections = append(sections, m.viewClients())
		case wizard.StepSelectArticles:
			sections = append(sections, m.viewArticles())
		case wizard.StepConfigureTerms:
			sections = append(sections, m.viewTerms())
		case wizard.StepConfirm:
			sections = append(sections, m.viewConfirm())
		}
	}

	if m.flash != "" {
		style, badge := lipgloss.NewStyle().Foreground(styles.StatusInfo), styles.StatusBadge("info")
		if m.flashErr {
			style, badge = styles.ErrorText, styles.StatusBadge("error")
		}
		sections = append(sections, "", "  "+badge+"  "+style.Render(m.flash))
	}

	if m.dialog != nil {
		sections = append(sections, "", "  "+m.dialog.View())
	}

	if m.confirmQuit {
		sections = append(sections, "")
		quitStyle := lipgloss.NewStyle().
			Background(styles.BgSurface).
			Foreground(styles.StatusWarn).
			Border(styles.RoundedBorder).
			BorderForeground(styles.StatusWarn).
			Padding(0, 1)
		sections = append(sections, "  "+quitStyle.Render("Discard this credit? Nothing has been saved.  y/n"))
	}

	sections = append(sections, "")
	sections = append(sections, "  "+styles.Divider(clampWidth(m.width-4, 76)))
	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// ---------------------------------------------------------------------------
// Key handling
// ---------------------------------------------------------------------------

func (m CreditWizardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.receipt != nil {
		switch key {
		case "enter", "q", "esc":
			return m, tea.Quit
		}
		return m, nil
	}

	if m.form != nil {
		if key == "esc" {
			m.closeForm()
			m.setInfo("New client discarded.")
			return m, nil
		}
		return m.updateForm(msg)
	}

	// Quit confirmation takes priority.
	if m.confirmQuit {
		switch key {
		case "y", "Y":
			return m, tea.Quit
		default:
			m.confirmQuit = false
			return m, nil
		}
	}

	if m.dialog != nil {
		return m.handleDialogKey(msg)
	}

	// A step change is in flight; input waits for it.
	if m.session.Busy() {
		return m, nil
	}

	if key == "q" && !m.typing() {
		m.confirmQuit = true
		return m, nil
	}

	switch m.session.Step() {
	case wizard.StepSelectClient:
		return m.handleClientKey(msg)
	case wizard.StepSelectArticles:
		return m.handleArticleKey(msg)
	case wizard.StepConfigureTerms:
		return m.handleTermsKey(msg)
	case wizard.StepConfirm:
		return m.handleConfirmKey(key)
	}
	return m, nil
}

// typing reports whether keystrokes are going into a text input.
func (m CreditWizardModel) typing() bool {
	if m.searching {
		return true
	}
	if m.session.Step() == wizard.StepConfigureTerms {
		return m.field == fieldDownPayment || m.field == fieldStartDate || m.field == fieldNotes
	}
	return false
}

// ---------------------------------------------------------------------------
// Transitions
// ---------------------------------------------------------------------------

func (m CreditWizardModel) requestNext() (tea.Model, tea.Cmd) {
	if _, err := m.session.BeginNext(); err != nil {
		m.setError(err)
		return m, nil
	}
	m.clearFlash()
	return m, tea.Batch(m.busySpin.Tick, m.afterDelay())
}

func (m CreditWizardModel) requestBack() (tea.Model, tea.Cmd) {
	if _, err := m.session.BeginBack(); err != nil {
		if errors.Is(err, wizard.ErrFirstStep) {
			m.confirmQuit = true
			return m, nil
		}
		m.setError(err)
		return m, nil
	}
	m.clearFlash()
	return m, tea.Batch(m.busySpin.Tick, m.afterDelay())
}

func (m CreditWizardModel) afterDelay() tea.Cmd {
	if m.delay <= 0 {
		return func() tea.Msg { return transitionMsg{} }
	}
	return tea.Tick(m.delay, func(time.Time) tea.Msg { return transitionMsg{} })
}

func (m CreditWizardModel) finishTransition() (tea.Model, tea.Cmd) {
	step, err := m.session.Finish()
	if err != nil {
		m.logger.Debug("stale transition tick", zap.Error(err))
		return m, nil
	}
	return m.enterStep(step)
}

// enterStep resets focus for the step just entered.
func (m CreditWizardModel) enterStep(step wizard.Step) (tea.Model, tea.Cmd) {
	m.searching = false
	m.clientQuery.Blur()
	m.articleQuery.Blur()
	m.blurTermInputs()

	switch step {
	case wizard.StepSelectArticles:
		m.cartFocus = false
	case wizard.StepConfigureTerms:
		m.syncTermInputs()
		m.field = fieldTerm
	}
	return m, nil
}

// ---------------------------------------------------------------------------
// Flash messages
// ---------------------------------------------------------------------------

func (m *CreditWizardModel) setError(err error) {
	var werr *wizard.Error
	if errors.As(err, &werr) {
		m.flash = werr.Message
	} else {
		m.flash = err.Error()
	}
	m.flashErr = true
}

func (m *CreditWizardModel) setInfo(msg string) {
	m.flash = msg
	m.flashErr = false
}

func (m *CreditWizardModel) clearFlash() {
	m.flash = ""
	m.flashErr = false
}

// ---------------------------------------------------------------------------
// Catalog reload
// ---------------------------------------------------------------------------

func (m CreditWizardModel) handleCatalogReload(msg CatalogReloadMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.logger.Warn("catalog reload failed", zap.Error(msg.Err))
		m.setError(fmt.Errorf("catalog reload failed: %w", msg.Err))
		return m, nil
	}
	var parts []string
	if msg.Clients != nil {
		m.session.ReplaceClients(msg.Clients)
		m.offline = false
		parts = append(parts, fmt.Sprintf("%d clients", len(msg.Clients)))
	}
	if msg.Articles != nil {
		m.session.ReplaceArticles(msg.Articles)
		parts = append(parts, fmt.Sprintf("%d articles", len(msg.Articles)))
	}
	if len(parts) > 0 {
		m.setInfo("Catalog reloaded: " + strings.Join(parts, ", ") + ".")
	}
	m.clampCursors()
	return m, nil
}

func (m *CreditWizardModel) clampCursors() {
	m.clientCursor = clampIndex(m.clientCursor, len(m.filteredClients()))
	m.articleCursor = clampIndex(m.articleCursor, len(m.filteredArticles()))
	m.cartCursor = clampIndex(m.cartCursor, len(m.session.Items()))
	m.categoryIndex = clampIndex(m.categoryIndex, len(catalog.Categories(m.session.Articles())))
}

// ---------------------------------------------------------------------------
// Confirmation
// ---------------------------------------------------------------------------

func (m CreditWizardModel) handleDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d, _ := m.dialog.Update(msg)
	if !d.Done {
		m.dialog = &d
		return m, nil
	}
	m.dialog = nil
	if !d.Confirmed {
		return m, nil
	}

	r, err := m.session.Confirm()
	if err != nil {
		m.setError(err)
		return m, nil
	}
	m.receipt = &r
	m.receiptView = renderMarkdown(r.Markdown(), clampWidth(m.width-4, 100))
	m.notifying = true
	return m, tea.Batch(m.busySpin.Tick, m.notifyCmd(r))
}

func (m CreditWizardModel) notifyCmd(r wizard.Receipt) tea.Cmd {
	n := m.notifier
	logger := m.logger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := n.CreditConfirmed(ctx, r)
		if err != nil {
			logger.Warn("credit notification failed", zap.String("receipt_id", r.ID), zap.Error(err))
		}
		return notifyDoneMsg{err: err}
	}
}

func renderMarkdown(md string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

func (m CreditWizardModel) viewReceipt() string {
	var b strings.Builder
	b.WriteString(m.receiptView)
	b.WriteString("\n")

	switch {
	case m.notifying:
		b.WriteString("  " + m.busySpin.View() + " Sending notification...\n")
	case m.notifyErr != nil:
		b.WriteString("  " + styles.Warn("Notification failed: "+m.notifyErr.Error()) + "\n")
	}

	redirect := lipgloss.NewStyle().Foreground(styles.AccentPrimary).Bold(true).Render(m.receipt.RedirectTo)
	b.WriteString("\n  Press enter to continue to " + redirect + ".\n")
	return b.String()
}

// ---------------------------------------------------------------------------
// Footer
// ---------------------------------------------------------------------------

func (m CreditWizardModel) renderFooter() string {
	if m.form != nil {
		return components.FormFooter(m.width).Render()
	}

	step := m.session.Step()
	footer := components.Footer{
		Step:  fmt.Sprintf("%d/%d %s", int(step), wizard.StepCount, step),
		Width: m.width,
	}

	switch step {
	case wizard.StepSelectClient:
		footer.Groups = []components.HintGroup{
			{Label: "pick", Hints: []components.KeyHint{
				{Key: "space", Desc: "select"},
				{Key: "enter", Desc: "continue"},
			}},
			components.ListGroup(),
			{Label: "clients", Hints: []components.KeyHint{
				{Key: "t", Desc: "tier"},
				{Key: "n", Desc: "new client"},
			}},
		}
	case wizard.StepSelectArticles:
		if m.cartFocus {
			footer.Groups = []components.HintGroup{
				{Label: "cart", Hints: []components.KeyHint{
					{Key: "+/-", Desc: "quantity"},
					{Key: "d", Desc: "remove"},
					{Key: "enter", Desc: "continue"},
				}},
				{Label: "move", Hints: []components.KeyHint{
					{Key: "↑↓", Desc: "navigate"},
					{Key: "tab", Desc: "catalog"},
				}},
			}
		} else {
			footer.Groups = []components.HintGroup{
				{Label: "catalog", Hints: []components.KeyHint{
					{Key: "space", Desc: "add"},
					{Key: "enter", Desc: "continue"},
				}},
				components.ListGroup(),
				{Label: "view", Hints: []components.KeyHint{
					{Key: "c", Desc: "category"},
					{Key: "s", Desc: "sort"},
					{Key: "tab", Desc: "cart"},
				}},
			}
		}
	case wizard.StepConfigureTerms:
		footer.Groups = []components.HintGroup{
			{Label: "terms", Hints: []components.KeyHint{
				{Key: "←→", Desc: "change"},
				{Key: "tab", Desc: "next field"},
				{Key: "enter", Desc: "continue"},
			}},
		}
	case wizard.StepConfirm:
		footer.Groups = []components.HintGroup{
			{Hints: []components.KeyHint{{Key: "enter", Desc: "confirm credit"}}},
		}
	}

	if step > wizard.StepSelectClient {
		footer.Global = append(footer.Global, components.KeyHint{Key: "esc", Desc: "back"})
	}
	footer.Global = append(footer.Global, components.KeyHint{Key: "q", Desc: "quit"})
	return footer.Render()
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func clampWidth(val, max int) int {
	if val > max {
		return max
	}
	if val < 10 {
		return 10
	}
	return val
}

func clampIndex(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// window returns the [start, end) slice of a list of n rows that keeps
// cursor visible in size rows.
func window(cursor, n, size int) (int, int) {
	if n <= size {
		return 0, n
	}
	start := cursor - size/2
	if start < 0 {
		start = 0
	}
	if start+size > n {
		start = n - size
	}
	return start, start + size
}

func (m CreditWizardModel) listRows() int {
	rows := m.height - 20
	if rows < 5 {
		return 5
	}
	return rows
}

func cursorMark(selected bool) string {
	if selected {
		return lipgloss.NewStyle().Foreground(styles.AccentPrimary).Bold(true).Render("> ")
	}
	return "  "
}
