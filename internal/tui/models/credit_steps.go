package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/credisur/credisur/internal/catalog"
	"github.com/credisur/credisur/internal/financing"
	"github.com/credisur/credisur/internal/tui/components"
	"github.com/credisur/credisur/internal/tui/styles"
	"github.com/credisur/credisur/internal/wizard"
)

var tierTabs = []catalog.RiskTier{
	catalog.TierAll,
	catalog.TierGreen,
	catalog.TierYellow,
	catalog.TierRed,
	catalog.TierBlacklist,
}

// ---------------------------------------------------------------------------
// Step 1: Client
// ---------------------------------------------------------------------------

func (m CreditWizardModel) filteredClients() []catalog.Client {
	return catalog.FilterClients(m.session.Clients(), m.clientQuery.Value(), tierTabs[m.tierIndex])
}

func (m CreditWizardModel) handleClientKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.searching {
		switch key {
		case "esc", "enter":
			m.searching = false
			m.clientQuery.Blur()
			return m, nil
		case "up", "down":
		default:
			var cmd tea.Cmd
			m.clientQuery, cmd = m.clientQuery.Update(msg)
			m.clientCursor = clampIndex(m.clientCursor, len(m.filteredClients()))
			return m, cmd
		}
	}

	list := m.filteredClients()
	switch key {
	case "/":
		m.searching = true
		m.clientQuery.Focus()
		return m, textinput.Blink
	case "up", "k":
		if m.clientCursor > 0 {
			m.clientCursor--
		}
	case "down", "j":
		if m.clientCursor < len(list)-1 {
			m.clientCursor++
		}
	case "t":
		m.tierIndex = (m.tierIndex + 1) % len(tierTabs)
		m.clientCursor = 0
	case " ", "x":
		if len(list) == 0 {
			return m, nil
		}
		c := list[m.clientCursor]
		if cur, ok := m.session.Client(); ok && cur.ID == c.ID {
			m.session.ClearClient()
			return m, nil
		}
		if err := m.session.SelectClient(c.ID); err != nil {
			m.setError(err)
			return m, nil
		}
		m.clearFlash()
	case "enter":
		if len(list) > 0 {
			if err := m.session.SelectClient(list[m.clientCursor].ID); err != nil {
				m.setError(err)
				return m, nil
			}
		}
		return m.requestNext()
	case "n":
		return m.openForm()
	case "esc":
		return m.requestBack()
	}
	return m, nil
}

func (m CreditWizardModel) viewClients() string {
	var b strings.Builder

	b.WriteString("  " + styles.Title.Render("Select Client") + "\n\n")
	b.WriteString("  " + m.clientQuery.View() + "\n")

	tabs := make([]string, len(tierTabs))
	counts := make([]int, len(tierTabs))
	for i, t := range tierTabs {
		tabs[i] = string(t)
		counts[i] = len(catalog.FilterClients(m.session.Clients(), m.clientQuery.Value(), t))
	}
	tabBar := components.TabBar{Tabs: tabs, Counts: counts, Active: m.tierIndex, Width: clampWidth(m.width-4, 76)}
	b.WriteString("  " + tabBar.Render() + "\n\n")

	list := m.filteredClients()
	if len(list) == 0 {
		b.WriteString("  " + styles.Dim("No clients match. Press n to create one.") + "\n")
		return b.String()
	}

	selected, _ := m.session.Client()
	nameStyle := lipgloss.NewStyle().Width(30).Foreground(styles.TextPrimary)
	idStyle := lipgloss.NewStyle().Width(12).Foreground(styles.TextSecondary)
	start, end := window(m.clientCursor, len(list), m.listRows())
	for i := start; i < end; i++ {
		c := list[i]
		check := lipgloss.NewStyle().Foreground(styles.TextMuted).Render("( )")
		if c.ID == selected.ID {
			check = lipgloss.NewStyle().Foreground(styles.StatusOK).Bold(true).Render("(•)")
		}
		name := nameStyle.Render(styles.TruncateWithEllipsis(c.FullName(), 28))
		if i == m.clientCursor {
			name = nameStyle.Foreground(styles.AccentPrimary).Bold(true).Render(styles.TruncateWithEllipsis(c.FullName(), 28))
		}
		b.WriteString(fmt.Sprintf("  %s%s %s %s %s\n",
			cursorMark(i == m.clientCursor), check, name,
			idStyle.Render(c.NationalID), styles.TierBadge(string(c.RiskTier))))
	}
	b.WriteString("\n  " + styles.Dim(fmt.Sprintf("%d of %d clients", len(list), len(m.session.Clients()))) + "\n")

	if list[clampIndex(m.clientCursor, len(list))].RiskTier == catalog.TierBlacklist {
		b.WriteString("  " + styles.Warn("Blacklisted client. Selection is allowed; review before confirming.") + "\n")
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// Step 2: Articles
// ---------------------------------------------------------------------------

func (m CreditWizardModel) filteredArticles() []catalog.Article {
	cats := catalog.Categories(m.session.Articles())
	category := catalog.CategoryAll
	if m.categoryIndex < len(cats) {
		category = cats[m.categoryIndex]
	}
	return catalog.FilterArticles(m.session.Articles(), m.articleQuery.Value(), category, m.order)
}

func (m CreditWizardModel) handleArticleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.searching {
		switch key {
		case "esc", "enter":
			m.searching = false
			m.articleQuery.Blur()
			return m, nil
		case "up", "down":
		default:
			var cmd tea.Cmd
			m.articleQuery, cmd = m.articleQuery.Update(msg)
			m.articleCursor = clampIndex(m.articleCursor, len(m.filteredArticles()))
			return m, cmd
		}
	}

	switch key {
	case "tab":
		m.cartFocus = !m.cartFocus && len(m.session.Items()) > 0
		return m, nil
	case "enter":
		return m.requestNext()
	case "esc":
		return m.requestBack()
	}

	if m.cartFocus {
		return m.handleCartKey(key)
	}

	list := m.filteredArticles()
	switch key {
	case "/":
		m.searching = true
		m.articleQuery.Focus()
		return m, textinput.Blink
	case "up", "k":
		if m.articleCursor > 0 {
			m.articleCursor--
		}
	case "down", "j":
		if m.articleCursor < len(list)-1 {
			m.articleCursor++
		}
	case "c":
		m.categoryIndex = (m.categoryIndex + 1) % len(catalog.Categories(m.session.Articles()))
		m.articleCursor = 0
	case "s":
		m.order = m.order.Next()
	case " ", "a", "+":
		if len(list) == 0 {
			return m, nil
		}
		if err := m.session.AddArticle(list[m.articleCursor]); err != nil {
			m.setError(err)
			return m, nil
		}
		m.clearFlash()
	}
	return m, nil
}

func (m CreditWizardModel) handleCartKey(key string) (tea.Model, tea.Cmd) {
	items := m.session.Items()
	if len(items) == 0 {
		m.cartFocus = false
		return m, nil
	}
	id := items[m.cartCursor].Article.ID

	var err error
	switch key {
	case "up", "k":
		if m.cartCursor > 0 {
			m.cartCursor--
		}
	case "down", "j":
		if m.cartCursor < len(items)-1 {
			m.cartCursor++
		}
	case "+", "=", "right", "l":
		err = m.session.ChangeQuantity(id, 1)
	case "-", "left", "h":
		err = m.session.ChangeQuantity(id, -1)
	case "d", "x", "delete", "backspace":
		err = m.session.RemoveArticle(id)
		remaining := len(m.session.Items())
		m.cartCursor = clampIndex(m.cartCursor, remaining)
		if remaining == 0 {
			m.cartFocus = false
		}
	}
	if err != nil {
		m.setError(err)
	}
	return m, nil
}

func (m CreditWizardModel) viewArticles() string {
	var b strings.Builder

	b.WriteString("  " + styles.Title.Render("Select Articles") + "\n\n")
	b.WriteString("  " + m.articleQuery.View() + "  " + styles.Dim("sort: "+m.order.String()) + "\n")

	cats := catalog.Categories(m.session.Articles())
	counts := make([]int, len(cats))
	for i, c := range cats {
		counts[i] = len(catalog.FilterArticles(m.session.Articles(), m.articleQuery.Value(), c, catalog.OrderNone))
	}
	tabBar := components.TabBar{
		Tabs:   cats,
		Counts: counts,
		Active: m.categoryIndex,
		Width:  clampWidth(m.width-4, 76),
	}
	b.WriteString("  " + tabBar.Render() + "\n\n")

	list := m.filteredArticles()
	nameStyle := lipgloss.NewStyle().Width(28).Foreground(styles.TextPrimary)
	catStyle := lipgloss.NewStyle().Width(14).Foreground(styles.AccentSecondary)
	priceStyle := lipgloss.NewStyle().Width(14).Align(lipgloss.Right).Foreground(styles.AccentGold)

	if len(list) == 0 {
		b.WriteString("  " + styles.Dim("No articles match the filters.") + "\n")
	}
	start, end := window(m.articleCursor, len(list), m.listRows()-4)
	for i := start; i < end; i++ {
		a := list[i]
		focused := !m.cartFocus && i == m.articleCursor
		name := styles.TruncateWithEllipsis(a.Name, 26)
		ns := nameStyle
		if focused {
			ns = ns.Foreground(styles.AccentPrimary).Bold(true)
		}
		qty := ""
		if n := m.session.Quantity(a.ID); n > 0 {
			qty = styles.Green(fmt.Sprintf(" ×%d", n))
		}
		b.WriteString(fmt.Sprintf("  %s%s %s %s%s\n",
			cursorMark(focused), ns.Render(name), catStyle.Render(a.Category),
			priceStyle.Render(wizard.FormatAmount(a.CashPrice)), qty))
	}

	b.WriteString("\n  " + styles.Subtitle.Render("Cart") + "\n")
	items := m.session.Items()
	if len(items) == 0 {
		b.WriteString("  " + styles.Dim("Empty. Press space to add the highlighted article.") + "\n")
		return b.String()
	}
	var cart strings.Builder
	for i, it := range items {
		focused := m.cartFocus && i == m.cartCursor
		ns := nameStyle
		if focused {
			ns = ns.Foreground(styles.AccentPrimary).Bold(true)
		}
		cart.WriteString(fmt.Sprintf("%s%s %s %s\n",
			cursorMark(focused), ns.Render(styles.TruncateWithEllipsis(it.Article.Name, 26)),
			lipgloss.NewStyle().Width(6).Render(fmt.Sprintf("×%d", it.Quantity)),
			priceStyle.Render(wizard.FormatAmount(it.UnitFinanced*int64(it.Quantity)))))
	}
	q := m.session.Quote()
	cart.WriteString(styles.Label.Render("FINANCED  ") + styles.Amount.Render(wizard.FormatAmount(q.TotalFinancedGross)))

	card := styles.Card.MarginLeft(2)
	if m.cartFocus {
		card = card.BorderForeground(styles.BorderFocused)
	}
	b.WriteString(card.Render(cart.String()) + "\n")
	return b.String()
}

// ---------------------------------------------------------------------------
// Step 3: Terms
// ---------------------------------------------------------------------------

func (m *CreditWizardModel) syncTermInputs() {
	if dp := m.session.DownPayment(); dp > 0 {
		m.downInput.SetValue(strconv.FormatInt(dp, 10))
	} else {
		m.downInput.SetValue("")
	}
	m.startInput.SetValue(m.session.StartDate().Format(dateLayout))
	m.notesInput.SetValue(m.session.Notes())
}

func (m *CreditWizardModel) blurTermInputs() {
	m.downInput.Blur()
	m.startInput.Blur()
	m.notesInput.Blur()
}

func (m *CreditWizardModel) focusField(f termsField) tea.Cmd {
	m.blurTermInputs()
	m.field = f
	switch f {
	case fieldDownPayment:
		return m.downInput.Focus()
	case fieldStartDate:
		return m.startInput.Focus()
	case fieldNotes:
		return m.notesInput.Focus()
	}
	return nil
}

func (m CreditWizardModel) handleTermsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "tab", "down":
		cmd := m.focusField((m.field + 1) % termsFieldCount)
		return m, cmd
	case "shift+tab", "up":
		cmd := m.focusField((m.field + termsFieldCount - 1) % termsFieldCount)
		return m, cmd
	case "enter":
		if err := m.commitTerms(); err != nil {
			m.setError(err)
			return m, nil
		}
		return m.requestNext()
	case "esc":
		if err := m.commitTerms(); err != nil {
			m.setError(err)
			return m, nil
		}
		return m.requestBack()
	}

	switch m.field {
	case fieldTerm:
		switch key {
		case "right", "l", "+":
			m.cycleTerm(1)
		case "left", "h", "-":
			m.cycleTerm(-1)
		}
		return m, nil
	case fieldFrequency:
		switch key {
		case "right", "l":
			m.cycleFrequency(1)
		case "left", "h":
			m.cycleFrequency(-1)
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.field {
	case fieldDownPayment:
		m.downInput, cmd = m.downInput.Update(msg)
		if v, err := wizard.ParseAmount(m.downInput.Value()); err == nil && v >= 0 {
			_ = m.session.SetDownPayment(v)
		}
	case fieldStartDate:
		m.startInput, cmd = m.startInput.Update(msg)
		if t, err := time.ParseInLocation(dateLayout, m.startInput.Value(), time.Local); err == nil {
			_ = m.session.SetStartDate(t)
		}
	case fieldNotes:
		m.notesInput, cmd = m.notesInput.Update(msg)
		_ = m.session.SetNotes(m.notesInput.Value())
	}
	return m, cmd
}

// commitTerms validates the typed fields and writes them to the session.
func (m *CreditWizardModel) commitTerms() error {
	v, err := wizard.ParseAmount(m.downInput.Value())
	if err != nil {
		return err
	}
	if err := m.session.SetDownPayment(v); err != nil {
		return err
	}
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(m.startInput.Value()), time.Local)
	if err != nil {
		return fmt.Errorf("start date must look like %s", dateLayout)
	}
	if err := m.session.SetStartDate(t); err != nil {
		return err
	}
	return m.session.SetNotes(strings.TrimSpace(m.notesInput.Value()))
}

func (m *CreditWizardModel) cycleTerm(delta int) {
	offered := m.session.OfferedTerms()
	if len(offered) == 0 {
		return
	}
	i := 0
	for j, t := range offered {
		if t == m.session.Term() {
			i = j
		}
	}
	i = (i + delta + len(offered)) % len(offered)
	if err := m.session.SetTerm(offered[i]); err != nil {
		m.setError(err)
	}
}

func (m *CreditWizardModel) cycleFrequency(delta int) {
	freqs := catalog.AllFrequencies()
	i := 0
	for j, f := range freqs {
		if f == m.session.Frequency() {
			i = j
		}
	}
	i = (i + delta + len(freqs)) % len(freqs)
	if err := m.session.SetFrequency(freqs[i]); err != nil {
		m.setError(err)
	}
}

func (m CreditWizardModel) viewTerms() string {
	var b strings.Builder

	b.WriteString("  " + styles.Title.Render("Configure Terms") + "\n\n")

	label := func(f termsField, text string) string {
		color := styles.TextSecondary
		if f == m.field {
			color = styles.AccentPrimary
		}
		return lipgloss.NewStyle().Foreground(color).Bold(true).Width(14).Render(text)
	}

	unit := m.session.Rule().TermUnit()
	var terms []string
	for _, t := range m.session.OfferedTerms() {
		s := strconv.Itoa(t)
		if t == m.session.Term() {
			s = lipgloss.NewStyle().Foreground(styles.AccentPrimary).Bold(true).Render("[" + s + "]")
		} else {
			s = styles.Dim(s)
		}
		terms = append(terms, s)
	}
	if len(terms) == 0 {
		terms = append(terms, styles.Red("no common term"))
	}
	b.WriteString("  " + label(fieldTerm, "TERM") + strings.Join(terms, " ") + " " + styles.Dim(unit) + "\n")

	var freqs []string
	for _, f := range catalog.AllFrequencies() {
		s := strings.ToLower(string(f))
		if f == m.session.Frequency() {
			s = lipgloss.NewStyle().Foreground(styles.AccentPrimary).Bold(true).Render("[" + s + "]")
		} else {
			s = styles.Dim(s)
		}
		freqs = append(freqs, s)
	}
	b.WriteString("  " + label(fieldFrequency, "FREQUENCY") + strings.Join(freqs, " ") + "\n")
	b.WriteString("  " + label(fieldDownPayment, "DOWN PAYMENT") + m.downInput.View() + "\n")
	b.WriteString("  " + label(fieldStartDate, "START DATE") + m.startInput.View() + "\n")
	b.WriteString("  " + label(fieldNotes, "NOTES") + m.notesInput.View() + "\n\n")

	preview := strings.TrimRight(m.viewQuote(m.session.Quote()), "\n")
	b.WriteString(styles.Panel.MarginLeft(2).Render(preview) + "\n")
	return b.String()
}

func (m CreditWizardModel) viewQuote(q financing.Quote) string {
	var b strings.Builder
	row := func(name, value string) {
		b.WriteString("  " + styles.Label.Render(fmt.Sprintf("%-20s", name)) + value + "\n")
	}
	row("BASE", styles.Value.Render(wizard.FormatAmount(q.TotalBase)))
	row("FINANCED", styles.Value.Render(wizard.FormatAmount(q.TotalFinancedGross)))
	row("DOWN PAYMENT", styles.Value.Render(wizard.FormatAmount(q.DownPayment)))
	row("BALANCE", styles.Amount.Render(wizard.FormatAmount(q.BalanceToFinance)))
	row("INSTALLMENTS", styles.Value.Render(fmt.Sprintf("%d × %s %s",
		q.Periods, wizard.FormatAmount(q.PerPeriodPayment), strings.ToLower(string(q.Frequency)))))

	for _, l := range q.Lines {
		if l.Fallback {
			b.WriteString("  " + styles.Warn(fmt.Sprintf("%s has no %d/%s option; priced at %d %s.",
				l.Name, q.Term, strings.ToLower(string(m.session.Frequency())),
				l.Installments, strings.ToLower(string(l.Frequency)))) + "\n")
		}
	}
	if c, ok := m.session.Client(); ok && c.CreditCeiling > 0 && q.BalanceToFinance > c.CreditCeiling {
		b.WriteString("  " + styles.Warn(fmt.Sprintf("Balance exceeds %s's credit ceiling of %s.",
			c.GivenNames, wizard.FormatAmount(c.CreditCeiling))) + "\n")
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// Step 4: Confirm
// ---------------------------------------------------------------------------

func (m CreditWizardModel) handleConfirmKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "enter", "y":
		if err := m.session.Validate(); err != nil {
			m.setError(err)
			return m, nil
		}
		q := m.session.Quote()
		d := components.NewConfirmDialog("Confirm credit?",
			fmt.Sprintf("%d %s installments of %s",
				q.Periods, strings.ToLower(string(q.Frequency)), wizard.FormatAmount(q.PerPeriodPayment)))
		m.dialog = &d
	case "esc":
		return m.requestBack()
	}
	return m, nil
}

func (m CreditWizardModel) viewConfirm() string {
	var b strings.Builder

	b.WriteString("  " + styles.Title.Render("Review and Confirm") + "\n\n")

	panelWidth := clampWidth(m.width-6, 72)
	var summary strings.Builder
	if c, ok := m.session.Client(); ok {
		summary.WriteString(styles.Label.Render("CLIENT  ") + "  " + styles.Value.Render(c.FullName()) +
			"  " + styles.TierBadge(string(c.RiskTier)) + "\n")
	}
	for _, it := range m.session.Items() {
		summary.WriteString(styles.Label.Render("ARTICLE ") + "  " +
			styles.Value.Render(fmt.Sprintf("%s ×%d", it.Article.Name, it.Quantity)) + "  " +
			styles.Gold(wizard.FormatAmount(it.UnitFinanced*int64(it.Quantity))) + "\n")
	}
	summary.WriteString(styles.Label.Render("START   ") + "  " + styles.Value.Render(m.session.StartDate().Format(dateLayout)))
	if notes := m.session.Notes(); notes != "" {
		summary.WriteString("\n" + styles.Label.Render("NOTES   ") + "  " + styles.Subtitle.Render(notes))
	}

	b.WriteString(styles.PanelFocused.Width(panelWidth).MarginLeft(2).Render(summary.String()) + "\n\n")

	b.WriteString(m.viewQuote(m.session.Quote()))

	schedule := m.session.Schedule()
	if len(schedule) > 0 {
		b.WriteString("\n  " + styles.Subtitle.Render("Schedule") + "\n")
		show := schedule
		if len(show) > 6 {
			show = show[:6]
		}
		for _, inst := range show {
			b.WriteString(fmt.Sprintf("  %s  %s  %s\n",
				styles.Dim(fmt.Sprintf("#%-3d", inst.Number)),
				inst.DueDate.Format(dateLayout),
				styles.Gold(wizard.FormatAmount(inst.Amount))))
		}
		if len(schedule) > len(show) {
			last := schedule[len(schedule)-1]
			b.WriteString("  " + styles.Dim(fmt.Sprintf("... %d more, last due %s", len(schedule)-len(show), last.DueDate.Format(dateLayout))) + "\n")
		}
	}
	return b.String()
}
