package models

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"go.uber.org/zap"

	"github.com/credisur/credisur/internal/catalog"
	"github.com/credisur/credisur/internal/clients"
	"github.com/credisur/credisur/internal/tui/styles"
	"github.com/credisur/credisur/internal/wizard"
)

// newClientFields are bound to the huh form. The form keeps pointers into
// it, so it lives on the heap and survives model copies.
type newClientFields struct {
	givenNames string
	surnames   string
	nationalID string
	phone      string
	email      string
	tier       string
	ceiling    string
}

func (f *newClientFields) toNewClient() (clients.NewClient, error) {
	ceiling, err := wizard.ParseAmount(f.ceiling)
	if err != nil {
		return clients.NewClient{}, err
	}
	tier, _ := catalog.ParseTier(f.tier)
	if tier == catalog.TierAll {
		tier = catalog.TierGreen
	}
	return clients.NewClient{
		GivenNames:    strings.TrimSpace(f.givenNames),
		Surnames:      strings.TrimSpace(f.surnames),
		NationalID:    strings.TrimSpace(f.nationalID),
		Phone:         strings.TrimSpace(f.phone),
		Email:         strings.TrimSpace(f.email),
		RiskTier:      tier,
		CreditCeiling: ceiling,
	}, nil
}

func required(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(label + " is required")
		}
		return nil
	}
}

func validAmount(s string) error {
	v, err := wizard.ParseAmount(s)
	if err != nil {
		return err
	}
	if v < 0 {
		return errors.New("amount cannot be negative")
	}
	return nil
}

func buildNewClientForm(f *newClientFields, width int) *huh.Form {
	var tiers []huh.Option[string]
	for _, t := range catalog.AllTiers() {
		tiers = append(tiers, huh.NewOption(string(t), string(t)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Given names").Value(&f.givenNames).Validate(required("given names")),
			huh.NewInput().Title("Surnames").Value(&f.surnames).Validate(required("surnames")),
			huh.NewInput().Title("National ID").Value(&f.nationalID).Validate(required("national id")),
		),
		huh.NewGroup(
			huh.NewInput().Title("Phone").Value(&f.phone),
			huh.NewInput().Title("Email").Value(&f.email),
			huh.NewSelect[string]().Title("Risk tier").Options(tiers...).Value(&f.tier),
			huh.NewInput().Title("Credit ceiling").Placeholder("0").Value(&f.ceiling).Validate(validAmount),
		),
	).
		WithShowHelp(true).
		WithShowErrors(true).
		WithWidth(width)
}

func (m CreditWizardModel) openForm() (tea.Model, tea.Cmd) {
	if m.provider == nil {
		m.setError(errors.New("no client provider configured"))
		return m, nil
	}
	m.formFields = &newClientFields{tier: string(catalog.TierGreen)}
	m.form = buildNewClientForm(m.formFields, clampWidth(m.width-6, 72))
	m.clearFlash()
	return m, m.form.Init()
}

func (m *CreditWizardModel) closeForm() {
	m.form = nil
	m.formFields = nil
}

func (m CreditWizardModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.closeForm()
		return m, nil
	case huh.StateCompleted:
		nc, err := m.formFields.toNewClient()
		m.closeForm()
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.setInfo("Creating client...")
		return m, m.createClientCmd(nc)
	}
	return m, cmd
}

func (m CreditWizardModel) createClientCmd(nc clients.NewClient) tea.Cmd {
	p := m.provider
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		c, err := p.Create(ctx, nc)
		return clientCreatedMsg{client: c, err: err}
	}
}

func (m CreditWizardModel) handleClientCreated(msg clientCreatedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Warn("create client failed", zap.Error(msg.err))
		m.setError(msg.err)
		return m, nil
	}
	if err := m.session.AddClient(msg.client); err != nil {
		m.setError(err)
		return m, nil
	}
	// Reset filters so the new client is visible and under the cursor.
	m.clientQuery.SetValue("")
	m.tierIndex = 0
	for i, c := range m.filteredClients() {
		if c.ID == msg.client.ID {
			m.clientCursor = i
		}
	}
	m.setInfo("Client " + msg.client.FullName() + " created and selected.")
	return m, nil
}

func (m CreditWizardModel) viewForm() string {
	return "  " + styles.Title.Render("New Client") + "\n\n" + m.form.View()
}
