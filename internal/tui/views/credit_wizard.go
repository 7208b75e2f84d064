package views

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/credisur/credisur/internal/catalog"
	"github.com/credisur/credisur/internal/clients"
	"github.com/credisur/credisur/internal/notify"
	"github.com/credisur/credisur/internal/tui/models"
	"github.com/credisur/credisur/internal/wizard"
)

// CreditWizardOptions wires the interactive wizard.
type CreditWizardOptions struct {
	Session         *wizard.Session
	Provider        clients.Provider
	Notifier        notify.Notifier
	Logger          *zap.Logger
	TransitionDelay time.Duration
	Offline         bool

	// ClientsFile and ArticlesFile are reloaded when they change on disk.
	// Leave both empty to disable watching.
	ClientsFile  string
	ArticlesFile string
	// PrepareArticles runs on reloaded articles before they reach the
	// session, e.g. to derive missing option tables.
	PrepareArticles func([]catalog.Article) []catalog.Article
}

// RunCreditWizard launches the credit wizard TUI and blocks until the
// operator confirms or quits. ok is false when the wizard was abandoned.
func RunCreditWizard(ctx context.Context, opts CreditWizardOptions) (r wizard.Receipt, ok bool, err error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	model := models.NewCreditWizardModel(models.CreditWizardDeps{
		Session:         opts.Session,
		Provider:        opts.Provider,
		Notifier:        opts.Notifier,
		Logger:          opts.Logger,
		TransitionDelay: opts.TransitionDelay,
		Offline:         opts.Offline,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if opts.ClientsFile != "" || opts.ArticlesFile != "" {
		stop, err := watchCatalogs(watchCtx, p, opts)
		if err != nil {
			// Live reload is a convenience; the wizard runs without it.
			opts.Logger.Warn("catalog watch disabled", zap.Error(err))
		} else {
			defer stop()
		}
	}

	finalModel, err := p.Run()
	if err != nil {
		return wizard.Receipt{}, false, fmt.Errorf("credit wizard failed: %w", err)
	}

	m, isModel := finalModel.(models.CreditWizardModel)
	if !isModel {
		return wizard.Receipt{}, false, nil
	}
	r, ok = m.Receipt()
	return r, ok, nil
}

func watchCatalogs(ctx context.Context, p *tea.Program, opts CreditWizardOptions) (func(), error) {
	w, err := catalog.NewWatcher(opts.ClientsFile, opts.ArticlesFile)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger.With(zap.String("component", "catalog-watch"))
	events := w.Watch(ctx)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-w.Errors():
				logger.Warn("watch error", zap.Error(err))
			case ev, open := <-events:
				if !open {
					return
				}
				logger.Info("catalog file changed", zap.String("path", ev.Path))
				p.Send(reload(ev, opts))
			}
		}
	}()

	return func() { _ = w.Close() }, nil
}

func reload(ev catalog.ChangeEvent, opts CreditWizardOptions) models.CatalogReloadMsg {
	switch ev.Kind {
	case catalog.ClientsFile:
		list, err := catalog.LoadClients(ev.Path)
		if err != nil {
			return models.CatalogReloadMsg{Err: err}
		}
		return models.CatalogReloadMsg{Clients: list}
	default:
		list, err := catalog.LoadArticles(ev.Path)
		if err != nil {
			return models.CatalogReloadMsg{Err: err}
		}
		if opts.PrepareArticles != nil {
			list = opts.PrepareArticles(list)
		}
		return models.CatalogReloadMsg{Articles: list}
	}
}
