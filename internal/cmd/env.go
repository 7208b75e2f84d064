package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/credisur/credisur/internal/catalog"
	"github.com/credisur/credisur/internal/clients"
	"github.com/credisur/credisur/internal/config"
	"github.com/credisur/credisur/internal/financing"
)

// env is what every command needs after config has been read.
type env struct {
	cfg    *config.Config
	paths  *config.Paths
	logger *zap.Logger
}

// readConfig loads the configuration and resolves paths without judging
// them, for the commands that report on a broken setup.
func readConfig() (*config.Config, *config.Paths, error) {
	cfg, err := config.Load(viper.GetViper(), "")
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, config.NewPaths(config.Root(), cfg), nil
}

// loadEnv reads and validates the configuration, resolves paths and builds
// the logger. Logs go to the configured file unless stderr is set.
func loadEnv(stderr bool) (*env, error) {
	cfg, paths, err := readConfig()
	if err != nil {
		return nil, err
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %w (run 'credisur config validate')", errs[0])
	}
	if err := config.EnsureDirectories(paths, cfg); err != nil {
		return nil, err
	}

	logPath := paths.LogFile
	if stderr {
		logPath = "-"
	}
	logger, err := config.NewLogger(cfg.Log, logPath, verbose)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, paths: paths, logger: logger}, nil
}

func (e *env) close() {
	_ = e.logger.Sync()
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// rule builds the configured financing rule.
func (e *env) rule() (financing.Rule, error) {
	f := e.cfg.Financing
	return financing.NewRule(f.Rule, f.MonthlyMarkup, f.MarkupTerms, e.logger.Named("financing"))
}

func (e *env) derivedFrequencies() []catalog.Frequency {
	var out []catalog.Frequency
	for _, s := range e.cfg.Financing.DerivedFrequencies {
		if f, ok := catalog.ParseFrequency(s); ok {
			out = append(out, f)
		}
	}
	return out
}

// prepareArticles derives option tables for articles that carry none, so
// the table rule can price the whole catalog.
func (e *env) prepareArticles(articles []catalog.Article) []catalog.Article {
	f := e.cfg.Financing
	markup := financing.NewMarkupRule(f.MonthlyMarkup, f.MarkupTerms)
	return markup.EnsureOptions(articles, e.derivedFrequencies())
}

func (e *env) articles() ([]catalog.Article, error) {
	list, err := catalog.LoadArticles(e.paths.ArticlesFile)
	if err != nil {
		return nil, err
	}
	return e.prepareArticles(list), nil
}

// seedClients is the static client catalog: the configured file or the
// built-in seeds.
func (e *env) seedClients() ([]catalog.Client, error) {
	return catalog.LoadClients(e.paths.ClientsFile)
}

// provider opens the configured client provider over the static catalog.
func (e *env) provider() (clients.Provider, []catalog.Client, func(), error) {
	seed, err := e.seedClients()
	if err != nil {
		return nil, nil, nil, err
	}
	p, closeFn, err := clients.Open(e.cfg, e.paths, seed, e.logger.Named("clients"))
	if err != nil {
		return nil, nil, nil, err
	}
	return p, seed, closeFn, nil
}
