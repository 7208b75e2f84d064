package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/credisur/credisur/internal/catalog"
	"github.com/credisur/credisur/internal/clients"
	"github.com/credisur/credisur/internal/config"
	"github.com/credisur/credisur/internal/financing"
)

// pingTimeout bounds every network check.
const pingTimeout = 3 * time.Second

func (c *Checker) registerChecks() {
	// Configuration
	c.add("config-file", "config", c.checkConfigFile)
	c.add("config-valid", "config", c.checkConfigValid)
	c.add("financing-rule", "config", c.checkFinancingRule)

	// Catalogs
	c.add("clients-catalog", "catalog", c.checkClientsCatalog)
	c.add("articles-catalog", "catalog", c.checkArticlesCatalog)
	c.add("option-tables", "catalog", c.checkOptionTables)

	// Storage
	c.add("client-store", "storage", c.checkClientStore)
	c.add("mysql", "storage", c.checkMySQL)
	c.add("log-file", "storage", c.checkLogFile)

	// Integrations
	c.add("redis", "integrations", c.checkRedis)
	c.add("slack-webhook", "integrations", c.checkSlack)
}

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

func (c *Checker) checkConfigFile(_ context.Context) CheckResult {
	if _, err := os.Stat(c.paths.Config); err != nil {
		return CheckResult{Status: StatusWarn, Message: fmt.Sprintf("%s not found, using defaults", config.FileName)}
	}
	return CheckResult{Status: StatusPass, Message: c.paths.Config}
}

func (c *Checker) checkConfigValid(_ context.Context) CheckResult {
	errs := config.Validate(c.cfg)
	if len(errs) == 0 {
		return CheckResult{Status: StatusPass, Message: "no issues"}
	}
	return CheckResult{Status: StatusFail, Message: fmt.Sprintf("%d issue(s), first: %s", len(errs), errs[0].Error())}
}

func (c *Checker) checkFinancingRule(_ context.Context) CheckResult {
	rule, err := financing.NewRule(c.cfg.Financing.Rule, c.cfg.Financing.MonthlyMarkup, c.cfg.Financing.MarkupTerms, nil)
	if err != nil {
		return CheckResult{Status: StatusFail, Message: err.Error()}
	}
	return CheckResult{Status: StatusPass, Message: fmt.Sprintf("%s (default term %d %s)", rule.Name(), rule.DefaultTerm(), rule.TermUnit())}
}

// ---------------------------------------------------------------------------
// Catalogs
// ---------------------------------------------------------------------------

func (c *Checker) checkClientsCatalog(_ context.Context) CheckResult {
	list, err := catalog.LoadClients(c.paths.ClientsFile)
	if err != nil {
		return CheckResult{Status: StatusFail, Message: err.Error()}
	}
	src := "built-in"
	if c.paths.ClientsFile != "" {
		src = filepath.Base(c.paths.ClientsFile)
	}
	return CheckResult{Status: StatusPass, Message: fmt.Sprintf("%d clients (%s)", len(list), src)}
}

func (c *Checker) checkArticlesCatalog(_ context.Context) CheckResult {
	list, err := catalog.LoadArticles(c.paths.ArticlesFile)
	if err != nil {
		return CheckResult{Status: StatusFail, Message: err.Error()}
	}
	if len(list) == 0 {
		return CheckResult{Status: StatusWarn, Message: "catalog is empty"}
	}
	return CheckResult{Status: StatusPass, Message: fmt.Sprintf("%d articles in %d categories", len(list), len(catalog.Categories(list))-1)}
}

// checkOptionTables reports articles that will be priced from derived
// tables because their catalog entry carries none.
func (c *Checker) checkOptionTables(_ context.Context) CheckResult {
	list, err := catalog.LoadArticles(c.paths.ArticlesFile)
	if err != nil {
		return CheckResult{Status: StatusFail, Message: "articles catalog unreadable"}
	}
	var bare []string
	for _, a := range list {
		if len(a.Options) == 0 {
			bare = append(bare, a.ID)
		}
	}
	if len(bare) == 0 {
		return CheckResult{Status: StatusPass, Message: "every article has an option table"}
	}
	if c.cfg.Financing.Rule == financing.RuleMarkup {
		return CheckResult{Status: StatusPass, Message: fmt.Sprintf("%d without table (markup rule)", len(bare))}
	}
	return CheckResult{Status: StatusWarn, Message: fmt.Sprintf("derived tables for: %s", strings.Join(bare, ", "))}
}

// ---------------------------------------------------------------------------
// Storage
// ---------------------------------------------------------------------------

func (c *Checker) checkClientStore(_ context.Context) CheckResult {
	if c.cfg.Clients.Source != config.SourceFile {
		return CheckResult{Status: StatusPass, Message: fmt.Sprintf("not used (source: %s)", c.cfg.Clients.Source)}
	}
	dir := c.paths.ClientsStore
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return CheckResult{Status: StatusFail, Message: fmt.Sprintf("cannot create %s", dir)}
	}
	tmp, err := os.CreateTemp(dir, ".tmp-health-*")
	if err != nil {
		return CheckResult{Status: StatusFail, Message: fmt.Sprintf("%s not writable", dir)}
	}
	tmp.Close()
	os.Remove(tmp.Name())

	entries, _ := filepath.Glob(filepath.Join(dir, "*.json"))
	return CheckResult{Status: StatusPass, Message: fmt.Sprintf("%d stored client(s)", len(entries))}
}

func (c *Checker) checkMySQL(ctx context.Context) CheckResult {
	if c.cfg.Clients.Source != config.SourceMySQL {
		return CheckResult{Status: StatusPass, Message: "not configured"}
	}
	db, _, err := clients.OpenDB(c.cfg.Clients.MySQLDSN)
	if err != nil {
		return CheckResult{Status: StatusFail, Message: err.Error()}
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return CheckResult{Status: StatusFail, Message: fmt.Sprintf("ping failed: %v", err)}
	}
	return CheckResult{Status: StatusPass, Message: "reachable"}
}

func (c *Checker) checkLogFile(_ context.Context) CheckResult {
	path := c.paths.LogFile
	if path == "" || path == "-" {
		return CheckResult{Status: StatusPass, Message: "stderr"}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return CheckResult{Status: StatusFail, Message: fmt.Sprintf("%s not writable", path)}
	}
	f.Close()
	return CheckResult{Status: StatusPass, Message: filepath.Base(path)}
}

// ---------------------------------------------------------------------------
// Integrations
// ---------------------------------------------------------------------------

func (c *Checker) checkRedis(ctx context.Context) CheckResult {
	addr := c.cfg.Cache.RedisAddr
	if addr == "" {
		return CheckResult{Status: StatusPass, Message: "not configured"}
	}
	rc := clients.NewRedisCache(addr)
	defer rc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		// The cache is optional; listing still works without it.
		return CheckResult{Status: StatusWarn, Message: fmt.Sprintf("%s unreachable", addr)}
	}
	return CheckResult{Status: StatusPass, Message: addr}
}

func (c *Checker) checkSlack(_ context.Context) CheckResult {
	u := c.cfg.Notify.SlackWebhookURL
	if u == "" {
		return CheckResult{Status: StatusPass, Message: "not configured"}
	}
	if !strings.HasPrefix(u, "https://hooks.slack.com/") {
		return CheckResult{Status: StatusWarn, Message: "webhook URL is not a hooks.slack.com URL"}
	}
	channel := c.cfg.Notify.Channel
	if channel == "" {
		channel = "webhook default channel"
	}
	return CheckResult{Status: StatusPass, Message: channel}
}
