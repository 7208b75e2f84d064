package health

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credisur/credisur/internal/config"
)

func newTestChecker(t *testing.T, mutate func(*config.Config)) (*Checker, string) {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	return NewChecker(cfg, config.NewPaths(root, cfg), nil), root
}

func resultByName(r *Report, name string) (CheckResult, bool) {
	for _, res := range r.Results {
		if res.Name == name {
			return res, true
		}
	}
	return CheckResult{}, false
}

func TestRunAll_DefaultsAreDegradedNotFailing(t *testing.T) {
	c, _ := newTestChecker(t, nil)
	r := c.RunAll(context.Background())

	assert.Equal(t, len(c.checks), r.Total)
	assert.Zero(t, r.Failed)
	assert.True(t, r.Healthy)
	assert.Equal(t, "DEGRADED", r.Verdict())

	cf, ok := resultByName(r, "config-file")
	require.True(t, ok)
	assert.Equal(t, StatusWarn, cf.Status)

	ot, _ := resultByName(r, "option-tables")
	assert.Equal(t, StatusWarn, ot.Status)
	assert.Contains(t, ot.Message, "ART-006")
}

func TestRunAll_WithConfigFileAndMarkupRule(t *testing.T) {
	c, root := newTestChecker(t, func(cfg *config.Config) {
		cfg.Financing.Rule = "markup"
	})
	require.NoError(t, os.WriteFile(filepath.Join(root, config.FileName), []byte("{}"), 0o644))

	r := c.RunAll(context.Background())
	assert.Equal(t, "HEALTHY", r.Verdict())
	assert.Equal(t, r.Total, r.Passed)
}

func TestRunCategory_OnlyRunsThatCategory(t *testing.T) {
	c, _ := newTestChecker(t, nil)
	r := c.RunCategory(context.Background(), "integrations")

	require.Equal(t, 2, r.Total)
	for _, res := range r.Results {
		assert.Equal(t, "integrations", res.Category)
		assert.Equal(t, "not configured", res.Message)
	}
}

func TestInvalidConfigFails(t *testing.T) {
	c, _ := newTestChecker(t, func(cfg *config.Config) {
		cfg.Financing.Rule = "compound"
		cfg.Catalog.ArticlesFile = "missing.json"
	})
	r := c.RunAll(context.Background())

	assert.False(t, r.Healthy)
	for _, name := range []string{"config-valid", "financing-rule", "articles-catalog"} {
		res, ok := resultByName(r, name)
		require.True(t, ok, name)
		assert.Equal(t, StatusFail, res.Status, name)
	}
}

func TestClientStoreCheck(t *testing.T) {
	c, root := newTestChecker(t, func(cfg *config.Config) {
		cfg.Clients.Source = config.SourceFile
	})
	r := c.RunCategory(context.Background(), "storage")

	res, ok := resultByName(r, "client-store")
	require.True(t, ok)
	assert.Equal(t, StatusPass, res.Status)
	assert.DirExists(t, filepath.Join(root, "clients"))
}

func TestSlackCheckWarnsOnForeignURL(t *testing.T) {
	c, _ := newTestChecker(t, func(cfg *config.Config) {
		cfg.Notify.SlackWebhookURL = "https://example.com/hook"
	})
	r := c.RunCategory(context.Background(), "integrations")
	res, _ := resultByName(r, "slack-webhook")
	assert.Equal(t, StatusWarn, res.Status)
}

func TestCancelledContextFailsChecks(t *testing.T) {
	c, _ := newTestChecker(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := c.RunAll(ctx)
	assert.Equal(t, r.Total, r.Failed)
	assert.Equal(t, "context cancelled", r.Results[0].Message)
}

func TestFormatReport(t *testing.T) {
	c, _ := newTestChecker(t, nil)
	r := c.RunAll(context.Background())

	out := FormatReport(r)
	for _, want := range []string{"CrediSur Health Check", "Configuration", "Catalogs", "Client Storage", "Integrations", r.Summary()} {
		assert.Contains(t, out, want)
	}
}

func TestRunCheck_SingleByName(t *testing.T) {
	c, _ := newTestChecker(t, nil)

	r := c.RunCheck(context.Background(), "financing-rule")
	require.Len(t, r.Results, 1)
	assert.Equal(t, StatusPass, r.Results[0].Status)

	assert.Zero(t, c.RunCheck(context.Background(), "no-such-check").Total)
	assert.Contains(t, c.Names(), "redis")
}
