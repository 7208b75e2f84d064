package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "table", cfg.Financing.Rule)
	assert.Equal(t, 0.035, cfg.Financing.MonthlyMarkup)
	assert.Equal(t, []int{3, 6, 9, 12, 18, 24}, cfg.Financing.MarkupTerms)
	assert.Equal(t, "BIWEEKLY", cfg.Wizard.DefaultFrequency)
	assert.Equal(t, 200*time.Millisecond, cfg.Wizard.TransitionDelay)
	assert.Equal(t, "/creditos", cfg.Wizard.RedirectPath)
	assert.Equal(t, SourceStatic, cfg.Clients.Source)
	assert.Equal(t, "credisur.log", cfg.Log.File)
	assert.Empty(t, Validate(cfg))
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{
  "financing": {"rule": "markup", "monthlyMarkup": 0.04},
  "wizard": {"defaultTerm": 9, "transitionDelay": "350ms"},
  "log": {"level": "debug"}
}`), 0o644))
	t.Setenv("CREDISUR_WIZARD_REDIRECTPATH", "/creditos/nuevos")

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(EnvKeyReplacer())
	v.AutomaticEnv()

	cfg, err := Load(v, "")
	require.NoError(t, err)

	assert.Equal(t, "markup", cfg.Financing.Rule)
	assert.Equal(t, 0.04, cfg.Financing.MonthlyMarkup)
	assert.Equal(t, 9, cfg.Wizard.DefaultTerm)
	assert.Equal(t, 350*time.Millisecond, cfg.Wizard.TransitionDelay)
	assert.Equal(t, "/creditos/nuevos", cfg.Wizard.RedirectPath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, dir, Root())
	assert.Same(t, cfg, Get())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	v := viper.New()
	v.SetConfigFile(filepath.Join(t.TempDir(), FileName))

	cfg, err := Load(v, "/srv/credisur")
	require.NoError(t, err)
	assert.Equal(t, "table", cfg.Financing.Rule)
	assert.Equal(t, "/srv/credisur", Root())
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"financing": `), 0o644))

	v := viper.New()
	v.SetConfigFile(path)
	_, err := Load(v, "")
	assert.Error(t, err)
}

func TestSave_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Financing.Rule = "markup"

	path, err := Save(cfg, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), path)

	v := viper.New()
	v.SetConfigFile(path)
	loaded, err := Load(v, dir)
	require.NoError(t, err)
	assert.Equal(t, "markup", loaded.Financing.Rule)
	assert.Equal(t, cfg.Wizard.TransitionDelay, loaded.Wizard.TransitionDelay)
}

func fieldsOf(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Field
	}
	return out
}

func TestValidate_CollectsEveryIssue(t *testing.T) {
	cfg := Default()
	cfg.Financing.Rule = "compound"
	cfg.Financing.MonthlyMarkup = -0.1
	cfg.Financing.MarkupTerms = []int{6, 0}
	cfg.Wizard.DefaultFrequency = "HOURLY"
	cfg.Wizard.RedirectPath = "creditos"
	cfg.Clients.Source = SourceMySQL
	cfg.Cache.RedisAddr = "localhost:6379"
	cfg.Cache.TTL = 0
	cfg.Notify.SlackWebhookURL = "hooks.slack.com/x"
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"

	fields := fieldsOf(Validate(cfg))
	for _, want := range []string{
		"financing.rule",
		"financing.monthlyMarkup",
		"financing.markupTerms[1]",
		"wizard.defaultFrequency",
		"wizard.redirectPath",
		"clients.mysqlDSN",
		"cache.ttl",
		"notify.slackWebhookURL",
		"log.level",
		"log.format",
	} {
		assert.Contains(t, fields, want)
	}
}

func TestValidate_MissingCatalogFile(t *testing.T) {
	dir := t.TempDir()
	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, FileName))
	_, err := Load(v, dir)
	require.NoError(t, err)

	cfg := Default()
	cfg.Catalog.ArticlesFile = "articles.json"
	errs := Validate(cfg)
	require.Len(t, errs, 1)
	assert.Equal(t, "catalog.articlesFile", errs[0].Field)
	assert.Contains(t, errs[0].Error(), "file not found")
}

func TestResolve(t *testing.T) {
	assert.Equal(t, filepath.Join("/srv", "clients"), Resolve("/srv", "clients"))
	assert.Equal(t, "/abs/x.json", Resolve("/srv", "/abs/x.json"))
	assert.Equal(t, "-", Resolve("/srv", "-"))
	assert.Equal(t, "", Resolve("/srv", ""))
}

func TestNewPathsAndEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	cfg.Clients.Source = SourceFile
	cfg.Log.File = filepath.Join("logs", "credisur.log")

	p := NewPaths(root, cfg)
	assert.Equal(t, filepath.Join(root, "clients"), p.ClientsStore)
	assert.Equal(t, filepath.Join(root, FileName), p.Config)

	require.NoError(t, EnsureDirectories(p, cfg))
	assert.DirExists(t, p.ClientsStore)
	assert.DirExists(t, filepath.Join(root, "logs"))
}

func TestNewLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	logger, err := NewLogger(LogConfig{Level: "warn", Format: "json"}, path, false)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), `"msg":"kept"`)

	_, err = NewLogger(LogConfig{Level: "loud"}, "-", false)
	assert.Error(t, err)
}
