package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the project root.
const FileName = "credisur.json"

// EnvPrefix prefixes every environment override, e.g. CREDISUR_LOG_LEVEL.
const EnvPrefix = "CREDISUR"

// Config represents the full credisur.json schema.
type Config struct {
	Financing FinancingConfig `json:"financing" mapstructure:"financing"`
	Wizard    WizardConfig    `json:"wizard" mapstructure:"wizard"`
	Catalog   CatalogConfig   `json:"catalog" mapstructure:"catalog"`
	Clients   ClientsConfig   `json:"clients" mapstructure:"clients"`
	Cache     CacheConfig     `json:"cache" mapstructure:"cache"`
	Notify    NotifyConfig    `json:"notify" mapstructure:"notify"`
	Log       LogConfig       `json:"log" mapstructure:"log"`
}

// FinancingConfig selects and tunes the pricing rule.
type FinancingConfig struct {
	Rule               string   `json:"rule" mapstructure:"rule"`
	MonthlyMarkup      float64  `json:"monthlyMarkup" mapstructure:"monthlyMarkup"`
	MarkupTerms        []int    `json:"markupTerms" mapstructure:"markupTerms"`
	DerivedFrequencies []string `json:"derivedFrequencies" mapstructure:"derivedFrequencies"`
}

// WizardConfig holds session defaults.
type WizardConfig struct {
	DefaultTerm      int           `json:"defaultTerm" mapstructure:"defaultTerm"`
	DefaultFrequency string        `json:"defaultFrequency" mapstructure:"defaultFrequency"`
	TransitionDelay  time.Duration `json:"transitionDelay" mapstructure:"transitionDelay"`
	RedirectPath     string        `json:"redirectPath" mapstructure:"redirectPath"`
}

// CatalogConfig points at optional JSON catalogs that replace the seeds.
type CatalogConfig struct {
	ClientsFile  string `json:"clientsFile" mapstructure:"clientsFile"`
	ArticlesFile string `json:"articlesFile" mapstructure:"articlesFile"`
	Watch        bool   `json:"watch" mapstructure:"watch"`
}

// ClientsConfig selects where clients are listed from and created in.
type ClientsConfig struct {
	Source   string `json:"source" mapstructure:"source"`
	StoreDir string `json:"storeDir" mapstructure:"storeDir"`
	MySQLDSN string `json:"mysqlDSN" mapstructure:"mysqlDSN"`
}

// CacheConfig enables the Redis client-list cache when RedisAddr is set.
type CacheConfig struct {
	RedisAddr string        `json:"redisAddr" mapstructure:"redisAddr"`
	TTL       time.Duration `json:"ttl" mapstructure:"ttl"`
}

// NotifyConfig enables Slack notifications when SlackWebhookURL is set.
type NotifyConfig struct {
	SlackWebhookURL string `json:"slackWebhookURL" mapstructure:"slackWebhookURL"`
	Channel         string `json:"channel" mapstructure:"channel"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
	File   string `json:"file" mapstructure:"file"`
}

// Client source names.
const (
	SourceStatic = "static"
	SourceFile   = "file"
	SourceMySQL  = "mysql"
)

// SetDefaults registers every default on v so that keys are known to
// AutomaticEnv even when no config file exists.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("financing.rule", "table")
	v.SetDefault("financing.monthlyMarkup", 0.035)
	v.SetDefault("financing.markupTerms", []int{3, 6, 9, 12, 18, 24})
	v.SetDefault("financing.derivedFrequencies", []string{"BIWEEKLY", "MONTHLY"})

	v.SetDefault("wizard.defaultTerm", 0)
	v.SetDefault("wizard.defaultFrequency", "BIWEEKLY")
	v.SetDefault("wizard.transitionDelay", 200*time.Millisecond)
	v.SetDefault("wizard.redirectPath", "/creditos")

	v.SetDefault("catalog.clientsFile", "")
	v.SetDefault("catalog.articlesFile", "")
	v.SetDefault("catalog.watch", true)

	v.SetDefault("clients.source", SourceStatic)
	v.SetDefault("clients.storeDir", "clients")
	v.SetDefault("clients.mysqlDSN", "")

	v.SetDefault("cache.redisAddr", "")
	v.SetDefault("cache.ttl", 5*time.Minute)

	v.SetDefault("notify.slackWebhookURL", "")
	v.SetDefault("notify.channel", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "credisur.log")
}

// Default returns the configuration used when no file or env override is
// present.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := decode(v)
	if err != nil {
		panic(fmt.Sprintf("decoding defaults: %v", err))
	}
	return cfg
}

// singleton holds the global loaded config and the project root path.
var (
	globalCfg  *Config
	globalRoot string
	mu         sync.RWMutex
)

// Load decodes v (already pointed at a file and env by the caller) into a
// Config and caches it for Get. projectRoot is the directory relative paths
// resolve against.
func Load(v *viper.Viper, projectRoot string) (*Config, error) {
	SetDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		// A missing file means defaults plus env. An explicit --config path
		// that does not exist surfaces as a plain os error.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", FileName, err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}

	if projectRoot == "" {
		if used := v.ConfigFileUsed(); used != "" {
			projectRoot = filepath.Dir(used)
		} else if wd, err := os.Getwd(); err == nil {
			projectRoot = wd
		}
	}

	mu.Lock()
	globalCfg = cfg
	globalRoot = projectRoot
	mu.Unlock()

	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}
	return &cfg, nil
}

// Get returns the cached global config. It panics if Load has not been called.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()

	if globalCfg == nil {
		panic("config.Get() called before config.Load()")
	}
	return globalCfg
}

// Root returns the project root directory set during Load.
func Root() string {
	mu.RLock()
	defer mu.RUnlock()
	return globalRoot
}

// Save writes cfg to credisur.json in dir.
func Save(cfg *Config, dir string) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshalling config: %w", err)
	}

	cfgPath := filepath.Join(dir, FileName)
	if err := os.WriteFile(cfgPath, append(data, '\n'), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", FileName, err)
	}
	return cfgPath, nil
}

// EnvKeyReplacer maps nested keys to env names: wizard.redirectPath is read
// from CREDISUR_WIZARD_REDIRECTPATH.
func EnvKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}
