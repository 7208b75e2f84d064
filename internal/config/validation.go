package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ValidationError describes a single config validation failure.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface for a single validation error.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

var frequencies = []string{"DAILY", "WEEKLY", "BIWEEKLY", "MONTHLY"}

func knownFrequency(s string) bool {
	for _, f := range frequencies {
		if strings.EqualFold(f, s) {
			return true
		}
	}
	return false
}

// Validate checks the Config for completeness and consistency. It returns a
// slice of all discovered issues rather than stopping at the first one.
func Validate(cfg *Config) []ValidationError {
	var errs []ValidationError

	// --- Financing ---
	switch cfg.Financing.Rule {
	case "table", "markup":
	default:
		errs = append(errs, ValidationError{
			Field:   "financing.rule",
			Message: fmt.Sprintf("must be \"table\" or \"markup\", got %q", cfg.Financing.Rule),
		})
	}
	if cfg.Financing.MonthlyMarkup < 0 || cfg.Financing.MonthlyMarkup > 1 {
		errs = append(errs, ValidationError{
			Field:   "financing.monthlyMarkup",
			Message: fmt.Sprintf("must be in [0, 1], got %.4f", cfg.Financing.MonthlyMarkup),
		})
	}
	for i, t := range cfg.Financing.MarkupTerms {
		if t <= 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("financing.markupTerms[%d]", i),
				Message: fmt.Sprintf("must be > 0, got %d", t),
			})
		}
	}
	for i, f := range cfg.Financing.DerivedFrequencies {
		if !knownFrequency(f) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("financing.derivedFrequencies[%d]", i),
				Message: fmt.Sprintf("unknown frequency %q", f),
			})
		}
	}

	// --- Wizard ---
	if cfg.Wizard.DefaultTerm < 0 {
		errs = append(errs, ValidationError{
			Field:   "wizard.defaultTerm",
			Message: fmt.Sprintf("must be >= 0, got %d", cfg.Wizard.DefaultTerm),
		})
	}
	if !knownFrequency(cfg.Wizard.DefaultFrequency) {
		errs = append(errs, ValidationError{
			Field:   "wizard.defaultFrequency",
			Message: fmt.Sprintf("unknown frequency %q", cfg.Wizard.DefaultFrequency),
		})
	}
	if cfg.Wizard.TransitionDelay < 0 {
		errs = append(errs, ValidationError{
			Field:   "wizard.transitionDelay",
			Message: fmt.Sprintf("must be >= 0, got %s", cfg.Wizard.TransitionDelay),
		})
	}
	if !strings.HasPrefix(cfg.Wizard.RedirectPath, "/") {
		errs = append(errs, ValidationError{
			Field:   "wizard.redirectPath",
			Message: fmt.Sprintf("must be an absolute path, got %q", cfg.Wizard.RedirectPath),
		})
	}

	// --- Clients ---
	switch cfg.Clients.Source {
	case SourceStatic:
	case SourceFile:
		if cfg.Clients.StoreDir == "" {
			errs = append(errs, ValidationError{Field: "clients.storeDir", Message: "required when clients.source is \"file\""})
		}
	case SourceMySQL:
		if cfg.Clients.MySQLDSN == "" {
			errs = append(errs, ValidationError{Field: "clients.mysqlDSN", Message: "required when clients.source is \"mysql\""})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "clients.source",
			Message: fmt.Sprintf("must be one of static, file, mysql; got %q", cfg.Clients.Source),
		})
	}

	// --- Cache / notify ---
	if cfg.Cache.RedisAddr != "" && cfg.Cache.TTL <= 0 {
		errs = append(errs, ValidationError{
			Field:   "cache.ttl",
			Message: fmt.Sprintf("must be > 0 when cache.redisAddr is set, got %s", cfg.Cache.TTL),
		})
	}
	if u := cfg.Notify.SlackWebhookURL; u != "" && !strings.HasPrefix(u, "https://") && !strings.HasPrefix(u, "http://") {
		errs = append(errs, ValidationError{
			Field:   "notify.slackWebhookURL",
			Message: "must be an http(s) URL",
		})
	}

	// --- Log ---
	if _, err := zap.ParseAtomicLevel(cfg.Log.Level); err != nil {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("unknown level %q", cfg.Log.Level),
		})
	}
	if cfg.Log.Format != "console" && cfg.Log.Format != "json" {
		errs = append(errs, ValidationError{
			Field:   "log.format",
			Message: fmt.Sprintf("must be \"console\" or \"json\", got %q", cfg.Log.Format),
		})
	}

	// --- File existence checks (only when project root is set) ---
	root := Root()
	if root != "" {
		for field, path := range map[string]string{
			"catalog.clientsFile":  cfg.Catalog.ClientsFile,
			"catalog.articlesFile": cfg.Catalog.ArticlesFile,
		} {
			if path == "" {
				continue
			}
			abs := Resolve(root, path)
			if _, err := os.Stat(abs); err != nil {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("file not found: %s", abs),
				})
			}
		}
		if cfg.Clients.Source == SourceFile && cfg.Clients.StoreDir != "" {
			abs := Resolve(root, cfg.Clients.StoreDir)
			if info, err := os.Stat(abs); err == nil && !info.IsDir() {
				errs = append(errs, ValidationError{
					Field:   "clients.storeDir",
					Message: fmt.Sprintf("not a directory: %s", abs),
				})
			}
		}
	}

	return errs
}

// Resolve joins a relative path onto root. Absolute paths and "-" pass
// through unchanged.
func Resolve(root, path string) string {
	if path == "" || path == "-" || filepath.IsAbs(path) || root == "" {
		return path
	}
	return filepath.Join(root, path)
}
