package cmd

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/credisur/credisur/internal/health"
)

var (
	healthCheck    string
	healthCategory string
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run configuration and integration health checks",
	Long: `Run diagnostic health checks against the current configuration.

Checks are grouped into categories:
  config        - config file, validation, financing rule
  catalog       - client and article catalogs, option tables
  storage       - client store, MySQL, log file
  integrations  - Redis cache, Slack notifications

Use --category to run only a specific group, or --check to run a single
named check. The command still runs when the config does not validate, so
the failures can be reported.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, paths, err := readConfig()
		if err != nil {
			return err
		}

		logger := zap.NewNop()
		checker := health.NewChecker(cfg, paths, logger)

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		var report *health.Report
		switch {
		case healthCheck != "":
			if !slices.Contains(checker.Names(), healthCheck) {
				return fmt.Errorf("unknown check %q (available: %s)", healthCheck, strings.Join(checker.Names(), ", "))
			}
			report = checker.RunCheck(ctx, healthCheck)
		case healthCategory != "":
			if !slices.Contains(health.Categories(), healthCategory) {
				return fmt.Errorf("unknown category %q (available: %s)", healthCategory, strings.Join(health.Categories(), ", "))
			}
			report = checker.RunCategory(ctx, healthCategory)
		default:
			report = checker.RunAll(ctx)
		}

		fmt.Print(health.FormatReport(report))

		if !report.Healthy {
			return fmt.Errorf("%d health check(s) failed", report.Failed)
		}
		return nil
	},
}

func init() {
	healthCmd.Flags().StringVar(&healthCheck, "check", "", "run a specific named check")
	healthCmd.Flags().StringVar(&healthCategory, "category", "", "run checks in a category: config, catalog, storage, or integrations")
	rootCmd.AddCommand(healthCmd)
}
