package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/credisur/credisur/internal/config"
	"github.com/credisur/credisur/internal/tui/styles"
)

// --- config (parent) ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `View and manage CrediSur configuration.

When run without subcommands, displays the effective configuration: the
config file merged with CREDISUR_* environment overrides and defaults.

Subcommands:
  validate   Check the configuration and list every problem
  init       Write a credisur.json with the defaults`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, paths, err := readConfig()
		if err != nil {
			return err
		}

		fmt.Println(styles.Title.Render("Configuration"))
		fmt.Println()

		used := paths.Config
		if _, err := os.Stat(used); err != nil {
			used = styles.Dim("(none, using defaults)")
		}
		fmt.Println(styles.Label.Render("FILE") + "      " + styles.Value.Render(used))
		fmt.Println(styles.Label.Render("ROOT") + "      " + styles.Value.Render(paths.Root))
		fmt.Println()

		fmt.Println(styles.Divider(50))
		fmt.Println()

		fmt.Println(styles.Subtitle.Render("Financing"))
		fmt.Println(styles.Label.Render("  RULE") + "      " + styles.Value.Render(cfg.Financing.Rule))
		fmt.Println(styles.Label.Render("  MARKUP") + "    " + styles.Value.Render(fmt.Sprintf("%.2f%% / month", cfg.Financing.MonthlyMarkup*100)))
		fmt.Println(styles.Label.Render("  TERMS") + "     " + styles.Value.Render(joinInts(cfg.Financing.MarkupTerms, ", ")))
		fmt.Println(styles.Label.Render("  DERIVED") + "   " + styles.Value.Render(strings.Join(cfg.Financing.DerivedFrequencies, ", ")))
		fmt.Println()

		fmt.Println(styles.Subtitle.Render("Wizard"))
		term := "rule default"
		if cfg.Wizard.DefaultTerm > 0 {
			term = fmt.Sprint(cfg.Wizard.DefaultTerm)
		}
		fmt.Println(styles.Label.Render("  TERM") + "      " + styles.Value.Render(term))
		fmt.Println(styles.Label.Render("  FREQUENCY") + " " + styles.Value.Render(cfg.Wizard.DefaultFrequency))
		fmt.Println(styles.Label.Render("  DELAY") + "     " + styles.Value.Render(cfg.Wizard.TransitionDelay.String()))
		fmt.Println(styles.Label.Render("  REDIRECT") + "  " + styles.Value.Render(cfg.Wizard.RedirectPath))
		fmt.Println()

		fmt.Println(styles.Subtitle.Render("Catalog"))
		fmt.Println(styles.Label.Render("  CLIENTS") + "   " + styles.Value.Render(orSeeds(paths.ClientsFile)))
		fmt.Println(styles.Label.Render("  ARTICLES") + "  " + styles.Value.Render(orSeeds(paths.ArticlesFile)))
		fmt.Println(styles.Label.Render("  WATCH") + "     " + styles.Value.Render(fmt.Sprint(cfg.Catalog.Watch)))
		fmt.Println()

		fmt.Println(styles.Subtitle.Render("Clients"))
		fmt.Println(styles.Label.Render("  SOURCE") + "    " + styles.Value.Render(cfg.Clients.Source))
		switch cfg.Clients.Source {
		case config.SourceFile:
			fmt.Println(styles.Label.Render("  STORE") + "     " + styles.Value.Render(paths.ClientsStore))
		case config.SourceMySQL:
			fmt.Println(styles.Label.Render("  DSN") + "       " + styles.Value.Render(maskSecret(cfg.Clients.MySQLDSN)))
		}
		if cfg.Cache.RedisAddr != "" {
			fmt.Println(styles.Label.Render("  CACHE") + "     " + styles.Value.Render(cfg.Cache.RedisAddr+" ttl "+cfg.Cache.TTL.String()))
		}
		fmt.Println()

		fmt.Println(styles.Subtitle.Render("Notifications"))
		if cfg.Notify.SlackWebhookURL == "" {
			fmt.Println("  " + styles.Dim("disabled"))
		} else {
			fmt.Println(styles.Label.Render("  SLACK") + "     " + styles.Value.Render(maskSecret(cfg.Notify.SlackWebhookURL)))
			if cfg.Notify.Channel != "" {
				fmt.Println(styles.Label.Render("  CHANNEL") + "   " + styles.Value.Render(cfg.Notify.Channel))
			}
		}
		fmt.Println()

		fmt.Println(styles.Subtitle.Render("Logging"))
		fmt.Println(styles.Label.Render("  LEVEL") + "     " + styles.Value.Render(cfg.Log.Level))
		fmt.Println(styles.Label.Render("  FORMAT") + "    " + styles.Value.Render(cfg.Log.Format))
		fmt.Println(styles.Label.Render("  FILE") + "      " + styles.Value.Render(paths.LogFile))

		return nil
	},
}

func orSeeds(path string) string {
	if path == "" {
		return "built-in seeds"
	}
	return path
}

// maskSecret keeps the first dozen characters of a DSN or webhook URL.
func maskSecret(s string) string {
	const keep = 12
	if len(s) <= keep {
		return strings.Repeat("*", len(s))
	}
	return s[:keep] + strings.Repeat("*", 8)
}

// --- config validate ---

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := readConfig()
		if err != nil {
			return err
		}

		errs := config.Validate(cfg)
		if len(errs) == 0 {
			fmt.Println(styles.Green("Configuration is valid"))
			return nil
		}

		fmt.Println(styles.Title.Render("Configuration Problems"))
		fmt.Println()
		for _, ve := range errs {
			fmt.Printf("  %s  %s  %s\n",
				styles.Red("x"),
				styles.Bold(fmt.Sprintf("%-28s", ve.Field)),
				styles.Dim(ve.Message),
			)
		}
		fmt.Println()
		return fmt.Errorf("%d configuration problem(s)", len(errs))
	},
}

// --- config init ---

var configInitForce bool

var configInitCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a credisur.json with the defaults",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		target := filepath.Join(dir, config.FileName)
		if _, err := os.Stat(target); err == nil && !configInitForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", target)
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		path, err := config.Save(config.Default(), dir)
		if err != nil {
			return err
		}

		fmt.Println(styles.Green("Wrote") + " " + styles.Value.Render(path))
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing file")

	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
