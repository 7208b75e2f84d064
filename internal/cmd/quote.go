package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/credisur/credisur/internal/catalog"
	"github.com/credisur/credisur/internal/financing"
	"github.com/credisur/credisur/internal/tui/styles"
	"github.com/credisur/credisur/internal/wizard"
)

var (
	quoteArticles  []string
	quoteTerm      int
	quoteFrequency string
	quoteDown      string
	quoteStart     string
	quoteSchedule  bool
	quoteJSON      bool
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price a set of articles without running the wizard",
	Long: `Quote a credit for one or more articles under the configured
financing rule.

Articles are given as ID or ID:QUANTITY. A term that is not offered for the
selection is replaced by the first offered one, as the wizard does.

Examples:
  credisur quote --article ART-002 --term 18 --frequency monthly
  credisur quote --article ART-001:2 --article ART-005 --down 250000 --schedule`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(quoteArticles) == 0 {
			return fmt.Errorf("at least one --article is required")
		}

		e, err := loadEnv(false)
		if err != nil {
			return err
		}
		defer e.close()

		articles, err := e.articles()
		if err != nil {
			return err
		}
		rule, err := e.rule()
		if err != nil {
			return err
		}

		freq, _ := catalog.ParseFrequency(e.cfg.Wizard.DefaultFrequency)
		s := wizard.NewSession(nil, articles, rule, wizard.Options{
			DefaultTerm:      e.cfg.Wizard.DefaultTerm,
			DefaultFrequency: freq,
			Logger:           e.logger.Named("quote"),
		})

		for _, arg := range quoteArticles {
			id, qty, err := parseArticleArg(arg)
			if err != nil {
				return err
			}
			for i := 0; i < qty; i++ {
				if err := s.AddArticleByID(id); err != nil {
					return err
				}
			}
		}

		if quoteFrequency != "" {
			f, ok := catalog.ParseFrequency(quoteFrequency)
			if !ok {
				return fmt.Errorf("unknown frequency %q", quoteFrequency)
			}
			if err := s.SetFrequency(f); err != nil {
				return err
			}
		}
		if quoteTerm > 0 {
			if err := s.SetTerm(quoteTerm); err != nil {
				return fmt.Errorf("%w (offered: %s)", err, joinInts(s.OfferedTerms(), ", "))
			}
			if s.Term() != quoteTerm {
				e.logger.Warn("term not offered, using first offered term",
					zap.Int("requested", quoteTerm),
					zap.Int("term", s.Term()),
					zap.String("offered", joinInts(s.OfferedTerms(), ", ")),
				)
			}
		}
		down, err := wizard.ParseAmount(quoteDown)
		if err != nil {
			return err
		}
		if err := s.SetDownPayment(down); err != nil {
			return err
		}
		if quoteStart != "" {
			t, err := time.ParseInLocation("2006-01-02", quoteStart, time.Local)
			if err != nil {
				return fmt.Errorf("start date must look like 2006-01-02")
			}
			if err := s.SetStartDate(t); err != nil {
				return err
			}
		}

		q := s.Quote()
		schedule := s.Schedule()

		if quoteJSON {
			out := struct {
				Quote    financing.Quote         `json:"quote"`
				Schedule []financing.Installment `json:"schedule,omitempty"`
			}{Quote: q}
			if quoteSchedule {
				out.Schedule = schedule
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		printQuote(q, rule.TermUnit())
		if quoteSchedule {
			printSchedule(schedule)
		}
		return nil
	},
}

// parseArticleArg splits "ART-001:2" into id and quantity.
func parseArticleArg(s string) (string, int, error) {
	id, qtyStr, found := strings.Cut(strings.TrimSpace(s), ":")
	if id == "" {
		return "", 0, fmt.Errorf("empty article in %q", s)
	}
	if !found {
		return id, 1, nil
	}
	qty, err := strconv.Atoi(qtyStr)
	if err != nil || qty < 1 {
		return "", 0, fmt.Errorf("invalid quantity in %q", s)
	}
	return id, qty, nil
}

func printQuote(q financing.Quote, unit string) {
	fmt.Println(styles.Title.Render("Quote"))
	fmt.Println()
	fmt.Printf("  %s  %s\n", styles.Label.Render("RULE     "), styles.Value.Render(q.Rule))
	fmt.Printf("  %s  %s\n", styles.Label.Render("TERM     "), styles.Value.Render(fmt.Sprintf("%d %s", q.Term, unit)))
	fmt.Printf("  %s  %s\n", styles.Label.Render("FREQUENCY"), styles.Value.Render(string(q.Frequency)))
	fmt.Println()

	fmt.Printf("  %s  %s  %s  %s\n",
		styles.TableHeader.Width(30).Render("ARTICLE"),
		styles.TableHeader.Width(5).Render("QTY"),
		styles.TableHeader.Width(14).Render("CASH"),
		styles.TableHeader.Width(14).Render("FINANCED"),
	)
	fmt.Println(styles.Divider(72))
	var fallback bool
	for _, l := range q.Lines {
		name := styles.TruncateWithEllipsis(l.Name, 28)
		if l.Fallback {
			fallback = true
			name += " *"
		}
		fmt.Printf("  %-30s  %5d  %s  %s\n",
			name, l.Quantity,
			fmt.Sprintf("%14s", wizard.FormatAmount(l.LineBase)),
			styles.Gold(fmt.Sprintf("%14s", wizard.FormatAmount(l.LineFinanced))),
		)
	}
	fmt.Println(styles.Divider(72))
	fmt.Println()

	fmt.Printf("  %s  %s\n", styles.Label.Render("CASH TOTAL    "), styles.Value.Render(wizard.FormatAmount(q.TotalBase)))
	fmt.Printf("  %s  %s\n", styles.Label.Render("FINANCED TOTAL"), styles.Value.Render(wizard.FormatAmount(q.TotalFinancedGross)))
	fmt.Printf("  %s  %s\n", styles.Label.Render("DOWN PAYMENT  "), styles.Value.Render(wizard.FormatAmount(q.DownPayment)))
	fmt.Printf("  %s  %s\n", styles.Label.Render("BALANCE       "), styles.Amount.Render(wizard.FormatAmount(q.BalanceToFinance)))
	fmt.Printf("  %s  %s\n", styles.Label.Render("PAYMENTS      "), styles.Amount.Render(
		fmt.Sprintf("%d × %s", q.Periods, wizard.FormatAmount(q.PerPeriodPayment))))

	if fallback {
		fmt.Println()
		fmt.Println(styles.Warn("  * no option for this term and frequency, priced with the article's first option"))
	}
}

func printSchedule(schedule []financing.Installment) {
	fmt.Println()
	fmt.Println(styles.Subtitle.Render("Schedule"))
	for _, inst := range schedule {
		fmt.Printf("  %3d  %s  %s\n",
			inst.Number,
			inst.DueDate.Format("2006-01-02"),
			styles.Gold(fmt.Sprintf("%14s", wizard.FormatAmount(inst.Amount))),
		)
	}
}

func init() {
	quoteCmd.Flags().StringArrayVarP(&quoteArticles, "article", "a", nil, "article id, optionally with :quantity (repeatable)")
	quoteCmd.Flags().IntVar(&quoteTerm, "term", 0, "term (default: the rule's default)")
	quoteCmd.Flags().StringVar(&quoteFrequency, "frequency", "", "DAILY, WEEKLY, BIWEEKLY or MONTHLY")
	quoteCmd.Flags().StringVar(&quoteDown, "down", "0", "down payment")
	quoteCmd.Flags().StringVar(&quoteStart, "start", "", "first due date base, YYYY-MM-DD (default: today)")
	quoteCmd.Flags().BoolVar(&quoteSchedule, "schedule", false, "print the installment schedule")
	quoteCmd.Flags().BoolVar(&quoteJSON, "json", false, "print JSON")
	rootCmd.AddCommand(quoteCmd)
}
