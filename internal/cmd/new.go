package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/credisur/credisur/internal/catalog"
	"github.com/credisur/credisur/internal/clients"
	"github.com/credisur/credisur/internal/config"
	"github.com/credisur/credisur/internal/notify"
	"github.com/credisur/credisur/internal/tui/styles"
	"github.com/credisur/credisur/internal/tui/views"
	"github.com/credisur/credisur/internal/wizard"
)

var (
	newClientID string
	newNoWatch  bool
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new installment credit",
	Long: `Launch the credit wizard.

The wizard guides you through:
  1. Client    -- search and select a client, or create one with n
  2. Articles  -- filter the catalog and build the cart
  3. Terms     -- term, frequency, down payment, start date, notes
  4. Confirm   -- review the quote and schedule, then confirm

Nothing is stored; the confirmed credit is printed and you are sent to the
credits page.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(false)
		if err != nil {
			return err
		}
		defer e.close()

		ctx, cancel := signalContext()
		defer cancel()

		provider, seed, closeProvider, err := e.provider()
		if err != nil {
			return err
		}
		defer closeProvider()

		listing := clients.ListWithFallback(ctx, provider, seed, e.logger)

		articles, err := e.articles()
		if err != nil {
			return err
		}
		rule, err := e.rule()
		if err != nil {
			return err
		}

		freq, _ := catalog.ParseFrequency(e.cfg.Wizard.DefaultFrequency)
		session := wizard.NewSession(listing.Clients, articles, rule, wizard.Options{
			DefaultTerm:      e.cfg.Wizard.DefaultTerm,
			DefaultFrequency: freq,
			RedirectPath:     e.cfg.Wizard.RedirectPath,
			Logger:           e.logger.Named("wizard"),
		})
		if newClientID != "" {
			if err := session.SelectClient(newClientID); err != nil {
				return err
			}
		}

		opts := views.CreditWizardOptions{
			Session:         session,
			Provider:        provider,
			Notifier:        notify.New(e.cfg.Notify.SlackWebhookURL, e.cfg.Notify.Channel, e.logger.Named("notify")),
			Logger:          e.logger,
			TransitionDelay: e.cfg.Wizard.TransitionDelay,
			Offline:         listing.Offline,
			PrepareArticles: e.prepareArticles,
		}
		if e.cfg.Catalog.Watch && !newNoWatch {
			if e.cfg.Clients.Source == config.SourceStatic {
				opts.ClientsFile = e.paths.ClientsFile
			}
			opts.ArticlesFile = e.paths.ArticlesFile
		}

		receipt, ok, err := views.RunCreditWizard(ctx, opts)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println(styles.Dim("Wizard closed without confirming a credit."))
			return nil
		}

		e.logger.Info("redirecting",
			zap.String("receipt_id", receipt.ID),
			zap.String("to", receipt.RedirectTo),
		)
		fmt.Println(styles.Green("Credit confirmed") + "  " + styles.Dim(receipt.ID))
		fmt.Println(styles.Label.Render("CLIENT ") + "  " + styles.Value.Render(receipt.Client.FullName()))
		fmt.Println(styles.Label.Render("BALANCE") + "  " + styles.Amount.Render(wizard.FormatAmount(receipt.Quote.BalanceToFinance)))
		fmt.Println(styles.Label.Render("PLAN   ") + "  " + styles.Value.Render(fmt.Sprintf("%d × %s",
			receipt.Quote.Periods, wizard.FormatAmount(receipt.Quote.PerPeriodPayment))))
		fmt.Println()
		fmt.Println("→ " + styles.Emerald(receipt.RedirectTo))
		return nil
	},
}

func init() {
	newCmd.Flags().StringVar(&newClientID, "client", "", "preselect the client with this id")
	newCmd.Flags().BoolVar(&newNoWatch, "no-watch", false, "do not reload catalog files while the wizard runs")
	rootCmd.AddCommand(newCmd)
}
