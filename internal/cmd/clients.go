package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/credisur/credisur/internal/catalog"
	"github.com/credisur/credisur/internal/clients"
	"github.com/credisur/credisur/internal/config"
	"github.com/credisur/credisur/internal/tui/styles"
	"github.com/credisur/credisur/internal/wizard"
)

// --- clients (list) ---

var (
	clientsQuery string
	clientsTier  string
	clientsJSON  bool
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "List clients",
	Long: `List the clients available to the wizard.

Clients come from the configured source (static, file or mysql). When the
source cannot be reached the static catalog is shown instead and a notice
is printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tier, ok := catalog.ParseTier(clientsTier)
		if !ok {
			return fmt.Errorf("unknown tier %q", clientsTier)
		}

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
		list := catalog.FilterClients(listing.Clients, clientsQuery, tier)

		if clientsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		}

		fmt.Println(styles.Title.Render("Clients"))
		fmt.Println()
		if listing.Offline {
			fmt.Println(styles.Warn("  Client source unavailable, showing the static catalog: " + listing.Err.Error()))
			fmt.Println()
		}
		if len(list) == 0 {
			fmt.Println(styles.Dim("  No clients match."))
			return nil
		}

		fmt.Printf("  %s  %s  %s  %s  %s\n",
			styles.TableHeader.Width(14).Render("ID"),
			styles.TableHeader.Width(30).Render("NAME"),
			styles.TableHeader.Width(12).Render("DNI"),
			styles.TableHeader.Width(12).Render("TIER"),
			styles.TableHeader.Width(14).Render("CEILING"),
		)
		fmt.Println(styles.Divider(90))

		for i, c := range list {
			row := styles.TableRow(i%2 == 0, false)
			fmt.Printf("  %s  %s  %s  %s  %s\n",
				row.Width(14).Render(c.ID),
				row.Width(30).Render(styles.TruncateWithEllipsis(c.FullName(), 28)),
				styles.Dim(fmt.Sprintf("%-12s", c.NationalID)),
				styles.PadRight(styles.TierBadge(string(c.RiskTier)), 12),
				styles.Gold(fmt.Sprintf("%14s", wizard.FormatAmount(c.CreditCeiling))),
			)
		}
		fmt.Println()
		fmt.Println(styles.Dim(fmt.Sprintf("  %d of %d clients", len(list), len(listing.Clients))))
		return nil
	},
}

// --- clients add ---

var (
	addGiven   string
	addSurname string
	addDNI     string
	addPhone   string
	addEmail   string
	addTier    string
	addCeiling string
)

var clientsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a client in the configured source",
	RunE: func(cmd *cobra.Command, args []string) error {
		tier, ok := catalog.ParseTier(addTier)
		if !ok || tier == catalog.TierAll {
			return fmt.Errorf("unknown tier %q", addTier)
		}
		ceiling, err := wizard.ParseAmount(addCeiling)
		if err != nil {
			return err
		}

		e, err := loadEnv(false)
		if err != nil {
			return err
		}
		defer e.close()

		ctx, cancel := signalContext()
		defer cancel()

		provider, _, closeProvider, err := e.provider()
		if err != nil {
			return err
		}
		defer closeProvider()

		c, err := provider.Create(ctx, clients.NewClient{
			GivenNames:    addGiven,
			Surnames:      addSurname,
			NationalID:    addDNI,
			Phone:         addPhone,
			Email:         addEmail,
			RiskTier:      tier,
			CreditCeiling: ceiling,
		})
		if err != nil {
			return fmt.Errorf("creating client: %w", err)
		}

		fmt.Println(styles.Green("Created client") + " " + styles.Value.Render(c.ID) + "  " + c.FullName())
		if e.cfg.Clients.Source == config.SourceStatic {
			fmt.Println(styles.Dim("  The static source keeps new clients in memory only."))
		}
		return nil
	},
}

// --- clients import ---

var clientsImportCmd = &cobra.Command{
	Use:   "import <clients.json>",
	Short: "Create every client of a JSON catalog in the configured source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := catalog.LoadClients(args[0])
		if err != nil {
			return err
		}

		e, err := loadEnv(false)
		if err != nil {
			return err
		}
		defer e.close()

		ctx, cancel := signalContext()
		defer cancel()

		provider, _, closeProvider, err := e.provider()
		if err != nil {
			return err
		}
		defer closeProvider()

		bar := progressbar.Default(int64(len(list)), "importing clients")
		var failed int
		for _, c := range list {
			if ctx.Err() != nil {
				break
			}
			if _, err := provider.Create(ctx, clients.FromClient(c)); err != nil {
				failed++
				e.logger.Warn("import client failed", zap.String("national_id", c.NationalID), zap.Error(err))
			}
			_ = bar.Add(1)
		}
		_ = bar.Finish()

		fmt.Println()
		imported := len(list) - failed
		fmt.Println(styles.Green(fmt.Sprintf("Imported %d of %d clients", imported, len(list))))
		if failed > 0 {
			fmt.Println(styles.Warn(fmt.Sprintf("  %d failed, see %s", failed, e.paths.LogFile)))
		}
		return ctx.Err()
	},
}

func init() {
	clientsCmd.Flags().StringVarP(&clientsQuery, "query", "q", "", "filter by name or national id")
	clientsCmd.Flags().StringVar(&clientsTier, "tier", "ALL", "filter by risk tier: ALL, GREEN, YELLOW, RED, BLACKLIST")
	clientsCmd.Flags().BoolVar(&clientsJSON, "json", false, "print JSON")

	clientsAddCmd.Flags().StringVar(&addGiven, "given", "", "given names (required)")
	clientsAddCmd.Flags().StringVar(&addSurname, "surnames", "", "surnames (required)")
	clientsAddCmd.Flags().StringVar(&addDNI, "dni", "", "national id (required)")
	clientsAddCmd.Flags().StringVar(&addPhone, "phone", "", "phone number")
	clientsAddCmd.Flags().StringVar(&addEmail, "email", "", "email address")
	clientsAddCmd.Flags().StringVar(&addTier, "tier", "GREEN", "risk tier")
	clientsAddCmd.Flags().StringVar(&addCeiling, "ceiling", "0", "credit ceiling")

	clientsCmd.AddCommand(clientsAddCmd)
	clientsCmd.AddCommand(clientsImportCmd)
	rootCmd.AddCommand(clientsCmd)
}
