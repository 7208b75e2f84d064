package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/credisur/credisur/internal/catalog"
	"github.com/credisur/credisur/internal/tui/styles"
	"github.com/credisur/credisur/internal/wizard"
)

var (
	articlesQuery    string
	articlesCategory string
	articlesSort     string
	articlesJSON     bool
)

var articlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "List the article catalog",
	Long: `List the articles available for credit, with the installment
counts each one offers.

Examples:
  credisur articles --category Televisores --sort asc
  credisur articles -q heladera --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		order, ok := catalog.ParsePriceOrder(articlesSort)
		if !ok {
			return fmt.Errorf("unknown sort %q (use none, asc or desc)", articlesSort)
		}

		e, err := loadEnv(false)
		if err != nil {
			return err
		}
		defer e.close()

		all, err := e.articles()
		if err != nil {
			return err
		}

		category, err := matchCategory(all, articlesCategory)
		if err != nil {
			return err
		}
		list := catalog.FilterArticles(all, articlesQuery, category, order)

		if articlesJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		}

		fmt.Println(styles.Title.Render("Articles"))
		fmt.Println()
		if len(list) == 0 {
			fmt.Println(styles.Dim("  No articles match."))
			return nil
		}

		fmt.Printf("  %s  %s  %s  %s  %s\n",
			styles.TableHeader.Width(10).Render("ID"),
			styles.TableHeader.Width(32).Render("NAME"),
			styles.TableHeader.Width(14).Render("CATEGORY"),
			styles.TableHeader.Width(14).Render("CASH"),
			styles.TableHeader.Width(16).Render("INSTALLMENTS"),
		)
		fmt.Println(styles.Divider(96))

		for i, a := range list {
			row := styles.TableRow(i%2 == 0, false)
			fmt.Printf("  %s  %s  %s  %s  %s\n",
				row.Width(10).Render(a.ID),
				row.Width(32).Render(styles.TruncateWithEllipsis(a.Name, 30)),
				styles.Dim(fmt.Sprintf("%-14s", a.Category)),
				styles.Gold(fmt.Sprintf("%14s", wizard.FormatAmount(a.CashPrice))),
				styles.Dim(joinInts(a.InstallmentCounts(), ", ")),
			)
		}
		fmt.Println()
		fmt.Println(styles.Dim(fmt.Sprintf("  %d of %d articles", len(list), len(all))))
		return nil
	},
}

// matchCategory resolves a user-typed category against the catalog,
// ignoring case.
func matchCategory(articles []catalog.Article, name string) (string, error) {
	if name == "" {
		return catalog.CategoryAll, nil
	}
	for _, c := range catalog.Categories(articles) {
		if strings.EqualFold(c, name) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", name)
}

func joinInts(vals []int, sep string) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, sep)
}

func init() {
	articlesCmd.Flags().StringVarP(&articlesQuery, "query", "q", "", "filter by name")
	articlesCmd.Flags().StringVar(&articlesCategory, "category", "", "filter by category")
	articlesCmd.Flags().StringVar(&articlesSort, "sort", "none", "order by cash price: none, asc, desc")
	articlesCmd.Flags().BoolVar(&articlesJSON, "json", false, "print JSON")
	rootCmd.AddCommand(articlesCmd)
}
