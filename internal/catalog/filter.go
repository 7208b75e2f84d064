package catalog

import (
	"sort"
	"strings"
)

// CategoryAll is the synthetic category that matches every article.
const CategoryAll = "ALL"

// PriceOrder controls how FilterArticles orders its result.
type PriceOrder int

const (
	OrderNone PriceOrder = iota
	OrderPriceAsc
	OrderPriceDesc
)

// String returns the flag/label form of the order.
func (o PriceOrder) String() string {
	switch o {
	case OrderPriceAsc:
		return "asc"
	case OrderPriceDesc:
		return "desc"
	default:
		return "none"
	}
}

// Next cycles none -> asc -> desc -> none.
func (o PriceOrder) Next() PriceOrder {
	return (o + 1) % 3
}

// ParsePriceOrder maps "", "none", "asc" and "desc" to a PriceOrder.
func ParsePriceOrder(s string) (PriceOrder, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return OrderNone, true
	case "asc":
		return OrderPriceAsc, true
	case "desc":
		return OrderPriceDesc, true
	default:
		return OrderNone, false
	}
}

// FilterClients returns the clients whose names or national id contain query
// (case-insensitive) and whose tier matches. TierAll or "" disables the tier
// filter.
func FilterClients(clients []Client, query string, tier RiskTier) []Client {
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]Client, 0, len(clients))
	for _, c := range clients {
		if tier != "" && tier != TierAll && c.RiskTier != tier {
			continue
		}
		if q != "" && !clientMatches(c, q) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func clientMatches(c Client, q string) bool {
	fields := []string{c.GivenNames, c.Surnames, c.FullName(), c.NationalID}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// FilterArticles returns the articles whose name contains query and whose
// category matches, optionally ordered by cash price. The input slice is
// never reordered.
func FilterArticles(articles []Article, query, category string, order PriceOrder) []Article {
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		if category != "" && category != CategoryAll && a.Category != category {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(a.Name), q) {
			continue
		}
		out = append(out, a)
	}

	switch order {
	case OrderPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CashPrice < out[j].CashPrice })
	case OrderPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CashPrice > out[j].CashPrice })
	}
	return out
}

// Categories returns CategoryAll followed by each distinct article category
// in first-seen order.
func Categories(articles []Article) []string {
	cats := []string{CategoryAll}
	seen := make(map[string]bool)
	for _, a := range articles {
		if a.Category == "" || seen[a.Category] {
			continue
		}
		seen[a.Category] = true
		cats = append(cats, a.Category)
	}
	return cats
}
