package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// LoadClients reads a JSON array of clients from path. An empty path yields
// the seed catalog.
func LoadClients(path string) ([]Client, error) {
	if path == "" {
		return SeedClients(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading clients catalog %s: %w", path, err)
	}

	var clients []Client
	if err := json.Unmarshal(data, &clients); err != nil {
		return nil, fmt.Errorf("parsing clients catalog %s: %w", path, err)
	}

	seen := make(map[string]bool, len(clients))
	for i, c := range clients {
		if strings.TrimSpace(c.ID) == "" {
			return nil, fmt.Errorf("clients catalog %s: entry %d has no id", path, i)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("clients catalog %s: duplicate id %q", path, c.ID)
		}
		seen[c.ID] = true
		if c.RiskTier == "" {
			clients[i].RiskTier = TierGreen
		} else if _, ok := ParseTier(string(c.RiskTier)); !ok {
			return nil, fmt.Errorf("clients catalog %s: client %q has unknown risk tier %q", path, c.ID, c.RiskTier)
		}
	}
	return clients, nil
}

// LoadArticles reads a JSON array of articles from path. An empty path yields
// the seed catalog.
func LoadArticles(path string) ([]Article, error) {
	if path == "" {
		return SeedArticles(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading articles catalog %s: %w", path, err)
	}

	var articles []Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("parsing articles catalog %s: %w", path, err)
	}

	if err := ValidateArticles(articles); err != nil {
		return nil, fmt.Errorf("articles catalog %s: %w", path, err)
	}
	return articles, nil
}

// ValidateArticles checks ids, prices and option rows.
func ValidateArticles(articles []Article) error {
	seen := make(map[string]bool, len(articles))
	for i, a := range articles {
		if strings.TrimSpace(a.ID) == "" {
			return fmt.Errorf("entry %d has no id", i)
		}
		if seen[a.ID] {
			return fmt.Errorf("duplicate id %q", a.ID)
		}
		seen[a.ID] = true
		if a.CashPrice < 0 {
			return fmt.Errorf("article %q has negative cash price", a.ID)
		}
		for _, o := range a.Options {
			if o.Installments <= 0 {
				return fmt.Errorf("article %q has an option with %d installments", a.ID, o.Installments)
			}
			if _, ok := ParseFrequency(string(o.Frequency)); !ok {
				return fmt.Errorf("article %q has an option with unknown frequency %q", a.ID, o.Frequency)
			}
			if o.TotalPrice < 0 || o.PerPeriod < 0 {
				return fmt.Errorf("article %q has an option with a negative amount", a.ID)
			}
		}
	}
	return nil
}
