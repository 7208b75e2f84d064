package catalog

import "strings"

// RiskTier is the collections risk classification of a client.
type RiskTier string

const (
	TierGreen     RiskTier = "GREEN"
	TierYellow    RiskTier = "YELLOW"
	TierRed       RiskTier = "RED"
	TierBlacklist RiskTier = "BLACKLIST"
)

// TierAll is the synthetic filter value that matches every tier.
const TierAll RiskTier = "ALL"

// AllTiers returns every risk tier, best to worst.
func AllTiers() []RiskTier {
	return []RiskTier{TierGreen, TierYellow, TierRed, TierBlacklist}
}

// ParseTier accepts a tier name in any case. Empty input maps to TierAll.
func ParseTier(s string) (RiskTier, bool) {
	t := RiskTier(strings.ToUpper(strings.TrimSpace(s)))
	if t == "" || t == TierAll {
		return TierAll, true
	}
	for _, known := range AllTiers() {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// Frequency is how often an installment falls due.
type Frequency string

const (
	Daily    Frequency = "DAILY"
	Weekly   Frequency = "WEEKLY"
	Biweekly Frequency = "BIWEEKLY"
	Monthly  Frequency = "MONTHLY"
)

// AllFrequencies returns the frequencies from shortest to longest period.
func AllFrequencies() []Frequency {
	return []Frequency{Daily, Weekly, Biweekly, Monthly}
}

// ParseFrequency accepts a frequency name in any case.
func ParseFrequency(s string) (Frequency, bool) {
	f := Frequency(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllFrequencies() {
		if f == known {
			return f, true
		}
	}
	return "", false
}

// Client is an identity and eligibility record.
type Client struct {
	ID            string   `json:"id" mapstructure:"id"`
	GivenNames    string   `json:"givenNames" mapstructure:"givenNames"`
	Surnames      string   `json:"surnames" mapstructure:"surnames"`
	NationalID    string   `json:"nationalId" mapstructure:"nationalId"`
	Phone         string   `json:"phone" mapstructure:"phone"`
	Email         string   `json:"email" mapstructure:"email"`
	RiskTier      RiskTier `json:"riskTier" mapstructure:"riskTier"`
	CreditCeiling int64    `json:"creditCeiling" mapstructure:"creditCeiling"`
}

// FullName joins given names and surnames.
func (c Client) FullName() string {
	return strings.TrimSpace(c.GivenNames + " " + c.Surnames)
}

// InstallmentOption is one row of an article's precomputed pricing table.
type InstallmentOption struct {
	Installments int       `json:"installments"`
	Frequency    Frequency `json:"frequency"`
	TotalPrice   int64     `json:"totalPrice"`
	PerPeriod    int64     `json:"perPeriod"`
}

// Article is a financeable good. Prices are whole currency units.
type Article struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Category  string              `json:"category"`
	CashPrice int64               `json:"cashPrice"`
	Options   []InstallmentOption `json:"options,omitempty"`
}

// InstallmentCounts returns the distinct installment counts the article
// offers, in table order.
func (a Article) InstallmentCounts() []int {
	seen := make(map[int]bool, len(a.Options))
	var counts []int
	for _, o := range a.Options {
		if seen[o.Installments] {
			continue
		}
		seen[o.Installments] = true
		counts = append(counts, o.Installments)
	}
	return counts
}

// Option looks up the table row for an installment count and frequency.
func (a Article) Option(installments int, freq Frequency) (InstallmentOption, bool) {
	for _, o := range a.Options {
		if o.Installments == installments && o.Frequency == freq {
			return o, true
		}
	}
	return InstallmentOption{}, false
}

// FindClient returns the client with the given id.
func FindClient(clients []Client, id string) (Client, bool) {
	for _, c := range clients {
		if c.ID == id {
			return c, true
		}
	}
	return Client{}, false
}

// FindArticle returns the article with the given id.
func FindArticle(articles []Article, id string) (Article, bool) {
	for _, a := range articles {
		if a.ID == id {
			return a, true
		}
	}
	return Article{}, false
}
