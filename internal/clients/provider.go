// Package clients lists and creates the clients a credit can be issued to.
package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/credisur/credisur/internal/catalog"
)

// Provider is the client data source used by the wizard.
type Provider interface {
	// List returns every client. Callers fall back to a static list when it
	// fails.
	List(ctx context.Context) ([]catalog.Client, error)
	// Create stores a new client and returns it with its assigned id.
	Create(ctx context.Context, nc NewClient) (catalog.Client, error)
}

// NewClient holds the fields captured by the new-client form.
type NewClient struct {
	GivenNames    string
	Surnames      string
	NationalID    string
	Phone         string
	Email         string
	RiskTier      catalog.RiskTier
	CreditCeiling int64
}

// ErrInvalidClient is returned when a new client is missing required fields.
var ErrInvalidClient = errors.New("invalid client")

// Validate checks the fields every provider requires.
func (nc NewClient) Validate() error {
	var missing []string
	if strings.TrimSpace(nc.GivenNames) == "" {
		missing = append(missing, "given names")
	}
	if strings.TrimSpace(nc.Surnames) == "" {
		missing = append(missing, "surnames")
	}
	if strings.TrimSpace(nc.NationalID) == "" {
		missing = append(missing, "national id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidClient, strings.Join(missing, ", "))
	}
	if nc.CreditCeiling < 0 {
		return fmt.Errorf("%w: credit ceiling cannot be negative", ErrInvalidClient)
	}
	if nc.RiskTier != "" {
		if t, ok := catalog.ParseTier(string(nc.RiskTier)); !ok || t == catalog.TierAll {
			return fmt.Errorf("%w: unknown risk tier %q", ErrInvalidClient, nc.RiskTier)
		}
	}
	return nil
}

// build assigns an id and normalizes the new client. New clients start in
// the GREEN tier unless one is given.
func (nc NewClient) build() catalog.Client {
	tier := catalog.TierGreen
	if nc.RiskTier != "" {
		tier, _ = catalog.ParseTier(string(nc.RiskTier))
	}
	return catalog.Client{
		ID:            "CLI-" + strings.ToUpper(uuid.NewString()[:8]),
		GivenNames:    strings.TrimSpace(nc.GivenNames),
		Surnames:      strings.TrimSpace(nc.Surnames),
		NationalID:    strings.TrimSpace(nc.NationalID),
		Phone:         strings.TrimSpace(nc.Phone),
		Email:         strings.TrimSpace(nc.Email),
		RiskTier:      tier,
		CreditCeiling: nc.CreditCeiling,
	}
}

// FromClient is the inverse of build, used when importing existing records.
func FromClient(c catalog.Client) NewClient {
	return NewClient{
		GivenNames:    c.GivenNames,
		Surnames:      c.Surnames,
		NationalID:    c.NationalID,
		Phone:         c.Phone,
		Email:         c.Email,
		RiskTier:      c.RiskTier,
		CreditCeiling: c.CreditCeiling,
	}
}
