package clients

import (
	"context"

	"go.uber.org/zap"

	"github.com/credisur/credisur/internal/catalog"
)

// Listing is the result of listing with a fallback.
type Listing struct {
	Clients []catalog.Client
	// Offline is set when the provider failed and Clients is the fallback.
	Offline bool
	// Err is the provider failure behind an offline listing.
	Err error
}

// ListWithFallback lists from p and substitutes fallback if that fails. The
// failure is logged and reported on the Listing, never returned.
func ListWithFallback(ctx context.Context, p Provider, fallback []catalog.Client, logger *zap.Logger) Listing {
	if logger == nil {
		logger = zap.NewNop()
	}
	list, err := p.List(ctx)
	if err != nil {
		logger.Warn("client provider failed, using static catalog", zap.Error(err))
		return Listing{
			Clients: append([]catalog.Client(nil), fallback...),
			Offline: true,
			Err:     err,
		}
	}
	return Listing{Clients: list}
}
