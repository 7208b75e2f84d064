package clients

import (
	"context"
	"sync"

	"github.com/credisur/credisur/internal/catalog"
)

// Static serves an in-memory client list. Created clients live only as long
// as the process.
type Static struct {
	mu      sync.RWMutex
	clients []catalog.Client
}

// NewStatic copies clients into a Static provider.
func NewStatic(clients []catalog.Client) *Static {
	return &Static{clients: append([]catalog.Client(nil), clients...)}
}

func (s *Static) List(_ context.Context) ([]catalog.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]catalog.Client(nil), s.clients...), nil
}

func (s *Static) Create(_ context.Context, nc NewClient) (catalog.Client, error) {
	if err := nc.Validate(); err != nil {
		return catalog.Client{}, err
	}
	c := nc.build()

	s.mu.Lock()
	s.clients = append(s.clients, c)
	s.mu.Unlock()
	return c, nil
}
