package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/credisur/credisur/internal/catalog"
)

// FileStore keeps one JSON file per client in a directory. Writes go through
// a temp file and a rename so a reader never sees a partial record.
type FileStore struct {
	dir    string
	logger *zap.Logger
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create client store %s: %w", dir, err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

// Dir returns the store directory.
func (s *FileStore) Dir() string { return s.dir }

// List returns every stored client sorted by surname then given names.
// Malformed files are skipped and logged.
func (s *FileStore) List(ctx context.Context) ([]catalog.Client, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read client store %s: %w", s.dir, err)
	}

	var out []catalog.Client
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".tmp-") {
			continue
		}
		c, err := s.readFile(filepath.Join(s.dir, name))
		if err != nil {
			s.logger.Warn("skipping malformed client file", zap.String("file", name), zap.Error(err))
			continue
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Surnames != out[j].Surnames {
			return out[i].Surnames < out[j].Surnames
		}
		return out[i].GivenNames < out[j].GivenNames
	})
	return out, nil
}

// Create validates nc, assigns an id and writes it atomically.
func (s *FileStore) Create(_ context.Context, nc NewClient) (catalog.Client, error) {
	if err := nc.Validate(); err != nil {
		return catalog.Client{}, err
	}
	c := nc.build()
	if err := s.Put(c); err != nil {
		return catalog.Client{}, err
	}
	s.logger.Info("client stored", zap.String("client_id", c.ID), zap.String("dir", s.dir))
	return c, nil
}

// Put writes c under its id, replacing any existing record.
func (s *FileStore) Put(c catalog.Client) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal client: %w", err)
	}

	tmpFile, err := os.CreateTemp(s.dir, ".tmp-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	finalPath := filepath.Join(s.dir, c.ID+".json")
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename to final path: %w", err)
	}
	return nil
}

func (s *FileStore) readFile(path string) (catalog.Client, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return catalog.Client{}, err
	}
	var c catalog.Client
	if err := json.Unmarshal(data, &c); err != nil {
		return catalog.Client{}, err
	}
	if c.ID == "" {
		return catalog.Client{}, fmt.Errorf("missing id")
	}
	return c, nil
}
