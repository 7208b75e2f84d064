package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds all resolved filesystem paths for the project.
type Paths struct {
	Root         string
	Config       string
	ClientsFile  string
	ArticlesFile string
	ClientsStore string
	LogFile      string
}

// DetectProjectRoot walks up from the current working directory looking for a
// directory that contains credisur.json. Returns the absolute path or an
// error if not found.
func DetectProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%s not found in any parent directory", FileName)
		}
		dir = parent
	}
}

// NewPaths resolves every configured path against root.
func NewPaths(root string, cfg *Config) *Paths {
	return &Paths{
		Root:         root,
		Config:       filepath.Join(root, FileName),
		ClientsFile:  Resolve(root, cfg.Catalog.ClientsFile),
		ArticlesFile: Resolve(root, cfg.Catalog.ArticlesFile),
		ClientsStore: Resolve(root, cfg.Clients.StoreDir),
		LogFile:      Resolve(root, cfg.Log.File),
	}
}

// EnsureDirectories creates the directories the configured sources write
// into. Returns the first error encountered, if any.
func EnsureDirectories(p *Paths, cfg *Config) error {
	var dirs []string
	if cfg.Clients.Source == SourceFile && p.ClientsStore != "" {
		dirs = append(dirs, p.ClientsStore)
	}
	if p.LogFile != "" && p.LogFile != "-" {
		dirs = append(dirs, filepath.Dir(p.LogFile))
	}

	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}
	return nil
}
