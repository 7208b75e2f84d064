package clients

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/credisur/credisur/internal/catalog"
	"github.com/credisur/credisur/internal/config"
)

// Open builds the provider selected by cfg.Clients.Source, wrapped in the
// Redis cache when one is configured. seed backs the static source. The
// returned func releases connections.
func Open(cfg *config.Config, paths *config.Paths, seed []catalog.Client, logger *zap.Logger) (Provider, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var (
		p       Provider
		closers []func() error
	)

	switch cfg.Clients.Source {
	case config.SourceStatic, "":
		p = NewStatic(seed)
	case config.SourceFile:
		fs, err := NewFileStore(paths.ClientsStore, logger.Named("clients.file"))
		if err != nil {
			return nil, nil, err
		}
		p = fs
	case config.SourceMySQL:
		db, _, err := OpenDB(cfg.Clients.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("opening mysql: %w", err)
		}
		m, err := NewMySQL(db, DefaultTable, logger.Named("clients.mysql"))
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		p = m
		closers = append(closers, m.Close)
	default:
		return nil, nil, fmt.Errorf("unknown clients source %q", cfg.Clients.Source)
	}

	cached := cfg.Cache.RedisAddr != "" && cfg.Clients.Source != config.SourceStatic
	if cached {
		rc := NewRedisCache(cfg.Cache.RedisAddr)
		p = NewCachedProvider(p, rc, cfg.Cache.TTL, logger.Named("clients.cache"))
		closers = append(closers, rc.Close)
	}

	logger.Debug("client provider ready",
		zap.String("source", cfg.Clients.Source),
		zap.Bool("cached", cached),
	)

	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("closing client provider", zap.Error(err))
			}
		}
	}
	return p, closeAll, nil
}
