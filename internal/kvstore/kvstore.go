package kvstore

import (
	"fmt"
	"io"
	"strings"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/database"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// New builds the Store selected by cfg.Store.Backend. The returned closer
// releases backend resources and is never nil.
func New(cfg *config.Config, logger *zap.Logger) (Store, io.Closer, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	switch backend {
	case "", "rest":
		return NewRestClient(&cfg.Store, logger), nopCloser{}, nil
	case "redis":
		s := NewRedisStore(&redis.Options{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})
		return s, s, nil
	case "sqlite", "postgres":
		dbCfg := cfg.Database
		dbCfg.Driver = backend
		db, err := database.NewDatabase(&dbCfg)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get sql handle: %w", err)
		}
		return NewSQLStore(db), sqlDB, nil
	case "memory":
		logger.Warn("Using in-memory store, data will not survive a restart")
		return NewMemoryStore(), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
