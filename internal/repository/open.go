package repository

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"joyeriapos/internal/config"
	"joyeriapos/internal/infra"
)

// OpenDocumentStore builds the backend named by STORE_DRIVER. rdb is the
// shared client and must be non-nil for the redis driver.
func OpenDocumentStore(cfg *config.Config, rdb *redis.Client) (DocumentStore, error) {
	switch cfg.StoreDriver {
	case "file":
		return NewFileDocumentStore(cfg.DataDir)
	case "postgres":
		db, err := infra.NewDatabase(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return NewPostgresDocumentStore(db)
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("STORE_DRIVER=redis needs a redis client")
		}
		return NewRedisDocumentStore(rdb), nil
	case "memory":
		return NewMemoryDocumentStore(), nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
