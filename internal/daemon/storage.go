package daemon

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/memory/v2"
	"github.com/gofiber/storage/mysql/v2"
	"github.com/gofiber/storage/postgres/v3"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/config"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db/dsn"
)

const defaultStorageTable = "kv_store"

// NewStorage returns the key value backend of sessions, revocation and OIDC states.
// The sql engines reuse the database credentials.
func NewStorage(cfg *config.Config) (fiber.Storage, error) {
	table := cfg.Storage.Table
	if table == "" {
		table = defaultStorageTable
	}

	switch cfg.Storage.Engine {
	case config.StorageMemory, "":
		return memory.New(memory.Config{GCInterval: cfg.Storage.GCInterval}), nil
	case config.StorageMySQL:
		return mysql.New(mysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         table,
			GCInterval:    cfg.Storage.GCInterval,
		}), nil
	case config.StoragePostgres:
		return postgres.New(postgres.Config{
			ConnectionURI: dsn.PostgresURI(cfg),
			Table:         table,
			GCInterval:    cfg.Storage.GCInterval,
		}), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnsupportedStorage, cfg.Storage.Engine)
	}
}
