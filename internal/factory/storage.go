// Package factory builds the concrete store selected by configuration.
package factory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/waybook/waybook/internal/config"
	"github.com/waybook/waybook/internal/store"
	"github.com/waybook/waybook/internal/store/postgres"
	"github.com/waybook/waybook/internal/store/sqlite"
)

// NewStore opens the backend named by cfg.DBDriver. The caller owns the
// returned store and must Close it.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	switch cfg.DBDriver {
	case "sqlite":
		log.Debug().Str("path", cfg.SQLitePath).Msg("opening sqlite store")
		return sqlite.New(cfg.SQLitePath)
	case "postgres":
		log.Debug().Msg("opening postgres store")
		return postgres.New(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}
