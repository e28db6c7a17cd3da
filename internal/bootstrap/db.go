package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/crowdsourcing/surveyadmin/config"
	"github.com/crowdsourcing/surveyadmin/internal/storage/postgres"
)

const connectTimeout = 5 * time.Second

func OpenDB(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	if cfg == nil || cfg.Host == "" {
		return nil, fmt.Errorf("DB_HOST is not set")
	}

	cctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	db, err := postgres.NewConnection(cctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	return db, nil
}
