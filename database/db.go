package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

// PoolOptions tunes the connection pool. Zero values keep the serverless
// friendly defaults.
type PoolOptions struct {
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// Connect opens the PostgreSQL database at databaseURL, optimized for
// serverless environments like Neon by not holding idle connections.
func Connect(ctx context.Context, log zerolog.Logger, databaseURL string, opts PoolOptions) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database url not set")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	// Verify connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		log.Warn().Err(err).Msg("database ping failed, proceeding carefully")
	}

	// Disable idle connections to avoid holding on to suspended compute
	db.SetMaxIdleConns(0)
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	} else {
		db.SetMaxOpenConns(10)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	log.Info().Msg("connected to PostgreSQL")
	return db, nil
}
