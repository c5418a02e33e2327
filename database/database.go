package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const (
	connectAttempts = 3
	connectDelay    = 2 * time.Second
	pingTimeout     = 5 * time.Second
	maxPoolSize     = 50
)

// Connect sets up the database connection pool, retrying a few times before
// giving up. Exhausting the retries is a fatal startup condition; callers
// must not serve requests without a pool.
func Connect(databaseURL string, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	poolConfig.MaxConns = maxPoolSize

	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
			err = pool.Ping(ctx)
			cancel()
			if err == nil {
				log.Info().Str("database", poolConfig.ConnConfig.Database).Msg("✅ Successfully connected to the database")
				return pool, nil
			}
			pool.Close()
		}

		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt).Int("retries", connectAttempts).Msg("⚠️ Database connection failed")
		if attempt < connectAttempts {
			time.Sleep(connectDelay)
		}
	}

	return nil, fmt.Errorf("could not connect to database after %d attempts: %w", connectAttempts, lastErr)
}
