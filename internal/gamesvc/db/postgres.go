package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pingTimeout = 5 * time.Second
	maxConns    = 10
)

// Config parses dsn, tags the connections with appName and caps the pool size.
func Config(dsn, appName string) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres url: %w", err)
	}
	if appName != "" {
		cfg.ConnConfig.RuntimeParams["application_name"] = appName
	}
	if cfg.MaxConns > maxConns {
		cfg.MaxConns = maxConns
	}
	return cfg, nil
}

// Connect opens a pool and pings it. The caller closes the pool.
func Connect(ctx context.Context, dsn, appName string) (*pgxpool.Pool, error) {
	cfg, err := Config(dsn, appName)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return pool, nil
}
