// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"nexus-talent/internal/common/config"
	apperrors "nexus-talent/internal/common/errors"

	_ "github.com/lib/pq"
)

// PostgresClient holds the pool used by the analysis history store.
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres opens the pool. sql.Open does not dial; Ping does.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("postgres host is not configured")
	}

	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, apperrors.NewDatabaseConnectionFailedError(err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

func NewPostgresFromDB(db *sql.DB) *PostgresClient {
	return &PostgresClient{DB: db}
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return apperrors.NewDatabaseConnectionFailedError(err)
	}
	return nil
}

// Stats returns pool counters in logger field form.
func (c *PostgresClient) Stats() map[string]interface{} {
	s := c.DB.Stats()
	return map[string]interface{}{
		"openConnections": s.OpenConnections,
		"inUse":           s.InUse,
		"idle":            s.Idle,
		"maxOpen":         s.MaxOpenConnections,
	}
}

func (c *PostgresClient) Close() error {
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
