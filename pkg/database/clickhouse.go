package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	schema "github.com/ganeshsabale-99/DMP-Project/pkg/database/sql"
	"github.com/ganeshsabale-99/DMP-Project/pkg/logging"
)

// ClickHouseConn is a ClickHouse handle behind the database/sql interface
type ClickHouseConn = *sql.DB

// ClickHouseConfig holds ClickHouse connection settings
type ClickHouseConfig struct {
	Addr        []string
	Database    string
	Username    string
	Password    string
	DialTimeout time.Duration
	Debug       bool
}

// DefaultClickHouseConfig returns settings for a local single-node server
func DefaultClickHouseConfig() ClickHouseConfig {
	return ClickHouseConfig{
		Addr:        []string{"127.0.0.1:9000"},
		Database:    "default",
		Username:    "default",
		DialTimeout: 5 * time.Second,
	}
}

// ConnectClickHouse opens and pings a ClickHouse connection
func ConnectClickHouse(ctx context.Context, cfg ClickHouseConfig, logger logging.Logger) (ClickHouseConn, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: cfg.Addr,
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout: cfg.DialTimeout,
		Debug:       cfg.Debug,
	})

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	logger.WithFields(logging.Fields{
		"addr":     cfg.Addr,
		"database": cfg.Database,
	}).Info("Connected to ClickHouse")
	return conn, nil
}

// MigrateClickHouse applies the embedded ClickHouse schema
func MigrateClickHouse(ctx context.Context, db *sql.DB, logger logging.Logger) error {
	return applySchema(ctx, db, schema.ClickHouse, "clickhouse", true, logger)
}
