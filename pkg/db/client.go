package db

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/angelmondragon/autoparts-storefront/pkg/config"
	"github.com/angelmondragon/autoparts-storefront/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Client owns the GORM handle backing the SQL cart store.
type Client struct {
	conn *gorm.DB
	sql  *sql.DB
}

// New opens the configured SQL store and verifies it answers a ping.
func New(ctx context.Context, cfg config.DBConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("database DSN is required")
	}

	conn, err := gorm.Open(dialectorFor(cfg), &gorm.Config{
		Logger:                 gormlogger.New(log.New(io.Discard, "", 0), gormlogger.Config{LogLevel: gormlogger.Silent}),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName(cfg), err)
	}
	handle, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("sql handle: %w", err)
	}
	tune(handle, cfg)

	if err := handle.PingContext(ctx); err != nil {
		_ = handle.Close()
		return nil, fmt.Errorf("ping %s: %w", driverName(cfg), err)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"db_driver":    driverName(cfg),
		"db_in_memory": isMemoryDSN(cfg),
	}), "database connection established")

	return &Client{conn: conn, sql: handle}, nil
}

func dialectorFor(cfg config.DBConfig) gorm.Dialector {
	if cfg.IsSQLite() {
		return sqlite.Open(cfg.DSN)
	}
	return postgres.New(postgres.Config{DSN: cfg.DSN, PreferSimpleProtocol: true})
}

// tune applies pool limits. An in-memory SQLite database exists per connection,
// so it is pinned to a single connection that never expires.
func tune(handle *sql.DB, cfg config.DBConfig) {
	if isMemoryDSN(cfg) {
		handle.SetMaxOpenConns(1)
		handle.SetMaxIdleConns(1)
		handle.SetConnMaxLifetime(0)
		handle.SetConnMaxIdleTime(0)
		return
	}
	if cfg.MaxOpenConns > 0 {
		handle.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		handle.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		handle.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		handle.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
}

func isMemoryDSN(cfg config.DBConfig) bool {
	return cfg.IsSQLite() && strings.Contains(cfg.DSN, ":memory:")
}

func driverName(cfg config.DBConfig) string {
	if cfg.IsSQLite() {
		return config.DBDriverSQLite
	}
	return config.DBDriverPostgres
}

// Dialect returns the goose dialect matching the configured driver.
func Dialect(cfg config.DBConfig) string {
	if cfg.IsSQLite() {
		return "sqlite3"
	}
	return "postgres"
}

func (c *Client) DB() *gorm.DB { return c.conn }

// SQL exposes the pooled database/sql handle for goose.
func (c *Client) SQL() *sql.DB { return c.sql }

// Ping backs the readiness check.
func (c *Client) Ping(ctx context.Context) error {
	return c.sql.PingContext(ctx)
}

func (c *Client) Close() error {
	return c.sql.Close()
}
