// Package sqlite opens the embedded SQL backend through gorm.
package sqlite

import (
	"context"
	"fmt"
	"time"

	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Config holds the SQLite connection settings.
type Config struct {
	// Path is a file path or a DSN such as "file::memory:?cache=shared".
	Path string
}

// Client wraps a gorm handle with the health methods the server expects.
type Client struct {
	db *gorm.DB
}

// Open connects to the database at cfg.Path. Duplicate-key errors are
// translated to gorm.ErrDuplicatedKey.
func Open(cfg Config) (*Client, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite: empty path")
	}
	g, err := gorm.Open(gormsqlite.Open(cfg.Path), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", cfg.Path, err)
	}
	return &Client{db: g}, nil
}

// DB returns the gorm handle.
func (c *Client) DB() *gorm.DB { return c.db }

// Ping checks the underlying connection.
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("sqlite handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping: %w", err)
	}
	return nil
}

// WaitForReady pings until success or timeout.
func (c *Client) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		if err := c.Ping(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("sqlite not ready after %s: %w", timeout, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Close releases the connection pool.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
