// Package redis implements the task registry and the command bus on top of
// go-redis/v9. One Client is shared process-wide by every request.
package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ClientConfig holds connection parameters for the Redis client.
type ClientConfig struct {
	Addr       string
	Password   string
	DB         int
	PoolSize   int
	MaxRetries int
	TLSEnabled bool
}

// Client is a lazily-initialized, process-wide Redis connection. Connect is
// idempotent and safe to call from concurrent requests; every caller
// converges on the same underlying connection (or the same failure).
type Client struct {
	cfg  ClientConfig
	once sync.Once
	rdb  *redis.Client
	err  error
}

// New creates an unconnected Client. No network I/O happens until Connect.
func New(cfg ClientConfig) *Client {
	return &Client{cfg: cfg}
}

// Connect establishes the underlying connection on first call and verifies
// it with a ping. Subsequent calls return the first call's outcome.
func (c *Client) Connect(ctx context.Context) error {
	c.once.Do(func() {
		opts := &redis.Options{
			Addr:       c.cfg.Addr,
			Password:   c.cfg.Password,
			DB:         c.cfg.DB,
			PoolSize:   c.cfg.PoolSize,
			MaxRetries: c.cfg.MaxRetries,
		}
		if c.cfg.TLSEnabled {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}

		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			c.err = fmt.Errorf("redis: ping: %w", err)
			return
		}
		c.rdb = rdb
	})
	return c.err
}

// Underlying returns the raw *redis.Client after a successful Connect.
func (c *Client) Underlying(ctx context.Context) (*redis.Client, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	return c.rdb, nil
}

// Ping verifies the connection is alive, connecting first if needed.
func (c *Client) Ping(ctx context.Context) error {
	rdb, err := c.Underlying(ctx)
	if err != nil {
		return err
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}
	return nil
}

// Close tears down the connection if one was established.
func (c *Client) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
