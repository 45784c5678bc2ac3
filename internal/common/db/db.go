package db

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"pos-billing/internal/common/config"
)

type Conn struct{ *pgxpool.Pool }

// DSN builds the pgx connection URL. Credentials are escaped so passwords may
// carry '@', ':' or '/'.
func DSN(c config.DB) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Pass),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Name,
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return u.String()
}

// Connect opens the pool and retries the first ping until ctx is done or the
// attempts run out; postgres usually starts slower than the service.
func Connect(ctx context.Context, c config.DB) (*Conn, error) {
	pcfg, err := pgxpool.ParseConfig(DSN(c))
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	pcfg.MaxConns = c.MaxConns
	pcfg.MaxConnLifetime = time.Hour

	const (
		maxRetries = 10
		retryDelay = 2 * time.Second
		pingTTL    = 5 * time.Second
	)

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open pool: %w", err)
	}
	for i := 1; i <= maxRetries; i++ {
		pctx, cancel := context.WithTimeout(ctx, pingTTL)
		err = pool.Ping(pctx)
		cancel()
		if err == nil {
			return &Conn{Pool: pool}, nil
		}
		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			pool.Close()
			return nil, fmt.Errorf("db ping canceled: %w", ctx.Err())
		}
	}
	pool.Close()
	return nil, fmt.Errorf("database unreachable after %d attempts: %w", maxRetries, err)
}

func (c *Conn) Close() {
	if c != nil && c.Pool != nil {
		c.Pool.Close()
	}
}

// Migrate creates the tables the billing service needs. Every statement is
// idempotent so it runs on each start.
func (c *Conn) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username VARCHAR(80) UNIQUE NOT NULL,
			password_hash VARCHAR(200) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS bills (
			id BIGSERIAL PRIMARY KEY,
			bill_number VARCHAR(32) UNIQUE NOT NULL,
			date TIMESTAMPTZ NOT NULL,
			company_name VARCHAR(150),
			shop_name VARCHAR(150),
			location VARCHAR(150),
			shop_address VARCHAR(300),
			shop_mobile VARCHAR(20),
			shop_mobile2 VARCHAR(20),
			grand_total DOUBLE PRECISION NOT NULL,
			advance_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			discount_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			balance_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			receipt_url VARCHAR(500),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS bill_items (
			id BIGSERIAL PRIMARY KEY,
			bill_id BIGINT NOT NULL REFERENCES bills(id) ON DELETE CASCADE,
			item_name VARCHAR(100) NOT NULL,
			quantity INTEGER NOT NULL,
			unit_price DOUBLE PRECISION NOT NULL,
			total_price DOUBLE PRECISION NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS bills_date_idx ON bills (date DESC)`,
		`CREATE TABLE IF NOT EXISTS menu_items (
			id BIGSERIAL PRIMARY KEY,
			item_key VARCHAR(160) UNIQUE NOT NULL,
			name VARCHAR(100) NOT NULL,
			price DOUBLE PRECISION NOT NULL DEFAULT 0,
			category VARCHAR(100) NOT NULL DEFAULT '',
			picker_id VARCHAR(60) NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS shop_settings (
			user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			company_name VARCHAR(150) NOT NULL DEFAULT '',
			shop_name VARCHAR(150) NOT NULL DEFAULT '',
			address VARCHAR(300) NOT NULL DEFAULT '',
			mobile VARCHAR(20) NOT NULL DEFAULT '',
			mobile2 VARCHAR(20) NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, s := range stmts {
		if _, err := c.Exec(ctx, s); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}
