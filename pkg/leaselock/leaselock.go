// Package leaselock serializes short critical sections (drift creation per
// variable, manual resync per workspace) through an expiring row in the
// app_locks table. Every operation here is bounded by the request lifetime,
// so leases use a fixed short TTL and are never renewed: a crashed holder
// simply expires.
package leaselock

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ErrBusy is returned when another holder owns an unexpired lease.
var ErrBusy = errors.New("lease lock busy")

const defaultTTL = 30 * time.Second

type dbConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Client acquires leases against a shared pool.
type Client struct {
	db  dbConn
	ttl time.Duration
}

// New creates a lease client with the default request-scoped TTL.
func New(pool *pgxpool.Pool) *Client {
	return &Client{db: pool, ttl: defaultTTL}
}

// WithLease runs fn while holding the lease for key, releasing it afterwards.
// A busy lease fails fast with ErrBusy; callers surface that as a conflict.
func (c *Client) WithLease(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	token, err := c.acquire(ctx, key)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = c.db.Exec(context.Background(), releaseSQL, key, token)
	}()
	return fn(ctx)
}

func (c *Client) acquire(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", errors.New("lease lock key is empty")
	}

	token, err := gonanoid.New()
	if err != nil {
		return "", err
	}

	var returnedKey string
	err = c.db.QueryRow(ctx, tryAcquireSQL, key, token, c.ttl.Milliseconds()).Scan(&returnedKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrBusy
		}
		return "", err
	}
	return token, nil
}

const tryAcquireSQL = `
INSERT INTO app_locks (lock_key, locked_by, expires_at)
VALUES ($1, $2, now() + ($3::bigint * interval '1 millisecond'))
ON CONFLICT (lock_key) DO UPDATE
SET locked_by  = EXCLUDED.locked_by,
    expires_at = EXCLUDED.expires_at
WHERE app_locks.expires_at < now()
   OR app_locks.locked_by = EXCLUDED.locked_by
RETURNING lock_key;
`

const releaseSQL = `
DELETE FROM app_locks
WHERE lock_key = $1 AND locked_by = $2;
`
