package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"advisor-routing/internal/models"
	"advisor-routing/internal/routing"

	"github.com/redis/go-redis/v9"
)

// PostgresCursor keeps the position in routing_settings.last_assigned_index.
// Advance is a single upsert, so the row lock serializes concurrent writers.
type PostgresCursor struct {
	db       *sql.DB
	defaults models.PolicyConfig
}

func (c *PostgresCursor) Advance(ctx context.Context, n int) (int, error) {
	if n <= 0 {
		return 0, routing.ErrEmptyCandidates
	}
	var next int
	err := c.db.QueryRowContext(ctx, `
		INSERT INTO routing_settings (id, assignment_method, default_advisor_id, last_assigned_index)
		VALUES (1, $2, $3, 1 % $1)
		ON CONFLICT (id) DO UPDATE
			SET last_assigned_index = (routing_settings.last_assigned_index + 1) % $1, updated_at = NOW()
		RETURNING last_assigned_index`,
		n, string(c.defaults.Method), c.defaults.DefaultAdvisorID,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("advance cursor: %w", err)
	}
	return next, nil
}

func (c *PostgresCursor) Reset(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO routing_settings (id, assignment_method, default_advisor_id, last_assigned_index)
		VALUES (1, $1, $2, 0)
		ON CONFLICT (id) DO UPDATE SET last_assigned_index = 0, updated_at = NOW()`,
		string(c.defaults.Method), c.defaults.DefaultAdvisorID,
	)
	if err != nil {
		return fmt.Errorf("reset cursor: %w", err)
	}
	return nil
}

func (c *PostgresCursor) Value(ctx context.Context) (int, error) {
	var v int
	err := c.db.QueryRowContext(ctx, `SELECT last_assigned_index FROM routing_settings WHERE id = 1`).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read cursor: %w", err)
	}
	return v, nil
}

// advanceScript performs GET, modulo and SET inside Redis so concurrent
// callers across processes never observe the same stale value.
var advanceScript = redis.NewScript(`
local n = tonumber(ARGV[1])
local cur = tonumber(redis.call('GET', KEYS[1]) or '0') or 0
local nxt = (cur + 1) % n
redis.call('SET', KEYS[1], nxt)
return nxt
`)

// RedisCursor keeps the position under a single Redis key.
type RedisCursor struct {
	client redis.Cmdable
	key    string
}

func NewRedisCursor(client redis.Cmdable, key string) *RedisCursor {
	if key == "" {
		key = "routing:last_assigned_index"
	}
	return &RedisCursor{client: client, key: key}
}

func (c *RedisCursor) Advance(ctx context.Context, n int) (int, error) {
	if n <= 0 {
		return 0, routing.ErrEmptyCandidates
	}
	next, err := advanceScript.Run(ctx, c.client, []string{c.key}, n).Int()
	if err != nil {
		return 0, fmt.Errorf("advance cursor: %w", err)
	}
	return next, nil
}

func (c *RedisCursor) Reset(ctx context.Context) error {
	if err := c.client.Set(ctx, c.key, 0, 0).Err(); err != nil {
		return fmt.Errorf("reset cursor: %w", err)
	}
	return nil
}

func (c *RedisCursor) Value(ctx context.Context) (int, error) {
	v, err := c.client.Get(ctx, c.key).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read cursor: %w", err)
	}
	return v, nil
}

var (
	_ routing.ResettableCursor = (*PostgresCursor)(nil)
	_ routing.ResettableCursor = (*RedisCursor)(nil)
)
