package routing

import (
	"context"
	"sync"
)

// Cursor is the shared round-robin position. Advance must perform the
// read-modify-write as one atomic step: it stores (current+1) mod n and
// returns the stored value.
type Cursor interface {
	Advance(ctx context.Context, n int) (int, error)
}

// ResettableCursor is the admin-facing view of a cursor.
type ResettableCursor interface {
	Cursor
	Reset(ctx context.Context) error
	Value(ctx context.Context) (int, error)
}

// MemoryCursor keeps the position in process memory. It is not durable and
// only serializes callers inside one process.
type MemoryCursor struct {
	mu    sync.Mutex
	value int
}

func NewMemoryCursor(initial int) *MemoryCursor {
	return &MemoryCursor{value: initial}
}

func (c *MemoryCursor) Advance(_ context.Context, n int) (int, error) {
	if n <= 0 {
		return 0, ErrEmptyCandidates
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = (c.value + 1) % n
	return c.value, nil
}

func (c *MemoryCursor) Reset(context.Context) error {
	c.mu.Lock()
	c.value = 0
	c.mu.Unlock()
	return nil
}

func (c *MemoryCursor) Value(context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, nil
}
