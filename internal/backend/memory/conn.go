package memory

import (
	"context"
	"sync"

	"orcs/internal/backend"
	"orcs/pkg/platform/pubsub"
)

const eventBuffer = 8

// Conn is one visitor's connection. Data calls go straight to the shared
// Backend; the session and its event stream are per connection.
type Conn struct {
	b *Backend

	mu      sync.Mutex
	session *backend.Session
	events  *pubsub.Hub[backend.AuthEvent]
	closed  bool
}

func newConn(b *Backend) *Conn {
	return &Conn{b: b, events: pubsub.New[backend.AuthEvent](eventBuffer)}
}

func (c *Conn) open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return backend.ErrClosed
	}
	return nil
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.session = nil
	c.events.Close()
	return nil
}

func (c *Conn) Select(ctx context.Context, q backend.Query, dest any) error {
	if err := c.open(); err != nil {
		return err
	}
	return c.b.Select(ctx, q, dest)
}

func (c *Conn) SelectOne(ctx context.Context, q backend.Query, dest any) error {
	if err := c.open(); err != nil {
		return err
	}
	return c.b.SelectOne(ctx, q, dest)
}

func (c *Conn) Insert(ctx context.Context, table string, v any, dest any) error {
	if err := c.open(); err != nil {
		return err
	}
	return c.b.Insert(ctx, table, v, dest)
}

func (c *Conn) Upsert(ctx context.Context, table string, v any, onConflict string) error {
	if err := c.open(); err != nil {
		return err
	}
	return c.b.Upsert(ctx, table, v, onConflict)
}

func (c *Conn) Update(ctx context.Context, q backend.Query, patch any) (int, error) {
	if err := c.open(); err != nil {
		return 0, err
	}
	return c.b.Update(ctx, q, patch)
}

func (c *Conn) Delete(ctx context.Context, q backend.Query) (int, error) {
	if err := c.open(); err != nil {
		return 0, err
	}
	return c.b.Delete(ctx, q)
}

func (c *Conn) RPC(ctx context.Context, fn string, args any, dest any) error {
	if err := c.open(); err != nil {
		return err
	}
	return c.b.RPC(ctx, fn, args, dest)
}

func (c *Conn) Ping(ctx context.Context) error {
	if err := c.open(); err != nil {
		return err
	}
	return c.b.Ping(ctx)
}

func (c *Conn) OnAuthStateChange() (<-chan backend.AuthEvent, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events.SubscribeWith(backend.AuthEvent{
		Type:    backend.EventInitialSession,
		Session: copySession(c.session),
	})
}

// setSession replaces the session and announces it. Publishing under c.mu
// keeps events in the order the session changed.
func (c *Conn) setSession(s *backend.Session, typ backend.AuthEventType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.session = s
	c.events.Publish(backend.AuthEvent{Type: typ, Session: copySession(s)})
}

func (c *Conn) currentSession() *backend.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copySession(c.session)
}

func copySession(s *backend.Session) *backend.Session {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}
