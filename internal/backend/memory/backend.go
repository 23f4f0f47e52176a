// Package memory is an in-process stand-in for the hosted data/auth service.
// It serves the same query model as the REST adapter and is used by tests and
// by the server's development mode.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"orcs/internal/backend"
	"orcs/pkg/domain"
)

const (
	defaultSecret   = "orcs-memory-backend"
	defaultTokenTTL = time.Hour
)

// Hook runs before every operation, outside the backend lock. op is
// "select", "insert", "upsert", "update", "delete", "rpc" or "auth.<name>".
// A non-nil error aborts the operation.
type Hook func(ctx context.Context, op, table string) error

type account struct {
	id        domain.UserID
	email     string
	hash      []byte
	confirmed bool
	metadata  map[string]any
}

// Backend holds every table and account. Connections share it.
type Backend struct {
	mu       sync.Mutex
	tables   map[string][]row
	accounts map[string]*account

	secret         []byte
	tokenTTL       time.Duration
	requireConfirm bool
	passwordCost   int
	now            func() time.Time
	hook           Hook
}

type Option func(*Backend)

func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

func WithHook(h Hook) Option {
	return func(b *Backend) { b.hook = h }
}

func WithSecret(secret string) Option {
	return func(b *Backend) { b.secret = []byte(secret) }
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(b *Backend) {
		if ttl > 0 {
			b.tokenTTL = ttl
		}
	}
}

// WithPasswordCost sets the bcrypt cost. Tests lower it to bcrypt.MinCost.
func WithPasswordCost(cost int) Option {
	return func(b *Backend) { b.passwordCost = cost }
}

// WithEmailConfirmation makes sign-up return no session until ConfirmEmail is called.
func WithEmailConfirmation() Option {
	return func(b *Backend) { b.requireConfirm = true }
}

func New(opts ...Option) *Backend {
	b := &Backend{
		tables:       make(map[string][]row),
		accounts:     make(map[string]*account),
		secret:       []byte(defaultSecret),
		tokenTTL:     defaultTokenTTL,
		passwordCost: bcrypt.DefaultCost,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetHook replaces the hook. Tests use it to pause an operation mid-flight.
func (b *Backend) SetHook(h Hook) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hook = h
}

// Connect opens a signed-out connection.
func (b *Backend) Connect(_ context.Context) (backend.Conn, error) {
	return newConn(b), nil
}

// ConfirmEmail marks an account as confirmed, as following the emailed link would.
func (b *Backend) ConfirmEmail(email string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.accounts[normalizeEmail(email)]
	if ok {
		acc.confirmed = true
	}
	return ok
}

// Rows returns a copy of every row of table, for assertions.
func (b *Backend) Rows(table string) []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]map[string]any, 0, len(b.tables[table]))
	for _, r := range b.tables[table] {
		out = append(out, r.clone())
	}
	return out
}

func (b *Backend) before(ctx context.Context, op, table string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	hook := b.hook
	b.mu.Unlock()
	if hook == nil {
		return nil
	}
	return hook(ctx, op, table)
}

func (b *Backend) clock() time.Time {
	return b.now().UTC()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
