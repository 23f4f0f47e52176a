// Package lockout throttles password sign-in. Failures are counted per email
// and client IP inside a fixed window; reaching the limit locks that pair out
// until the lock expires. State lives in process memory, like the session
// registry it sits next to.
package lockout

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"orcs/pkg/platform/audit"
	"orcs/pkg/platform/middleware/requesttime"
	"orcs/pkg/platform/privacy"
	strutil "orcs/pkg/string"
)

// Config bounds sign-in attempts.
type Config struct {
	Attempts int
	Window   time.Duration
	LockFor  time.Duration
}

// DefaultConfig allows five failures per quarter hour.
func DefaultConfig() Config {
	return Config{Attempts: 5, Window: 15 * time.Minute, LockFor: 15 * time.Minute}
}

type record struct {
	failures    int
	windowStart time.Time
	lockedUntil time.Time
}

func (r *record) locked(now time.Time) bool {
	return now.Before(r.lockedUntil)
}

// Lockout tracks failed sign-ins. The zero value is not usable; call New.
type Lockout struct {
	cfg    Config
	logger *slog.Logger
	audit  *audit.Logger

	mu      sync.Mutex
	records map[string]*record
}

type Option func(*Lockout)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Lockout) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func WithAuditLogger(a *audit.Logger) Option {
	return func(l *Lockout) {
		l.audit = a
	}
}

// New builds a Lockout. Non-positive Config fields fall back to DefaultConfig.
func New(cfg Config, opts ...Option) *Lockout {
	def := DefaultConfig()
	if cfg.Attempts <= 0 {
		cfg.Attempts = def.Attempts
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.LockFor <= 0 {
		cfg.LockFor = def.LockFor
	}
	l := &Lockout{
		cfg:     cfg,
		logger:  slog.Default(),
		records: make(map[string]*record),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func key(email, ip string) string {
	return strutil.Fold(email) + "|" + ip
}

// Allow reports whether email may attempt a sign-in from ip. When it may not,
// the returned duration is the time left on the lock.
func (l *Lockout) Allow(ctx context.Context, email, ip string) (time.Duration, bool) {
	now := requesttime.Now(ctx)
	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.records[key(email, ip)]
	if !ok || !r.locked(now) {
		return 0, true
	}
	return r.lockedUntil.Sub(now), false
}

// Fail records a rejected password. It returns true when this failure
// triggered a lock.
func (l *Lockout) Fail(ctx context.Context, email, ip string) bool {
	now := requesttime.Now(ctx)
	k := key(email, ip)

	l.mu.Lock()
	r, ok := l.records[k]
	if !ok || now.Sub(r.windowStart) >= l.cfg.Window {
		r = &record{windowStart: now}
		l.records[k] = r
	}
	r.failures++
	tripped := r.failures >= l.cfg.Attempts && !r.locked(now)
	if tripped {
		r.lockedUntil = now.Add(l.cfg.LockFor)
		r.failures = 0
		r.windowStart = r.lockedUntil
	}
	l.mu.Unlock()

	if tripped {
		l.logger.WarnContext(ctx, "sign-in locked",
			"email", privacy.MaskEmail(email),
			"ip_prefix", privacy.AnonymizeIP(ip),
			"lock_for", l.cfg.LockFor,
		)
		l.audit.Log(ctx, audit.EventSignInLocked,
			"subject", privacy.MaskEmail(email),
			"reason", "too_many_failures",
		)
	}
	return tripped
}

// Reset forgets failures after a successful sign-in.
func (l *Lockout) Reset(email, ip string) {
	l.mu.Lock()
	delete(l.records, key(email, ip))
	l.mu.Unlock()
}

// Sweep drops records whose window and lock have both expired.
func (l *Lockout) Sweep(now time.Time) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for k, r := range l.records {
		if r.locked(now) || now.Sub(r.windowStart) < l.cfg.Window {
			continue
		}
		delete(l.records, k)
		n++
	}
	return n, nil
}

// Len returns the number of tracked email and IP pairs.
func (l *Lockout) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
