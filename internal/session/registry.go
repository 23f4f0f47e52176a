package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"orcs/internal/backend"
	psync "orcs/pkg/platform/sync"
)

// RegistryMetrics tracks live resolvers. *metrics.Metrics satisfies it.
type RegistryMetrics interface {
	SetActiveSessions(n int)
	IncSessionsEvicted(n int)
}

type entry struct {
	resolver *Resolver
	device   string
	lastSeen atomic.Int64
}

// Registry maps visitor ids to their Resolvers.
type Registry struct {
	connector backend.Connector
	cfg       Config
	idleTTL   time.Duration
	metrics   RegistryMetrics

	create *psync.ShardedMutex

	mu      sync.RWMutex
	entries map[string]*entry
	closed  bool
}

func NewRegistry(connector backend.Connector, cfg Config, idleTTL time.Duration, metrics RegistryMetrics) *Registry {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Registry{
		connector: connector,
		cfg:       cfg,
		idleTTL:   idleTTL,
		metrics:   metrics,
		create:    psync.NewShardedMutex(),
		entries:   make(map[string]*entry),
	}
}

// Get returns the visitor's Resolver, opening a backend connection on the
// visitor's first request. device labels the visitor's user agent in logs.
func (g *Registry) Get(ctx context.Context, visitorID, device string) (*Resolver, error) {
	if e := g.lookup(visitorID); e != nil {
		return e.resolver, nil
	}

	var (
		r   *Resolver
		err error
	)
	g.create.Do(visitorID, func() {
		if e := g.lookup(visitorID); e != nil {
			r = e.resolver
			return
		}
		r, err = g.open(ctx, visitorID, device)
	})
	return r, err
}

func (g *Registry) lookup(visitorID string) *entry {
	g.mu.RLock()
	e := g.entries[visitorID]
	g.mu.RUnlock()
	if e != nil {
		e.lastSeen.Store(g.cfg.Now().UnixNano())
	}
	return e
}

func (g *Registry) open(ctx context.Context, visitorID, device string) (*Resolver, error) {
	conn, err := g.connector.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening backend connection: %w", err)
	}
	r := NewResolver(conn, g.cfg)
	r.Start(context.WithoutCancel(ctx))

	e := &entry{resolver: r, device: device}
	e.lastSeen.Store(g.cfg.Now().UnixNano())

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		_ = r.Close()
		return nil, errors.New("session: registry closed")
	}
	g.entries[visitorID] = e
	n := len(g.entries)
	g.mu.Unlock()

	if g.metrics != nil {
		g.metrics.SetActiveSessions(n)
	}
	if g.cfg.Logger != nil {
		g.cfg.Logger.DebugContext(ctx, "visitor session opened", "device", device, "active_sessions", n)
	}
	return r, nil
}

// Forget closes and removes a visitor's Resolver.
func (g *Registry) Forget(visitorID string) error {
	g.mu.Lock()
	e := g.entries[visitorID]
	delete(g.entries, visitorID)
	n := len(g.entries)
	g.mu.Unlock()
	if e == nil {
		return nil
	}
	if g.metrics != nil {
		g.metrics.SetActiveSessions(n)
	}
	return e.resolver.Close()
}

// Sweep closes resolvers idle for longer than the idle TTL and returns how
// many it removed.
func (g *Registry) Sweep(now time.Time) (int, error) {
	cutoff := now.Add(-g.idleTTL).UnixNano()

	g.mu.Lock()
	var idle []*entry
	for id, e := range g.entries {
		if e.lastSeen.Load() < cutoff {
			idle = append(idle, e)
			delete(g.entries, id)
		}
	}
	n := len(g.entries)
	g.mu.Unlock()

	var errs []error
	for _, e := range idle {
		if err := e.resolver.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if g.metrics != nil {
		g.metrics.SetActiveSessions(n)
		if len(idle) > 0 {
			g.metrics.IncSessionsEvicted(len(idle))
		}
	}
	return len(idle), errors.Join(errs...)
}

// Len returns the number of live resolvers.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.entries)
}

// Close closes every resolver. Later Get calls fail.
func (g *Registry) Close() error {
	g.mu.Lock()
	g.closed = true
	entries := g.entries
	g.entries = make(map[string]*entry)
	g.mu.Unlock()

	var errs []error
	for _, e := range entries {
		if err := e.resolver.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if g.metrics != nil {
		g.metrics.SetActiveSessions(0)
	}
	return errors.Join(errs...)
}
