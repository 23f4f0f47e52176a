// Package session resolves who the visitor is and what they may do. One
// Resolver per visitor follows its backend connection's auth events and
// derives capabilities from the profile, role and board tables.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"orcs/internal/backend"
	"orcs/pkg/domain"
	"orcs/pkg/platform/audit"
	"orcs/pkg/platform/pubsub"
)

// Metrics records resolver outcomes. *metrics.Metrics satisfies it.
type Metrics interface {
	ObserveDerivation(result string, seconds float64)
	IncSignIn(outcome string)
	IncSignOut()
}

// Derivation results reported to Metrics.
const (
	DerivationOK    = "ok"
	DerivationError = "error"
	DerivationStale = "stale"
)

const snapshotBuffer = 4

// Config carries what every Resolver shares.
type Config struct {
	// SiteURL is the public origin; sign-up confirmations redirect to SiteURL + "/".
	SiteURL string
	Logger  *slog.Logger
	Metrics Metrics
	Audit   *audit.Logger
	Now     func() time.Time
}

type state struct {
	session     *backend.Session
	profile     *Profile
	roles       []domain.Role
	officers    []OfficerAssignment
	initialized bool
	derived     bool
	// generation changes with the identity behind the session. A derivation
	// started under an older generation is discarded.
	generation uint64
}

// Resolver owns one visitor's session state.
type Resolver struct {
	conn    backend.Conn
	siteURL string
	logger  *slog.Logger
	metrics Metrics
	audit   *audit.Logger
	now     func() time.Time

	mu    sync.Mutex
	st    state
	snaps *pubsub.Hub[Snapshot]

	ctx    context.Context
	cancel context.CancelFunc
	unsub  func()
	wg     sync.WaitGroup
	once   sync.Once
}

func NewResolver(conn backend.Conn, cfg Config) *Resolver {
	r := &Resolver{
		conn:    conn,
		siteURL: cfg.SiteURL,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		audit:   cfg.Audit,
		now:     cfg.Now,
		snaps:   pubsub.New[Snapshot](snapshotBuffer),
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Start subscribes to the connection's auth events. The initial session is
// applied before Start returns; later events are handled on a goroutine
// that runs until Close or until ctx is done.
func (r *Resolver) Start(ctx context.Context) {
	r.ctx, r.cancel = context.WithCancel(ctx)
	events, unsub := r.conn.OnAuthStateChange()
	r.unsub = unsub

	select {
	case ev, ok := <-events:
		if ok {
			r.apply(ev)
		}
	default:
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				r.apply(ev)
			case <-r.ctx.Done():
				return
			}
		}
	}()
}

// Close stops event handling, waits for derivations and closes the connection.
func (r *Resolver) Close() error {
	var err error
	r.once.Do(func() {
		// Cancel under mu so no derivation is scheduled after Wait starts.
		r.mu.Lock()
		if r.cancel != nil {
			r.cancel()
		}
		r.mu.Unlock()
		if r.unsub != nil {
			r.unsub()
		}
		r.wg.Wait()
		r.snaps.Close()
		err = r.conn.Close()
	})
	return err
}

// apply handles one auth event. It never blocks on the network: derivation
// is scheduled on its own goroutine.
func (r *Resolver) apply(ev backend.AuthEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.st.session
	switch {
	case r.st.initialized && cur == nil && ev.Session == nil:
		return
	case cur != nil && ev.Session != nil && cur.AccessToken == ev.Session.AccessToken:
		return
	}
	r.st.initialized = true

	if ev.Session == nil {
		r.clearLocked()
		r.publishLocked()
		return
	}

	sameUser := cur != nil && cur.User.ID == ev.Session.User.ID
	r.st.session = ev.Session
	if sameUser && ev.Type == backend.EventTokenRefreshed {
		r.publishLocked()
		return
	}

	r.st.generation++
	if !sameUser {
		r.st.profile = nil
		r.st.roles = nil
		r.st.officers = nil
	}
	r.st.derived = false
	r.publishLocked()
	r.scheduleLocked(r.st.generation, ev.Session.User.ID)
}

func (r *Resolver) clearLocked() {
	r.st.generation++
	r.st.session = nil
	r.st.profile = nil
	r.st.roles = nil
	r.st.officers = nil
	r.st.derived = false
}

func (r *Resolver) scheduleLocked(gen uint64, uid domain.UserID) {
	ctx := r.ctx
	if ctx == nil || ctx.Err() != nil {
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.derive(ctx, gen, uid); err != nil && !errors.Is(err, context.Canceled) {
			r.logger.ErrorContext(ctx, "capability derivation failed", "user_id", uid.String(), "error", err)
		}
	}()
}

type derivation struct {
	profile  *Profile
	roles    []domain.Role
	officers []OfficerAssignment
}

// fetch runs the three derivation reads concurrently.
func (r *Resolver) fetch(ctx context.Context, uid domain.UserID) (derivation, error) {
	var d derivation
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var p Profile
		err := r.conn.SelectOne(gctx, backend.From(backend.TableProfiles).Eq("id", uid), &p)
		switch {
		case errors.Is(err, backend.ErrNoRows):
			return nil
		case err != nil:
			return fmt.Errorf("fetching profile: %w", err)
		}
		d.profile = &p
		return nil
	})
	g.Go(func() error {
		var rows []struct {
			Role domain.Role `json:"role"`
		}
		if err := r.conn.Select(gctx, backend.From(backend.TableUserRoles).Select("role").Eq("user_id", uid), &rows); err != nil {
			return fmt.Errorf("fetching roles: %w", err)
		}
		d.roles = make([]domain.Role, 0, len(rows))
		for _, row := range rows {
			d.roles = append(d.roles, row.Role)
		}
		return nil
	})
	g.Go(func() error {
		q := backend.From(backend.TableBoardMembers).
			Select("board_role").
			Eq("user_id", uid).
			Eq("is_active", true).
			In("board_role", backend.Values(domain.OfficerRoles)...).
			Limit(1)
		if err := r.conn.Select(gctx, q, &d.officers); err != nil {
			return fmt.Errorf("fetching board seats: %w", err)
		}
		return nil
	})
	err := g.Wait()
	return d, err
}

// derive fetches and, if gen is still current, installs the result. A failed
// derivation keeps the previous values and stops the loading state.
func (r *Resolver) derive(ctx context.Context, gen uint64, uid domain.UserID) error {
	start := r.now()
	d, err := r.fetch(ctx, uid)
	elapsed := r.now().Sub(start).Seconds()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.st.generation != gen {
		r.observe(DerivationStale, elapsed)
		r.logger.DebugContext(ctx, "discarding stale derivation", "user_id", uid.String())
		return nil
	}
	r.st.derived = true
	if err != nil {
		r.observe(DerivationError, elapsed)
		r.publishLocked()
		return err
	}
	r.st.profile = d.profile
	r.st.roles = d.roles
	r.st.officers = d.officers
	r.observe(DerivationOK, elapsed)
	r.publishLocked()
	return nil
}

func (r *Resolver) observe(result string, seconds float64) {
	if r.metrics != nil {
		r.metrics.ObserveDerivation(result, seconds)
	}
}

func (r *Resolver) snapshotLocked() Snapshot {
	st := r.st
	snap := Snapshot{
		Roles:     slices.Clone(st.roles),
		IsLoading: !st.initialized || (st.session != nil && !st.derived),
	}
	if st.session != nil {
		sess := *st.session
		user := sess.User
		snap.Session = &sess
		snap.User = &user
	}
	if st.profile != nil {
		p := *st.profile
		p.Activities = slices.Clone(p.Activities)
		snap.Profile = &p
	}
	if snap.Roles == nil {
		snap.Roles = []domain.Role{}
	}
	snap.Capabilities = DeriveCapabilities(st.profile, st.roles, st.officers)
	return snap
}

func (r *Resolver) publishLocked() {
	r.snaps.Publish(r.snapshotLocked())
}

// Snapshot returns the current state.
func (r *Resolver) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Access answers page gating for area from the current snapshot.
func (r *Resolver) Access(area Area) Access {
	return r.Snapshot().Access(area)
}

// Subscribe delivers every published snapshot. A slow reader skips to the
// newest ones.
func (r *Resolver) Subscribe() (<-chan Snapshot, func()) {
	return r.snaps.Subscribe()
}

// Await blocks until the snapshot is no longer loading or ctx ends. It
// returns the latest snapshot either way.
func (r *Resolver) Await(ctx context.Context) (Snapshot, error) {
	ch, unsub := r.Subscribe()
	defer unsub()
	for {
		snap := r.Snapshot()
		if !snap.IsLoading {
			return snap, nil
		}
		select {
		case _, ok := <-ch:
			if !ok {
				return r.Snapshot(), errors.New("session: resolver closed")
			}
		case <-ctx.Done():
			return r.Snapshot(), ctx.Err()
		}
	}
}

// SignUp registers a new identity. When the service signs the user in
// straight away the session is applied immediately.
func (r *Resolver) SignUp(ctx context.Context, email, password, displayName string) error {
	sess, err := r.conn.SignUp(ctx, backend.SignUpParams{
		Email:      email,
		Password:   password,
		RedirectTo: r.siteURL + "/",
		Data:       map[string]any{"full_name": displayName},
	})
	if err != nil {
		ae := classifyAuthError(err)
		r.logger.InfoContext(ctx, "sign up rejected", "reason", string(ae.Reason))
		return ae
	}
	r.audit.Log(ctx, audit.EventSignedUp, "reason", confirmationReason(sess))
	if sess != nil {
		r.apply(backend.AuthEvent{Type: backend.EventSignedIn, Session: sess})
		r.audit.Log(ctx, audit.EventSignedIn, "actor_id", sess.User.ID.String())
	}
	return nil
}

func confirmationReason(sess *backend.Session) string {
	if sess == nil {
		return "confirmation_required"
	}
	return "auto_confirmed"
}

// SignIn authenticates with email and password. Failures are *AuthError.
func (r *Resolver) SignIn(ctx context.Context, email, password string) error {
	sess, err := r.conn.SignInWithPassword(ctx, email, password)
	if err != nil {
		ae := classifyAuthError(err)
		if r.metrics != nil {
			r.metrics.IncSignIn(string(ae.Reason))
		}
		r.logger.InfoContext(ctx, "sign in rejected", "reason", string(ae.Reason))
		return ae
	}
	if r.metrics != nil {
		r.metrics.IncSignIn("ok")
	}
	r.apply(backend.AuthEvent{Type: backend.EventSignedIn, Session: sess})
	r.audit.Log(ctx, audit.EventSignedIn, "actor_id", sess.User.ID.String())
	return nil
}

// SignOut clears the session and everything derived from it. A failed
// remote sign-out is logged; the local state is cleared regardless.
func (r *Resolver) SignOut(ctx context.Context) {
	actor := r.Snapshot().UserID()
	if err := r.conn.SignOut(ctx); err != nil {
		r.logger.WarnContext(ctx, "remote sign out failed", "error", err)
	}

	r.mu.Lock()
	r.st.initialized = true
	r.clearLocked()
	r.publishLocked()
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.IncSignOut()
	}
	if !actor.IsNil() {
		r.audit.Log(ctx, audit.EventSignedOut, "actor_id", actor.String())
	}
}

// RefreshProfile re-runs derivation for the current user and waits for it.
// It starts a new generation, so a derivation already in flight cannot
// overwrite the fresher result. It is a no-op when signed out.
func (r *Resolver) RefreshProfile(ctx context.Context) error {
	r.mu.Lock()
	sess := r.st.session
	if sess == nil {
		r.mu.Unlock()
		return nil
	}
	r.st.generation++
	gen := r.st.generation
	r.mu.Unlock()
	return r.derive(ctx, gen, sess.User.ID)
}

// Ping checks the visitor's connection to the backend.
func (r *Resolver) Ping(ctx context.Context) error {
	return r.conn.Ping(ctx)
}

// Data exposes the connection's data API for domain services.
func (r *Resolver) Data() backend.DataAPI {
	return r.conn
}
