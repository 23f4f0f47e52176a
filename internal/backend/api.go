// Package backend is the consumed contract of the hosted data/auth service:
// a PostgREST-style DataAPI, a GoTrue-style AuthAPI and their shared types.
package backend

import (
	"context"
	"time"

	"orcs/pkg/domain"
)

// DataAPI reads and writes rows. dest arguments are pointers that rows are
// JSON-decoded into: a slice for Select, a struct for SelectOne and Insert.
type DataAPI interface {
	Select(ctx context.Context, q Query, dest any) error
	// SelectOne is maybe-single: ErrNoRows when nothing matches,
	// ErrMultipleRows when more than one row does.
	SelectOne(ctx context.Context, q Query, dest any) error
	// Insert adds row and decodes the stored row (with defaults) into dest when non-nil.
	Insert(ctx context.Context, table string, row any, dest any) error
	// Upsert inserts or merges on the onConflict columns (comma separated).
	Upsert(ctx context.Context, table string, row any, onConflict string) error
	// Update patches the rows matched by q and returns how many changed.
	Update(ctx context.Context, q Query, patch any) (int, error)
	// Delete removes the rows matched by q and returns how many went.
	Delete(ctx context.Context, q Query) (int, error)
	RPC(ctx context.Context, fn string, args any, dest any) error
	Ping(ctx context.Context) error
}

// AuthAPI manages the connection's session.
type AuthAPI interface {
	// SignUp registers an identity. The returned session is nil when the
	// service requires email confirmation first.
	SignUp(ctx context.Context, params SignUpParams) (*Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	// SignOut revokes the session remotely and always clears it locally.
	SignOut(ctx context.Context) error
	// GetSession returns the current session or nil when signed out.
	GetSession(ctx context.Context) (*Session, error)
	// OnAuthStateChange subscribes to session changes. The first event is
	// INITIAL_SESSION with the session current at subscription time.
	OnAuthStateChange() (<-chan AuthEvent, func())
}

// Conn is one visitor's connection: its session scopes every data call.
type Conn interface {
	AuthAPI
	DataAPI
	Close() error
}

// Connector opens visitor connections.
type Connector interface {
	Connect(ctx context.Context) (Conn, error)
}

type User struct {
	ID           domain.UserID  `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

type Session struct {
	User         User      `json:"user"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the access token is past its expiry, with a margin.
func (s *Session) Expired(now time.Time, margin time.Duration) bool {
	if s == nil || s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(margin).Before(s.ExpiresAt)
}

type SignUpParams struct {
	Email      string
	Password   string
	RedirectTo string
	// Data becomes the user's metadata (e.g. full_name).
	Data map[string]any
}

type AuthEventType string

const (
	EventInitialSession AuthEventType = "INITIAL_SESSION"
	EventSignedIn       AuthEventType = "SIGNED_IN"
	EventSignedOut      AuthEventType = "SIGNED_OUT"
	EventTokenRefreshed AuthEventType = "TOKEN_REFRESHED"
	EventUserUpdated    AuthEventType = "USER_UPDATED"
)

// AuthEvent is a session change. Session is nil for SIGNED_OUT and for an
// INITIAL_SESSION without a session.
type AuthEvent struct {
	Type    AuthEventType
	Session *Session
}
