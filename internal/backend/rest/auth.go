package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"orcs/internal/backend"
	"orcs/internal/platform/tracer"
	"orcs/pkg/domain"
)

// refreshMargin refreshes sessions slightly before the token expires.
const refreshMargin = 10 * time.Second

type userResponse struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// tokenResponse is GoTrue's session payload. Sign-up without auto-confirm
// answers with the bare user instead, which leaves AccessToken empty.
type tokenResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    int64         `json:"expires_in"`
	ExpiresAt    int64         `json:"expires_at"`
	User         *userResponse `json:"user"`
}

type credentials struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

// sessionFrom builds a Session. Expiry comes from expires_at, else the
// token's exp claim, else expires_in.
func (c *Client) sessionFrom(tr tokenResponse) (*backend.Session, error) {
	if tr.AccessToken == "" {
		return nil, nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tr.AccessToken, claims); err != nil {
		return nil, fmt.Errorf("parsing access token: %w", err)
	}

	s := &backend.Session{AccessToken: tr.AccessToken, RefreshToken: tr.RefreshToken}
	switch exp, _ := claims.GetExpirationTime(); {
	case tr.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(tr.ExpiresAt, 0).UTC()
	case exp != nil:
		s.ExpiresAt = exp.UTC()
	case tr.ExpiresIn > 0:
		s.ExpiresAt = c.now().Add(time.Duration(tr.ExpiresIn) * time.Second).UTC()
	}

	rawID := ""
	if tr.User != nil {
		rawID = tr.User.ID
		s.User.Email = tr.User.Email
		s.User.UserMetadata = tr.User.UserMetadata
	}
	if rawID == "" {
		rawID, _ = claims.GetSubject()
	}
	if s.User.Email == "" {
		s.User.Email, _ = claims["email"].(string)
	}
	id, err := domain.ParseUserID(rawID)
	if err != nil {
		return nil, fmt.Errorf("access token subject: %w", err)
	}
	s.User.ID = id
	return s, nil
}

func (c *Client) tokenCall(ctx context.Context, op, path string, query url.Values, body any) (*backend.Session, error) {
	resp, err := c.do(ctx, call{op: op, method: http.MethodPost, path: path, query: query, body: body})
	if err != nil {
		return nil, err
	}
	var tr tokenResponse
	if err := json.Unmarshal(resp.body, &tr); err != nil {
		return nil, fmt.Errorf("backend %s: decoding session: %w", op, err)
	}
	return c.sessionFrom(tr)
}

func (cn *Conn) SignUp(ctx context.Context, p backend.SignUpParams) (s *backend.Session, err error) {
	ctx, span := cn.c.tracer.Start(ctx, tracer.SpanAuthSignUp, tracer.String(tracer.AttrEmailHash, tracer.HashEmail(p.Email)))
	defer func() { span.End(err) }()

	if _, err := cn.token(); err != nil {
		return nil, err
	}
	q := url.Values{}
	if p.RedirectTo != "" {
		q.Set("redirect_to", p.RedirectTo)
	}
	s, err = cn.c.tokenCall(ctx, "auth.sign_up", "/auth/v1/signup", q, credentials{Email: p.Email, Password: p.Password, Data: p.Data})
	if err != nil || s == nil {
		return nil, err
	}
	cn.setSession(s, backend.EventSignedIn)
	return copySession(s), nil
}

func (cn *Conn) SignInWithPassword(ctx context.Context, email, password string) (s *backend.Session, err error) {
	ctx, span := cn.c.tracer.Start(ctx, tracer.SpanAuthSignIn, tracer.String(tracer.AttrEmailHash, tracer.HashEmail(email)))
	defer func() { span.End(err) }()

	if _, err := cn.token(); err != nil {
		return nil, err
	}
	s, err = cn.c.tokenCall(ctx, "auth.sign_in", "/auth/v1/token", url.Values{"grant_type": {"password"}},
		credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.New("backend auth.sign_in: no session in response")
	}
	cn.setSession(s, backend.EventSignedIn)
	return copySession(s), nil
}

// SignOut revokes the session remotely and clears it locally whatever the
// remote outcome.
func (cn *Conn) SignOut(ctx context.Context) (err error) {
	ctx, span := cn.c.tracer.Start(ctx, tracer.SpanAuthSignOut)
	defer func() { span.End(err) }()

	tok, err := cn.token()
	if err != nil {
		return err
	}
	if tok != "" {
		_, err = cn.c.do(ctx, call{
			op:     "auth.sign_out",
			method: http.MethodPost,
			path:   "/auth/v1/logout",
			query:  url.Values{"scope": {"local"}},
			token:  tok,
		})
	}
	cn.setSession(nil, backend.EventSignedOut)
	return err
}

func (cn *Conn) GetSession(ctx context.Context) (*backend.Session, error) {
	if _, err := cn.token(); err != nil {
		return nil, err
	}
	s := cn.currentSession()
	if s == nil || !s.Expired(cn.c.now(), refreshMargin) {
		return s, nil
	}
	return cn.RefreshSession(ctx)
}

// RefreshSession trades the refresh token for a new session. A rejected
// refresh token signs the connection out.
func (cn *Conn) RefreshSession(ctx context.Context) (s *backend.Session, err error) {
	ctx, span := cn.c.tracer.Start(ctx, tracer.SpanAuthRefresh)
	defer func() { span.End(err) }()

	current := cn.currentSession()
	if current == nil {
		return nil, &backend.Error{Status: http.StatusBadRequest, Code: "refresh_token_not_found", Message: "Refresh Token Not Found"}
	}
	s, err = cn.c.tokenCall(ctx, "auth.refresh", "/auth/v1/token", url.Values{"grant_type": {"refresh_token"}},
		map[string]string{"refresh_token": current.RefreshToken})
	if err != nil {
		var be *backend.Error
		if errors.As(err, &be) && be.Status < http.StatusInternalServerError {
			cn.setSession(nil, backend.EventSignedOut)
		}
		return nil, err
	}
	if s == nil {
		return nil, errors.New("backend auth.refresh: no session in response")
	}
	cn.setSession(s, backend.EventTokenRefreshed)
	return copySession(s), nil
}

func (cn *Conn) OnAuthStateChange() (<-chan backend.AuthEvent, func()) {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	return cn.events.SubscribeWith(backend.AuthEvent{
		Type:    backend.EventInitialSession,
		Session: copySession(cn.session),
	})
}

func (cn *Conn) setSession(s *backend.Session, typ backend.AuthEventType) {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	if cn.closed {
		return
	}
	cn.session = s
	cn.events.Publish(backend.AuthEvent{Type: typ, Session: copySession(s)})
}

func (cn *Conn) currentSession() *backend.Session {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	return copySession(cn.session)
}

func copySession(s *backend.Session) *backend.Session {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}
