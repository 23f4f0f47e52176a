package memory

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"orcs/internal/backend"
	"orcs/pkg/domain"
)

const minPasswordLength = 6

var emailValidator = validator.New()

var (
	errInvalidCredentials = &backend.Error{Status: http.StatusBadRequest, Code: backend.CodeInvalidCredentials, Message: "Invalid login credentials"}
	errEmailNotConfirmed  = &backend.Error{Status: http.StatusBadRequest, Code: backend.CodeEmailNotConfirmed, Message: "Email not confirmed"}
	errWeakPassword       = &backend.Error{Status: http.StatusUnprocessableEntity, Code: backend.CodeWeakPassword, Message: "Password should be at least 6 characters."}
	errUserExists         = &backend.Error{Status: http.StatusUnprocessableEntity, Code: backend.CodeUserExists, Message: "User already registered"}
	errInvalidEmail       = &backend.Error{Status: http.StatusBadRequest, Code: backend.CodeInvalidEmail, Message: "Unable to validate email address: invalid format"}
)

// createAccount stores the identity together with the rows the hosted
// service's sign-up trigger creates: a pending profile and the member role.
func (b *Backend) createAccount(id domain.UserID, email, password string, confirmed bool, metadata map[string]any) (*account, error) {
	if emailValidator.Var(email, "required,email") != nil {
		return nil, errInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, errWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.passwordCost)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.accounts[email]; exists {
		return nil, errUserExists
	}
	if id.IsNil() {
		id = domain.NewUserID()
	}
	acc := &account{id: id, email: email, hash: hash, confirmed: confirmed, metadata: metadata}

	if _, err := b.insertRow(backend.TableProfiles, row{
		"id":        id.String(),
		"email":     email,
		"full_name": metadata["full_name"],
	}); err != nil {
		return nil, err
	}
	if _, err := b.insertRow(backend.TableUserRoles, row{
		"user_id": id.String(),
		"role":    string(domain.RoleMember),
	}); err != nil {
		return nil, err
	}
	b.accounts[email] = acc
	return acc, nil
}

func (b *Backend) mintSession(acc *account) (*backend.Session, error) {
	now := b.clock()
	exp := now.Add(b.tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   acc.id.String(),
		"email": acc.email,
		"role":  "authenticated",
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
		"jti":   uuid.NewString(),
	})
	signed, err := token.SignedString(b.secret)
	if err != nil {
		return nil, err
	}
	return &backend.Session{
		User: backend.User{
			ID:           acc.id,
			Email:        acc.email,
			UserMetadata: acc.metadata,
		},
		AccessToken:  signed,
		RefreshToken: uuid.NewString(),
		ExpiresAt:    exp.Truncate(time.Second),
	}, nil
}

func (c *Conn) SignUp(ctx context.Context, p backend.SignUpParams) (*backend.Session, error) {
	if err := c.open(); err != nil {
		return nil, err
	}
	if err := c.b.before(ctx, "auth.sign_up", ""); err != nil {
		return nil, err
	}
	acc, err := c.b.createAccount(domain.UserID{}, normalizeEmail(p.Email), p.Password, !c.b.requireConfirm, p.Data)
	if err != nil {
		return nil, err
	}
	if !acc.confirmed {
		return nil, nil
	}
	s, err := c.b.mintSession(acc)
	if err != nil {
		return nil, err
	}
	c.setSession(s, backend.EventSignedIn)
	return copySession(s), nil
}

func (c *Conn) SignInWithPassword(ctx context.Context, email, password string) (*backend.Session, error) {
	if err := c.open(); err != nil {
		return nil, err
	}
	if err := c.b.before(ctx, "auth.sign_in", ""); err != nil {
		return nil, err
	}
	c.b.mu.Lock()
	acc, ok := c.b.accounts[normalizeEmail(email)]
	var snapshot account
	if ok {
		snapshot = *acc
	}
	c.b.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(snapshot.hash, []byte(password)) != nil {
		return nil, errInvalidCredentials
	}
	if !snapshot.confirmed {
		return nil, errEmailNotConfirmed
	}
	s, err := c.b.mintSession(&snapshot)
	if err != nil {
		return nil, err
	}
	c.setSession(s, backend.EventSignedIn)
	return copySession(s), nil
}

// SignOut clears the local session even when the hook fails the remote call.
func (c *Conn) SignOut(ctx context.Context) error {
	if err := c.open(); err != nil {
		return err
	}
	err := c.b.before(ctx, "auth.sign_out", "")
	c.setSession(nil, backend.EventSignedOut)
	return err
}

// GetSession returns the current session, refreshing it first when expired.
func (c *Conn) GetSession(ctx context.Context) (*backend.Session, error) {
	if err := c.open(); err != nil {
		return nil, err
	}
	s := c.currentSession()
	if s == nil || !s.Expired(c.b.clock(), 0) {
		return s, nil
	}
	return c.RefreshSession(ctx)
}

// RefreshSession exchanges the refresh token for a new access token and
// announces TOKEN_REFRESHED.
func (c *Conn) RefreshSession(ctx context.Context) (*backend.Session, error) {
	if err := c.open(); err != nil {
		return nil, err
	}
	if err := c.b.before(ctx, "auth.refresh", ""); err != nil {
		return nil, err
	}
	current := c.currentSession()
	if current == nil {
		return nil, &backend.Error{Status: http.StatusBadRequest, Code: "refresh_token_not_found", Message: "Refresh Token Not Found"}
	}
	c.b.mu.Lock()
	acc, ok := c.b.accounts[normalizeEmail(current.User.Email)]
	var snapshot account
	if ok {
		snapshot = *acc
	}
	c.b.mu.Unlock()
	if !ok {
		return nil, errors.New("memory: account vanished")
	}
	s, err := c.b.mintSession(&snapshot)
	if err != nil {
		return nil, err
	}
	c.setSession(s, backend.EventTokenRefreshed)
	return copySession(s), nil
}
