// Package middleware binds each request to its visitor's session and gates
// restricted pages on the visitor's capabilities.
package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"orcs/pkg/requestcontext"
)

// VisitorCookie identifies a browser across requests.
const VisitorCookie = "orcs_sid"

type VisitorConfig struct {
	// Secure marks the cookie HTTPS-only.
	Secure bool
	MaxAge time.Duration
}

// Visitor reads the visitor cookie, issuing a fresh id when it is missing or
// malformed, and stores the id in the request context.
func Visitor(cfg VisitorConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			visitorID := ""
			if c, err := r.Cookie(VisitorCookie); err == nil {
				if id, err := uuid.Parse(c.Value); err == nil {
					visitorID = id.String()
				}
			}
			if visitorID == "" {
				visitorID = uuid.NewString()
				cookie := &http.Cookie{
					Name:     VisitorCookie,
					Value:    visitorID,
					Path:     "/",
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				}
				if cfg.MaxAge > 0 {
					cookie.MaxAge = int(cfg.MaxAge.Seconds())
				}
				http.SetCookie(w, cookie)
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithVisitorID(r.Context(), visitorID)))
		})
	}
}
