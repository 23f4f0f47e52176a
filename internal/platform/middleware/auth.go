package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"orcs/internal/session"
	dErrors "orcs/pkg/domain-errors"
	"orcs/pkg/platform/httputil"
	"orcs/pkg/requestcontext"
)

// DefaultAccessWait bounds how long a gated request waits for capabilities.
const DefaultAccessWait = 2 * time.Second

// SessionSource hands out the Resolver of a visitor. *session.Registry
// satisfies it.
type SessionSource interface {
	Get(ctx context.Context, visitorID, device string) (*session.Resolver, error)
}

// Session attaches the visitor's Resolver to the request context, together
// with the signed-in user's id when there is one. Requires Visitor upstream.
func Session(src SessionSource, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			visitorID := requestcontext.VisitorID(ctx)
			res, err := src.Get(ctx, visitorID, requestcontext.DeviceLabel(ctx))
			if err != nil {
				logger.ErrorContext(ctx, "failed to open visitor session",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "session unavailable"))
				return
			}
			ctx = session.WithResolver(ctx, res)
			if uid := res.Snapshot().UserID(); !uid.IsNil() {
				ctx = requestcontext.WithUserID(ctx, uid)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAccess gates area. It waits up to wait for a loading session to
// settle, then lets the request through, answers 503 with Retry-After while
// capabilities are still loading, or redirects with 303 See Other to the
// login page or home.
func RequireAccess(area session.Area, wait time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	if wait <= 0 {
		wait = DefaultAccessWait
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			res := session.FromContext(ctx)

			waitCtx, cancel := context.WithTimeout(ctx, wait)
			snap, _ := res.Await(waitCtx)
			cancel()

			access := snap.Access(area)
			switch access {
			case session.AccessAllowed:
				ctx = requestcontext.WithUserID(ctx, snap.UserID())
				next.ServeHTTP(w, r.WithContext(ctx))
			case session.AccessPending:
				w.Header().Set("Retry-After", "1")
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"error":             "loading",
					"error_description": "session is still loading",
				})
			default:
				logger.InfoContext(ctx, "access refused",
					"area", string(area),
					"access", access.String(),
					"request_id", requestcontext.RequestID(ctx),
				)
				http.Redirect(w, r, access.Redirect(), http.StatusSeeOther)
			}
		})
	}
}
