package httptransport

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"orcs/internal/session"
	"orcs/pkg/platform/httputil"
	"orcs/pkg/requestcontext"
)

const msgConfirmEmail = "Vérifiez votre email pour confirmer votre inscription"

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeAndPrepare[SignInRequest](w, r, h.logger)
	if !ok {
		return
	}
	ip := requestcontext.ClientIP(ctx)
	if wait, allowed := h.lockout.Allow(ctx, req.Email, ip); !allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		httputil.WriteJSON(w, http.StatusTooManyRequests, AuthErrorResponse{
			Error:            "too_many_attempts",
			Title:            "Connexion bloquée",
			ErrorDescription: "Trop de tentatives de connexion. Réessayez dans quelques minutes.",
		})
		return
	}
	res := session.FromContext(ctx)
	if err := res.SignIn(ctx, req.Email, req.Password); err != nil {
		var ae *session.AuthError
		if errors.As(err, &ae) && ae.Reason == session.ReasonInvalidCredentials {
			h.lockout.Fail(ctx, req.Email, ip)
		}
		h.writeAuthError(ctx, w, err)
		return
	}
	h.lockout.Reset(req.Email, ip)
	httputil.WriteJSON(w, http.StatusOK, toSessionResponse(h.settle(ctx, res), requestcontext.DeviceLabel(ctx)))
}

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeAndPrepare[SignUpRequest](w, r, h.logger)
	if !ok {
		return
	}
	res := session.FromContext(ctx)
	if err := res.SignUp(ctx, req.Email, req.Password, req.FullName); err != nil {
		h.writeAuthError(ctx, w, err)
		return
	}

	snap := res.Snapshot()
	if snap.User == nil {
		httputil.WriteJSON(w, http.StatusAccepted, SignUpResponse{
			ConfirmationRequired: true,
			Message:              msgConfirmEmail,
		})
		return
	}
	view := toSessionResponse(h.settle(ctx, res), requestcontext.DeviceLabel(ctx))
	httputil.WriteJSON(w, http.StatusCreated, SignUpResponse{
		Message: "Inscription réussie",
		Session: &view,
	})
}

// handleSignOut clears the session and sends the visitor home.
func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session.FromContext(ctx).SignOut(ctx)
	http.Redirect(w, r, session.HomePath, http.StatusSeeOther)
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snap := session.FromContext(ctx).Snapshot()
	httputil.WriteJSON(w, http.StatusOK, toSessionResponse(snap, requestcontext.DeviceLabel(ctx)))
}

// settle waits briefly for capabilities so the response reflects them. A
// snapshot still loading after the wait is returned as is.
func (h *Handler) settle(ctx context.Context, res *session.Resolver) session.Snapshot {
	wait := h.cfg.AccessWait
	if wait <= 0 {
		wait = defaultSettleWait
	}
	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	snap, _ := res.Await(waitCtx)
	return snap
}

func (h *Handler) writeAuthError(ctx context.Context, w http.ResponseWriter, err error) {
	var ae *session.AuthError
	if !errors.As(err, &ae) {
		h.logger.ErrorContext(ctx, "unexpected auth failure",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	status := authStatus(ae.Reason)
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	httputil.WriteJSON(w, status, AuthErrorResponse{
		Error:            string(ae.Reason),
		Title:            ae.Title(),
		ErrorDescription: ae.UserMessage(),
	})
}

func authStatus(reason session.AuthReason) int {
	switch reason {
	case session.ReasonInvalidCredentials:
		return http.StatusUnauthorized
	case session.ReasonEmailNotConfirmed:
		return http.StatusForbidden
	case session.ReasonUserExists:
		return http.StatusConflict
	case session.ReasonUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}
