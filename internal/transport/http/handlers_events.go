package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"orcs/pkg/domain"
	dErrors "orcs/pkg/domain-errors"
	"orcs/pkg/platform/httputil"
	"orcs/pkg/requestcontext"
)

func eventID(r *http.Request) (domain.EventID, error) {
	id, err := domain.ParseEventID(chi.URLParam(r, "id"))
	if err != nil {
		return domain.EventID{}, dErrors.New(dErrors.CodeBadRequest, "invalid event id")
	}
	return id, nil
}

func (h *Handler) handleEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := eventID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	svc := h.events(ctx)
	event, err := svc.Get(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	regs, err := svc.Registrations(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res := EventDetailResponse{Event: event, Registrations: regs}
	if uid := requestcontext.UserID(ctx); !uid.IsNil() {
		if res.Mine, err = svc.UserRegistration(ctx, id, uid); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := eventID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	reg, err := h.events(ctx).Register(ctx, id, requestcontext.UserID(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "event registration failed",
			"request_id", requestcontext.RequestID(ctx),
			"event_id", id.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, RegistrationResponse{Registration: reg})
}

func (h *Handler) handleCancelRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := eventID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.events(ctx).CancelRegistration(ctx, id, requestcontext.UserID(ctx)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeJSON[EventRequest](w, r, h.logger)
	if !ok {
		return
	}
	created, err := h.events(ctx).Create(ctx, req.Input())
	if err != nil {
		h.logger.WarnContext(ctx, "failed to create event", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, err := eventID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeJSON[EventRequest](w, r, h.logger)
	if !ok {
		return
	}
	updated, err := h.events(ctx).Update(ctx, id, req.Input())
	if err != nil {
		h.logger.WarnContext(ctx, "failed to update event", "request_id", requestID, "event_id", id.String(), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := eventID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.events(ctx).Delete(ctx, id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
