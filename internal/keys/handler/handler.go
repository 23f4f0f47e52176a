// Package handler exposes the key custody page and its actions over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"orcs/internal/keys/models"
	"orcs/pkg/domain"
	dErrors "orcs/pkg/domain-errors"
	"orcs/pkg/platform/httputil"
	"orcs/pkg/requestcontext"
)

// Service defines the custody operations the page uses.
type Service interface {
	Board(ctx context.Context) (*models.Board, error)
	InitiateTransfer(ctx context.Context, keyID domain.KeyID, from *domain.UserID, to domain.UserID) (*models.Transfer, error)
	ConfirmTransfer(ctx context.Context, id domain.TransferID) error
	CancelTransfer(ctx context.Context, id domain.TransferID) error
	Reconcile(ctx context.Context) ([]models.Inconsistency, error)
}

// ServiceFactory builds the custody service bound to the request's session.
type ServiceFactory func(ctx context.Context) Service

type Handler struct {
	logger  *slog.Logger
	service ServiceFactory
}

func New(service ServiceFactory, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register mounts the custody routes. Callers gate the router beforehand.
func (h *Handler) Register(r chi.Router) {
	r.Get("/gestion-cles", h.handleBoard)
	r.Post("/gestion-cles/transferts", h.handleInitiate)
	r.Post("/gestion-cles/transferts/{id}/confirmer", h.handleConfirm)
	r.Delete("/gestion-cles/transferts/{id}", h.handleCancel)
	r.Get("/gestion-cles/reconciliation", h.handleReconcile)
}

func (h *Handler) handleBoard(w http.ResponseWriter, r *http.Request) {
	h.writeBoard(w, r, http.StatusOK)
}

func (h *Handler) handleInitiate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[InitiateRequest](w, r, h.logger)
	if !ok {
		return
	}
	keyID, from, to, err := req.IDs()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if _, err := h.service(ctx).InitiateTransfer(ctx, keyID, from, to); err != nil {
		h.logger.ErrorContext(ctx, "failed to initiate key transfer",
			"request_id", requestID,
			"key_id", keyID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.writeBoard(w, r, http.StatusCreated)
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "confirm", func(ctx context.Context, svc Service, id domain.TransferID) error {
		return svc.ConfirmTransfer(ctx, id)
	})
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "cancel", func(ctx context.Context, svc Service, id domain.TransferID) error {
		return svc.CancelTransfer(ctx, id)
	})
}

func (h *Handler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	found, err := h.service(ctx).Reconcile(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to reconcile keys",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if found == nil {
		found = []models.Inconsistency{}
	}
	httputil.WriteJSON(w, http.StatusOK, ReconcileResponse{
		Consistent:      len(found) == 0,
		Inconsistencies: found,
	})
}

// mutate runs a transfer action and answers with the re-read board.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, action string, run func(context.Context, Service, domain.TransferID) error) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, err := domain.ParseTransferID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid transfer id"))
		return
	}
	if err := run(ctx, h.service(ctx), id); err != nil {
		level := slog.LevelError
		if dErrors.HasCode(err, dErrors.CodeConflict) || dErrors.HasCode(err, dErrors.CodeNotFound) {
			level = slog.LevelWarn
		}
		h.logger.Log(ctx, level, "key transfer "+action+" failed",
			"request_id", requestID,
			"transfer_id", id.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.writeBoard(w, r, http.StatusOK)
}

func (h *Handler) writeBoard(w http.ResponseWriter, r *http.Request, status int) {
	ctx := r.Context()
	board, err := h.service(ctx).Board(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load key board",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, status, board)
}
