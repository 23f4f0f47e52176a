// Package service implements the key custody workflow: listing keys and
// transfers, initiating, confirming and cancelling handoffs, and checking
// the key rows against the transfer ledger.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"orcs/internal/keys/models"
	"orcs/internal/keys/store"
	"orcs/pkg/domain"
	dErrors "orcs/pkg/domain-errors"
	"orcs/pkg/platform/audit"
	"orcs/pkg/platform/middleware/requesttime"
	"orcs/pkg/platform/sentinel"
	"orcs/pkg/requestcontext"
)

// Store is the persistence the workflow needs.
// Error contract:
//   - FindTransfer returns store.ErrNotFound when the transfer does not exist
//   - MarkConfirmed and DeletePending report false when no unconfirmed row matched
//   - backend failures come back wrapped and match the sentinel errors
type Store interface {
	ListKeys(ctx context.Context) ([]models.Key, error)
	ListPending(ctx context.Context) ([]models.Transfer, error)
	ListConfirmed(ctx context.Context, limit int) ([]models.Transfer, error)
	FindTransfer(ctx context.Context, id domain.TransferID) (*models.Transfer, error)
	InsertTransfer(ctx context.Context, t models.NewTransfer) (*models.Transfer, error)
	MarkConfirmed(ctx context.Context, id domain.TransferID, at time.Time) (bool, error)
	SetHolder(ctx context.Context, keyID domain.KeyID, holder domain.UserID, at time.Time) error
	ConfirmAtomic(ctx context.Context, id domain.TransferID) error
	DeletePending(ctx context.Context, id domain.TransferID) (bool, error)
	DisplayNames(ctx context.Context, ids []domain.UserID) (map[domain.UserID]string, error)
}

// Metrics records custody outcomes. *metrics.Metrics satisfies it.
type Metrics interface {
	IncKeyTransfer(action string)
	IncKeyPartialWrite()
	SetKeyInconsistencies(n int)
}

// Transfer actions reported to Metrics.
const (
	ActionInitiated = "initiated"
	ActionConfirmed = "confirmed"
	ActionCancelled = "cancelled"
)

type Option func(*Service)

// Service runs the custody workflow against one visitor's store.
type Service struct {
	store         Store
	logger        *slog.Logger
	audit         *audit.Logger
	metrics       Metrics
	historyLimit  int
	atomicConfirm bool
}

func New(store Store, opts ...Option) *Service {
	svc := &Service{
		store:        store,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		historyLimit: models.DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithAuditLogger(l *audit.Logger) Option {
	return func(s *Service) {
		s.audit = l
	}
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithHistoryLimit sets the default size of the ledger view. Values <= 0
// keep the default of 20.
func WithHistoryLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// WithAtomicConfirm confirms transfers through the confirm_key_transfer
// backend function instead of three separate requests.
func WithAtomicConfirm(enabled bool) Option {
	return func(s *Service) {
		s.atomicConfirm = enabled
	}
}

// ListKeys returns every key by key number with its holder's name.
func (s *Service) ListKeys(ctx context.Context) ([]models.Key, error) {
	keys, err := s.store.ListKeys(ctx)
	if err != nil {
		return nil, translate(err, "failed to list keys")
	}
	var holders []domain.UserID
	for _, k := range keys {
		if k.CurrentHolderID != nil {
			holders = append(holders, *k.CurrentHolderID)
		}
	}
	if len(holders) == 0 {
		return keys, nil
	}
	names := s.names(ctx, holders)
	for i := range keys {
		if keys[i].CurrentHolderID != nil {
			keys[i].HolderName = nameOr(names, *keys[i].CurrentHolderID)
		}
	}
	return keys, nil
}

// ListPendingTransfers returns unconfirmed transfers, newest first.
func (s *Service) ListPendingTransfers(ctx context.Context) ([]models.Transfer, error) {
	transfers, err := s.store.ListPending(ctx)
	if err != nil {
		return nil, translate(err, "failed to list pending transfers")
	}
	s.nameParties(ctx, transfers)
	return transfers, nil
}

// ListTransferHistory returns at most limit confirmed transfers, most
// recently confirmed first. limit <= 0 uses the configured default.
func (s *Service) ListTransferHistory(ctx context.Context, limit int) ([]models.Transfer, error) {
	if limit <= 0 {
		limit = s.historyLimit
	}
	transfers, err := s.store.ListConfirmed(ctx, limit)
	if err != nil {
		return nil, translate(err, "failed to list transfer history")
	}
	s.nameParties(ctx, transfers)
	return transfers, nil
}

// InitiateTransfer records a pending handoff of keyID to toUserID. from may
// be nil for a first handout. Neither the current holder nor from != to is
// checked; the confirming officer is the control.
func (s *Service) InitiateTransfer(ctx context.Context, keyID domain.KeyID, from *domain.UserID, to domain.UserID) (*models.Transfer, error) {
	if keyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "key is required")
	}
	if to.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "recipient is required")
	}
	t, err := s.store.InsertTransfer(ctx, models.NewTransfer{KeyID: keyID, FromUserID: from, ToUserID: to})
	if err != nil {
		return nil, translate(err, "failed to initiate transfer")
	}
	s.count(ActionInitiated)
	s.audit.Log(ctx, audit.EventKeyTransferInitiated,
		"actor_id", actor(ctx),
		"subject", t.ID.String(),
		"key_id", keyID.String(),
		"from_user_id", optionalID(from),
		"to_user_id", to.String(),
	)
	return t, nil
}

// ConfirmTransfer completes a pending handoff: the transfer becomes ledger
// history and the key passes to the recipient. An already confirmed transfer
// is rejected with CodeConflict and the key is left alone.
func (s *Service) ConfirmTransfer(ctx context.Context, id domain.TransferID) error {
	if s.atomicConfirm {
		return s.confirmAtomic(ctx, id)
	}

	t, err := s.store.FindTransfer(ctx, id)
	if err != nil {
		return translate(err, "failed to read transfer")
	}
	if t.Confirmed {
		return dErrors.New(dErrors.CodeConflict, "transfer already confirmed")
	}

	now := requesttime.Now(ctx)
	updated, err := s.store.MarkConfirmed(ctx, id, now)
	if err != nil {
		return translate(err, "failed to confirm transfer")
	}
	if !updated {
		return dErrors.New(dErrors.CodeConflict, "transfer already confirmed")
	}

	if err := s.store.SetHolder(ctx, t.KeyID, t.ToUserID, now); err != nil {
		if s.metrics != nil {
			s.metrics.IncKeyPartialWrite()
		}
		s.logger.ErrorContext(ctx, "transfer confirmed but key holder not updated",
			"transfer_id", id.String(),
			"key_id", t.KeyID.String(),
			"error", err,
		)
		return translate(err, "failed to update key holder")
	}
	s.confirmed(ctx, t)
	return nil
}

func (s *Service) confirmAtomic(ctx context.Context, id domain.TransferID) error {
	t, err := s.store.FindTransfer(ctx, id)
	if err != nil {
		return translate(err, "failed to read transfer")
	}
	if err := s.store.ConfirmAtomic(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeConflict, "transfer already confirmed")
		}
		return translate(err, "failed to confirm transfer")
	}
	s.confirmed(ctx, t)
	return nil
}

func (s *Service) confirmed(ctx context.Context, t *models.Transfer) {
	s.count(ActionConfirmed)
	s.audit.Log(ctx, audit.EventKeyTransferConfirmed,
		"actor_id", actor(ctx),
		"subject", t.ID.String(),
		"key_id", t.KeyID.String(),
		"to_user_id", t.ToUserID.String(),
	)
}

// CancelTransfer deletes a pending transfer. Confirmed transfers are ledger
// history: they cannot be cancelled and yield CodeConflict.
func (s *Service) CancelTransfer(ctx context.Context, id domain.TransferID) error {
	deleted, err := s.store.DeletePending(ctx, id)
	if err != nil {
		return translate(err, "failed to cancel transfer")
	}
	if !deleted {
		t, err := s.store.FindTransfer(ctx, id)
		switch {
		case err != nil:
			return translate(err, "failed to cancel transfer")
		case t.Confirmed:
			return dErrors.New(dErrors.CodeConflict, "confirmed transfers cannot be cancelled")
		default:
			return dErrors.New(dErrors.CodeInternal, "transfer was not deleted")
		}
	}
	s.count(ActionCancelled)
	s.audit.Log(ctx, audit.EventKeyTransferCancelled, "actor_id", actor(ctx), "subject", id.String())
	return nil
}

// Board loads the custody page. Keys and pending transfers must load; the
// ledger is best effort and comes back empty when it cannot be read.
func (s *Service) Board(ctx context.Context) (*models.Board, error) {
	board := &models.Board{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		keys, err := s.ListKeys(gctx)
		board.Keys = keys
		return err
	})
	g.Go(func() error {
		pending, err := s.ListPendingTransfers(gctx)
		board.Pending = pending
		return err
	})
	g.Go(func() error {
		history, err := s.ListTransferHistory(gctx, 0)
		if err != nil {
			s.logger.WarnContext(ctx, "transfer history unavailable", "error", err)
			history = []models.Transfer{}
		}
		board.History = history
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return board, nil
}

func (s *Service) count(action string) {
	if s.metrics != nil {
		s.metrics.IncKeyTransfer(action)
	}
}

// names resolves display names, logging and returning nothing on failure so
// every party falls back to the unknown label.
func (s *Service) names(ctx context.Context, ids []domain.UserID) map[domain.UserID]string {
	names, err := s.store.DisplayNames(ctx, ids)
	if err != nil {
		s.logger.WarnContext(ctx, "holder names unavailable", "error", err)
		return nil
	}
	return names
}

func (s *Service) nameParties(ctx context.Context, transfers []models.Transfer) {
	var ids []domain.UserID
	for _, t := range transfers {
		ids = append(ids, t.ToUserID)
		if t.FromUserID != nil {
			ids = append(ids, *t.FromUserID)
		}
	}
	if len(ids) == 0 {
		return
	}
	names := s.names(ctx, ids)
	for i := range transfers {
		transfers[i].ToUserName = nameOr(names, transfers[i].ToUserID)
		if transfers[i].FromUserID != nil {
			transfers[i].FromUserName = nameOr(names, *transfers[i].FromUserID)
		}
	}
}

func nameOr(names map[domain.UserID]string, id domain.UserID) string {
	if n, ok := names[id]; ok {
		return n
	}
	return models.UnknownHolder
}

func optionalID(id *domain.UserID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func actor(ctx context.Context) string {
	if id := requestcontext.UserID(ctx); !id.IsNil() {
		return id.String()
	}
	return ""
}

// translate maps store failures onto domain error codes once.
func translate(err error, msg string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, msg)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, msg)
	case errors.Is(err, sentinel.ErrUnauthorized):
		return dErrors.Wrap(err, dErrors.CodeForbidden, msg)
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
