// Package store reads and writes the key custody tables through the
// visitor's data API connection.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orcs/internal/backend"
	"orcs/internal/keys/models"
	"orcs/pkg/domain"
	"orcs/pkg/platform/sentinel"
)

// ErrNotFound is returned when a key or transfer does not exist.
var ErrNotFound = sentinel.ErrNotFound

// Store is the DataAPI-backed custody store. Errors from the backend are
// returned wrapped; *backend.Error matches the sentinel errors.
type Store struct {
	data backend.DataAPI
}

func New(data backend.DataAPI) *Store {
	return &Store{data: data}
}

// ListKeys returns every key ordered by key number.
func (s *Store) ListKeys(ctx context.Context) ([]models.Key, error) {
	var keys []models.Key
	q := backend.From(backend.TableKeys).OrderAsc("key_number")
	if err := s.data.Select(ctx, q, &keys); err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	return keys, nil
}

// ListPending returns unconfirmed transfers, newest first.
func (s *Store) ListPending(ctx context.Context) ([]models.Transfer, error) {
	var transfers []models.Transfer
	q := backend.From(backend.TableKeyTransfers).
		Eq("confirmed", false).
		OrderDesc("transfer_date")
	if err := s.data.Select(ctx, q, &transfers); err != nil {
		return nil, fmt.Errorf("listing pending transfers: %w", err)
	}
	return transfers, nil
}

// ListConfirmed returns confirmed transfers, most recently confirmed first.
// limit <= 0 returns all of them.
func (s *Store) ListConfirmed(ctx context.Context, limit int) ([]models.Transfer, error) {
	var transfers []models.Transfer
	q := backend.From(backend.TableKeyTransfers).
		Eq("confirmed", true).
		OrderDesc("confirmed_at")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := s.data.Select(ctx, q, &transfers); err != nil {
		return nil, fmt.Errorf("listing transfer history: %w", err)
	}
	return transfers, nil
}

// FindTransfer returns one transfer or ErrNotFound.
func (s *Store) FindTransfer(ctx context.Context, id domain.TransferID) (*models.Transfer, error) {
	var t models.Transfer
	err := s.data.SelectOne(ctx, backend.From(backend.TableKeyTransfers).Eq("id", id), &t)
	if errors.Is(err, backend.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading transfer %s: %w", id, err)
	}
	return &t, nil
}

// InsertTransfer records a pending transfer and returns the stored row.
func (s *Store) InsertTransfer(ctx context.Context, t models.NewTransfer) (*models.Transfer, error) {
	var created models.Transfer
	if err := s.data.Insert(ctx, backend.TableKeyTransfers, t, &created); err != nil {
		return nil, fmt.Errorf("inserting transfer: %w", err)
	}
	return &created, nil
}

// MarkConfirmed flags a pending transfer as confirmed. It only touches rows
// still unconfirmed and reports whether one was updated.
func (s *Store) MarkConfirmed(ctx context.Context, id domain.TransferID, at time.Time) (bool, error) {
	q := backend.From(backend.TableKeyTransfers).Eq("id", id).Eq("confirmed", false)
	n, err := s.data.Update(ctx, q, map[string]any{
		"confirmed":    true,
		"confirmed_at": at.UTC(),
	})
	if err != nil {
		return false, fmt.Errorf("confirming transfer %s: %w", id, err)
	}
	return n > 0, nil
}

// SetHolder hands a key to holder and marks it held.
func (s *Store) SetHolder(ctx context.Context, keyID domain.KeyID, holder domain.UserID, at time.Time) error {
	n, err := s.data.Update(ctx, backend.From(backend.TableKeys).Eq("id", keyID), map[string]any{
		"current_holder_id": holder,
		"status":            models.KeyHeld,
		"updated_at":        at.UTC(),
	})
	if err != nil {
		return fmt.Errorf("updating holder of key %s: %w", keyID, err)
	}
	if n == 0 {
		return fmt.Errorf("updating holder of key %s: %w", keyID, ErrNotFound)
	}
	return nil
}

// ConfirmAtomic runs the whole handoff in one backend transaction.
func (s *Store) ConfirmAtomic(ctx context.Context, id domain.TransferID) error {
	err := s.data.RPC(ctx, backend.FnConfirmKeyTransfer, map[string]any{"transfer_id": id}, nil)
	if err != nil {
		return fmt.Errorf("confirming transfer %s: %w", id, err)
	}
	return nil
}

// DeletePending removes an unconfirmed transfer and reports whether one was
// removed. Confirmed transfers are never deleted.
func (s *Store) DeletePending(ctx context.Context, id domain.TransferID) (bool, error) {
	q := backend.From(backend.TableKeyTransfers).Eq("id", id).Eq("confirmed", false)
	n, err := s.data.Delete(ctx, q)
	if err != nil {
		return false, fmt.Errorf("deleting transfer %s: %w", id, err)
	}
	return n > 0, nil
}

// DisplayNames returns full names by user id. Users without a readable
// profile or without a name are absent from the map.
func (s *Store) DisplayNames(ctx context.Context, ids []domain.UserID) (map[domain.UserID]string, error) {
	names := make(map[domain.UserID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var rows []struct {
		ID       domain.UserID `json:"id"`
		FullName *string       `json:"full_name"`
	}
	q := backend.From(backend.TableProfiles).Select("id,full_name").In("id", backend.Values(ids)...)
	if err := s.data.Select(ctx, q, &rows); err != nil {
		return nil, fmt.Errorf("reading holder names: %w", err)
	}
	for _, r := range rows {
		if r.FullName != nil && *r.FullName != "" {
			names[r.ID] = *r.FullName
		}
	}
	return names, nil
}
