package models

import (
	"time"

	"orcs/pkg/domain"
)

// UnknownHolder is shown when a holder's profile cannot be read.
const UnknownHolder = "Inconnu"

// DefaultHistoryLimit caps the confirmed transfer ledger view.
const DefaultHistoryLimit = 20

// KeyStatus is the custody state of a physical key.
type KeyStatus string

const (
	KeyAvailable KeyStatus = "available"
	KeyHeld      KeyStatus = "held"
)

// Key is a numbered physical key to the club premises. A held key always has
// a holder; an available key never does.
type Key struct {
	ID              domain.KeyID   `json:"id"`
	KeyNumber       int            `json:"key_number"`
	CurrentHolderID *domain.UserID `json:"current_holder_id"`
	Status          KeyStatus      `json:"status"`
	UpdatedAt       time.Time      `json:"updated_at"`
	HolderName      string         `json:"holder_name,omitempty"`
}

// Held reports whether the key is in someone's hands.
func (k Key) Held() bool {
	return k.Status == KeyHeld
}

// Transfer is a handoff of a key between two members. A pending transfer
// either gets confirmed, after which it is permanent ledger history, or gets
// deleted.
type Transfer struct {
	ID           domain.TransferID `json:"id"`
	KeyID        domain.KeyID      `json:"key_id"`
	FromUserID   *domain.UserID    `json:"from_user_id"`
	ToUserID     domain.UserID     `json:"to_user_id"`
	TransferDate time.Time         `json:"transfer_date"`
	Confirmed    bool              `json:"confirmed"`
	ConfirmedAt  *time.Time        `json:"confirmed_at"`
	FromUserName string            `json:"from_user_name,omitempty"`
	ToUserName   string            `json:"to_user_name,omitempty"`
}

// NewTransfer is the row written when a transfer is initiated.
type NewTransfer struct {
	KeyID      domain.KeyID   `json:"key_id"`
	FromUserID *domain.UserID `json:"from_user_id"`
	ToUserID   domain.UserID  `json:"to_user_id"`
}

// Board is the custody page: every key plus the open and settled transfers.
type Board struct {
	Keys    []Key      `json:"keys"`
	Pending []Transfer `json:"pending_transfers"`
	History []Transfer `json:"transfer_history"`
}

// InconsistencyKind names what Reconcile found wrong with a key.
type InconsistencyKind string

const (
	// StatusHolderMismatch: status says held without a holder, or available with one.
	StatusHolderMismatch InconsistencyKind = "status_holder_mismatch"
	// LedgerHolderMismatch: the latest confirmed transfer went to someone
	// other than the recorded holder.
	LedgerHolderMismatch InconsistencyKind = "ledger_holder_mismatch"
)

// Inconsistency is a key whose row disagrees with itself or with the ledger,
// typically left behind by a confirm that stopped between its writes.
type Inconsistency struct {
	KeyID          domain.KeyID       `json:"key_id"`
	KeyNumber      int                `json:"key_number"`
	Kind           InconsistencyKind  `json:"kind"`
	HolderID       *domain.UserID     `json:"holder_id"`
	LedgerHolderID *domain.UserID     `json:"ledger_holder_id,omitempty"`
	TransferID     *domain.TransferID `json:"transfer_id,omitempty"`
}
