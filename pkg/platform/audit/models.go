package audit

import (
	"context"
	"time"

	"orcs/pkg/domain"
)

// Event is emitted from domain logic to capture custody and membership
// actions. Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time     `json:"timestamp"`
	ActorID   domain.UserID `json:"actor_id"`
	Subject   string        `json:"subject"`
	Action    string        `json:"action"`
	Reason    string        `json:"reason,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

type AuditEvent string

const (
	EventSignedIn             AuditEvent = "signed_in"
	EventSignedOut            AuditEvent = "signed_out"
	EventSignedUp             AuditEvent = "signed_up"
	EventMemberStatusChanged  AuditEvent = "member_status_changed"
	EventBoardMemberAdded     AuditEvent = "board_member_added"
	EventBoardMemberRemoved   AuditEvent = "board_member_removed"
	EventKeyTransferInitiated AuditEvent = "key_transfer_initiated"
	EventKeyTransferConfirmed AuditEvent = "key_transfer_confirmed"
	EventKeyTransferCancelled AuditEvent = "key_transfer_cancelled"
	EventKeyInconsistency     AuditEvent = "key_inconsistency"
	EventCommunityAccessAsked AuditEvent = "community_access_requested"
	EventSignInLocked         AuditEvent = "sign_in_locked"
)

// Custody reports whether the event belongs to the key ledger trail.
func (e AuditEvent) Custody() bool {
	switch e {
	case EventKeyTransferInitiated, EventKeyTransferConfirmed, EventKeyTransferCancelled, EventKeyInconsistency:
		return true
	}
	return false
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	Recent(ctx context.Context, limit int) ([]Event, error)
}
