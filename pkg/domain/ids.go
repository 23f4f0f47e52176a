// Package domain provides type-safe identifiers and the club's shared value objects.
package domain

import (
	"github.com/google/uuid"

	dErrors "orcs/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing a KeyID where a TransferID is expected.
type (
	UserID         uuid.UUID
	KeyID          uuid.UUID
	TransferID     uuid.UUID
	AssignmentID   uuid.UUID
	EventID        uuid.UUID
	RegistrationID uuid.UUID
)

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseUserID(s string) (UserID, error) {
	id, err := parseUUID(s, "user ID")
	return UserID(id), err
}

func ParseKeyID(s string) (KeyID, error) {
	id, err := parseUUID(s, "key ID")
	return KeyID(id), err
}

func ParseTransferID(s string) (TransferID, error) {
	id, err := parseUUID(s, "transfer ID")
	return TransferID(id), err
}

func ParseAssignmentID(s string) (AssignmentID, error) {
	id, err := parseUUID(s, "board assignment ID")
	return AssignmentID(id), err
}

func ParseEventID(s string) (EventID, error) {
	id, err := parseUUID(s, "event ID")
	return EventID(id), err
}

// String methods - for logging and query values.

func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id KeyID) String() string          { return uuid.UUID(id).String() }
func (id TransferID) String() string     { return uuid.UUID(id).String() }
func (id AssignmentID) String() string   { return uuid.UUID(id).String() }
func (id EventID) String() string        { return uuid.UUID(id).String() }
func (id RegistrationID) String() string { return uuid.UUID(id).String() }

// IsNil checks - used for service-layer validation.

func (id UserID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id KeyID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id TransferID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id AssignmentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }

// Text marshaling keeps the ids readable as plain uuid strings in JSON rows.

func (id UserID) MarshalText() ([]byte, error)         { return uuid.UUID(id).MarshalText() }
func (id KeyID) MarshalText() ([]byte, error)          { return uuid.UUID(id).MarshalText() }
func (id TransferID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id AssignmentID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id EventID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id RegistrationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error         { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *KeyID) UnmarshalText(b []byte) error          { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *TransferID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *AssignmentID) UnmarshalText(b []byte) error   { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *EventID) UnmarshalText(b []byte) error        { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *RegistrationID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

// NewUserID generates a random user id. Only the in-memory backend mints ids.
func NewUserID() UserID { return UserID(uuid.New()) }

// parseUUID is the shared validation logic.
// Nil UUIDs are allowed here; services reject them with IsNil() so that
// lookups of unknown ids still surface as "not found".
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	return id, nil
}
