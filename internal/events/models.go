package events

import (
	"time"

	"orcs/pkg/domain"
)

// Type is the kind of club event.
type Type string

const (
	TypeRolePlay  Type = "jdr"
	TypeBoardGame Type = "board_game"
	TypeMagic     Type = "mtg"
	TypeOther     Type = "other"
)

// Event is a scheduled club event.
type Event struct {
	ID                domain.EventID `json:"id"`
	Title             string         `json:"title"`
	Description       *string        `json:"description"`
	EventType         Type           `json:"event_type"`
	StartDate         time.Time      `json:"start_date"`
	EndDate           *time.Time     `json:"end_date"`
	Location          *string        `json:"location"`
	Price             float64        `json:"price"`
	MaxParticipants   *int           `json:"max_participants"`
	PaymentLink       *string        `json:"payment_link"`
	IsRecurring       bool           `json:"is_recurring"`
	RecurrencePattern *string        `json:"recurrence_pattern"`
	CreatedBy         *domain.UserID `json:"created_by"`
	CreatedAt         time.Time      `json:"created_at"`
}

// Free reports whether the event costs nothing.
func (e Event) Free() bool {
	return e.Price == 0
}

// Input is the writable part of an event.
type Input struct {
	Title             string     `json:"title" validate:"required,notblank,max=200"`
	Description       *string    `json:"description" validate:"omitempty,max=5000"`
	EventType         Type       `json:"event_type" validate:"required,oneof=jdr board_game mtg other"`
	StartDate         time.Time  `json:"start_date" validate:"required"`
	EndDate           *time.Time `json:"end_date"`
	Location          *string    `json:"location" validate:"omitempty,max=200"`
	Price             float64    `json:"price" validate:"gte=0"`
	MaxParticipants   *int       `json:"max_participants" validate:"omitempty,gte=1"`
	PaymentLink       *string    `json:"payment_link" validate:"omitempty,url"`
	IsRecurring       bool       `json:"is_recurring"`
	RecurrencePattern *string    `json:"recurrence_pattern" validate:"omitempty,max=200"`
}

// RegistrationStatus is a member's place on an event.
type RegistrationStatus string

const (
	RegistrationRegistered RegistrationStatus = "registered"
	RegistrationCancelled  RegistrationStatus = "cancelled"
	RegistrationWaitlist   RegistrationStatus = "waitlist"
)

// Registration ties a member to an event.
type Registration struct {
	ID           domain.RegistrationID `json:"id"`
	EventID      domain.EventID        `json:"event_id"`
	UserID       domain.UserID         `json:"user_id"`
	Status       RegistrationStatus    `json:"status"`
	RegisteredAt time.Time             `json:"registered_at"`
}

// Month groups the events starting in one calendar month.
type Month struct {
	// Key is the month as YYYY-MM.
	Key    string  `json:"month"`
	Events []Event `json:"events"`
}
