package httptransport

import (
	"strings"
	"time"

	"orcs/internal/community"
	"orcs/internal/events"
	"orcs/pkg/domain"
	dErrors "orcs/pkg/domain-errors"
	"orcs/pkg/validation"
)

type SignInRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required"`
}

func (r *SignInRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *SignInRequest) Validate() error {
	return validation.Validate(r)
}

type SignUpRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"full_name" validate:"max=120"`
}

func (r *SignUpRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FullName = strings.TrimSpace(r.FullName)
}

func (r *SignUpRequest) Validate() error {
	return validation.Validate(r)
}

type CommunityRequest struct {
	Community community.Community `json:"community"`
}

func (r *CommunityRequest) Normalize() {
	r.Community = community.Community(strings.ToLower(strings.TrimSpace(string(r.Community))))
}

func (r *CommunityRequest) Validate() error {
	if !r.Community.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "community must be one of [discord whatsapp]")
	}
	return nil
}

type StatusRequest struct {
	Status domain.MembershipStatus `json:"status"`
}

func (r *StatusRequest) Validate() error {
	if !r.Status.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "status must be one of [pending active inactive]")
	}
	return nil
}

type ActivitiesRequest struct {
	Activities []string `json:"activities"`
}

type BoardSeatRequest struct {
	UserID    domain.UserID    `json:"user_id"`
	BoardRole domain.BoardRole `json:"board_role"`
}

func (r *BoardSeatRequest) Validate() error {
	if r.UserID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "user_id is required")
	}
	if !r.BoardRole.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "board_role is invalid")
	}
	return nil
}

// EventRequest carries an event as the admin form sends it.
type EventRequest struct {
	Title             string      `json:"title"`
	Description       *string     `json:"description"`
	EventType         events.Type `json:"event_type"`
	StartDate         time.Time   `json:"start_date"`
	EndDate           *time.Time  `json:"end_date"`
	Location          *string     `json:"location"`
	Price             float64     `json:"price"`
	MaxParticipants   *int        `json:"max_participants"`
	PaymentLink       *string     `json:"payment_link"`
	IsRecurring       bool        `json:"is_recurring"`
	RecurrencePattern *string     `json:"recurrence_pattern"`
}

func (r *EventRequest) Input() events.Input {
	return events.Input{
		Title:             r.Title,
		Description:       r.Description,
		EventType:         r.EventType,
		StartDate:         r.StartDate,
		EndDate:           r.EndDate,
		Location:          r.Location,
		Price:             r.Price,
		MaxParticipants:   r.MaxParticipants,
		PaymentLink:       r.PaymentLink,
		IsRecurring:       r.IsRecurring,
		RecurrencePattern: r.RecurrencePattern,
	}
}
