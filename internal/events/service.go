// Package events manages the club calendar and event registrations.
package events

import (
	"context"
	"errors"

	"orcs/internal/backend"
	"orcs/pkg/domain"
	dErrors "orcs/pkg/domain-errors"
	"orcs/pkg/platform/sentinel"
	"orcs/pkg/requestcontext"
	strutil "orcs/pkg/string"
	"orcs/pkg/validation"
)

type Service struct {
	data backend.DataAPI
}

func New(data backend.DataAPI) *Service {
	return &Service{data: data}
}

// List returns every event by start date.
func (s *Service) List(ctx context.Context) ([]Event, error) {
	events := []Event{}
	if err := s.data.Select(ctx, backend.From(backend.TableEvents).OrderAsc("start_date"), &events); err != nil {
		return nil, translate(err, "failed to list events")
	}
	return events, nil
}

func (s *Service) Get(ctx context.Context, id domain.EventID) (*Event, error) {
	var e Event
	err := s.data.SelectOne(ctx, backend.From(backend.TableEvents).Eq("id", id), &e)
	if errors.Is(err, backend.ErrNoRows) {
		return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
	}
	if err != nil {
		return nil, translate(err, "failed to read event")
	}
	return &e, nil
}

// Create schedules an event authored by the acting user.
func (s *Service) Create(ctx context.Context, in Input) (*Event, error) {
	row, err := prepare(in)
	if err != nil {
		return nil, err
	}
	if author := requestcontext.UserID(ctx); !author.IsNil() {
		row["created_by"] = author
	}
	var created Event
	if err := s.data.Insert(ctx, backend.TableEvents, row, &created); err != nil {
		return nil, translate(err, "failed to create event")
	}
	return &created, nil
}

// Update replaces the writable fields of an event and returns it re-read.
func (s *Service) Update(ctx context.Context, id domain.EventID, in Input) (*Event, error) {
	row, err := prepare(in)
	if err != nil {
		return nil, err
	}
	n, err := s.data.Update(ctx, backend.From(backend.TableEvents).Eq("id", id), row)
	if err != nil {
		return nil, translate(err, "failed to update event")
	}
	if n == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id domain.EventID) error {
	n, err := s.data.Delete(ctx, backend.From(backend.TableEvents).Eq("id", id))
	if err != nil {
		return translate(err, "failed to delete event")
	}
	if n == 0 {
		return dErrors.New(dErrors.CodeNotFound, "event not found")
	}
	return nil
}

func prepare(in Input) (map[string]any, error) {
	strutil.TrimStrings(&in.Title)
	if err := validation.Validate(in); err != nil {
		return nil, err
	}
	if in.EndDate != nil && in.EndDate.Before(in.StartDate) {
		return nil, dErrors.New(dErrors.CodeValidation, "end_date must not be before start_date")
	}
	return map[string]any{
		"title":              in.Title,
		"description":        in.Description,
		"event_type":         in.EventType,
		"start_date":         in.StartDate.UTC(),
		"end_date":           in.EndDate,
		"location":           in.Location,
		"price":              in.Price,
		"max_participants":   in.MaxParticipants,
		"payment_link":       in.PaymentLink,
		"is_recurring":       in.IsRecurring,
		"recurrence_pattern": in.RecurrencePattern,
	}, nil
}

// Registrations lists who signed up for an event.
func (s *Service) Registrations(ctx context.Context, eventID domain.EventID) ([]Registration, error) {
	regs := []Registration{}
	q := backend.From(backend.TableEventRegistrations).Eq("event_id", eventID).OrderAsc("registered_at")
	if err := s.data.Select(ctx, q, &regs); err != nil {
		return nil, translate(err, "failed to list registrations")
	}
	return regs, nil
}

// UserRegistration returns the user's registration, or nil when there is none.
func (s *Service) UserRegistration(ctx context.Context, eventID domain.EventID, userID domain.UserID) (*Registration, error) {
	var r Registration
	q := backend.From(backend.TableEventRegistrations).Eq("event_id", eventID).Eq("user_id", userID)
	err := s.data.SelectOne(ctx, q, &r)
	if errors.Is(err, backend.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, "failed to read registration")
	}
	return &r, nil
}

// Register signs userID up for an event. Once max_participants registrations
// exist, newcomers go on the waitlist. Registering twice is a conflict.
func (s *Service) Register(ctx context.Context, eventID domain.EventID, userID domain.UserID) (*Registration, error) {
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	status := RegistrationRegistered
	if event.MaxParticipants != nil {
		regs, err := s.Registrations(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if countRegistered(regs) >= *event.MaxParticipants {
			status = RegistrationWaitlist
		}
	}

	var created Registration
	row := map[string]any{"event_id": eventID, "user_id": userID, "status": status}
	if err := s.data.Insert(ctx, backend.TableEventRegistrations, row, &created); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "already registered")
		}
		return nil, translate(err, "failed to register")
	}
	return &created, nil
}

// CancelRegistration withdraws userID from an event.
func (s *Service) CancelRegistration(ctx context.Context, eventID domain.EventID, userID domain.UserID) error {
	q := backend.From(backend.TableEventRegistrations).Eq("event_id", eventID).Eq("user_id", userID)
	n, err := s.data.Delete(ctx, q)
	if err != nil {
		return translate(err, "failed to cancel registration")
	}
	if n == 0 {
		return dErrors.New(dErrors.CodeNotFound, "registration not found")
	}
	return nil
}

func countRegistered(regs []Registration) int {
	n := 0
	for _, r := range regs {
		if r.Status == RegistrationRegistered {
			n++
		}
	}
	return n
}

func translate(err error, msg string) error {
	switch {
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
