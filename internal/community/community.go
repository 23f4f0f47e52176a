// Package community records members' requests to join the club's chat
// communities.
package community

import (
	"context"
	"errors"
	"time"

	"orcs/internal/backend"
	"orcs/pkg/domain"
	dErrors "orcs/pkg/domain-errors"
	"orcs/pkg/platform/audit"
	"orcs/pkg/platform/sentinel"
)

// Community is a chat space a member can ask to join.
type Community string

const (
	Discord  Community = "discord"
	WhatsApp Community = "whatsapp"
)

func (c Community) IsValid() bool {
	return c == Discord || c == WhatsApp
}

// Status is assigned by the backend when an organizer handles the request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

const msgAlreadyRequested = "Demande déjà envoyée ou impossible."

type Request struct {
	ID        string        `json:"id"`
	UserID    domain.UserID `json:"user_id"`
	Community Community     `json:"community"`
	Status    Status        `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

type Service struct {
	data  backend.DataAPI
	audit *audit.Logger
}

func New(data backend.DataAPI, auditLogger *audit.Logger) *Service {
	return &Service{data: data, audit: auditLogger}
}

// List returns the user's requests, oldest first.
func (s *Service) List(ctx context.Context, userID domain.UserID) ([]Request, error) {
	reqs := []Request{}
	q := backend.From(backend.TableCommunityRequests).Eq("user_id", userID).OrderAsc("created_at")
	if err := s.data.Select(ctx, q, &reqs); err != nil {
		return nil, translate(err, "failed to list community requests")
	}
	return reqs, nil
}

// Request asks for access to a community and returns the user's requests
// re-read. A second request for the same community is refused.
func (s *Service) Request(ctx context.Context, userID domain.UserID, c Community) ([]Request, error) {
	if !c.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "community must be discord or whatsapp")
	}
	row := map[string]any{"user_id": userID, "community": c}
	if err := s.data.Insert(ctx, backend.TableCommunityRequests, row, nil); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, msgAlreadyRequested)
		}
		return nil, translate(err, "failed to request community access")
	}
	s.audit.Log(ctx, audit.EventCommunityAccessAsked,
		"actor_id", userID.String(),
		"subject", userID.String(),
		"reason", string(c),
	)
	return s.List(ctx, userID)
}

func translate(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrUnauthorized):
		return dErrors.Wrap(err, dErrors.CodeForbidden, msg)
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
