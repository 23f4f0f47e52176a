// Package board manages the club's board seats.
package board

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orcs/internal/backend"
	"orcs/internal/members"
	"orcs/pkg/domain"
	dErrors "orcs/pkg/domain-errors"
	"orcs/pkg/platform/audit"
	"orcs/pkg/platform/middleware/requesttime"
	"orcs/pkg/platform/sentinel"
	"orcs/pkg/requestcontext"
)

// Assignment is a board seat held by a member. Dates are calendar days
// (YYYY-MM-DD) as the backend stores them.
type Assignment struct {
	ID        domain.AssignmentID `json:"id"`
	UserID    domain.UserID       `json:"user_id"`
	BoardRole domain.BoardRole    `json:"board_role"`
	StartDate string              `json:"start_date"`
	EndDate   *string             `json:"end_date"`
	IsActive  bool                `json:"is_active"`
	Profile   *members.Member     `json:"profile,omitempty"`
}

// Title is the French label of the seat.
func (a Assignment) Title() string {
	return a.BoardRole.Label()
}

type Service struct {
	data  backend.DataAPI
	audit *audit.Logger
}

func New(data backend.DataAPI, auditLogger *audit.Logger) *Service {
	return &Service{data: data, audit: auditLogger}
}

// ListActive returns the sitting board, ordered by seat, each with its
// member's profile when readable.
func (s *Service) ListActive(ctx context.Context) ([]Assignment, error) {
	seats := []Assignment{}
	q := backend.From(backend.TableBoardMembers).Eq("is_active", true).OrderAsc("board_role")
	if err := s.data.Select(ctx, q, &seats); err != nil {
		return nil, translate(err, "failed to list board")
	}
	if len(seats) == 0 {
		return seats, nil
	}

	ids := make([]domain.UserID, len(seats))
	for i, a := range seats {
		ids[i] = a.UserID
	}
	var profiles []members.Member
	if err := s.data.Select(ctx, backend.From(backend.TableProfiles).In("id", backend.Values(ids)...), &profiles); err != nil {
		return nil, translate(err, "failed to read board profiles")
	}
	byID := make(map[domain.UserID]*members.Member, len(profiles))
	for i := range profiles {
		byID[profiles[i].ID] = &profiles[i]
	}
	for i := range seats {
		seats[i].Profile = byID[seats[i].UserID]
	}
	return seats, nil
}

// MemberIDs returns the users holding an active seat.
func (s *Service) MemberIDs(ctx context.Context) ([]domain.UserID, error) {
	var rows []struct {
		UserID domain.UserID `json:"user_id"`
	}
	q := backend.From(backend.TableBoardMembers).Select("user_id").Eq("is_active", true)
	if err := s.data.Select(ctx, q, &rows); err != nil {
		return nil, translate(err, "failed to list board")
	}
	ids := make([]domain.UserID, len(rows))
	for i, r := range rows {
		ids[i] = r.UserID
	}
	return ids, nil
}

// Add seats userID in role. The board_member role tag is granted first and
// is kept if it already exists.
func (s *Service) Add(ctx context.Context, userID domain.UserID, role domain.BoardRole) (*Assignment, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "user_id is required")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("invalid board role: %s", role))
	}
	tag := map[string]any{"user_id": userID, "role": domain.RoleBoardMember}
	if err := s.data.Upsert(ctx, backend.TableUserRoles, tag, "user_id,role"); err != nil {
		return nil, translate(err, "failed to grant board role")
	}
	var created Assignment
	seat := map[string]any{"user_id": userID, "board_role": role}
	if err := s.data.Insert(ctx, backend.TableBoardMembers, seat, &created); err != nil {
		return nil, translate(err, "failed to add board member")
	}
	s.audit.Log(ctx, audit.EventBoardMemberAdded,
		"actor_id", actor(ctx),
		"subject", userID.String(),
		"reason", string(role),
	)
	return &created, nil
}

// Remove ends a seat as of today. The row is kept as history.
func (s *Service) Remove(ctx context.Context, id domain.AssignmentID) error {
	today := requesttime.Now(ctx).UTC().Format(time.DateOnly)
	n, err := s.data.Update(ctx, backend.From(backend.TableBoardMembers).Eq("id", id), map[string]any{
		"is_active": false,
		"end_date":  today,
	})
	if err != nil {
		return translate(err, "failed to remove board member")
	}
	if n == 0 {
		return dErrors.New(dErrors.CodeNotFound, "board seat not found")
	}
	s.audit.Log(ctx, audit.EventBoardMemberRemoved, "actor_id", actor(ctx), "subject", id.String())
	return nil
}

func actor(ctx context.Context) string {
	if id := requestcontext.UserID(ctx); !id.IsNil() {
		return id.String()
	}
	return ""
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
