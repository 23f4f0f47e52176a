// Package members manages club profiles: the directory, membership approval
// and members' own profile edits.
package members

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"orcs/internal/backend"
	"orcs/internal/notify"
	"orcs/pkg/domain"
	dErrors "orcs/pkg/domain-errors"
	"orcs/pkg/platform/audit"
	"orcs/pkg/platform/sentinel"
	pstrings "orcs/pkg/platform/strings"
	"orcs/pkg/requestcontext"
	strutil "orcs/pkg/string"
	"orcs/pkg/validation"
)

type Option func(*Service)

// Service reads and updates profiles through one visitor's connection.
type Service struct {
	data     backend.DataAPI
	notifier notify.Notifier
	audit    *audit.Logger
	logger   *slog.Logger
}

func New(data backend.DataAPI, opts ...Option) *Service {
	s := &Service{
		data:     data,
		notifier: notify.Nop{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithAuditLogger(l *audit.Logger) Option {
	return func(s *Service) { s.audit = l }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// List returns every profile, newest first.
func (s *Service) List(ctx context.Context) ([]Member, error) {
	return s.list(ctx, backend.From(backend.TableProfiles))
}

// ListPending returns profiles awaiting approval, newest first.
func (s *Service) ListPending(ctx context.Context) ([]Member, error) {
	return s.list(ctx, backend.From(backend.TableProfiles).Eq("membership_status", domain.MembershipPending))
}

func (s *Service) list(ctx context.Context, q backend.Query) ([]Member, error) {
	members := []Member{}
	if err := s.data.Select(ctx, q.OrderDesc("created_at"), &members); err != nil {
		return nil, translate(err, "failed to list members")
	}
	return members, nil
}

// Get returns one profile.
func (s *Service) Get(ctx context.Context, id domain.UserID) (*Member, error) {
	var m Member
	err := s.data.SelectOne(ctx, backend.From(backend.TableProfiles).Eq("id", id), &m)
	if errors.Is(err, backend.ErrNoRows) {
		return nil, dErrors.New(dErrors.CodeNotFound, "member not found")
	}
	if err != nil {
		return nil, translate(err, "failed to read member")
	}
	return &m, nil
}

// UpdateStatus approves, deactivates or reverts a membership and returns the
// re-read profile. Approving a pending member notifies them.
func (s *Service) UpdateStatus(ctx context.Context, id domain.UserID, status domain.MembershipStatus) (*Member, error) {
	if !status.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("invalid membership status: %s", status))
	}
	before, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.update(ctx, id, map[string]any{"membership_status": status}); err != nil {
		return nil, err
	}
	after, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.EventMemberStatusChanged,
		"actor_id", actor(ctx),
		"subject", id.String(),
		"reason", string(status),
	)
	if before.MembershipStatus == domain.MembershipPending && status == domain.MembershipActive {
		to := notify.Recipient{UserID: after.ID, Email: after.Email, Name: after.Name()}
		if err := s.notifier.MembershipApproved(ctx, to); err != nil {
			s.logger.WarnContext(ctx, "approval notification failed", "user_id", id.String(), "error", err)
		}
	}
	return after, nil
}

// UpdateActivities replaces a member's activity tags.
func (s *Service) UpdateActivities(ctx context.Context, id domain.UserID, activities []string) (*Member, error) {
	activities = pstrings.DedupeAndTrimLower(activities)
	if err := validation.Validate(struct {
		Activities []string `validate:"max=10,dive,activity"`
	}{activities}); err != nil {
		return nil, err
	}
	if err := s.update(ctx, id, map[string]any{"activities": activities}); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// SaveProfile stores a member's own name and activities.
func (s *Service) SaveProfile(ctx context.Context, id domain.UserID, upd ProfileUpdate) (*Member, error) {
	strutil.TrimStrings(&upd.FullName)
	upd.Activities = pstrings.DedupeAndTrimLower(upd.Activities)
	if err := validation.Validate(upd); err != nil {
		return nil, err
	}
	patch := map[string]any{
		"full_name":  upd.FullName,
		"activities": upd.Activities,
	}
	if err := s.update(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) update(ctx context.Context, id domain.UserID, patch map[string]any) error {
	n, err := s.data.Update(ctx, backend.From(backend.TableProfiles).Eq("id", id), patch)
	if err != nil {
		return translate(err, "failed to update member")
	}
	if n == 0 {
		return dErrors.New(dErrors.CodeNotFound, "member not found")
	}
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
	case errors.Is(err, sentinel.ErrUnauthorized):
		return dErrors.Wrap(err, dErrors.CodeForbidden, msg)
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
