package handler

import (
	"strings"

	"orcs/pkg/domain"
	dErrors "orcs/pkg/domain-errors"
	"orcs/pkg/validation"
)

// InitiateRequest starts a key handoff. FromUserID is optional.
type InitiateRequest struct {
	KeyID      string `json:"key_id" validate:"required,uuid"`
	FromUserID string `json:"from_user_id" validate:"omitempty,uuid"`
	ToUserID   string `json:"to_user_id" validate:"required,uuid"`
}

func (r *InitiateRequest) Normalize() {
	if r == nil {
		return
	}
	r.KeyID = strings.TrimSpace(r.KeyID)
	r.FromUserID = strings.TrimSpace(r.FromUserID)
	r.ToUserID = strings.TrimSpace(r.ToUserID)
}

func (r *InitiateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

// IDs converts a validated request into typed ids.
func (r *InitiateRequest) IDs() (domain.KeyID, *domain.UserID, domain.UserID, error) {
	key, err := domain.ParseKeyID(r.KeyID)
	if err != nil {
		return domain.KeyID{}, nil, domain.UserID{}, dErrors.Wrap(err, dErrors.CodeValidation, "key_id must be a valid uuid")
	}
	to, err := domain.ParseUserID(r.ToUserID)
	if err != nil {
		return domain.KeyID{}, nil, domain.UserID{}, dErrors.Wrap(err, dErrors.CodeValidation, "to_user_id must be a valid uuid")
	}
	if r.FromUserID == "" {
		return key, nil, to, nil
	}
	from, err := domain.ParseUserID(r.FromUserID)
	if err != nil {
		return domain.KeyID{}, nil, domain.UserID{}, dErrors.Wrap(err, dErrors.CodeValidation, "from_user_id must be a valid uuid")
	}
	return key, &from, to, nil
}
