package backend

import (
	"errors"
	"fmt"
	"net/http"

	"orcs/pkg/platform/sentinel"
)

var (
	ErrNoRows       = errors.New("backend: no rows")
	ErrMultipleRows = errors.New("backend: multiple rows")
	ErrClosed       = errors.New("backend: connection closed")
)

// Postgres / GoTrue error codes the portal reacts to.
const (
	CodeUniqueViolation    = "23505"
	CodeInvalidCredentials = "invalid_credentials"
	CodeEmailNotConfirmed  = "email_not_confirmed"
	CodeWeakPassword       = "weak_password"
	CodeUserExists         = "user_already_exists"
	CodeEmailExists        = "email_exists"
	CodeInvalidEmail       = "email_address_invalid"
	CodeValidationFailed   = "validation_failed"
)

// Error is a failure reported by the hosted service.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("backend %d: %s", e.Status, e.Message)
}

// Is maps service errors onto the shared sentinels so services can use errors.Is.
func (e *Error) Is(target error) bool {
	switch target {
	case sentinel.ErrConflict:
		return e.Status == http.StatusConflict || e.Code == CodeUniqueViolation
	case sentinel.ErrNotFound:
		return e.Status == http.StatusNotFound
	case sentinel.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case sentinel.ErrUnavailable:
		return e.Status >= http.StatusInternalServerError || e.Status == 0
	}
	return false
}

// CodeOf returns the service error code, or "" when err is not an *Error.
func CodeOf(err error) string {
	var be *Error
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
