package session

import (
	"context"
	"errors"

	"orcs/internal/backend"
	"orcs/pkg/platform/sentinel"
)

// AuthReason classifies auth service rejections.
type AuthReason string

const (
	ReasonInvalidCredentials AuthReason = "invalid_credentials"
	ReasonEmailNotConfirmed  AuthReason = "email_not_confirmed"
	ReasonWeakPassword       AuthReason = "weak_password"
	ReasonUserExists         AuthReason = "user_exists"
	ReasonInvalidEmail       AuthReason = "invalid_email"
	ReasonUnavailable        AuthReason = "unavailable"
	ReasonOther              AuthReason = "other"
)

// AuthError is returned by SignIn and SignUp.
type AuthError struct {
	Reason  AuthReason
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "auth: " + string(e.Reason)
	}
	return "auth: " + string(e.Reason) + ": " + e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }

// UserMessage is the French text shown to the visitor.
func (e *AuthError) UserMessage() string {
	switch e.Reason {
	case ReasonInvalidCredentials:
		return "Email ou mot de passe incorrect"
	case ReasonEmailNotConfirmed:
		return "Veuillez confirmer votre email avant de vous connecter"
	case ReasonWeakPassword:
		return "Le mot de passe doit contenir au moins 6 caractères"
	case ReasonUserExists:
		return "Un compte existe déjà avec cet email"
	case ReasonInvalidEmail:
		return "Email invalide"
	case ReasonUnavailable:
		return "Service momentanément indisponible, réessayez plus tard"
	}
	if e.Message != "" {
		return e.Message
	}
	return "Une erreur est survenue"
}

// Title is the heading the login page used for each reason.
func (e *AuthError) Title() string {
	switch e.Reason {
	case ReasonInvalidCredentials:
		return "Erreur de connexion"
	case ReasonEmailNotConfirmed:
		return "Email non confirmé"
	}
	return "Erreur"
}

func classifyAuthError(err error) *AuthError {
	ae := &AuthError{Reason: ReasonOther, Message: err.Error(), Err: err}
	var be *backend.Error
	if errors.As(err, &be) {
		ae.Message = be.Message
	}
	switch backend.CodeOf(err) {
	case backend.CodeInvalidCredentials:
		ae.Reason = ReasonInvalidCredentials
	case backend.CodeEmailNotConfirmed:
		ae.Reason = ReasonEmailNotConfirmed
	case backend.CodeWeakPassword:
		ae.Reason = ReasonWeakPassword
	case backend.CodeUserExists, backend.CodeEmailExists:
		ae.Reason = ReasonUserExists
	case backend.CodeInvalidEmail:
		ae.Reason = ReasonInvalidEmail
	default:
		if errors.Is(err, sentinel.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
			ae.Reason = ReasonUnavailable
		}
	}
	return ae
}

// AuthReasonOf returns the reason carried by err, or "" when err is not an AuthError.
func AuthReasonOf(err error) AuthReason {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Reason
	}
	return ""
}
