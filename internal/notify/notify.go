// Package notify sends member-facing notifications. Email delivery belongs to
// the hosted backend's send-email function; this process only hands off.
package notify

import (
	"context"
	"log/slog"

	"orcs/pkg/domain"
	"orcs/pkg/requestcontext"
)

// FunctionSendEmail is the hosted function that delivers emails.
const FunctionSendEmail = "send-email"

// Template names understood by the send-email function.
const (
	TemplateMembershipApproved = "membership_approved"
)

// Recipient is who a notification is addressed to.
type Recipient struct {
	UserID domain.UserID
	Email  string
	Name   string
}

// Notifier delivers notifications triggered by admin actions.
type Notifier interface {
	MembershipApproved(ctx context.Context, to Recipient) error
}

// DeferredEmail records that an email is owed and leaves delivery to the
// send-email function.
type DeferredEmail struct {
	logger *slog.Logger
}

func NewDeferredEmail(logger *slog.Logger) *DeferredEmail {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeferredEmail{logger: logger}
}

func (d *DeferredEmail) MembershipApproved(ctx context.Context, to Recipient) error {
	d.logger.InfoContext(ctx, "email delivery delegated",
		"function", FunctionSendEmail,
		"template", TemplateMembershipApproved,
		"user_id", to.UserID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// Nop drops every notification.
type Nop struct{}

func (Nop) MembershipApproved(context.Context, Recipient) error { return nil }
