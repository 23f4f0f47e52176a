package httptransport

import (
	"orcs/internal/board"
	"orcs/internal/community"
	"orcs/internal/events"
	"orcs/internal/members"
	"orcs/internal/session"
	"orcs/pkg/domain"
)

// SessionResponse is the visitor's session as pages see it.
type SessionResponse struct {
	SignedIn         bool                    `json:"signed_in"`
	UserID           *domain.UserID          `json:"user_id,omitempty"`
	Email            string                  `json:"email,omitempty"`
	DisplayName      string                  `json:"display_name,omitempty"`
	MembershipStatus domain.MembershipStatus `json:"membership_status,omitempty"`
	Roles            []domain.Role           `json:"roles"`
	session.Capabilities
	IsLoading bool   `json:"is_loading"`
	Device    string `json:"device,omitempty"`
}

func toSessionResponse(snap session.Snapshot, device string) SessionResponse {
	res := SessionResponse{
		Roles:        snap.Roles,
		Capabilities: snap.Capabilities,
		IsLoading:    snap.IsLoading,
		Device:       device,
	}
	if res.Roles == nil {
		res.Roles = []domain.Role{}
	}
	if snap.User != nil {
		uid := snap.UserID()
		res.SignedIn = true
		res.UserID = &uid
		res.Email = snap.User.Email
		res.DisplayName = snap.DisplayName()
	}
	if snap.Profile != nil {
		res.MembershipStatus = snap.Profile.MembershipStatus
	}
	return res
}

// AuthErrorResponse carries a sign-in or sign-up rejection.
type AuthErrorResponse struct {
	Error            string `json:"error"`
	Title            string `json:"title"`
	ErrorDescription string `json:"error_description"`
}

type SignUpResponse struct {
	// ConfirmationRequired is set when the account must confirm its email
	// before signing in.
	ConfirmationRequired bool             `json:"confirmation_required"`
	Message              string           `json:"message"`
	Session              *SessionResponse `json:"session,omitempty"`
}

type HomeResponse struct {
	Session  SessionResponse    `json:"session"`
	Upcoming []events.Event     `json:"upcoming_events"`
	Board    []board.Assignment `json:"board"`
}

type EventsResponse struct {
	Events []events.Event `json:"events"`
}

type CalendarResponse struct {
	Months []events.Month `json:"months"`
}

type BoardResponse struct {
	Board []board.Assignment `json:"board"`
}

type EventDetailResponse struct {
	Event         *events.Event         `json:"event"`
	Registrations []events.Registration `json:"registrations"`
	// Mine is the visitor's own registration, when signed in and registered.
	Mine *events.Registration `json:"my_registration,omitempty"`
}

type RegistrationResponse struct {
	Registration *events.Registration `json:"registration"`
}

type ProfileResponse struct {
	Profile     *members.Member     `json:"profile"`
	Communities []community.Request `json:"communities"`
}

type CommunitiesResponse struct {
	Communities []community.Request `json:"communities"`
}

type MembersResponse struct {
	Members []members.Member `json:"members"`
	Stats   members.Stats    `json:"stats"`
}

type AdminResponse struct {
	Pending []members.Member   `json:"pending"`
	Members []members.Member   `json:"members"`
	Stats   members.Stats      `json:"stats"`
	Board   []board.Assignment `json:"board"`
}

type MemberResponse struct {
	Member *members.Member `json:"member"`
}

type BoardSeatResponse struct {
	Seat *board.Assignment `json:"seat"`
}
