package session

import (
	"slices"
	"time"

	"orcs/internal/backend"
	"orcs/pkg/domain"
)

// Profile is the signed-in member's profile row.
type Profile struct {
	ID               domain.UserID           `json:"id"`
	Email            string                  `json:"email"`
	FullName         *string                 `json:"full_name"`
	AvatarURL        *string                 `json:"avatar_url"`
	MembershipStatus domain.MembershipStatus `json:"membership_status"`
	CreatedAt        time.Time               `json:"created_at"`
	Activities       []string                `json:"activities"`
}

// OfficerAssignment is an active board seat found for the user.
type OfficerAssignment struct {
	BoardRole domain.BoardRole `json:"board_role"`
}

// Capabilities are the flags pages gate on.
type Capabilities struct {
	IsAdmin        bool `json:"is_admin"`
	IsBoardOfficer bool `json:"is_board_officer"`
	// IsBoardMember mirrors IsBoardOfficer. Both names are part of the
	// snapshot contract.
	IsBoardMember      bool `json:"is_board_member"`
	IsCAMember         bool `json:"is_ca_member"`
	IsAdminBoardMember bool `json:"is_admin_board_member"`
}

// DeriveCapabilities computes capability flags from the three derivation reads.
// profile does not influence any flag today; it is accepted so every input of
// the derivation flows through one place.
func DeriveCapabilities(_ *Profile, roles []domain.Role, officers []OfficerAssignment) Capabilities {
	officer := slices.ContainsFunc(officers, func(a OfficerAssignment) bool {
		return a.BoardRole.IsOfficer()
	})
	admin := slices.Contains(roles, domain.RoleAdmin)
	return Capabilities{
		IsAdmin:            admin,
		IsBoardOfficer:     officer,
		IsBoardMember:      officer,
		IsCAMember:         slices.Contains(roles, domain.RoleCAMember),
		IsAdminBoardMember: admin && officer,
	}
}

// Snapshot is a read-only copy of a Resolver's state.
type Snapshot struct {
	User    *backend.User    `json:"user"`
	Session *backend.Session `json:"-"`
	Profile *Profile         `json:"profile"`
	Roles   []domain.Role    `json:"roles"`
	Capabilities
	IsLoading bool `json:"is_loading"`
}

// DisplayName is the profile's full name, falling back to the email.
func (s Snapshot) DisplayName() string {
	if s.Profile != nil && s.Profile.FullName != nil && *s.Profile.FullName != "" {
		return *s.Profile.FullName
	}
	if s.User != nil {
		return s.User.Email
	}
	return ""
}

// UserID returns the signed-in user's id, or the nil id.
func (s Snapshot) UserID() domain.UserID {
	if s.User == nil {
		return domain.UserID{}
	}
	return s.User.ID
}
