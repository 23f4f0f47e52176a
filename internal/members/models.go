package members

import (
	"slices"
	"time"

	"orcs/pkg/domain"
)

// Member is a profile row as the directory and admin pages see it.
type Member struct {
	ID               domain.UserID           `json:"id"`
	Email            string                  `json:"email"`
	FullName         *string                 `json:"full_name"`
	AvatarURL        *string                 `json:"avatar_url"`
	MembershipStatus domain.MembershipStatus `json:"membership_status"`
	Activities       []string                `json:"activities"`
	CreatedAt        time.Time               `json:"created_at"`
}

// Name returns the full name, or the email when no name was given.
func (m Member) Name() string {
	if m.FullName != nil && *m.FullName != "" {
		return *m.FullName
	}
	return m.Email
}

// HasActivity reports whether the member practices tag.
func (m Member) HasActivity(tag string) bool {
	return slices.Contains(m.Activities, tag)
}

// ProfileUpdate is what a member may change on their own profile.
type ProfileUpdate struct {
	FullName   string   `json:"full_name" validate:"max=120"`
	Activities []string `json:"activities" validate:"max=10,dive,activity"`
}

// Filter narrows the member directory. Zero fields match everything.
type Filter struct {
	Search   string
	Activity string
	Status   domain.MembershipStatus
}

// Stats are the headline counts of the admin and directory pages.
type Stats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
	Board    int `json:"board"`
}
