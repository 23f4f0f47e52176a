package domain

// Role is a tag from the user_roles relation. A user may hold several.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleBoardMember Role = "board_member"
	RoleMember      Role = "member"
	// RoleCAMember grants the committee (conseil d'administration) tooling,
	// key management included, short of full admin rights.
	RoleCAMember Role = "ca_member"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleBoardMember, RoleMember, RoleCAMember:
		return true
	}
	return false
}

// BoardRole is the seat held in a board assignment.
type BoardRole string

const (
	BoardRolePresident   BoardRole = "president"
	BoardRoleTreasurer   BoardRole = "treasurer"
	BoardRoleSecretary   BoardRole = "secretary"
	BoardRoleBoardMember BoardRole = "board_member"
)

// OfficerRoles are the seats that make a user a board officer.
var OfficerRoles = []BoardRole{BoardRolePresident, BoardRoleTreasurer, BoardRoleSecretary}

func (r BoardRole) IsValid() bool {
	switch r {
	case BoardRolePresident, BoardRoleTreasurer, BoardRoleSecretary, BoardRoleBoardMember:
		return true
	}
	return false
}

// IsOfficer reports whether the seat is president, treasurer or secretary.
// A plain board_member seat is not an officer seat.
func (r BoardRole) IsOfficer() bool {
	switch r {
	case BoardRolePresident, BoardRoleTreasurer, BoardRoleSecretary:
		return true
	}
	return false
}

// Rank orders seats the way the backend enum declares them.
func (r BoardRole) Rank() int {
	switch r {
	case BoardRolePresident:
		return 0
	case BoardRoleTreasurer:
		return 1
	case BoardRoleSecretary:
		return 2
	case BoardRoleBoardMember:
		return 3
	}
	return 4
}

// Label returns the French title shown on the board page.
func (r BoardRole) Label() string {
	switch r {
	case BoardRolePresident:
		return "Président"
	case BoardRoleTreasurer:
		return "Trésorier"
	case BoardRoleSecretary:
		return "Secrétaire"
	case BoardRoleBoardMember:
		return "Membre du bureau"
	}
	return string(r)
}

// MembershipStatus is the approval state of a member profile.
type MembershipStatus string

const (
	MembershipPending  MembershipStatus = "pending"
	MembershipActive   MembershipStatus = "active"
	MembershipInactive MembershipStatus = "inactive"
)

func (s MembershipStatus) IsValid() bool {
	switch s {
	case MembershipPending, MembershipActive, MembershipInactive:
		return true
	}
	return false
}

// Activity tags practiced by members. Profiles store free-form strings;
// these are the ones the site knows how to label.
const (
	ActivityRolePlay   = "jdr"
	ActivityBoardGames = "jds"
	ActivityMagic      = "mtg"
)

// ActivityLabel returns the display name for a known activity tag.
func ActivityLabel(tag string) string {
	switch tag {
	case ActivityRolePlay:
		return "Jeu de Rôle (JDR)"
	case ActivityBoardGames:
		return "Jeux de Société"
	case ActivityMagic:
		return "Magic: The Gathering"
	}
	return tag
}

// KnownActivity reports whether tag is one of the labelled activities.
func KnownActivity(tag string) bool {
	switch tag {
	case ActivityRolePlay, ActivityBoardGames, ActivityMagic:
		return true
	}
	return false
}
