package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"orcs/pkg/domain"
	"orcs/pkg/testutil"
)

func TestDeriveCapabilities(t *testing.T) {
	officer := []OfficerAssignment{{BoardRole: domain.BoardRoleTreasurer}}
	plainSeat := []OfficerAssignment{{BoardRole: domain.BoardRoleBoardMember}}

	cases := []struct {
		name     string
		roles    []domain.Role
		officers []OfficerAssignment
		want     Capabilities
	}{
		{"nobody", nil, nil, Capabilities{}},
		{"member", []domain.Role{domain.RoleMember}, nil, Capabilities{}},
		{"admin only", []domain.Role{domain.RoleAdmin}, nil, Capabilities{IsAdmin: true}},
		{"officer only", []domain.Role{domain.RoleMember}, officer, Capabilities{IsBoardOfficer: true, IsBoardMember: true}},
		{"admin officer", []domain.Role{domain.RoleAdmin, domain.RoleMember}, officer,
			Capabilities{IsAdmin: true, IsBoardOfficer: true, IsBoardMember: true, IsAdminBoardMember: true}},
		{"board_member role tag is not an officer seat", []domain.Role{domain.RoleAdmin, domain.RoleBoardMember}, nil, Capabilities{IsAdmin: true}},
		{"plain board seat", []domain.Role{domain.RoleAdmin}, plainSeat, Capabilities{IsAdmin: true}},
		{"committee", []domain.Role{domain.RoleCAMember}, nil, Capabilities{IsCAMember: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveCapabilities(nil, tc.roles, tc.officers))
		})
	}
}

func TestAdminBoardMemberIffAdminAndOfficer(t *testing.T) {
	roleSets := [][]domain.Role{nil, {domain.RoleAdmin}, {domain.RoleMember}, {domain.RoleAdmin, domain.RoleCAMember}}
	seatSets := [][]OfficerAssignment{nil, {{BoardRole: domain.BoardRolePresident}}, {{BoardRole: domain.BoardRoleBoardMember}}}
	for _, roles := range roleSets {
		for _, seats := range seatSets {
			c := DeriveCapabilities(nil, roles, seats)
			assert.Equal(t, c.IsAdmin && c.IsBoardOfficer, c.IsAdminBoardMember)
			assert.Equal(t, c.IsBoardOfficer, c.IsBoardMember)
		}
	}
}

func TestSnapshotDisplayName(t *testing.T) {
	assert.Empty(t, Snapshot{}.DisplayName())

	snap := Snapshot{User: &backendUser}
	assert.Equal(t, "membre@orcs.test", snap.DisplayName())

	snap.Profile = &Profile{FullName: testutil.Ptr("Chloé Dubois")}
	assert.Equal(t, "Chloé Dubois", snap.DisplayName())
	assert.Equal(t, testutil.TestIDs.MemberID, snap.UserID())
}
