package backend

//go:generate mockgen -source=api.go -destination=mocks/mocks.go -package=mocks DataAPI

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"orcs/pkg/domain"
	"orcs/pkg/testutil"
)

func TestQueryBuilderDoesNotShareState(t *testing.T) {
	base := From(TableKeyTransfers).Eq("confirmed", false)
	a := base.OrderDesc("transfer_date")
	b := base.Eq("key_id", "k1").Limit(3)

	assert.Len(t, base.Filters, 1)
	assert.Empty(t, base.Orders)
	assert.Len(t, a.Filters, 1)
	assert.Len(t, a.Orders, 1)
	assert.Len(t, b.Filters, 2)
	assert.Equal(t, 3, b.RowLimit)
	assert.Equal(t, "*", b.Columns)
}

func TestQueryIn(t *testing.T) {
	roles := []domain.BoardRole{domain.BoardRolePresident, domain.BoardRoleTreasurer}
	q := From(TableBoardMembers).In("board_role", Values(roles)...)

	f := q.Filters[0]
	assert.Equal(t, OpIn, f.Op)
	assert.Equal(t, []any{domain.BoardRolePresident, domain.BoardRoleTreasurer}, f.Values)

	assert.Equal(t, 0, q.Limit(-4).RowLimit)
}

func TestFormatValue(t *testing.T) {
	ids := testutil.TestIDs
	cases := []struct {
		in   any
		want string
	}{
		{nil, "null"},
		{"abc", "abc"},
		{true, "true"},
		{42, "42"},
		{int64(-7), "-7"},
		{1.5, "1.5"},
		{ids.AdminID, ids.AdminID.String()},
		{domain.BoardRoleSecretary, "secretary"},
		{&ids.MemberID, ids.MemberID.String()},
		{(*domain.UserID)(nil), "null"},
		{time.Date(2025, 3, 14, 18, 30, 0, 0, time.FixedZone("CET", 3600)), "2025-03-14T17:30:00Z"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatValue(tc.in))
	}
}
