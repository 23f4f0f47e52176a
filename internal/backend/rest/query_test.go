package rest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"orcs/internal/backend"
	"orcs/pkg/domain"
	"orcs/pkg/testutil"
)

func TestEncodeQuery(t *testing.T) {
	ids := testutil.TestIDs
	q := backend.From(backend.TableBoardMembers).
		Select("user_id,board_role").
		Eq("user_id", ids.AdminID).
		Eq("is_active", true).
		In("board_role", backend.Values(domain.OfficerRoles)...).
		OrderAsc("board_role").
		OrderDesc("start_date").
		Limit(1)

	v := encodeQuery(q)
	assert.Equal(t, "user_id,board_role", v.Get("select"))
	assert.Equal(t, "eq."+ids.AdminID.String(), v.Get("user_id"))
	assert.Equal(t, "eq.true", v.Get("is_active"))
	assert.Equal(t, "in.(president,treasurer,secretary)", v.Get("board_role"))
	assert.Equal(t, "board_role.asc,start_date.desc", v.Get("order"))
	assert.Equal(t, "1", v.Get("limit"))
}

func TestEncodeQueryNullAndQuoting(t *testing.T) {
	v := encodeQuery(backend.From("events").
		Eq("end_date", nil).
		In("title", "Soirée JDR", `a,b`, "plain"))

	assert.Equal(t, "is.null", v.Get("end_date"))
	assert.Equal(t, `in.("Soirée JDR","a,b",plain)`, v.Get("title"))
	assert.Empty(t, v.Get("limit"))
}
