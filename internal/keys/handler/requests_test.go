package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "orcs/pkg/domain-errors"
	"orcs/pkg/testutil"
)

func TestInitiateRequestValidate(t *testing.T) {
	ids := testutil.TestIDs
	cases := []struct {
		name string
		req  InitiateRequest
		msg  string
	}{
		{name: "missing key", req: InitiateRequest{ToUserID: ids.TreasurerID.String()}, msg: "key_id is required"},
		{name: "missing recipient", req: InitiateRequest{KeyID: ids.Key1.String()}, msg: "to_user_id is required"},
		{name: "key not a uuid", req: InitiateRequest{KeyID: "cle-1", ToUserID: ids.TreasurerID.String()}, msg: "key_id must be a valid uuid"},
		{
			name: "giver not a uuid",
			req:  InitiateRequest{KeyID: ids.Key1.String(), FromUserID: "alice", ToUserID: ids.TreasurerID.String()},
			msg:  "from_user_id must be a valid uuid",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.Equal(t, tc.msg, err.Error())
		})
	}
}

func TestInitiateRequestIDs(t *testing.T) {
	ids := testutil.TestIDs
	req := &InitiateRequest{KeyID: " " + ids.Key1.String(), ToUserID: ids.TreasurerID.String() + " "}
	req.Normalize()
	require.NoError(t, req.Validate())

	key, from, to, err := req.IDs()
	require.NoError(t, err)
	assert.Equal(t, ids.Key1, key)
	assert.Nil(t, from)
	assert.Equal(t, ids.TreasurerID, to)
}
