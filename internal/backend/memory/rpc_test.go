package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orcs/internal/backend"
	"orcs/pkg/platform/sentinel"
	"orcs/pkg/testutil"
)

func TestConfirmKeyTransferRPC(t *testing.T) {
	ctx := context.Background()
	ids := testutil.TestIDs
	b := newTestBackend()
	require.NoError(t, b.Insert(ctx, backend.TableKeys, map[string]any{
		"id": ids.Key1, "key_number": 1, "status": "held", "current_holder_id": ids.AdminID,
	}, nil))

	var transfer struct {
		ID string `json:"id"`
	}
	require.NoError(t, b.Insert(ctx, backend.TableKeyTransfers, map[string]any{
		"key_id": ids.Key1, "from_user_id": ids.AdminID, "to_user_id": ids.TreasurerID,
	}, &transfer))

	var out struct {
		Confirmed   bool    `json:"confirmed"`
		ConfirmedAt *string `json:"confirmed_at"`
	}
	require.NoError(t, b.RPC(ctx, backend.FnConfirmKeyTransfer, map[string]any{"transfer_id": transfer.ID}, &out))
	assert.True(t, out.Confirmed)
	assert.NotNil(t, out.ConfirmedAt)

	var key struct {
		Holder string `json:"current_holder_id"`
		Status string `json:"status"`
	}
	require.NoError(t, b.SelectOne(ctx, backend.From(backend.TableKeys).Eq("id", ids.Key1), &key))
	assert.Equal(t, ids.TreasurerID.String(), key.Holder)
	assert.Equal(t, "held", key.Status)

	err := b.RPC(ctx, backend.FnConfirmKeyTransfer, map[string]any{"transfer_id": transfer.ID}, nil)
	assert.ErrorIs(t, err, sentinel.ErrConflict)

	err = b.RPC(ctx, backend.FnConfirmKeyTransfer, map[string]any{"transfer_id": ids.Key2}, nil)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestConfirmKeyTransferRPCUnknownKey(t *testing.T) {
	ctx := context.Background()
	ids := testutil.TestIDs
	b := newTestBackend()

	var transfer struct {
		ID string `json:"id"`
	}
	require.NoError(t, b.Insert(ctx, backend.TableKeyTransfers, map[string]any{
		"key_id": ids.Key1, "to_user_id": ids.TreasurerID,
	}, &transfer))

	err := b.RPC(ctx, backend.FnConfirmKeyTransfer, map[string]any{"transfer_id": transfer.ID}, nil)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	var stored struct {
		Confirmed   bool    `json:"confirmed"`
		ConfirmedAt *string `json:"confirmed_at"`
	}
	require.NoError(t, b.SelectOne(ctx, backend.From(backend.TableKeyTransfers).Eq("id", transfer.ID), &stored))
	assert.False(t, stored.Confirmed)
	assert.Nil(t, stored.ConfirmedAt)
}

func TestUnknownRPC(t *testing.T) {
	err := New().RPC(context.Background(), "nope", map[string]any{}, nil)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
