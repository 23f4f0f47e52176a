package community

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"orcs/internal/backend"
	"orcs/internal/backend/memory"
	dErrors "orcs/pkg/domain-errors"
	"orcs/pkg/platform/audit"
	"orcs/pkg/platform/audit/publisher"
	auditmemory "orcs/pkg/platform/audit/store/memory"
	"orcs/pkg/testutil"
)

func newService(t *testing.T) (*memory.Backend, *Service, *auditmemory.Store) {
	t.Helper()
	b := memory.New(memory.WithPasswordCost(bcrypt.MinCost))
	_, err := b.AddUser(memory.UserFixture{
		ID:       testutil.TestIDs.MemberID.String(),
		Email:    "membre@orcs.test",
		Password: "orcs-dev",
		FullName: "Chloé Dubois",
	})
	require.NoError(t, err)
	events := auditmemory.New(0)
	return b, New(b, audit.NewLogger(nil, publisher.NewPublisher(events))), events
}

func TestRequestThenList(t *testing.T) {
	_, svc, events := newService(t)
	ctx := context.Background()
	member := testutil.TestIDs.MemberID

	reqs, err := svc.List(ctx, member)
	require.NoError(t, err)
	assert.Empty(t, reqs)

	reqs, err = svc.Request(ctx, member, Discord)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, Discord, reqs[0].Community)
	assert.Equal(t, StatusPending, reqs[0].Status)

	reqs, err = svc.Request(ctx, member, WhatsApp)
	require.NoError(t, err)
	assert.Len(t, reqs, 2)

	recorded, err := events.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recorded, 2)
	assert.Equal(t, string(audit.EventCommunityAccessAsked), recorded[0].Action)
}

func TestDuplicateRequestRefused(t *testing.T) {
	_, svc, _ := newService(t)
	ctx := context.Background()
	member := testutil.TestIDs.MemberID

	_, err := svc.Request(ctx, member, Discord)
	require.NoError(t, err)

	_, err = svc.Request(ctx, member, Discord)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	var de *dErrors.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "Demande déjà envoyée ou impossible.", de.Message)

	reqs, err := svc.List(ctx, member)
	require.NoError(t, err)
	assert.Len(t, reqs, 1)
}

func TestUnknownCommunity(t *testing.T) {
	_, svc, _ := newService(t)

	_, err := svc.Request(context.Background(), testutil.TestIDs.MemberID, "telegram")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestBackendDown(t *testing.T) {
	b, svc, _ := newService(t)
	b.SetHook(func(_ context.Context, op, table string) error {
		if op == "insert" && table == backend.TableCommunityRequests {
			return &backend.Error{Status: http.StatusServiceUnavailable, Message: "down"}
		}
		return nil
	})

	_, err := svc.Request(context.Background(), testutil.TestIDs.MemberID, Discord)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}
