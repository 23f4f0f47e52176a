package board

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"orcs/internal/backend"
	"orcs/internal/backend/memory"
	"orcs/pkg/domain"
	dErrors "orcs/pkg/domain-errors"
	"orcs/pkg/platform/audit"
	"orcs/pkg/platform/audit/publisher"
	auditmemory "orcs/pkg/platform/audit/store/memory"
	"orcs/pkg/platform/middleware/requesttime"
	"orcs/pkg/testutil"
)

func newBoard(t *testing.T) (*memory.Backend, *Service, *auditmemory.Store) {
	t.Helper()
	b := memory.New(memory.WithPasswordCost(bcrypt.MinCost))
	f, err := memory.DevFixtures()
	require.NoError(t, err)
	require.NoError(t, b.Apply(f))
	events := auditmemory.New(0)
	return b, New(b, audit.NewLogger(nil, publisher.NewPublisher(events))), events
}

func TestListActiveOrderedBySeat(t *testing.T) {
	_, svc, _ := newBoard(t)

	seats, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, seats, 2)
	assert.Equal(t, domain.BoardRolePresident, seats[0].BoardRole)
	assert.Equal(t, "Président", seats[0].Title())
	require.NotNil(t, seats[0].Profile)
	assert.Equal(t, "Alice Martin", seats[0].Profile.Name())
	assert.Equal(t, domain.BoardRoleTreasurer, seats[1].BoardRole)
}

func TestAddGrantsRoleTagOnce(t *testing.T) {
	b, svc, events := newBoard(t)
	ctx := context.Background()
	member := testutil.TestIDs.MemberID

	seat, err := svc.Add(ctx, member, domain.BoardRoleSecretary)
	require.NoError(t, err)
	assert.True(t, seat.IsActive)
	assert.Nil(t, seat.EndDate)

	_, err = svc.Add(ctx, member, domain.BoardRoleBoardMember)
	require.NoError(t, err)

	var tags []map[string]any
	require.NoError(t, b.Select(ctx, backend.From(backend.TableUserRoles).
		Eq("user_id", member).Eq("role", domain.RoleBoardMember), &tags))
	assert.Len(t, tags, 1)

	seats, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, seats, 4)

	recent, err := events.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestAddValidates(t *testing.T) {
	_, svc, _ := newBoard(t)
	_, err := svc.Add(context.Background(), testutil.TestIDs.MemberID, domain.BoardRole("king"))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	_, err = svc.Add(context.Background(), domain.UserID{}, domain.BoardRoleSecretary)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestRemoveEndsSeatToday(t *testing.T) {
	_, svc, _ := newBoard(t)
	ctx := requesttime.WithTime(context.Background(), testutil.FixedTime)

	seats, err := svc.ListActive(ctx)
	require.NoError(t, err)
	treasurer := seats[1]

	require.NoError(t, svc.Remove(ctx, treasurer.ID))

	seats, err = svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, seats, 1)

	ids, err := svc.MemberIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.UserID{testutil.TestIDs.AdminID}, ids)

	err = svc.Remove(ctx, domain.AssignmentID(testutil.TestIDs.Key1))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestRemoveKeepsHistory(t *testing.T) {
	b, svc, _ := newBoard(t)
	ctx := requesttime.WithTime(context.Background(), testutil.FixedTime)
	seats, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ctx, seats[0].ID))

	var ended []Assignment
	require.NoError(t, b.Select(ctx, backend.From(backend.TableBoardMembers).Eq("id", seats[0].ID), &ended))
	require.Len(t, ended, 1)
	assert.False(t, ended[0].IsActive)
	require.NotNil(t, ended[0].EndDate)
	assert.Equal(t, "2025-03-14", *ended[0].EndDate)
}
