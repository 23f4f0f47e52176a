package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"orcs/internal/backend"
	"orcs/pkg/platform/sentinel"
	"orcs/pkg/testutil"
)

type keyRow struct {
	ID        string  `json:"id"`
	KeyNumber int     `json:"key_number"`
	Status    string  `json:"status"`
	Holder    *string `json:"current_holder_id"`
}

type DataSuite struct {
	suite.Suite
	b   *Backend
	ctx context.Context
}

func TestDataSuite(t *testing.T) {
	suite.Run(t, new(DataSuite))
}

func (s *DataSuite) SetupTest() {
	s.ctx = context.Background()
	s.b = New(WithClock(func() time.Time { return testutil.FixedTime }))
	for _, n := range []int{3, 1, 2} {
		require.NoError(s.T(), s.b.Insert(s.ctx, backend.TableKeys, map[string]any{"key_number": n}, nil))
	}
}

func (s *DataSuite) TestInsertAppliesDefaults() {
	var k keyRow
	require.NoError(s.T(), s.b.Insert(s.ctx, backend.TableKeys, map[string]any{"key_number": 9}, &k))
	s.NotEmpty(k.ID)
	s.Equal("available", k.Status)
	s.Nil(k.Holder)
}

func (s *DataSuite) TestUniqueViolation() {
	err := s.b.Insert(s.ctx, backend.TableKeys, map[string]any{"key_number": 1}, nil)
	require.Error(s.T(), err)
	s.ErrorIs(err, sentinel.ErrConflict)
	s.Equal(backend.CodeUniqueViolation, backend.CodeOf(err))
	s.Len(s.b.Rows(backend.TableKeys), 3)
}

func (s *DataSuite) TestSelectOrdersAndLimits() {
	var keys []keyRow
	require.NoError(s.T(), s.b.Select(s.ctx, backend.From(backend.TableKeys).OrderAsc("key_number"), &keys))
	s.Equal([]int{1, 2, 3}, numbers(keys))

	keys = nil
	require.NoError(s.T(), s.b.Select(s.ctx, backend.From(backend.TableKeys).OrderDesc("key_number").Limit(2), &keys))
	s.Equal([]int{3, 2}, numbers(keys))
}

func (s *DataSuite) TestSelectProjectsColumns() {
	var rows []map[string]any
	require.NoError(s.T(), s.b.Select(s.ctx, backend.From(backend.TableKeys).Select("key_number"), &rows))
	for _, r := range rows {
		s.Len(r, 1)
		s.Contains(r, "key_number")
	}
}

func (s *DataSuite) TestFilters() {
	holder := testutil.TestIDs.AdminID
	_, err := s.b.Update(s.ctx, backend.From(backend.TableKeys).Eq("key_number", 2),
		map[string]any{"current_holder_id": holder, "status": "held"})
	require.NoError(s.T(), err)

	var held []keyRow
	require.NoError(s.T(), s.b.Select(s.ctx, backend.From(backend.TableKeys).Eq("current_holder_id", holder), &held))
	s.Equal([]int{2}, numbers(held))

	var free []keyRow
	require.NoError(s.T(), s.b.Select(s.ctx, backend.From(backend.TableKeys).Eq("current_holder_id", nil).OrderAsc("key_number"), &free))
	s.Equal([]int{1, 3}, numbers(free))

	var some []keyRow
	require.NoError(s.T(), s.b.Select(s.ctx, backend.From(backend.TableKeys).In("key_number", 1, 3).OrderAsc("key_number"), &some))
	s.Equal([]int{1, 3}, numbers(some))

	var none []keyRow
	require.NoError(s.T(), s.b.Select(s.ctx, backend.From(backend.TableKeys).In("key_number"), &none))
	s.Empty(none)
}

func (s *DataSuite) TestSelectOne() {
	var k keyRow
	require.NoError(s.T(), s.b.SelectOne(s.ctx, backend.From(backend.TableKeys).Eq("key_number", 3), &k))
	s.Equal(3, k.KeyNumber)

	s.ErrorIs(s.b.SelectOne(s.ctx, backend.From(backend.TableKeys).Eq("key_number", 7), &k), backend.ErrNoRows)
	s.ErrorIs(s.b.SelectOne(s.ctx, backend.From(backend.TableKeys), &k), backend.ErrMultipleRows)
}

func (s *DataSuite) TestUpdateAndDeleteCount() {
	n, err := s.b.Update(s.ctx, backend.From(backend.TableKeys).Eq("status", "available"), map[string]any{"status": "held"})
	require.NoError(s.T(), err)
	s.Equal(3, n)

	n, err = s.b.Update(s.ctx, backend.From(backend.TableKeys).Eq("status", "available"), map[string]any{"status": "held"})
	require.NoError(s.T(), err)
	s.Zero(n)

	n, err = s.b.Delete(s.ctx, backend.From(backend.TableKeys).Eq("key_number", 1))
	require.NoError(s.T(), err)
	s.Equal(1, n)
	s.Len(s.b.Rows(backend.TableKeys), 2)
}

func (s *DataSuite) TestUpdateViolationLeavesRowsUntouched() {
	_, err := s.b.Update(s.ctx, backend.From(backend.TableKeys).Eq("key_number", 3), map[string]any{"key_number": 1})
	s.ErrorIs(err, sentinel.ErrConflict)

	var k keyRow
	require.NoError(s.T(), s.b.SelectOne(s.ctx, backend.From(backend.TableKeys).Eq("key_number", 3), &k))
}

func (s *DataSuite) TestUpsertMergesOnConflictColumns() {
	uid := testutil.TestIDs.MemberID
	row := map[string]any{"user_id": uid, "role": "board_member"}
	require.NoError(s.T(), s.b.Upsert(s.ctx, backend.TableUserRoles, row, "user_id,role"))
	require.NoError(s.T(), s.b.Upsert(s.ctx, backend.TableUserRoles, row, "user_id,role"))

	var roles []map[string]any
	require.NoError(s.T(), s.b.Select(s.ctx, backend.From(backend.TableUserRoles).Eq("user_id", uid), &roles))
	s.Len(roles, 1)
}

func (s *DataSuite) TestBoardRoleOrdersByEnum() {
	for _, role := range []string{"board_member", "secretary", "president", "treasurer"} {
		require.NoError(s.T(), s.b.Insert(s.ctx, backend.TableBoardMembers, map[string]any{"user_id": testutil.TestIDs.MemberID, "board_role": role}, nil))
	}
	var rows []struct {
		Role string `json:"board_role"`
	}
	require.NoError(s.T(), s.b.Select(s.ctx, backend.From(backend.TableBoardMembers).OrderAsc("board_role"), &rows))
	got := make([]string, len(rows))
	for i, r := range rows {
		got[i] = r.Role
	}
	s.Equal([]string{"president", "treasurer", "secretary", "board_member"}, got)
}

func (s *DataSuite) TestTimestampsOrderChronologically() {
	for _, ts := range []string{"2025-03-14T18:30:00Z", "2025-03-14T18:30:00.5Z", "2025-03-14T19:30:00+02:00"} {
		require.NoError(s.T(), s.b.Insert(s.ctx, backend.TableKeyTransfers, map[string]any{"key_id": "k", "to_user_id": "u", "transfer_date": ts}, nil))
	}
	var rows []struct {
		Date string `json:"transfer_date"`
	}
	require.NoError(s.T(), s.b.Select(s.ctx, backend.From(backend.TableKeyTransfers).OrderDesc("transfer_date"), &rows))
	require.Len(s.T(), rows, 3)
	s.Equal("2025-03-14T18:30:00.5Z", rows[0].Date)
	s.Equal("2025-03-14T19:30:00+02:00", rows[2].Date)
}

func (s *DataSuite) TestHookAbortsOperation() {
	boom := errors.New("boom")
	s.b.SetHook(func(_ context.Context, op, table string) error {
		if op == "delete" && table == backend.TableKeys {
			return boom
		}
		return nil
	})
	_, err := s.b.Delete(s.ctx, backend.From(backend.TableKeys))
	s.ErrorIs(err, boom)
	s.Len(s.b.Rows(backend.TableKeys), 3)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var rows []map[string]any
	assert.ErrorIs(t, New().Select(ctx, backend.From(backend.TableKeys), &rows), context.Canceled)
}

func numbers(keys []keyRow) []int {
	out := make([]int, len(keys))
	for i, k := range keys {
		out[i] = k.KeyNumber
	}
	return out
}
