package testutil

import (
	"time"

	"github.com/google/uuid"

	"orcs/pkg/domain"
)

// TestIDs provides deterministic ids for tests.
var TestIDs = struct {
	AdminID     domain.UserID
	TreasurerID domain.UserID
	MemberID    domain.UserID
	OutsiderID  domain.UserID
	Key1        domain.KeyID
	Key2        domain.KeyID
	Key3        domain.KeyID
}{
	AdminID:     domain.UserID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
	TreasurerID: domain.UserID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
	MemberID:    domain.UserID(uuid.MustParse("33333333-3333-3333-3333-333333333333")),
	OutsiderID:  domain.UserID(uuid.MustParse("44444444-4444-4444-4444-444444444444")),
	Key1:        domain.KeyID(uuid.MustParse("cccc0000-0000-0000-0000-000000000001")),
	Key2:        domain.KeyID(uuid.MustParse("cccc0000-0000-0000-0000-000000000002")),
	Key3:        domain.KeyID(uuid.MustParse("cccc0000-0000-0000-0000-000000000003")),
}

// FixedTime is the reference instant used by fixtures and fake clocks.
var FixedTime = time.Date(2025, 3, 14, 18, 30, 0, 0, time.UTC)

// Ptr returns a pointer to v. Handy for nullable fixture columns.
func Ptr[T any](v T) *T {
	return &v
}
