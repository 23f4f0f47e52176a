package members

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"orcs/internal/backend"
	"orcs/internal/backend/memory"
	"orcs/internal/notify"
	"orcs/pkg/domain"
	dErrors "orcs/pkg/domain-errors"
	"orcs/pkg/testutil"
)

type recordingNotifier struct {
	mu       sync.Mutex
	approved []notify.Recipient
}

func (n *recordingNotifier) MembershipApproved(_ context.Context, to notify.Recipient) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.approved = append(n.approved, to)
	return nil
}

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	b        *memory.Backend
	notifier *recordingNotifier
	svc      *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	ids := testutil.TestIDs
	now := testutil.FixedTime
	s.b = memory.New(
		memory.WithPasswordCost(bcrypt.MinCost),
		memory.WithClock(func() time.Time { return now }),
	)
	users := []memory.UserFixture{
		{ID: ids.AdminID.String(), Email: "president@orcs.test", Password: "orcs-dev", FullName: "Alice Martin", MembershipStatus: "active"},
		{ID: ids.MemberID.String(), Email: "membre@orcs.test", Password: "orcs-dev", FullName: "Chloé Dubois", MembershipStatus: "active"},
		{ID: ids.OutsiderID.String(), Email: "nouveau@orcs.test", Password: "orcs-dev", FullName: "Élodie Petit"},
	}
	for _, u := range users {
		_, err := s.b.AddUser(u)
		s.Require().NoError(err)
		now = now.Add(time.Hour)
	}
	s.notifier = &recordingNotifier{}
	s.svc = New(s.b, WithNotifier(s.notifier))
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestListNewestFirst() {
	members, err := s.svc.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(members, 3)
	s.Equal("Élodie Petit", members[0].Name())
	s.Equal("Alice Martin", members[2].Name())
}

func (s *ServiceSuite) TestListPending() {
	pending, err := s.svc.ListPending(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal(testutil.TestIDs.OutsiderID, pending[0].ID)
}

func (s *ServiceSuite) TestApprovalNotifies() {
	id := testutil.TestIDs.OutsiderID
	m, err := s.svc.UpdateStatus(s.ctx, id, domain.MembershipActive)
	s.Require().NoError(err)
	s.Equal(domain.MembershipActive, m.MembershipStatus)
	s.Require().Len(s.notifier.approved, 1)
	s.Equal(id, s.notifier.approved[0].UserID)
	s.Equal("nouveau@orcs.test", s.notifier.approved[0].Email)

	_, err = s.svc.UpdateStatus(s.ctx, id, domain.MembershipInactive)
	s.Require().NoError(err)
	_, err = s.svc.UpdateStatus(s.ctx, id, domain.MembershipActive)
	s.Require().NoError(err)
	s.Len(s.notifier.approved, 1, "reactivation is not an approval")
}

func (s *ServiceSuite) TestUpdateStatusRejectsUnknown() {
	_, err := s.svc.UpdateStatus(s.ctx, testutil.TestIDs.MemberID, domain.MembershipStatus("banned"))
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.svc.UpdateStatus(s.ctx, domain.NewUserID(), domain.MembershipActive)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestSaveProfile() {
	id := testutil.TestIDs.MemberID
	m, err := s.svc.SaveProfile(s.ctx, id, ProfileUpdate{
		FullName:   "  Chloé D.  ",
		Activities: []string{"JDR", "mtg", "jdr", " "},
	})
	s.Require().NoError(err)
	s.Equal("Chloé D.", m.Name())
	s.Equal([]string{"jdr", "mtg"}, m.Activities)

	_, err = s.svc.SaveProfile(s.ctx, id, ProfileUpdate{Activities: []string{"poker"}})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestUpdateActivities() {
	m, err := s.svc.UpdateActivities(s.ctx, testutil.TestIDs.AdminID, []string{"jds"})
	s.Require().NoError(err)
	s.Equal([]string{"jds"}, m.Activities)
}

func (s *ServiceSuite) TestBackendFailureIsUnavailable() {
	s.b.SetHook(func(context.Context, string, string) error {
		return &backend.Error{Status: 502, Message: "bad gateway"}
	})
	_, err := s.svc.List(s.ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func TestFilter(t *testing.T) {
	name := func(n string) *string { return &n }
	members := []Member{
		{Email: "a@orcs.test", FullName: name("Élodie Petit"), MembershipStatus: domain.MembershipPending, Activities: []string{"mtg"}},
		{Email: "b@orcs.test", FullName: name("Chloé Dubois"), MembershipStatus: domain.MembershipActive, Activities: []string{"jdr", "jds"}},
		{Email: "c@orcs.test", MembershipStatus: domain.MembershipInactive, Activities: []string{"jdr"}},
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"zero filter keeps all", Filter{}, []string{"a@orcs.test", "b@orcs.test", "c@orcs.test"}},
		{"accent insensitive", Filter{Search: "elodie"}, []string{"a@orcs.test"}},
		{"case insensitive", Filter{Search: "CHLOÉ"}, []string{"b@orcs.test"}},
		{"nameless falls back to email", Filter{Search: "c@orcs"}, []string{"c@orcs.test"}},
		{"activity", Filter{Activity: "jdr"}, []string{"b@orcs.test", "c@orcs.test"}},
		{"status", Filter{Status: domain.MembershipActive}, []string{"b@orcs.test"}},
		{"combined", Filter{Activity: "jdr", Status: domain.MembershipInactive}, []string{"c@orcs.test"}},
		{"no match", Filter{Search: "zz"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []string{}
			for _, m := range tt.filter.Apply(members) {
				got = append(got, m.Email)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeStats(t *testing.T) {
	ids := testutil.TestIDs
	members := []Member{
		{ID: ids.AdminID, MembershipStatus: domain.MembershipActive},
		{ID: ids.TreasurerID, MembershipStatus: domain.MembershipActive},
		{ID: ids.MemberID, MembershipStatus: domain.MembershipInactive},
		{ID: ids.OutsiderID, MembershipStatus: domain.MembershipPending},
	}
	st := ComputeStats(members, []domain.UserID{ids.AdminID, ids.TreasurerID})
	require.Equal(t, Stats{Total: 4, Pending: 1, Active: 2, Inactive: 1, Board: 2}, st)
}
