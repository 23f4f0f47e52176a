package httptransport

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"orcs/internal/backend/memory"
	"orcs/internal/keys/models"
	"orcs/internal/members"
	"orcs/internal/platform/middleware"
	"orcs/internal/session"
	"orcs/pkg/domain"
	"orcs/pkg/testutil"
)

const devPassword = "orcs-dev"

type visitor struct {
	s      *RouterSuite
	cookie *http.Cookie
}

func (v *visitor) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		v.s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0")
	if v.cookie != nil {
		req.AddCookie(v.cookie)
	}
	rec := httptest.NewRecorder()
	v.s.router.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.VisitorCookie {
			v.cookie = c
		}
	}
	return rec
}

func (v *visitor) signIn(email string) SessionResponse {
	rec := v.do(http.MethodPost, "/connexion", map[string]string{"email": email, "password": devPassword})
	v.s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var got SessionResponse
	v.s.Require().NoError(json.NewDecoder(rec.Body).Decode(&got))
	return got
}

func decode[T any](s *RouterSuite, rec *httptest.ResponseRecorder) T {
	var out T
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&out), rec.Body.String())
	return out
}

type RouterSuite struct {
	suite.Suite
	b        *memory.Backend
	registry *session.Registry
	router   http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.b = memory.New(memory.WithPasswordCost(bcrypt.MinCost))
	f, err := memory.DevFixtures()
	s.Require().NoError(err)
	s.Require().NoError(s.b.Apply(f))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.registry = session.NewRegistry(s.b, session.Config{SiteURL: "https://orcs.test", Logger: logger}, time.Hour, nil)
	s.T().Cleanup(func() { _ = s.registry.Close() })

	deps := Deps{Sessions: s.registry, Logger: logger}
	h := NewHandler(Config{AccessWait: 2 * time.Second, RequestTimeout: 5 * time.Second}, deps)
	s.router = NewRouter(h, deps)
}

func (s *RouterSuite) newVisitor() *visitor {
	return &visitor{s: s}
}

// A: a new member signs up, waits in the pending list, and an admin
// approves them.
func (s *RouterSuite) TestScenarioSignUpThenApproval() {
	newcomer := s.newVisitor()
	rec := newcomer.do(http.MethodPost, "/inscription", map[string]string{
		"email": "a@b.com", "password": "secret-pass", "full_name": "Anne Bernard",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	signedUp := decode[SignUpResponse](s, rec)
	s.Require().NotNil(signedUp.Session)
	s.Require().NotNil(signedUp.Session.UserID)
	s.Equal(domain.MembershipPending, signedUp.Session.MembershipStatus)
	newID := *signedUp.Session.UserID

	admin := s.newVisitor()
	admin.signIn("president@orcs.test")

	page := decode[AdminResponse](s, admin.do(http.MethodGet, "/admin", nil))
	s.Contains(memberIDs(page.Pending), newID)

	rec = admin.do(http.MethodPut, "/admin/membres/"+newID.String()+"/statut", map[string]string{"status": "active"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[MemberResponse](s, rec)
	s.Equal(domain.MembershipActive, updated.Member.MembershipStatus)

	page = decode[AdminResponse](s, admin.do(http.MethodGet, "/admin", nil))
	s.NotContains(memberIDs(page.Pending), newID)
}

// B: a committee member hands key #1 from its holder to another member.
func (s *RouterSuite) TestScenarioKeyHandoff() {
	ids := testutil.TestIDs
	treasurer := s.newVisitor()
	treasurer.signIn("tresorier@orcs.test")

	rec := treasurer.do(http.MethodPost, "/gestion-cles/transferts", map[string]string{
		"key_id":       ids.Key1.String(),
		"from_user_id": ids.AdminID.String(),
		"to_user_id":   ids.MemberID.String(),
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	board := decode[models.Board](s, rec)
	s.Require().Len(board.Pending, 1)
	pending := board.Pending[0]
	s.Equal("Alice Martin", pending.FromUserName)
	s.Equal("Chloé Dubois", pending.ToUserName)
	historyBefore := len(board.History)

	rec = treasurer.do(http.MethodPost, "/gestion-cles/transferts/"+pending.ID.String()+"/confirmer", nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	board = decode[models.Board](s, rec)

	s.Empty(board.Pending)
	s.Require().Len(board.History, historyBefore+1)
	s.Equal(pending.ID, board.History[0].ID)
	key1 := board.Keys[0]
	s.Equal(1, key1.KeyNumber)
	s.Equal(models.KeyHeld, key1.Status)
	s.Require().NotNil(key1.CurrentHolderID)
	s.Equal(ids.MemberID, *key1.CurrentHolderID)
	s.Equal("Chloé Dubois", key1.HolderName)

	rec = treasurer.do(http.MethodPost, "/gestion-cles/transferts/"+pending.ID.String()+"/confirmer", nil)
	s.Equal(http.StatusConflict, rec.Code)

	rec = treasurer.do(http.MethodGet, "/gestion-cles/reconciliation", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"consistent":true,"inconsistencies":[]}`, rec.Body.String())
}

// C: a plain member is sent away from the members area.
func (s *RouterSuite) TestScenarioPlainMemberDenied() {
	member := s.newVisitor()
	member.signIn("membre@orcs.test")

	rec := member.do(http.MethodGet, "/membres", nil)
	s.Equal(http.StatusSeeOther, rec.Code)
	s.Equal("/", rec.Header().Get("Location"))

	rec = member.do(http.MethodGet, "/gestion-cles", nil)
	s.Equal(http.StatusSeeOther, rec.Code)
	s.Equal("/", rec.Header().Get("Location"))

	rec = member.do(http.MethodGet, "/admin", nil)
	s.Equal(http.StatusSeeOther, rec.Code)
	s.Equal("/", rec.Header().Get("Location"))
}

func (s *RouterSuite) TestMembersDirectoryForAdminOfficer() {
	admin := s.newVisitor()
	admin.signIn("president@orcs.test")

	rec := admin.do(http.MethodGet, "/membres?recherche=chloe", nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	page := decode[MembersResponse](s, rec)
	s.Require().Len(page.Members, 1)
	s.Equal("Chloé Dubois", page.Members[0].Name())
	s.Equal(4, page.Stats.Total)
	s.Equal(2, page.Stats.Board)
}

func (s *RouterSuite) TestSignedOutVisitor() {
	anon := s.newVisitor()

	rec := anon.do(http.MethodGet, "/profil", nil)
	s.Equal(http.StatusSeeOther, rec.Code)
	s.Equal("/connexion", rec.Header().Get("Location"))

	rec = anon.do(http.MethodGet, "/session", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	got := decode[SessionResponse](s, rec)
	s.False(got.SignedIn)
	s.Equal("Firefox on Linux", got.Device)
	s.NotNil(anon.cookie)
}

func (s *RouterSuite) TestSignInSignOut() {
	v := s.newVisitor()

	rec := v.do(http.MethodPost, "/connexion", map[string]string{"email": "membre@orcs.test", "password": "wrong"})
	s.Equal(http.StatusUnauthorized, rec.Code)
	failed := decode[AuthErrorResponse](s, rec)
	s.Equal("invalid_credentials", failed.Error)
	s.Equal("Email ou mot de passe incorrect", failed.ErrorDescription)

	got := v.signIn("Membre@Orcs.test ")
	s.True(got.SignedIn)
	s.Equal("Chloé Dubois", got.DisplayName)
	s.False(got.IsLoading)
	s.False(got.IsCAMember)

	rec = v.do(http.MethodPost, "/deconnexion", nil)
	s.Equal(http.StatusSeeOther, rec.Code)
	s.Equal("/", rec.Header().Get("Location"))

	after := decode[SessionResponse](s, v.do(http.MethodGet, "/session", nil))
	s.False(after.SignedIn)
	s.Empty(after.Roles)
}

func (s *RouterSuite) TestSignInLockout() {
	v := s.newVisitor()
	for range 5 {
		rec := v.do(http.MethodPost, "/connexion", map[string]string{"email": "membre@orcs.test", "password": "wrong"})
		s.Require().Equal(http.StatusUnauthorized, rec.Code)
	}

	rec := v.do(http.MethodPost, "/connexion", map[string]string{"email": "MEMBRE@orcs.test", "password": devPassword})
	s.Equal(http.StatusTooManyRequests, rec.Code)
	s.NotEmpty(rec.Header().Get("Retry-After"))
	s.Equal("too_many_attempts", decode[AuthErrorResponse](s, rec).Error)

	// other accounts from the same address are unaffected
	s.newVisitor().signIn("tresorier@orcs.test")
}

func (s *RouterSuite) TestProfileAndCommunities() {
	v := s.newVisitor()
	v.signIn("membre@orcs.test")

	rec := v.do(http.MethodPut, "/profil", map[string]any{"full_name": " Chloé D. ", "activities": []string{"MTG", "jdr"}})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	saved := decode[MemberResponse](s, rec)
	s.Equal("Chloé D.", saved.Member.Name())
	s.ElementsMatch([]string{"mtg", "jdr"}, saved.Member.Activities)

	sess := decode[SessionResponse](s, v.do(http.MethodGet, "/session", nil))
	s.Equal("Chloé D.", sess.DisplayName)

	rec = v.do(http.MethodPost, "/profil/communautes", map[string]string{"community": "discord"})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	rec = v.do(http.MethodPost, "/profil/communautes", map[string]string{"community": "discord"})
	s.Equal(http.StatusConflict, rec.Code)

	profile := decode[ProfileResponse](s, v.do(http.MethodGet, "/profil", nil))
	s.Len(profile.Communities, 1)
}

func (s *RouterSuite) TestPublicPages() {
	v := s.newVisitor()

	cal := decode[CalendarResponse](s, v.do(http.MethodGet, "/calendrier", nil))
	s.Require().Len(cal.Months, 1)
	s.Equal("2025-04", cal.Months[0].Key)
	s.Len(cal.Months[0].Events, 2)

	list := decode[EventsResponse](s, v.do(http.MethodGet, "/evenements", nil))
	s.Len(list.Events, 2)

	seats := decode[BoardResponse](s, v.do(http.MethodGet, "/bureau", nil))
	s.Require().Len(seats.Board, 2)
	s.Equal("Président", seats.Board[0].Title())

	rec := v.do(http.MethodGet, "/", nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterSuite) TestEventRegistration() {
	v := s.newVisitor()
	v.signIn("membre@orcs.test")
	const event = "/evenements/eeee0000-0000-0000-0000-000000000001"

	rec := v.do(http.MethodPost, event+"/inscription", nil)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	detail := decode[EventDetailResponse](s, v.do(http.MethodGet, event, nil))
	s.Len(detail.Registrations, 1)
	s.Require().NotNil(detail.Mine)

	rec = v.do(http.MethodPost, event+"/inscription", nil)
	s.Equal(http.StatusConflict, rec.Code)

	rec = v.do(http.MethodDelete, event+"/inscription", nil)
	s.Equal(http.StatusNoContent, rec.Code)
}

func TestRedirectsAndFallbacks(t *testing.T) {
	deps := Deps{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	router := NewRouter(NewHandler(Config{}, deps), deps)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth", nil))
	assert.Equal(t, http.StatusPermanentRedirect, rec.Code)
	assert.Equal(t, "/connexion", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nulle-part", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "not_found", body["error"])
}

func memberIDs(list []members.Member) []domain.UserID {
	out := make([]domain.UserID, 0, len(list))
	for _, m := range list {
		out = append(out, m.ID)
	}
	return out
}
