package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"orcs/internal/keys/handler/mocks"
	"orcs/internal/keys/models"
	"orcs/pkg/domain"
	dErrors "orcs/pkg/domain-errors"
	"orcs/pkg/testutil"
)

var transferID = domain.TransferID(uuid.MustParse("dddd0000-0000-0000-0000-000000000009"))

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
	board   *models.Board
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(func(context.Context) Service { return s.service }, logger)
	s.router = chi.NewRouter()
	h.Register(s.router)

	holder := testutil.TestIDs.AdminID
	s.board = &models.Board{
		Keys: []models.Key{
			{ID: testutil.TestIDs.Key1, KeyNumber: 1, CurrentHolderID: &holder, Status: models.KeyHeld, HolderName: "Alice Martin"},
		},
		Pending: []models.Transfer{},
		History: []models.Transfer{},
	}
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) decodeError(rec *httptest.ResponseRecorder) string {
	var body map[string]string
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
	return body["error"]
}

func (s *HandlerSuite) TestBoard() {
	s.service.EXPECT().Board(gomock.Any()).Return(s.board, nil)

	rec := s.do(http.MethodGet, "/gestion-cles", "")

	s.Equal(http.StatusOK, rec.Code)
	var got models.Board
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&got))
	s.Require().Len(got.Keys, 1)
	s.Equal("Alice Martin", got.Keys[0].HolderName)
}

func (s *HandlerSuite) TestInitiate() {
	ids := testutil.TestIDs
	s.Run("creates and answers with the board", func() {
		from := ids.AdminID
		s.service.EXPECT().InitiateTransfer(gomock.Any(), ids.Key1, &from, ids.TreasurerID).
			Return(&models.Transfer{}, nil)
		s.service.EXPECT().Board(gomock.Any()).Return(s.board, nil)

		body := `{"key_id":"` + ids.Key1.String() + `","from_user_id":"` + ids.AdminID.String() +
			`","to_user_id":"` + ids.TreasurerID.String() + `"}`
		rec := s.do(http.MethodPost, "/gestion-cles/transferts", body)
		s.Equal(http.StatusCreated, rec.Code)
	})

	s.Run("from is optional", func() {
		s.service.EXPECT().InitiateTransfer(gomock.Any(), ids.Key1, nil, ids.TreasurerID).
			Return(&models.Transfer{}, nil)
		s.service.EXPECT().Board(gomock.Any()).Return(s.board, nil)

		body := `{"key_id":"` + ids.Key1.String() + `","to_user_id":"` + ids.TreasurerID.String() + `"}`
		rec := s.do(http.MethodPost, "/gestion-cles/transferts", body)
		s.Equal(http.StatusCreated, rec.Code)
	})

	s.Run("missing recipient", func() {
		rec := s.do(http.MethodPost, "/gestion-cles/transferts", `{"key_id":"`+ids.Key1.String()+`"}`)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("validation_error", s.decodeError(rec))
	})

	s.Run("malformed id", func() {
		rec := s.do(http.MethodPost, "/gestion-cles/transferts", `{"key_id":"cle-1","to_user_id":"`+ids.TreasurerID.String()+`"}`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("malformed json", func() {
		rec := s.do(http.MethodPost, "/gestion-cles/transferts", `{`)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("bad_request", s.decodeError(rec))
	})
}

func (s *HandlerSuite) TestConfirm() {
	s.Run("ok", func() {
		s.service.EXPECT().ConfirmTransfer(gomock.Any(), transferID).Return(nil)
		s.service.EXPECT().Board(gomock.Any()).Return(s.board, nil)

		rec := s.do(http.MethodPost, "/gestion-cles/transferts/"+transferID.String()+"/confirmer", "")
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("already confirmed", func() {
		s.service.EXPECT().ConfirmTransfer(gomock.Any(), transferID).
			Return(dErrors.New(dErrors.CodeConflict, "transfer already confirmed"))

		rec := s.do(http.MethodPost, "/gestion-cles/transferts/"+transferID.String()+"/confirmer", "")
		s.Equal(http.StatusConflict, rec.Code)
		s.Equal("conflict", s.decodeError(rec))
	})

	s.Run("bad id", func() {
		rec := s.do(http.MethodPost, "/gestion-cles/transferts/not-a-uuid/confirmer", "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestCancel() {
	s.Run("ok", func() {
		s.service.EXPECT().CancelTransfer(gomock.Any(), transferID).Return(nil)
		s.service.EXPECT().Board(gomock.Any()).Return(s.board, nil)

		rec := s.do(http.MethodDelete, "/gestion-cles/transferts/"+transferID.String(), "")
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("unknown", func() {
		s.service.EXPECT().CancelTransfer(gomock.Any(), transferID).
			Return(dErrors.New(dErrors.CodeNotFound, "transfer not found"))

		rec := s.do(http.MethodDelete, "/gestion-cles/transferts/"+transferID.String(), "")
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *HandlerSuite) TestReconcile() {
	s.Run("clean", func() {
		s.service.EXPECT().Reconcile(gomock.Any()).Return(nil, nil)

		rec := s.do(http.MethodGet, "/gestion-cles/reconciliation", "")
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"consistent":true,"inconsistencies":[]}`, rec.Body.String())
	})

	s.Run("flags", func() {
		s.service.EXPECT().Reconcile(gomock.Any()).Return([]models.Inconsistency{
			{KeyID: testutil.TestIDs.Key2, KeyNumber: 2, Kind: models.LedgerHolderMismatch},
		}, nil)

		rec := s.do(http.MethodGet, "/gestion-cles/reconciliation", "")
		var got ReconcileResponse
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&got))
		s.False(got.Consistent)
		s.Len(got.Inconsistencies, 1)
	})
}

func (s *HandlerSuite) TestBoardUnavailable() {
	s.service.EXPECT().Board(gomock.Any()).Return(nil, dErrors.New(dErrors.CodeUnavailable, "backend unavailable"))

	rec := s.do(http.MethodGet, "/gestion-cles", "")
	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Equal("1", rec.Header().Get("Retry-After"))
}
