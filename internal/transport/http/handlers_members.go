package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"orcs/internal/board"
	"orcs/internal/members"
	"orcs/internal/session"
	"orcs/pkg/domain"
	dErrors "orcs/pkg/domain-errors"
	"orcs/pkg/platform/httputil"
	"orcs/pkg/requestcontext"
)

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := requestcontext.UserID(ctx)

	var res ProfileResponse
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		res.Profile, err = h.members(gctx).Get(gctx, uid)
		return err
	})
	g.Go(func() error {
		var err error
		res.Communities, err = h.community(gctx).List(gctx, uid)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.ErrorContext(ctx, "failed to load profile",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", uid.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// handleSaveProfile stores the member's edits and refreshes their session so
// the new name shows up right away.
func (h *Handler) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	uid := requestcontext.UserID(ctx)

	req, ok := httputil.DecodeJSON[members.ProfileUpdate](w, r, h.logger)
	if !ok {
		return
	}
	saved, err := h.members(ctx).SaveProfile(ctx, uid, *req)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to save profile", "request_id", requestID, "user_id", uid.String(), "error", err)
		httputil.WriteError(w, err)
		return
	}
	if err := session.FromContext(ctx).RefreshProfile(ctx); err != nil {
		h.logger.WarnContext(ctx, "session refresh after profile save failed", "request_id", requestID, "error", err)
	}
	httputil.WriteJSON(w, http.StatusOK, MemberResponse{Member: saved})
}

func (h *Handler) handleRequestCommunity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeAndPrepare[CommunityRequest](w, r, h.logger)
	if !ok {
		return
	}
	reqs, err := h.community(ctx).Request(ctx, requestcontext.UserID(ctx), req.Community)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, CommunitiesResponse{Communities: reqs})
}

// handleMembers serves the directory, filtered by the search, activite and
// statut query parameters.
func (h *Handler) handleMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	all, boardIDs, err := h.directory(r)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load member directory",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	q := r.URL.Query()
	filter := members.Filter{
		Search:   q.Get("recherche"),
		Activity: q.Get("activite"),
		Status:   domain.MembershipStatus(q.Get("statut")),
	}
	httputil.WriteJSON(w, http.StatusOK, MembersResponse{
		Members: filter.Apply(all),
		Stats:   members.ComputeStats(all, boardIDs),
	})
}

func (h *Handler) handleAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var (
		all   []members.Member
		seats []board.Assignment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		all, err = h.members(gctx).List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		seats, err = h.board(gctx).ListActive(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.ErrorContext(ctx, "failed to load admin page",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	boardIDs := make([]domain.UserID, 0, len(seats))
	for _, s := range seats {
		boardIDs = append(boardIDs, s.UserID)
	}
	pending := members.Filter{Status: domain.MembershipPending}.Apply(all)
	httputil.WriteJSON(w, http.StatusOK, AdminResponse{
		Pending: pending,
		Members: all,
		Stats:   members.ComputeStats(all, boardIDs),
		Board:   seats,
	})
}

func (h *Handler) directory(r *http.Request) ([]members.Member, []domain.UserID, error) {
	ctx := r.Context()
	var (
		all      []members.Member
		boardIDs []domain.UserID
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		all, err = h.members(gctx).List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		boardIDs, err = h.board(gctx).MemberIDs(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return all, boardIDs, nil
}

func memberID(r *http.Request) (domain.UserID, error) {
	id, err := domain.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		return domain.UserID{}, dErrors.New(dErrors.CodeBadRequest, "invalid member id")
	}
	return id, nil
}

func (h *Handler) handleUpdateMemberStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, err := memberID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[StatusRequest](w, r, h.logger)
	if !ok {
		return
	}
	updated, err := h.members(ctx).UpdateStatus(ctx, id, req.Status)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to update member status",
			"request_id", requestID,
			"user_id", id.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MemberResponse{Member: updated})
}

func (h *Handler) handleUpdateMemberActivities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := memberID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeJSON[ActivitiesRequest](w, r, h.logger)
	if !ok {
		return
	}
	updated, err := h.members(ctx).UpdateActivities(ctx, id, req.Activities)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MemberResponse{Member: updated})
}

func (h *Handler) handleAddBoardSeat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[BoardSeatRequest](w, r, h.logger)
	if !ok {
		return
	}
	seat, err := h.board(ctx).Add(ctx, req.UserID, req.BoardRole)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to add board seat", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, BoardSeatResponse{Seat: seat})
}

func (h *Handler) handleRemoveBoardSeat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseAssignmentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid board seat id"))
		return
	}
	if err := h.board(ctx).Remove(ctx, id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
