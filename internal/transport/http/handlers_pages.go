package httptransport

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"orcs/internal/board"
	"orcs/internal/events"
	"orcs/internal/session"
	"orcs/pkg/platform/httputil"
	"orcs/pkg/platform/middleware/requesttime"
	"orcs/pkg/requestcontext"
)

const homeUpcomingLimit = 3

// handleHome answers the landing page: who is signed in, the next events and
// the board.
func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var (
		all   []events.Event
		seats []board.Assignment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		all, err = h.events(gctx).List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		seats, err = h.board(gctx).ListActive(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.ErrorContext(ctx, "failed to load home page",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	upcoming := events.Upcoming(all, requesttime.Now(ctx))
	if len(upcoming) > homeUpcomingLimit {
		upcoming = upcoming[:homeUpcomingLimit]
	}
	httputil.WriteJSON(w, http.StatusOK, HomeResponse{
		Session:  toSessionResponse(session.FromContext(ctx).Snapshot(), requestcontext.DeviceLabel(ctx)),
		Upcoming: upcoming,
		Board:    seats,
	})
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.events(ctx).List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list events",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if r.URL.Query().Get("a_venir") == "1" {
		list = events.Upcoming(list, requesttime.Now(ctx))
	}
	httputil.WriteJSON(w, http.StatusOK, EventsResponse{Events: list})
}

func (h *Handler) handleCalendar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.events(ctx).List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load calendar",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CalendarResponse{Months: events.ByMonth(list, h.cfg.Location)})
}

func (h *Handler) handleBoard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	seats, err := h.board(ctx).ListActive(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list board",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, BoardResponse{Board: seats})
}
