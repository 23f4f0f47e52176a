// Package httptransport is the portal's HTTP surface: the public pages, the
// auth endpoints and the gated member, admin and key custody areas.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"orcs/internal/backend"
	"orcs/internal/board"
	"orcs/internal/community"
	"orcs/internal/events"
	keyshandler "orcs/internal/keys/handler"
	keyservice "orcs/internal/keys/service"
	keystore "orcs/internal/keys/store"
	"orcs/internal/members"
	"orcs/internal/notify"
	"orcs/internal/platform/middleware"
	"orcs/internal/ratelimit/lockout"
	"orcs/internal/session"
	"orcs/pkg/platform/audit"
	"orcs/pkg/platform/httputil"
	"orcs/pkg/platform/middleware/device"
	"orcs/pkg/platform/middleware/metadata"
	"orcs/pkg/platform/middleware/request"
	"orcs/pkg/platform/middleware/requesttime"
)

const (
	maxBodyBytes      = 1 << 20
	defaultSettleWait = 2 * time.Second
)

// Config holds the transport settings.
type Config struct {
	RequestTimeout time.Duration
	// AccessWait bounds how long gated pages wait for a loading session.
	AccessWait     time.Duration
	Visitor        middleware.VisitorConfig
	TrustedProxies []string
	// Location is the club's time zone, used to group the calendar.
	Location          *time.Location
	KeysHistoryLimit  int
	KeysAtomicConfirm bool
}

// Metrics is what the transport and the services it builds report to.
// *metrics.Metrics satisfies it.
type Metrics interface {
	keyservice.Metrics
	request.LatencyObserver
}

// Deps are the long-lived collaborators shared by every request.
type Deps struct {
	Sessions middleware.SessionSource
	Logger   *slog.Logger
	Audit    *audit.Logger
	Notifier notify.Notifier
	Metrics  Metrics
	// Lockout throttles password sign-in; nil uses lockout.DefaultConfig.
	Lockout *lockout.Lockout
	// Mount registers extra routes outside the visitor session, e.g.
	// health probes and /metrics.
	Mount func(chi.Router)
}

// Handler is the thin HTTP layer. Services are built per request on the
// visitor's backend connection.
type Handler struct {
	cfg      Config
	logger   *slog.Logger
	audit    *audit.Logger
	notifier notify.Notifier
	metrics  Metrics
	lockout  *lockout.Lockout
}

func NewHandler(cfg Config, deps Deps) *Handler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	if deps.Lockout == nil {
		deps.Lockout = lockout.New(lockout.DefaultConfig(),
			lockout.WithLogger(deps.Logger),
			lockout.WithAuditLogger(deps.Audit),
		)
	}
	return &Handler{
		cfg:      cfg,
		logger:   deps.Logger,
		audit:    deps.Audit,
		notifier: deps.Notifier,
		metrics:  deps.Metrics,
		lockout:  deps.Lockout,
	}
}

// NewRouter wires every endpoint with its middleware.
func NewRouter(h *Handler, deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(h.logger))
	r.Use(request.RequestID)
	r.Use(metadata.NewMiddleware(&metadata.Config{
		TrustedProxies: metadata.ParseTrustedProxies(h.cfg.TrustedProxies),
	}).Handler)
	r.Use(device.Device)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(h.logger))
	if h.metrics != nil {
		r.Use(request.Latency(h.metrics))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method_not_allowed"})
	})
	r.Handle("/auth", http.RedirectHandler(session.LoginPath, http.StatusPermanentRedirect))

	if deps.Mount != nil {
		deps.Mount(r)
	}

	r.Group(func(r chi.Router) {
		if h.cfg.RequestTimeout > 0 {
			r.Use(request.Timeout(h.cfg.RequestTimeout))
		}
		r.Use(request.BodyLimit(maxBodyBytes))
		r.Use(request.ContentTypeJSON)
		r.Use(middleware.Visitor(h.cfg.Visitor))
		r.Use(middleware.Session(deps.Sessions, h.logger))

		r.Get("/", h.handleHome)
		r.Get("/evenements", h.handleEvents)
		r.Get("/evenements/{id}", h.handleEvent)
		r.Get("/calendrier", h.handleCalendar)
		r.Get("/bureau", h.handleBoard)

		r.Post("/connexion", h.handleSignIn)
		r.Post("/inscription", h.handleSignUp)
		r.Post("/deconnexion", h.handleSignOut)
		r.Get("/session", h.handleSession)

		r.Group(func(r chi.Router) {
			r.Use(h.gate(session.AreaProfile))
			r.Get("/profil", h.handleGetProfile)
			r.Put("/profil", h.handleSaveProfile)
			r.Post("/profil/communautes", h.handleRequestCommunity)
			r.Post("/evenements/{id}/inscription", h.handleRegister)
			r.Delete("/evenements/{id}/inscription", h.handleCancelRegistration)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.gate(session.AreaMembers))
			r.Get("/membres", h.handleMembers)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.gate(session.AreaAdmin))
			r.Get("/admin", h.handleAdmin)
			r.Put("/admin/membres/{id}/statut", h.handleUpdateMemberStatus)
			r.Put("/admin/membres/{id}/activites", h.handleUpdateMemberActivities)
			r.Post("/admin/bureau", h.handleAddBoardSeat)
			r.Delete("/admin/bureau/{id}", h.handleRemoveBoardSeat)
			r.Post("/admin/evenements", h.handleCreateEvent)
			r.Put("/admin/evenements/{id}", h.handleUpdateEvent)
			r.Delete("/admin/evenements/{id}", h.handleDeleteEvent)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.gate(session.AreaKeys))
			keyshandler.New(h.keys, h.logger).Register(r)
		})
	})

	return r
}

func (h *Handler) gate(area session.Area) func(http.Handler) http.Handler {
	return middleware.RequireAccess(area, h.cfg.AccessWait, h.logger)
}

func (h *Handler) data(ctx context.Context) backend.DataAPI {
	return session.FromContext(ctx).Data()
}

func (h *Handler) members(ctx context.Context) *members.Service {
	return members.New(h.data(ctx),
		members.WithNotifier(h.notifier),
		members.WithAuditLogger(h.audit),
		members.WithLogger(h.logger),
	)
}

func (h *Handler) board(ctx context.Context) *board.Service {
	return board.New(h.data(ctx), h.audit)
}

func (h *Handler) events(ctx context.Context) *events.Service {
	return events.New(h.data(ctx))
}

func (h *Handler) community(ctx context.Context) *community.Service {
	return community.New(h.data(ctx), h.audit)
}

func (h *Handler) keys(ctx context.Context) keyshandler.Service {
	opts := []keyservice.Option{
		keyservice.WithLogger(h.logger),
		keyservice.WithAuditLogger(h.audit),
		keyservice.WithHistoryLimit(h.cfg.KeysHistoryLimit),
		keyservice.WithAtomicConfirm(h.cfg.KeysAtomicConfirm),
	}
	if h.metrics != nil {
		opts = append(opts, keyservice.WithMetrics(h.metrics))
	}
	return keyservice.New(keystore.New(h.data(ctx)), opts...)
}
