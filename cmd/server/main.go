package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"orcs/internal/backend"
	"orcs/internal/backend/memory"
	"orcs/internal/backend/rest"
	"orcs/internal/notify"
	"orcs/internal/platform/config"
	"orcs/internal/platform/health"
	"orcs/internal/platform/logger"
	"orcs/internal/platform/metrics"
	"orcs/internal/platform/middleware"
	"orcs/internal/platform/tracer"
	"orcs/internal/ratelimit/lockout"
	"orcs/internal/session"
	"orcs/internal/session/workers/cleanup"
	httptransport "orcs/internal/transport/http"
	"orcs/pkg/platform/audit"
	"orcs/pkg/platform/audit/publisher"
	auditmemory "orcs/pkg/platform/audit/store/memory"
	"orcs/pkg/platform/circuit"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "orcs:", err)
		os.Exit(1)
	}
}

// connector is a backend that can also be probed for readiness.
type connector interface {
	backend.Connector
	Ping(ctx context.Context) error
}

func run(args []string) error {
	cfg, err := config.Load(args, os.Getenv)
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)
	m := metrics.New(prometheus.DefaultRegisterer)

	log.Info("initializing orcs portal",
		"addr", cfg.Server.Addr,
		"environment", string(cfg.Environment),
		"backend", cfg.Backend.Kind,
	)

	auditStore := auditmemory.New(cfg.Audit.Capacity)
	auditPublisher := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(cfg.Audit.Buffer),
		publisher.WithPublisherLogger(log),
	)
	defer auditPublisher.Close()
	auditLogger := audit.NewLogger(log, auditPublisher)

	conn, err := newConnector(cfg, log, m)
	if err != nil {
		return err
	}

	registry := session.NewRegistry(conn, session.Config{
		SiteURL: cfg.SiteURL,
		Logger:  log,
		Metrics: m,
		Audit:   auditLogger,
	}, cfg.Session.IdleTTL, m)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	signIn := lockout.New(lockout.Config{
		Attempts: cfg.SignIn.Attempts,
		Window:   cfg.SignIn.Window,
		LockFor:  cfg.SignIn.LockFor,
	}, lockout.WithLogger(log), lockout.WithAuditLogger(auditLogger))

	for name, target := range map[string]cleanup.Sweeper{"sessions": registry, "sign-in lockout": signIn} {
		sweeper, err := cleanup.New(target,
			cleanup.WithCleanupInterval(cfg.Session.SweepInterval),
			cleanup.WithCleanupLogger(log.With("sweeper", name)),
		)
		if err != nil {
			return err
		}
		go func() {
			if err := sweeper.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("cleanup worker stopped", "sweeper", name, "error", err)
			}
		}()
	}

	probes := health.New(string(cfg.Environment))
	probes.RegisterCheck("backend", conn.Ping)
	probes.RegisterGauge("active_sessions", registry.Len)
	probes.RegisterGauge("tracked_sign_ins", signIn.Len)

	deps := httptransport.Deps{
		Sessions: registry,
		Logger:   log,
		Audit:    auditLogger,
		Notifier: notify.NewDeferredEmail(log),
		Metrics:  m,
		Lockout:  signIn,
		Mount: func(r chi.Router) {
			probes.Register(r)
			r.Handle("/metrics", promhttp.Handler())
		},
	}
	handler := httptransport.NewHandler(httptransport.Config{
		RequestTimeout: cfg.Server.RequestTimeout,
		AccessWait:     middleware.DefaultAccessWait,
		Visitor: middleware.VisitorConfig{
			Secure: cfg.Session.CookieSecure || cfg.IsProduction(),
			MaxAge: 30 * 24 * time.Hour,
		},
		TrustedProxies:    cfg.Server.TrustedProxies,
		Location:          cfg.Location(),
		KeysHistoryLimit:  cfg.Keys.HistoryLimit,
		KeysAtomicConfirm: cfg.Keys.AtomicConfirm,
	}, deps)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           httptransport.NewRouter(handler, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting http server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if err := registry.Close(); err != nil {
		log.Warn("closing visitor sessions", "error", err)
	}

	log.Info("server stopped")
	return nil
}

func newConnector(cfg *config.Config, log *slog.Logger, m *metrics.Metrics) (connector, error) {
	switch cfg.Backend.Kind {
	case config.BackendMemory:
		b := memory.New()
		fixtures, err := loadFixtures(cfg.Backend.FixturesPath)
		if err != nil {
			return nil, err
		}
		if err := b.Apply(fixtures); err != nil {
			return nil, fmt.Errorf("seeding memory backend: %w", err)
		}
		log.Warn("using the in-memory backend; data is lost on restart")
		return b, nil
	default:
		return rest.New(rest.Config{
			BaseURL:        cfg.Backend.URL,
			PublishableKey: cfg.Backend.PublishableKey,
			Timeout:        cfg.Backend.Timeout,
			Breaker: circuit.New("backend",
				circuit.WithFailureThreshold(cfg.Backend.BreakerFailures),
				circuit.WithCooldown(cfg.Backend.BreakerCooldown),
			),
			Tracer:   tracer.NewOTel(),
			Observer: m,
			Logger:   log,
		})
	}
}

func loadFixtures(path string) (*memory.Fixtures, error) {
	if path == "" {
		return memory.DevFixtures()
	}
	return memory.LoadFixtures(path)
}
