package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/solarops/solarops/internal/api"
	"github.com/solarops/solarops/internal/audit"
	"github.com/solarops/solarops/internal/auth"
	"github.com/solarops/solarops/internal/identity"
	"github.com/solarops/solarops/internal/platform/metrics"
	"github.com/solarops/solarops/internal/platform/middleware"
)

// RateLimit configures the limiter on the public auth routes. A zero
// PerSecond disables it. X-Forwarded-For is only read from TrustedProxies.
type RateLimit struct {
	PerSecond      float64
	Burst          int
	TrustedProxies []netip.Prefix
}

// Dependencies holds all injected dependencies for the server.
type Dependencies struct {
	// Pool is nil when records live in memory.
	Pool               *pgxpool.Pool
	Auth               *auth.TokenService
	AuthHandler        *auth.Handler
	APIHandler         *api.Handler
	AuditHandler       *audit.Handler
	Metrics            *metrics.Metrics
	DevMode            bool
	DevIdentity        *identity.Identity
	Logger             *slog.Logger
	CORSAllowedOrigins []string
	LoginRateLimit     RateLimit
}

type Server struct {
	httpServer   *http.Server
	protectedMux *http.ServeMux
	pool         *pgxpool.Pool
	handler      http.Handler
}

func New(addr string, deps Dependencies) *Server {
	// Protected routes mux, wrapped with auth middleware
	protectedMux := http.NewServeMux()

	var protectedHandler http.Handler = metrics.Route(protectedMux)
	if deps.Auth != nil {
		if deps.DevMode && deps.DevIdentity != nil {
			protectedHandler = auth.MiddlewareWithDevMode(deps.Auth, deps.DevIdentity)(protectedHandler)
		} else {
			protectedHandler = auth.Middleware(deps.Auth)(protectedHandler)
		}
	}

	// Top-level mux: public routes + protected catch-all
	topMux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		protectedMux: protectedMux,
		pool:         deps.Pool,
	}

	// Public routes (no auth required)
	topMux.HandleFunc("GET /healthz", s.handleHealth)
	topMux.HandleFunc("GET /readyz", s.handleReadiness)
	if deps.Metrics != nil {
		topMux.Handle("GET /metrics", deps.Metrics.Handler())
	}

	if deps.AuthHandler != nil {
		authMux := http.NewServeMux()
		deps.AuthHandler.RegisterRoutes(authMux)

		var authRoutes http.Handler = metrics.Route(authMux)
		if deps.LoginRateLimit.PerSecond > 0 {
			rl := deps.LoginRateLimit
			authRoutes = middleware.RateLimit(rl.PerSecond, rl.Burst, middleware.WithTrustedProxies(rl.TrustedProxies))(authRoutes)
		}
		topMux.Handle("/auth/", authRoutes)

		// /auth/me needs a token, so it bypasses the public auth subtree.
		protectedMux.HandleFunc("GET /auth/me", deps.AuthHandler.HandleMe)
		topMux.Handle("GET /auth/me", protectedHandler)
	}

	if deps.APIHandler != nil {
		deps.APIHandler.RegisterRoutes(protectedMux)
	}

	if deps.AuditHandler != nil {
		protectedMux.HandleFunc("GET /api/v1/audit/events", deps.AuditHandler.HandleListEvents)
	}

	// All other routes go through auth middleware
	topMux.Handle("/", protectedHandler)

	// Wrap top-level mux with observability middleware
	var handler http.Handler = metrics.Route(topMux)
	if deps.Metrics != nil {
		handler = deps.Metrics.Instrument(handler)
	}
	if deps.Logger != nil {
		handler = middleware.Logging(deps.Logger)(handler)
	}
	handler = middleware.RequestID(handler)
	if len(deps.CORSAllowedOrigins) > 0 {
		handler = middleware.CORS(deps.CORSAllowedOrigins)(handler)
	}

	s.handler = handler
	s.httpServer.Handler = handler
	return s
}

// Handler returns the full middleware-wrapped handler chain (for testing).
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ProtectedMux returns the mux for authenticated routes.
func (s *Server) ProtectedMux() *http.ServeMux {
	return s.protectedMux
}

func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	listener, err := lc.Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.httpServer.Addr, err)
	}

	slog.Info("server starting", "addr", listener.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadiness reports ready without a pool: records are then served
// from memory and there is nothing to wait for.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if s.pool == nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ready",
			"storage": "memory",
		})
		return
	}

	if err := s.pool.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "database ping failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready", "storage": "postgres"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
