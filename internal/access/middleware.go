package access

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/solarops/solarops/internal/auth"
	"github.com/solarops/solarops/internal/identity"
	"github.com/solarops/solarops/internal/modules"
	"github.com/solarops/solarops/internal/platform/middleware"
)

// DenialLogger receives module denials from RequireModule.
type DenialLogger interface {
	LogDenial(ctx context.Context, id *identity.Identity, moduleID modules.ID, reason string)
}

// SlogDenials writes denials to a structured logger. They are not
// persisted.
type SlogDenials struct {
	Logger *slog.Logger
}

func (s SlogDenials) LogDenial(ctx context.Context, id *identity.Identity, moduleID modules.ID, reason string) {
	if s.Logger == nil || id == nil {
		return
	}
	s.Logger.InfoContext(ctx, "module access denied",
		"user_id", id.ID,
		"department", string(id.Department),
		"module", string(moduleID),
		"reason", reason,
		"request_id", middleware.GetRequestID(ctx),
	)
}

// MiddlewareOption configures RequireModule.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	denials DenialLogger
}

// WithDenialLogger reports every refused module entry to logger.
func WithDenialLogger(logger DenialLogger) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.denials = logger
	}
}

// RequireModule returns middleware that only lets through callers allowed
// to enter moduleID.
func RequireModule(gate *Gate, moduleID modules.ID, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	var mc middlewareConfig
	for _, opt := range opts {
		opt(&mc)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := auth.GetIdentity(r.Context())
			if id == nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"error": "authentication required",
				})
				return
			}

			if _, err := gate.Enter(id, moduleID); err != nil {
				if errors.Is(err, ErrModuleDenied) {
					if mc.denials != nil {
						mc.denials.LogDenial(r.Context(), id, moduleID, err.Error())
					}
					writeJSON(w, http.StatusForbidden, map[string]string{
						"error":  "forbidden",
						"reason": err.Error(),
					})
					return
				}
				writeJSON(w, http.StatusInternalServerError, map[string]string{
					"error": "authorization check failed",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
