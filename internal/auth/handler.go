package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/solarops/solarops/internal/identity"
)

// Login outcomes reported to a LoginRecorder.
const (
	LoginSuccess  = "success"
	LoginRejected = "rejected"
	LoginError    = "error"
)

// LoginRecorder counts login attempts by outcome.
type LoginRecorder interface {
	RecordLogin(result string)
}

// HandlerConfig holds the dependencies of Handler. Recorder and Logger are
// optional.
type HandlerConfig struct {
	TokenSvc *TokenService
	Resolver identity.Resolver
	Recorder LoginRecorder
	Logger   *slog.Logger
}

// Handler handles authentication HTTP endpoints.
type Handler struct {
	tokenSvc *TokenService
	resolver identity.Resolver
	recorder LoginRecorder
	logger   *slog.Logger
}

func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		tokenSvc: cfg.TokenSvc,
		resolver: cfg.Resolver,
		recorder: cfg.Recorder,
		logger:   logger,
	}
}

// RegisterRoutes registers the public auth routes on the given mux.
// GET /auth/me needs the auth middleware and is mounted by the server.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/login", h.HandleLogin)
	mux.HandleFunc("POST /auth/logout", h.HandleLogout)
	mux.HandleFunc("POST /auth/token/refresh", h.HandleRefresh)
}

type loginRequest struct {
	Handle string `json:"handle"`
	// Password is accepted and ignored; logins are by handle only.
	Password string `json:"password,omitempty"`
}

type tokenResponse struct {
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token"`
	TokenType    string             `json:"token_type"`
	ExpiresIn    int64              `json:"expires_in"`
	Identity     *identity.Identity `json:"identity"`
}

// HandleLogin resolves the handle against the directory and issues tokens.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
		return
	}
	if strings.TrimSpace(req.Handle) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "handle is required",
		})
		return
	}

	id, err := h.resolver.Resolve(req.Handle)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			h.record(LoginRejected)
			h.logger.Info("login rejected", "handle", req.Handle)
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "invalid handle",
			})
			return
		}
		h.record(LoginError)
		h.logger.Error("resolving handle", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "identity lookup failed",
		})
		return
	}

	resp, err := h.issue(&id)
	if err != nil {
		h.record(LoginError)
		h.logger.Error("issuing tokens", "error", err, "user_id", id.ID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "token creation failed",
		})
		return
	}

	h.record(LoginSuccess)
	h.logger.Info("login succeeded", "user_id", id.ID)
	writeJSON(w, http.StatusOK, resp)
}

// HandleLogout acknowledges a logout. Tokens are stateless, so the client
// discarding them is what ends the session.
func (h *Handler) HandleLogout(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// HandleRefresh exchanges a refresh token for new tokens. The identity is
// re-read from the directory so removed accounts cannot refresh.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
		return
	}

	claims, err := h.tokenSvc.ValidateToken(req.RefreshToken)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error": "invalid refresh token",
		})
		return
	}

	if claims.TokenType != TokenTypeRefresh {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error": "refresh token required",
		})
		return
	}

	id, err := h.resolver.Resolve(claims.Identity.Handle)
	if err != nil || id.ID != claims.Identity.ID {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error": "identity no longer exists",
		})
		return
	}

	resp, err := h.issue(&id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "token creation failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleMe returns the caller's identity and its sidebar label.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id := GetIdentity(r.Context())
	if id == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error": "authentication required",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"identity":   id,
		"role_label": id.RoleLabel(),
	})
}

func (h *Handler) issue(id *identity.Identity) (*tokenResponse, error) {
	accessToken, err := h.tokenSvc.CreateAccessToken(id)
	if err != nil {
		return nil, err
	}
	refreshToken, err := h.tokenSvc.CreateRefreshToken(id)
	if err != nil {
		return nil, err
	}
	return &tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(h.tokenSvc.AccessTTL().Seconds()),
		Identity:     id,
	}, nil
}

func (h *Handler) record(result string) {
	if h.recorder != nil {
		h.recorder.RecordLogin(result)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
