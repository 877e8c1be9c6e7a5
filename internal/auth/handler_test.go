package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/solarops/solarops/internal/auth"
	"github.com/solarops/solarops/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *countingRecorder) RecordLogin(result string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = map[string]int{}
	}
	c.counts[result]++
}

func newTestHandler(rec auth.LoginRecorder) (*auth.Handler, *auth.TokenService) {
	tokenSvc := newTestTokenService()
	return auth.NewHandler(auth.HandlerConfig{
		TokenSvc: tokenSvc,
		Resolver: identity.NewDefaultDirectory(),
		Recorder: rec,
	}), tokenSvc
}

func postJSON(t *testing.T, h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

type loginResponse struct {
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	TokenType    string            `json:"token_type"`
	ExpiresIn    int64             `json:"expires_in"`
	Identity     identity.Identity `json:"identity"`
}

func TestHandler_Login(t *testing.T) {
	rec := &countingRecorder{}
	handler, tokenSvc := newTestHandler(rec)

	w := postJSON(t, handler.HandleLogin, "/auth/login", `{"handle":"SALES_STAFF_1","password":"anything"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "U_S1", resp.Identity.ID)
	assert.Equal(t, int64(24*3600), resp.ExpiresIn)

	claims, err := tokenSvc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.Identity, claims.Identity)
	assert.Equal(t, 1, rec.counts[auth.LoginSuccess])
}

func TestHandler_Login_UnknownHandle(t *testing.T) {
	rec := &countingRecorder{}
	handler, _ := newTestHandler(rec)

	w := postJSON(t, handler.HandleLogin, "/auth/login", `{"handle":"nonexistent_user"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "invalid handle", body["error"])
	assert.Equal(t, 1, rec.counts[auth.LoginRejected])
}

func TestHandler_Login_BadRequests(t *testing.T) {
	handler, _ := newTestHandler(nil)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed body", `{`, "invalid request body"},
		{"missing handle", `{"password":"x"}`, "handle is required"},
		{"blank handle", `{"handle":"   "}`, "handle is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, handler.HandleLogin, "/auth/login", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}

func TestHandler_Logout(t *testing.T) {
	handler, _ := newTestHandler(nil)
	w := postJSON(t, handler.HandleLogout, "/auth/logout", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = postJSON(t, handler.HandleLogout, "/auth/logout", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandler_RefreshToken(t *testing.T) {
	handler, tokenSvc := newTestHandler(nil)

	id, err := identity.NewDefaultDirectory().Resolve("sales_manager")
	require.NoError(t, err)
	refreshToken, err := tokenSvc.CreateRefreshToken(&id)
	require.NoError(t, err)

	w := postJSON(t, handler.HandleRefresh, "/auth/token/refresh", `{"refresh_token":"`+refreshToken+`"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "U_SM", resp.Identity.ID)
}

func TestHandler_RefreshWithAccessToken(t *testing.T) {
	handler, tokenSvc := newTestHandler(nil)

	accessToken, err := tokenSvc.CreateAccessToken(salesStaff())
	require.NoError(t, err)

	w := postJSON(t, handler.HandleRefresh, "/auth/token/refresh", `{"refresh_token":"`+accessToken+`"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "refresh token required")
}

func TestHandler_RefreshUnknownIdentity(t *testing.T) {
	handler, tokenSvc := newTestHandler(nil)

	ghost := &identity.Identity{
		ID: "U_GONE", Handle: "former_staff", DisplayName: "Gone",
		RoleLevel: identity.RoleStaff, Department: identity.DeptSales,
	}
	refreshToken, err := tokenSvc.CreateRefreshToken(ghost)
	require.NoError(t, err)

	w := postJSON(t, handler.HandleRefresh, "/auth/token/refresh", `{"refresh_token":"`+refreshToken+`"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_RefreshInvalidToken(t *testing.T) {
	handler, _ := newTestHandler(nil)
	w := postJSON(t, handler.HandleRefresh, "/auth/token/refresh", `{"refresh_token":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_Me(t *testing.T) {
	handler, _ := newTestHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), salesStaff()))
	w := httptest.NewRecorder()
	handler.HandleMe(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Identity  identity.Identity `json:"identity"`
		RoleLabel string            `json:"role_label"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "U_S1", body.Identity.ID)
	assert.Equal(t, "Nhân Viên - Kinh Doanh", body.RoleLabel)
}

func TestHandler_MeWithoutIdentity(t *testing.T) {
	handler, _ := newTestHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()
	handler.HandleMe(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_RegisterRoutes(t *testing.T) {
	handler, _ := newTestHandler(nil)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"handle":"ceo"}`))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
