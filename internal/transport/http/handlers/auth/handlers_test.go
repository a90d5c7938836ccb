package authhandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelperf/internal/domain/auth"
	"hotelperf/internal/transport/http/middleware"
)

type fakeService struct{}

func (fakeService) Login(_ context.Context, username, password string) (auth.LoginResult, error) {
	if username != "admin" || password != "secret-pass" {
		return auth.LoginResult{}, auth.ErrInvalidCredentials
	}
	return auth.LoginResult{Token: "tok", ExpiresAt: time.Now().Add(time.Hour), UserID: "u1", Role: auth.RoleAdmin}, nil
}

func (fakeService) Profile(_ context.Context, userID string) (auth.Profile, error) {
	if userID != "u1" {
		return auth.Profile{}, auth.ErrUserNotFound
	}
	return auth.Profile{ID: "u1", Username: "admin", Role: auth.RoleAdmin, RoleLabel: "مدير"}, nil
}

func newRouter() http.Handler {
	r := chi.NewRouter()
	NewHandler(fakeService{}).RegisterRoutes(r)
	return r
}

func TestLogin(t *testing.T) {
	cases := []struct {
		name string
		body string
		want int
	}{
		{name: "ok", body: `{"username":"admin","password":"secret-pass"}`, want: http.StatusOK},
		{name: "wrong password", body: `{"username":"admin","password":"nope"}`, want: http.StatusUnauthorized},
		{name: "missing fields", body: `{"username":""}`, want: http.StatusBadRequest},
		{name: "malformed", body: `{`, want: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			newRouter().ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestLoginReturnsToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"admin","password":"secret-pass"}`))
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data auth.LoginResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "tok", body.Data.Token)
	assert.Equal(t, auth.RoleAdmin, body.Data.Role)
}

func TestMe(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), auth.UserContext{UserID: "u1", RoleName: auth.RoleAdmin}))
	rec = httptest.NewRecorder()
	newRouter().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"roleLabel":"مدير"`)
}
