package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"hotelperf/internal/domain/auth"
)

type staticPermissions map[string][]string

func (s staticPermissions) HasPermission(_ context.Context, roleID, permission string) (bool, error) {
	if roleID == "broken" {
		return false, errors.New("db down")
	}
	for _, p := range s[roleID] {
		if p == permission {
			return true, nil
		}
	}
	return false, nil
}

func TestRequirePermission(t *testing.T) {
	store := staticPermissions{
		"role-employee":   auth.RolePermissions[auth.RoleEmployee],
		"role-supervisor": auth.RolePermissions[auth.RoleSupervisor],
	}
	handler := RequirePermission(auth.PermEvaluationsWrite, store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name   string
		roleID string
		anon   bool
		want   int
	}{
		{name: "anonymous", anon: true, want: http.StatusUnauthorized},
		{name: "employee", roleID: "role-employee", want: http.StatusForbidden},
		{name: "supervisor", roleID: "role-supervisor", want: http.StatusNoContent},
		{name: "store error", roleID: "broken", want: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluations", nil)
			if !tc.anon {
				req = req.WithContext(WithUser(req.Context(), auth.UserContext{UserID: "u", RoleID: tc.roleID}))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestHasPermission(t *testing.T) {
	store := staticPermissions{"role-admin": auth.RolePermissions[auth.RoleAdmin]}

	anon := httptest.NewRequest(http.MethodGet, "/", nil)
	if HasPermission(anon, store, auth.PermAuditRead) {
		t.Fatal("anonymous caller must not hold permissions")
	}

	admin := anon.WithContext(WithUser(anon.Context(), auth.UserContext{UserID: "u", RoleID: "role-admin"}))
	if !HasPermission(admin, store, auth.PermAuditRead) {
		t.Fatal("expected admin to hold audit.read")
	}

	broken := anon.WithContext(WithUser(anon.Context(), auth.UserContext{UserID: "u", RoleID: "broken"}))
	if HasPermission(broken, store, auth.PermAuditRead) {
		t.Fatal("store failures must deny")
	}
}
