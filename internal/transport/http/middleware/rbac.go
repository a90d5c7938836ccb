package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"hotelperf/internal/transport/http/api"
)

// PermissionStore answers whether a role has been granted a permission key.
type PermissionStore interface {
	HasPermission(ctx context.Context, roleID, permission string) (bool, error)
}

// HasPermission reports whether the authenticated caller holds permission.
// Anonymous callers and store failures report false.
func HasPermission(r *http.Request, store PermissionStore, permission string) bool {
	return permissionStatus(r, store, permission) == http.StatusOK
}

func permissionStatus(r *http.Request, store PermissionStore, permission string) int {
	user, ok := GetUser(r.Context())
	if !ok {
		return http.StatusUnauthorized
	}
	allowed, err := store.HasPermission(r.Context(), user.RoleID, permission)
	if err != nil {
		slog.Error("permission check failed", "err", err, "permission", permission, "requestId", GetRequestID(r.Context()))
		return http.StatusInternalServerError
	}
	if !allowed {
		return http.StatusForbidden
	}
	return http.StatusOK
}

func RequirePermission(permission string, store PermissionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())
			switch permissionStatus(r, store, permission) {
			case http.StatusOK:
				next.ServeHTTP(w, r)
			case http.StatusUnauthorized:
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
			case http.StatusForbidden:
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
			default:
				api.Fail(w, http.StatusInternalServerError, "permission_error", "permission check failed", requestID)
			}
		})
	}
}
