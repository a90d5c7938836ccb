package shared

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"hotelperf/internal/requestctx"
	"hotelperf/internal/transport/http/api"
	"hotelperf/internal/transport/http/middleware"
)

// AuditRecorder persists one audit event per mutation.
type AuditRecorder interface {
	Record(ctx context.Context, actorID, action, entityType, entityID, requestID, ip string, before, after any) error
}

// DecodeJSON decodes the body into dst or writes a 400 and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := api.Decode(r, dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request payload too large", middleware.GetRequestID(r.Context()))
			return false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

// RecordAudit writes an audit event for the current caller; failures are logged, not returned.
func RecordAudit(r *http.Request, recorder AuditRecorder, action, entityType, entityID string, before, after any) {
	if recorder == nil {
		return
	}
	user, _ := middleware.GetUser(r.Context())
	if err := recorder.Record(r.Context(), user.UserID, action, entityType, entityID, middleware.GetRequestID(r.Context()), ClientIP(r), before, after); err != nil {
		slog.Warn("audit "+action+" failed", "err", err, "entityId", entityID)
	}
}

func Lang(r *http.Request) string {
	if lang := requestctx.Lang(r.Context()); lang != "" {
		return lang
	}
	return "ar"
}

func InternalError(w http.ResponseWriter, r *http.Request, code, message string, err error) {
	slog.Error(message, "err", err, "requestId", middleware.GetRequestID(r.Context()))
	api.Fail(w, http.StatusInternalServerError, code, message, middleware.GetRequestID(r.Context()))
}
