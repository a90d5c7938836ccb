package audithandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelperf/internal/domain/audit"
	"hotelperf/internal/domain/auth"
	"hotelperf/internal/transport/http/middleware"
)

type fakeService struct {
	events     []audit.Event
	lastFilter audit.Filter
	lastLimit  int
	details    bool
}

func (f *fakeService) Count(_ context.Context, filter audit.Filter) (int, error) {
	return len(f.events), nil
}

func (f *fakeService) List(_ context.Context, filter audit.Filter, includeDetails bool, limit, offset int) ([]audit.Event, error) {
	f.lastFilter, f.lastLimit, f.details = filter, limit, includeDetails
	return f.events, nil
}

type rolePermissions struct{}

func (rolePermissions) HasPermission(_ context.Context, roleID, permission string) (bool, error) {
	for _, p := range auth.RolePermissions[roleID] {
		if p == permission {
			return true, nil
		}
	}
	return false, nil
}

func serve(svc *fakeService, role, target string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	NewHandler(svc, rolePermissions{}).RegisterRoutes(r)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = req.WithContext(middleware.WithUser(req.Context(), auth.UserContext{UserID: "u1", RoleID: role, RoleName: role}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestListEvents(t *testing.T) {
	svc := &fakeService{events: []audit.Event{{ID: "e1", Action: "evaluation.create", EntityType: audit.EntityEvaluation}}}

	rec := serve(svc, auth.RoleAdmin, "/audit/events?entityType=evaluation&limit=900&includeDetails=true")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Total-Count"))
	assert.Contains(t, rec.Body.String(), "evaluation.create")
	assert.Equal(t, audit.EntityEvaluation, svc.lastFilter.EntityType)
	assert.Equal(t, 500, svc.lastLimit)
	assert.True(t, svc.details)
}

func TestListEventsRequiresAuditPermission(t *testing.T) {
	for _, role := range []string{auth.RoleSupervisor, auth.RoleEmployee} {
		rec := serve(&fakeService{}, role, "/audit/events")
		assert.Equal(t, http.StatusForbidden, rec.Code, role)
	}
}

func TestExportEvents(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := &fakeService{events: []audit.Event{{ID: "e1", ActorID: "u1", Action: "kpi.delete", EntityType: audit.EntityKPI, EntityID: "k1", CreatedAt: at}}}

	rec := serve(svc, auth.RoleAdmin, "/audit/events/export")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "e1,u1,kpi.delete,kpi,k1,,,2025-01-02T03:04:05Z", lines[1])
	assert.Equal(t, exportLimit, svc.lastLimit)
}
