package kpihandler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelperf/internal/domain/auth"
	"hotelperf/internal/domain/kpi"
	"hotelperf/internal/transport/http/middleware"
)

type memoryStore struct {
	items map[string]kpi.KPI
	order []string
	seq   int
}

func (m *memoryStore) matching(filter kpi.ListFilter) []kpi.KPI {
	var out []kpi.KPI
	for _, id := range m.order {
		k, ok := m.items[id]
		if !ok {
			continue
		}
		if filter.DepartmentID != "" && k.DepartmentID != filter.DepartmentID {
			continue
		}
		if filter.Status != "" && k.Status != filter.Status {
			continue
		}
		out = append(out, k)
	}
	return out
}

func (m *memoryStore) List(_ context.Context, filter kpi.ListFilter) ([]kpi.KPI, error) {
	out := m.matching(filter)
	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *memoryStore) Count(_ context.Context, filter kpi.ListFilter) (int, error) {
	return len(m.matching(filter)), nil
}

func (m *memoryStore) Get(_ context.Context, id string) (kpi.KPI, error) {
	k, ok := m.items[id]
	if !ok {
		return kpi.KPI{}, kpi.ErrKPINotFound
	}
	return k, nil
}

func (m *memoryStore) Create(_ context.Context, k kpi.KPI) (string, error) {
	m.seq++
	k.ID = fmt.Sprintf("kpi-%d", m.seq)
	m.items[k.ID] = k
	m.order = append(m.order, k.ID)
	return k.ID, nil
}

func (m *memoryStore) Update(_ context.Context, k kpi.KPI) error {
	if _, ok := m.items[k.ID]; !ok {
		return kpi.ErrKPINotFound
	}
	m.items[k.ID] = k
	return nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return kpi.ErrKPINotFound
	}
	delete(m.items, id)
	return nil
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

type recorder struct{ actions []string }

func (r *recorder) Record(_ context.Context, _, action, _, _, _, _ string, _, _ any) error {
	r.actions = append(r.actions, action)
	return nil
}

var (
	admin      = auth.UserContext{UserID: "user-admin", RoleID: auth.RoleAdmin, RoleName: auth.RoleAdmin}
	supervisor = auth.UserContext{UserID: "user-sup", RoleID: auth.RoleSupervisor, RoleName: auth.RoleSupervisor, DepartmentID: "d1"}
	employee   = auth.UserContext{UserID: "user-emp", RoleID: auth.RoleEmployee, RoleName: auth.RoleEmployee, DepartmentID: "d1"}
)

type harness struct {
	store  *memoryStore
	audit  *recorder
	router http.Handler
}

func newHarness() *harness {
	store := &memoryStore{items: map[string]kpi.KPI{}}
	rec := &recorder{}
	r := chi.NewRouter()
	NewHandler(kpi.NewService(store), rolePermissions{}, rec).RegisterRoutes(r)
	return &harness{store: store, audit: rec, router: r}
}

func (h *harness) do(user auth.UserContext, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req = req.WithContext(middleware.WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decodeKPI(t *testing.T, rec *httptest.ResponseRecorder) kpiView {
	t.Helper()
	var body struct {
		Data kpiView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Data
}

const occupancyKPI = `{"name":{"ar":"نسبة الإشغال","en":"Occupancy"},"departmentId":"d1","target":80,"currentValue":20}`

func TestCreateKPI(t *testing.T) {
	h := newHarness()

	rec := h.do(supervisor, http.MethodPost, "/kpis", occupancyKPI)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeKPI(t, rec)
	assert.Equal(t, 25.0, created.Progress)
	assert.Equal(t, kpi.StatusInProgress, created.Status)
	assert.Equal(t, kpi.DefaultUnit, created.Unit)
	assert.Equal(t, kpi.CycleMonthly, created.MeasurementCycle)
	assert.Equal(t, []string{"kpi.create"}, h.audit.actions)

	otherDept := strings.Replace(occupancyKPI, `"d1"`, `"d2"`, 1)
	assert.Equal(t, http.StatusForbidden, h.do(supervisor, http.MethodPost, "/kpis", otherDept).Code)
	assert.Equal(t, http.StatusForbidden, h.do(employee, http.MethodPost, "/kpis", occupancyKPI).Code)

	missingName := `{"name":{"ar":"","en":"Occupancy"},"departmentId":"d1","target":80}`
	assert.Equal(t, http.StatusBadRequest, h.do(admin, http.MethodPost, "/kpis", missingName).Code)

	badCycle := `{"name":{"ar":"أ","en":"A"},"departmentId":"d1","measurementCycle":"hourly"}`
	assert.Equal(t, http.StatusBadRequest, h.do(admin, http.MethodPost, "/kpis", badCycle).Code)
}

func TestQuarterlyResultsDriveCurrentValue(t *testing.T) {
	h := newHarness()
	created := decodeKPI(t, h.do(admin, http.MethodPost, "/kpis", occupancyKPI))

	rec := h.do(supervisor, http.MethodPut, "/kpis/"+created.ID+"/quarterly-results", `{"q1":40,"q2":80}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeKPI(t, rec)
	assert.Equal(t, 80.0, updated.CurrentValue)
	assert.Equal(t, 100.0, updated.Progress)
	assert.Equal(t, kpi.StatusCompleted, updated.Status)
	assert.Equal(t, 50.0, updated.QuarterProgress.Q1)
}

func TestCurrentValue(t *testing.T) {
	h := newHarness()
	created := decodeKPI(t, h.do(admin, http.MethodPost, "/kpis", occupancyKPI))

	assert.Equal(t, http.StatusBadRequest, h.do(admin, http.MethodPatch, "/kpis/"+created.ID+"/current-value", `{}`).Code)

	rec := h.do(admin, http.MethodPatch, "/kpis/"+created.ID+"/current-value", `{"currentValue":0,"justification":"renovation"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeKPI(t, rec)
	assert.Equal(t, kpi.StatusPending, updated.Status)
	assert.Equal(t, "renovation", updated.Justification)
}

func TestDelayedStatusIsKeptUntilCompletion(t *testing.T) {
	h := newHarness()
	created := decodeKPI(t, h.do(admin, http.MethodPost, "/kpis", occupancyKPI))

	body := `{"name":{"ar":"نسبة الإشغال","en":"Occupancy"},"departmentId":"d1","target":80,"currentValue":20,"status":"delayed"}`
	rec := h.do(admin, http.MethodPut, "/kpis/"+created.ID, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, kpi.StatusDelayed, decodeKPI(t, rec).Status)

	rec = h.do(admin, http.MethodPatch, "/kpis/"+created.ID+"/current-value", `{"currentValue":40}`)
	assert.Equal(t, kpi.StatusDelayed, decodeKPI(t, rec).Status)

	rec = h.do(admin, http.MethodPatch, "/kpis/"+created.ID+"/current-value", `{"currentValue":90}`)
	assert.Equal(t, kpi.StatusCompleted, decodeKPI(t, rec).Status)
}

func TestSupervisorScope(t *testing.T) {
	h := newHarness()
	own := decodeKPI(t, h.do(admin, http.MethodPost, "/kpis", occupancyKPI))
	other := decodeKPI(t, h.do(admin, http.MethodPost, "/kpis", strings.Replace(occupancyKPI, `"d1"`, `"d2"`, 1)))

	rec := h.do(supervisor, http.MethodGet, "/kpis?departmentId=d2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), own.ID)
	assert.NotContains(t, rec.Body.String(), other.ID)

	assert.Equal(t, http.StatusForbidden, h.do(supervisor, http.MethodGet, "/kpis/"+other.ID, "").Code)
	assert.Equal(t, http.StatusForbidden, h.do(supervisor, http.MethodDelete, "/kpis/"+other.ID, "").Code)
	assert.Equal(t, http.StatusOK, h.do(employee, http.MethodGet, "/kpis/"+other.ID, "").Code)
}

func TestStatsAndDelete(t *testing.T) {
	h := newHarness()
	first := decodeKPI(t, h.do(admin, http.MethodPost, "/kpis", occupancyKPI))
	h.do(admin, http.MethodPost, "/kpis", `{"name":{"ar":"أ","en":"Guest score"},"departmentId":"d1","target":10,"currentValue":10}`)

	rec := h.do(employee, http.MethodGet, "/kpis/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data kpi.Stats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, kpi.Stats{Total: 2, Completed: 1, InProgress: 1, AverageProgress: 63}, body.Data)

	assert.Equal(t, http.StatusBadRequest, h.do(admin, http.MethodGet, "/kpis?status=late", "").Code)
	assert.Equal(t, http.StatusOK, h.do(admin, http.MethodDelete, "/kpis/"+first.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, h.do(admin, http.MethodGet, "/kpis/"+first.ID, "").Code)
}

func TestListReportsUnpagedTotal(t *testing.T) {
	h := newHarness()
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusCreated, h.do(admin, http.MethodPost, "/kpis", occupancyKPI).Code)
	}

	rec := h.do(admin, http.MethodGet, "/kpis?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "3", rec.Header().Get("X-Total-Count"))
	var body struct {
		Data []kpiView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Data, 2)

	rec = h.do(admin, http.MethodGet, "/kpis?limit=2&page=2", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "3", rec.Header().Get("X-Total-Count"))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "kpi-3", body.Data[0].ID)
}

func TestSupervisorWithoutDepartmentSeesNothing(t *testing.T) {
	h := newHarness()
	created := decodeKPI(t, h.do(admin, http.MethodPost, "/kpis", occupancyKPI))
	unassigned := auth.UserContext{UserID: "user-sup-2", RoleID: auth.RoleSupervisor, RoleName: auth.RoleSupervisor}

	rec := h.do(unassigned, http.MethodGet, "/kpis", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-Total-Count"))
	assert.NotContains(t, rec.Body.String(), created.ID)

	assert.Equal(t, http.StatusForbidden, h.do(unassigned, http.MethodGet, "/kpis/"+created.ID, "").Code)
	assert.Equal(t, http.StatusForbidden, h.do(unassigned, http.MethodGet, "/kpis/stats", "").Code)
	assert.Equal(t, http.StatusForbidden, h.do(unassigned, http.MethodPost, "/kpis", occupancyKPI).Code)
	assert.Equal(t, http.StatusForbidden, h.do(unassigned, http.MethodPatch, "/kpis/"+created.ID+"/current-value", `{"currentValue":1}`).Code)
}
