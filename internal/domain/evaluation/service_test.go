package evaluation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	criteria    map[string]Criterion
	referenced  map[string]bool
	employees   map[string]EmployeeSnapshot
	evaluations map[string]Evaluation
	nextID      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		criteria:    map[string]Criterion{},
		referenced:  map[string]bool{},
		employees:   map[string]EmployeeSnapshot{},
		evaluations: map[string]Evaluation{},
	}
}

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeStore) ListCriteria(_ context.Context, activeOnly bool) ([]Criterion, error) {
	var out []Criterion
	for i := 1; i <= f.nextID; i++ {
		c, ok := f.criteria[fmt.Sprintf("crit-%d", i)]
		if !ok || (activeOnly && !c.Active) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) GetCriterion(_ context.Context, id string) (Criterion, error) {
	c, ok := f.criteria[id]
	if !ok {
		return Criterion{}, ErrCriterionNotFound
	}
	return c, nil
}

func (f *fakeStore) CreateCriterion(_ context.Context, c Criterion) (string, error) {
	c.ID = f.id("crit")
	f.criteria[c.ID] = c
	return c.ID, nil
}

func (f *fakeStore) UpdateCriterion(_ context.Context, c Criterion) error {
	f.criteria[c.ID] = c
	return nil
}

func (f *fakeStore) DeactivateCriterion(_ context.Context, id string) error {
	c, ok := f.criteria[id]
	if !ok {
		return ErrCriterionNotFound
	}
	c.Active = false
	f.criteria[id] = c
	return nil
}

func (f *fakeStore) CriterionReferenced(_ context.Context, id string) (bool, error) {
	return f.referenced[id], nil
}

func (f *fakeStore) EmployeeSnapshot(_ context.Context, id string) (EmployeeSnapshot, error) {
	e, ok := f.employees[id]
	if !ok {
		return EmployeeSnapshot{}, ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeStore) ActiveEvaluationExists(_ context.Context, employeeID, period string) (bool, error) {
	for _, e := range f.evaluations {
		if e.Active && e.EmployeeID == employeeID && e.EvaluationPeriod == period {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateEvaluation(_ context.Context, e Evaluation) (string, error) {
	e.ID = f.id("eval")
	f.evaluations[e.ID] = e
	return e.ID, nil
}

func (f *fakeStore) GetEvaluation(_ context.Context, id string) (Evaluation, error) {
	e, ok := f.evaluations[id]
	if !ok {
		return Evaluation{}, ErrEvaluationNotFound
	}
	return e, nil
}

func (f *fakeStore) ListEvaluations(_ context.Context, filter ListFilter) ([]Evaluation, error) {
	var out []Evaluation
	for _, e := range f.evaluations {
		if filter.IncludeAll || e.Active {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) CountEvaluations(ctx context.Context, filter ListFilter) (int, error) {
	list, err := f.ListEvaluations(ctx, filter)
	return len(list), err
}

func (f *fakeStore) UpdateEvaluation(_ context.Context, e Evaluation, expectedRevision int) error {
	stored, ok := f.evaluations[e.ID]
	if !ok || stored.Revision != expectedRevision {
		return ErrRevisionConflict
	}
	e.Revision = expectedRevision + 1
	f.evaluations[e.ID] = e
	return nil
}

func (f *fakeStore) DeactivateEvaluation(_ context.Context, id string) error {
	e, ok := f.evaluations[id]
	if !ok {
		return ErrEvaluationNotFound
	}
	e.Active = false
	e.Revision++
	f.evaluations[id] = e
	return nil
}

func (f *fakeStore) EvaluationOutcomes(ctx context.Context, filter ListFilter) ([]Outcome, error) {
	list, _ := f.ListEvaluations(ctx, filter)
	out := make([]Outcome, 0, len(list))
	for _, e := range list {
		out = append(out, Outcome{Status: e.Status, PerformanceLevel: e.FinalResult.PerformanceLevel, OverallPercentage: e.FinalResult.OverallPercentage})
	}
	return out, nil
}

type recordingObserver struct{ levels []int }

func (r *recordingObserver) ObserveRecompute(level int) { r.levels = append(r.levels, level) }

func newTestService(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	store.employees["emp-1"] = EmployeeSnapshot{ID: "emp-1", Name: Localized{AR: "سارة", EN: "Sara"}, Position: Localized{AR: "مشرفة", EN: "Supervisor"}}
	svc := NewService(store, true)
	svc.now = func() time.Time { return time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC) }

	ctx := context.Background()
	for _, c := range []Criterion{
		{Name: Localized{AR: "الجودة", EN: "Quality"}, Category: CategoryQuality, Section: SectionHOD, MaxScore: 50},
		{Name: Localized{AR: "الموارد", EN: "Attendance"}, Category: CategoryHR, Section: SectionHR, MaxScore: 50},
		{Name: Localized{AR: "المدير", EN: "GM view"}, Category: CategoryGM, Section: SectionGM, MaxScore: 50},
	} {
		_, err := svc.CreateCriterion(ctx, c)
		require.NoError(t, err)
	}
	return svc, store
}

func TestServiceCreateSeedsAndScores(t *testing.T) {
	svc, _ := newTestService(t)
	obs := &recordingObserver{}
	svc.Observer = obs

	e, err := svc.Create(context.Background(), CreateInput{EmployeeID: "emp-1", EvaluatorID: "u-1", Period: "2025"})
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Len(t, e.Sections.HOD.Ratings, 1)
	assert.Equal(t, 150.0, e.FinalResult.MaxScore)
	assert.Equal(t, 1, e.FinalResult.PerformanceLevel)
	assert.Equal(t, []int{1}, obs.levels)
}

func TestServiceCreateRejectsDuplicatePeriod(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, CreateInput{EmployeeID: "emp-1", Period: "2025"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{EmployeeID: "emp-1", Period: "2025"})
	assert.ErrorIs(t, err, ErrEvaluationExists)

	_, err = svc.Create(ctx, CreateInput{EmployeeID: "ghost", Period: "2025"})
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestServiceCreateAfterDeactivate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	first, err := svc.Create(ctx, CreateInput{EmployeeID: "emp-1", Period: "2025"})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, first.ID))

	_, err = svc.Create(ctx, CreateInput{EmployeeID: "emp-1", Period: "2025"})
	assert.NoError(t, err)
}

func TestServiceUpdateRecomputes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	e, err := svc.Create(ctx, CreateInput{EmployeeID: "emp-1", Period: "2025"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, e.ID, UpdateInput{
		Revision: e.Revision,
		Ratings: map[Section][]RatingUpdate{
			SectionHOD: {{CriterionID: e.Sections.HOD.Ratings[0].CriterionID, ObtainedRating: ptr(40.0)}},
			SectionHR:  {{CriterionID: e.Sections.HR.Ratings[0].CriterionID, ObtainedRating: ptr(35.0)}},
			SectionGM:  {{CriterionID: e.Sections.GM.Ratings[0].CriterionID, ObtainedRating: ptr(45.0)}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 120.0, updated.FinalResult.TotalScore)
	assert.Equal(t, 80.0, updated.FinalResult.OverallPercentage)
	assert.Equal(t, 8.0, updated.FinalResult.OverallPerformanceScore)
	assert.Equal(t, 4, updated.FinalResult.PerformanceLevel)
	assert.Equal(t, e.Revision+1, updated.Revision)

	stored, err := svc.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.FinalResult, stored.FinalResult)
}

func TestServiceUpdateStaleRevision(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	e, err := svc.Create(ctx, CreateInput{EmployeeID: "emp-1", Period: "2025"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, e.ID, UpdateInput{Revision: e.Revision, EmployeeComments: ptr("first")})
	require.NoError(t, err)

	_, err = svc.Update(ctx, e.ID, UpdateInput{Revision: e.Revision, EmployeeComments: ptr("second")})
	assert.ErrorIs(t, err, ErrRevisionConflict)
}

func TestServiceUpdateInactive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	e, err := svc.Create(ctx, CreateInput{EmployeeID: "emp-1", Period: "2025"})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, e.ID))

	_, err = svc.Update(ctx, e.ID, UpdateInput{EmployeeComments: ptr("late")})
	assert.ErrorIs(t, err, ErrEvaluationInactive)
}

func TestServiceSign(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	e, err := svc.Create(ctx, CreateInput{EmployeeID: "emp-1", Period: "2025"})
	require.NoError(t, err)

	signed, err := svc.Sign(ctx, e.ID, SignInput{Signer: SignerEmployee, Signature: "S.", EmployeeComments: ptr("Fair review")})
	require.NoError(t, err)
	assert.True(t, signed.Signatures.Employee.Signed)
	assert.Equal(t, "Fair review", signed.EmployeeComments)
	assert.Equal(t, 2, signed.Revision)

	stored, err := svc.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fair review", stored.EmployeeComments)
}

func TestServiceCriterionSectionLock(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	c, err := svc.GetCriterion(ctx, "crit-1")
	require.NoError(t, err)

	moved := c
	moved.Section = SectionGM
	store.referenced[c.ID] = true
	_, err = svc.UpdateCriterion(ctx, c.ID, moved)
	assert.ErrorIs(t, err, ErrSectionLocked)

	renamed := c
	renamed.Name.EN = "Work quality"
	got, err := svc.UpdateCriterion(ctx, c.ID, renamed)
	require.NoError(t, err)
	assert.Equal(t, "Work quality", got.Name.EN)

	store.referenced[c.ID] = false
	got, err = svc.UpdateCriterion(ctx, c.ID, moved)
	require.NoError(t, err)
	assert.Equal(t, SectionGM, got.Section)
}

func TestServiceDeactivatedCriterionNotSeeded(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.DeactivateCriterion(ctx, "crit-2"))

	e, err := svc.Create(ctx, CreateInput{EmployeeID: "emp-1", Period: "2026"})
	require.NoError(t, err)
	assert.Empty(t, e.Sections.HR.Ratings)
	assert.Equal(t, 100.0, e.FinalResult.MaxScore)
}

func TestBuildSummary(t *testing.T) {
	got := buildSummary([]Outcome{
		{Status: StatusDraft, PerformanceLevel: 1, OverallPercentage: 0},
		{Status: StatusApproved, PerformanceLevel: 4, OverallPercentage: 80},
		{Status: StatusApproved, PerformanceLevel: 5, OverallPercentage: 100},
	})
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 2, got.ByStatus["approved"])
	assert.Equal(t, 1, got.LevelDistribution["4"])
	assert.Equal(t, 60.0, got.AverageOverallPercentage)

	empty := buildSummary(nil)
	assert.Equal(t, 0.0, empty.AverageOverallPercentage)
}

func TestServiceCreateRequiresPeriod(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), CreateInput{EmployeeID: "emp-1", Period: "  "})
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrPeriodRequired)
}
