package evaluation

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Observer is notified after every recomputation.
type Observer interface {
	ObserveRecompute(level int)
}

type Service struct {
	store             StoreAPI
	StrictTransitions bool
	Observer          Observer
	now               func() time.Time
}

func NewService(store StoreAPI, strictTransitions bool) *Service {
	return &Service{store: store, StrictTransitions: strictTransitions, now: time.Now}
}

func (s *Service) ListCriteria(ctx context.Context, activeOnly bool) ([]Criterion, error) {
	return s.store.ListCriteria(ctx, activeOnly)
}

func (s *Service) GetCriterion(ctx context.Context, criterionID string) (Criterion, error) {
	return s.store.GetCriterion(ctx, criterionID)
}

func (s *Service) CreateCriterion(ctx context.Context, criterion Criterion) (Criterion, error) {
	if err := NormalizeCriterion(&criterion); err != nil {
		return Criterion{}, err
	}
	criterion.Active = true
	id, err := s.store.CreateCriterion(ctx, criterion)
	if err != nil {
		return Criterion{}, err
	}
	criterion.ID = id
	return criterion, nil
}

func (s *Service) UpdateCriterion(ctx context.Context, criterionID string, patch Criterion) (Criterion, error) {
	current, err := s.store.GetCriterion(ctx, criterionID)
	if err != nil {
		return Criterion{}, err
	}
	if patch.Section != current.Section {
		referenced, err := s.store.CriterionReferenced(ctx, criterionID)
		if err != nil {
			return Criterion{}, err
		}
		if referenced {
			return Criterion{}, ErrSectionLocked
		}
	}
	if err := NormalizeCriterion(&patch); err != nil {
		return Criterion{}, err
	}
	patch.ID = current.ID
	patch.Active = current.Active
	patch.CreatedBy = current.CreatedBy
	patch.CreatedAt = current.CreatedAt
	if err := s.store.UpdateCriterion(ctx, patch); err != nil {
		return Criterion{}, err
	}
	return patch, nil
}

func (s *Service) DeactivateCriterion(ctx context.Context, criterionID string) error {
	return s.store.DeactivateCriterion(ctx, criterionID)
}

func (s *Service) Get(ctx context.Context, evaluationID string) (Evaluation, error) {
	return s.store.GetEvaluation(ctx, evaluationID)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Evaluation, error) {
	return s.store.ListEvaluations(ctx, filter)
}

// Count ignores the paging fields of filter.
func (s *Service) Count(ctx context.Context, filter ListFilter) (int, error) {
	return s.store.CountEvaluations(ctx, filter)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Evaluation, error) {
	if strings.TrimSpace(in.Period) == "" {
		return Evaluation{}, ErrPeriodRequired
	}
	employee, err := s.store.EmployeeSnapshot(ctx, in.EmployeeID)
	if err != nil {
		return Evaluation{}, err
	}
	exists, err := s.store.ActiveEvaluationExists(ctx, employee.ID, strings.TrimSpace(in.Period))
	if err != nil {
		return Evaluation{}, err
	}
	if exists {
		return Evaluation{}, ErrEvaluationExists
	}
	criteria, err := s.store.ListCriteria(ctx, true)
	if err != nil {
		return Evaluation{}, fmt.Errorf("load criteria: %w", err)
	}

	evaluation := s.recompute(NewEvaluation(in, employee, criteria, s.now()))
	id, err := s.store.CreateEvaluation(ctx, evaluation)
	if err != nil {
		return Evaluation{}, err
	}
	evaluation.ID = id
	return evaluation, nil
}

// Update applies a partial patch and persists it together with freshly recomputed scores.
// A stale Revision in the patch fails with ErrRevisionConflict.
func (s *Service) Update(ctx context.Context, evaluationID string, in UpdateInput) (Evaluation, error) {
	return s.mutate(ctx, evaluationID, in.Revision, func(e Evaluation) (Evaluation, error) {
		return ApplyUpdate(e, in, s.StrictTransitions)
	})
}

func (s *Service) Sign(ctx context.Context, evaluationID string, in SignInput) (Evaluation, error) {
	return s.mutate(ctx, evaluationID, in.Revision, func(e Evaluation) (Evaluation, error) {
		return Sign(e, in, s.now())
	})
}

func (s *Service) Deactivate(ctx context.Context, evaluationID string) error {
	return s.store.DeactivateEvaluation(ctx, evaluationID)
}

func (s *Service) Summary(ctx context.Context, filter ListFilter) (Summary, error) {
	outcomes, err := s.store.EvaluationOutcomes(ctx, filter)
	if err != nil {
		return Summary{}, err
	}
	return buildSummary(outcomes), nil
}

func (s *Service) mutate(ctx context.Context, evaluationID string, revision int, change func(Evaluation) (Evaluation, error)) (Evaluation, error) {
	current, err := s.store.GetEvaluation(ctx, evaluationID)
	if err != nil {
		return Evaluation{}, err
	}
	if !current.Active {
		return Evaluation{}, ErrEvaluationInactive
	}
	if revision != 0 && revision != current.Revision {
		return Evaluation{}, ErrRevisionConflict
	}

	updated, err := change(current)
	if err != nil {
		return Evaluation{}, err
	}
	updated = s.recompute(updated)
	updated.UpdatedAt = s.now()
	if err := s.store.UpdateEvaluation(ctx, updated, current.Revision); err != nil {
		return Evaluation{}, err
	}
	updated.Revision = current.Revision + 1
	return updated, nil
}

func (s *Service) recompute(e Evaluation) Evaluation {
	e = Recompute(e)
	if s.Observer != nil {
		s.Observer.ObserveRecompute(e.FinalResult.PerformanceLevel)
	}
	return e
}

func buildSummary(outcomes []Outcome) Summary {
	summary := Summary{
		Total:             len(outcomes),
		ByStatus:          map[string]int{},
		LevelDistribution: map[string]int{},
	}
	var percentageSum float64
	for _, outcome := range outcomes {
		summary.ByStatus[string(outcome.Status)]++
		summary.LevelDistribution[strconv.Itoa(outcome.PerformanceLevel)]++
		percentageSum += finite(outcome.OverallPercentage)
	}
	if len(outcomes) > 0 {
		summary.AverageOverallPercentage = percentageSum / float64(len(outcomes))
	}
	return summary
}
