package evaluation

import "context"

type StoreAPI interface {
	ListCriteria(ctx context.Context, activeOnly bool) ([]Criterion, error)
	GetCriterion(ctx context.Context, criterionID string) (Criterion, error)
	CreateCriterion(ctx context.Context, criterion Criterion) (string, error)
	UpdateCriterion(ctx context.Context, criterion Criterion) error
	DeactivateCriterion(ctx context.Context, criterionID string) error
	CriterionReferenced(ctx context.Context, criterionID string) (bool, error)
	EmployeeSnapshot(ctx context.Context, employeeID string) (EmployeeSnapshot, error)
	ActiveEvaluationExists(ctx context.Context, employeeID, period string) (bool, error)
	CreateEvaluation(ctx context.Context, evaluation Evaluation) (string, error)
	GetEvaluation(ctx context.Context, evaluationID string) (Evaluation, error)
	ListEvaluations(ctx context.Context, filter ListFilter) ([]Evaluation, error)
	CountEvaluations(ctx context.Context, filter ListFilter) (int, error)
	UpdateEvaluation(ctx context.Context, evaluation Evaluation, expectedRevision int) error
	DeactivateEvaluation(ctx context.Context, evaluationID string) error
	EvaluationOutcomes(ctx context.Context, filter ListFilter) ([]Outcome, error)
}

// Outcome is the slice of an evaluation the summary report needs.
type Outcome struct {
	Status            Status
	PerformanceLevel  int
	OverallPercentage float64
}
