package evaluation

import "errors"

var (
	ErrEvaluationNotFound = errors.New("evaluation not found")
	ErrEvaluationExists   = errors.New("evaluation already exists for employee and period")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrCriterionNotFound  = errors.New("evaluation criterion not found")
	ErrSectionLocked      = errors.New("criterion section cannot change once ratings reference it")
	ErrRevisionConflict   = errors.New("evaluation was modified by another request")
	ErrInvalidTransition  = errors.New("evaluation status transition not allowed")
	ErrInvalidStatus      = errors.New("unknown evaluation status")
	ErrUnknownCriterion   = errors.New("rating references a criterion not present in the section")
	ErrRatingOutOfRange   = errors.New("obtained rating must be between 0 and the maximum rating")
	ErrInvalidNumber      = errors.New("rating values must be finite numbers")
	ErrUnknownSigner      = errors.New("unknown signer")
	ErrCommentsNotAllowed = errors.New("employee comments accompany the employee signature only")
	ErrEvaluationInactive = errors.New("evaluation has been deleted")
	ErrPeriodRequired     = errors.New("evaluation period is required")
)

var ErrInvalidCriterion = errors.New("invalid evaluation criterion")
