package evaluation

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type RatingUpdate struct {
	CriterionID    string   `json:"criterionId"`
	Score          *float64 `json:"score"`
	Comments       *string  `json:"comments"`
	ObtainedRating *float64 `json:"obtainedRating"`
	DecimalScore   *float64 `json:"decimalScore"`
}

type OverallRatingsUpdate struct {
	QualityOfWork   *ScoreComment `json:"qualityOfWork"`
	Productivity    *ScoreComment `json:"productivity"`
	ProblemSolving  *ScoreComment `json:"problemSolving"`
	CustomerService *ScoreComment `json:"customerService"`
	Management      *ScoreComment `json:"management"`
	Leadership      *ScoreComment `json:"leadership"`
}

// UpdateInput is a partial patch; nil fields are left untouched.
type UpdateInput struct {
	Revision         int                        `json:"revision"`
	ExecutiveInfo    *ExecutiveInfo             `json:"executiveInfo"`
	Qualifications   *[]Qualification           `json:"qualifications"`
	Ratings          map[Section][]RatingUpdate `json:"ratings"`
	GMRemarks        *string                    `json:"gmRemarks"`
	OverallRatings   *OverallRatingsUpdate      `json:"overallRatings"`
	EmployeeComments *string                    `json:"employeeComments"`
	Status           *Status                    `json:"status"`
}

type CreateInput struct {
	EmployeeID    string
	EvaluatorID   string
	EvaluatorName string
	Period        string
	Position      string
}

// NewEvaluation assembles a draft evaluation for the employee with zeroed ratings for
// every active criterion. The department always comes from the employee record.
func NewEvaluation(in CreateInput, employee EmployeeSnapshot, criteria []Criterion, now time.Time) Evaluation {
	position := strings.TrimSpace(in.Position)
	if position == "" {
		position = employee.Position.In("ar")
	}
	reviewDate := now
	joined := now
	if employee.HireDate != nil {
		joined = *employee.HireDate
	}
	inPosition := joined

	return Evaluation{
		EmployeeID:       employee.ID,
		EvaluatorID:      in.EvaluatorID,
		EvaluationPeriod: strings.TrimSpace(in.Period),
		EvaluationDate:   now,
		Position:         position,
		DepartmentID:     employee.DepartmentID,
		ExecutiveInfo: ExecutiveInfo{
			ExecutiveName:         employee.Name.In("ar"),
			PerformanceReviewDate: &reviewDate,
			DateInCurrentPosition: &inPosition,
			DateOfJoiningHotel:    &joined,
			DirectSupervisorName:  in.EvaluatorName,
		},
		Qualifications: []Qualification{},
		Sections:       SeedSections(criteria),
		Status:         StatusDraft,
		Active:         true,
		Revision:       1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// ApplyUpdate merges in into e. Derived scores are not touched; callers recompute afterwards.
func ApplyUpdate(e Evaluation, in UpdateInput, strictStatus bool) (Evaluation, error) {
	if in.Status != nil {
		next := *in.Status
		if !next.Valid() {
			return e, fmt.Errorf("%w: %q", ErrInvalidStatus, next)
		}
		if strictStatus && !CanTransition(e.Status, next) {
			return e, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, e.Status, next)
		}
	}

	for name, updates := range in.Ratings {
		section := e.Sections.Get(name)
		if section == nil {
			return e, fmt.Errorf("%w: unknown section %q", ErrUnknownCriterion, name)
		}
		ratings, err := applyRatingUpdates(section.Ratings, updates)
		if err != nil {
			return e, fmt.Errorf("%s section: %w", name, err)
		}
		section.Ratings = ratings
	}

	if in.ExecutiveInfo != nil {
		e.ExecutiveInfo = mergeExecutiveInfo(e.ExecutiveInfo, *in.ExecutiveInfo)
	}
	if in.Qualifications != nil {
		e.Qualifications = append([]Qualification{}, (*in.Qualifications)...)
	}
	if in.GMRemarks != nil {
		e.Sections.GM.Remarks = *in.GMRemarks
	}
	if in.OverallRatings != nil {
		e.OverallRatings = mergeOverallRatings(e.OverallRatings, *in.OverallRatings)
	}
	if in.EmployeeComments != nil {
		e.EmployeeComments = *in.EmployeeComments
	}
	if in.Status != nil {
		e.Status = *in.Status
	}
	return e, nil
}

// applyRatingUpdates returns a fresh slice so a failed patch never leaks into the caller's ratings.
func applyRatingUpdates(current []Rating, updates []RatingUpdate) ([]Rating, error) {
	out := make([]Rating, len(current))
	copy(out, current)
	index := make(map[string]int, len(out))
	for i, rating := range out {
		index[rating.CriterionID] = i
	}

	for _, upd := range updates {
		i, ok := index[upd.CriterionID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCriterion, upd.CriterionID)
		}
		rating := out[i]
		if upd.Score != nil {
			if !isFinite(*upd.Score) {
				return nil, ErrInvalidNumber
			}
			rating.Score = *upd.Score
		}
		if upd.DecimalScore != nil {
			if !isFinite(*upd.DecimalScore) {
				return nil, ErrInvalidNumber
			}
			rating.DecimalScore = *upd.DecimalScore
		}
		if upd.ObtainedRating != nil {
			obtained := *upd.ObtainedRating
			if !isFinite(obtained) {
				return nil, ErrInvalidNumber
			}
			if obtained < 0 || obtained > rating.MaxRating {
				return nil, fmt.Errorf("%w: %s got %v, max %v", ErrRatingOutOfRange, upd.CriterionID, obtained, rating.MaxRating)
			}
			rating.ObtainedRating = obtained
		}
		if upd.Comments != nil {
			rating.Comments = *upd.Comments
		}
		out[i] = rating
	}
	return out, nil
}

func mergeExecutiveInfo(current, patch ExecutiveInfo) ExecutiveInfo {
	if patch.ExecutiveName != "" {
		current.ExecutiveName = patch.ExecutiveName
	}
	if patch.DirectSupervisorName != "" {
		current.DirectSupervisorName = patch.DirectSupervisorName
	}
	if patch.PerformanceReviewDate != nil {
		current.PerformanceReviewDate = patch.PerformanceReviewDate
	}
	if patch.LastPerformanceReviewDate != nil {
		current.LastPerformanceReviewDate = patch.LastPerformanceReviewDate
	}
	if patch.DateInCurrentPosition != nil {
		current.DateInCurrentPosition = patch.DateInCurrentPosition
	}
	if patch.DateOfJoiningHotel != nil {
		current.DateOfJoiningHotel = patch.DateOfJoiningHotel
	}
	return current
}

func mergeOverallRatings(current OverallRatings, patch OverallRatingsUpdate) OverallRatings {
	pairs := []struct {
		dst *ScoreComment
		src *ScoreComment
	}{
		{&current.QualityOfWork, patch.QualityOfWork},
		{&current.Productivity, patch.Productivity},
		{&current.ProblemSolving, patch.ProblemSolving},
		{&current.CustomerService, patch.CustomerService},
		{&current.Management, patch.Management},
		{&current.Leadership, patch.Leadership},
	}
	for _, p := range pairs {
		if p.src != nil {
			*p.dst = ScoreComment{Score: finite(p.src.Score), Comments: p.src.Comments}
		}
	}
	return current
}

// Sign records a signature for the given party.
// SignInput is one signature. EmployeeComments may only travel with the employee signature.
type SignInput struct {
	Signer           string  `json:"signer"`
	Signature        string  `json:"signature"`
	EmployeeComments *string `json:"employeeComments"`
	Revision         int     `json:"revision"`
}

func Sign(e Evaluation, in SignInput, now time.Time) (Evaluation, error) {
	sig := Signature{Signed: true, SignedAt: &now, Signature: in.Signature}
	switch in.Signer {
	case SignerEmployee:
		e.Signatures.Employee = sig
		if in.EmployeeComments != nil {
			e.EmployeeComments = strings.TrimSpace(*in.EmployeeComments)
		}
	case SignerGeneralManager:
		if in.EmployeeComments != nil {
			return e, ErrCommentsNotAllowed
		}
		e.Signatures.GeneralManager = sig
	default:
		return e, fmt.Errorf("%w: %q", ErrUnknownSigner, in.Signer)
	}
	return e, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
