package evaluation

import (
	"time"

	"hotelperf/internal/platform/i18n"
)

type Localized = i18n.Text

type SubCriterion struct {
	Name        Localized `json:"name" yaml:"name"`
	Description Localized `json:"description" yaml:"description"`
	Weight      float64   `json:"weight" yaml:"weight"`
}

type PerformanceLevel struct {
	Level       int       `json:"level" yaml:"level"`
	Name        Localized `json:"name" yaml:"name"`
	Description Localized `json:"description" yaml:"description"`
	MinScore    float64   `json:"minScore" yaml:"minScore"`
	MaxScore    float64   `json:"maxScore" yaml:"maxScore"`
}

type Criterion struct {
	ID                string             `json:"id"`
	Name              Localized          `json:"name"`
	Description       Localized          `json:"description"`
	Category          Category           `json:"category"`
	CategoryName      Localized          `json:"categoryName"`
	Section           Section            `json:"section"`
	MaxScore          float64            `json:"maxScore"`
	Weight            float64            `json:"weight"`
	SubCriteria       []SubCriterion     `json:"subCriteria"`
	PerformanceLevels []PerformanceLevel `json:"performanceLevels"`
	Active            bool               `json:"isActive"`
	CreatedBy         string             `json:"createdBy,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

type Rating struct {
	CriterionID    string  `json:"criterionId"`
	Score          float64 `json:"score"`
	Comments       string  `json:"comments"`
	ObtainedRating float64 `json:"obtainedRating"`
	MaxRating      float64 `json:"maxRating"`
	DecimalScore   float64 `json:"decimalScore"`
}

type SectionResult struct {
	Ratings    []Rating `json:"ratings"`
	TotalScore float64  `json:"totalScore"`
	MaxScore   float64  `json:"maxScore"`
	Percentage float64  `json:"percentage"`
	// DecimalTotal is accumulated alongside the totals but feeds no other figure.
	DecimalTotal float64 `json:"decimalTotal"`
	Remarks      string  `json:"remarks,omitempty"`
}

type Sections struct {
	HOD SectionResult `json:"hod"`
	HR  SectionResult `json:"hr"`
	GM  SectionResult `json:"gm"`
}

// Get returns a pointer to the named section, nil for an unknown section.
func (s *Sections) Get(section Section) *SectionResult {
	switch section {
	case SectionHOD:
		return &s.HOD
	case SectionHR:
		return &s.HR
	case SectionGM:
		return &s.GM
	}
	return nil
}

type FinalResult struct {
	TotalScore              float64 `json:"totalScore"`
	MaxScore                float64 `json:"maxScore"`
	OverallPercentage       float64 `json:"overallPercentage"`
	OverallPerformanceScore float64 `json:"overallPerformanceScore"`
	PerformanceLevel        int     `json:"performanceLevel"`
	PerformanceDescription  string  `json:"performanceDescription"`
}

type ScoreComment struct {
	Score    float64 `json:"score"`
	Comments string  `json:"comments"`
}

// OverallRatings are recorded next to the section scoring and are not folded into FinalResult.
type OverallRatings struct {
	QualityOfWork   ScoreComment `json:"qualityOfWork"`
	Productivity    ScoreComment `json:"productivity"`
	ProblemSolving  ScoreComment `json:"problemSolving"`
	CustomerService ScoreComment `json:"customerService"`
	Management      ScoreComment `json:"management"`
	Leadership      ScoreComment `json:"leadership"`
}

type ExecutiveInfo struct {
	ExecutiveName             string     `json:"executiveName"`
	PerformanceReviewDate     *time.Time `json:"performanceReviewDate,omitempty"`
	LastPerformanceReviewDate *time.Time `json:"lastPerformanceReviewDate,omitempty"`
	DateInCurrentPosition     *time.Time `json:"dateInCurrentPosition,omitempty"`
	DateOfJoiningHotel        *time.Time `json:"dateOfJoiningHotel,omitempty"`
	DirectSupervisorName      string     `json:"directSupervisorName"`
}

type Qualification struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	DateObtained *time.Time `json:"dateObtained,omitempty"`
	Evidence     string     `json:"evidence"`
}

type Signature struct {
	Signed    bool       `json:"signed"`
	SignedAt  *time.Time `json:"signedAt,omitempty"`
	Signature string     `json:"signature,omitempty"`
}

type Signatures struct {
	Employee       Signature `json:"employee"`
	GeneralManager Signature `json:"generalManager"`
}

type Evaluation struct {
	ID               string          `json:"id"`
	EmployeeID       string          `json:"employeeId"`
	EvaluatorID      string          `json:"evaluatorId"`
	EvaluationPeriod string          `json:"evaluationPeriod"`
	EvaluationDate   time.Time       `json:"evaluationDate"`
	Position         string          `json:"position"`
	DepartmentID     string          `json:"departmentId,omitempty"`
	ExecutiveInfo    ExecutiveInfo   `json:"executiveInfo"`
	Qualifications   []Qualification `json:"newQualifications"`
	Sections         Sections        `json:"evaluations"`
	OverallRatings   OverallRatings  `json:"overallRatings"`
	FinalResult      FinalResult     `json:"finalResults"`
	EmployeeComments string          `json:"employeeComments"`
	Signatures       Signatures      `json:"signatures"`
	Status           Status          `json:"status"`
	Active           bool            `json:"isActive"`
	Revision         int             `json:"revision"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type EmployeeSnapshot struct {
	ID           string
	Name         Localized
	Position     Localized
	DepartmentID string
	HireDate     *time.Time
}

type ListFilter struct {
	EmployeeID   string
	EvaluatorID  string
	DepartmentID string
	Period       string
	Status       Status
	IncludeAll   bool
	Limit        int
	Offset       int
}

type Summary struct {
	Total                    int            `json:"total"`
	ByStatus                 map[string]int `json:"byStatus"`
	LevelDistribution        map[string]int `json:"levelDistribution"`
	AverageOverallPercentage float64        `json:"averageOverallPercentage"`
}
