package evaluation

type Section string

const (
	SectionHOD Section = "hod"
	SectionHR  Section = "hr"
	SectionGM  Section = "gm"
)

// AllSections is the fixed fold order used when composing the final result.
var AllSections = []Section{SectionHOD, SectionHR, SectionGM}

func (s Section) Valid() bool {
	switch s {
	case SectionHOD, SectionHR, SectionGM:
		return true
	}
	return false
}

type Status string

const (
	StatusDraft      Status = "draft"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
)

var Statuses = []Status{StatusDraft, StatusInProgress, StatusCompleted, StatusApproved, StatusRejected}

type Category string

const (
	CategoryQuality         Category = "quality"
	CategoryProductivity    Category = "productivity"
	CategoryProblemSolving  Category = "problem_solving"
	CategoryCustomerService Category = "customer_service"
	CategoryManagement      Category = "management"
	CategoryLeadership      Category = "leadership"
	CategoryHR              Category = "hr"
	CategoryGM              Category = "gm"
)

var Categories = []Category{
	CategoryQuality,
	CategoryProductivity,
	CategoryProblemSolving,
	CategoryCustomerService,
	CategoryManagement,
	CategoryLeadership,
	CategoryHR,
	CategoryGM,
}

var categoryNames = map[Category]Localized{
	CategoryQuality:         {AR: "جودة العمل", EN: "Quality of Work"},
	CategoryProductivity:    {AR: "الإنتاجية والإنجاز", EN: "Productivity/Accomplishment"},
	CategoryProblemSolving:  {AR: "حل المشكلات واتخاذ القرارات", EN: "Problem Solving/Decision Making"},
	CategoryCustomerService: {AR: "خدمة العملاء", EN: "Customer Service/Customer Focus"},
	CategoryManagement:      {AR: "الإدارة", EN: "Management"},
	CategoryLeadership:      {AR: "القيادة", EN: "Leadership"},
	CategoryHR:              {AR: "الموارد البشرية", EN: "Human Resources"},
	CategoryGM:              {AR: "المدير العام", EN: "General Manager"},
}

var sectionNames = map[Section]Localized{
	SectionHOD: {AR: "رئيس القسم", EN: "HOD"},
	SectionHR:  {AR: "الموارد البشرية", EN: "HR"},
	SectionGM:  {AR: "المدير العام", EN: "GM"},
}

func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

// Name returns the bilingual display name of the category, empty for unknown values.
func (c Category) Name() Localized {
	return categoryNames[c]
}

func (s Section) Name() Localized {
	return sectionNames[s]
}

const (
	SignerEmployee       = "employee"
	SignerGeneralManager = "general_manager"
)

const (
	DefaultMaxScore      = 5
	MaxCriterionScore    = 1000
	MaxPerformanceLevels = 5
)
