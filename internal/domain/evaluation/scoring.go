package evaluation

import "math"

const (
	DescriptionOutstanding = "Outstanding Performance (Exceptional)"
	DescriptionExcellent   = "Excellent (Exceeds Expectations)"
	DescriptionMeets       = "Meets Expectations"
	DescriptionMixed       = "Mix Outcome (Needs improvement)"
	DescriptionBelow       = "Does Not Achieve Performance Standards"
)

type levelThreshold struct {
	min         float64
	level       int
	description string
	label       Localized
}

// Checked top-down, first match wins; anything below the last threshold is level 1.
var levelThresholds = []levelThreshold{
	{min: 9, level: 5, description: DescriptionOutstanding, label: Localized{AR: "أداء استثنائي", EN: DescriptionOutstanding}},
	{min: 8, level: 4, description: DescriptionExcellent, label: Localized{AR: "ممتاز (يفوق التوقعات)", EN: DescriptionExcellent}},
	{min: 7, level: 3, description: DescriptionMeets, label: Localized{AR: "يلبي التوقعات", EN: DescriptionMeets}},
	{min: 5, level: 2, description: DescriptionMixed, label: Localized{AR: "نتائج مختلطة (يحتاج إلى تحسين)", EN: DescriptionMixed}},
}

var lowestLevel = levelThreshold{level: 1, description: DescriptionBelow, label: Localized{AR: "لا يحقق معايير الأداء", EN: DescriptionBelow}}

// SectionTotals is the fold of one section's ratings.
type SectionTotals struct {
	TotalScore   float64
	MaxScore     float64
	Percentage   float64
	DecimalTotal float64
}

// AggregateSection folds ratings into totals. Non-finite values count as zero and
// an empty list yields all zeros.
func AggregateSection(ratings []Rating) SectionTotals {
	var out SectionTotals
	for _, rating := range ratings {
		out.TotalScore += finite(rating.ObtainedRating)
		out.MaxScore += finite(rating.MaxRating)
		out.DecimalTotal += finite(rating.DecimalScore)
	}
	out.TotalScore = finite(out.TotalScore)
	out.MaxScore = finite(out.MaxScore)
	out.DecimalTotal = finite(out.DecimalTotal)
	out.Percentage = scaled(out.TotalScore, out.MaxScore, 100)
	return out
}

// ComposeFinal sums the section totals and normalizes them onto the 0-100 and 0-10 scales.
func ComposeFinal(sections ...SectionTotals) FinalResult {
	var result FinalResult
	for _, section := range sections {
		result.TotalScore += section.TotalScore
		result.MaxScore += section.MaxScore
	}
	result.TotalScore = finite(result.TotalScore)
	result.MaxScore = finite(result.MaxScore)
	result.OverallPercentage = scaled(result.TotalScore, result.MaxScore, 100)
	result.OverallPerformanceScore = scaled(result.TotalScore, result.MaxScore, 10)
	result.PerformanceLevel, result.PerformanceDescription = Classify(result.OverallPerformanceScore)
	return result
}

// Classify maps a 0-10 score onto the five performance levels.
func Classify(score float64) (int, string) {
	t := threshold(score)
	return t.level, t.description
}

// LevelLabel returns the display label of a level in the requested language.
func LevelLabel(level int, lang string) string {
	for _, t := range levelThresholds {
		if t.level == level {
			return t.label.In(lang)
		}
	}
	if level == lowestLevel.level {
		return lowestLevel.label.In(lang)
	}
	return ""
}

// Recompute rebuilds every derived figure of e from its ratings. Derived fields on the
// input are ignored and always overwritten.
func Recompute(e Evaluation) Evaluation {
	totals := make([]SectionTotals, 0, len(AllSections))
	for _, name := range AllSections {
		section := e.Sections.Get(name)
		t := AggregateSection(section.Ratings)
		section.TotalScore = t.TotalScore
		section.MaxScore = t.MaxScore
		section.Percentage = t.Percentage
		section.DecimalTotal = t.DecimalTotal
		totals = append(totals, t)
	}
	e.FinalResult = ComposeFinal(totals...)
	return e
}

func threshold(score float64) levelThreshold {
	if math.IsNaN(score) {
		return lowestLevel
	}
	for _, t := range levelThresholds {
		if score >= t.min {
			return t
		}
	}
	return lowestLevel
}

// scaled returns part/whole on the given scale, or 0 when whole is not positive.
// Scaling before dividing keeps whole-number inputs exact at level boundaries; huge
// inputs whose product overflows are divided first instead.
func scaled(part, whole, scale float64) float64 {
	if whole <= 0 {
		return 0
	}
	if v := part * scale / whole; !math.IsInf(v, 0) && !math.IsNaN(v) {
		return v
	}
	return finite(part / whole * scale)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
