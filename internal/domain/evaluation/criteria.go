package evaluation

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// NormalizeCriterion applies defaults and checks the rubric invariants of c.
func NormalizeCriterion(c *Criterion) error {
	c.Name.AR = strings.TrimSpace(c.Name.AR)
	c.Name.EN = strings.TrimSpace(c.Name.EN)
	if c.Name.AR == "" || c.Name.EN == "" {
		return fmt.Errorf("%w: name is required in both languages", ErrInvalidCriterion)
	}
	if !c.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidCriterion, c.Category)
	}
	if !c.Section.Valid() {
		return fmt.Errorf("%w: unknown section %q", ErrInvalidCriterion, c.Section)
	}
	c.CategoryName = c.Category.Name()
	if c.MaxScore == 0 {
		c.MaxScore = DefaultMaxScore
	}
	if c.MaxScore < 0 || c.MaxScore > MaxCriterionScore || math.IsNaN(c.MaxScore) {
		return fmt.Errorf("%w: maxScore must be between 0 and %d", ErrInvalidCriterion, MaxCriterionScore)
	}
	if c.Weight < 0 || math.IsNaN(c.Weight) {
		return fmt.Errorf("%w: weight must not be negative", ErrInvalidCriterion)
	}

	kept := c.SubCriteria[:0]
	for _, sub := range c.SubCriteria {
		if strings.TrimSpace(sub.Name.AR) == "" && strings.TrimSpace(sub.Name.EN) == "" {
			continue
		}
		kept = append(kept, sub)
	}
	c.SubCriteria = kept

	if len(c.PerformanceLevels) > MaxPerformanceLevels {
		return fmt.Errorf("%w: at most %d performance levels", ErrInvalidCriterion, MaxPerformanceLevels)
	}
	seen := map[int]bool{}
	for _, lvl := range c.PerformanceLevels {
		if lvl.Level < 1 || lvl.Level > MaxPerformanceLevels {
			return fmt.Errorf("%w: performance level %d out of range", ErrInvalidCriterion, lvl.Level)
		}
		if seen[lvl.Level] {
			return fmt.Errorf("%w: duplicate performance level %d", ErrInvalidCriterion, lvl.Level)
		}
		seen[lvl.Level] = true
		if lvl.MinScore > lvl.MaxScore {
			return fmt.Errorf("%w: level %d minScore exceeds maxScore", ErrInvalidCriterion, lvl.Level)
		}
	}
	sort.Slice(c.PerformanceLevels, func(i, j int) bool {
		return c.PerformanceLevels[i].Level < c.PerformanceLevels[j].Level
	})
	return nil
}

// SeedSections builds one zero rating per criterion in the section the criterion belongs to.
// MaxRating is copied from the criterion so later rubric edits leave the evaluation untouched.
func SeedSections(criteria []Criterion) Sections {
	var sections Sections
	for _, c := range criteria {
		if !c.Active {
			continue
		}
		section := sections.Get(c.Section)
		if section == nil {
			continue
		}
		section.Ratings = append(section.Ratings, Rating{
			CriterionID: c.ID,
			MaxRating:   c.MaxScore,
		})
	}
	for _, name := range AllSections {
		section := sections.Get(name)
		if section.Ratings == nil {
			section.Ratings = []Rating{}
		}
	}
	return sections
}
