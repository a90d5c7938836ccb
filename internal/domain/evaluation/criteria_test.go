package evaluation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCriterion() Criterion {
	return Criterion{
		Name:     Localized{AR: " جودة العمل ", EN: " Quality of work "},
		Category: CategoryQuality,
		Section:  SectionHOD,
	}
}

func TestNormalizeCriterionDefaults(t *testing.T) {
	c := validCriterion()
	c.SubCriteria = []SubCriterion{{}, {Name: Localized{EN: "Accuracy"}}}
	c.PerformanceLevels = []PerformanceLevel{
		{Level: 3, MinScore: 3, MaxScore: 3},
		{Level: 1, MinScore: 1, MaxScore: 1},
	}

	require.NoError(t, NormalizeCriterion(&c))
	assert.Equal(t, "جودة العمل", c.Name.AR)
	assert.Equal(t, "Quality of work", c.Name.EN)
	assert.Equal(t, float64(DefaultMaxScore), c.MaxScore)
	assert.Equal(t, "Quality of Work", c.CategoryName.EN)
	assert.Len(t, c.SubCriteria, 1)
	assert.Equal(t, 1, c.PerformanceLevels[0].Level)
	assert.Equal(t, 3, c.PerformanceLevels[1].Level)
}

func TestNormalizeCriterionRejects(t *testing.T) {
	cases := map[string]func(*Criterion){
		"missing english name": func(c *Criterion) { c.Name.EN = "  " },
		"unknown category":     func(c *Criterion) { c.Category = "charm" },
		"unknown section":      func(c *Criterion) { c.Section = "ceo" },
		"negative max score":   func(c *Criterion) { c.MaxScore = -1 },
		"huge max score":       func(c *Criterion) { c.MaxScore = 1e307 },
		"infinite max score":   func(c *Criterion) { c.MaxScore = math.Inf(1) },
		"negative weight":      func(c *Criterion) { c.Weight = -0.5 },
		"level out of range":   func(c *Criterion) { c.PerformanceLevels = []PerformanceLevel{{Level: 6}} },
		"duplicate level": func(c *Criterion) {
			c.PerformanceLevels = []PerformanceLevel{{Level: 2}, {Level: 2}}
		},
		"inverted level band": func(c *Criterion) {
			c.PerformanceLevels = []PerformanceLevel{{Level: 2, MinScore: 4, MaxScore: 3}}
		},
		"too many levels": func(c *Criterion) {
			c.PerformanceLevels = []PerformanceLevel{{Level: 1}, {Level: 2}, {Level: 3}, {Level: 4}, {Level: 5}, {Level: 5}}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := validCriterion()
			mutate(&c)
			assert.ErrorIs(t, NormalizeCriterion(&c), ErrInvalidCriterion)
		})
	}
}

func TestSeedSections(t *testing.T) {
	criteria := []Criterion{
		{ID: "c1", Section: SectionHOD, MaxScore: 5, Active: true},
		{ID: "c2", Section: SectionHOD, MaxScore: 10, Active: true},
		{ID: "c3", Section: SectionGM, MaxScore: 5, Active: true},
		{ID: "c4", Section: SectionHR, MaxScore: 5, Active: false},
	}

	got := SeedSections(criteria)
	require.Len(t, got.HOD.Ratings, 2)
	assert.Equal(t, Rating{CriterionID: "c2", MaxRating: 10}, got.HOD.Ratings[1])
	assert.NotNil(t, got.HR.Ratings)
	assert.Empty(t, got.HR.Ratings)
	require.Len(t, got.GM.Ratings, 1)
	assert.Equal(t, 0.0, got.GM.Ratings[0].ObtainedRating)
}
