package evaluation

import (
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

type catalogFile struct {
	Criteria []catalogEntry `yaml:"criteria"`
}

type catalogEntry struct {
	Name              Localized          `yaml:"name"`
	Description       Localized          `yaml:"description"`
	Category          string             `yaml:"category"`
	Section           string             `yaml:"section"`
	MaxScore          float64            `yaml:"maxScore"`
	Weight            float64            `yaml:"weight"`
	SubCriteria       []SubCriterion     `yaml:"subCriteria"`
	PerformanceLevels []PerformanceLevel `yaml:"performanceLevels"`
}

// DefaultCatalog returns the built-in rubric used when no catalog file is configured.
func DefaultCatalog() ([]Criterion, error) {
	return ParseCatalog(defaultCatalog)
}

func LoadCatalog(r io.Reader) ([]Criterion, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(raw)
}

// ParseCatalog decodes a YAML rubric and normalizes every entry.
func ParseCatalog(raw []byte) ([]Criterion, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode criteria catalog: %w", err)
	}
	out := make([]Criterion, 0, len(file.Criteria))
	for i, entry := range file.Criteria {
		c := Criterion{
			Name:              entry.Name,
			Description:       entry.Description,
			Category:          Category(entry.Category),
			Section:           Section(entry.Section),
			MaxScore:          entry.MaxScore,
			Weight:            entry.Weight,
			SubCriteria:       entry.SubCriteria,
			PerformanceLevels: entry.PerformanceLevels,
			Active:            true,
		}
		if err := NormalizeCriterion(&c); err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i+1, err)
		}
		out = append(out, c)
	}
	return out, nil
}
