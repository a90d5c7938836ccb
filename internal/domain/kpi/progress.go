package kpi

import (
	"fmt"
	"math"
	"strings"
)

// MaxValue bounds targets, current values and quarter results.
const MaxValue = 1e12

// Progress is value as a percentage of target, 0 when target is not positive.
func Progress(value, target float64) float64 {
	if target <= 0 || !finite(value) || !finite(target) {
		return 0
	}
	if p := value * 100 / target; finite(p) {
		return p
	}
	if p := value / target * 100; finite(p) {
		return p
	}
	return 0
}

// StatusFor derives a status from progress. Delayed is never derived; it is set explicitly.
func StatusFor(progress float64) Status {
	switch {
	case progress >= 100:
		return StatusCompleted
	case progress > 0:
		return StatusInProgress
	default:
		return StatusPending
	}
}

// Refresh recomputes progress, quarter progress and status from the raw values of k.
// An explicitly delayed KPI stays delayed until it completes.
func Refresh(k KPI) KPI {
	k.Progress = Progress(k.CurrentValue, k.Target)
	k.QuarterProgress = Quarters{
		Q1: Progress(k.QuarterResults.Q1, k.Target),
		Q2: Progress(k.QuarterResults.Q2, k.Target),
		Q3: Progress(k.QuarterResults.Q3, k.Target),
		Q4: Progress(k.QuarterResults.Q4, k.Target),
	}
	derived := StatusFor(k.Progress)
	if k.Status != StatusDelayed || derived == StatusCompleted {
		k.Status = derived
	}
	return k
}

// ApplyQuarters merges the reported quarters and makes the latest non-zero quarter the current value.
func ApplyQuarters(k KPI, patch QuarterPatch) (KPI, error) {
	targets := []struct {
		dst *float64
		src *float64
	}{
		{&k.QuarterResults.Q1, patch.Q1},
		{&k.QuarterResults.Q2, patch.Q2},
		{&k.QuarterResults.Q3, patch.Q3},
		{&k.QuarterResults.Q4, patch.Q4},
	}
	for _, t := range targets {
		if t.src == nil {
			continue
		}
		if !ValidValue(*t.src) {
			return k, ErrInvalidNumber
		}
		*t.dst = *t.src
	}
	k.CurrentValue = LatestQuarter(k.QuarterResults)
	return Refresh(k), nil
}

// LatestQuarter returns the most recent non-zero quarter result, searching q4 back to q1.
func LatestQuarter(q Quarters) float64 {
	for _, v := range []float64{q.Q4, q.Q3, q.Q2, q.Q1} {
		if v != 0 {
			return v
		}
	}
	return 0
}

// Normalize applies defaults and validates the user-editable fields of k.
func Normalize(k *KPI) error {
	k.Name.AR = strings.TrimSpace(k.Name.AR)
	k.Name.EN = strings.TrimSpace(k.Name.EN)
	if k.Name.AR == "" || k.Name.EN == "" {
		return fmt.Errorf("%w: name is required in both languages", ErrInvalidKPI)
	}
	if strings.TrimSpace(k.DepartmentID) == "" {
		return fmt.Errorf("%w: department is required", ErrInvalidKPI)
	}
	if !ValidValue(k.Target) || !ValidValue(k.CurrentValue) {
		return ErrInvalidNumber
	}
	if k.Unit == "" {
		k.Unit = DefaultUnit
	}
	if k.MeasurementCycle == "" {
		k.MeasurementCycle = DefaultCycle
	}
	if !k.MeasurementCycle.Valid() {
		return fmt.Errorf("%w: unknown measurement cycle %q", ErrInvalidKPI, k.MeasurementCycle)
	}
	if k.Status != "" && !k.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidKPI, k.Status)
	}
	return nil
}

func buildStats(kpis []KPI) Stats {
	stats := Stats{Total: len(kpis)}
	var sum float64
	for _, k := range kpis {
		switch k.Status {
		case StatusCompleted:
			stats.Completed++
		case StatusInProgress:
			stats.InProgress++
		case StatusDelayed:
			stats.Delayed++
		default:
			stats.Pending++
		}
		if finite(k.Progress) {
			sum += k.Progress
		}
	}
	if len(kpis) > 0 {
		stats.AverageProgress = int(math.Round(sum / float64(len(kpis))))
	}
	return stats
}

// ValidValue reports whether v is finite and within MaxValue.
func ValidValue(v float64) bool {
	return finite(v) && math.Abs(v) <= MaxValue
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
