package kpi

import (
	"time"

	"hotelperf/internal/platform/i18n"
)

type Localized = i18n.Text

type Quarters struct {
	Q1 float64 `json:"q1"`
	Q2 float64 `json:"q2"`
	Q3 float64 `json:"q3"`
	Q4 float64 `json:"q4"`
}

type KPI struct {
	ID                string    `json:"id"`
	Name              Localized `json:"name"`
	Description       Localized `json:"description"`
	CalculationMethod Localized `json:"calculationMethod"`
	DepartmentID      string    `json:"departmentId"`
	AssignedTo        string    `json:"assignedTo,omitempty"`
	Target            float64   `json:"target"`
	Unit              string    `json:"unit"`
	MeasurementCycle  Cycle     `json:"measurementCycle"`
	CurrentValue      float64   `json:"currentValue"`
	Progress          float64   `json:"progress"`
	Status            Status    `json:"status"`
	QuarterResults    Quarters  `json:"quarterResults"`
	QuarterProgress   Quarters  `json:"quarterProgress"`
	Justification     string    `json:"justification"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// QuarterPatch carries only the quarters being reported; nil quarters keep their stored value.
type QuarterPatch struct {
	Q1 *float64 `json:"q1"`
	Q2 *float64 `json:"q2"`
	Q3 *float64 `json:"q3"`
	Q4 *float64 `json:"q4"`
}

type ListFilter struct {
	DepartmentID string
	AssignedTo   string
	Status       Status
	Search       string
	// Limit and Offset page List; zero Limit means all rows.
	Limit  int
	Offset int
}

type Stats struct {
	Total           int `json:"totalKPIs"`
	Completed       int `json:"completedKPIs"`
	InProgress      int `json:"inProgressKPIs"`
	Pending         int `json:"pendingKPIs"`
	Delayed         int `json:"delayedKPIs"`
	AverageProgress int `json:"averageProgress"`
}
