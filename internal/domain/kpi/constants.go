package kpi

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusDelayed    Status = "delayed"
)

var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusDelayed}

func (s Status) Valid() bool {
	for _, candidate := range Statuses {
		if s == candidate {
			return true
		}
	}
	return false
}

type Cycle string

const (
	CycleDaily      Cycle = "daily"
	CycleWeekly     Cycle = "weekly"
	CycleMonthly    Cycle = "monthly"
	CycleQuarterly  Cycle = "quarterly"
	CycleSemiAnnual Cycle = "semi_annual"
	CycleAnnual     Cycle = "annual"
)

var Cycles = []Cycle{CycleDaily, CycleWeekly, CycleMonthly, CycleQuarterly, CycleSemiAnnual, CycleAnnual}

func (c Cycle) Valid() bool {
	for _, candidate := range Cycles {
		if c == candidate {
			return true
		}
	}
	return false
}

const (
	DefaultUnit  = "%"
	DefaultCycle = CycleMonthly
)
