package kpi

import (
	"context"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]KPI, error) {
	return s.store.List(ctx, filter)
}

// Count ignores the paging fields of filter.
func (s *Service) Count(ctx context.Context, filter ListFilter) (int, error) {
	return s.store.Count(ctx, filter)
}

func (s *Service) Get(ctx context.Context, kpiID string) (KPI, error) {
	return s.store.Get(ctx, kpiID)
}

func (s *Service) Create(ctx context.Context, k KPI) (KPI, error) {
	if err := Normalize(&k); err != nil {
		return KPI{}, err
	}
	k = Refresh(k)
	id, err := s.store.Create(ctx, k)
	if err != nil {
		return KPI{}, err
	}
	k.ID = id
	return k, nil
}

// Update replaces the editable fields of the KPI. Quarter results are owned by UpdateQuarters.
func (s *Service) Update(ctx context.Context, kpiID string, k KPI) (KPI, error) {
	current, err := s.store.Get(ctx, kpiID)
	if err != nil {
		return KPI{}, err
	}
	if err := Normalize(&k); err != nil {
		return KPI{}, err
	}
	k.ID = current.ID
	k.QuarterResults = current.QuarterResults
	k.CreatedAt = current.CreatedAt
	if k.Status == "" {
		k.Status = current.Status
	}
	k = Refresh(k)
	if err := s.store.Update(ctx, k); err != nil {
		return KPI{}, err
	}
	return k, nil
}

func (s *Service) UpdateQuarters(ctx context.Context, kpiID string, patch QuarterPatch) (KPI, error) {
	current, err := s.store.Get(ctx, kpiID)
	if err != nil {
		return KPI{}, err
	}
	updated, err := ApplyQuarters(current, patch)
	if err != nil {
		return KPI{}, err
	}
	if err := s.store.Update(ctx, updated); err != nil {
		return KPI{}, err
	}
	return updated, nil
}

func (s *Service) UpdateCurrentValue(ctx context.Context, kpiID string, value float64, justification string) (KPI, error) {
	if !ValidValue(value) {
		return KPI{}, ErrInvalidNumber
	}
	current, err := s.store.Get(ctx, kpiID)
	if err != nil {
		return KPI{}, err
	}
	current.CurrentValue = value
	if justification != "" {
		current.Justification = justification
	}
	updated := Refresh(current)
	if err := s.store.Update(ctx, updated); err != nil {
		return KPI{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, kpiID string) error {
	return s.store.Delete(ctx, kpiID)
}

func (s *Service) Stats(ctx context.Context, filter ListFilter) (Stats, error) {
	filter.Limit, filter.Offset = 0, 0
	kpis, err := s.store.List(ctx, filter)
	if err != nil {
		return Stats{}, err
	}
	return buildStats(kpis), nil
}
