package kpi

import "context"

type StoreAPI interface {
	List(ctx context.Context, filter ListFilter) ([]KPI, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	Get(ctx context.Context, kpiID string) (KPI, error)
	Create(ctx context.Context, k KPI) (string, error)
	Update(ctx context.Context, k KPI) error
	Delete(ctx context.Context, kpiID string) error
}
