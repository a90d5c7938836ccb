package kpi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const kpiColumns = `
    id, name_ar, name_en, description_ar, description_en, calculation_method_ar, calculation_method_en,
    department_id, COALESCE(assigned_to::text, ''), target, unit, measurement_cycle, current_value,
    progress, status, quarter_results, quarter_progress, justification, created_at, updated_at
  `

func (s *Store) List(ctx context.Context, filter ListFilter) ([]KPI, error) {
	where, args := filterClause(filter)
	query := "SELECT " + kpiColumns + " FROM kpis" + where + " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []KPI
	for rows.Next() {
		k, err := scanKPI(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := filterClause(filter)
	var total int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM kpis"+where, args...).Scan(&total)
	return total, err
}

func filterClause(filter ListFilter) (string, []any) {
	var clauses []string
	var args []any
	add := func(expr string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(expr, len(args)))
	}
	if filter.DepartmentID != "" {
		add("department_id = $%d", filter.DepartmentID)
	}
	if filter.AssignedTo != "" {
		add("assigned_to = $%d", filter.AssignedTo)
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(name_ar ILIKE $%d OR name_en ILIKE $%d OR description_ar ILIKE $%d OR description_en ILIKE $%d)", n, n, n, n))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *Store) Get(ctx context.Context, kpiID string) (KPI, error) {
	k, err := scanKPI(s.DB.QueryRow(ctx, "SELECT "+kpiColumns+" FROM kpis WHERE id = $1", kpiID))
	if errors.Is(err, pgx.ErrNoRows) {
		return KPI{}, ErrKPINotFound
	}
	return k, err
}

func (s *Store) Create(ctx context.Context, k KPI) (string, error) {
	results, progress, err := marshalQuarters(k)
	if err != nil {
		return "", err
	}
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO kpis
      (name_ar, name_en, description_ar, description_en, calculation_method_ar, calculation_method_en,
       department_id, assigned_to, target, unit, measurement_cycle, current_value, progress, status,
       quarter_results, quarter_progress, justification)
    VALUES ($1,$2,$3,$4,$5,$6,$7,NULLIF($8,'')::uuid,$9,$10,$11,$12,$13,$14,$15,$16,$17)
    RETURNING id
  `, k.Name.AR, k.Name.EN, k.Description.AR, k.Description.EN, k.CalculationMethod.AR, k.CalculationMethod.EN,
		k.DepartmentID, k.AssignedTo, k.Target, k.Unit, string(k.MeasurementCycle), k.CurrentValue, k.Progress,
		string(k.Status), results, progress, k.Justification).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, k KPI) error {
	results, progress, err := marshalQuarters(k)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE kpis
    SET name_ar = $1, name_en = $2, description_ar = $3, description_en = $4,
        calculation_method_ar = $5, calculation_method_en = $6, department_id = $7,
        assigned_to = NULLIF($8,'')::uuid, target = $9, unit = $10, measurement_cycle = $11,
        current_value = $12, progress = $13, status = $14, quarter_results = $15,
        quarter_progress = $16, justification = $17, updated_at = now()
    WHERE id = $18
  `, k.Name.AR, k.Name.EN, k.Description.AR, k.Description.EN, k.CalculationMethod.AR, k.CalculationMethod.EN,
		k.DepartmentID, k.AssignedTo, k.Target, k.Unit, string(k.MeasurementCycle), k.CurrentValue, k.Progress,
		string(k.Status), results, progress, k.Justification, k.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrKPINotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, kpiID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM kpis WHERE id = $1", kpiID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrKPINotFound
	}
	return nil
}

func scanKPI(row pgx.Row) (KPI, error) {
	var k KPI
	var cycle, status string
	var results, progress []byte
	if err := row.Scan(&k.ID, &k.Name.AR, &k.Name.EN, &k.Description.AR, &k.Description.EN,
		&k.CalculationMethod.AR, &k.CalculationMethod.EN, &k.DepartmentID, &k.AssignedTo, &k.Target, &k.Unit,
		&cycle, &k.CurrentValue, &k.Progress, &status, &results, &progress, &k.Justification,
		&k.CreatedAt, &k.UpdatedAt); err != nil {
		return KPI{}, err
	}
	k.MeasurementCycle = Cycle(cycle)
	k.Status = Status(status)
	if len(results) > 0 {
		if err := json.Unmarshal(results, &k.QuarterResults); err != nil {
			return KPI{}, err
		}
	}
	if len(progress) > 0 {
		if err := json.Unmarshal(progress, &k.QuarterProgress); err != nil {
			return KPI{}, err
		}
	}
	return k, nil
}

func marshalQuarters(k KPI) ([]byte, []byte, error) {
	results, err := json.Marshal(k.QuarterResults)
	if err != nil {
		return nil, nil, err
	}
	progress, err := json.Marshal(k.QuarterProgress)
	if err != nil {
		return nil, nil, err
	}
	return results, progress, nil
}
