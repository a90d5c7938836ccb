package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const criterionColumns = `
    id, name_ar, name_en, description_ar, description_en, category, section, max_score, weight,
    sub_criteria, performance_levels, is_active, COALESCE(created_by::text, ''), created_at, updated_at
  `

const evaluationColumns = `
    id, employee_id, evaluator_id, evaluation_period, evaluation_date, position,
    COALESCE(department_id::text, ''), executive_info, qualifications,
    hod_section, hr_section, gm_section, overall_ratings,
    total_score, max_score, overall_percentage, overall_performance_score,
    performance_level, performance_description, employee_comments, signatures,
    status, is_active, revision, created_at, updated_at
  `

func (s *Store) ListCriteria(ctx context.Context, activeOnly bool) ([]Criterion, error) {
	query := "SELECT " + criterionColumns + " FROM evaluation_criteria"
	if activeOnly {
		query += " WHERE is_active = true"
	}
	query += " ORDER BY section, category, created_at"

	rows, err := s.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Criterion
	for rows.Next() {
		criterion, err := scanCriterion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, criterion)
	}
	return out, rows.Err()
}

func (s *Store) GetCriterion(ctx context.Context, criterionID string) (Criterion, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+criterionColumns+" FROM evaluation_criteria WHERE id = $1", criterionID)
	criterion, err := scanCriterion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Criterion{}, ErrCriterionNotFound
	}
	return criterion, err
}

func (s *Store) CreateCriterion(ctx context.Context, c Criterion) (string, error) {
	subJSON, levelsJSON, err := marshalCriterionLists(c)
	if err != nil {
		return "", err
	}
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO evaluation_criteria
      (name_ar, name_en, description_ar, description_en, category, section, max_score, weight,
       sub_criteria, performance_levels, is_active, created_by)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NULLIF($12,'')::uuid)
    RETURNING id
  `, c.Name.AR, c.Name.EN, c.Description.AR, c.Description.EN, string(c.Category), string(c.Section),
		c.MaxScore, c.Weight, subJSON, levelsJSON, c.Active, c.CreatedBy).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateCriterion(ctx context.Context, c Criterion) error {
	subJSON, levelsJSON, err := marshalCriterionLists(c)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluation_criteria
    SET name_ar = $1, name_en = $2, description_ar = $3, description_en = $4, category = $5,
        section = $6, max_score = $7, weight = $8, sub_criteria = $9, performance_levels = $10,
        updated_at = now()
    WHERE id = $11
  `, c.Name.AR, c.Name.EN, c.Description.AR, c.Description.EN, string(c.Category), string(c.Section),
		c.MaxScore, c.Weight, subJSON, levelsJSON, c.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCriterionNotFound
	}
	return nil
}

func (s *Store) DeactivateCriterion(ctx context.Context, criterionID string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE evaluation_criteria SET is_active = false, updated_at = now() WHERE id = $1", criterionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCriterionNotFound
	}
	return nil
}

// CriterionReferenced reports whether any evaluation, active or not, carries a rating for the criterion.
func (s *Store) CriterionReferenced(ctx context.Context, criterionID string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1
      FROM evaluations e,
           LATERAL (
             SELECT r FROM jsonb_array_elements(e.hod_section->'ratings') r
             UNION ALL SELECT r FROM jsonb_array_elements(e.hr_section->'ratings') r
             UNION ALL SELECT r FROM jsonb_array_elements(e.gm_section->'ratings') r
           ) ratings
      WHERE ratings.r->>'criterionId' = $1
    )
  `, criterionID).Scan(&exists)
	return exists, err
}

func (s *Store) EmployeeSnapshot(ctx context.Context, employeeID string) (EmployeeSnapshot, error) {
	var snap EmployeeSnapshot
	err := s.DB.QueryRow(ctx, `
    SELECT id, name_ar, name_en, position_ar, position_en, COALESCE(department_id::text, ''), hire_date
    FROM employees
    WHERE id = $1 AND is_active = true
  `, employeeID).Scan(&snap.ID, &snap.Name.AR, &snap.Name.EN, &snap.Position.AR, &snap.Position.EN, &snap.DepartmentID, &snap.HireDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return EmployeeSnapshot{}, ErrEmployeeNotFound
	}
	return snap, err
}

func (s *Store) ActiveEvaluationExists(ctx context.Context, employeeID, period string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM evaluations
      WHERE employee_id = $1 AND evaluation_period = $2 AND is_active = true
    )
  `, employeeID, period).Scan(&exists)
	return exists, err
}

func (s *Store) CreateEvaluation(ctx context.Context, e Evaluation) (string, error) {
	doc, err := marshalDocuments(e)
	if err != nil {
		return "", err
	}
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO evaluations
      (employee_id, evaluator_id, evaluation_period, evaluation_date, position, department_id,
       executive_info, qualifications, hod_section, hr_section, gm_section, overall_ratings,
       total_score, max_score, overall_percentage, overall_performance_score,
       performance_level, performance_description, employee_comments, signatures,
       status, is_active, revision)
    VALUES ($1,$2,$3,$4,$5,NULLIF($6,'')::uuid,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
    RETURNING id
  `, e.EmployeeID, e.EvaluatorID, e.EvaluationPeriod, e.EvaluationDate, e.Position, e.DepartmentID,
		doc.executiveInfo, doc.qualifications, doc.hod, doc.hr, doc.gm, doc.overallRatings,
		e.FinalResult.TotalScore, e.FinalResult.MaxScore, e.FinalResult.OverallPercentage, e.FinalResult.OverallPerformanceScore,
		e.FinalResult.PerformanceLevel, e.FinalResult.PerformanceDescription, e.EmployeeComments, doc.signatures,
		string(e.Status), e.Active, e.Revision).Scan(&id)
	if isUniqueViolation(err) {
		return "", ErrEvaluationExists
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetEvaluation(ctx context.Context, evaluationID string) (Evaluation, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+evaluationColumns+" FROM evaluations WHERE id = $1", evaluationID)
	e, err := scanEvaluation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Evaluation{}, ErrEvaluationNotFound
	}
	return e, err
}

func (s *Store) ListEvaluations(ctx context.Context, filter ListFilter) ([]Evaluation, error) {
	where, args := filterClause(filter)
	query := "SELECT " + evaluationColumns + " FROM evaluations" + where + " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Evaluation
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountEvaluations counts the rows ListEvaluations would return without paging.
func (s *Store) CountEvaluations(ctx context.Context, filter ListFilter) (int, error) {
	where, args := filterClause(filter)
	var total int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM evaluations"+where, args...).Scan(&total)
	return total, err
}

// UpdateEvaluation writes e only when the stored revision still equals expectedRevision.
func (s *Store) UpdateEvaluation(ctx context.Context, e Evaluation, expectedRevision int) error {
	doc, err := marshalDocuments(e)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluations
    SET position = $1, executive_info = $2, qualifications = $3,
        hod_section = $4, hr_section = $5, gm_section = $6, overall_ratings = $7,
        total_score = $8, max_score = $9, overall_percentage = $10, overall_performance_score = $11,
        performance_level = $12, performance_description = $13, employee_comments = $14,
        signatures = $15, status = $16, revision = revision + 1, updated_at = now()
    WHERE id = $17 AND revision = $18 AND is_active = true
  `, e.Position, doc.executiveInfo, doc.qualifications, doc.hod, doc.hr, doc.gm, doc.overallRatings,
		e.FinalResult.TotalScore, e.FinalResult.MaxScore, e.FinalResult.OverallPercentage, e.FinalResult.OverallPerformanceScore,
		e.FinalResult.PerformanceLevel, e.FinalResult.PerformanceDescription, e.EmployeeComments,
		doc.signatures, string(e.Status), e.ID, expectedRevision)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRevisionConflict
	}
	return nil
}

func (s *Store) DeactivateEvaluation(ctx context.Context, evaluationID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluations SET is_active = false, revision = revision + 1, updated_at = now()
    WHERE id = $1 AND is_active = true
  `, evaluationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEvaluationNotFound
	}
	return nil
}

func (s *Store) EvaluationOutcomes(ctx context.Context, filter ListFilter) ([]Outcome, error) {
	where, args := filterClause(filter)
	rows, err := s.DB.Query(ctx, "SELECT status, performance_level, overall_percentage FROM evaluations"+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		var o Outcome
		var status string
		if err := rows.Scan(&status, &o.PerformanceLevel, &o.OverallPercentage); err != nil {
			return nil, err
		}
		o.Status = Status(status)
		out = append(out, o)
	}
	return out, rows.Err()
}

func filterClause(filter ListFilter) (string, []any) {
	var clauses []string
	var args []any
	add := func(expr string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(expr, len(args)))
	}
	if !filter.IncludeAll {
		clauses = append(clauses, "is_active = true")
	}
	if filter.EmployeeID != "" {
		add("employee_id = $%d", filter.EmployeeID)
	}
	if filter.EvaluatorID != "" {
		add("evaluator_id = $%d", filter.EvaluatorID)
	}
	if filter.DepartmentID != "" {
		add("department_id = $%d", filter.DepartmentID)
	}
	if filter.Period != "" {
		add("evaluation_period = $%d", filter.Period)
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	where := " WHERE " + clauses[0]
	for _, clause := range clauses[1:] {
		where += " AND " + clause
	}
	return where, args
}

type documents struct {
	executiveInfo  []byte
	qualifications []byte
	hod            []byte
	hr             []byte
	gm             []byte
	overallRatings []byte
	signatures     []byte
}

func marshalDocuments(e Evaluation) (documents, error) {
	var doc documents
	qualifications := e.Qualifications
	if qualifications == nil {
		qualifications = []Qualification{}
	}
	targets := []struct {
		dst *[]byte
		src any
	}{
		{&doc.executiveInfo, e.ExecutiveInfo},
		{&doc.qualifications, qualifications},
		{&doc.hod, e.Sections.HOD},
		{&doc.hr, e.Sections.HR},
		{&doc.gm, e.Sections.GM},
		{&doc.overallRatings, e.OverallRatings},
		{&doc.signatures, e.Signatures},
	}
	for _, t := range targets {
		raw, err := json.Marshal(t.src)
		if err != nil {
			return documents{}, err
		}
		*t.dst = raw
	}
	return doc, nil
}

func scanEvaluation(row pgx.Row) (Evaluation, error) {
	var e Evaluation
	var doc documents
	var status string
	if err := row.Scan(&e.ID, &e.EmployeeID, &e.EvaluatorID, &e.EvaluationPeriod, &e.EvaluationDate, &e.Position,
		&e.DepartmentID, &doc.executiveInfo, &doc.qualifications,
		&doc.hod, &doc.hr, &doc.gm, &doc.overallRatings,
		&e.FinalResult.TotalScore, &e.FinalResult.MaxScore, &e.FinalResult.OverallPercentage, &e.FinalResult.OverallPerformanceScore,
		&e.FinalResult.PerformanceLevel, &e.FinalResult.PerformanceDescription, &e.EmployeeComments, &doc.signatures,
		&status, &e.Active, &e.Revision, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return Evaluation{}, err
	}
	e.Status = Status(status)

	targets := []struct {
		src []byte
		dst any
	}{
		{doc.executiveInfo, &e.ExecutiveInfo},
		{doc.qualifications, &e.Qualifications},
		{doc.hod, &e.Sections.HOD},
		{doc.hr, &e.Sections.HR},
		{doc.gm, &e.Sections.GM},
		{doc.overallRatings, &e.OverallRatings},
		{doc.signatures, &e.Signatures},
	}
	for _, t := range targets {
		if len(t.src) == 0 {
			continue
		}
		if err := json.Unmarshal(t.src, t.dst); err != nil {
			return Evaluation{}, fmt.Errorf("decode evaluation %s: %w", e.ID, err)
		}
	}
	return e, nil
}

func scanCriterion(row pgx.Row) (Criterion, error) {
	var c Criterion
	var category, section string
	var subJSON, levelsJSON []byte
	if err := row.Scan(&c.ID, &c.Name.AR, &c.Name.EN, &c.Description.AR, &c.Description.EN, &category, &section,
		&c.MaxScore, &c.Weight, &subJSON, &levelsJSON, &c.Active, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return Criterion{}, err
	}
	c.Category = Category(category)
	c.CategoryName = c.Category.Name()
	c.Section = Section(section)
	if len(subJSON) > 0 {
		if err := json.Unmarshal(subJSON, &c.SubCriteria); err != nil {
			return Criterion{}, err
		}
	}
	if len(levelsJSON) > 0 {
		if err := json.Unmarshal(levelsJSON, &c.PerformanceLevels); err != nil {
			return Criterion{}, err
		}
	}
	return c, nil
}

func marshalCriterionLists(c Criterion) ([]byte, []byte, error) {
	sub := c.SubCriteria
	if sub == nil {
		sub = []SubCriterion{}
	}
	levels := c.PerformanceLevels
	if levels == nil {
		levels = []PerformanceLevel{}
	}
	subJSON, err := json.Marshal(sub)
	if err != nil {
		return nil, nil, err
	}
	levelsJSON, err := json.Marshal(levels)
	if err != nil {
		return nil, nil, err
	}
	return subJSON, levelsJSON, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
