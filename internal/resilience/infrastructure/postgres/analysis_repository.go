// Package postgres persists analysis results in a Postgres table. The
// result payload (requirement, curve, histogram, contributions) is stored
// as JSON columns; listing projects only the summary columns.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"microgrid-resilience/internal/resilience/application"
	resilience "microgrid-resilience/internal/resilience/domain"
)

const defaultAnalysisTable = "resilience_analyses"

// AnalysisRepository is a Postgres implementation of the analysis store.
type AnalysisRepository struct {
	db    *sql.DB
	table string
}

// RepositoryOption configures the repository.
type RepositoryOption func(*AnalysisRepository)

// WithTable overrides the default table name.
func WithTable(table string) RepositoryOption {
	return func(repo *AnalysisRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// NewAnalysisRepository creates a repository using the default table name.
func NewAnalysisRepository(db *sql.DB, opts ...RepositoryOption) *AnalysisRepository {
	repo := &AnalysisRepository{
		db:    db,
		table: defaultAnalysisTable,
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Save upserts an analysis result.
func (r *AnalysisRepository) Save(ctx context.Context, result *application.AnalysisResult) error {
	if result == nil || result.ID == "" {
		return errors.New("analysis repo: nil result")
	}

	scenario, err := json.Marshal(result.Scenario)
	if err != nil {
		return err
	}
	requirement, err := json.Marshal(result.RequirementKWh)
	if err != nil {
		return err
	}
	var constraint []byte
	if result.SizingConstraint != nil {
		constraint, err = json.Marshal(result.SizingConstraint)
		if err != nil {
			return err
		}
	}
	curve, err := json.Marshal(result.Curve)
	if err != nil {
		return err
	}
	histogram, err := json.Marshal(result.Histogram)
	if err != nil {
		return err
	}
	contributions, err := json.Marshal(result.Contributions)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	created_at,
	coverage_target_hours,
	simulated_starts,
	scenario,
	requirement_kwh,
	sizing_constraint,
	curve,
	histogram,
	contributions
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
)
ON CONFLICT (id)
DO UPDATE SET
	created_at = EXCLUDED.created_at,
	coverage_target_hours = EXCLUDED.coverage_target_hours,
	simulated_starts = EXCLUDED.simulated_starts,
	scenario = EXCLUDED.scenario,
	requirement_kwh = EXCLUDED.requirement_kwh,
	sizing_constraint = EXCLUDED.sizing_constraint,
	curve = EXCLUDED.curve,
	histogram = EXCLUDED.histogram,
	contributions = EXCLUDED.contributions`, r.table)

	constraintValue := sql.NullString{}
	if constraint != nil {
		constraintValue = sql.NullString{String: string(constraint), Valid: true}
	}

	_, err = r.db.ExecContext(
		ctx,
		query,
		result.ID,
		result.CreatedAt,
		result.Scenario.CoverageTargetHours,
		len(result.RequirementKWh),
		string(scenario),
		string(requirement),
		constraintValue,
		string(curve),
		string(histogram),
		string(contributions),
	)
	return err
}

// Get fetches an analysis result by id.
func (r *AnalysisRepository) Get(ctx context.Context, id string) (*application.AnalysisResult, error) {
	if id == "" {
		return nil, application.ErrAnalysisNotFound
	}

	query := fmt.Sprintf(`
SELECT
	id,
	created_at,
	scenario,
	requirement_kwh,
	sizing_constraint,
	curve,
	histogram,
	contributions
FROM %s
WHERE id = $1
LIMIT 1`, r.table)

	var (
		resultID      string
		createdAt     time.Time
		scenario      []byte
		requirement   []byte
		constraint    sql.NullString
		curve         []byte
		histogram     []byte
		contributions []byte
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&resultID,
		&createdAt,
		&scenario,
		&requirement,
		&constraint,
		&curve,
		&histogram,
		&contributions,
	)
	if err == sql.ErrNoRows {
		return nil, application.ErrAnalysisNotFound
	}
	if err != nil {
		return nil, err
	}

	result := &application.AnalysisResult{
		ID:        resultID,
		CreatedAt: createdAt,
	}
	if err := json.Unmarshal(scenario, &result.Scenario); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(requirement, &result.RequirementKWh); err != nil {
		return nil, err
	}
	if constraint.Valid {
		parsed := &resilience.Inequality{}
		if err := json.Unmarshal([]byte(constraint.String), parsed); err != nil {
			return nil, err
		}
		result.SizingConstraint = parsed
	}
	if err := json.Unmarshal(curve, &result.Curve); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(histogram, &result.Histogram); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(contributions, &result.Contributions); err != nil {
		return nil, err
	}
	return result, nil
}

// List returns summaries of stored results, newest first.
func (r *AnalysisRepository) List(ctx context.Context) ([]application.AnalysisSummary, error) {
	query := fmt.Sprintf(`
SELECT
	id,
	created_at,
	coverage_target_hours,
	simulated_starts
FROM %s
ORDER BY created_at DESC, id ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []application.AnalysisSummary
	for rows.Next() {
		var summary application.AnalysisSummary
		if err := rows.Scan(
			&summary.ID,
			&summary.CreatedAt,
			&summary.CoverageTargetHours,
			&summary.SimulatedStarts,
		); err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}
