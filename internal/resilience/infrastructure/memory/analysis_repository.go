// Package memory provides an in-memory analysis repository used for
// development and tests when no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"microgrid-resilience/internal/resilience/application"
)

// AnalysisRepository stores analysis results in process memory.
type AnalysisRepository struct {
	mu      sync.RWMutex
	results map[string]*application.AnalysisResult
}

// NewAnalysisRepository constructs an empty in-memory repository.
func NewAnalysisRepository() *AnalysisRepository {
	return &AnalysisRepository{
		results: make(map[string]*application.AnalysisResult),
	}
}

// Save stores a result, replacing any previous entry with the same id.
func (r *AnalysisRepository) Save(_ context.Context, result *application.AnalysisResult) error {
	if result == nil || result.ID == "" {
		return application.ErrAnalysisNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *result
	r.results[result.ID] = &stored
	return nil
}

// Get loads a stored result by id.
func (r *AnalysisRepository) Get(_ context.Context, id string) (*application.AnalysisResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.results[id]
	if !ok {
		return nil, application.ErrAnalysisNotFound
	}
	result := *stored
	return &result, nil
}

// List returns summaries of stored results, newest first.
func (r *AnalysisRepository) List(_ context.Context) ([]application.AnalysisSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	summaries := make([]application.AnalysisSummary, 0, len(r.results))
	for _, stored := range r.results {
		summaries = append(summaries, application.AnalysisSummary{
			ID:                  stored.ID,
			CreatedAt:           stored.CreatedAt,
			CoverageTargetHours: stored.Scenario.CoverageTargetHours,
			SimulatedStarts:     len(stored.RequirementKWh),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].ID < summaries[j].ID
		}
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}
