// internal/search/records/memory.go
package records

import (
	"context"
	"time"

	"trial-search/internal/common/metrics"
	"trial-search/internal/models"
	"trial-search/internal/search/criteria"
	"trial-search/internal/search/fields"
)

// MemoryRepository evaluates criteria against an in-process record slice.
// Used by the "memory" backend for demos and as the reference
// implementation of the evaluation semantics.
type MemoryRepository struct {
	records   []models.TrialRecord
	evaluator *criteria.Evaluator
}

func NewMemoryRepository(registry *fields.Registry, recordList []models.TrialRecord) *MemoryRepository {
	return &MemoryRepository{
		records:   recordList,
		evaluator: criteria.NewEvaluator(registry),
	}
}

func (r *MemoryRepository) Backend() string { return "memory" }

func (r *MemoryRepository) Search(_ context.Context, criteriaModel models.CriteriaModel, limit int) (Result, error) {
	start := time.Now()

	result := Result{Records: []models.TrialRecord{}}
	for _, rec := range r.records {
		if !r.evaluator.Matches(rec.AsMap(), criteriaModel) {
			continue
		}
		result.Total++
		if limit <= 0 || len(result.Records) < limit {
			result.Records = append(result.Records, rec)
		}
	}

	metrics.SearchExecutions.WithLabelValues("memory").Inc()
	metrics.SearchDuration.WithLabelValues("memory").Observe(time.Since(start).Seconds())

	return result, nil
}
