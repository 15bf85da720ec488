// Package records is the result-filtering layer: it compiles a normalized
// criteria model into the query language of the configured backend and
// returns matching trial records. All backends reproduce the strict
// left-to-right connective semantics of the in-memory evaluator.
package records

import (
	"context"

	"trial-search/internal/models"
)

// Result holds one page of matching records.
type Result struct {
	Records []models.TrialRecord `json:"records"`
	Total   int64                `json:"total"`
}

// Searcher executes a normalized criteria model against a record backend.
type Searcher interface {
	Search(ctx context.Context, criteriaModel models.CriteriaModel, limit int) (Result, error)
	Backend() string
}

// recordColumns lists the trial_records columns. Catalog field ids double
// as column names, so this list only exists as a guard against
// unregistered fields leaking into SQL.
var recordColumns = []string{
	"id",
	"trial_id",
	"protocol_title",
	"trial_phase",
	"status",
	"sponsor",
	"country",
	"therapeutic_area",
	"enrollment_count",
	"start_date",
	"completion_date",
	"inclusion_criteria",
	"exclusion_criteria",
	"summary",
	"is_randomized",
	"has_adverse_events",
	"principal_investigator",
}

func isRecordColumn(fieldID string) bool {
	for _, col := range recordColumns {
		if col == fieldID {
			return true
		}
	}
	return false
}
