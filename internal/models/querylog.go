// internal/models/querylog.go
package models

import "time"

// LogSource identifies which surface triggered a query execution.
type LogSource string

const (
	LogSourceAdvancedSearch LogSource = "advanced_search"
	LogSourceFilter         LogSource = "filter"
	LogSourceSavedQuery     LogSource = "saved_query"
)

// QueryLogEntry is one append-only record of a query execution. Entries are
// never mutated and expire 30 days after ExecutedAt.
type QueryLogEntry struct {
	ID          string        `json:"id"`
	QueryID     string        `json:"queryId,omitempty"`
	QueryTitle  string        `json:"queryTitle"`
	ExecutedAt  time.Time     `json:"executedAt"`
	Source      LogSource     `json:"queryType"`
	Criteria    CriteriaModel `json:"criteriaSnapshot,omitempty"`
	ResultCount *int64        `json:"resultCount,omitempty"`
}
