// internal/models/savedquery.go
package models

import "time"

// SavedQuery is a persisted search expression. A saved query may live only
// in the local store, only in the remote store, or in both; dual writes are
// best effort with no synchronization guarantee.
type SavedQuery struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	QueryType   string        `json:"queryType"`
	Criteria    CriteriaModel `json:"criteriaSnapshot"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}
