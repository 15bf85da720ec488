// Package fields holds the static catalog of searchable trial-record
// fields. Every search and filter surface resolves field metadata through
// this one registry so the per-screen operator tables cannot drift.
package fields

import (
	"trial-search/internal/models"
)

// Registry maps field ids to their descriptors while preserving catalog
// order.
type Registry struct {
	fields []models.FieldDescriptor
	index  map[string]models.FieldDescriptor
}

// NewRegistry builds a registry from an ordered field list.
func NewRegistry(fields []models.FieldDescriptor) *Registry {
	index := make(map[string]models.FieldDescriptor, len(fields))
	for _, f := range fields {
		index[f.ID] = f
	}
	return &Registry{fields: fields, index: index}
}

// Default returns the built-in trial/drug record catalog.
func Default() *Registry {
	return NewRegistry(defaultCatalog())
}

// Lookup returns the descriptor for a field id.
func (r *Registry) Lookup(id string) (models.FieldDescriptor, bool) {
	f, ok := r.index[id]
	return f, ok
}

// All returns the catalog in stable order.
func (r *Registry) All() []models.FieldDescriptor {
	out := make([]models.FieldDescriptor, len(r.fields))
	copy(out, r.fields)
	return out
}

func defaultCatalog() []models.FieldDescriptor {
	return []models.FieldDescriptor{
		{ID: "trial_id", Label: "Trial ID", Type: models.SemanticIdentifier},
		{ID: "protocol_title", Label: "Protocol Title", Type: models.SemanticText},
		{ID: "trial_phase", Label: "Phase", Type: models.SemanticDropdown, OptionCategory: "trial_phase"},
		{ID: "status", Label: "Status", Type: models.SemanticDropdown, OptionCategory: "trial_status"},
		{ID: "sponsor", Label: "Sponsor", Type: models.SemanticText},
		{ID: "country", Label: "Country", Type: models.SemanticDropdown, OptionCategory: "country"},
		{ID: "therapeutic_area", Label: "Therapeutic Area", Type: models.SemanticDropdown, MultiSelect: true, OptionCategory: "therapeutic_area"},
		{ID: "enrollment_count", Label: "Enrollment Count", Type: models.SemanticNumber},
		{ID: "start_date", Label: "Start Date", Type: models.SemanticDate},
		{ID: "completion_date", Label: "Completion Date", Type: models.SemanticDate},
		{ID: "inclusion_criteria", Label: "Inclusion Criteria", Type: models.SemanticText, ContainsOnly: true},
		{ID: "exclusion_criteria", Label: "Exclusion Criteria", Type: models.SemanticText, ContainsOnly: true},
		{ID: "summary", Label: "Trial Summary", Type: models.SemanticText, ContainsOnly: true},
		{ID: "is_randomized", Label: "Randomized", Type: models.SemanticBinary},
		{ID: "has_adverse_events", Label: "Adverse Events Reported", Type: models.SemanticBinary},
		{ID: "principal_investigator", Label: "Principal Investigator", Type: models.SemanticText},
	}
}
