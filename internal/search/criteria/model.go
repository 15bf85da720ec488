// Package criteria implements the in-memory search expression: ordered
// criterion rows mutated by add/remove/update operations. Mutations are
// free of persistence and rendering concerns so they can be tested in
// isolation.
package criteria

import (
	"github.com/google/uuid"

	stderrors "trial-search/internal/common/errors"
	"trial-search/internal/models"
	"trial-search/internal/search/fields"
	"trial-search/internal/search/operators"
)

// Editor applies row mutations against a field registry and operator
// resolver. All methods return a new model; inputs are never mutated.
type Editor struct {
	registry *fields.Registry
	resolver *operators.Resolver
}

func NewEditor(registry *fields.Registry, resolver *operators.Resolver) *Editor {
	return &Editor{registry: registry, resolver: resolver}
}

// NewModel returns the initial state: a single empty row. An empty row is
// never persisted as-is; Normalize drops it.
func (e *Editor) NewModel() models.CriteriaModel {
	return models.CriteriaModel{e.emptyRow()}
}

// AddRow appends a new row with no field selected and connective AND.
// There is no upper bound on row count.
func (e *Editor) AddRow(m models.CriteriaModel) models.CriteriaModel {
	out := m.Clone()
	return append(out, e.emptyRow())
}

// RemoveRow removes the row by id. Removing the last row leaves the model
// empty; re-seeding an empty row before rendering is the caller's job.
func (e *Editor) RemoveRow(m models.CriteriaModel, id string) models.CriteriaModel {
	out := make(models.CriteriaModel, 0, len(m))
	for _, row := range m.Clone() {
		if row.ID != id {
			out = append(out, row)
		}
	}
	return out
}

// UpdateField sets the row's field and resets operator and value: the
// previous operator may be semantically invalid for the new field type.
func (e *Editor) UpdateField(m models.CriteriaModel, id, fieldID string) (models.CriteriaModel, error) {
	if _, ok := e.registry.Lookup(fieldID); !ok {
		return nil, stderrors.NewUnknownFieldError(fieldID)
	}
	defaultOp, err := e.resolver.Default(fieldID)
	if err != nil {
		return nil, err
	}

	return e.mutateRow(m, id, func(row *models.SearchCriterion) error {
		row.Field = fieldID
		row.Operator = string(defaultOp)
		row.Value = models.CriterionValue{}
		return nil
	})
}

// UpdateOperator sets the row's operator, rejecting operators outside the
// resolved set for the row's field.
func (e *Editor) UpdateOperator(m models.CriteriaModel, id string, op operators.Operator) (models.CriteriaModel, error) {
	return e.mutateRow(m, id, func(row *models.SearchCriterion) error {
		if !e.resolver.Valid(row.Field, op) {
			return stderrors.NewInvalidOperatorError(row.Field, string(op))
		}
		row.Operator = string(op)
		return nil
	})
}

// UpdateValue sets the row's value. List values are accepted only on
// multi-select dropdown fields.
func (e *Editor) UpdateValue(m models.CriteriaModel, id string, value models.CriterionValue) (models.CriteriaModel, error) {
	return e.mutateRow(m, id, func(row *models.SearchCriterion) error {
		if value.IsList {
			field, ok := e.registry.Lookup(row.Field)
			if !ok {
				return stderrors.NewUnknownFieldError(row.Field)
			}
			if field.Type != models.SemanticDropdown || !field.MultiSelect {
				return stderrors.NewValidationFailedError(
					"list values are only accepted on multi-select dropdown fields")
			}
		}
		row.Value = value
		return nil
	})
}

// UpdateConnective sets the AND/OR joiner between the row and the next one.
func (e *Editor) UpdateConnective(m models.CriteriaModel, id string, connective models.Connective) (models.CriteriaModel, error) {
	return e.mutateRow(m, id, func(row *models.SearchCriterion) error {
		if connective != models.ConnectiveAnd && connective != models.ConnectiveOr {
			return stderrors.NewValidationFailedError("connective must be AND or OR")
		}
		row.Connective = connective
		return nil
	})
}

func (e *Editor) mutateRow(m models.CriteriaModel, id string, mutate func(*models.SearchCriterion) error) (models.CriteriaModel, error) {
	out := m.Clone()
	for i := range out {
		if out[i].ID == id {
			if err := mutate(&out[i]); err != nil {
				return nil, err
			}
			return out, nil
		}
	}
	return nil, stderrors.NewValidationFailedError("criterion row not found: " + id)
}

func (e *Editor) emptyRow() models.SearchCriterion {
	return models.SearchCriterion{
		ID:         uuid.New().String(),
		Connective: models.ConnectiveAnd,
	}
}

// Normalize returns the rows that are complete enough to run or save: field
// selected and a non-empty value (for lists, at least one non-blank
// element). Incomplete rows are dropped silently, not rejected. The
// surviving last row's connective is reset to AND since nothing follows it.
func Normalize(m models.CriteriaModel) models.CriteriaModel {
	out := make(models.CriteriaModel, 0, len(m))
	for _, row := range m.Clone() {
		if row.Field == "" || row.Value.IsEmpty() {
			continue
		}
		out = append(out, row)
	}
	if len(out) > 0 {
		out[len(out)-1].Connective = models.ConnectiveAnd
	}
	return out
}
