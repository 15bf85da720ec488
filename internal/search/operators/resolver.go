// Package operators resolves the valid comparison operators for a search
// field from its catalog metadata. Resolution is a pure function of the
// field descriptor; the first operator in the resolved list is the default
// a fresh criterion row starts with.
package operators

import (
	stderrors "trial-search/internal/common/errors"
	"trial-search/internal/models"
	"trial-search/internal/search/fields"
)

// Operator is a comparison operator identifier as it appears on the wire.
type Operator string

const (
	OpIs          Operator = "is"
	OpIsNot       Operator = "is-not"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not-contains"
	OpEq          Operator = "="
	OpNe          Operator = "!="
	OpGt          Operator = ">"
	OpGte         Operator = ">="
	OpLt          Operator = "<"
	OpLte         Operator = "<="
)

var (
	binaryOps       = []Operator{OpIs, OpIsNot}
	containsOnlyOps = []Operator{OpContains, OpNotContains}
	identifierOps   = []Operator{OpIs, OpIsNot, OpContains}
	numberOps       = []Operator{OpEq, OpNe, OpGt, OpGte, OpLt, OpLte}
	dateOps         = []Operator{OpIs, OpIsNot, OpGt, OpGte, OpLt, OpLte}
	defaultOps      = []Operator{OpContains, OpIs, OpIsNot}
)

// Resolver derives operator lists from a field registry.
type Resolver struct {
	registry *fields.Registry
}

func NewResolver(registry *fields.Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Resolve returns the ordered operator list for a field. Precedence, first
// match wins: binary, contains-only prose, identifier, number, date, then
// the short-text/dropdown default.
func (r *Resolver) Resolve(fieldID string) ([]Operator, error) {
	field, ok := r.registry.Lookup(fieldID)
	if !ok {
		return nil, stderrors.NewUnknownFieldError(fieldID)
	}
	return resolveForField(field), nil
}

// Default returns the operator a fresh criterion row on this field starts
// with.
func (r *Resolver) Default(fieldID string) (Operator, error) {
	ops, err := r.Resolve(fieldID)
	if err != nil {
		return "", err
	}
	return ops[0], nil
}

// Valid reports whether op is a member of the resolved set for fieldID.
func (r *Resolver) Valid(fieldID string, op Operator) bool {
	ops, err := r.Resolve(fieldID)
	if err != nil {
		return false
	}
	for _, candidate := range ops {
		if candidate == op {
			return true
		}
	}
	return false
}

func resolveForField(field models.FieldDescriptor) []Operator {
	switch {
	case field.Type == models.SemanticBinary:
		return clone(binaryOps)
	case field.ContainsOnly:
		return clone(containsOnlyOps)
	case field.Type == models.SemanticIdentifier:
		return clone(identifierOps)
	case field.Type == models.SemanticNumber:
		return clone(numberOps)
	case field.Type == models.SemanticDate:
		return clone(dateOps)
	default:
		return clone(defaultOps)
	}
}

func clone(ops []Operator) []Operator {
	out := make([]Operator, len(ops))
	copy(out, ops)
	return out
}
