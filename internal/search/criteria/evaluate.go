// internal/search/criteria/evaluate.go
package criteria

import (
	"strconv"
	"strings"
	"time"

	"trial-search/internal/models"
	"trial-search/internal/search/fields"
	"trial-search/internal/search/operators"
)

// Evaluator matches flattened records against a criteria model in memory.
// Rows combine strictly left to right: A AND B OR C evaluates as
// (A AND B) OR C, never A AND (B OR C).
type Evaluator struct {
	registry *fields.Registry
}

func NewEvaluator(registry *fields.Registry) *Evaluator {
	return &Evaluator{registry: registry}
}

// Matches evaluates the normalized criteria against one record. Empty
// criteria match nothing.
func (e *Evaluator) Matches(record map[string]string, m models.CriteriaModel) bool {
	rows := Normalize(m)
	if len(rows) == 0 {
		return false
	}

	acc := e.rowMatches(record, rows[0])
	for i := 1; i < len(rows); i++ {
		current := e.rowMatches(record, rows[i])
		if rows[i-1].Connective == models.ConnectiveOr {
			acc = acc || current
		} else {
			acc = acc && current
		}
	}
	return acc
}

func (e *Evaluator) rowMatches(record map[string]string, row models.SearchCriterion) bool {
	field, ok := e.registry.Lookup(row.Field)
	if !ok {
		return false
	}

	recordValue := record[row.Field]
	op := operators.Operator(row.Operator)
	positive, negated := positiveForm(op)

	// Multi-select lists match when any element matches; negated operators
	// invert that, so no element may match.
	anyMatch := false
	for _, candidate := range row.Value.Values() {
		if compare(field, positive, recordValue, candidate) {
			anyMatch = true
			break
		}
	}

	if negated {
		return !anyMatch
	}
	return anyMatch
}

// positiveForm maps a negated operator to its positive counterpart.
func positiveForm(op operators.Operator) (operators.Operator, bool) {
	switch op {
	case operators.OpIsNot:
		return operators.OpIs, true
	case operators.OpNotContains:
		return operators.OpContains, true
	case operators.OpNe:
		return operators.OpEq, true
	default:
		return op, false
	}
}

func compare(field models.FieldDescriptor, op operators.Operator, recordValue, criterionValue string) bool {
	switch field.Type {
	case models.SemanticNumber:
		return compareNumber(op, recordValue, criterionValue)
	case models.SemanticDate:
		return compareDate(op, recordValue, criterionValue)
	default:
		return compareText(op, recordValue, criterionValue)
	}
}

func compareText(op operators.Operator, recordValue, criterionValue string) bool {
	have := fold(recordValue)
	want := fold(criterionValue)

	switch op {
	case operators.OpContains:
		return want != "" && strings.Contains(have, want)
	case operators.OpIs, operators.OpEq:
		return have == want
	default:
		return false
	}
}

func compareNumber(op operators.Operator, recordValue, criterionValue string) bool {
	have, err := strconv.ParseFloat(strings.TrimSpace(recordValue), 64)
	if err != nil {
		return false
	}
	want, err := strconv.ParseFloat(strings.TrimSpace(criterionValue), 64)
	if err != nil {
		return false
	}

	switch op {
	case operators.OpEq, operators.OpIs:
		return have == want
	case operators.OpGt:
		return have > want
	case operators.OpGte:
		return have >= want
	case operators.OpLt:
		return have < want
	case operators.OpLte:
		return have <= want
	default:
		return false
	}
}

func compareDate(op operators.Operator, recordValue, criterionValue string) bool {
	have, err := parseDate(recordValue)
	if err != nil {
		return false
	}
	want, err := parseDate(criterionValue)
	if err != nil {
		return false
	}

	switch op {
	case operators.OpIs, operators.OpEq:
		return have.Equal(want)
	case operators.OpGt:
		return have.After(want)
	case operators.OpGte:
		return !have.Before(want)
	case operators.OpLt:
		return have.Before(want)
	case operators.OpLte:
		return !have.After(want)
	default:
		return false
	}
}

// parseDate accepts date-only and RFC3339 values, truncating to the
// calendar date so time-of-day never affects a comparison.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
