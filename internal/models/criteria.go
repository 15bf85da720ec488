// internal/models/criteria.go
package models

import (
	"encoding/json"
	"strings"
)

// SemanticType classifies a search field for operator resolution and value
// handling.
type SemanticType string

const (
	SemanticText       SemanticType = "text"
	SemanticNumber     SemanticType = "number"
	SemanticDate       SemanticType = "date"
	SemanticDropdown   SemanticType = "dropdown"
	SemanticBinary     SemanticType = "binary"
	SemanticIdentifier SemanticType = "identifier"
)

// FieldDescriptor describes one searchable trial-record field. The catalog
// is fixed per deployment and is not user-editable.
type FieldDescriptor struct {
	ID    string       `json:"id"`
	Label string       `json:"label"`
	Type  SemanticType `json:"semanticType"`
	// ContainsOnly marks long prose fields where exact-match operators are
	// meaningless (inclusion/exclusion criteria, narratives).
	ContainsOnly bool `json:"containsOnly,omitempty"`
	// MultiSelect allows list values on dropdown fields.
	MultiSelect bool `json:"multiSelect,omitempty"`
	// OptionCategory names the taxonomy category that supplies dropdown
	// options for this field.
	OptionCategory string `json:"optionCategory,omitempty"`
}

// Connective joins a criterion row with the next one. The connective on the
// last row is ignored.
type Connective string

const (
	ConnectiveAnd Connective = "AND"
	ConnectiveOr  Connective = "OR"
)

// CriterionValue holds either a scalar string or a list of strings and
// round-trips both JSON shapes.
type CriterionValue struct {
	Scalar string
	List   []string
	IsList bool
}

func ScalarValue(s string) CriterionValue {
	return CriterionValue{Scalar: s}
}

func ListValue(items ...string) CriterionValue {
	return CriterionValue{List: items, IsList: true}
}

// IsEmpty reports whether the value carries nothing meaningful: a blank
// scalar, or a list with no non-blank element.
func (v CriterionValue) IsEmpty() bool {
	if v.IsList {
		for _, item := range v.List {
			if strings.TrimSpace(item) != "" {
				return false
			}
		}
		return true
	}
	return strings.TrimSpace(v.Scalar) == ""
}

// Values returns the non-blank elements of the value, scalar or list.
func (v CriterionValue) Values() []string {
	if !v.IsList {
		if strings.TrimSpace(v.Scalar) == "" {
			return nil
		}
		return []string{v.Scalar}
	}
	out := make([]string, 0, len(v.List))
	for _, item := range v.List {
		if strings.TrimSpace(item) != "" {
			out = append(out, item)
		}
	}
	return out
}

// First returns the first non-blank element, or "".
func (v CriterionValue) First() string {
	vals := v.Values()
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

func (v CriterionValue) MarshalJSON() ([]byte, error) {
	if v.IsList {
		if v.List == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(v.List)
	}
	return json.Marshal(v.Scalar)
}

func (v *CriterionValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = CriterionValue{Scalar: s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*v = CriterionValue{List: list, IsList: true}
	return nil
}

// SearchCriterion is one field/operator/value/connective row of a search
// expression.
type SearchCriterion struct {
	ID         string         `json:"id"`
	Field      string         `json:"field"`
	Operator   string         `json:"operator"`
	Value      CriterionValue `json:"value"`
	Connective Connective     `json:"connective"`
}

// CriteriaModel is the ordered list of criterion rows composing a search
// expression. Rows are evaluated left to right with no precedence grouping.
type CriteriaModel []SearchCriterion

// Clone returns a deep copy.
func (m CriteriaModel) Clone() CriteriaModel {
	if m == nil {
		return nil
	}
	out := make(CriteriaModel, len(m))
	copy(out, m)
	for i := range out {
		if out[i].Value.IsList && out[i].Value.List != nil {
			list := make([]string, len(out[i].Value.List))
			copy(list, out[i].Value.List)
			out[i].Value.List = list
		}
	}
	return out
}
