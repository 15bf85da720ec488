package server

import "trial-search/internal/common/validation"

func criterionProperty() validation.Property {
	return validation.Property{
		Type: "object",
		Properties: map[string]validation.Property{
			"id":         {Type: "string"},
			"field":      {Type: "string", MinLength: intPtr(1)},
			"operator":   {Type: "string", MinLength: intPtr(1)},
			"connective": {Type: "string", Enum: []string{"AND", "OR"}},
		},
		Required: []string{"field", "operator"},
	}
}

// saveQuerySchema validates the save-query payload before it reaches the
// persistence service.
func saveQuerySchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"title":       {Type: "string", MinLength: intPtr(1), MaxLength: intPtr(200)},
			"description": {Type: "string", MaxLength: intPtr(2000)},
			"queryType":   {Type: "string", MinLength: intPtr(1)},
			"editingId":   {Type: "string"},
			"criteria": {
				Type:  "array",
				Items: func() *validation.Property { p := criterionProperty(); return &p }(),
			},
		},
		Required:             []string{"title", "queryType", "criteria"},
		AdditionalProperties: false,
	}
}

// runQuerySchema validates the run payload.
func runQuerySchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"criteria": {
				Type:  "array",
				Items: func() *validation.Property { p := criterionProperty(); return &p }(),
			},
			"limit":      {Type: "integer", Minimum: floatPtr(1)},
			"queryId":    {Type: "string"},
			"queryTitle": {Type: "string"},
			"queryType":  {Type: "string", Enum: []string{"advanced_search", "filter", "saved_query"}},
		},
		Required:             []string{"criteria"},
		AdditionalProperties: false,
	}
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
