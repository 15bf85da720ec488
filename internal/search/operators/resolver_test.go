// internal/search/operators/resolver_test.go
package operators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "trial-search/internal/common/errors"
	"trial-search/internal/models"
	"trial-search/internal/search/fields"
)

// ==========================
// Test Helper Functions
// ==========================

func testRegistry() *fields.Registry {
	return fields.NewRegistry([]models.FieldDescriptor{
		{ID: "trial_id", Type: models.SemanticIdentifier},
		{ID: "protocol_title", Type: models.SemanticText},
		{ID: "status", Type: models.SemanticDropdown},
		{ID: "enrollment_count", Type: models.SemanticNumber},
		{ID: "start_date", Type: models.SemanticDate},
		{ID: "summary", Type: models.SemanticText, ContainsOnly: true},
		{ID: "is_randomized", Type: models.SemanticBinary},
		// Binary wins over contains-only when both are set.
		{ID: "odd_flag", Type: models.SemanticBinary, ContainsOnly: true},
	})
}

// ==========================
// Resolution Tests
// ==========================

func TestResolver_Resolve(t *testing.T) {
	resolver := NewResolver(testRegistry())

	tests := []struct {
		name     string
		fieldID  string
		expected []Operator
	}{
		{
			name:     "binary field gets is and is-not only",
			fieldID:  "is_randomized",
			expected: []Operator{OpIs, OpIsNot},
		},
		{
			name:     "contains-only prose field gets contains pair",
			fieldID:  "summary",
			expected: []Operator{OpContains, OpNotContains},
		},
		{
			name:     "identifier field gets exact match plus contains",
			fieldID:  "trial_id",
			expected: []Operator{OpIs, OpIsNot, OpContains},
		},
		{
			name:     "number field gets the comparison set",
			fieldID:  "enrollment_count",
			expected: []Operator{OpEq, OpNe, OpGt, OpGte, OpLt, OpLte},
		},
		{
			name:     "date field gets equality and range",
			fieldID:  "start_date",
			expected: []Operator{OpIs, OpIsNot, OpGt, OpGte, OpLt, OpLte},
		},
		{
			name:     "short text falls through to the default set",
			fieldID:  "protocol_title",
			expected: []Operator{OpContains, OpIs, OpIsNot},
		},
		{
			name:     "dropdown falls through to the default set",
			fieldID:  "status",
			expected: []Operator{OpContains, OpIs, OpIsNot},
		},
		{
			name:     "binary takes precedence over contains-only",
			fieldID:  "odd_flag",
			expected: []Operator{OpIs, OpIsNot},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops, err := resolver.Resolve(tt.fieldID)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ops)
		})
	}
}

func TestResolver_Resolve_UnknownField(t *testing.T) {
	resolver := NewResolver(testRegistry())

	_, err := resolver.Resolve("no_such_field")
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeUnknownField, stderrors.CodeOf(err))
}

func TestResolver_Default_IsFirstResolved(t *testing.T) {
	resolver := NewResolver(testRegistry())

	for _, field := range testRegistry().All() {
		ops, err := resolver.Resolve(field.ID)
		require.NoError(t, err)

		def, err := resolver.Default(field.ID)
		require.NoError(t, err)
		assert.Equal(t, ops[0], def, "field %s", field.ID)
	}
}

func TestResolver_Valid(t *testing.T) {
	resolver := NewResolver(testRegistry())

	assert.True(t, resolver.Valid("enrollment_count", OpGte))
	assert.False(t, resolver.Valid("enrollment_count", OpContains))
	assert.False(t, resolver.Valid("is_randomized", OpContains))
	assert.False(t, resolver.Valid("summary", OpIs))
	assert.False(t, resolver.Valid("no_such_field", OpIs))
}

func TestResolver_Resolve_ReturnsCopy(t *testing.T) {
	resolver := NewResolver(testRegistry())

	ops, err := resolver.Resolve("status")
	require.NoError(t, err)
	ops[0] = Operator("mutated")

	again, err := resolver.Resolve("status")
	require.NoError(t, err)
	assert.Equal(t, OpContains, again[0])
}
