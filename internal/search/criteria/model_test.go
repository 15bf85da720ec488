// internal/search/criteria/model_test.go
package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "trial-search/internal/common/errors"
	"trial-search/internal/models"
	"trial-search/internal/search/fields"
	"trial-search/internal/search/operators"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestEditor() *Editor {
	registry := fields.Default()
	return NewEditor(registry, operators.NewResolver(registry))
}

// ==========================
// Row Mutation Tests
// ==========================

func TestEditor_NewModel_StartsWithOneEmptyRow(t *testing.T) {
	editor := newTestEditor()

	m := editor.NewModel()

	require.Len(t, m, 1)
	assert.NotEmpty(t, m[0].ID)
	assert.Empty(t, m[0].Field)
	assert.Empty(t, m[0].Operator)
	assert.Equal(t, models.ConnectiveAnd, m[0].Connective)
}

func TestEditor_AddRow_DoesNotMutateInput(t *testing.T) {
	editor := newTestEditor()
	m := editor.NewModel()

	out := editor.AddRow(m)

	assert.Len(t, m, 1)
	require.Len(t, out, 2)
	assert.NotEqual(t, out[0].ID, out[1].ID)
}

func TestEditor_RemoveRow(t *testing.T) {
	editor := newTestEditor()
	m := editor.AddRow(editor.NewModel())

	out := editor.RemoveRow(m, m[0].ID)

	require.Len(t, out, 1)
	assert.Equal(t, m[1].ID, out[0].ID)

	// Removing the last row is allowed and leaves the model empty.
	out = editor.RemoveRow(out, out[0].ID)
	assert.Empty(t, out)
}

func TestEditor_UpdateField_ResetsOperatorAndValue(t *testing.T) {
	editor := newTestEditor()
	m := editor.NewModel()

	m, err := editor.UpdateField(m, m[0].ID, "protocol_title")
	require.NoError(t, err)
	m, err = editor.UpdateValue(m, m[0].ID, models.ScalarValue("HER2"))
	require.NoError(t, err)

	// Switching to a number field must not keep "contains" or the old value.
	m, err = editor.UpdateField(m, m[0].ID, "enrollment_count")
	require.NoError(t, err)

	assert.Equal(t, "enrollment_count", m[0].Field)
	assert.Equal(t, string(operators.OpEq), m[0].Operator)
	assert.True(t, m[0].Value.IsEmpty())
}

func TestEditor_UpdateField_UnknownField(t *testing.T) {
	editor := newTestEditor()
	m := editor.NewModel()

	_, err := editor.UpdateField(m, m[0].ID, "no_such_field")
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeUnknownField, stderrors.CodeOf(err))
}

func TestEditor_UpdateOperator_RejectsOutsideResolvedSet(t *testing.T) {
	editor := newTestEditor()
	m := editor.NewModel()

	m, err := editor.UpdateField(m, m[0].ID, "is_randomized")
	require.NoError(t, err)

	_, err = editor.UpdateOperator(m, m[0].ID, operators.OpContains)
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeInvalidOperator, stderrors.CodeOf(err))

	m, err = editor.UpdateOperator(m, m[0].ID, operators.OpIsNot)
	require.NoError(t, err)
	assert.Equal(t, string(operators.OpIsNot), m[0].Operator)
}

func TestEditor_UpdateValue_ListOnlyOnMultiSelect(t *testing.T) {
	editor := newTestEditor()

	m := editor.NewModel()
	m, err := editor.UpdateField(m, m[0].ID, "therapeutic_area")
	require.NoError(t, err)

	m, err = editor.UpdateValue(m, m[0].ID, models.ListValue("oncology", "cardiology"))
	require.NoError(t, err)
	assert.Equal(t, []string{"oncology", "cardiology"}, m[0].Value.Values())

	// A single-select dropdown rejects list values.
	m2 := editor.NewModel()
	m2, err = editor.UpdateField(m2, m2[0].ID, "status")
	require.NoError(t, err)

	_, err = editor.UpdateValue(m2, m2[0].ID, models.ListValue("open", "completed"))
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeValidationFailed, stderrors.CodeOf(err))
}

func TestEditor_UpdateConnective(t *testing.T) {
	editor := newTestEditor()
	m := editor.NewModel()

	m, err := editor.UpdateConnective(m, m[0].ID, models.ConnectiveOr)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectiveOr, m[0].Connective)

	_, err = editor.UpdateConnective(m, m[0].ID, models.Connective("XOR"))
	require.Error(t, err)
}

func TestEditor_MutateMissingRow(t *testing.T) {
	editor := newTestEditor()
	m := editor.NewModel()

	_, err := editor.UpdateField(m, "missing-row-id", "status")
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeValidationFailed, stderrors.CodeOf(err))
}

// ==========================
// Normalization Tests
// ==========================

func TestNormalize_DropsIncompleteRows(t *testing.T) {
	m := models.CriteriaModel{
		{ID: "1", Field: "status", Operator: "is", Value: models.ScalarValue("open"), Connective: models.ConnectiveOr},
		{ID: "2", Field: "", Operator: "is", Value: models.ScalarValue("something")},
		{ID: "3", Field: "sponsor", Operator: "contains", Value: models.ScalarValue("  ")},
		{ID: "4", Field: "therapeutic_area", Operator: "is", Value: models.ListValue(" ", "")},
	}

	out := Normalize(m)

	require.Len(t, out, 1)
	assert.Equal(t, "1", out[0].ID)
	// The surviving last row's connective is reset since nothing follows.
	assert.Equal(t, models.ConnectiveAnd, out[0].Connective)
}

func TestNormalize_KeepsInteriorConnectives(t *testing.T) {
	m := models.CriteriaModel{
		{ID: "1", Field: "status", Operator: "is", Value: models.ScalarValue("open"), Connective: models.ConnectiveOr},
		{ID: "2", Field: "country", Operator: "is", Value: models.ScalarValue("Germany"), Connective: models.ConnectiveOr},
	}

	out := Normalize(m)

	require.Len(t, out, 2)
	assert.Equal(t, models.ConnectiveOr, out[0].Connective)
	assert.Equal(t, models.ConnectiveAnd, out[1].Connective)
}

func TestNormalize_Empty(t *testing.T) {
	assert.Empty(t, Normalize(nil))
	assert.Empty(t, Normalize(models.CriteriaModel{{ID: "1"}}))
}
