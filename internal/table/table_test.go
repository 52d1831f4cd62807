package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bwilder0/folktexts/internal/model"
)

func parsedRow(name, display, task string, numFeatures int, numeric, inst bool) model.Row {
	return model.Row{
		model.ColName:                 name,
		model.ColDisplayName:          display,
		model.ColIsInst:               inst,
		model.ColNumFeatures:          numFeatures,
		model.ColTaskName:             task,
		model.ColNumericRiskPrompting: numeric,
		"accuracy":                    0.75,
	}
}

func TestRowID_Deterministic(t *testing.T) {
	a := RowID("gemma-2-9b", "ACSIncome", -1, false)
	b := RowID("gemma-2-9b", "ACSIncome", -1, false)
	assert.Equal(t, a, b)
	assert.Equal(t, "gemma-2-9b__ACSIncome__num-features--1__mc-prompt", a)

	assert.NotEqual(t, a, RowID("gemma-2-9b", "ACSIncome", -1, true))
	assert.NotEqual(t, a, RowID("gemma-2-9b", "ACSIncome", 3, false))
	assert.NotEqual(t, a, RowID("gemma-2-9b", "ACSEmployment", -1, false))
	assert.Equal(t, "m__t__num-features-3__num-prompt", RowID("m", "t", 3, true))
}

func TestRowIDFor_MissingFields(t *testing.T) {
	_, err := RowIDFor(model.Row{model.ColName: "m"})
	assert.Error(t, err)

	_, err = RowIDFor(model.Row{model.ColName: "m", model.ColTaskName: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), model.ColNumFeatures)
}

func TestBuild_AssignsIDsInGroupOrder(t *testing.T) {
	rows := map[string]model.Row{
		"b": parsedRow("m2", "M2", "t", -1, false, false),
		"a": parsedRow("m1", "M1", "t", 2, true, false),
	}

	tbl, err := Build(rows)
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())

	assert.Equal(t, "m1__t__num-features-2__num-prompt", tbl.Rows[0].ID())
	assert.Equal(t, "m2__t__num-features--1__mc-prompt", tbl.Rows[1].ID())

	// Input rows are not modified.
	assert.NotContains(t, rows["a"], model.ColID)
}

func TestBuild_RejectsIncompleteRow(t *testing.T) {
	_, err := Build(map[string]model.Row{"a": {model.ColName: "m"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "group a")
}

func TestDedup_DropsEquivalentRows(t *testing.T) {
	first := parsedRow("m", "M", "t", -1, false, false)
	first["run"] = "first"
	second := parsedRow("m", "M", "t", -1, false, false)
	second["run"] = "second"
	other := parsedRow("m", "M", "t", -1, true, false)

	tbl, err := Build(map[string]model.Row{"a": first, "b": second, "c": other})
	require.NoError(t, err)

	deduped := Dedup(tbl)
	require.Equal(t, 2, deduped.Len())
	assert.Equal(t, "first", deduped.Rows[0]["run"])
	assert.NoError(t, deduped.AssertUniqueIDs())
}

func TestDedup_IgnoresNonKeyColumns(t *testing.T) {
	a := parsedRow("m", "M", "t", 2, false, false)
	b := parsedRow("m", "M", "t", 2, false, false)
	b["accuracy"] = 0.1

	deduped := Dedup(&Table{Rows: []model.Row{a, b}})
	assert.Equal(t, 1, deduped.Len())
}

func TestDedup_Idempotent(t *testing.T) {
	tbl, err := Build(map[string]model.Row{
		"a": parsedRow("m", "M", "t", -1, false, false),
		"b": parsedRow("m", "M", "t", -1, false, false),
		"c": parsedRow("m-it", "M (it)", "t", -1, false, true),
		"d": parsedRow("m", "M", "t2", 3, true, false),
	})
	require.NoError(t, err)

	once := Dedup(tbl)
	twice := Dedup(once)
	assert.Equal(t, once, twice)
}

func TestDedup_InstructVersionsShareDisplayName(t *testing.T) {
	v1 := parsedRow("Mistral-7B-Instruct-v0.1", "Mistral 7B (it)", "t", -1, false, true)
	v2 := parsedRow("Mistral-7B-Instruct-v0.2", "Mistral 7B (it)", "t", -1, false, true)

	tbl, err := Build(map[string]model.Row{"a": v1, "b": v2})
	require.NoError(t, err)
	require.NotEqual(t, tbl.Rows[0].ID(), tbl.Rows[1].ID())

	deduped := Dedup(tbl)
	require.Equal(t, 1, deduped.Len())
	assert.Equal(t, "Mistral-7B-Instruct-v0.1", deduped.Rows[0].String(model.ColName))
}

func TestAssertUniqueIDs_Collision(t *testing.T) {
	// Same id, but display names differ so dedup keeps both.
	a := parsedRow("m", "M", "t", -1, false, false)
	b := parsedRow("m", "M v2", "t", -1, false, false)

	tbl, err := Build(map[string]model.Row{"a": a, "b": b})
	require.NoError(t, err)

	deduped := Dedup(tbl)
	require.Equal(t, 2, deduped.Len())

	err = deduped.AssertUniqueIDs()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestColumns_IDFirstThenSorted(t *testing.T) {
	tbl := &Table{Rows: []model.Row{
		{model.ColID: "x", "zeta": 1, "alpha": 2},
		{model.ColID: "y", "beta": 3, "zeta": 4},
	}}
	assert.Equal(t, []string{"id", "alpha", "beta", "zeta"}, tbl.Columns())
}

func TestColumns_Empty(t *testing.T) {
	assert.Equal(t, []string{"id"}, (&Table{}).Columns())
}
