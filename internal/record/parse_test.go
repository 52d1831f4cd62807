package record

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bwilder0/folktexts/internal/model"
)

const sampleResult = `{
	"accuracy": 0.78,
	"ece": 0.041,
	"roc_auc": 0.86,
	"n_samples": 1000,
	"plots": {"calibration_curve": "/tmp/plot.pdf"},
	"predictions_path": "preds.csv",
	"config": {
		"model_name": "meta-llama/Meta-Llama-3-8B-Instruct",
		"task_name": "ACSIncome",
		"numeric_risk_prompting": false,
		"feature_subset": ["AGEP", "SCHL"],
		"few_shot": null,
		"batch_size": 16,
		"population_filter": {"ST": "06", "range": {"lo": 1, "hi": 5}},
		"custom_flag": "x"
	}
}`

func TestDecode(t *testing.T) {
	rec, err := Decode(strings.NewReader(sampleResult))
	require.NoError(t, err)

	assert.True(t, rec.HasPlots)
	assert.Equal(t, "preds.csv", rec.PredictionsPath)
	assert.Equal(t, "ACSIncome", rec.Config.TaskName)
	assert.Equal(t, model.FeatureSubset{"AGEP", "SCHL"}, rec.Config.FeatureSubset)
	assert.Nil(t, rec.Config.FewShot)
	require.NotNil(t, rec.Config.BatchSize)
	assert.Equal(t, 16, *rec.Config.BatchSize)
	assert.Equal(t, map[string]any{"custom_flag": "x"}, rec.ConfigExtra)
	assert.InDelta(t, 0.78, rec.Metrics["accuracy"], 1e-9)
	assert.NotContains(t, rec.Metrics, "plots")
	assert.NotContains(t, rec.Metrics, "config")
}

func TestDecode_RequiresModelAndTask(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"config": {"task_name": "ACSIncome"}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model_name")

	_, err = Decode(strings.NewReader(`{"config": {"model_name": "m"}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task_name")
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"config": `))
	assert.Error(t, err)
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.bench-1.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleResult), 0o644))

	rec, err := DecodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, "meta-llama/Meta-Llama-3-8B-Instruct", rec.Config.ModelName)
}

func TestParse_FlattensAndDerives(t *testing.T) {
	rec, err := Decode(strings.NewReader(sampleResult))
	require.NoError(t, err)

	row, err := Parse(rec)
	require.NoError(t, err)

	assert.NotContains(t, row, "plots")
	assert.NotContains(t, row, "config")
	assert.Equal(t, "ACSIncome", row[model.ColTaskName])
	assert.Equal(t, false, row[model.ColNumericRiskPrompting])
	assert.Equal(t, "AGEP,SCHL", row[model.ColFeatureSubset])
	assert.Equal(t, 16, row["config_batch_size"])
	assert.NotContains(t, row, "config_few_shot")
	assert.Equal(t, "x", row["config_custom_flag"])
	assert.Equal(t, "06", row["config_population_filter_ST"])
	assert.Equal(t, float64(1), row["config_population_filter_range_lo"])
	assert.Equal(t, float64(5), row["config_population_filter_range_hi"])

	assert.Equal(t, "Meta-Llama-3-8B-Instruct", row[model.ColName])
	assert.Equal(t, "Meta-Llama-3-8B", row[model.ColBaseName])
	assert.Equal(t, "Meta Llama 3 8B (it)", row[model.ColDisplayName])
	assert.Equal(t, true, row[model.ColIsInst])
	assert.Equal(t, 2, row[model.ColNumFeatures])
	assert.Equal(t, false, row[model.ColUsesAllFeatures])
	assert.Equal(t, "preds.csv", row[model.ColPredictionsPath])

	require.NoError(t, AssertFlat(row))
}

func TestParse_NullFeatureSubset(t *testing.T) {
	rec, err := Decode(strings.NewReader(`{
		"accuracy": 0.7,
		"config": {
			"model_name": "gemma-2-9b",
			"task_name": "ACSEmployment",
			"numeric_risk_prompting": true,
			"feature_subset": null
		}
	}`))
	require.NoError(t, err)

	row, err := Parse(rec)
	require.NoError(t, err)

	assert.Equal(t, -1, row[model.ColNumFeatures])
	assert.Equal(t, true, row[model.ColUsesAllFeatures])
	assert.Equal(t, "full", row[model.ColFeatureSubset])
	assert.Equal(t, false, row[model.ColIsInst])
	assert.Equal(t, row[model.ColName], row[model.ColBaseName])
	assert.NotContains(t, row, model.ColPredictionsPath)
}

func TestParse_MissingFeatureSubsetKey(t *testing.T) {
	rec, err := Decode(strings.NewReader(`{"config": {"model_name": "m", "task_name": "t"}}`))
	require.NoError(t, err)

	row, err := Parse(rec)
	require.NoError(t, err)
	assert.Equal(t, "full", row[model.ColFeatureSubset])
	assert.Equal(t, -1, row[model.ColNumFeatures])
}

func TestParse_DoesNotMutateRecord(t *testing.T) {
	rec, err := Decode(strings.NewReader(sampleResult))
	require.NoError(t, err)

	metricsBefore := len(rec.Metrics)
	filterBefore := len(rec.Config.PopulationFilter)

	_, err = Parse(rec)
	require.NoError(t, err)

	assert.Len(t, rec.Metrics, metricsBefore)
	assert.Len(t, rec.Config.PopulationFilter, filterBefore)
	assert.True(t, rec.HasPlots)
	assert.NotContains(t, rec.Metrics, model.ColName)
}

func TestParse_NestedMetricsAreFlattened(t *testing.T) {
	rec := &model.ResultRecord{
		Metrics: map[string]any{
			"accuracy": 0.5,
			"by_group": map[string]any{
				"female": map[string]any{"tpr": 0.6},
				"male":   0.4,
			},
			"empty": map[string]any{},
		},
		Config: model.BenchmarkConfig{ModelName: "m", TaskName: "t"},
	}

	row, err := Parse(rec)
	require.NoError(t, err)

	assert.Equal(t, 0.6, row["by_group_female_tpr"])
	assert.Equal(t, 0.4, row["by_group_male"])
	assert.Contains(t, row, "empty")
	assert.Nil(t, row["empty"])
	assert.NoError(t, AssertFlat(row))
}

func TestAssertFlat(t *testing.T) {
	assert.NoError(t, AssertFlat(model.Row{"a": 1, "b": []any{1, 2}, "c": nil}))

	err := AssertFlat(model.Row{"a": map[string]any{"x": 1}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFlat)
}

func TestResolvePredictionsPath(t *testing.T) {
	dir := t.TempDir()
	resultFile := filepath.Join(dir, "run-a", "results.bench-1.json")
	dataDir := filepath.Join(dir, "data")

	existing := map[string]bool{
		filepath.Join(dir, "run-a", "local.csv"): true,
		filepath.Join(dataDir, "shared.csv"):     true,
	}
	exists := func(p string) bool { return existing[p] }

	assert.Equal(t, "", ResolvePredictionsPath("", resultFile, dataDir, exists))
	assert.Equal(t, "/abs/p.csv", ResolvePredictionsPath("/abs/p.csv", resultFile, dataDir, exists))
	assert.Equal(t, filepath.Join(dir, "run-a", "local.csv"), ResolvePredictionsPath("local.csv", resultFile, dataDir, exists))
	assert.Equal(t, filepath.Join(dataDir, "shared.csv"), ResolvePredictionsPath("shared.csv", resultFile, dataDir, exists))
	assert.Equal(t, filepath.Join(dir, "run-a", "gone.csv"), ResolvePredictionsPath("gone.csv", resultFile, dataDir, exists))
}
