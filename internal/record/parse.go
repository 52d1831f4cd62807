package record

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bwilder0/folktexts/internal/model"
)

// ErrNotFlat is returned when a parsed row still holds a nested mapping.
var ErrNotFlat = errors.New("record: row is not flat")

// flatSeparator joins the keys of nested mappings when they are flattened.
const flatSeparator = "_"

// nestedConfigKeys names the config fields that are expected to be mappings.
var nestedConfigKeys = map[string]bool{
	"population_filter": true,
}

// Parse flattens a result record into a table row. The record is not
// modified. Config fields are hoisted with the "config_" prefix, model-name
// variants and feature-count fields are derived, and the returned row is
// guaranteed to hold no nested mappings.
func Parse(rec *model.ResultRecord) (model.Row, error) {
	row := make(model.Row, len(rec.Metrics)+16)

	for _, key := range sortedKeys(rec.Metrics) {
		flattenInto(row, key, rec.Metrics[key], false)
	}

	for key, val := range configValues(rec.Config) {
		flattenInto(row, model.ConfigPrefix+key, val, nestedConfigKeys[key])
	}
	for _, key := range sortedKeys(rec.ConfigExtra) {
		flattenInto(row, model.ConfigPrefix+key, rec.ConfigExtra[key], false)
	}

	if rec.PredictionsPath != "" {
		row[model.ColPredictionsPath] = rec.PredictionsPath
	}

	name := ParseModelName(rec.Config.ModelName)
	base := BaseModelName(name)
	display := DisplayName(name)
	row[model.ColName] = name
	row[model.ColBaseName] = base
	row[model.ColDisplayName] = display
	row[model.ColIsInst] = IsInstructionTuned(name, base, display)

	numFeatures := rec.Config.FeatureSubset.Count()
	row[model.ColNumFeatures] = numFeatures
	row[model.ColUsesAllFeatures] = numFeatures == model.AllFeaturesSentinel

	if err := AssertFlat(row); err != nil {
		return nil, err
	}
	return row, nil
}

// AssertFlat fails with ErrNotFlat if any value of row is a mapping.
func AssertFlat(row model.Row) error {
	for key, val := range row {
		switch val.(type) {
		case map[string]any, map[string]string, model.Row:
			return eris.Wrapf(ErrNotFlat, "record: key %q holds %T", key, val)
		}
	}
	return nil
}

// configValues returns the present config fields keyed by their JSON names.
// A missing feature subset is rewritten to "full".
func configValues(c model.BenchmarkConfig) map[string]any {
	vals := map[string]any{
		"model_name":             c.ModelName,
		"task_name":              c.TaskName,
		"numeric_risk_prompting": c.NumericRiskPrompting,
		"feature_subset":         c.FeatureSubset.String(),
	}
	if c.FewShot != nil {
		vals["few_shot"] = *c.FewShot
	}
	if c.ChatPrompt != nil {
		vals["chat_prompt"] = *c.ChatPrompt
	}
	if c.ReuseFewShotExamples != nil {
		vals["reuse_few_shot_examples"] = *c.ReuseFewShotExamples
	}
	if c.BatchSize != nil {
		vals["batch_size"] = *c.BatchSize
	}
	if c.ContextSize != nil {
		vals["context_size"] = *c.ContextSize
	}
	if c.CorrectOrderBias != nil {
		vals["correct_order_bias"] = *c.CorrectOrderBias
	}
	if c.PopulationFilter != nil {
		vals["population_filter"] = c.PopulationFilter
	}
	if c.Seed != nil {
		vals["seed"] = *c.Seed
	}
	return vals
}

// flattenInto writes val under key, recursing into nested mappings with
// "_"-joined keys. Nested mappings under keys not marked as expected are
// logged, since the result schema does not name them.
func flattenInto(row model.Row, key string, val any, expectNested bool) {
	nested, ok := val.(map[string]any)
	if !ok {
		row[key] = val
		return
	}
	if !expectNested {
		zap.L().Warn("record: flattening unrecognized nested field",
			zap.String("key", key),
			zap.Int("entries", len(nested)),
		)
	}
	if len(nested) == 0 {
		row[key] = nil
		return
	}
	for _, k := range sortedKeys(nested) {
		flattenInto(row, fmt.Sprintf("%s%s%s", key, flatSeparator, k), nested[k], true)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
