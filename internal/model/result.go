// Package model defines the benchmark result records, flat table rows, and
// derived statistics shared by the aggregation pipeline.
package model

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// ResultRecord is one benchmark run's output as read from a
// results.bench-<hash>.json file. It is immutable after decoding.
type ResultRecord struct {
	// Metrics holds the top-level metric fields, keyed by name.
	Metrics map[string]any `json:"-"`
	// Config is the enumerated benchmark configuration.
	Config BenchmarkConfig `json:"config"`
	// ConfigExtra holds config keys that BenchmarkConfig does not name.
	ConfigExtra map[string]any `json:"-"`
	// PredictionsPath points at the per-sample prediction CSV, if any.
	PredictionsPath string `json:"predictions_path,omitempty"`
	// HasPlots records whether the file carried a plots block.
	HasPlots bool `json:"-"`
}

// BenchmarkConfig is the configuration block of a benchmark run.
// Optional fields are pointers so that absent keys stay absent in the row.
type BenchmarkConfig struct {
	ModelName            string         `json:"model_name"`
	TaskName             string         `json:"task_name"`
	NumericRiskPrompting bool           `json:"numeric_risk_prompting"`
	FeatureSubset        FeatureSubset  `json:"feature_subset"`
	FewShot              *int           `json:"few_shot,omitempty"`
	ChatPrompt           *bool          `json:"chat_prompt,omitempty"`
	ReuseFewShotExamples *bool          `json:"reuse_few_shot_examples,omitempty"`
	BatchSize            *int           `json:"batch_size,omitempty"`
	ContextSize          *int           `json:"context_size,omitempty"`
	CorrectOrderBias     *bool          `json:"correct_order_bias,omitempty"`
	PopulationFilter     map[string]any `json:"population_filter,omitempty"`
	Seed                 *int           `json:"seed,omitempty"`
}

// KnownConfigKeys lists the config keys decoded into BenchmarkConfig.
var KnownConfigKeys = map[string]bool{
	"model_name":              true,
	"task_name":               true,
	"numeric_risk_prompting":  true,
	"feature_subset":          true,
	"few_shot":                true,
	"chat_prompt":             true,
	"reuse_few_shot_examples": true,
	"batch_size":              true,
	"context_size":            true,
	"correct_order_bias":      true,
	"population_filter":       true,
	"seed":                    true,
}

// FeatureSubset is the list of input features a run used. A nil subset means
// the run used every feature.
type FeatureSubset []string

// UnmarshalJSON accepts null, a JSON array of strings, or a single string
// holding one or more comma-separated feature names.
func (f *FeatureSubset) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*f = nil
		return nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return eris.Wrap(err, "model: decode feature_subset list")
		}
		*f = list
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return eris.Wrap(err, "model: decode feature_subset")
	}
	var list []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			list = append(list, p)
		}
	}
	*f = list
	return nil
}

// AllFeatures reports whether the subset denotes every available feature.
func (f FeatureSubset) AllFeatures() bool {
	return len(f) == 0
}

// Count returns the number of features, or AllFeaturesSentinel when the run
// used every feature.
func (f FeatureSubset) Count() int {
	if f.AllFeatures() {
		return AllFeaturesSentinel
	}
	return len(f)
}

// String renders the subset for a flat row; all features render as "full".
func (f FeatureSubset) String() string {
	if f.AllFeatures() {
		return FullFeatureSubset
	}
	return strings.Join(f, ",")
}

const (
	// AllFeaturesSentinel is the feature count recorded for runs over every feature.
	AllFeaturesSentinel = -1
	// FullFeatureSubset is the feature_subset value recorded for such runs.
	FullFeatureSubset = "full"
)
