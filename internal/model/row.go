package model

import (
	"fmt"
	"sort"
)

// Column names written by the record parser and table builder.
const (
	ColID              = "id"
	ColName            = "name"
	ColBaseName        = "base_name"
	ColDisplayName     = "display_name"
	ColIsInst          = "is_inst"
	ColNumFeatures     = "num_features"
	ColUsesAllFeatures = "uses_all_features"
	ColPredictionsPath = "predictions_path"
	ColResultsFile     = "results_file"
	ColRunHash         = "run_hash"

	// ConfigPrefix is prepended to every hoisted config key.
	ConfigPrefix = "config_"

	ColTaskName             = ConfigPrefix + "task_name"
	ColNumericRiskPrompting = ConfigPrefix + "numeric_risk_prompting"
	ColFeatureSubset        = ConfigPrefix + "feature_subset"
)

// Row is one flat record of the aggregated table. Values are scalars
// (string, bool, numbers), scalar lists, or nil; never nested maps.
type Row map[string]any

// ID returns the row identifier, or "" when none was assigned.
func (r Row) ID() string {
	s, _ := r[ColID].(string)
	return s
}

// String returns the value at key formatted as a string.
func (r Row) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Bool returns the value at key as a bool; non-bool values report false.
func (r Row) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Int returns the value at key as an int. JSON numbers decode as float64,
// so both are accepted.
func (r Row) Int(key string) (int, bool) {
	switch v := r[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Keys returns the row's column names in sorted order.
func (r Row) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
