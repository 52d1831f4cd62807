package model

// Columns added to a row by the score analyzer.
const (
	ColFitThreshold             = "fit_thresh_on_100"
	ColFitThresholdAccuracy     = "fit_thresh_accuracy"
	ColOptimalThreshold         = "optimal_thresh"
	ColOptimalThresholdAccuracy = "optimal_thresh_accuracy"
	ColScoreStdev               = "score_stdev"
	ColScoreMean                = "score_mean"
)

// StatsColumns lists the analyzer columns in export order.
var StatsColumns = []string{
	ColFitThreshold,
	ColFitThresholdAccuracy,
	ColOptimalThreshold,
	ColOptimalThresholdAccuracy,
	ColScoreStdev,
	ColScoreMean,
}

// ThresholdStats holds the per-row statistics computed from a prediction file.
type ThresholdStats struct {
	FitThreshold             float64 `json:"fit_thresh_on_100"`
	FitThresholdAccuracy     float64 `json:"fit_thresh_accuracy"`
	OptimalThreshold         float64 `json:"optimal_thresh"`
	OptimalThresholdAccuracy float64 `json:"optimal_thresh_accuracy"`
	ScoreStdev               float64 `json:"score_stdev"`
	ScoreMean                float64 `json:"score_mean"`
}

// Columns returns the stats keyed by their table column names.
func (s ThresholdStats) Columns() map[string]any {
	return map[string]any{
		ColFitThreshold:             s.FitThreshold,
		ColFitThresholdAccuracy:     s.FitThresholdAccuracy,
		ColOptimalThreshold:         s.OptimalThreshold,
		ColOptimalThresholdAccuracy: s.OptimalThresholdAccuracy,
		ColScoreStdev:               s.ScoreStdev,
		ColScoreMean:                s.ScoreMean,
	}
}
