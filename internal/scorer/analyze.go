package scorer

import (
	"context"
	"math/rand/v2"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/bwilder0/folktexts/internal/config"
	"github.com/bwilder0/folktexts/internal/model"
	"github.com/bwilder0/folktexts/internal/table"
)

// Analyzer computes ThresholdStats for prediction files.
type Analyzer struct {
	SampleSize int
	Seed       uint64
}

// NewAnalyzer creates an Analyzer from the analysis settings.
func NewAnalyzer(cfg config.AnalysisConfig) *Analyzer {
	return &Analyzer{SampleSize: cfg.SampleSize, Seed: cfg.Seed}
}

// Subsample draws min(SampleSize, n) samples without replacement. The draw
// depends only on the seed and n, so repeated calls agree.
func (a *Analyzer) Subsample(p Predictions) Predictions {
	n := p.Len()
	k := min(a.SampleSize, n)
	if k == n {
		return p
	}

	rng := rand.New(rand.NewPCG(a.Seed, a.Seed))
	idx := rng.Perm(n)[:k]

	out := Predictions{Scores: make([]float64, k), Labels: make([]bool, k)}
	for i, j := range idx {
		out.Scores[i] = p.Scores[j]
		out.Labels[i] = p.Labels[j]
	}
	return out
}

// Analyze fits a threshold on the subsample and on the full sample, scores
// both on the full sample, and summarizes the score distribution.
func (a *Analyzer) Analyze(p Predictions) (model.ThresholdStats, error) {
	if a.SampleSize <= 0 {
		return model.ThresholdStats{}, eris.Errorf("scorer: sample size must be positive, got %d", a.SampleSize)
	}

	sub := a.Subsample(p)
	fit, err := FitThreshold(sub.Scores, sub.Labels)
	if err != nil {
		return model.ThresholdStats{}, eris.Wrap(err, "scorer: fit on subsample")
	}
	opt, err := FitThreshold(p.Scores, p.Labels)
	if err != nil {
		return model.ThresholdStats{}, eris.Wrap(err, "scorer: fit on full sample")
	}

	fitAcc, err := Accuracy(p.Scores, p.Labels, fit)
	if err != nil {
		return model.ThresholdStats{}, err
	}
	optAcc, err := Accuracy(p.Scores, p.Labels, opt)
	if err != nil {
		return model.ThresholdStats{}, err
	}

	mean, std := stat.MeanStdDev(p.Scores, nil)
	return model.ThresholdStats{
		FitThreshold:             fit,
		FitThresholdAccuracy:     fitAcc,
		OptimalThreshold:         opt,
		OptimalThresholdAccuracy: optAcc,
		ScoreStdev:               std,
		ScoreMean:                mean,
	}, nil
}

// AnalyzeRow loads the row's prediction file and analyzes it.
func (a *Analyzer) AnalyzeRow(ctx context.Context, row model.Row) (model.ThresholdStats, error) {
	path := row.String(model.ColPredictionsPath)
	if path == "" {
		return model.ThresholdStats{}, ErrNoPredictionsPath
	}
	p, err := LoadPredictions(ctx, path)
	if err != nil {
		return model.ThresholdStats{}, err
	}
	return a.Analyze(p)
}

// AnalyzeTable analyzes every row, keyed by row id. Rows whose prediction
// file is missing or unreadable are logged and left without stats. Only
// context cancellation aborts the pass.
func (a *Analyzer) AnalyzeTable(ctx context.Context, t *table.Table) (map[string]model.ThresholdStats, error) {
	stats := make(map[string]model.ThresholdStats, t.Len())
	for _, row := range t.Rows {
		if err := ctx.Err(); err != nil {
			return stats, eris.Wrap(err, "scorer: analyze table")
		}

		s, err := a.AnalyzeRow(ctx, row)
		if err != nil {
			if ctx.Err() != nil {
				return stats, eris.Wrap(ctx.Err(), "scorer: analyze table")
			}
			zap.L().Error("scorer: skipping row",
				zap.String("id", row.ID()),
				zap.String("predictions_path", row.String(model.ColPredictionsPath)),
				zap.Error(err),
			)
			continue
		}
		stats[row.ID()] = s
	}

	zap.L().Info("scorer: analyzed table",
		zap.Int("rows", t.Len()),
		zap.Int("scored", len(stats)),
	)
	return stats, nil
}
