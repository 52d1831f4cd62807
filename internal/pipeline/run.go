// Package pipeline runs the aggregation end to end: discovery, parsing,
// table building, scoring, merging, and export.
package pipeline

import (
	"context"
	"os"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bwilder0/folktexts/internal/config"
	"github.com/bwilder0/folktexts/internal/discovery"
	"github.com/bwilder0/folktexts/internal/model"
	"github.com/bwilder0/folktexts/internal/record"
	"github.com/bwilder0/folktexts/internal/scorer"
	"github.com/bwilder0/folktexts/internal/table"
)

// Result summarizes one aggregation run.
type Result struct {
	RunID    uuid.UUID
	Files    int
	Table    *table.Table
	Scored   int
	Coverage table.CoverageReport
	Paths    []string
}

// Run aggregates every result file under cfg.Paths.ResultsDir, scores each
// row's predictions, and exports the merged table stamped with now.
func Run(ctx context.Context, cfg *config.Config, now time.Time) (*Result, error) {
	res := &Result{RunID: uuid.New()}
	log := zap.L().With(zap.String("run_id", res.RunID.String()))
	log.Info("pipeline: starting aggregation",
		zap.String("results_dir", cfg.Paths.ResultsDir),
		zap.String("output_dir", cfg.OutputDir()),
	)

	var tbl *table.Table
	err := phase(log, "build_table", func() error {
		var buildErr error
		tbl, res.Files, buildErr = BuildTable(ctx, cfg)
		return buildErr
	})
	if err != nil {
		return nil, err
	}

	var stats map[string]model.ThresholdStats
	err = phase(log, "score", func() error {
		var scoreErr error
		stats, scoreErr = scorer.NewAnalyzer(cfg.Analysis).AnalyzeTable(ctx, tbl)
		return scoreErr
	})
	if err != nil {
		return nil, err
	}
	res.Scored = len(stats)

	res.Table = table.Merge(tbl, stats)
	res.Coverage = table.Coverage(tbl)
	for _, gap := range res.Coverage.Gaps {
		log.Warn("pipeline: incomplete coverage", zap.String("gap", gap.String()))
	}

	err = phase(log, "export", func() error {
		var exportErr error
		res.Paths, exportErr = table.ExportTimestamped(
			res.Table,
			cfg.OutputDir(),
			cfg.Export.FilePrefix,
			cfg.Export.TimestampLayout,
			now,
			cfg.Export.XLSX,
		)
		return exportErr
	})
	if err != nil {
		return nil, err
	}

	log.Info("pipeline: aggregation complete",
		zap.Int("files", res.Files),
		zap.Int("rows", res.Table.Len()),
		zap.Int("scored", res.Scored),
		zap.Strings("paths", res.Paths),
	)
	return res, nil
}

// BuildTable discovers, parses, and deduplicates result files into a table
// with unique row ids. It returns the table and the number of files read.
func BuildTable(ctx context.Context, cfg *config.Config) (*table.Table, int, error) {
	pattern, err := regexp.Compile(cfg.Analysis.FilePattern)
	if err != nil {
		return nil, 0, eris.Wrap(err, "pipeline: compile file pattern")
	}

	paths, err := discovery.Collect(cfg.Paths.ResultsDir, pattern)
	if err != nil {
		return nil, 0, err
	}

	rows := make(map[string]model.Row, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, 0, eris.Wrap(err, "pipeline: build table")
		}

		row, err := loadRow(path, pattern, cfg.Paths.DataDir)
		if err != nil {
			return nil, 0, err
		}

		key := discovery.GroupKey(path)
		if prev, ok := rows[key]; ok {
			zap.L().Warn("pipeline: group key collision, keeping later file",
				zap.String("group", key),
				zap.String("dropped", prev.String(model.ColResultsFile)),
				zap.String("kept", path),
			)
		}
		rows[key] = row
	}

	tbl, err := table.Build(rows)
	if err != nil {
		return nil, 0, eris.Wrap(err, "pipeline: build table")
	}
	tbl = table.Dedup(tbl)
	if err := tbl.AssertUniqueIDs(); err != nil {
		return nil, 0, err
	}
	return tbl, len(paths), nil
}

// loadRow decodes and flattens one result file and annotates the row with
// its source file, run hash, and resolved predictions path.
func loadRow(path string, pattern *regexp.Regexp, dataDir string) (model.Row, error) {
	rec, err := record.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	row, err := record.Parse(rec)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: parse %s", path)
	}

	row[model.ColResultsFile] = path
	if hash := discovery.RunHash(path, pattern); hash != "" {
		row[model.ColRunHash] = hash
	}
	if p := row.String(model.ColPredictionsPath); p != "" {
		row[model.ColPredictionsPath] = record.ResolvePredictionsPath(p, path, dataDir, fileExists)
	}
	return row, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// phase runs fn and logs its outcome and duration.
func phase(log *zap.Logger, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	duration := time.Since(start).Milliseconds()
	if err != nil {
		log.Error("pipeline: phase failed",
			zap.String("phase", name),
			zap.Int64("duration_ms", duration),
			zap.Error(err),
		)
		return err
	}
	log.Info("pipeline: phase complete",
		zap.String("phase", name),
		zap.Int64("duration_ms", duration),
	)
	return nil
}
