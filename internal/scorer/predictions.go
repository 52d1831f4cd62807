// Package scorer fits classification thresholds on per-sample prediction
// files and summarizes their risk score distribution.
package scorer

import (
	"context"
	"errors"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/bwilder0/folktexts/internal/fetcher"
)

// Prediction file column names.
const (
	ColRiskScore = "risk_score"
	ColLabel     = "label"
)

var (
	// ErrMissingColumn is returned when a prediction file lacks a required column.
	ErrMissingColumn = errors.New("scorer: missing prediction column")
	// ErrNoPredictionsPath is returned for rows that carry no prediction file.
	ErrNoPredictionsPath = errors.New("scorer: row has no predictions path")
	// ErrNoPredictions is returned when a prediction file holds no samples.
	ErrNoPredictions = errors.New("scorer: no predictions")
)

// Label is a binary ground-truth label. It decodes 0/1, true/false and
// float renderings such as 1.0.
type Label bool

// UnmarshalCSV implements csvutil.Unmarshaler.
func (l *Label) UnmarshalCSV(b []byte) error {
	s := strings.TrimSpace(string(b))
	if v, err := strconv.ParseBool(s); err == nil {
		*l = Label(v)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || (f != 0 && f != 1) {
		return eris.Errorf("scorer: invalid label %q", s)
	}
	*l = f == 1
	return nil
}

// Prediction is one evaluation sample. Other columns, including the leading
// index column, are ignored.
type Prediction struct {
	RiskScore float64 `csv:"risk_score"`
	Label     Label   `csv:"label"`
}

// Predictions holds a prediction file as parallel score and label slices.
type Predictions struct {
	Scores []float64
	Labels []bool
}

// Len returns the number of samples.
func (p Predictions) Len() int {
	return len(p.Scores)
}

// LoadPredictions reads the prediction CSV at path.
func LoadPredictions(ctx context.Context, path string) (Predictions, error) {
	f, err := os.Open(path)
	if err != nil {
		return Predictions{}, eris.Wrapf(err, "scorer: open %s", path)
	}
	defer f.Close()

	p, err := DecodePredictions(ctx, f)
	if err != nil {
		return Predictions{}, eris.Wrapf(err, "scorer: %s", path)
	}
	return p, nil
}

// DecodePredictions decodes prediction rows from r. The first line must be a
// header naming at least risk_score and label.
func DecodePredictions(ctx context.Context, r io.Reader) (Predictions, error) {
	rows, errs := fetcher.StreamCSV(ctx, r, fetcher.CSVOptions{LazyQuotes: true, TrimSpace: true})
	rr := fetcher.NewRowReader(rows, errs)
	// Drain the stream so the producer goroutine exits on early return.
	defer func() {
		for range rows {
		}
	}()

	dec, err := csvutil.NewDecoder(rr)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Predictions{}, ErrNoPredictions
		}
		return Predictions{}, eris.Wrap(err, "scorer: read header")
	}

	header := dec.Header()
	for _, col := range []string{ColRiskScore, ColLabel} {
		if !slices.Contains(header, col) {
			return Predictions{}, eris.Wrapf(ErrMissingColumn, "scorer: %q", col)
		}
	}

	var p Predictions
	for {
		var row Prediction
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Predictions{}, eris.Wrapf(err, "scorer: decode sample %d", p.Len()+1)
		}
		p.Scores = append(p.Scores, row.RiskScore)
		p.Labels = append(p.Labels, bool(row.Label))
	}
	if p.Len() == 0 {
		return Predictions{}, ErrNoPredictions
	}
	return p, nil
}
