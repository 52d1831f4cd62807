// Package fetcher reads and writes the local files the aggregator consumes
// and produces: result JSON, prediction CSV, and XLSX exports.
package fetcher

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// CSVOptions configures the streaming CSV parser.
type CSVOptions struct {
	LazyQuotes bool
	TrimSpace  bool
}

// StreamCSV reads a CSV file and sends rows to a channel.
// Caller must consume the returned row channel. Errors are sent on the error channel.
// Both channels are closed when processing completes.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan []string, <-chan error) {
	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1 // allow variable fields

		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}

			if opts.TrimSpace {
				for i, field := range record {
					record[i] = strings.TrimSpace(field)
				}
			}

			select {
			case rowCh <- record:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

// RowReader adapts the channels returned by StreamCSV to a pull-style reader
// with the same Read contract as csv.Reader, so record decoders can consume a
// stream directly.
type RowReader struct {
	rows <-chan []string
	errs <-chan error
	done bool
}

// NewRowReader wraps a StreamCSV row/error channel pair.
func NewRowReader(rows <-chan []string, errs <-chan error) *RowReader {
	return &RowReader{rows: rows, errs: errs}
}

// Read returns the next row, or io.EOF once the stream is exhausted.
// A stream error is returned in place of io.EOF.
func (r *RowReader) Read() ([]string, error) {
	if r.done {
		return nil, io.EOF
	}
	if row, ok := <-r.rows; ok {
		return row, nil
	}
	r.done = true
	for err := range r.errs {
		if err != nil {
			return nil, err
		}
	}
	return nil, io.EOF
}
