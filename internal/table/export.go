package table

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/bwilder0/folktexts/internal/fetcher"
)

// xlsxSheetName is the sheet holding the exported table.
const xlsxSheetName = "aggregated_results"

// ExportFileName returns "<prefix>.<timestamp>.<ext>" for the given time.
func ExportFileName(prefix, layout, ext string, now time.Time) string {
	return fmt.Sprintf("%s.%s.%s", prefix, now.Format(layout), ext)
}

// Records renders the table as string cells: a header row of Columns
// followed by one row per table row. Absent values render as "".
func (t *Table) Records() [][]string {
	cols := t.Columns()
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, cols)
	for _, row := range t.Rows {
		rec := make([]string, len(cols))
		for i, col := range cols {
			rec[i] = formatValue(row[col])
		}
		records = append(records, rec)
	}
	return records
}

// ExportCSV writes the table to path. An empty table yields a header-only file.
func ExportCSV(t *Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "table export: create file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(t.Records()); err != nil {
		return eris.Wrap(err, "table export: write rows")
	}
	return nil
}

// ExportXLSX writes the same cells as ExportCSV to a one-sheet workbook.
func ExportXLSX(t *Table, path string) error {
	if err := fetcher.WriteXLSX(path, xlsxSheetName, t.Records()); err != nil {
		return eris.Wrap(err, "table export: xlsx")
	}
	return nil
}

// ExportTimestamped writes the table as CSV (and optionally XLSX) into dir,
// naming files with prefix and the formatted time so earlier exports are
// never overwritten. It returns the written paths.
func ExportTimestamped(t *Table, dir, prefix, layout string, now time.Time, withXLSX bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "table export: create dir %s", dir)
	}

	csvPath := filepath.Join(dir, ExportFileName(prefix, layout, "csv", now))
	if err := ExportCSV(t, csvPath); err != nil {
		return nil, err
	}
	paths := []string{csvPath}

	if withXLSX {
		xlsxPath := filepath.Join(dir, ExportFileName(prefix, layout, "xlsx", now))
		if err := ExportXLSX(t, xlsxPath); err != nil {
			return paths, err
		}
		paths = append(paths, xlsxPath)
	}
	return paths, nil
}

// maxPlainInteger bounds the integral floats written without an exponent.
const maxPlainInteger = 1e21

// formatValue renders a cell value. Integral floats render as plain integers
// (JSON counts decode as float64), other floats use the shortest
// representation, and NaN renders empty; scalar lists render as JSON.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		if x == math.Trunc(x) && math.Abs(x) < maxPlainInteger {
			return strconv.FormatFloat(x, 'f', -1, 64)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case []any, []string:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprintf("%v", x)
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", x)
	}
}
