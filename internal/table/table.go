// Package table builds, deduplicates, merges, and exports the aggregated
// benchmark results table.
package table

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bwilder0/folktexts/internal/model"
)

// ErrDuplicateID is returned when two rows share an identifier after dedup.
var ErrDuplicateID = errors.New("table: duplicate row id")

// Prompting-mode tags used in row identifiers.
const (
	TagNumericPrompt  = "num-prompt"
	TagMultipleChoice = "mc-prompt"
)

// idSeparator joins the parts of a row identifier.
const idSeparator = "__"

// dedupColumns define row equivalence for duplicate removal.
var dedupColumns = []string{
	model.ColDisplayName,
	model.ColIsInst,
	model.ColNumFeatures,
	model.ColTaskName,
	model.ColNumericRiskPrompting,
}

// Table is the aggregated results table. Rows keep insertion order.
type Table struct {
	Rows []model.Row
}

// RowID returns the identifier for a benchmark run. It is a pure function of
// its arguments.
func RowID(modelName, taskName string, numFeatures int, numericPrompting bool) string {
	tag := TagMultipleChoice
	if numericPrompting {
		tag = TagNumericPrompt
	}
	return strings.Join([]string{
		modelName,
		taskName,
		fmt.Sprintf("num-features-%d", numFeatures),
		tag,
	}, idSeparator)
}

// RowIDFor derives the identifier of a parsed row.
func RowIDFor(row model.Row) (string, error) {
	name := row.String(model.ColName)
	task := row.String(model.ColTaskName)
	if name == "" || task == "" {
		return "", eris.Errorf("table: row missing %s or %s", model.ColName, model.ColTaskName)
	}
	n, ok := row.Int(model.ColNumFeatures)
	if !ok {
		return "", eris.Errorf("table: row %s/%s missing %s", name, task, model.ColNumFeatures)
	}
	return RowID(name, task, n, row.Bool(model.ColNumericRiskPrompting)), nil
}

// Build creates a table from parsed rows keyed by grouping key. Each row is
// copied and assigned its identifier. Rows are ordered by grouping key.
// Identifiers may repeat at this stage; Dedup removes equivalent rows.
func Build(rows map[string]model.Row) (*Table, error) {
	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := &Table{Rows: make([]model.Row, 0, len(rows))}
	for _, k := range keys {
		row := rows[k].Clone()
		id, err := RowIDFor(row)
		if err != nil {
			return nil, eris.Wrapf(err, "table: group %s", k)
		}
		row[model.ColID] = id
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Dedup returns a table holding the first row of every equivalence class,
// where rows are equivalent when they agree on display name,
// instruction-tuned flag, feature count, task, and prompting mode.
// Applying Dedup to its own output returns an identical table.
func Dedup(t *Table) *Table {
	seen := make(map[string]bool, len(t.Rows))
	out := &Table{Rows: make([]model.Row, 0, len(t.Rows))}
	dropped := 0
	for _, row := range t.Rows {
		key := dedupKey(row)
		if seen[key] {
			dropped++
			continue
		}
		seen[key] = true
		out.Rows = append(out.Rows, row)
	}
	if dropped > 0 {
		zap.L().Info("table: dropped duplicate rows",
			zap.Int("dropped", dropped),
			zap.Int("remaining", len(out.Rows)),
		)
	}
	return out
}

func dedupKey(row model.Row) string {
	parts := make([]string, len(dedupColumns))
	for i, col := range dedupColumns {
		parts[i] = row.String(col)
	}
	return strings.Join(parts, "\x1f")
}

// AssertUniqueIDs fails with ErrDuplicateID if two rows share an identifier.
func (t *Table) AssertUniqueIDs() error {
	seen := make(map[string]bool, len(t.Rows))
	for _, row := range t.Rows {
		id := row.ID()
		if seen[id] {
			return eris.Wrapf(ErrDuplicateID, "table: id %q", id)
		}
		seen[id] = true
	}
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Columns returns the export column order: "id" first, then the sorted union
// of every other column across all rows.
func (t *Table) Columns() []string {
	set := make(map[string]bool)
	cols := []string{model.ColID}
	for _, row := range t.Rows {
		for _, k := range row.Keys() {
			if k != model.ColID && !set[k] {
				set[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols[1:])
	return cols
}
