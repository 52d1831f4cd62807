package table

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwilder0/folktexts/internal/model"
)

// Merge outer-joins per-row statistics onto the table by row identifier.
// Rows without statistics are kept as they are. Statistics whose identifier
// has no row are appended as rows holding only the identifier and the stats.
// The input table is not modified.
func Merge(t *Table, stats map[string]model.ThresholdStats) *Table {
	out := &Table{Rows: make([]model.Row, 0, len(t.Rows))}
	matched := make(map[string]bool, len(stats))

	for _, row := range t.Rows {
		merged := row.Clone()
		if s, ok := stats[row.ID()]; ok {
			for k, v := range s.Columns() {
				merged[k] = v
			}
			matched[row.ID()] = true
		}
		out.Rows = append(out.Rows, merged)
	}

	var orphans []string
	for id := range stats {
		if !matched[id] {
			orphans = append(orphans, id)
		}
	}
	sort.Strings(orphans)
	for _, id := range orphans {
		row := model.Row{model.ColID: id}
		for k, v := range stats[id].Columns() {
			row[k] = v
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// CoverageGap names a (model, task) pair with fewer rows than the best-covered pair.
type CoverageGap struct {
	Model    string   `yaml:"model"`
	Task     string   `yaml:"task"`
	Count    int      `yaml:"count"`
	Expected int      `yaml:"expected"`
	Missing  []string `yaml:"missing,omitempty"`
}

// String renders the gap as a one-line diagnostic.
func (g CoverageGap) String() string {
	msg := fmt.Sprintf("%s on %s has %d of %d combinations", g.Model, g.Task, g.Count, g.Expected)
	if len(g.Missing) > 0 {
		msg += "; missing " + strings.Join(g.Missing, ", ")
	}
	return msg
}

// CoverageReport summarizes how completely each (model, task) pair is covered.
type CoverageReport struct {
	Expected int           `yaml:"expected"`
	Pairs    int           `yaml:"pairs"`
	Gaps     []CoverageGap `yaml:"gaps"`
}

// Complete reports whether every pair reached the expected count.
func (r CoverageReport) Complete() bool {
	return len(r.Gaps) == 0
}

// Coverage counts the distinct (feature count, prompting mode) combinations
// per (model, task) pair. The largest count is taken as full coverage, and
// every pair with strictly fewer combinations is reported as a gap. Rows
// lacking a model or task are ignored.
func Coverage(t *Table) CoverageReport {
	type pair struct{ model, task string }

	combos := make(map[pair]map[string]bool)
	all := make(map[string]bool)
	for _, row := range t.Rows {
		p := pair{row.String(model.ColName), row.String(model.ColTaskName)}
		if p.model == "" || p.task == "" {
			continue
		}
		c := comboLabel(row)
		if combos[p] == nil {
			combos[p] = make(map[string]bool)
		}
		combos[p][c] = true
		all[c] = true
	}

	report := CoverageReport{Pairs: len(combos)}
	for _, set := range combos {
		if len(set) > report.Expected {
			report.Expected = len(set)
		}
	}

	allLabels := make([]string, 0, len(all))
	for c := range all {
		allLabels = append(allLabels, c)
	}
	sort.Strings(allLabels)

	for p, set := range combos {
		if len(set) >= report.Expected {
			continue
		}
		gap := CoverageGap{Model: p.model, Task: p.task, Count: len(set), Expected: report.Expected}
		for _, c := range allLabels {
			if !set[c] {
				gap.Missing = append(gap.Missing, c)
			}
		}
		report.Gaps = append(report.Gaps, gap)
	}
	sort.Slice(report.Gaps, func(i, j int) bool {
		if report.Gaps[i].Model != report.Gaps[j].Model {
			return report.Gaps[i].Model < report.Gaps[j].Model
		}
		return report.Gaps[i].Task < report.Gaps[j].Task
	})
	return report
}

func comboLabel(row model.Row) string {
	tag := TagMultipleChoice
	if row.Bool(model.ColNumericRiskPrompting) {
		tag = TagNumericPrompt
	}
	return fmt.Sprintf("%s=%s/%s", model.ColNumFeatures, row.String(model.ColNumFeatures), tag)
}
