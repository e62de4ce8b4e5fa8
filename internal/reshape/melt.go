// Package reshape melts cross-tabulated statistical tables (identifier rows ×
// one value column per region) into one output row per (identifiers, region,
// count) tuple.
package reshape

import (
	"fmt"
	"sort"
	"strings"

	"dochicar/internal/clean"
	"dochicar/internal/source"
)

// Spec configures one melt.
type Spec struct {
	// Renames maps source labels to canonical identifier column names
	// (synonyms allowed, as in normalize).
	Renames map[string]string

	// IDColumns are the canonical identifier columns, in output order. All
	// must be present after renaming or the melt fails with *SchemaMismatchError.
	IDColumns []string

	// ForwardFill marks identifier columns whose values are carried down
	// from the previous row when blank. Merged spreadsheet cells arrive as
	// a value followed by blanks.
	ForwardFill map[string]bool

	// Synonyms folds identifier values per column (e.g. gender labels)
	// before exclusion is applied.
	Synonyms map[string]func(string) string

	// Exclude lists aggregate/summary identifier values per column that are
	// dropped before reshaping. Blank values are always excluded.
	Exclude map[string]map[string]bool

	// ExcludeColumns lists value-column labels (e.g. the grand-total
	// column) that are never melted.
	ExcludeColumns map[string]bool
}

// Row is one long-format output row. Count is always non-null: source cells
// that do not parse as a count are absences and produce no row.
type Row struct {
	Column string // value-column label, e.g. a region name
	IDs    map[string]string
	Count  int64
}

// SchemaMismatchError reports identifier columns missing after renaming.
// Fatal: a melt has no meaningful default for a missing dimension.
type SchemaMismatchError struct {
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("wide source missing required identifier columns: %s",
		strings.Join(e.Missing, ", "))
}

// Melt reshapes a wide table into long rows.
//
// For a table with N surviving identifier rows and M surviving value columns
// it emits at most N×M rows; cells that fail to parse as counts are dropped,
// not zeroed. Output preserves row-major source order.
func Melt(t *source.RawTable, sp Spec) ([]Row, error) {
	idIdx, valueCols, err := splitColumns(t.Header, sp)
	if err != nil {
		return nil, err
	}

	var out []Row
	ffill := make(map[string]string, len(sp.IDColumns))

	for _, row := range t.Rows {
		ids, keep := identifierValues(row, idIdx, ffill, sp)
		if !keep {
			continue
		}
		for _, vc := range valueCols {
			if vc.col >= len(row) {
				continue
			}
			n, ok := clean.Count(row[vc.col])
			if !ok {
				continue
			}
			ids2 := make(map[string]string, len(ids))
			for k, v := range ids {
				ids2[k] = v
			}
			out = append(out, Row{Column: vc.label, IDs: ids2, Count: n})
		}
	}
	return out, nil
}

type valueCol struct {
	label string
	col   int
}

// splitColumns resolves identifier column positions via the rename table and
// collects the remaining non-excluded columns as value columns.
func splitColumns(header []string, sp Spec) (map[string]int, []valueCol, error) {
	idIdx := make(map[string]int, len(sp.IDColumns))
	var values []valueCol

	for i, label := range header {
		label = strings.TrimSpace(label)
		if label == "" || strings.HasPrefix(label, "Unnamed") {
			continue
		}
		if field, ok := sp.Renames[label]; ok {
			if _, dup := idIdx[field]; !dup {
				idIdx[field] = i
			}
			continue
		}
		if sp.ExcludeColumns[label] {
			continue
		}
		values = append(values, valueCol{label: label, col: i})
	}

	var missing []string
	for _, f := range sp.IDColumns {
		if _, ok := idIdx[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, nil, &SchemaMismatchError{Missing: missing}
	}
	return idIdx, values, nil
}

// identifierValues extracts, forward-fills, folds and filters the identifier
// tuple for one source row. keep is false when the row belongs to an
// aggregate/summary dimension value or still lacks an identifier.
func identifierValues(row []string, idIdx map[string]int, ffill map[string]string, sp Spec) (map[string]string, bool) {
	ids := make(map[string]string, len(sp.IDColumns))
	keep := true

	for _, f := range sp.IDColumns {
		col := idIdx[f]
		v := ""
		if col < len(row) {
			v = clean.Text(row[col])
		}
		if v == "" && sp.ForwardFill[f] {
			v = ffill[f]
		}
		if fold := sp.Synonyms[f]; fold != nil {
			v = fold(v)
		}
		if sp.ForwardFill[f] {
			ffill[f] = v
		}
		if v == "" || sp.Exclude[f][v] {
			keep = false
		}
		ids[f] = v
	}
	return ids, keep
}
