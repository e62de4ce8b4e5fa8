// Package normalize maps source-specific, human-language column labels onto
// canonical field names. The rename table is supplied by the caller per
// source; normalization itself knows nothing about any particular export.
package normalize

import (
	"strings"

	"dochicar/internal/source"
)

// Record is a canonical-record skeleton: every canonical field for the target
// schema is present, unmapped or empty source cells leave the type-neutral
// empty string. Typed coercion happens in the cleaners, not here.
type Record map[string]string

// unnamedMarker is the label spreadsheets assign to columns with no header.
const unnamedMarker = "Unnamed"

// Normalize maps a raw table onto canonical records.
//
// Rules:
//   - columns with a blank label or an auto-assigned "no name" marker are
//     dropped before mapping
//   - renames may map several source labels to one canonical field (synonym
//     folding); within a record the first synonym that carries a value wins
//   - source columns absent from renames are dropped
//   - every field in fields exists in every output record
func Normalize(t *source.RawTable, renames map[string]string, fields []string) []Record {
	type binding struct {
		field string
		col   int
	}
	var bindings []binding
	for i, label := range t.Header {
		label = strings.TrimSpace(label)
		if label == "" || strings.HasPrefix(label, unnamedMarker) {
			continue
		}
		field, ok := renames[label]
		if !ok {
			continue
		}
		bindings = append(bindings, binding{field: field, col: i})
	}

	out := make([]Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(Record, len(fields))
		for _, f := range fields {
			rec[f] = ""
		}
		for _, b := range bindings {
			if b.col >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[b.col])
			if v == "" {
				continue
			}
			if rec[b.field] != "" {
				// An earlier synonym already filled this field.
				continue
			}
			rec[b.field] = v
		}
		out = append(out, rec)
	}
	return out
}
