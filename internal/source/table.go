// Package source reads raw tabular data out of the pipeline's input formats:
// CSV exports with inconsistent encodings, fixed-layout Excel workbooks, and
// JSON dumps. Readers produce a RawTable; nothing here interprets values.
package source

import "strings"

// RawTable is the raw record set a reader produces: an ordered header and one
// string slice per data row, padded to the header width. Values are untyped
// and untrimmed beyond what the container format itself requires; cleaning is
// a downstream concern.
type RawTable struct {
	Header []string
	Rows   [][]string

	// HeadText is the first few physical rows of the underlying file
	// rendered as one text blob, including any title rows above the header.
	// Statistical sources hide their reporting period up there.
	HeadText string
}

// headTextRows is how many leading physical rows feed HeadText.
const headTextRows = 5

func renderHeadText(rows [][]string) string {
	n := len(rows)
	if n > headTextRows {
		n = headTextRows
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		for _, cell := range rows[i] {
			if cell == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(cell)
		}
	}
	return b.String()
}

// padRow extends row to width with empty strings. Rows longer than width are
// returned unchanged; the extra cells are simply never addressed.
func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}
