package source

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadSheet reads one named sheet of an .xlsx workbook into a RawTable.
//
// headerRow is the 1-based physical row holding the column labels; data is
// assumed to begin on the very next row. The layout is asserted, not
// detected: these are fixed-format statistical exports and a template change
// should fail loudly downstream (missing canonical columns) rather than be
// guessed around.
//
// Errors: *UnreadableError on a missing file, unreadable container, missing
// sheet, or a headerRow beyond the sheet's extent.
func ReadSheet(path, sheet string, headerRow int) (*RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &UnreadableError{Path: path, Err: err}
	}
	defer f.Close()

	all, err := f.GetRows(sheet)
	if err != nil {
		return nil, &UnreadableError{Path: path, Err: fmt.Errorf("sheet %q: %w", sheet, err)}
	}
	if headerRow < 1 || headerRow > len(all) {
		return nil, &UnreadableError{
			Path: path,
			Err:  fmt.Errorf("sheet %q: header row %d out of range (%d rows)", sheet, headerRow, len(all)),
		}
	}

	header := all[headerRow-1]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows := make([][]string, 0, len(all)-headerRow)
	for _, rec := range all[headerRow:] {
		rows = append(rows, padRow(rec, len(header)))
	}

	return &RawTable{
		Header:   header,
		Rows:     rows,
		HeadText: renderHeadText(all),
	}, nil
}
