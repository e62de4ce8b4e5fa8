package clean

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// periodPattern matches a plausible year followed within 10 non-digit
// characters by a 1–2 digit month. It accepts the forms the statistics files
// actually use: "2023.01", "2023-01", "2023_01", "202301", "2023년 1월".
var periodPattern = regexp.MustCompile(`(19\d{2}|20\d{2})\D{0,10}(1[0-2]|0?[1-9])`)

// PeriodNotFoundError reports that a statistical source carries no derivable
// reporting period. Fatal: rows without a period are meaningless.
type PeriodNotFoundError struct {
	Filename string
}

func (e *PeriodNotFoundError) Error() string {
	return fmt.Sprintf("no reporting period (YYYY.MM) found in filename %q or sheet head", e.Filename)
}

// InferPeriod derives the reporting month for a source that lacks an explicit
// date column. Search order is fixed: the file name first, then the head text
// of the sheet (title rows such as "조회년월: 2023.01"). The first match wins
// and is pinned to the first day of the month.
func InferPeriod(filename, headText string) (time.Time, error) {
	for _, hay := range []string{filename, headText} {
		if m := periodPattern.FindStringSubmatch(hay); m != nil {
			y, _ := strconv.Atoi(m[1])
			mo, _ := strconv.Atoi(m[2])
			return time.Date(y, time.Month(mo), 1, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, &PeriodNotFoundError{Filename: filename}
}
