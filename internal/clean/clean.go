// Package clean holds the per-field value cleaners. Every cleaner is a pure
// function that degrades to "no value" on unparseable input instead of
// returning an error; whether a missing value is acceptable is the caller's
// decision per field.
package clean

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	wsRun      = regexp.MustCompile(`\s+`)
	phoneAllow = regexp.MustCompile(`[^0-9-]`)
	koreanYM   = regexp.MustCompile(`(\d{4})년\s*(\d{1,2})월`)
	digits8    = regexp.MustCompile(`^\d{8}$`)
)

// Text trims edge whitespace and collapses internal whitespace runs to a
// single space.
func Text(s string) string {
	return wsRun.ReplaceAllString(strings.TrimSpace(s), " ")
}

// Number parses a decimal after stripping thousands-separator commas and
// whitespace. Non-numeric residue yields (0, false).
func Number(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Count parses a non-negative integer count the same way Number parses
// decimals. Fractional or negative input yields (0, false): counts are
// absences, never approximations.
func Count(s string) (int64, bool) {
	v, ok := Number(s)
	if !ok || v < 0 || v != float64(int64(v)) {
		return 0, false
	}
	return int64(v), true
}

var dateLayouts = []string{
	"2006-01-02",
	"2006.01.02",
	"2006/01/02",
	"2006-1-2",
	"2006.1.2",
}

// Date parses the date forms seen in the source exports. Rules are tried in
// order and the first success wins:
//
//  1. an 8-digit YYYYMMDD token
//  2. delimited forms (YYYY-MM-DD, YYYY.MM.DD, YYYY/MM/DD)
//  3. a Korean year-month label ("YYYY년 MM월"), pinned to the first of month
//
// Total failure yields (zero, false).
func Date(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if digits8.MatchString(s) {
		if t, err := time.Parse("20060102", s); err == nil {
			return t, true
		}
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	if m := koreanYM.FindStringSubmatch(s); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		if mo >= 1 && mo <= 12 {
			return time.Date(y, time.Month(mo), 1, 0, 0, 0, 0, time.UTC), true
		}
	}

	return time.Time{}, false
}

// Phone strips everything outside the phone allow-list (digits and hyphen).
func Phone(s string) string {
	return phoneAllow.ReplaceAllString(s, "")
}

// genderSynonyms folds source gender labels onto the two canonical values.
// "전체" folds to the aggregate label so the exclusion sets downstream catch it.
var genderSynonyms = map[string]string{
	"남자": "남성",
	"여자": "여성",
	"전체": "합계",
}

// Gender normalizes a gender label: whitespace removed, synonyms folded.
func Gender(s string) string {
	s = wsRun.ReplaceAllString(strings.TrimSpace(s), "")
	if canon, ok := genderSynonyms[s]; ok {
		return canon
	}
	return s
}
