package source

import (
	"bytes"
	"encoding/csv"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
)

// Government and commercial data exports in this domain arrive either as
// UTF-8 (often with a BOM) or as legacy EUC-KR/CP949. The fallback order is
// fixed: the first encoding that decodes the whole byte stream without
// replacement wins.
var csvEncodings = []string{"utf-8", "euc-kr"}

// ReadCSV reads a CSV file into a RawTable, trying each configured encoding
// in order.
//
// Behavior:
//   - a UTF-8 BOM is tolerated and stripped
//   - header cells are trimmed of edge whitespace
//   - ragged records are tolerated; short rows are padded to the header width
//   - an empty file yields an empty table, not an error
//
// Errors:
//   - *DecodeError when no configured encoding decodes the bytes cleanly
//   - *UnreadableError when the file is missing or the CSV is unparseable
func ReadCSV(path string) (*RawTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &UnreadableError{Path: path, Err: err}
	}

	text, ok := decodeWithFallback(raw)
	if !ok {
		return nil, &DecodeError{Path: path, Encodings: csvEncodings}
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, &UnreadableError{Path: path, Err: err}
	}
	if len(records) == 0 {
		return &RawTable{}, nil
	}

	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, padRow(rec, len(header)))
	}

	return &RawTable{
		Header:   header,
		Rows:     rows,
		HeadText: renderHeadText(records),
	}, nil
}

// decodeWithFallback walks the encoding preference list. UTF-8 acceptance is
// strict (any invalid sequence fails the attempt); EUC-KR decoding is
// rejected if the decoder had to emit replacement runes, since x/text
// decoders substitute rather than error on bad input.
func decodeWithFallback(raw []byte) (string, bool) {
	b := bytes.TrimPrefix(raw, []byte("\uFEFF"))

	if utf8.Valid(b) {
		return string(b), true
	}

	dec := korean.EUCKR.NewDecoder()
	out, err := dec.Bytes(raw)
	if err != nil || bytes.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return string(out), true
}
