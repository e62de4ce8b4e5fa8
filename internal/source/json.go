package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
)

// ReadJSON reads a top-level JSON array of flat objects into a RawTable.
// Some registry exports ship the same records as JSON instead of CSV, so the
// loader can fall back between the two.
//
// The header is the sorted union of keys across all objects; objects missing
// a key contribute an empty cell. Nested values are not supported and fail
// the read.
func ReadJSON(path string) (*RawTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &UnreadableError{Path: path, Err: err}
	}

	var objs []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &objs); err != nil {
		return nil, &UnreadableError{Path: path, Err: fmt.Errorf("not an array of objects: %w", err)}
	}

	keySet := map[string]struct{}{}
	for _, obj := range objs {
		for k := range obj {
			keySet[k] = struct{}{}
		}
	}
	header := make([]string, 0, len(keySet))
	for k := range keySet {
		header = append(header, k)
	}
	sort.Strings(header)

	rows := make([][]string, 0, len(objs))
	for _, obj := range objs {
		row := make([]string, len(header))
		for i, k := range header {
			rm, ok := obj[k]
			if !ok {
				continue
			}
			cell, err := scalarToString(rm)
			if err != nil {
				return nil, &UnreadableError{Path: path, Err: fmt.Errorf("field %q: %w", k, err)}
			}
			row[i] = cell
		}
		rows = append(rows, row)
	}

	return &RawTable{Header: header, Rows: rows, HeadText: renderHeadText(rows)}, nil
}

// scalarToString renders one JSON scalar as the cell text the cleaners expect.
// Numbers keep their source formatting (json.Number), null becomes "".
func scalarToString(rm json.RawMessage) (string, error) {
	var v any
	d := json.NewDecoder(bytes.NewReader(rm))
	d.UseNumber()
	if err := d.Decode(&v); err != nil {
		return "", err
	}
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
