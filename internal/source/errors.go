package source

import (
	"fmt"
	"strings"
)

// UnreadableError reports a source that could not be opened or parsed at all:
// missing file, missing sheet, corrupt container, malformed markup. It is
// fatal for the invocation; there is no in-pipeline retry.
type UnreadableError struct {
	Path string
	Err  error
}

func (e *UnreadableError) Error() string {
	return fmt.Sprintf("source unreadable: %s: %v", e.Path, e.Err)
}

func (e *UnreadableError) Unwrap() error { return e.Err }

// DecodeError reports that none of the configured character encodings decoded
// the byte stream cleanly. Raised only after the whole fallback list has been
// exhausted.
type DecodeError struct {
	Path      string
	Encodings []string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: no encoding matched (tried %s)",
		e.Path, strings.Join(e.Encodings, ", "))
}
