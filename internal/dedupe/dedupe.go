// Package dedupe drops repeated natural keys from a record sequence.
package dedupe

// First returns the subsequence of records retaining only the first record
// per distinct key, preserving input order. Records whose key components are
// empty still form a key; upstream filtering is responsible for dropping
// records missing their primary identifier.
func First[T any](records []T, key func(T) string) []T {
	seen := make(map[string]struct{}, len(records))
	out := records[:0:0]
	for _, rec := range records {
		k := key(rec)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, rec)
	}
	return out
}
