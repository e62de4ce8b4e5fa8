// Package pipeline orchestrates the per-source loads: read, normalize, clean,
// dedupe or reshape, then batched upsert into the destination store. Each
// load runs to completion or failure in one control flow; re-running after a
// failure is the documented recovery path, safe because writes are
// upsert-by-natural-key.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"dochicar/internal/catalog"
	"dochicar/internal/clean"
	"dochicar/internal/metrics"
	"dochicar/internal/schema"
	"dochicar/internal/storage"
)

// Stage names a step of a load invocation, used for metrics labels and
// failure reporting. Progression is strictly forward: Reading → Normalizing →
// Cleaning → (Deduplicating | Reshaping) → Writing → Done, with Failed
// reachable from anywhere.
type Stage string

const (
	StageIdle          Stage = "idle"
	StageReading       Stage = "reading"
	StageNormalizing   Stage = "normalizing"
	StageCleaning      Stage = "cleaning"
	StageDeduplicating Stage = "deduplicating"
	StageReshaping     Stage = "reshaping"
	StageWriting       Stage = "writing"
	StageDone          Stage = "done"
	StageFailed        Stage = "failed"
)

// Result counts what one load invocation did. Written counts rows submitted
// in committed batches, not backend affected-row figures (MySQL reports an
// updated row as 2 affected).
type Result struct {
	Read    int64
	Cleaned int64
	Kept    int64
	Written int64
}

// DefaultBatchSize bounds per-statement payload size. A tunable, not a
// correctness parameter.
const DefaultBatchSize = 1000

// Options carries the caller-supplied knobs shared by all loads.
type Options struct {
	// BatchSize overrides DefaultBatchSize when positive.
	BatchSize int

	// Bounds overrides the per-source default geographic box when non-zero.
	Bounds clean.Bounds

	// Extractor overrides the catalog extractor (defaults to catalog.Danawa).
	Extractor catalog.Extractor
}

func (o Options) batchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return DefaultBatchSize
}

// WriteError reports a rejected batch. The failed batch and all batches after
// it are abandoned; batches already committed stay committed.
type WriteError struct {
	Table string
	Batch int
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: batch %d: %v", e.Table, e.Batch, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// writeAll ensures the destination table exists and writes rows in
// fixed-size batches. It returns the number of rows submitted in committed
// batches; on failure that count is still meaningful to the caller.
func writeAll(ctx context.Context, repo storage.Repository, t schema.Table, rows [][]any, batchSize int) (int64, error) {
	if err := repo.EnsureTable(ctx, t); err != nil {
		return 0, &WriteError{Table: t.Name, Batch: 0, Err: err}
	}

	var written int64
	for i, batch := 0, 0; i < len(rows); i, batch = i+batchSize, batch+1 {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if _, err := repo.UpsertRows(ctx, t, rows[i:end]); err != nil {
			return written, &WriteError{Table: t.Name, Batch: batch, Err: err}
		}
		written += int64(end - i)
		metrics.IncCounter(metrics.BatchesTotal, 1, nil)
	}
	return written, nil
}

// observeStage records one completed (or failed) stage.
func observeStage(stage Stage, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	labels := metrics.Labels{"step": string(stage), "status": status}
	metrics.IncCounter(metrics.StepTotal, 1, labels)
	metrics.ObserveHistogram(metrics.StepDurationSeconds, time.Since(start).Seconds(), labels)
}

func countRecords(kind string, n int64) {
	if n > 0 {
		metrics.IncCounter(metrics.RecordsTotal, float64(n), metrics.Labels{"kind": kind})
	}
}

// nilIfEmpty maps the empty string to SQL NULL. Text columns store cleaned
// values or null, never empty strings, so natural keys and filters behave
// the same across backends.
func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// dateOrNil parses a raw date cell; unparseable input degrades to null.
func dateOrNil(raw string) any {
	if t, ok := clean.Date(raw); ok {
		return t
	}
	if raw != "" {
		countRecords("null_field", 1)
	}
	return nil
}
