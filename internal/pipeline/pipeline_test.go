package pipeline

import (
	"context"
	"errors"
	"testing"

	"dochicar/internal/schema"
)

var errUnavailable = errors.New("storage unavailable")

// fakeRepo records everything written to it; optionally fails a given batch
// of a given table, or table creation itself.
type fakeRepo struct {
	ensured   []string
	rows      map[string][][]any
	batches   map[string]int
	failTable string
	failBatch int
	ensureErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		rows:      map[string][][]any{},
		batches:   map[string]int{},
		failBatch: -1,
	}
}

func (f *fakeRepo) Close() {}

func (f *fakeRepo) EnsureTable(_ context.Context, t schema.Table) error {
	if f.ensureErr != nil {
		return f.ensureErr
	}
	f.ensured = append(f.ensured, t.Name)
	return nil
}

func (f *fakeRepo) UpsertRows(_ context.Context, t schema.Table, rows [][]any) (int64, error) {
	b := f.batches[t.Name]
	f.batches[t.Name] = b + 1
	if t.Name == f.failTable && b == f.failBatch {
		return 0, errUnavailable
	}
	f.rows[t.Name] = append(f.rows[t.Name], rows...)
	return int64(len(rows)), nil
}

func TestWriteAllBatches(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	rows := [][]any{
		{"a", "가솔린"}, {"b", "가솔린"}, {"c", "전기"}, {"d", "LPG"}, {"e", "디젤"},
	}

	written, err := writeAll(context.Background(), repo, schema.Fuel, rows, 2)
	if err != nil {
		t.Fatalf("writeAll: %v", err)
	}
	if written != 5 {
		t.Fatalf("written = %d", written)
	}
	if repo.batches["fuel"] != 3 {
		t.Fatalf("batches = %d", repo.batches["fuel"])
	}
	if len(repo.ensured) != 1 || repo.ensured[0] != "fuel" {
		t.Fatalf("ensured = %v", repo.ensured)
	}
	if len(repo.rows["fuel"]) != 5 {
		t.Fatalf("rows = %v", repo.rows["fuel"])
	}
}

func TestWriteAllAbortsOnBatchFailure(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	repo.failTable = "fuel"
	repo.failBatch = 1

	rows := [][]any{
		{"a", "가솔린"}, {"b", "가솔린"}, {"c", "전기"}, {"d", "LPG"}, {"e", "디젤"},
	}
	written, err := writeAll(context.Background(), repo, schema.Fuel, rows, 2)

	var we *WriteError
	if !errors.As(err, &we) {
		t.Fatalf("expected *WriteError, got %v", err)
	}
	if we.Table != "fuel" || we.Batch != 1 {
		t.Fatalf("WriteError = %+v", we)
	}
	if !errors.Is(err, errUnavailable) {
		t.Fatalf("cause not wrapped: %v", err)
	}
	// The first batch committed; nothing after the failed one was attempted.
	if written != 2 {
		t.Fatalf("written = %d", written)
	}
	if repo.batches["fuel"] != 2 {
		t.Fatalf("batches attempted = %d", repo.batches["fuel"])
	}
}

func TestWriteAllEnsureFailure(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	repo.ensureErr = errUnavailable

	written, err := writeAll(context.Background(), repo, schema.Fuel, [][]any{{"a", "b"}}, 10)
	var we *WriteError
	if !errors.As(err, &we) {
		t.Fatalf("expected *WriteError, got %v", err)
	}
	if written != 0 || repo.batches["fuel"] != 0 {
		t.Fatalf("wrote despite missing table: written=%d batches=%d", written, repo.batches["fuel"])
	}
}

func TestNilIfEmpty(t *testing.T) {
	t.Parallel()

	if nilIfEmpty("") != nil {
		t.Fatal("empty string should map to nil")
	}
	if nilIfEmpty("x") != "x" {
		t.Fatal("non-empty string should pass through")
	}
}
