package storage

import (
	"context"
	"strings"
	"testing"

	"dochicar/internal/schema"
)

type stubRepo struct{}

func (stubRepo) Close()                                          {}
func (stubRepo) EnsureTable(context.Context, schema.Table) error { return nil }
func (stubRepo) UpsertRows(context.Context, schema.Table, [][]any) (int64, error) {
	return 0, nil
}

func stubFactory(_ context.Context, _ Config) (Repository, error) {
	return stubRepo{}, nil
}

func TestRegisterAndNew(t *testing.T) {
	Register("stub", stubFactory)

	repo, err := New(context.Background(), Config{Kind: "stub", DSN: "ignored"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if repo == nil {
		t.Fatal("nil repository")
	}
}

func TestNewUnknownKind(t *testing.T) {
	_, err := New(context.Background(), Config{Kind: "no-such-backend"})
	if err == nil || !strings.Contains(err.Error(), "no-such-backend") {
		t.Fatalf("err = %v", err)
	}
}

func TestNewMissingKind(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for empty kind")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("stub-dup", stubFactory)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	Register("stub-dup", stubFactory)
}

func TestRegisterEmptyKindPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on empty kind")
		}
	}()
	Register("", stubFactory)
}
