// Package storage defines the backend-agnostic repository the upsert loader
// writes through, plus the factory registry backends register into.
package storage

import (
	"context"
	"fmt"
	"sync"

	"dochicar/internal/schema"
)

// Config is the minimal configuration needed to open a repository.
//
// Edge cases:
//   - Kind must be non-empty and must match a registered backend kind.
//   - DSN is passed through to the backend factory; validation is
//     backend-specific.
type Config struct {
	Kind string
	DSN  string

	// MaxOpen bounds the connection pool where the backend supports it.
	// Zero means the backend default.
	MaxOpen int
}

// Repository is the minimal interface the ingestion pipeline needs. Each
// backend implements the upsert semantics in its own idiom (MySQL
// ON DUPLICATE KEY UPDATE, SQLite/Postgres ON CONFLICT ... DO UPDATE).
type Repository interface {
	// Close releases backend resources. Treat as "call once" at shutdown.
	Close()

	// EnsureTable creates the destination table and its natural-key unique
	// constraint if they do not exist yet.
	EnsureTable(ctx context.Context, t schema.Table) error

	// UpsertRows writes one batch. Rows are []any values aligned with
	// t.ColumnNames(); nil is SQL NULL. A row whose natural key is new is
	// inserted; on key collision only t.Refresh columns are overwritten.
	// Returns the backend's affected-row count, which over-reports on some
	// backends (MySQL counts an update as 2); callers wanting exact totals
	// count submitted rows instead.
	UpsertRows(ctx context.Context, t schema.Table, rows [][]any) (int64, error)
}

type factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a backend under a kind (e.g. "mysql", "sqlite"). Call
// from an init() in the backend package. Registering the same kind twice
// panics; failing fast beats ambiguous backend selection.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// New constructs a Repository using the registered backend factory.
func New(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing Kind")
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}
