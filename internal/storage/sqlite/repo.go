// Package sqlite implements storage.Repository for SQLite. It backs local
// runs without a MySQL server and the package's own round-trip tests.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"dochicar/internal/schema"
	"dochicar/internal/storage"
)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return New(ctx, cfg)
	})
}

// Repo is a SQLite-backed repository over database/sql.
type Repo struct {
	db *sql.DB
}

// New opens (and creates if needed) the database at cfg.DSN.
func New(ctx context.Context, cfg storage.Config) (*Repo, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// Single writer; the pipeline is single-threaded anyway and SQLite
	// locks the whole database on write.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() {
	r.db.Close()
}

func (r *Repo) EnsureTable(ctx context.Context, t schema.Table) error {
	for _, stmt := range buildCreateSQL(t) {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure table %s: %w", t.Name, err)
		}
	}
	return nil
}

func (r *Repo) UpsertRows(ctx context.Context, t schema.Table, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query, args := buildUpsertSQL(t, rows)

	res, err := r.db.ExecContext(ctx, query, normalizeArgs(args)...)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// buildCreateSQL renders the table plus the unique index carrying the
// conflict target. SQLite needs the index to exist for ON CONFLICT (...) to
// resolve.
func buildCreateSQL(t schema.Table) []string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %q (\n", t.Name)
	for i, c := range t.Columns {
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "  %q %s", c.Name, columnType(c.Type))
	}
	b.WriteString("\n)")

	var ix strings.Builder
	fmt.Fprintf(&ix, "CREATE UNIQUE INDEX IF NOT EXISTS %q ON %q (", "uq_"+t.Name, t.Name)
	for i, k := range t.Key {
		if i > 0 {
			ix.WriteString(", ")
		}
		fmt.Fprintf(&ix, "%q", k)
	}
	ix.WriteString(")")

	return []string{b.String(), ix.String()}
}

// buildUpsertSQL constructs a multi-row INSERT ... ON CONFLICT statement.
// Pure; exercised directly by tests alongside the round-trip tests.
func buildUpsertSQL(t schema.Table, rows [][]any) (string, []any) {
	columns := t.ColumnNames()

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	fmt.Fprintf(&b, "%q", t.Name)
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q", c)
	}
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	for ri, row := range rows {
		if ri > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for ci := range columns {
			if ci > 0 {
				b.WriteString(", ")
			}
			b.WriteString("?")
			args = append(args, row[ci])
		}
		b.WriteString(")")
	}

	b.WriteString(" ON CONFLICT (")
	for i, k := range t.Key {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q", k)
	}
	b.WriteString(")")

	if len(t.Refresh) == 0 {
		b.WriteString(" DO NOTHING")
		return b.String(), args
	}

	b.WriteString(" DO UPDATE SET ")
	for i, c := range t.Refresh {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q = excluded.%q", c, c)
	}
	return b.String(), args
}

// normalizeArgs renders time values as ISO dates. The modernc driver stores
// time.Time in a driver-specific format; dates must compare equal across
// re-runs for the upsert key to hold.
func normalizeArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		if ts, ok := a.(time.Time); ok {
			out[i] = ts.Format("2006-01-02")
			continue
		}
		out[i] = a
	}
	return out
}

func columnType(ct schema.ColType) string {
	switch ct {
	case schema.Real:
		return "REAL"
	case schema.Integer:
		return "INTEGER"
	default:
		return "TEXT"
	}
}
