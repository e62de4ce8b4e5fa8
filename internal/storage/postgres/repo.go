// Package postgres implements storage.Repository for Postgres via pgx.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"dochicar/internal/schema"
	"dochicar/internal/storage"
)

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return New(ctx, cfg)
	})
}

// Repo is a Postgres-backed repository over a pgx pool.
type Repo struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg storage.Config) (*Repo, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &Repo{pool: pool}, nil
}

func (r *Repo) Close() {
	r.pool.Close()
}

func (r *Repo) EnsureTable(ctx context.Context, t schema.Table) error {
	if _, err := r.pool.Exec(ctx, buildCreateSQL(t)); err != nil {
		return fmt.Errorf("ensure table %s: %w", t.Name, err)
	}
	return nil
}

func (r *Repo) UpsertRows(ctx context.Context, t schema.Table, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query, args := buildUpsertSQL(t, rows)

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func buildCreateSQL(t schema.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", pgIdent(t.Name))
	for _, c := range t.Columns {
		fmt.Fprintf(&b, "  %s %s,\n", pgIdent(c.Name), columnType(c.Type))
	}
	fmt.Fprintf(&b, "  CONSTRAINT %s UNIQUE (", pgIdent("uq_"+t.Name))
	for i, k := range t.Key {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgIdent(k))
	}
	b.WriteString(")\n)")
	return b.String()
}

// buildUpsertSQL constructs a single multi-row INSERT ... ON CONFLICT
// statement with numbered placeholders.
//
// Pure and deterministic so placeholder numbering and conflict-clause
// rendering are unit-testable without a database.
func buildUpsertSQL(t schema.Table, rows [][]any) (string, []any) {
	columns := t.ColumnNames()

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(pgIdent(t.Name))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgIdent(c))
	}
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	ph := 1
	for ri, row := range rows {
		if ri > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for ci := range columns {
			if ci > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", ph)
			ph++
			args = append(args, row[ci])
		}
		b.WriteString(")")
	}

	b.WriteString(" ON CONFLICT (")
	for i, k := range t.Key {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgIdent(k))
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
		fmt.Fprintf(&b, "%s = excluded.%s", pgIdent(c), pgIdent(c))
	}
	return b.String(), args
}

func columnType(ct schema.ColType) string {
	switch ct {
	case schema.Real:
		return "DOUBLE PRECISION"
	case schema.Integer:
		return "BIGINT"
	case schema.Date:
		return "DATE"
	default:
		return "TEXT"
	}
}

func pgIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
