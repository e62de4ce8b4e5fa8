// Package mysql implements storage.Repository for MySQL, the pipeline's
// primary destination store.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"dochicar/internal/schema"
	"dochicar/internal/storage"
)

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return New(ctx, cfg)
	})
}

const (
	defaultMaxOpen = 5

	// Connections are recycled after an hour and validated before first
	// use. Loads are run interactively and the pool sits idle between
	// them; this guards against the server closing connections under us.
	connMaxLifetime = time.Hour
)

// Repo is a MySQL-backed repository over database/sql.
type Repo struct {
	db *sql.DB
}

// New opens a pool and validates it with a ping.
//
// DSN is in go-sql-driver form, e.g.
// "user:pass@tcp(localhost:3306)/dochicar?parseTime=true".
func New(ctx context.Context, cfg storage.Config) (*Repo, error) {
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mysql open: %w", err)
	}

	maxOpen := cfg.MaxOpen
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpen
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql ping: %w", err)
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() {
	r.db.Close()
}

// EnsureTable creates the table with its natural-key unique constraint.
func (r *Repo) EnsureTable(ctx context.Context, t schema.Table) error {
	_, err := r.db.ExecContext(ctx, buildCreateSQL(t))
	if err != nil {
		return fmt.Errorf("ensure table %s: %w", t.Name, err)
	}
	return nil
}

// UpsertRows writes one batch in a single statement inside a transaction.
func (r *Repo) UpsertRows(ctx context.Context, t schema.Table, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query, args := buildUpsertSQL(t, rows)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// buildCreateSQL renders CREATE TABLE IF NOT EXISTS DDL.
//
// Natural-key columns are VARCHAR rather than TEXT because MySQL cannot put a
// unique key on an unbounded column without a prefix length.
func buildCreateSQL(t schema.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", ident(t.Name))
	for _, c := range t.Columns {
		fmt.Fprintf(&b, "  %s %s,\n", ident(c.Name), columnType(c.Type))
	}
	b.WriteString("  UNIQUE KEY ")
	b.WriteString(ident("uq_" + t.Name))
	b.WriteString(" (")
	for i, k := range t.Key {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(ident(k))
	}
	b.WriteString(")\n) CHARACTER SET utf8mb4")
	return b.String()
}

// buildUpsertSQL constructs a multi-row INSERT and its args.
//
// With refreshable columns it renders ON DUPLICATE KEY UPDATE col=VALUES(col)
// per refresh column; with none it renders INSERT IGNORE, MySQL's idiom for
// insert-if-absent. Kept pure so placeholder layout and clause rendering are
// unit-testable without a server.
func buildUpsertSQL(t schema.Table, rows [][]any) (string, []any) {
	columns := t.ColumnNames()

	var b strings.Builder
	if len(t.Refresh) == 0 {
		b.WriteString("INSERT IGNORE INTO ")
	} else {
		b.WriteString("INSERT INTO ")
	}
	b.WriteString(ident(t.Name))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(ident(c))
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

	if len(t.Refresh) > 0 {
		b.WriteString(" ON DUPLICATE KEY UPDATE ")
		for i, c := range t.Refresh {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s = VALUES(%s)", ident(c), ident(c))
		}
	}

	return b.String(), args
}

func columnType(ct schema.ColType) string {
	switch ct {
	case schema.Real:
		return "DOUBLE"
	case schema.Integer:
		return "BIGINT"
	case schema.Date:
		return "DATE"
	default:
		return "VARCHAR(255)"
	}
}

func ident(name string) string {
	return "`" + name + "`"
}
