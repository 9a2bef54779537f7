// Package loader bulk-loads a written dataset into a SQL database so the
// generated snapshot can back SQL-based analytics. Tables are dropped and
// recreated on each load, mirroring the writer's overwrite semantics.
package loader

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pi22by7/sap-analytics-platform/internal/table"
	"github.com/pi22by7/sap-analytics-platform/internal/writer"
)

const batchSize = 500

// Open connects using the driver matching the provider name.
func Open(provider, url string) (*sql.DB, error) {
	var driverName string
	switch provider {
	case "postgresql", "postgres":
		driverName = "pgx"
	case "mysql":
		driverName = "mysql"
	case "sqlite", "sqlite3":
		driverName = "sqlite3"
	default:
		return nil, fmt.Errorf("unsupported database provider: %s", provider)
	}

	db, err := sql.Open(driverName, url)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

type Loader struct {
	db       *sql.DB
	provider string
}

func New(db *sql.DB, provider string) *Loader {
	return &Loader{db: db, provider: provider}
}

func (l *Loader) placeholder() sq.PlaceholderFormat {
	if l.provider == "postgresql" || l.provider == "postgres" {
		return sq.Dollar
	}
	return sq.Question
}

func (l *Loader) columnDDL(t table.ColumnType) string {
	switch t {
	case table.Float64:
		if l.provider == "mysql" {
			return "DOUBLE"
		}
		return "DOUBLE PRECISION"
	case table.Int64:
		return "BIGINT"
	case table.Bool:
		return "BOOLEAN"
	case table.Date:
		switch l.provider {
		case "sqlite", "sqlite3":
			return "TEXT"
		case "mysql":
			return "DATETIME"
		default:
			return "TIMESTAMP"
		}
	default:
		if l.provider == "mysql" {
			return "VARCHAR(255)"
		}
		return "TEXT"
	}
}

func (l *Loader) createTable(ctx context.Context, tx *sql.Tx, t *table.Table) error {
	cols := make([]string, len(t.Cols))
	for i := range t.Cols {
		null := " NOT NULL"
		if t.Cols[i].Valid != nil {
			null = ""
		}
		cols[i] = fmt.Sprintf("%s %s%s", t.Cols[i].Name, l.columnDDL(t.Cols[i].Type), null)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", t.Name)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", t.Name, err)
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", t.Name, strings.Join(cols, ", "))
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create table %s: %w", t.Name, err)
	}
	return nil
}

func (l *Loader) value(t *table.Table, col, row int) interface{} {
	c := &t.Cols[col]
	if c.IsNull(row) {
		return nil
	}
	switch c.Type {
	case table.String:
		return c.Strings[row]
	case table.Float64:
		return c.Float64s[row]
	case table.Int64:
		return c.Int64s[row]
	case table.Bool:
		return c.Bools[row]
	case table.Date:
		if l.provider == "sqlite" || l.provider == "sqlite3" {
			return c.Dates[row].Format("2006-01-02 15:04:05")
		}
		return c.Dates[row]
	}
	return nil
}

// LoadTable inserts every row of the table inside the given transaction,
// batched to keep statement sizes bounded.
func (l *Loader) LoadTable(ctx context.Context, tx *sql.Tx, t *table.Table) error {
	if err := l.createTable(ctx, tx, t); err != nil {
		return err
	}

	n := t.NumRows()
	names := t.ColumnNames()
	for start := 0; start < n; start += batchSize {
		end := start + batchSize
		if end > n {
			end = n
		}
		builder := sq.Insert(t.Name).Columns(names...).PlaceholderFormat(l.placeholder())
		for row := start; row < end; row++ {
			vals := make([]interface{}, len(names))
			for col := range names {
				vals[col] = l.value(t, col, row)
			}
			builder = builder.Values(vals...)
		}
		query, args, err := builder.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert for %s: %w", t.Name, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert batch into %s: %w", t.Name, err)
		}
	}
	return nil
}

// LoadDataset reads the manifest in dir and loads every listed table in one
// transaction. Returns per-table row counts.
func (l *Loader) LoadDataset(ctx context.Context, dir string) (map[string]int, error) {
	m, err := writer.ReadManifest(dir)
	if err != nil {
		return nil, err
	}
	if m.Format != "parquet" {
		return nil, fmt.Errorf("dataset format %s cannot be loaded, regenerate with parquet", m.Format)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	counts := make(map[string]int, len(m.Tables))
	for _, mt := range m.Tables {
		t, err := writer.ReadTable(dir, mt.Name)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		if err := l.LoadTable(ctx, tx, t); err != nil {
			tx.Rollback()
			return nil, err
		}
		counts[mt.Name] = t.NumRows()
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit load: %w", err)
	}
	return counts, nil
}
