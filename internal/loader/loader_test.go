package loader

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pi22by7/sap-analytics-platform/internal/table"
	"github.com/pi22by7/sap-analytics-platform/internal/writer"
)

func openSqlite(t *testing.T) *Loader {
	t.Helper()
	db, err := Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("opening in-memory sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, "sqlite")
}

func sampleTable(t *testing.T, rows int) *table.Table {
	t.Helper()
	ids := make([]string, rows)
	qty := make([]int64, rows)
	price := make([]float64, rows)
	when := make([]time.Time, rows)
	ref := make([]string, rows)
	valid := make([]bool, rows)
	for i := 0; i < rows; i++ {
		ids[i] = fmt.Sprintf("R%04d", i)
		qty[i] = int64(i)
		price[i] = float64(i) * 1.5
		when[i] = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i%365)
		if i%3 == 0 {
			valid[i] = true
			ref[i] = "ref"
		}
	}
	tbl, err := table.New("LOAD_SAMPLE",
		table.Column{Name: "ID", Type: table.String, Strings: ids},
		table.Column{Name: "QTY", Type: table.Int64, Int64s: qty},
		table.Column{Name: "PRICE", Type: table.Float64, Float64s: price},
		table.Column{Name: "DAY", Type: table.Date, Dates: when},
		table.Column{Name: "REF", Type: table.String, Strings: ref, Valid: valid},
	)
	if err != nil {
		t.Fatalf("building sample table: %v", err)
	}
	return tbl
}

func TestOpenRejectsUnknownProvider(t *testing.T) {
	if _, err := Open("oracle", "whatever"); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestLoadTable(t *testing.T) {
	l := openSqlite(t)
	ctx := context.Background()

	// More rows than one insert batch, to cover the batching path.
	tbl := sampleTable(t, 1203)

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := l.LoadTable(ctx, tx, tbl); err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	var count int
	if err := l.db.QueryRow("SELECT COUNT(*) FROM LOAD_SAMPLE").Scan(&count); err != nil {
		t.Fatalf("count query: %v", err)
	}
	if count != 1203 {
		t.Errorf("loaded %d rows, want 1203", count)
	}

	var nulls int
	if err := l.db.QueryRow("SELECT COUNT(*) FROM LOAD_SAMPLE WHERE REF IS NULL").Scan(&nulls); err != nil {
		t.Fatalf("null count query: %v", err)
	}
	if want := 1203 - (1203+2)/3; nulls != want {
		t.Errorf("found %d null REF rows, want %d", nulls, want)
	}

	var day string
	if err := l.db.QueryRow("SELECT DAY FROM LOAD_SAMPLE WHERE QTY = 0").Scan(&day); err != nil {
		t.Fatalf("day query: %v", err)
	}
	if day != "2023-01-01 00:00:00" {
		t.Errorf("date stored as %q", day)
	}
}

func TestLoadTableReplacesExisting(t *testing.T) {
	l := openSqlite(t)
	ctx := context.Background()

	for _, rows := range []int{20, 7} {
		tx, err := l.db.BeginTx(ctx, nil)
		if err != nil {
			t.Fatalf("begin: %v", err)
		}
		if err := l.LoadTable(ctx, tx, sampleTable(t, rows)); err != nil {
			t.Fatalf("LoadTable: %v", err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("commit: %v", err)
		}
	}

	var count int
	if err := l.db.QueryRow("SELECT COUNT(*) FROM LOAD_SAMPLE").Scan(&count); err != nil {
		t.Fatalf("count query: %v", err)
	}
	if count != 7 {
		t.Errorf("reload left %d rows, want 7", count)
	}
}

func TestLoadDataset(t *testing.T) {
	dir := t.TempDir()
	w, err := writer.New(dir, "parquet")
	if err != nil {
		t.Fatalf("writer.New: %v", err)
	}
	if _, err := w.WriteDataset(7, []*table.Table{sampleTable(t, 40)}); err != nil {
		t.Fatalf("WriteDataset: %v", err)
	}

	l := openSqlite(t)
	counts, err := l.LoadDataset(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if counts["LOAD_SAMPLE"] != 40 {
		t.Errorf("loaded counts %v, want LOAD_SAMPLE:40", counts)
	}
}

func TestLoadDatasetRejectsCSV(t *testing.T) {
	dir := t.TempDir()
	w, err := writer.New(dir, "csv")
	if err != nil {
		t.Fatalf("writer.New: %v", err)
	}
	if _, err := w.WriteDataset(7, []*table.Table{sampleTable(t, 5)}); err != nil {
		t.Fatalf("WriteDataset: %v", err)
	}

	l := openSqlite(t)
	if _, err := l.LoadDataset(context.Background(), dir); err == nil {
		t.Fatal("expected error loading a csv dataset")
	}
}
