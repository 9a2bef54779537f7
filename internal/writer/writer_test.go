package writer

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pi22by7/sap-analytics-platform/internal/table"
)

func sampleTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New("SAMPLE",
		table.Column{Name: "ID", Type: table.String, Strings: []string{"A1", "A2", "A3"}},
		table.Column{Name: "QTY", Type: table.Int64, Int64s: []int64{5, 10, 15}},
		table.Column{Name: "PRICE", Type: table.Float64, Float64s: []float64{9.99, 0.5, 120}},
		table.Column{Name: "OK", Type: table.Bool, Bools: []bool{true, true, false}},
		table.Column{Name: "DAY", Type: table.Date, Dates: []time.Time{
			time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2022, 3, 2, 0, 0, 0, 0, time.UTC),
			time.Date(2022, 3, 3, 0, 0, 0, 0, time.UTC),
		}},
		table.Column{Name: "REF", Type: table.String, Strings: []string{"r1", "", "r3"}, Valid: []bool{true, false, true}},
	)
	if err != nil {
		t.Fatalf("building sample table: %v", err)
	}
	return tbl
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(t.TempDir(), "xlsx"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestParquetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, "parquet")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tbl := sampleTable(t)
	if _, err := w.WriteTable(tbl); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}

	back, err := ReadTable(dir, "SAMPLE")
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if back.NumRows() != 3 {
		t.Fatalf("read back %d rows, want 3", back.NumRows())
	}

	if got := back.Column("ID").Strings[2]; got != "A3" {
		t.Errorf("ID row 2 = %q, want A3", got)
	}
	if got := back.Column("QTY").Int64s[1]; got != 10 {
		t.Errorf("QTY row 1 = %d, want 10", got)
	}
	if got := back.Column("PRICE").Float64s[0]; got != 9.99 {
		t.Errorf("PRICE row 0 = %v, want 9.99", got)
	}
	if got := back.Column("OK").Bools[2]; got {
		t.Error("OK row 2 should be false")
	}
	if got := back.Column("DAY").Dates[1]; !got.Equal(time.Date(2022, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("DAY row 1 = %v", got)
	}
	ref := back.Column("REF")
	if !ref.IsNull(1) || ref.IsNull(0) {
		t.Error("REF nullability lost in round trip")
	}
}

func TestWriteDatasetManifest(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, "parquet")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	m, err := w.WriteDataset(99, []*table.Table{sampleTable(t)})
	if err != nil {
		t.Fatalf("WriteDataset: %v", err)
	}
	if m.Seed != 99 || m.Format != "parquet" || len(m.Tables) != 1 {
		t.Fatalf("unexpected manifest %+v", m)
	}

	back, err := ReadManifest(dir)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if back.Seed != 99 || back.Format != "parquet" {
		t.Fatalf("manifest round trip changed header: %+v", back)
	}
	mt := back.Tables[0]
	if mt.Name != "SAMPLE" || mt.File != "SAMPLE.parquet" || mt.Rows != 3 {
		t.Fatalf("unexpected manifest table entry %+v", mt)
	}
	if len(mt.Columns) != 6 || mt.Columns[0] != "ID" {
		t.Fatalf("unexpected manifest columns %v", mt.Columns)
	}

	if _, err := os.Stat(filepath.Join(dir, "SAMPLE.parquet")); err != nil {
		t.Fatalf("dataset file missing: %v", err)
	}
}

func TestCSVOutput(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, "csv")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	path, err := w.WriteTable(sampleTable(t))
	if err != nil {
		t.Fatalf("WriteTable: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("csv has %d rows, want header plus 3", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][5] != "REF" {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][4] != "2022-03-01" {
		t.Errorf("date formatted as %q, want 2022-03-01", rows[1][4])
	}
	if rows[2][5] != "" {
		t.Errorf("null cell rendered as %q, want empty", rows[2][5])
	}
	if rows[3][3] != "false" {
		t.Errorf("bool rendered as %q, want false", rows[3][3])
	}
}
