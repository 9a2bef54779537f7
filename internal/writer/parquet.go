package writer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/pi22by7/sap-analytics-platform/internal/table"
)

func writeParquet(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	mem := memory.NewGoAllocator()
	pw, err := pqarrow.NewFileWriter(t.ArrowSchema(), f, nil,
		pqarrow.NewArrowWriterProperties(pqarrow.WithAllocator(mem)))
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}

	rec := t.Record(mem)
	defer rec.Release()

	if err := pw.Write(rec); err != nil {
		pw.Close()
		return fmt.Errorf("failed to write record batch: %w", err)
	}
	return pw.Close()
}

// ReadTable loads one table of a written parquet dataset back into memory.
func ReadTable(dir, name string) (*table.Table, error) {
	path := filepath.Join(dir, name+".parquet")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	pr, err := file.NewParquetReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file %s: %w", path, err)
	}
	defer pr.Close()

	mem := memory.NewGoAllocator()
	fr, err := pqarrow.NewFileReader(pr, pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader for %s: %w", path, err)
	}

	at, err := fr.ReadTable(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", name, err)
	}
	defer at.Release()

	return table.FromArrow(name, at)
}
