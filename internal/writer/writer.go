// Package writer persists completed tables as immutable columnar datasets,
// one file per table keyed by table name, plus a manifest describing the
// run. Each run overwrites any prior dataset of the same name.
package writer

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pi22by7/sap-analytics-platform/internal/table"
)

const ManifestName = "manifest.yaml"

type Manifest struct {
	Seed   int64           `yaml:"seed"`
	Format string          `yaml:"format"`
	Tables []ManifestTable `yaml:"tables"`
}

type ManifestTable struct {
	Name    string   `yaml:"name"`
	File    string   `yaml:"file"`
	Rows    int      `yaml:"rows"`
	Columns []string `yaml:"columns"`
}

type Writer struct {
	dir    string
	format string
}

func New(dir, format string) (*Writer, error) {
	switch format {
	case "parquet", "csv":
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return &Writer{dir: dir, format: format}, nil
}

func (w *Writer) extension() string {
	if w.format == "csv" {
		return ".csv"
	}
	return ".parquet"
}

// WriteTable persists one table, replacing any previous file for its name.
func (w *Writer) WriteTable(t *table.Table) (string, error) {
	path := filepath.Join(w.dir, t.Name+w.extension())
	var err error
	if w.format == "csv" {
		err = writeCSV(path, t)
	} else {
		err = writeParquet(path, t)
	}
	if err != nil {
		return "", fmt.Errorf("failed to write table %s: %w", t.Name, err)
	}
	return path, nil
}

// WriteDataset persists every table and the manifest.
func (w *Writer) WriteDataset(seed int64, tables []*table.Table) (*Manifest, error) {
	m := &Manifest{Seed: seed, Format: w.format}
	for _, t := range tables {
		path, err := w.WriteTable(t)
		if err != nil {
			return nil, err
		}
		m.Tables = append(m.Tables, ManifestTable{
			Name:    t.Name,
			File:    filepath.Base(path),
			Rows:    t.NumRows(),
			Columns: t.ColumnNames(),
		})
	}
	if err := w.writeManifest(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (w *Writer) writeManifest(m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(w.dir, ManifestName), data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads the manifest of a previously written dataset.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest in %s: %w", dir, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}
