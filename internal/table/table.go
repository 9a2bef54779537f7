// Package table holds the in-memory columnar representation shared by the
// generation engine, the dataset writer and the SQL loader. A Table is a
// named, ordered set of equal-length typed columns; all engine transforms
// operate on whole columns rather than row structs.
package table

import (
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

type ColumnType int

const (
	String ColumnType = iota
	Float64
	Int64
	Bool
	Date
)

func (t ColumnType) String() string {
	switch t {
	case String:
		return "string"
	case Float64:
		return "float64"
	case Int64:
		return "int64"
	case Bool:
		return "bool"
	case Date:
		return "date"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Column is one typed vector. Exactly one of the value slices is populated,
// matching Type. Valid, when non-nil, marks which rows hold a value; a nil
// Valid means every row is set.
type Column struct {
	Name     string
	Type     ColumnType
	Strings  []string
	Float64s []float64
	Int64s   []int64
	Bools    []bool
	Dates    []time.Time
	Valid    []bool
}

func (c *Column) Len() int {
	switch c.Type {
	case String:
		return len(c.Strings)
	case Float64:
		return len(c.Float64s)
	case Int64:
		return len(c.Int64s)
	case Bool:
		return len(c.Bools)
	case Date:
		return len(c.Dates)
	}
	return 0
}

// IsNull reports whether row i carries no value.
func (c *Column) IsNull(i int) bool {
	return c.Valid != nil && !c.Valid[i]
}

type Table struct {
	Name string
	Cols []Column
}

func New(name string, cols ...Column) (*Table, error) {
	t := &Table{Name: name, Cols: cols}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s has no columns", name)
	}
	n := cols[0].Len()
	for i := range cols {
		if cols[i].Len() != n {
			return nil, fmt.Errorf("table %s: column %s has %d rows, expected %d", name, cols[i].Name, cols[i].Len(), n)
		}
		if cols[i].Valid != nil && len(cols[i].Valid) != n {
			return nil, fmt.Errorf("table %s: column %s validity mask has %d entries, expected %d", name, cols[i].Name, len(cols[i].Valid), n)
		}
	}
	return t, nil
}

func (t *Table) NumRows() int {
	if len(t.Cols) == 0 {
		return 0
	}
	return t.Cols[0].Len()
}

// Column returns the named column or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Cols {
		if t.Cols[i].Name == name {
			return &t.Cols[i]
		}
	}
	return nil
}

func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Cols))
	for i := range t.Cols {
		names[i] = t.Cols[i].Name
	}
	return names
}

func arrowType(t ColumnType) arrow.DataType {
	switch t {
	case String:
		return arrow.BinaryTypes.String
	case Float64:
		return arrow.PrimitiveTypes.Float64
	case Int64:
		return arrow.PrimitiveTypes.Int64
	case Bool:
		return arrow.FixedWidthTypes.Boolean
	case Date:
		return &arrow.TimestampType{Unit: arrow.Millisecond}
	}
	return arrow.BinaryTypes.String
}

// ArrowSchema maps the table onto an arrow schema. Columns with a validity
// mask become nullable fields.
func (t *Table) ArrowSchema() *arrow.Schema {
	fields := make([]arrow.Field, len(t.Cols))
	for i := range t.Cols {
		fields[i] = arrow.Field{
			Name:     t.Cols[i].Name,
			Type:     arrowType(t.Cols[i].Type),
			Nullable: t.Cols[i].Valid != nil,
		}
	}
	return arrow.NewSchema(fields, nil)
}

// Record materializes the whole table as a single arrow record. The caller
// owns the returned record and must Release it.
func (t *Table) Record(mem memory.Allocator) arrow.Record {
	schema := t.ArrowSchema()
	n := t.NumRows()
	cols := make([]arrow.Array, len(t.Cols))

	for i := range t.Cols {
		c := &t.Cols[i]
		switch c.Type {
		case String:
			b := array.NewStringBuilder(mem)
			for j := 0; j < n; j++ {
				if c.IsNull(j) {
					b.AppendNull()
				} else {
					b.Append(c.Strings[j])
				}
			}
			cols[i] = b.NewArray()
			b.Release()
		case Float64:
			b := array.NewFloat64Builder(mem)
			for j := 0; j < n; j++ {
				if c.IsNull(j) {
					b.AppendNull()
				} else {
					b.Append(c.Float64s[j])
				}
			}
			cols[i] = b.NewArray()
			b.Release()
		case Int64:
			b := array.NewInt64Builder(mem)
			for j := 0; j < n; j++ {
				if c.IsNull(j) {
					b.AppendNull()
				} else {
					b.Append(c.Int64s[j])
				}
			}
			cols[i] = b.NewArray()
			b.Release()
		case Bool:
			b := array.NewBooleanBuilder(mem)
			for j := 0; j < n; j++ {
				if c.IsNull(j) {
					b.AppendNull()
				} else {
					b.Append(c.Bools[j])
				}
			}
			cols[i] = b.NewArray()
			b.Release()
		case Date:
			b := array.NewTimestampBuilder(mem, &arrow.TimestampType{Unit: arrow.Millisecond})
			for j := 0; j < n; j++ {
				if c.IsNull(j) {
					b.AppendNull()
				} else {
					b.Append(arrow.Timestamp(c.Dates[j].UnixMilli()))
				}
			}
			cols[i] = b.NewArray()
			b.Release()
		}
	}

	rec := array.NewRecord(schema, cols, int64(n))
	for _, col := range cols {
		col.Release()
	}
	return rec
}

// FromArrow converts an arrow table (as read back from parquet) into the
// in-memory representation. Unsupported arrow types are rejected.
func FromArrow(name string, at arrow.Table) (*Table, error) {
	n := int(at.NumRows())
	cols := make([]Column, at.NumCols())

	for i := 0; i < int(at.NumCols()); i++ {
		field := at.Schema().Field(i)
		col := Column{Name: field.Name}
		chunks := at.Column(i).Data().Chunks()

		hasNulls := false
		valid := make([]bool, 0, n)

		switch field.Type.ID() {
		case arrow.STRING:
			col.Type = String
			col.Strings = make([]string, 0, n)
			for _, chunk := range chunks {
				a := chunk.(*array.String)
				for j := 0; j < a.Len(); j++ {
					if a.IsNull(j) {
						hasNulls = true
						valid = append(valid, false)
						col.Strings = append(col.Strings, "")
					} else {
						valid = append(valid, true)
						col.Strings = append(col.Strings, a.Value(j))
					}
				}
			}
		case arrow.FLOAT64:
			col.Type = Float64
			col.Float64s = make([]float64, 0, n)
			for _, chunk := range chunks {
				a := chunk.(*array.Float64)
				for j := 0; j < a.Len(); j++ {
					if a.IsNull(j) {
						hasNulls = true
						valid = append(valid, false)
						col.Float64s = append(col.Float64s, 0)
					} else {
						valid = append(valid, true)
						col.Float64s = append(col.Float64s, a.Value(j))
					}
				}
			}
		case arrow.INT64:
			col.Type = Int64
			col.Int64s = make([]int64, 0, n)
			for _, chunk := range chunks {
				a := chunk.(*array.Int64)
				for j := 0; j < a.Len(); j++ {
					if a.IsNull(j) {
						hasNulls = true
						valid = append(valid, false)
						col.Int64s = append(col.Int64s, 0)
					} else {
						valid = append(valid, true)
						col.Int64s = append(col.Int64s, a.Value(j))
					}
				}
			}
		case arrow.BOOL:
			col.Type = Bool
			col.Bools = make([]bool, 0, n)
			for _, chunk := range chunks {
				a := chunk.(*array.Boolean)
				for j := 0; j < a.Len(); j++ {
					if a.IsNull(j) {
						hasNulls = true
						valid = append(valid, false)
						col.Bools = append(col.Bools, false)
					} else {
						valid = append(valid, true)
						col.Bools = append(col.Bools, a.Value(j))
					}
				}
			}
		case arrow.TIMESTAMP:
			col.Type = Date
			col.Dates = make([]time.Time, 0, n)
			unit := field.Type.(*arrow.TimestampType).Unit
			for _, chunk := range chunks {
				a := chunk.(*array.Timestamp)
				for j := 0; j < a.Len(); j++ {
					if a.IsNull(j) {
						hasNulls = true
						valid = append(valid, false)
						col.Dates = append(col.Dates, time.Time{})
					} else {
						valid = append(valid, true)
						col.Dates = append(col.Dates, a.Value(j).ToTime(unit).UTC())
					}
				}
			}
		default:
			return nil, fmt.Errorf("table %s: column %s has unsupported arrow type %s", name, field.Name, field.Type)
		}

		if hasNulls {
			col.Valid = valid
		}
		cols[i] = col
	}

	return New(name, cols...)
}
