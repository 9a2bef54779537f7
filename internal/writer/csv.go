package writer

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/pi22by7/sap-analytics-platform/internal/table"
)

const csvDateLayout = "2006-01-02"

func writeCSV(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.ColumnNames()); err != nil {
		return err
	}

	n := t.NumRows()
	row := make([]string, len(t.Cols))
	for i := 0; i < n; i++ {
		for j := range t.Cols {
			c := &t.Cols[j]
			if c.IsNull(i) {
				row[j] = ""
				continue
			}
			switch c.Type {
			case table.String:
				row[j] = c.Strings[i]
			case table.Float64:
				row[j] = strconv.FormatFloat(c.Float64s[i], 'f', -1, 64)
			case table.Int64:
				row[j] = strconv.FormatInt(c.Int64s[i], 10)
			case table.Bool:
				row[j] = strconv.FormatBool(c.Bools[i])
			case table.Date:
				row[j] = c.Dates[i].Format(csvDateLayout)
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
