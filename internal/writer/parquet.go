package writer

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"IndexHarvester/internal/model"
)

// ParquetWriter writes a required Date string column and one optional
// DOUBLE column per ticker; absent closes are nulls.
type ParquetWriter struct{}

func (ParquetWriter) Format() string { return "parquet" }

func (ParquetWriter) Write(path string, t *model.Table) error {
	return writeAtomic(path, func(w io.Writer) error { return EncodeParquet(w, t) })
}

// EncodeParquet writes the table to w as a single parquet file.
func EncodeParquet(w io.Writer, t *model.Table) error {
	group := parquet.Group{"Date": parquet.String()}
	for _, tk := range t.Tickers {
		if _, dup := group[tk.String()]; dup {
			return fmt.Errorf("duplicate column %q", tk)
		}
		group[tk.String()] = parquet.Optional(parquet.Leaf(parquet.DoubleType))
	}
	schema := parquet.NewSchema("closes", group)

	// the schema orders leaves by name, so look each column index up
	dateCol, _ := schema.Lookup("Date")
	cols := make([]int, len(t.Tickers))
	for j, tk := range t.Tickers {
		leaf, ok := schema.Lookup(tk.String())
		if !ok {
			return fmt.Errorf("column %q missing from schema", tk)
		}
		cols[j] = leaf.ColumnIndex
	}

	rows := make([]parquet.Row, len(t.Dates))
	for i, d := range t.Dates {
		row := make(parquet.Row, len(t.Tickers)+1)
		row[dateCol.ColumnIndex] = parquet.ValueOf(d.Format(model.DateLayout)).Level(0, 0, dateCol.ColumnIndex)
		for j, cell := range t.Rows[i] {
			if cell.Valid {
				row[cols[j]] = parquet.ValueOf(cell.Decimal.InexactFloat64()).Level(0, 1, cols[j])
			} else {
				row[cols[j]] = parquet.NullValue().Level(0, 0, cols[j])
			}
		}
		rows[i] = row
	}

	pw := parquet.NewWriter(w, schema)
	if _, err := pw.WriteRows(rows); err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}
