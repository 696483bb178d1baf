package writer

import (
	"encoding/csv"
	"fmt"
	"io"

	"IndexHarvester/internal/model"
)

// CSVWriter writes comma separated values: a Date column followed by one
// column per ticker. Absent closes are empty fields.
type CSVWriter struct{}

func (CSVWriter) Format() string { return "csv" }

func (CSVWriter) Write(path string, t *model.Table) error {
	return writeAtomic(path, func(w io.Writer) error { return EncodeCSV(w, t) })
}

// EncodeCSV writes the table to w. Output depends only on the table contents.
func EncodeCSV(w io.Writer, t *model.Table) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(t.Tickers)+1)
	header = append(header, "Date")
	for _, tk := range t.Tickers {
		header = append(header, tk.String())
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(header))
	for i, d := range t.Dates {
		record[0] = d.Format(model.DateLayout)
		for j, cell := range t.Rows[i] {
			record[j+1] = ""
			if cell.Valid {
				record[j+1] = cell.Decimal.String()
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %s: %w", record[0], err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
