// Package writer serializes the combined table to disk.
package writer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"IndexHarvester/internal/model"
)

// Writer writes a combined table to a file.
type Writer interface {
	Write(path string, t *model.Table) error
	Format() string
}

// New returns the writer for an output format name.
func New(format string) (Writer, error) {
	switch format {
	case "", "csv":
		return CSVWriter{}, nil
	case "parquet":
		return ParquetWriter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// writeAtomic creates the parent directory, streams into a temp file next to
// path and renames it into place, so readers never see a partial file.
func writeAtomic(path string, fill func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := fill(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}
