package writer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/shopspring/decimal"

	"IndexHarvester/internal/model"
)

func date(s string) time.Time {
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func cell(v string) decimal.NullDecimal {
	if v == "" {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}

func sampleTable() *model.Table {
	return &model.Table{
		Dates:   []time.Time{date("2024-01-02"), date("2024-01-03")},
		Tickers: []model.Ticker{"BRK-B", "AAPL"},
		Rows: [][]decimal.NullDecimal{
			{cell("360.1"), cell("")},
			{cell("361"), cell("184.29")},
		},
	}
}

func TestEncodeCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeCSV(&buf, sampleTable()); err != nil {
		t.Fatalf("EncodeCSV: %v", err)
	}
	want := "Date,BRK-B,AAPL\n" +
		"2024-01-02,360.1,\n" +
		"2024-01-03,361,184.29\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestCSVWriter_Deterministic(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a", "closes.csv")
	b := filepath.Join(dir, "b", "closes.csv")

	w, err := New("csv")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Write(a, sampleTable()); err != nil {
		t.Fatalf("Write a: %v", err)
	}
	if err := w.Write(b, sampleTable()); err != nil {
		t.Fatalf("Write b: %v", err)
	}

	ba, _ := os.ReadFile(a)
	bb, _ := os.ReadFile(b)
	if !bytes.Equal(ba, bb) {
		t.Error("identical tables should produce byte-identical files")
	}

	entries, _ := os.ReadDir(filepath.Dir(a))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestParquetWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "closes.parquet")
	w, err := New("parquet")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Write(path, sampleTable()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	info, _ := f.Stat()

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if pf.NumRows() != 2 {
		t.Errorf("expected 2 rows, got %d", pf.NumRows())
	}
	if _, ok := pf.Schema().Lookup("BRK-B"); !ok {
		t.Error("missing BRK-B column")
	}
}

func TestParquetWriter_DuplicateColumn(t *testing.T) {
	tbl := sampleTable()
	tbl.Tickers = []model.Ticker{"AAPL", "AAPL"}
	var buf bytes.Buffer
	if err := EncodeParquet(&buf, tbl); err == nil {
		t.Fatal("expected duplicate column error")
	}
}

func TestNew_UnknownFormat(t *testing.T) {
	if _, err := New("xlsx"); err == nil {
		t.Fatal("expected error")
	}
}
