package parser_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/smartbiz-cli/internal/parser"
)

func TestReadFileCSV_SniffsSemicolon(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "penjualan.csv")
	content := "\ufeffTanggal;Nama Customer;Nama Produk;Kategori;Jumlah;Harga;Total\n" +
		"2024-01-01;Budi;Kopi Susu;Minuman;2;15.000;30.000\n" +
		"\n" +
		"2024-01-02;Sari;Roti Bakar;Makanan;1;20.000;20.000\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tb, err := parser.ReadFile(p, parser.Options{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if tb.Name != "penjualan.csv" {
		t.Fatalf("unexpected name %q", tb.Name)
	}
	if len(tb.Columns) != 7 || tb.Columns[0] != "Tanggal" {
		t.Fatalf("expected BOM-free header, got %q", tb.Columns)
	}
	if len(tb.Rows) != 2 {
		t.Fatalf("expected blank line skipped, got %d rows", len(tb.Rows))
	}
	if tb.Rows[1][2] != "Roti Bakar" {
		t.Fatalf("unexpected cell %q", tb.Rows[1][2])
	}
}

func TestReadCSV_MaxRowsAndExplicitDelimiter(t *testing.T) {
	content := "a\tb\n1\t2\n3\t4\n5\t6\n"
	tb, err := parser.Read("x.tsv", strings.NewReader(content), parser.Options{Delimiter: '\t', MaxRows: 2})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(tb.Rows) != 2 || tb.Rows[1][1] != "4" {
		t.Fatalf("unexpected rows: %v", tb.Rows)
	}
}

func TestReadCSV_EmptyFile(t *testing.T) {
	tb, err := parser.Read("empty.csv", strings.NewReader(""), parser.Options{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(tb.Columns) != 0 || len(tb.Rows) != 0 {
		t.Fatalf("expected empty table, got %+v", tb)
	}
}
