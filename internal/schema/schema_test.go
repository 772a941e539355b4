package schema

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestValidateAcceptsSupersetOfRequired(t *testing.T) {
	cols := append([]string{"Catatan"}, Required...)
	cols = append(cols, "Cabang")
	if err := Validate(cols); err != nil {
		t.Fatalf("expected valid schema, got %v", err)
	}
}

func TestValidateRejectsEachMissingColumn(t *testing.T) {
	for i, drop := range Required {
		cols := make([]string, 0, len(Required)-1)
		cols = append(cols, Required[:i]...)
		cols = append(cols, Required[i+1:]...)
		err := Validate(cols)
		var se *SchemaError
		if !errors.As(err, &se) {
			t.Fatalf("dropping %q: expected *SchemaError, got %v", drop, err)
		}
		if len(se.Missing) != 1 || se.Missing[0] != drop {
			t.Fatalf("dropping %q: unexpected missing list %v", drop, se.Missing)
		}
	}
}

func TestValidateIsCaseSensitive(t *testing.T) {
	cols := []string{"tanggal", ColCustomer, ColProduct, ColCategory, ColQuantity, ColUnitPrice, ColTotal}
	var se *SchemaError
	if err := Validate(cols); !errors.As(err, &se) {
		t.Fatalf("expected schema error for lower-case column, got %v", err)
	}
	if se.Error() != "missing required columns: Tanggal" {
		t.Fatalf("unexpected message: %q", se.Error())
	}
}

func TestValidateEmptyHeaderListsAllColumns(t *testing.T) {
	var se *SchemaError
	if err := Validate(nil); !errors.As(err, &se) {
		t.Fatalf("expected schema error, got %v", err)
	}
	if len(se.Missing) != len(Required) {
		t.Fatalf("expected %d missing, got %v", len(Required), se.Missing)
	}
}

func TestTableIndexAndCell(t *testing.T) {
	tb := &Table{Columns: []string{"a", "b", "a"}, Rows: [][]string{{" x ", "y"}}}
	idx := tb.Index()
	if idx["a"] != 0 || idx["b"] != 1 {
		t.Fatalf("unexpected index: %v", idx)
	}
	if got := tb.Cell(0, 0); got != "x" {
		t.Fatalf("expected trimmed cell, got %q", got)
	}
	if got := tb.Cell(0, 2); got != "" {
		t.Fatalf("expected empty for short row, got %q", got)
	}
	if got := tb.Cell(3, 0); got != "" {
		t.Fatalf("expected empty for missing row, got %q", got)
	}
}

func TestTableNumericMarks(t *testing.T) {
	tb := &Table{}
	if tb.IsNumeric(0, 0) {
		t.Fatal("zero table has no numeric cells")
	}
	tb.MarkNumeric(1, 2)
	if !tb.IsNumeric(1, 2) || tb.IsNumeric(2, 1) {
		t.Fatal("numeric mark not tracked per cell")
	}
}

func TestWriteTemplateCSVExactBytes(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTemplateCSV(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "Tanggal,Nama Customer,Nama Produk,Kategori,Jumlah,Harga,Total\n" +
		"2024-01-01,Contoh Pelanggan,Contoh Produk,Minuman,5,10000,50000\n"
	if buf.String() != want {
		t.Fatalf("template mismatch:\n got %q\nwant %q", buf.String(), want)
	}
}

func TestWriteTemplateXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTemplateXLSX(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(TemplateSheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for i, c := range Required {
		if rows[0][i] != c {
			t.Fatalf("header %d: got %q want %q", i, rows[0][i], c)
		}
	}
	if rows[1][1] != "Contoh Pelanggan" || rows[1][4] != "5" || rows[1][6] != "50000" {
		t.Fatalf("unexpected example row: %v", rows[1])
	}
	typ, err := f.GetCellType(TemplateSheet, "G2")
	if err != nil {
		t.Fatalf("cell type: %v", err)
	}
	if typ == excelize.CellTypeSharedString || typ == excelize.CellTypeInlineString {
		t.Fatalf("expected numeric Total cell, got type %v", typ)
	}
}
