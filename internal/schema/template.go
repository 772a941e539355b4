package schema

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// TemplateSheet is the sheet name used in the XLSX template.
const TemplateSheet = "Sheet1"

// TemplateRow is the example row shown to users for format guidance.
var TemplateRow = map[string]any{
	ColDate:      "2024-01-01",
	ColCustomer:  "Contoh Pelanggan",
	ColProduct:   "Contoh Produk",
	ColCategory:  "Minuman",
	ColQuantity:  5,
	ColUnitPrice: 10000,
	ColTotal:     50000,
}

// templateValues returns the example row in Required order.
func templateValues() []any {
	out := make([]any, len(Required))
	for i, c := range Required {
		out[i] = TemplateRow[c]
	}
	return out
}

// WriteTemplateCSV writes the header and example row as comma-separated values.
func WriteTemplateCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Required); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	vals := templateValues()
	rec := make([]string, len(vals))
	for i, v := range vals {
		rec[i] = fmt.Sprint(v)
	}
	if err := cw.Write(rec); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// WriteTemplateXLSX writes the template as a workbook with numbers stored as numeric cells.
func WriteTemplateXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()
	header := make([]any, len(Required))
	for i, c := range Required {
		header[i] = c
	}
	if err := f.SetSheetRow(TemplateSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := templateValues()
	if err := f.SetSheetRow(TemplateSheet, "A2", &row); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
