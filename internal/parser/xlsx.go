package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/smartbiz-cli/internal/schema"
	"github.com/xuri/excelize/v2"
)

type xlsxReader struct{}

func (xlsxReader) CanRead(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

// Read streams rows from the selected sheet. Cells are read raw so dates
// arrive as Excel serial numbers instead of locale-formatted strings.
func (xlsxReader) Read(r io.Reader, opt Options) (*schema.Table, error) {
	raw := excelize.Options{RawCellValue: true}
	f, err := excelize.OpenReader(r, raw)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet, err := pickSheet(f.GetSheetList(), opt.SheetName, opt.SheetIndex)
	if err != nil {
		return nil, err
	}
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	t := &schema.Table{}
	first := true
	rowNum := 0
	for rows.Next() {
		rowNum++
		vals, err := rows.Columns(raw)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if first {
			// leading blank rows before the header are skipped
			if isBlank(vals) {
				continue
			}
			t.Columns = cleanHeader(vals)
			first = false
			continue
		}
		if isBlank(vals) {
			continue
		}
		if opt.MaxRows > 0 && len(t.Rows) >= opt.MaxRows {
			break
		}
		if err := markNumeric(f, sheet, rowNum, vals, t, len(t.Rows)); err != nil {
			return nil, err
		}
		t.Rows = append(t.Rows, vals)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return t, nil
}

// markNumeric flags fractional number cells of one row so the normalizer
// reads them as plain decimals. Only values containing '.' or an exponent
// are ambiguous; integers read the same either way.
func markNumeric(f *excelize.File, sheet string, rowNum int, vals []string, t *schema.Table, r int) error {
	for c, v := range vals {
		if !strings.ContainsAny(v, ".eE") || strings.TrimLeft(v, "+-0123456789") == v {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(c+1, rowNum)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		typ, err := f.GetCellType(sheet, cell)
		if err != nil {
			return fmt.Errorf("cell %s type: %w", cell, err)
		}
		if typ == excelize.CellTypeUnset || typ == excelize.CellTypeNumber {
			t.MarkNumeric(r, c)
		}
	}
	return nil
}

// pickSheet resolves a sheet by name (case-insensitive) or 1-based index.
func pickSheet(sheets []string, name string, index int) (string, error) {
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}
	if name != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, name) {
				return s, nil
			}
		}
		return "", fmt.Errorf("sheet '%s' not found.\nAvailable sheets: %s", name, strings.Join(sheets, ", "))
	}
	if index <= 0 {
		index = 1
	}
	if index > len(sheets) {
		return "", fmt.Errorf("sheet index %d out of range (workbook has %d sheets: %s)", index, len(sheets), strings.Join(sheets, ", "))
	}
	return sheets[index-1], nil
}
