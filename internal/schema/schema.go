package schema

import (
	"fmt"
	"strings"
)

// Column names of the transaction table. They are a compatibility contract
// with existing template files and must not be translated.
const (
	ColDate      = "Tanggal"
	ColCustomer  = "Nama Customer"
	ColProduct   = "Nama Produk"
	ColCategory  = "Kategori"
	ColQuantity  = "Jumlah"
	ColUnitPrice = "Harga"
	ColTotal     = "Total"
)

// Required lists the required columns in canonical order.
var Required = []string{ColDate, ColCustomer, ColProduct, ColCategory, ColQuantity, ColUnitPrice, ColTotal}

// Table is a parsed tabular dataset: a header row and string cells.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string

	// numeric marks cells stored as numbers by the source format (XLSX);
	// their text is a plain '.'-decimal literal, not a locale-formatted string.
	numeric map[[2]int]struct{}
}

// MarkNumeric records that the cell at row r, column c holds a typed number.
func (t *Table) MarkNumeric(r, c int) {
	if t.numeric == nil {
		t.numeric = make(map[[2]int]struct{})
	}
	t.numeric[[2]int{r, c}] = struct{}{}
}

// IsNumeric reports whether the cell at row r, column c was marked numeric.
func (t *Table) IsNumeric(r, c int) bool {
	_, ok := t.numeric[[2]int{r, c}]
	return ok
}

// Index maps column name to its position. Duplicate names keep the first position.
func (t *Table) Index() map[string]int {
	idx := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		if _, ok := idx[c]; !ok {
			idx[c] = i
		}
	}
	return idx
}

// Cell returns the trimmed value at row r for column index c, or "" when the row is short.
func (t *Table) Cell(r, c int) string {
	if r < 0 || r >= len(t.Rows) || c < 0 || c >= len(t.Rows[r]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[r][c])
}

// SchemaError reports required columns missing from a dataset.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// Validate checks that columns is a superset of Required. Matching is exact
// and case-sensitive; it returns a *SchemaError naming every missing column.
func Validate(columns []string) error {
	have := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		have[c] = struct{}{}
	}
	var missing []string
	for _, r := range Required {
		if _, ok := have[r]; !ok {
			missing = append(missing, r)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}
