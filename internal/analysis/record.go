package analysis

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/KaramelBytes/smartbiz-cli/internal/schema"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// TransactionRecord is one normalized sales line.
type TransactionRecord struct {
	Row       int             `json:"row"`
	Date      civil.Date      `json:"date" col:"Tanggal"`
	Customer  string          `json:"customer" col:"Nama Customer" validate:"required"`
	Product   string          `json:"product" col:"Nama Produk" validate:"required"`
	Category  string          `json:"category" col:"Kategori" validate:"required"`
	Quantity  int64           `json:"quantity" col:"Jumlah" validate:"gte=0"`
	UnitPrice decimal.Decimal `json:"unit_price" col:"Harga" validate:"gte=0"`
	Total     decimal.Decimal `json:"total" col:"Total"`
}

// TransactionSet is an ordered, immutable collection of records sorted
// ascending by date. Records sharing a date keep their source order.
type TransactionSet struct {
	records []TransactionRecord
}

// NewTransactionSet copies recs and orders them by date (stable).
func NewTransactionSet(recs []TransactionRecord) *TransactionSet {
	cp := make([]TransactionRecord, len(recs))
	copy(cp, recs)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].Date.Before(cp[j].Date) })
	return &TransactionSet{records: cp}
}

// Len returns the number of records; a nil set is empty.
func (s *TransactionSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Records returns a copy of the records in set order.
func (s *TransactionSet) Records() []TransactionRecord {
	out := make([]TransactionRecord, s.Len())
	if s != nil {
		copy(out, s.records)
	}
	return out
}

func (s *TransactionSet) all() []TransactionRecord {
	if s == nil {
		return nil
	}
	return s.records
}

// NormalizeOptions controls how raw cells are interpreted.
type NormalizeOptions struct {
	// DecimalSeparator for numeric cells. If 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune // optional; if 0, auto-detect common separators (',' '.' space)
	// DayFirst reads ambiguous slash dates as dd/mm/yyyy instead of mm/dd/yyyy.
	DayFirst bool
}

// Normalize converts a raw table into a TransactionSet. Any unparseable date
// aborts with *DateParseError; any bad numeric or empty identifier aborts with
// *FieldError. Missing columns yield *schema.SchemaError.
func Normalize(t *schema.Table, opt NormalizeOptions) (*TransactionSet, error) {
	if err := schema.Validate(t.Columns); err != nil {
		return nil, err
	}
	idx := t.Index()
	cell := func(r int, col string) string { return t.Cell(r, idx[col]) }
	number := func(r int, col string) (decimal.Decimal, bool) {
		raw := cell(r, col)
		if t.IsNumeric(r, idx[col]) {
			d, err := decimal.NewFromString(raw)
			return d, err == nil
		}
		return parseNumeric(raw, opt)
	}

	recs := make([]TransactionRecord, 0, len(t.Rows))
	for i := range t.Rows {
		line := i + 2
		rawDate := cell(i, schema.ColDate)
		d, ok := parseDate(rawDate, opt.DayFirst)
		if !ok {
			return nil, &DateParseError{Row: line, Value: rawDate}
		}
		rec := TransactionRecord{
			Row:      line,
			Date:     d,
			Customer: cell(i, schema.ColCustomer),
			Product:  cell(i, schema.ColProduct),
			Category: cell(i, schema.ColCategory),
		}

		rawQty := cell(i, schema.ColQuantity)
		qty, ok := number(i, schema.ColQuantity)
		if !ok {
			return nil, &FieldError{Row: line, Column: schema.ColQuantity, Value: rawQty, Reason: "is not a number"}
		}
		if !qty.IsInteger() {
			return nil, &FieldError{Row: line, Column: schema.ColQuantity, Value: rawQty, Reason: "must be a whole number"}
		}
		rec.Quantity = qty.IntPart()

		rawPrice := cell(i, schema.ColUnitPrice)
		if rec.UnitPrice, ok = number(i, schema.ColUnitPrice); !ok {
			return nil, &FieldError{Row: line, Column: schema.ColUnitPrice, Value: rawPrice, Reason: "is not a number"}
		}
		rawTotal := cell(i, schema.ColTotal)
		if rec.Total, ok = number(i, schema.ColTotal); !ok {
			return nil, &FieldError{Row: line, Column: schema.ColTotal, Value: rawTotal, Reason: "is not a number"}
		}

		if err := validate.Struct(rec); err != nil {
			fe, ok := firstViolation(err)
			if !ok {
				return nil, err
			}
			return nil, &FieldError{Row: line, Column: fe.Field(), Value: cell(i, fe.Field()), Reason: describeTag(fe)}
		}
		recs = append(recs, rec)
	}
	sort.SliceStable(recs, func(a, b int) bool { return recs[a].Date.Before(recs[b].Date) })
	return &TransactionSet{records: recs}, nil
}

// Excel serials for 1900-01-01 .. 9999-12-31.
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

var (
	isoLayouts = []string{
		"2006-01-02", time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02 15:04", "2006/01/02",
	}
	monthFirstLayouts = []string{"1/2/2006", "1/2/2006 15:04", "1/2/2006 15:04:05", "1-2-2006"}
	dayFirstLayouts   = []string{"2/1/2006", "2/1/2006 15:04", "2/1/2006 15:04:05", "2-1-2006"}
)

// parseDate accepts ISO dates (with or without a time part), slash dates, and
// Excel serial numbers. Slash dates are month-first unless dayFirst is set; a
// value that only parses the other way round is still accepted.
func parseDate(s string, dayFirst bool) (civil.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return civil.Date{}, false
	}
	if isSerial(s) {
		f, err := strconv.ParseFloat(s, 64)
		if err == nil && f >= minExcelSerial && f <= maxExcelSerial {
			if t, err := excelize.ExcelDateToTime(f, false); err == nil {
				return civil.DateOf(t), true
			}
		}
		return civil.Date{}, false
	}
	primary, fallback := monthFirstLayouts, dayFirstLayouts
	if dayFirst {
		primary, fallback = fallback, primary
	}
	for _, group := range [][]string{isoLayouts, primary, fallback} {
		for _, l := range group {
			if t, err := time.Parse(l, s); err == nil {
				return civil.DateOf(t), true
			}
		}
	}
	return civil.Date{}, false
}

func isSerial(s string) bool {
	dot := false
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' && !dot && i > 0:
			dot = true
		default:
			return false
		}
	}
	return true
}

// parseNumeric reads a locale-formatted number such as "15.000", "1,234.50"
// or "Rp 20.000". With no separators configured, the rightmost of ',' and '.'
// is the decimal mark when both appear; a mark that repeats, or that is
// followed by exactly three digits, is read as a thousands separator.
func parseNumeric(s string, opt NormalizeOptions) (decimal.Decimal, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "Rp"), "rp")
	raw = strings.ReplaceAll(raw, "\u00a0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0:
			if cpos > dpos {
				dec, thou = ',', '.'
			} else {
				dec, thou = '.', ','
			}
		case cpos >= 0:
			dec, thou = pickSeparator(raw, ',', '.')
		case dpos >= 0:
			dec, thou = pickSeparator(raw, '.', ',')
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
		raw = strings.ReplaceAll(raw, " ", "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// pickSeparator decides whether the only mark present in raw is a decimal
// or a thousands separator.
func pickSeparator(raw string, mark, other rune) (dec, thou rune) {
	m := string(mark)
	if strings.Count(raw, m) > 1 {
		return other, mark
	}
	tail := raw[strings.LastIndex(raw, m)+1:]
	if len(tail) == 3 && strings.Trim(tail, "0123456789") == "" && strings.TrimLeft(raw[:strings.Index(raw, m)], "-+") != "0" {
		return other, mark
	}
	return mark, other
}
