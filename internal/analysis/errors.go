package analysis

import (
	"errors"
	"fmt"
)

// DateParseError reports an unparseable date cell. Row is the 1-based source
// line number (the header is line 1).
type DateParseError struct {
	Row   int
	Value string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("row %d: cannot parse date %q", e.Row, e.Value)
}

// FieldError reports a cell that parsed but violates a record invariant,
// or a numeric cell that could not be parsed.
type FieldError struct {
	Row    int
	Column string
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("row %d: column %q value %q %s", e.Row, e.Column, e.Value, e.Reason)
}

// ErrUnsupportedAggregation is returned for an invalid group key, metric or
// reducer, or a metric/reducer pair that has no meaning.
var ErrUnsupportedAggregation = errors.New("unsupported aggregation")
