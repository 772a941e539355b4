package analysis

import (
	"sort"

	"cloud.google.com/go/civil"
)

// FilterCriteria selects a subset of a TransactionSet.
//
// DateRange must hold exactly two endpoints (inclusive); any other length
// disables filtering entirely and Apply returns the full set. An empty
// Categories list selects every category and an empty Customers list
// applies no customer restriction.
type FilterCriteria struct {
	DateRange  []civil.Date `json:"date_range,omitempty"`
	Categories []string     `json:"categories,omitempty"`
	Customers  []string     `json:"customers,omitempty"`
}

// DateRangeValid reports whether the date range has exactly two endpoints.
func (c FilterCriteria) DateRangeValid() bool { return len(c.DateRange) == 2 }

// Apply returns the records matching every predicate, preserving order.
// A start date after the end date yields an empty set.
func Apply(set *TransactionSet, c FilterCriteria) *TransactionSet {
	src := set.all()
	if !c.DateRangeValid() {
		return &TransactionSet{records: append([]TransactionRecord(nil), src...)}
	}
	start, end := c.DateRange[0], c.DateRange[1]
	cats := toSet(c.Categories)
	custs := toSet(c.Customers)

	out := make([]TransactionRecord, 0, len(src))
	for _, r := range src {
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		if len(cats) > 0 {
			if _, ok := cats[r.Category]; !ok {
				continue
			}
		}
		if len(custs) > 0 {
			if _, ok := custs[r.Customer]; !ok {
				continue
			}
		}
		out = append(out, r)
	}
	return &TransactionSet{records: out}
}

func toSet(vals []string) map[string]struct{} {
	m := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		m[v] = struct{}{}
	}
	return m
}

// FilterChoices lists the values a caller can filter on.
type FilterChoices struct {
	From       *civil.Date `json:"from,omitempty"`
	To         *civil.Date `json:"to,omitempty"`
	Categories []string    `json:"categories"`
	Customers  []string    `json:"customers"`
}

// Choices returns the date bounds and sorted distinct categories and
// customers present in set.
func Choices(set *TransactionSet) FilterChoices {
	recs := set.all()
	fc := FilterChoices{Categories: []string{}, Customers: []string{}}
	if len(recs) == 0 {
		return fc
	}
	from, to := recs[0].Date, recs[len(recs)-1].Date
	fc.From, fc.To = &from, &to
	cats := map[string]struct{}{}
	custs := map[string]struct{}{}
	for _, r := range recs {
		cats[r.Category] = struct{}{}
		custs[r.Customer] = struct{}{}
	}
	fc.Categories = sortedKeys(cats)
	fc.Customers = sortedKeys(custs)
	return fc
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DateRangeOf builds FilterCriteria.DateRange from optional endpoints. A
// missing endpoint is filled from the data bounds, so one endpoint means an
// open-ended range. With neither it spans the whole set; on an empty set it
// returns nil, or the given endpoint twice.
func DateRangeOf(set *TransactionSet, from, to *civil.Date) []civil.Date {
	if from != nil && to != nil {
		return []civil.Date{*from, *to}
	}
	ch := Choices(set)
	if ch.From == nil {
		switch {
		case from != nil:
			return []civil.Date{*from, *from}
		case to != nil:
			return []civil.Date{*to, *to}
		}
		return nil
	}
	lo, hi := *ch.From, *ch.To
	if from != nil {
		lo = *from
	}
	if to != nil {
		hi = *to
	}
	return []civil.Date{lo, hi}
}
