package analysis

import (
	"sort"

	"github.com/shopspring/decimal"
)

const (
	DefaultTopN            = 10
	DefaultParetoThreshold = 0.8
)

var hundred = decimal.NewFromInt(100)

// RankedTable is a list of aggregate rows ordered by value descending.
type RankedTable []AggregateRow

// Keys returns the row keys in rank order.
func (t RankedTable) Keys() []string {
	out := make([]string, 0, len(t))
	for _, r := range t {
		out = append(out, r.Key)
	}
	return out
}

// rankDesc returns a copy of rows sorted by value descending. Ties keep
// their input order.
func rankDesc(rows []AggregateRow) RankedTable {
	out := make(RankedTable, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value.GreaterThan(out[j].Value) })
	return out
}

// TopN returns at most n rows with the highest values. n <= 0 means
// DefaultTopN.
func TopN(rows []AggregateRow, n int) RankedTable {
	if n <= 0 {
		n = DefaultTopN
	}
	out := rankDesc(rows)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// ParetoMember is one contributor inside a Pareto segment.
type ParetoMember struct {
	Key               string          `json:"key"`
	Value             decimal.Decimal `json:"value"`
	SharePercent      float64         `json:"share_percent"`
	CumulativePercent float64         `json:"cumulative_percent"`
}

// ParetoSegment is the leading prefix of contributors whose cumulative share
// stays within Threshold of GrandTotal.
type ParetoSegment struct {
	Threshold  float64         `json:"threshold"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	Members    []ParetoMember  `json:"members"`
}

// Keys returns the member keys in rank order.
func (p ParetoSegment) Keys() []string {
	out := make([]string, 0, len(p.Members))
	for _, m := range p.Members {
		out = append(out, m.Key)
	}
	return out
}

// Pareto ranks rows by value descending and keeps members while the
// cumulative fraction of the grand total is at most threshold, stopping at
// the first row that would exceed it. A threshold outside (0, 1] falls back
// to DefaultParetoThreshold. A non-positive grand total yields no members.
func Pareto(rows []AggregateRow, threshold float64) ParetoSegment {
	if !(threshold > 0 && threshold <= 1) {
		threshold = DefaultParetoThreshold
	}
	seg := ParetoSegment{Threshold: threshold, GrandTotal: decimal.Zero, Members: []ParetoMember{}}
	for _, r := range rows {
		seg.GrandTotal = seg.GrandTotal.Add(r.Value)
	}
	if !seg.GrandTotal.IsPositive() {
		return seg
	}
	limit := decimal.NewFromFloat(threshold)
	cum := decimal.Zero
	for _, r := range rankDesc(rows) {
		cum = cum.Add(r.Value)
		// compare cum/grand <= limit as cum <= limit*grand to stay exact
		if cum.GreaterThan(limit.Mul(seg.GrandTotal)) {
			break
		}
		seg.Members = append(seg.Members, ParetoMember{
			Key:               r.Key,
			Value:             r.Value,
			SharePercent:      percent(r.Value, seg.GrandTotal),
			CumulativePercent: percent(cum, seg.GrandTotal),
		})
	}
	return seg
}

func percent(part, whole decimal.Decimal) float64 {
	return part.Mul(hundred).Div(whole).Round(1).InexactFloat64()
}
