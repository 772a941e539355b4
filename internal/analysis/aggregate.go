package analysis

import (
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// GroupKey selects how records are bucketed.
type GroupKey string

const (
	ByProduct  GroupKey = "product"
	ByCategory GroupKey = "category"
	ByCustomer GroupKey = "customer"
	ByDate     GroupKey = "date"
	ByMonth    GroupKey = "month"
	ByWeekday  GroupKey = "weekday"
)

// Metric is the per-record value fed to a reducer.
type Metric string

const (
	MetricTotal             Metric = "total"
	MetricQuantity          Metric = "quantity"
	MetricCount             Metric = "count"
	MetricDistinctCustomers Metric = "distinct-customers"
	MetricDistinctProducts  Metric = "distinct-products"
)

// Reducer folds metric values within a group.
type Reducer string

const (
	ReduceSum      Reducer = "sum"
	ReduceCount    Reducer = "count"
	ReduceMean     Reducer = "mean"
	ReduceDistinct Reducer = "distinct"
)

// Weekdays is the fixed output order for ByWeekday.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// AggregateRow is one group result. Rows counts the records in the group.
type AggregateRow struct {
	Key   string          `json:"key"`
	Value decimal.Decimal `json:"value"`
	Rows  int             `json:"rows"`
}

type bucket struct {
	sum  decimal.Decimal
	rows int
	seen map[string]struct{}
}

// GroupReduce buckets set by key and reduces metric in each bucket. Groups
// are emitted in ascending key order; ByWeekday always emits seven rows
// Monday..Sunday with zero-valued rows for days with no records.
func GroupReduce(set *TransactionSet, key GroupKey, metric Metric, red Reducer) ([]AggregateRow, error) {
	if err := checkAggregation(key, metric, red); err != nil {
		return nil, err
	}
	buckets := map[string]*bucket{}
	for _, r := range set.all() {
		k := keyOf(r, key)
		b := buckets[k]
		if b == nil {
			b = &bucket{sum: decimal.Zero}
			buckets[k] = b
		}
		b.rows++
		switch metric {
		case MetricTotal:
			b.sum = b.sum.Add(r.Total)
		case MetricQuantity:
			b.sum = b.sum.Add(decimal.NewFromInt(r.Quantity))
		case MetricCount:
			b.sum = b.sum.Add(decimal.NewFromInt(1))
		case MetricDistinctCustomers, MetricDistinctProducts:
			if b.seen == nil {
				b.seen = map[string]struct{}{}
			}
			v := r.Customer
			if metric == MetricDistinctProducts {
				v = r.Product
			}
			b.seen[v] = struct{}{}
		}
	}

	var keys []string
	if key == ByWeekday {
		keys = Weekdays
	} else {
		keys = make([]string, 0, len(buckets))
		for k := range buckets {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}

	out := make([]AggregateRow, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		if b == nil {
			out = append(out, AggregateRow{Key: k, Value: decimal.Zero})
			continue
		}
		row := AggregateRow{Key: k, Rows: b.rows}
		switch red {
		case ReduceSum:
			row.Value = b.sum
		case ReduceCount:
			row.Value = decimal.NewFromInt(int64(b.rows))
		case ReduceMean:
			row.Value = b.sum.Div(decimal.NewFromInt(int64(b.rows)))
		case ReduceDistinct:
			row.Value = decimal.NewFromInt(int64(len(b.seen)))
		}
		out = append(out, row)
	}
	return out, nil
}

func checkAggregation(key GroupKey, metric Metric, red Reducer) error {
	switch key {
	case ByProduct, ByCategory, ByCustomer, ByDate, ByMonth, ByWeekday:
	default:
		return fmt.Errorf("group key %q: %w", key, ErrUnsupportedAggregation)
	}
	distinct := metric == MetricDistinctCustomers || metric == MetricDistinctProducts
	switch metric {
	case MetricTotal, MetricQuantity, MetricCount, MetricDistinctCustomers, MetricDistinctProducts:
	default:
		return fmt.Errorf("metric %q: %w", metric, ErrUnsupportedAggregation)
	}
	switch red {
	case ReduceSum, ReduceMean:
		if distinct {
			return fmt.Errorf("%s of %s: %w", red, metric, ErrUnsupportedAggregation)
		}
	case ReduceCount:
	case ReduceDistinct:
		if !distinct {
			return fmt.Errorf("%s of %s: %w", red, metric, ErrUnsupportedAggregation)
		}
	default:
		return fmt.Errorf("reducer %q: %w", red, ErrUnsupportedAggregation)
	}
	return nil
}

func keyOf(r TransactionRecord, key GroupKey) string {
	switch key {
	case ByProduct:
		return r.Product
	case ByCategory:
		return r.Category
	case ByCustomer:
		return r.Customer
	case ByDate:
		return r.Date.String()
	case ByMonth:
		return MonthKey(r.Date)
	default:
		return Weekday(r.Date).String()
	}
}

// MonthKey formats d as YYYY-MM.
func MonthKey(d civil.Date) string {
	return fmt.Sprintf("%04d-%02d", d.Year, int(d.Month))
}

// Weekday returns the day of week of d.
func Weekday(d civil.Date) time.Weekday {
	return d.In(time.UTC).Weekday()
}

// Totals are whole-set summary figures.
type Totals struct {
	Revenue           decimal.Decimal `json:"revenue"`
	Quantity          int64           `json:"quantity"`
	Transactions      int             `json:"transactions"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	DistinctCustomers int             `json:"distinct_customers"`
	DistinctProducts  int             `json:"distinct_products"`
	DistinctDays      int             `json:"distinct_days"`
	FirstDate         *civil.Date     `json:"first_date,omitempty"`
	LastDate          *civil.Date     `json:"last_date,omitempty"`
}

// Summarize computes Totals. An empty set yields zeros.
func Summarize(set *TransactionSet) Totals {
	t := Totals{Revenue: decimal.Zero, AverageOrderValue: decimal.Zero}
	custs := map[string]struct{}{}
	prods := map[string]struct{}{}
	days := map[civil.Date]struct{}{}
	for _, r := range set.all() {
		if t.FirstDate == nil || r.Date.Before(*t.FirstDate) {
			d := r.Date
			t.FirstDate = &d
		}
		if t.LastDate == nil || r.Date.After(*t.LastDate) {
			d := r.Date
			t.LastDate = &d
		}
		t.Revenue = t.Revenue.Add(r.Total)
		t.Quantity += r.Quantity
		t.Transactions++
		custs[r.Customer] = struct{}{}
		prods[r.Product] = struct{}{}
		days[r.Date] = struct{}{}
	}
	if t.Transactions > 0 {
		t.AverageOrderValue = t.Revenue.Div(decimal.NewFromInt(int64(t.Transactions)))
	}
	t.DistinctCustomers = len(custs)
	t.DistinctProducts = len(prods)
	t.DistinctDays = len(days)
	return t
}
