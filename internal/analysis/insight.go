package analysis

import (
	"time"

	"github.com/shopspring/decimal"
)

// NoData is the placeholder shown when an insight has nothing to point at.
const NoData = "Data tidak tersedia"

// SynthesisInput carries the aggregates an InsightSummary is projected from.
// Per-group rows are in GroupReduce order; rankings happen during synthesis.
type SynthesisInput struct {
	Totals          Totals
	ProductRevenue  []AggregateRow // sum of total by product
	ProductQuantity []AggregateRow // sum of quantity by product
	CategoryOrders  []AggregateRow // row count by category
	CustomerSpend   []AggregateRow // sum of total by customer
	MonthlyQuantity []AggregateRow // sum of quantity by month
	WeekdayMean     []AggregateRow // mean quantity by weekday
	ParetoProducts  ParetoSegment
	ParetoCustomers ParetoSegment
	Profile         *BusinessProfile
	Now             time.Time
}

// InsightSummary holds the headline findings for a filtered set. Every
// label is NoData and every number zero when the set is empty.
type InsightSummary struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	Transactions      int             `json:"transactions"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	DistinctCustomers int             `json:"distinct_customers"`
	DistinctProducts  int             `json:"distinct_products"`

	TopProduct         string          `json:"top_product"`
	TopProductRevenue  decimal.Decimal `json:"top_product_revenue"`
	TopProductsRevenue []string        `json:"top_products_by_revenue"`
	TopProductsVolume  []string        `json:"top_products_by_quantity"`
	LoyalCustomer      string          `json:"loyal_customer"`
	LoyalCustomerSpend decimal.Decimal `json:"loyal_customer_spend"`
	PopularCategory    string          `json:"popular_category"`
	BusiestMonth       string          `json:"busiest_month"`

	BusiestWeekday     string          `json:"busiest_weekday"`
	BusiestWeekdayMean decimal.Decimal `json:"busiest_weekday_mean"`
	QuietestWeekday    string          `json:"quietest_weekday"`
	WeekdayAverage     decimal.Decimal `json:"weekday_average"`

	ParetoProductCount  int     `json:"pareto_product_count"`
	ParetoProductShare  float64 `json:"pareto_product_share"`
	ParetoCustomerCount int     `json:"pareto_customer_count"`
	ParetoCustomerShare float64 `json:"pareto_customer_share"`

	BusinessAge int `json:"business_age"`
}

// Synthesize projects in into an InsightSummary. Ties go to the first row
// in rank order; weekday rows with no records are ignored.
func Synthesize(in SynthesisInput) InsightSummary {
	s := InsightSummary{
		TotalRevenue:      in.Totals.Revenue,
		Transactions:      in.Totals.Transactions,
		AverageOrderValue: in.Totals.AverageOrderValue,
		DistinctCustomers: in.Totals.DistinctCustomers,
		DistinctProducts:  in.Totals.DistinctProducts,

		TopProduct:         NoData,
		TopProductRevenue:  decimal.Zero,
		TopProductsRevenue: TopN(in.ProductRevenue, 3).Keys(),
		TopProductsVolume:  TopN(in.ProductQuantity, 3).Keys(),
		LoyalCustomer:      NoData,
		LoyalCustomerSpend: decimal.Zero,
		PopularCategory:    NoData,
		BusiestMonth:       NoData,
		BusiestWeekday:     NoData,
		BusiestWeekdayMean: decimal.Zero,
		QuietestWeekday:    NoData,
		WeekdayAverage:     decimal.Zero,

		ParetoProductCount:  len(in.ParetoProducts.Members),
		ParetoProductShare:  lastCumulative(in.ParetoProducts),
		ParetoCustomerCount: len(in.ParetoCustomers.Members),
		ParetoCustomerShare: lastCumulative(in.ParetoCustomers),
	}
	if in.Profile != nil {
		s.BusinessAge = in.Profile.Age(in.Now)
	}
	if top, ok := first(in.ProductRevenue); ok {
		s.TopProduct, s.TopProductRevenue = top.Key, top.Value
	}
	if top, ok := first(in.CustomerSpend); ok {
		s.LoyalCustomer, s.LoyalCustomerSpend = top.Key, top.Value
	}
	if top, ok := first(in.CategoryOrders); ok {
		s.PopularCategory = top.Key
	}
	if top, ok := first(in.MonthlyQuantity); ok {
		s.BusiestMonth = top.Key
	}

	var active []AggregateRow
	for _, r := range in.WeekdayMean {
		if r.Rows > 0 {
			active = append(active, r)
		}
	}
	if len(active) > 0 {
		busiest, quietest := active[0], active[0]
		sum := decimal.Zero
		for _, r := range active {
			if r.Value.GreaterThan(busiest.Value) {
				busiest = r
			}
			if r.Value.LessThan(quietest.Value) {
				quietest = r
			}
			sum = sum.Add(r.Value)
		}
		s.BusiestWeekday, s.BusiestWeekdayMean = busiest.Key, busiest.Value
		s.QuietestWeekday = quietest.Key
		s.WeekdayAverage = sum.Div(decimal.NewFromInt(int64(len(active))))
	}
	return s
}

// first returns the highest-valued row with at least one record.
func first(rows []AggregateRow) (AggregateRow, bool) {
	for _, r := range TopN(rows, 1) {
		if r.Rows > 0 {
			return r, true
		}
	}
	return AggregateRow{}, false
}

func lastCumulative(p ParetoSegment) float64 {
	if len(p.Members) == 0 {
		return 0
	}
	return p.Members[len(p.Members)-1].CumulativePercent
}
