package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Options controls report generation.
type Options struct {
	// TopN limits ranked tables; 0 means DefaultTopN.
	TopN int
	// ParetoThreshold is the cumulative share cut-off; 0 means DefaultParetoThreshold.
	ParetoThreshold float64
	// Profile is optional display metadata.
	Profile *BusinessProfile
	// Now stamps the report and drives business age; zero means time.Now.
	Now time.Time
}

// DefaultOptions returns reasonable defaults for report generation.
func DefaultOptions() Options {
	return Options{TopN: DefaultTopN, ParetoThreshold: DefaultParetoThreshold}
}

// Report bundles every table produced for one filtered set.
type Report struct {
	RunID           string           `json:"run_id"`
	GeneratedAt     time.Time        `json:"generated_at"`
	Source          string           `json:"source,omitempty"`
	Profile         *BusinessProfile `json:"profile,omitempty"`
	Criteria        FilterCriteria   `json:"criteria"`
	TotalRecords    int              `json:"total_records"`
	FilteredRecords int              `json:"filtered_records"`
	Totals          Totals           `json:"totals"`

	ProductRevenue        RankedTable `json:"product_revenue"`
	ProductQuantity       RankedTable `json:"product_quantity"`
	TopProductsByQuantity RankedTable `json:"top_products_by_quantity"`
	TopCategories         RankedTable `json:"top_categories"`
	TopCustomers          RankedTable `json:"top_customers"`

	Daily   []AggregateRow `json:"daily"`
	Monthly []AggregateRow `json:"monthly"`
	Weekday []AggregateRow `json:"weekday"`

	ParetoProducts  ParetoSegment `json:"pareto_products"`
	ParetoCustomers ParetoSegment `json:"pareto_customers"`

	Summary InsightSummary `json:"summary"`
	Notes   []string       `json:"notes"`
}

type groupSpec struct {
	dst    *[]AggregateRow
	key    GroupKey
	metric Metric
	red    Reducer
}

// Analyze filters set by c and runs aggregation, ranking and synthesis on
// the result. The input set is not modified.
func Analyze(set *TransactionSet, c FilterCriteria, opt Options) (*Report, error) {
	if opt.Now.IsZero() {
		opt.Now = time.Now()
	}
	if opt.TopN <= 0 {
		opt.TopN = DefaultTopN
	}
	if !(opt.ParetoThreshold > 0 && opt.ParetoThreshold <= 1) {
		opt.ParetoThreshold = DefaultParetoThreshold
	}

	filtered := Apply(set, c)
	rep := &Report{
		RunID:           uuid.NewString(),
		GeneratedAt:     opt.Now,
		Profile:         opt.Profile,
		Criteria:        c,
		TotalRecords:    set.Len(),
		FilteredRecords: filtered.Len(),
		Totals:          Summarize(filtered),
		Notes:           []string{},
	}

	var (
		productRevenue, productQty, categoryOrders []AggregateRow
		customerSpend, weekdayMean                 []AggregateRow
	)
	specs := []groupSpec{
		{&productRevenue, ByProduct, MetricTotal, ReduceSum},
		{&productQty, ByProduct, MetricQuantity, ReduceSum},
		{&categoryOrders, ByCategory, MetricCount, ReduceCount},
		{&customerSpend, ByCustomer, MetricTotal, ReduceSum},
		{&rep.Daily, ByDate, MetricQuantity, ReduceSum},
		{&rep.Monthly, ByMonth, MetricQuantity, ReduceSum},
		{&weekdayMean, ByWeekday, MetricQuantity, ReduceMean},
	}
	for _, g := range specs {
		rows, err := GroupReduce(filtered, g.key, g.metric, g.red)
		if err != nil {
			return nil, fmt.Errorf("aggregate by %s: %w", g.key, err)
		}
		*g.dst = rows
	}
	rep.Weekday = weekdayMean

	rep.ProductRevenue = rankDesc(productRevenue)
	rep.ProductQuantity = rankDesc(productQty)
	rep.TopProductsByQuantity = TopN(productQty, opt.TopN)
	rep.TopCategories = rankDesc(categoryOrders)
	rep.TopCustomers = TopN(customerSpend, opt.TopN)
	rep.ParetoProducts = Pareto(productRevenue, opt.ParetoThreshold)
	rep.ParetoCustomers = Pareto(customerSpend, opt.ParetoThreshold)

	rep.Summary = Synthesize(SynthesisInput{
		Totals:          rep.Totals,
		ProductRevenue:  productRevenue,
		ProductQuantity: productQty,
		CategoryOrders:  categoryOrders,
		CustomerSpend:   customerSpend,
		MonthlyQuantity: rep.Monthly,
		WeekdayMean:     weekdayMean,
		ParetoProducts:  rep.ParetoProducts,
		ParetoCustomers: rep.ParetoCustomers,
		Profile:         opt.Profile,
		Now:             opt.Now,
	})

	if len(c.DateRange) > 0 && !c.DateRangeValid() {
		rep.Notes = append(rep.Notes, "Date range needs both a start and an end date; no filters were applied.")
	}
	if c.DateRangeValid() && c.DateRange[0].After(c.DateRange[1]) {
		rep.Notes = append(rep.Notes, "Start date is after end date; the filtered set is empty.")
	}
	if filtered.Len() == 0 {
		rep.Notes = append(rep.Notes, "No transactions match the selected filters.")
	}
	return rep, nil
}

// Rupiah formats d rounded to whole rupiah with thousands grouping, e.g. "Rp 1,234,567".
func Rupiah(d decimal.Decimal) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("Rp %d", d.Round(0).IntPart())
}

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	p := message.NewPrinter(language.English)
	var b strings.Builder
	if r.Profile != nil {
		b.WriteString("[BUSINESS PROFILE]\n")
		b.WriteString(fmt.Sprintf("Name: %s\n", safeVal(r.Profile.Name)))
		b.WriteString(fmt.Sprintf("Type: %s\n", r.Profile.BusinessType))
		b.WriteString(fmt.Sprintf("Founded: %d (%d years)\n\n", r.Profile.FoundingYear, r.Summary.BusinessAge))
	}

	b.WriteString("[DATASET SUMMARY]\n")
	if r.Source != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Source))
	}
	b.WriteString(fmt.Sprintf("Run: %s\n", r.RunID))
	if r.FilteredRecords < r.TotalRecords {
		b.WriteString(fmt.Sprintf("Rows: %d (filtered from %d)\n", r.FilteredRecords, r.TotalRecords))
	} else {
		b.WriteString(fmt.Sprintf("Rows: %d\n", r.FilteredRecords))
	}
	if r.Totals.FirstDate != nil && r.Totals.LastDate != nil {
		b.WriteString(fmt.Sprintf("Period: %s to %s\n", r.Totals.FirstDate, r.Totals.LastDate))
	}
	if f := filterLine(r.Criteria); f != "" {
		b.WriteString("Filter: " + f + "\n")
	}
	b.WriteString("\n[KEY METRICS]\n")
	b.WriteString(fmt.Sprintf("- Omset: %s\n", Rupiah(r.Totals.Revenue)))
	b.WriteString(p.Sprintf("- Total order: %d\n", r.Totals.Transactions))
	b.WriteString(p.Sprintf("- Total customer: %d\n", r.Totals.DistinctCustomers))
	b.WriteString(fmt.Sprintf("- AOV: %s\n", Rupiah(r.Totals.AverageOrderValue)))
	b.WriteString(p.Sprintf("- Produk unik terjual: %d\n", r.Totals.DistinctProducts))

	writeTable(&b, "PRODUCT REVENUE", "Produk", r.ProductRevenue, Rupiah)
	writeTable(&b, "TOP PRODUCTS BY QUANTITY", "Produk", r.TopProductsByQuantity, plain)
	writeTable(&b, "TOP CATEGORIES BY ORDERS", "Kategori", r.TopCategories, plain)
	writeTable(&b, "TOP LOYAL CUSTOMERS", "Customer", r.TopCustomers, Rupiah)
	writeTable(&b, "MONTHLY ORDERS", "Bulan", r.Monthly, plain)

	if r.FilteredRecords > 0 {
		b.WriteString("\n[WEEKDAY PATTERN]\n")
		for _, w := range r.Weekday {
			if w.Rows == 0 {
				b.WriteString(fmt.Sprintf("- %s: -\n", w.Key))
				continue
			}
			b.WriteString(fmt.Sprintf("- %s: %s avg qty (%d rows)\n", w.Key, w.Value.StringFixed(1), w.Rows))
		}
	}

	writePareto(&b, "PARETO PRODUCTS", r.ParetoProducts)
	writePareto(&b, "PARETO CUSTOMERS", r.ParetoCustomers)

	s := r.Summary
	b.WriteString("\n[INSIGHTS]\n")
	b.WriteString(fmt.Sprintf("- Bulan tertinggi: %s\n", s.BusiestMonth))
	b.WriteString(fmt.Sprintf("- Produk terlaris: %s\n", s.TopProduct))
	if len(s.TopProductsRevenue) > 0 {
		b.WriteString(fmt.Sprintf("- 3 produk omset terbesar: %s\n", strings.Join(s.TopProductsRevenue, ", ")))
	}
	if len(s.TopProductsVolume) > 0 {
		b.WriteString(fmt.Sprintf("- 3 produk order terbanyak: %s\n", strings.Join(s.TopProductsVolume, ", ")))
	}
	b.WriteString(fmt.Sprintf("- Customer loyal: %s\n", s.LoyalCustomer))
	b.WriteString(fmt.Sprintf("- Kategori terpopuler: %s\n", s.PopularCategory))
	b.WriteString(fmt.Sprintf("- Hari tersibuk: %s (rata-rata %s order)\n", s.BusiestWeekday, s.BusiestWeekdayMean.StringFixed(1)))
	b.WriteString(fmt.Sprintf("- Hari tersepi: %s\n", s.QuietestWeekday))
	b.WriteString(fmt.Sprintf("- AOV %s, omset %s\n", Rupiah(s.AverageOrderValue), Rupiah(s.TotalRevenue)))
	b.WriteString(p.Sprintf("- %d transaksi dari %d pelanggan unik\n", s.Transactions, s.DistinctCustomers))
	if s.ParetoProductCount > 0 {
		b.WriteString(fmt.Sprintf("- %d produk menyumbang %.1f%% omset\n", s.ParetoProductCount, s.ParetoProductShare))
	}
	if s.ParetoCustomerCount > 0 {
		b.WriteString(fmt.Sprintf("- %d pelanggan menyumbang %.1f%% omset\n", s.ParetoCustomerCount, s.ParetoCustomerShare))
	}

	if len(r.Notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range r.Notes {
			b.WriteString("- ")
			b.WriteString(n)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func plain(d decimal.Decimal) string { return d.String() }

func writeTable(b *strings.Builder, title, keyHeader string, rows []AggregateRow, format func(decimal.Decimal) string) {
	if len(rows) == 0 {
		return
	}
	b.WriteString(fmt.Sprintf("\n[%s]\n", title))
	b.WriteString(fmt.Sprintf("| %s | Nilai | Baris |\n", keyHeader))
	b.WriteString("| --- | --- | --- |\n")
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("| %s | %s | %d |\n", safeVal(row.Key), format(row.Value), row.Rows))
	}
}

func writePareto(b *strings.Builder, title string, seg ParetoSegment) {
	b.WriteString(fmt.Sprintf("\n[%s]\n", title))
	if len(seg.Members) == 0 {
		b.WriteString(fmt.Sprintf("No contributor fits within %.0f%% of %s.\n", seg.Threshold*100, Rupiah(seg.GrandTotal)))
		return
	}
	for _, m := range seg.Members {
		b.WriteString(fmt.Sprintf("- %s: %s (%.1f%%, cumulative %.1f%%)\n", safeVal(m.Key), Rupiah(m.Value), m.SharePercent, m.CumulativePercent))
	}
}

func filterLine(c FilterCriteria) string {
	var parts []string
	if c.DateRangeValid() {
		parts = append(parts, fmt.Sprintf("%s..%s", c.DateRange[0], c.DateRange[1]))
	}
	if len(c.Categories) > 0 {
		parts = append(parts, "kategori="+strings.Join(c.Categories, ","))
	}
	if len(c.Customers) > 0 {
		parts = append(parts, "customer="+strings.Join(c.Customers, ","))
	}
	return strings.Join(parts, "; ")
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
