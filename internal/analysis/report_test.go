package analysis

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ReportTestSuite struct {
	suite.Suite
	set      *TransactionSet
	criteria FilterCriteria
	now      time.Time
}

func (s *ReportTestSuite) SetupTest() {
	s.set = exampleSet()
	s.criteria = FilterCriteria{
		DateRange:  []civil.Date{day(2024, 1, 1), day(2024, 1, 3)},
		Categories: []string{"CatFood", "CatDrink"},
	}
	s.now = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
}

func TestReportTestSuite(t *testing.T) {
	suite.Run(t, new(ReportTestSuite))
}

func (s *ReportTestSuite) analyze(c FilterCriteria, opt Options) *Report {
	opt.Now = s.now
	rep, err := Analyze(s.set, c, opt)
	s.Require().NoError(err)
	return rep
}

func (s *ReportTestSuite) TestEndToEndExample() {
	rep := s.analyze(s.criteria, DefaultOptions())
	sum := rep.Summary

	s.Equal("550", sum.TotalRevenue.String())
	s.Equal(3, sum.Transactions)
	s.Equal(2, sum.DistinctCustomers)
	s.Equal("ProductX", sum.TopProduct)
	s.Equal("500", sum.TopProductRevenue.String())
	s.Equal([]string{"ProductX", "ProductY"}, sum.TopProductsRevenue)
	s.Equal("Wednesday", sum.BusiestWeekday)
	s.Equal("3", sum.BusiestWeekdayMean.String())
	s.Equal("Tuesday", sum.QuietestWeekday)
	s.Equal("CustomerB", sum.LoyalCustomer)
	s.Equal("CatFood", sum.PopularCategory)
	s.Equal("2024-01", sum.BusiestMonth)

	s.Empty(rep.ParetoProducts.Members, "ProductX alone exceeds the threshold")
	s.Equal([]string{"CustomerB"}, rep.ParetoCustomers.Keys())
	s.Equal(54.5, rep.ParetoCustomers.Members[0].SharePercent)
	s.Equal(1, sum.ParetoCustomerCount)

	s.Equal(3, rep.TotalRecords)
	s.Equal(3, rep.FilteredRecords)
	s.Len(rep.Weekday, 7)
	s.Empty(rep.Notes)
	_, err := uuid.Parse(rep.RunID)
	s.NoError(err)
}

func (s *ReportTestSuite) TestInputSetUnchanged() {
	before := s.set.Records()
	c := s.criteria
	c.Customers = []string{"CustomerA"}
	rep := s.analyze(c, DefaultOptions())
	s.Equal(2, rep.FilteredRecords)
	s.Equal(before, s.set.Records())
}

func (s *ReportTestSuite) TestEmptyFilterResult() {
	c := s.criteria
	c.Categories = []string{"Elektronik"}
	rep := s.analyze(c, DefaultOptions())

	s.Equal(0, rep.FilteredRecords)
	s.Equal(NoData, rep.Summary.TopProduct)
	s.Equal(NoData, rep.Summary.BusiestWeekday)
	s.Empty(rep.ProductRevenue)
	s.Len(rep.Weekday, 7)
	s.Contains(rep.Notes, "No transactions match the selected filters.")
	s.Contains(rep.Markdown(), NoData)
}

func (s *ReportTestSuite) TestIncompleteDateRangeNoted() {
	c := FilterCriteria{DateRange: []civil.Date{day(2024, 1, 3)}, Customers: []string{"CustomerB"}}
	rep := s.analyze(c, DefaultOptions())
	s.Equal(3, rep.FilteredRecords)
	s.Len(rep.Notes, 1)
	s.Contains(rep.Markdown(), "[NOTES]")
}

func (s *ReportTestSuite) TestOptionsApplied() {
	opt := Options{TopN: 1, ParetoThreshold: 0.95, Profile: &BusinessProfile{Name: "Toko Maju", BusinessType: "Jasa", FoundingYear: 2020}}
	rep := s.analyze(s.criteria, opt)
	s.Len(rep.TopCustomers, 1)
	s.Equal("CustomerB", rep.TopCustomers[0].Key)
	s.Equal([]string{"ProductX"}, rep.ParetoProducts.Keys())
	s.Equal(4, rep.Summary.BusinessAge)
}

func (s *ReportTestSuite) TestMarkdownSections() {
	rep := s.analyze(s.criteria, Options{Profile: &BusinessProfile{Name: "Toko Maju", BusinessType: "Jasa", FoundingYear: 2020}})
	rep.Source = "penjualan.csv"
	md := rep.Markdown()
	for _, want := range []string{
		"[BUSINESS PROFILE]", "Name: Toko Maju", "[DATASET SUMMARY]", "File: penjualan.csv",
		"Period: 2024-01-01 to 2024-01-03", "- Omset: Rp 550", "[PRODUCT REVENUE]", "| ProductX | Rp 500 | 2 |",
		"[WEEKDAY PATTERN]", "- Wednesday: 3.0 avg qty (1 rows)", "- Sunday: -", "[PARETO CUSTOMERS]",
		"- CustomerB: Rp 300 (54.5%, cumulative 54.5%)", "[INSIGHTS]", "Hari tersibuk: Wednesday (rata-rata 3.0 order)",
	} {
		s.True(strings.Contains(md, want), "missing %q in:\n%s", want, md)
	}
}

func (s *ReportTestSuite) TestJSONUsesSnakeCase() {
	rep := s.analyze(s.criteria, DefaultOptions())
	data, err := json.Marshal(rep)
	s.Require().NoError(err)
	var m map[string]any
	s.Require().NoError(json.Unmarshal(data, &m))
	for _, k := range []string{"run_id", "filtered_records", "pareto_customers", "summary", "weekday"} {
		s.Contains(m, k)
	}
	summary := m["summary"].(map[string]any)
	s.Equal("ProductX", summary["top_product"])
}

func (s *ReportTestSuite) TestRupiah() {
	s.Equal("Rp 1,234,567", Rupiah(decimal.RequireFromString("1234567.4")))
	s.Equal("Rp 0", Rupiah(decimal.Zero))
}
