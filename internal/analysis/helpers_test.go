package analysis

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
)

func day(y int, m time.Month, d int) civil.Date { return civil.Date{Year: y, Month: m, Day: d} }

func rec(date civil.Date, customer, product, category string, qty int64, price, total int64) TransactionRecord {
	return TransactionRecord{
		Date:      date,
		Customer:  customer,
		Product:   product,
		Category:  category,
		Quantity:  qty,
		UnitPrice: decimal.NewFromInt(price),
		Total:     decimal.NewFromInt(total),
	}
}

// exampleSet is the three-row dataset used for end-to-end checks.
func exampleSet() *TransactionSet {
	return NewTransactionSet([]TransactionRecord{
		rec(day(2024, 1, 1), "CustomerA", "ProductX", "CatFood", 2, 100, 200),
		rec(day(2024, 1, 2), "CustomerA", "ProductY", "CatFood", 1, 50, 50),
		rec(day(2024, 1, 3), "CustomerB", "ProductX", "CatDrink", 3, 100, 300),
	})
}

// fakeSet builds n random records over a small pool of names so groups collide.
func fakeSet(seed uint64, n int) *TransactionSet {
	f := gofakeit.New(seed)
	customers := make([]string, 6)
	products := make([]string, 8)
	for i := range customers {
		customers[i] = fmt.Sprintf("%s %d", f.FirstName(), i)
	}
	for i := range products {
		products[i] = fmt.Sprintf("%s %d", f.Company(), i)
	}
	categories := []string{"Makanan", "Minuman", "Fashion", "Jasa"}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	recs := make([]TransactionRecord, 0, n)
	for i := 0; i < n; i++ {
		qty := int64(f.IntRange(0, 10))
		price := int64(f.IntRange(1, 50)) * 1000
		recs = append(recs, TransactionRecord{
			Row:       i + 2,
			Date:      civil.DateOf(start.AddDate(0, 0, f.IntRange(0, 120))),
			Customer:  f.RandomString(customers),
			Product:   f.RandomString(products),
			Category:  f.RandomString(categories),
			Quantity:  qty,
			UnitPrice: decimal.NewFromInt(price),
			Total:     decimal.NewFromInt(qty * price),
		})
	}
	return NewTransactionSet(recs)
}
