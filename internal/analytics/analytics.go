// Package analytics summarises a user's spending.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/duet/internal/models"
)

const (
	// TopCategoryLimit is how many categories Report.TopCategories holds.
	TopCategoryLimit = 8

	monthLayout = "2006-01"
)

// palette colours categories in the order they are first seen.
var palette = []string{
	"hsl(173, 80%, 40%)",
	"hsl(160, 84%, 39%)",
	"hsl(43, 74%, 66%)",
	"hsl(27, 87%, 67%)",
	"hsl(10, 79%, 63%)",
	"hsl(200, 80%, 50%)",
	"hsl(142, 71%, 45%)",
	"hsl(24, 70%, 60%)",
}

var hundred = decimal.NewFromInt(100)

// Month is the spend in one calendar month.
type Month struct {
	// Key is "YYYY-MM".
	Key   string
	Total decimal.Decimal
	Count int
}

// CategorySpend is the spend in one category.
type CategorySpend struct {
	Name  string
	Total decimal.Decimal
	Count int
	Color string
}

// Summary holds headline numbers.
type Summary struct {
	TotalSpent        decimal.Decimal
	AvgAmount         decimal.Decimal
	CurrentMonthSpent decimal.Decimal
	// MonthOverMonthChange is the percentage change from the previous
	// calendar month, zero when that month had no spend.
	MonthOverMonthChange decimal.Decimal
	TotalTransactions    int
}

// Report is the result of Summarize.
type Report struct {
	// Months is ordered oldest first and only has months with spend.
	Months        []Month
	TopCategories []CategorySpend
	Summary       Summary
}

// Summarize aggregates txs by month and category. categoryNames maps
// category id to name; unknown ids are reported as "Uncategorized".
func Summarize(txs []*models.Transaction, categoryNames map[string]string, now time.Time) Report {
	sorted := make([]*models.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	months := map[string]*Month{}
	categories := map[string]*CategorySpend{}
	total := decimal.Zero

	for _, tx := range sorted {
		total = total.Add(tx.Amount)

		key := tx.Date.UTC().Format(monthLayout)
		m, ok := months[key]
		if !ok {
			m = &Month{Key: key}
			months[key] = m
		}
		m.Total = m.Total.Add(tx.Amount)
		m.Count++

		name, ok := categoryNames[tx.CategoryID]
		if !ok {
			name = "Uncategorized"
		}
		c, ok := categories[name]
		if !ok {
			c = &CategorySpend{Name: name, Color: palette[len(categories)%len(palette)]}
			categories[name] = c
		}
		c.Total = c.Total.Add(tx.Amount)
		c.Count++
	}

	report := Report{
		Months:        make([]Month, 0, len(months)),
		TopCategories: make([]CategorySpend, 0, len(categories)),
	}
	for _, m := range months {
		report.Months = append(report.Months, *m)
	}
	sort.Slice(report.Months, func(i, j int) bool { return report.Months[i].Key < report.Months[j].Key })

	for _, c := range categories {
		report.TopCategories = append(report.TopCategories, *c)
	}
	sort.Slice(report.TopCategories, func(i, j int) bool {
		a, b := report.TopCategories[i], report.TopCategories[j]
		if cmp := a.Total.Cmp(b.Total); cmp != 0 {
			return cmp > 0
		}
		return a.Name < b.Name
	})
	if len(report.TopCategories) > TopCategoryLimit {
		report.TopCategories = report.TopCategories[:TopCategoryLimit]
	}

	report.Summary = summarize(total, len(sorted), months, now.UTC())
	return report
}

func summarize(total decimal.Decimal, count int, months map[string]*Month, now time.Time) Summary {
	s := Summary{
		TotalSpent:           total,
		AvgAmount:            decimal.Zero,
		CurrentMonthSpent:    decimal.Zero,
		MonthOverMonthChange: decimal.Zero,
		TotalTransactions:    count,
	}
	if count > 0 {
		s.AvgAmount = total.DivRound(decimal.NewFromInt(int64(count)), 2)
	}

	current := now.Format(monthLayout)
	previous := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, time.UTC).Format(monthLayout)

	if m, ok := months[current]; ok {
		s.CurrentMonthSpent = m.Total
	}
	if m, ok := months[previous]; ok && m.Total.IsPositive() {
		s.MonthOverMonthChange = s.CurrentMonthSpent.Sub(m.Total).Div(m.Total).Mul(hundred).Round(2)
	}
	return s
}
