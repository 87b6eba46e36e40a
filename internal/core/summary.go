package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// MonthSummary is one point of the income-vs-expenses chart series.
// Name is the display key, e.g. "Jan '24".
type MonthSummary struct {
	Name     string          `json:"name"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

// MonthlySummary derives the monthly income/expense series from the current
// expense and invoice collections. It is a pure function: callers recompute
// (or memoize) it on every read, it never mutates its inputs.
//
// Expenses are walked in ascending date order (stable, ties keep their
// relative order) and accumulate into their month's Expenses bucket. Paid
// invoices then accumulate their item totals into the month of their issue
// date. Buckets are emitted in first-insertion order, so a month first seen
// through an expense lists before one first seen through income. Empty
// inputs yield an empty series.
func MonthlySummary(expenses []Expense, invoices []Invoice) []MonthSummary {
	index := make(map[string]int)
	var series []MonthSummary

	bucket := func(key string) *MonthSummary {
		if i, ok := index[key]; ok {
			return &series[i]
		}
		index[key] = len(series)
		series = append(series, MonthSummary{
			Name:     key,
			Income:   decimal.Zero,
			Expenses: decimal.Zero,
		})
		return &series[len(series)-1]
	}

	sorted := make([]Expense, len(expenses))
	copy(sorted, expenses)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date.Time)
	})

	for _, exp := range sorted {
		b := bucket(exp.Date.MonthKey())
		b.Expenses = b.Expenses.Add(CoerceAmount(exp.Amount))
	}

	for _, inv := range invoices {
		if inv.Status != StatusPaid {
			continue
		}
		b := bucket(inv.IssueDate.MonthKey())
		b.Income = b.Income.Add(inv.Total())
	}

	return series
}
