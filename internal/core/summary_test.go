package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func amt(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestMonthlySummaryEmpty(t *testing.T) {
	if got := MonthlySummary(nil, nil); len(got) != 0 {
		t.Fatalf("expected empty series, got %v", got)
	}
	if got := MonthlySummary([]Expense{}, []Invoice{}); len(got) != 0 {
		t.Fatalf("expected empty series, got %v", got)
	}
}

func TestMonthlySummaryIncomeAndExpenses(t *testing.T) {
	expenses := []Expense{
		{ID: "e1", Date: NewDate(2024, 1, 15), Amount: amt("100")},
	}
	invoices := []Invoice{
		{
			ID:        "i1",
			IssueDate: NewDate(2024, 1, 20),
			Status:    StatusPaid,
			Items: []InvoiceItem{
				{ID: "a", Price: amt("50"), Quantity: amt("2")},
			},
		},
	}

	got := MonthlySummary(expenses, invoices)
	if len(got) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(got))
	}
	if got[0].Name != "Jan '24" {
		t.Fatalf("bucket name = %q", got[0].Name)
	}
	if !got[0].Income.Equal(amt("100")) {
		t.Fatalf("income = %s, want 100", got[0].Income)
	}
	if !got[0].Expenses.Equal(amt("100")) {
		t.Fatalf("expenses = %s, want 100", got[0].Expenses)
	}
}

func TestMonthlySummaryIgnoresUnpaidInvoices(t *testing.T) {
	invoices := []Invoice{
		{IssueDate: NewDate(2024, 2, 1), Status: StatusPending,
			Items: []InvoiceItem{{Price: amt("10"), Quantity: amt("1")}}},
		{IssueDate: NewDate(2024, 2, 1), Status: StatusOverdue,
			Items: []InvoiceItem{{Price: amt("10"), Quantity: amt("1")}}},
	}
	if got := MonthlySummary(nil, invoices); len(got) != 0 {
		t.Fatalf("unpaid invoices must not create buckets, got %v", got)
	}
}

func TestMonthlySummaryBucketOrder(t *testing.T) {
	// Expenses are walked date-ascending regardless of collection order, so
	// Jan comes before Mar. The paid February invoice introduces its bucket
	// after both, income-only months list last.
	expenses := []Expense{
		{ID: "e1", Date: NewDate(2024, 3, 2), Amount: amt("30")},
		{ID: "e2", Date: NewDate(2024, 1, 10), Amount: amt("10")},
		{ID: "e3", Date: NewDate(2024, 1, 20), Amount: amt("15")},
	}
	invoices := []Invoice{
		{IssueDate: NewDate(2024, 2, 5), Status: StatusPaid,
			Items: []InvoiceItem{{Price: amt("200"), Quantity: amt("1")}}},
		{IssueDate: NewDate(2024, 1, 25), Status: StatusPaid,
			Items: []InvoiceItem{{Price: amt("40"), Quantity: amt("2")}}},
	}

	got := MonthlySummary(expenses, invoices)
	names := make([]string, len(got))
	for i, s := range got {
		names[i] = s.Name
	}
	want := []string{"Jan '24", "Mar '24", "Feb '24"}
	if len(names) != len(want) {
		t.Fatalf("buckets = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("buckets = %v, want %v", names, want)
		}
	}

	if !got[0].Expenses.Equal(amt("25")) {
		t.Fatalf("Jan expenses = %s, want 25", got[0].Expenses)
	}
	if !got[0].Income.Equal(amt("80")) {
		t.Fatalf("Jan income = %s, want 80", got[0].Income)
	}
	if !got[2].Income.Equal(amt("200")) {
		t.Fatalf("Feb income = %s, want 200", got[2].Income)
	}
	if !got[2].Expenses.IsZero() {
		t.Fatalf("Feb expenses = %s, want 0", got[2].Expenses)
	}
}

func TestMonthlySummaryDoesNotMutateInput(t *testing.T) {
	expenses := []Expense{
		{ID: "later", Date: NewDate(2024, 5, 1), Amount: amt("1")},
		{ID: "earlier", Date: NewDate(2024, 4, 1), Amount: amt("1")},
	}
	MonthlySummary(expenses, nil)
	if expenses[0].ID != "later" || expenses[1].ID != "earlier" {
		t.Fatalf("input slice was reordered: %v", expenses)
	}
}
