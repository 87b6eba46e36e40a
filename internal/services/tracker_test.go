package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finbook/internal/ai"
	"finbook/internal/core"
	applog "finbook/internal/log"
	"finbook/internal/store"
)

// fakeCollaborator counts calls and serves canned responses. Set block to a
// channel to hold GenerateInsight in flight until the channel is closed.
type fakeCollaborator struct {
	receiptCalls int32
	insightCalls int32

	receiptFields ai.ReceiptFields
	receiptErr    error

	insightText string
	insightErr  error
	block       chan struct{}
}

func (f *fakeCollaborator) ParseReceipt(_ context.Context, _ []byte, _ string) (ai.ReceiptFields, error) {
	atomic.AddInt32(&f.receiptCalls, 1)
	return f.receiptFields, f.receiptErr
}

func (f *fakeCollaborator) GenerateInsight(_ context.Context, _ []core.Expense) (string, error) {
	atomic.AddInt32(&f.insightCalls, 1)
	if f.block != nil {
		<-f.block
	}
	return f.insightText, f.insightErr
}

func testLogger() *applog.Logger {
	return applog.New(applog.ParseLevel("error"))
}

func newTestTracker(collab Collaborator) *Tracker {
	return NewTracker(store.New(), collab, testLogger())
}

func waitForStatus(t *testing.T, tr *Tracker, want InsightStatus) InsightState {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if state := tr.Insight(); state.Status == want {
			return state
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("insight never reached status %q, last state %+v", want, tr.Insight())
	return InsightState{}
}

func TestAddExpenseTriggersInsight(t *testing.T) {
	fake := &fakeCollaborator{insightText: "Spend less on coffee."}
	tr := newTestTracker(fake)

	tr.AddExpense(core.Expense{Date: core.NewDate(2024, 1, 1), Amount: decimal.NewFromInt(5)})

	state := waitForStatus(t, tr, InsightReady)
	if state.Text != "Spend less on coffee." {
		t.Fatalf("unexpected insight text %q", state.Text)
	}
	if n := atomic.LoadInt32(&fake.insightCalls); n != 1 {
		t.Fatalf("insight calls = %d, want 1", n)
	}
}

func TestInsightEmptyExpensesSkipsNetworkCall(t *testing.T) {
	fake := &fakeCollaborator{insightText: "never used"}
	tr := newTestTracker(fake)

	if err := tr.RefreshInsight(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state := tr.Insight()
	if state.Status != InsightReady || state.Text != ai.InsightNoDataMessage {
		t.Fatalf("unexpected state %+v", state)
	}
	if n := atomic.LoadInt32(&fake.insightCalls); n != 0 {
		t.Fatalf("collaborator was called %d times for empty expense set", n)
	}
}

func TestInsightFailureFallsBackToFixedMessage(t *testing.T) {
	fake := &fakeCollaborator{insightErr: ai.ErrInsight}
	tr := newTestTracker(fake)

	tr.AddExpense(core.Expense{Date: core.NewDate(2024, 1, 1)})

	state := waitForStatus(t, tr, InsightFailed)
	if state.Text != ai.InsightFallbackMessage {
		t.Fatalf("unexpected fallback text %q", state.Text)
	}
}

func TestManualRefreshRejectedWhileInFlight(t *testing.T) {
	fake := &fakeCollaborator{insightText: "ok", block: make(chan struct{})}
	tr := newTestTracker(fake)

	tr.AddExpense(core.Expense{Date: core.NewDate(2024, 1, 1)})
	waitForStatus(t, tr, InsightPending)

	if err := tr.RefreshInsight(); err != ErrInsightPending {
		t.Fatalf("expected ErrInsightPending, got %v", err)
	}

	close(fake.block)
	waitForStatus(t, tr, InsightReady)

	// Once resolved, a manual refresh is allowed again.
	if err := tr.RefreshInsight(); err != nil {
		t.Fatalf("refresh after resolve failed: %v", err)
	}
}

func TestInsightWithoutCollaborator(t *testing.T) {
	tr := newTestTracker(nil)
	tr.AddExpense(core.Expense{Date: core.NewDate(2024, 1, 1)})

	state := tr.Insight()
	if state.Status != InsightFailed || state.Text != ai.InsightFallbackMessage {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestScanReceiptDefaultsMissingFields(t *testing.T) {
	fake := &fakeCollaborator{} // all fields absent in the response
	tr := newTestTracker(fake)

	expense, err := tr.ScanReceipt(context.Background(), []byte{0xFF}, "image/jpeg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if expense.Category != "Uncategorized" {
		t.Fatalf("category = %q", expense.Category)
	}
	if expense.Description != "Scanned Receipt" {
		t.Fatalf("description = %q", expense.Description)
	}
	if !expense.Amount.IsZero() {
		t.Fatalf("amount = %s, want 0", expense.Amount)
	}
	if expense.Date.String() != core.Today().String() {
		t.Fatalf("date = %s, want today", expense.Date)
	}
	if len(tr.Expenses()) != 1 {
		t.Fatalf("expense was not recorded")
	}
}

func TestScanReceiptUsesExtractedFields(t *testing.T) {
	fake := &fakeCollaborator{receiptFields: ai.ReceiptFields{
		Amount:      19.99,
		Date:        "2024-02-10",
		Description: "Coffee Corner",
	}}
	tr := newTestTracker(fake)

	expense, err := tr.ScanReceipt(context.Background(), []byte{0xFF}, "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expense.Description != "Coffee Corner" || expense.Date.String() != "2024-02-10" {
		t.Fatalf("unexpected expense %+v", expense)
	}
	if !expense.Amount.Equal(decimal.NewFromFloat(19.99)) {
		t.Fatalf("amount = %s, want 19.99", expense.Amount)
	}
}

func TestScanReceiptFailureRecordsNothing(t *testing.T) {
	fake := &fakeCollaborator{receiptErr: ai.ErrReceiptParse}
	tr := newTestTracker(fake)

	if _, err := tr.ScanReceipt(context.Background(), []byte{0xFF}, "image/png"); err != ai.ErrReceiptParse {
		t.Fatalf("expected ErrReceiptParse, got %v", err)
	}
	if len(tr.Expenses()) != 0 {
		t.Fatalf("failed scan must not record an expense")
	}
}

func TestSummaryMemoizedUntilMutation(t *testing.T) {
	tr := newTestTracker(nil)
	tr.AddExpense(core.Expense{Date: core.NewDate(2024, 1, 1), Amount: decimal.NewFromInt(10)})

	first := tr.Summary()
	second := tr.Summary()
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("unexpected summaries %v %v", first, second)
	}
	if &first[0] != &second[0] {
		t.Fatalf("summary recomputed without an intervening mutation")
	}

	tr.AddExpense(core.Expense{Date: core.NewDate(2024, 2, 1), Amount: decimal.NewFromInt(5)})
	third := tr.Summary()
	if len(third) != 2 {
		t.Fatalf("summary not recomputed after mutation: %v", third)
	}
}

func TestTotals(t *testing.T) {
	tr := newTestTracker(nil)
	tr.AddExpense(core.Expense{Date: core.NewDate(2024, 1, 1), Amount: decimal.NewFromInt(30)})
	tr.AddInvoice(core.Invoice{
		IssueDate: core.NewDate(2024, 1, 5),
		Status:    core.StatusPaid,
		Items:     []core.InvoiceItem{{Price: decimal.NewFromInt(100), Quantity: decimal.NewFromInt(1)}},
	})
	tr.AddInvoice(core.Invoice{
		IssueDate: core.NewDate(2024, 1, 6),
		Status:    core.StatusPending,
		Items:     []core.InvoiceItem{{Price: decimal.NewFromInt(999), Quantity: decimal.NewFromInt(1)}},
	})

	totals := tr.Totals()
	if !totals.TotalIncome.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("income = %s, want 100 (pending invoices excluded)", totals.TotalIncome)
	}
	if !totals.TotalExpenses.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expenses = %s, want 30", totals.TotalExpenses)
	}
	if !totals.NetProfit.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("net profit = %s, want 70", totals.NetProfit)
	}
	if totals.PendingInvoices != 1 {
		t.Fatalf("pending invoices = %d, want 1", totals.PendingInvoices)
	}
}
