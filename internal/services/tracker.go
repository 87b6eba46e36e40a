// Package services contains the mutation facade the transport layer calls
// into, plus the insight request manager. It owns nothing durable itself;
// records live in the injected store.
package services

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"finbook/internal/ai"
	"finbook/internal/core"
	"finbook/internal/log"
	"finbook/internal/store"
)

// Collaborator is the external inference service seen from this package.
// *ai.Client implements it; tests substitute a fake.
type Collaborator interface {
	ParseReceipt(ctx context.Context, image []byte, mimeType string) (ai.ReceiptFields, error)
	GenerateInsight(ctx context.Context, expenses []core.Expense) (string, error)
}

// Totals is the dashboard headline: income over paid invoices, expenses over
// everything recorded, and the difference.
type Totals struct {
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetProfit     decimal.Decimal `json:"netProfit"`

	PendingInvoices int `json:"pendingInvoices"`
}

// Tracker wraps the record store with the operations the transport layer
// invokes. Every mutation returns once the store is updated; rapid calls
// against the same id resolve last-write-wins.
type Tracker struct {
	store   *store.Store
	collab  Collaborator
	insight *InsightManager
	log     *log.Logger

	// Memoized summary, keyed by the store version it was derived from.
	mu             sync.Mutex
	summary        []core.MonthSummary
	summaryVersion uint64
	summaryValid   bool
}

// NewTracker builds the facade. collab may be nil, in which case the AI
// operations resolve to their fixed failure messages immediately.
func NewTracker(st *store.Store, collab Collaborator, logger *log.Logger) *Tracker {
	return &Tracker{
		store:   st,
		collab:  collab,
		insight: NewInsightManager(collab, logger),
		log:     logger.WithComponent("tracker"),
	}
}

// Expenses lists all expenses, newest first.
func (t *Tracker) Expenses() []core.Expense {
	return t.store.Expenses()
}

// Invoices lists all invoices, newest first.
func (t *Tracker) Invoices() []core.Invoice {
	return t.store.Invoices()
}

// AddExpense stores a new expense and kicks off an insight refresh, since
// the expense count changed.
func (t *Tracker) AddExpense(e core.Expense) core.Expense {
	stored := t.store.AddExpense(e)
	t.log.Info("expense added", "id", stored.ID, "category", stored.Category)
	t.insight.Trigger(t.store.Expenses())
	return stored
}

// UpdateExpense replaces the expense with the same id. Unknown ids leave the
// store untouched.
func (t *Tracker) UpdateExpense(e core.Expense) {
	t.store.UpdateExpense(e)
}

// DeleteExpense removes the expense with the given id, if present, and kicks
// off an insight refresh when the count changed.
func (t *Tracker) DeleteExpense(id string) {
	before := t.store.Version()
	t.store.DeleteExpense(id)
	if t.store.Version() != before {
		t.log.Info("expense deleted", "id", id)
		t.insight.Trigger(t.store.Expenses())
	}
}

// AddInvoice stores a new invoice with its assigned invoice number.
func (t *Tracker) AddInvoice(inv core.Invoice) core.Invoice {
	stored := t.store.AddInvoice(inv)
	t.log.Info("invoice added", "id", stored.ID, "number", stored.InvoiceNumber)
	return stored
}

// UpdateInvoice replaces the invoice with the same id. Unknown ids leave the
// store untouched.
func (t *Tracker) UpdateInvoice(inv core.Invoice) {
	t.store.UpdateInvoice(inv)
}

// DeleteInvoice removes the invoice with the given id, if present.
func (t *Tracker) DeleteInvoice(id string) {
	t.store.DeleteInvoice(id)
}

// Summary returns the monthly income/expense series. The series is
// recomputed only when a mutation happened since the last call.
func (t *Tracker) Summary() []core.MonthSummary {
	expenses, invoices, version := t.store.Snapshot()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.summaryValid && t.summaryVersion == version {
		return t.summary
	}
	t.summary = core.MonthlySummary(expenses, invoices)
	t.summaryVersion = version
	t.summaryValid = true
	return t.summary
}

// Totals derives the dashboard headline numbers from the current records.
func (t *Tracker) Totals() Totals {
	expenses, invoices, _ := t.store.Snapshot()

	totals := Totals{
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
		NetProfit:     decimal.Zero,
	}
	for _, inv := range invoices {
		switch inv.Status {
		case core.StatusPaid:
			totals.TotalIncome = totals.TotalIncome.Add(inv.Total())
		case core.StatusPending:
			totals.PendingInvoices++
		}
	}
	for _, exp := range expenses {
		totals.TotalExpenses = totals.TotalExpenses.Add(core.CoerceAmount(exp.Amount))
	}
	totals.NetProfit = totals.TotalIncome.Sub(totals.TotalExpenses)
	return totals
}

// ScanReceipt runs the uploaded image through the collaborator and records
// the extracted expense. Missing fields default to amount 0, today's date
// and a generic description; the category is always "Uncategorized".
func (t *Tracker) ScanReceipt(ctx context.Context, image []byte, mimeType string) (core.Expense, error) {
	if t.collab == nil {
		t.log.Warn("collaborator not configured, rejecting receipt scan")
		return core.Expense{}, ai.ErrReceiptParse
	}
	fields, err := t.collab.ParseReceipt(ctx, image, mimeType)
	if err != nil {
		return core.Expense{}, err
	}

	date := core.Today()
	if parsed, err := core.ParseDate(fields.Date); err == nil {
		date = parsed
	}
	description := fields.Description
	if description == "" {
		description = "Scanned Receipt"
	}

	return t.AddExpense(core.Expense{
		Date:        date,
		Category:    "Uncategorized",
		Description: description,
		Amount:      core.CoerceAmount(fields.Amount),
	}), nil
}

// Insight reports the current insight state for polling callers.
func (t *Tracker) Insight() InsightState {
	return t.insight.State()
}

// RefreshInsight re-triggers insight generation on user request. It fails
// with ErrInsightPending while a previous request is still in flight.
func (t *Tracker) RefreshInsight() error {
	return t.insight.Refresh(t.store.Expenses())
}
