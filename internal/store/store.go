// Package store implements the in-memory record store that is the single
// source of truth for expenses and invoices. It is constructed once in main
// and injected into every consumer; there is no package-level state.
package store

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"finbook/internal/core"
)

// Store holds the two record collections in newest-first order.
//
// The domain model is single-writer, but HTTP handlers run on separate
// goroutines so the collections are guarded by a mutex. Updates and deletes
// that reference an unknown id are deliberate silent no-ops; the caller's
// view simply does not change.
type Store struct {
	mu       sync.Mutex
	expenses []core.Expense
	invoices []core.Invoice

	// invoiceSeq is a monotonic counter for invoice numbers. It only ever
	// increases, so deleting invoices can never cause a number to be
	// reissued.
	invoiceSeq int

	// version increments on every effective mutation. Readers use it to
	// invalidate memoized derived data.
	version uint64
}

func New() *Store {
	return &Store{}
}

// Version reports the current mutation counter.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Expenses returns a copy of the expense collection, newest first.
func (s *Store) Expenses() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.expenses...)
}

// Invoices returns a copy of the invoice collection, newest first.
func (s *Store) Invoices() []core.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Invoice(nil), s.invoices...)
}

// Snapshot returns both collections together with the version they belong
// to, so derived data can be memoized consistently.
func (s *Store) Snapshot() (expenses []core.Expense, invoices []core.Invoice, version uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expenses = append([]core.Expense(nil), s.expenses...)
	invoices = append([]core.Invoice(nil), s.invoices...)
	return expenses, invoices, s.version
}

// AddExpense stores the expense under a fresh unique id and returns the
// stored record. The new record is prepended so reads list newest first.
func (s *Store) AddExpense(e core.Expense) core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = uuid.NewString()
	s.expenses = append([]core.Expense{e}, s.expenses...)
	s.version++
	return e
}

// UpdateExpense replaces the record matching e.ID in place. Unknown ids are
// ignored.
func (s *Store) UpdateExpense(e core.Expense) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].ID == e.ID {
			s.expenses[i] = e
			s.version++
			return
		}
	}
}

// DeleteExpense removes the record with the given id. Unknown ids are
// ignored.
func (s *Store) DeleteExpense(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].ID == id {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			s.version++
			return
		}
	}
}

// AddInvoice stores the invoice under a fresh unique id, assigns the next
// invoice number and returns the stored record. The number is fixed at
// creation time and never recomputed on update.
func (s *Store) AddInvoice(inv core.Invoice) core.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv.ID = uuid.NewString()
	s.invoiceSeq++
	inv.InvoiceNumber = fmt.Sprintf("INV-%03d", s.invoiceSeq)
	s.invoices = append([]core.Invoice{inv}, s.invoices...)
	s.version++
	return inv
}

// UpdateInvoice replaces the record matching inv.ID in place, keeping the
// originally assigned invoice number. Unknown ids are ignored.
func (s *Store) UpdateInvoice(inv core.Invoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.invoices {
		if s.invoices[i].ID == inv.ID {
			inv.InvoiceNumber = s.invoices[i].InvoiceNumber
			s.invoices[i] = inv
			s.version++
			return
		}
	}
}

// DeleteInvoice removes the record with the given id. Unknown ids are
// ignored. The invoice number counter is not rewound.
func (s *Store) DeleteInvoice(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.invoices {
		if s.invoices[i].ID == id {
			s.invoices = append(s.invoices[:i], s.invoices[i+1:]...)
			s.version++
			return
		}
	}
}
