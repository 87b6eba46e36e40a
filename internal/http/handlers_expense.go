package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"finbook/internal/core"
)

// expenseRequest is the write payload for expenses. Amount is deliberately
// untyped: unparsable input coerces to zero instead of failing the request.
type expenseRequest struct {
	Date        string `json:"date"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Amount      any    `json:"amount"`
}

func (req expenseRequest) toExpense() (core.Expense, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		Date:        date,
		Category:    req.Category,
		Description: req.Description,
		Amount:      core.CoerceAmount(req.Amount),
	}, nil
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Expenses())
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	expense, err := req.toExpense()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	writeJSON(w, http.StatusCreated, s.tracker.AddExpense(expense))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	expense, err := req.toExpense()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	expense.ID = chi.URLParam(r, "id")

	// Updates against an unknown id are silent no-ops, so this always
	// reports success.
	s.tracker.UpdateExpense(expense)
	writeJSON(w, http.StatusOK, expense)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	s.tracker.DeleteExpense(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}
