package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finbook/internal/core"
)

type invoiceItemRequest struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Quantity    any    `json:"quantity"`
	Price       any    `json:"price"`
}

type invoiceRequest struct {
	ClientName  string               `json:"clientName"`
	ClientEmail string               `json:"clientEmail"`
	IssueDate   string               `json:"issueDate"`
	DueDate     string               `json:"dueDate"`
	Items       []invoiceItemRequest `json:"items"`
	Status      string               `json:"status"`
}

func (req invoiceRequest) toInvoice() (core.Invoice, error) {
	issue, err := core.ParseDate(req.IssueDate)
	if err != nil {
		return core.Invoice{}, err
	}
	due, err := core.ParseDate(req.DueDate)
	if err != nil {
		return core.Invoice{}, err
	}

	items := make([]core.InvoiceItem, 0, len(req.Items))
	for _, item := range req.Items {
		id := item.ID
		if id == "" {
			id = uuid.NewString()
		}
		items = append(items, core.InvoiceItem{
			ID:          id,
			Description: item.Description,
			Quantity:    core.CoerceAmount(item.Quantity),
			Price:       core.CoerceAmount(item.Price),
		})
	}

	return core.Invoice{
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		IssueDate:   issue,
		DueDate:     due,
		Items:       items,
		Status:      core.ParseStatus(req.Status),
	}, nil
}

// invoiceResponse adds the derived total to the stored record. The total is
// never stored, only computed on the way out.
type invoiceResponse struct {
	core.Invoice
	Total decimal.Decimal `json:"total"`
}

func toInvoiceResponse(inv core.Invoice) invoiceResponse {
	return invoiceResponse{Invoice: inv, Total: inv.Total()}
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices := s.tracker.Invoices()
	out := make([]invoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toInvoiceResponse(inv))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	invoice, err := req.toInvoice()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	writeJSON(w, http.StatusCreated, toInvoiceResponse(s.tracker.AddInvoice(invoice)))
}

func (s *Server) handleUpdateInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	invoice, err := req.toInvoice()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	invoice.ID = chi.URLParam(r, "id")

	// The store keeps the originally assigned invoice number and ignores
	// unknown ids.
	s.tracker.UpdateInvoice(invoice)
	writeJSON(w, http.StatusOK, toInvoiceResponse(invoice))
}

func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	s.tracker.DeleteInvoice(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}
