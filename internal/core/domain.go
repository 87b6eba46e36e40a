// Package core holds the domain types for the finance tracker: expenses,
// invoices and the derived monthly summary. All records live in memory only;
// nothing here knows about transport or storage.
package core

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as plain JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// InvoiceStatus is the payment state of an invoice.
type InvoiceStatus string

const (
	StatusPending InvoiceStatus = "Pending"
	StatusPaid    InvoiceStatus = "Paid"
	StatusOverdue InvoiceStatus = "Overdue"
)

// ParseStatus maps free-form status input to a known InvoiceStatus.
// Unknown values fall back to Pending, matching the form default.
func ParseStatus(s string) InvoiceStatus {
	switch InvoiceStatus(strings.TrimSpace(s)) {
	case StatusPaid:
		return StatusPaid
	case StatusOverdue:
		return StatusOverdue
	default:
		return StatusPending
	}
}

const dateLayout = "2006-01-02"

// Date is a calendar day. It marshals as an ISO 8601 date (YYYY-MM-DD)
// without a time component.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar day.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses an ISO 8601 date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// MonthKey returns the display key used to group records by month,
// e.g. "Jan '24".
func (d Date) MonthKey() string {
	return d.Format("Jan '06")
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Expense is a single recorded business expense.
type Expense struct {
	ID          string          `json:"id"`
	Date        Date            `json:"date"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// InvoiceItem is one line of an invoice. Its ID only needs to be unique
// within the owning invoice.
type InvoiceItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// Invoice is a client invoice with its line items. InvoiceNumber is assigned
// once at creation and never recomputed, even when other invoices are deleted.
type Invoice struct {
	ID            string        `json:"id"`
	InvoiceNumber string        `json:"invoiceNumber"`
	ClientName    string        `json:"clientName"`
	ClientEmail   string        `json:"clientEmail"`
	IssueDate     Date          `json:"issueDate"`
	DueDate       Date          `json:"dueDate"`
	Items         []InvoiceItem `json:"items"`
	Status        InvoiceStatus `json:"status"`
}

// Total derives the payable amount from the line items. It is never stored.
func (inv Invoice) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range inv.Items {
		total = total.Add(item.Price.Mul(item.Quantity))
	}
	return total
}

// CoerceAmount converts free-form numeric input into a non-negative amount.
// Unparsable, missing or negative input coerces to zero instead of failing;
// bad numbers from forms must never abort a mutation.
func CoerceAmount(v any) decimal.Decimal {
	var (
		d   decimal.Decimal
		err error
	)
	switch n := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		d = n
	case float64:
		d = decimal.NewFromFloat(n)
	case int:
		d = decimal.NewFromInt(int64(n))
	case int64:
		d = decimal.NewFromInt(n)
	case json.Number:
		d, err = decimal.NewFromString(n.String())
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(n, ",", "."))
		d, err = decimal.NewFromString(s)
	default:
		return decimal.Zero
	}
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}
