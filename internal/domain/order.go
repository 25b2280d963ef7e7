package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// Customer holds the contact fields captured at checkout.
type Customer struct {
	Name  string `json:"name"`
	City  string `json:"city"`
	Phone string `json:"phone"`
}

// Order is an immutable record of a checkout. Items are copies of the cart lines at placement time
// and Total is computed once from them.
type Order struct {
	ID           string          `json:"id"`
	CustomerName string          `json:"customerName"`
	City         string          `json:"city"`
	Phone        string          `json:"phone"`
	Items        []CartLine      `json:"items"`
	Total        decimal.Decimal `json:"total"`
	Date         time.Time       `json:"date"`
	Status       OrderStatus     `json:"status"`
}

// Clone returns a copy that shares no memory with o.
func (o Order) Clone() Order {
	o.Items = append([]CartLine(nil), o.Items...)
	return o
}

// Customer returns the contact fields of the order.
func (o Order) Customer() Customer {
	return Customer{Name: o.CustomerName, City: o.City, Phone: o.Phone}
}

// LinesTotal sums price × quantity over lines. The sum is exact.
func LinesTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// LinesCount sums the quantities of lines.
func LinesCount(lines []CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// Valid reports whether every contact field is non-blank.
func (c Customer) Valid() bool {
	return strings.TrimSpace(c.Name) != "" && strings.TrimSpace(c.City) != "" && strings.TrimSpace(c.Phone) != ""
}

// Ledger is the append-only order history, most recent first: index 0 is always the latest order.
type Ledger []Order

// Prepend returns a new ledger with o in front. The receiver is not modified.
func (l Ledger) Prepend(o Order) Ledger {
	next := make(Ledger, 0, len(l)+1)
	next = append(next, o)
	return append(next, l...)
}

// Find returns the order with the given id.
func (l Ledger) Find(id string) (Order, bool) {
	for _, o := range l {
		if o.ID == id {
			return o, true
		}
	}
	return Order{}, false
}

// Clone deep-copies the ledger.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for i, o := range l {
		out[i] = o.Clone()
	}
	return out
}
