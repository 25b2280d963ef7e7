package engine

import (
	"github.com/abgdnv/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// Dashboard is the admin overview of the store.
type Dashboard struct {
	Revenue       decimal.Decimal `json:"revenue"`
	OrderCount    int             `json:"order_count"`
	PendingOrders int             `json:"pending_orders"`
	ProductCount  int             `json:"product_count"`
}

// Dashboard aggregates the ledger and the catalog.
func (e *Engine) Dashboard() Dashboard {
	e.mu.Lock()
	defer e.mu.Unlock()

	d := Dashboard{
		Revenue:      decimal.Zero,
		OrderCount:   len(e.orders),
		ProductCount: len(e.products),
	}
	for _, o := range e.orders {
		d.Revenue = d.Revenue.Add(o.Total)
		if o.Status == domain.StatusPending {
			d.PendingOrders++
		}
	}
	return d
}
