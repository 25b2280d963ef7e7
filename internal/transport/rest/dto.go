package rest

import (
	"strings"

	"github.com/abgdnv/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// ProductCreateDto is the admin request to add a product. An empty ID is generated.
type ProductCreateDto struct {
	ID          string          `json:"id"`
	Name        string          `json:"name" validate:"required"`
	Price       decimal.Decimal `json:"price" validate:"gt=0"`
	Category    string          `json:"category" validate:"required,oneof=electronics home cars"`
	Image       string          `json:"image" validate:"omitempty,url"`
	Description string          `json:"description"`
}

type CartItemAddDto struct {
	ProductID string `json:"product_id" validate:"required"`
}

type CartQuantityDto struct {
	Delta int `json:"delta" validate:"required"`
}

// CheckoutDto carries the customer contact fields. All are required and must not be blank.
type CheckoutDto struct {
	Name  string `json:"name" validate:"required"`
	City  string `json:"city" validate:"required"`
	Phone string `json:"phone" validate:"required"`
}

// Normalize trims the contact fields before they are validated.
func (d *CheckoutDto) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.City = strings.TrimSpace(d.City)
	d.Phone = strings.TrimSpace(d.Phone)
}

// CartDto is the cart view with its aggregates.
type CartDto struct {
	Items []domain.CartLine `json:"items"`
	Total decimal.Decimal   `json:"total"`
	Count int               `json:"count"`
}

func newCartDto(items []domain.CartLine) CartDto {
	return CartDto{
		Items: items,
		Total: domain.LinesTotal(items),
		Count: domain.LinesCount(items),
	}
}
