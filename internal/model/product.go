package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uuid.UUID       `json:"id"`
	Sku         string          `json:"sku"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	SupplierID  *uuid.UUID      `json:"supplier_id"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	MinStock    int             `json:"min_stock"`
	ImageURL    *string         `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Joined for presentation only; never written.
	CategoryName *string `json:"category_name,omitempty"`
	SupplierName *string `json:"supplier_name,omitempty"`
}

// IsLowStock reports whether the product is strictly below its reorder threshold.
func (p Product) IsLowStock() bool {
	return p.Stock < p.MinStock
}

// StockValue is price times stock on hand.
func (p Product) StockValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Stock)))
}

// ProductFilter narrows ListProducts. Zero values mean "no filter".
type ProductFilter struct {
	Search       string
	CategoryID   *uuid.UUID
	SupplierID   *uuid.UUID
	LowStockOnly bool
}
