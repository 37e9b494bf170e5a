package event

import "time"

const (
	TopicProductCreated = "inventory.product.created"
	TopicStockMoved     = "inventory.stock.moved"
)

type ProductCreatedEvent struct {
	ProductID string `json:"product_id"`
	Sku       string `json:"sku"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Stock     int    `json:"stock"`
	MinStock  int    `json:"min_stock"`
}

// StockMovedEvent is published for every ledger entry written by a product update.
type StockMovedEvent struct {
	MovementID   string    `json:"movement_id"`
	ProductID    string    `json:"product_id"`
	Sku          string    `json:"sku"`
	Name         string    `json:"name"`
	Quantity     int       `json:"quantity"`
	MovementType string    `json:"movement_type"`
	Notes        string    `json:"notes"`
	StockBefore  int       `json:"stock_before"`
	StockAfter   int       `json:"stock_after"`
	MinStock     int       `json:"min_stock"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// LeavesLowStock reports whether the movement took the product from at or above
// its reorder threshold to below it.
func (e StockMovedEvent) LeavesLowStock() bool {
	return e.StockAfter < e.MinStock && e.StockBefore >= e.MinStock
}
