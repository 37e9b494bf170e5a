package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type MovementType string

const (
	MovementTypeIn  MovementType = "IN"
	MovementTypeOut MovementType = "OUT"
)

// DefaultMovementNotes is recorded when an adjustment carries no notes.
const DefaultMovementNotes = "Stock adjustment"

// MovementTypeFor derives the ledger tag from the sign of quantity.
func MovementTypeFor(quantity int) MovementType {
	if quantity > 0 {
		return MovementTypeIn
	}
	return MovementTypeOut
}

func (t MovementType) Validate() error {
	switch t {
	case MovementTypeIn, MovementTypeOut:
		return nil
	default:
		return fmt.Errorf("invalid movement type: %q", string(t))
	}
}

// StockMovement is one ledger entry. ProductID and ProductName are nil once the
// product has been deleted.
type StockMovement struct {
	ID           uuid.UUID    `json:"id"`
	ProductID    *uuid.UUID   `json:"product_id"`
	Quantity     int          `json:"quantity"`
	MovementType MovementType `json:"movement_type"`
	Notes        string       `json:"notes"`
	CreatedAt    time.Time    `json:"created_at"`
	ProductName  *string      `json:"product_name"`
}

// NewStockMovement builds the ledger entry for a non-zero delta.
func NewStockMovement(productID uuid.UUID, delta int, notes string, at time.Time) (StockMovement, error) {
	if delta == 0 {
		return StockMovement{}, fmt.Errorf("stock movement requires a non-zero quantity")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return StockMovement{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	if notes == "" {
		notes = DefaultMovementNotes
	}

	return StockMovement{
		ID:           id,
		ProductID:    &productID,
		Quantity:     delta,
		MovementType: MovementTypeFor(delta),
		Notes:        notes,
		CreatedAt:    at,
	}, nil
}
