package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/inventory-backoffice/internal/apperr"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/model"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/db"
)

// StockMovementRepository is the append-only stock ledger.
type StockMovementRepository interface {
	WithDB(db db.DB) StockMovementRepository
	AppendStockMovement(ctx context.Context, movement model.StockMovement) error
	ListRecentStockMovements(ctx context.Context, limit int) ([]model.StockMovement, error)
	ListProductStockMovements(ctx context.Context, productID uuid.UUID, limit int) ([]model.StockMovement, error)
	// StockTrend sums inbound and outbound quantities per calendar day in loc for
	// movements created at or after since. Days without movements are omitted.
	// loc must be an IANA zone; PostgreSQL resolves the name itself.
	StockTrend(ctx context.Context, since time.Time, loc *time.Location) ([]model.StockTrendDay, error)
}

type stockMovementRepository struct {
	db db.DB
}

func NewStockMovementRepository(db db.DB) StockMovementRepository {
	return &stockMovementRepository{db: db}
}

func (r stockMovementRepository) WithDB(db db.DB) StockMovementRepository {
	return &stockMovementRepository{db: db}
}

func (r stockMovementRepository) AppendStockMovement(ctx context.Context, movement model.StockMovement) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO stock_movements (id, product_id, quantity, movement_type, notes, created_at)
		VALUES (@id, @product_id, @quantity, @movement_type, @notes, @created_at)
	`, pgx.NamedArgs{
		"id":            movement.ID,
		"product_id":    movement.ProductID,
		"quantity":      movement.Quantity,
		"movement_type": string(movement.MovementType),
		"notes":         movement.Notes,
		"created_at":    movement.CreatedAt,
	}); err != nil {
		if _, ok := db.IsForeignKeyViolation(err); ok {
			return apperr.DanglingReferenceErr.WrapParent(err)
		}
		return wrapStorageErr("append stock movement", err)
	}

	return nil
}

func (r stockMovementRepository) ListRecentStockMovements(ctx context.Context, limit int) ([]model.StockMovement, error) {
	rows, err := r.db.Query(ctx, `
		SELECT m.id, m.product_id, m.quantity, m.movement_type, m.notes, m.created_at, p.name
		FROM stock_movements m
		LEFT JOIN products p ON p.id = m.product_id
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, wrapStorageErr("list recent stock movements", err)
	}

	return collectStockMovements(rows)
}

func (r stockMovementRepository) ListProductStockMovements(ctx context.Context, productID uuid.UUID, limit int) ([]model.StockMovement, error) {
	rows, err := r.db.Query(ctx, `
		SELECT m.id, m.product_id, m.quantity, m.movement_type, m.notes, m.created_at, p.name
		FROM stock_movements m
		LEFT JOIN products p ON p.id = m.product_id
		WHERE m.product_id = $1
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $2
	`, productID, limit)
	if err != nil {
		return nil, wrapStorageErr("list product stock movements", err)
	}

	return collectStockMovements(rows)
}

func (r stockMovementRepository) StockTrend(ctx context.Context, since time.Time, loc *time.Location) ([]model.StockTrendDay, error) {
	rows, err := r.db.Query(ctx, `
		SELECT
			(created_at AT TIME ZONE $2::text)::date AS day,
			COALESCE(SUM(quantity) FILTER (WHERE quantity > 0), 0)  AS in_qty,
			COALESCE(SUM(-quantity) FILTER (WHERE quantity < 0), 0) AS out_qty
		FROM stock_movements
		WHERE created_at >= $1
		GROUP BY day
		ORDER BY day
	`, since, loc.String())
	if err != nil {
		return nil, wrapStorageErr("stock trend", err)
	}
	defer rows.Close()

	days := []model.StockTrendDay{}
	for rows.Next() {
		var (
			day     time.Time
			in, out int64
		)
		if err := rows.Scan(&day, &in, &out); err != nil {
			return nil, wrapStorageErr("scan stock trend", err)
		}

		days = append(days, model.StockTrendDay{
			Day: time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc),
			In:  in,
			Out: out,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, wrapStorageErr("stock trend", err)
	}

	return days, nil
}

func collectStockMovements(rows pgx.Rows) ([]model.StockMovement, error) {
	defer rows.Close()

	movements := []model.StockMovement{}
	for rows.Next() {
		var (
			m            model.StockMovement
			movementType string
		)
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Quantity, &movementType, &m.Notes, &m.CreatedAt, &m.ProductName); err != nil {
			return nil, wrapStorageErr("scan stock movement", err)
		}
		m.MovementType = model.MovementType(movementType)
		movements = append(movements, m)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapStorageErr("list stock movements", err)
	}

	return movements, nil
}
