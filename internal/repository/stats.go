package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/inventory-backoffice/internal/model"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/db"
)

// StatsRepository runs the read-only aggregate queries behind the dashboard.
type StatsRepository interface {
	CountProducts(ctx context.Context) (int64, error)
	CountCategories(ctx context.Context) (int64, error)
	CountSuppliers(ctx context.Context) (int64, error)
	CountLowStockProducts(ctx context.Context) (int64, error)
	TotalStockValue(ctx context.Context) (decimal.Decimal, error)
	// CategoryDistribution includes categories without products, ordered by count then name.
	CategoryDistribution(ctx context.Context) ([]model.CategoryCount, error)
}

type statsRepository struct {
	db db.DB
}

func NewStatsRepository(db db.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r statsRepository) count(ctx context.Context, op, sql string) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, sql).Scan(&n); err != nil {
		return 0, wrapStorageErr(op, err)
	}
	return n, nil
}

func (r statsRepository) CountProducts(ctx context.Context) (int64, error) {
	return r.count(ctx, "count products", `SELECT COUNT(*) FROM products`)
}

func (r statsRepository) CountCategories(ctx context.Context) (int64, error) {
	return r.count(ctx, "count categories", `SELECT COUNT(*) FROM categories`)
}

func (r statsRepository) CountSuppliers(ctx context.Context) (int64, error) {
	return r.count(ctx, "count suppliers", `SELECT COUNT(*) FROM suppliers`)
}

func (r statsRepository) CountLowStockProducts(ctx context.Context) (int64, error) {
	return r.count(ctx, "count low stock products", `SELECT COUNT(*) FROM products WHERE stock < min_stock`)
}

func (r statsRepository) TotalStockValue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(price * stock), 0)::numeric
		FROM products
	`).Scan(&total); err != nil {
		return decimal.Zero, wrapStorageErr("total stock value", err)
	}
	return total, nil
}

func (r statsRepository) CategoryDistribution(ctx context.Context) ([]model.CategoryCount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.name, COUNT(p.id) AS value
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id
		GROUP BY c.id, c.name
		ORDER BY value DESC, c.name ASC
	`)
	if err != nil {
		return nil, wrapStorageErr("category distribution", err)
	}
	defer rows.Close()

	dist := []model.CategoryCount{}
	for rows.Next() {
		var c model.CategoryCount
		if err := rows.Scan(&c.ID, &c.Name, &c.Value); err != nil {
			return nil, wrapStorageErr("scan category count", err)
		}
		dist = append(dist, c)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapStorageErr("category distribution", err)
	}

	return dist, nil
}
