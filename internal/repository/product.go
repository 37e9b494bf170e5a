package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/inventory-backoffice/internal/apperr"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/model"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/db"
)

// ProductRepository owns product rows. It performs no field validation.
type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	// GetProductForUpdate reads the row and locks it until the surrounding transaction ends.
	GetProductForUpdate(ctx context.Context, id uuid.UUID) (model.Product, error)
	CreateProduct(ctx context.Context, product model.Product) (model.Product, error)
	UpdateProduct(ctx context.Context, product model.Product) (model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
}

const productColumns = `p.id, p.sku, p.name, p.description, p.category_id, p.supplier_id,
	p.price, p.stock, p.min_stock, p.image_url, p.created_at, p.updated_at`

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+productColumns+`, c.name, s.name
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN suppliers s ON s.id = p.supplier_id
		WHERE p.id = $1
	`, id)

	product, err := scanProductWithNames(row)
	if err != nil {
		return model.Product{}, productErr("get product", err)
	}

	return product, nil
}

func (r productRepository) GetProductForUpdate(ctx context.Context, id uuid.UUID) (model.Product, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products p
		WHERE p.id = $1
		FOR UPDATE
	`, id)

	product, err := scanProduct(row)
	if err != nil {
		return model.Product{}, productErr("get product for update", err)
	}

	return product, nil
}

func (r productRepository) CreateProduct(ctx context.Context, product model.Product) (model.Product, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO products AS p (
			id, sku, name, description, category_id, supplier_id,
			price, stock, min_stock, image_url, created_at, updated_at
		) VALUES (
			@id, @sku, @name, @description, @category_id, @supplier_id,
			@price, @stock, @min_stock, @image_url, @created_at, @updated_at
		)
		RETURNING `+productColumns, productArgs(product))

	created, err := scanProduct(row)
	if err != nil {
		return model.Product{}, productErr("create product", err)
	}

	return created, nil
}

func (r productRepository) UpdateProduct(ctx context.Context, product model.Product) (model.Product, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE products AS p
		SET
			sku         = @sku,
			name        = @name,
			description = @description,
			category_id = @category_id,
			supplier_id = @supplier_id,
			price       = @price,
			stock       = @stock,
			min_stock   = @min_stock,
			image_url   = @image_url,
			updated_at  = @updated_at
		WHERE p.id = @id
		RETURNING `+productColumns, productArgs(product))

	updated, err := scanProduct(row)
	if err != nil {
		return model.Product{}, productErr("update product", err)
	}

	return updated, nil
}

func (r productRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return wrapStorageErr("delete product", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.ProductNotFoundErr
	}

	return nil
}

func (r productRepository) ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	query := psql.
		Select(productColumns, "c.name", "s.name").
		From("products p").
		LeftJoin("categories c ON c.id = p.category_id").
		LeftJoin("suppliers s ON s.id = p.supplier_id").
		OrderBy("p.created_at DESC", "p.id DESC")

	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		query = query.Where(sq.Or{
			sq.ILike{"p.name": pattern},
			sq.ILike{"p.sku": pattern},
			sq.ILike{"p.description": pattern},
			sq.ILike{"c.name": pattern},
		})
	}
	if filter.CategoryID != nil {
		query = query.Where(sq.Eq{"p.category_id": *filter.CategoryID})
	}
	if filter.SupplierID != nil {
		query = query.Where(sq.Eq{"p.supplier_id": *filter.SupplierID})
	}
	if filter.LowStockOnly {
		query = query.Where("p.stock < p.min_stock")
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list products query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapStorageErr("list products", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		product, err := scanProductWithNames(rows)
		if err != nil {
			return nil, wrapStorageErr("scan product", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapStorageErr("list products", err)
	}

	return products, nil
}

func productArgs(p model.Product) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":          p.ID,
		"sku":         p.Sku,
		"name":        p.Name,
		"description": p.Description,
		"category_id": p.CategoryID,
		"supplier_id": p.SupplierID,
		"price":       p.Price,
		"stock":       p.Stock,
		"min_stock":   p.MinStock,
		"image_url":   p.ImageURL,
		"created_at":  p.CreatedAt,
		"updated_at":  p.UpdatedAt,
	}
}

func productDest(p *model.Product) []any {
	return []any{
		&p.ID, &p.Sku, &p.Name, &p.Description, &p.CategoryID, &p.SupplierID,
		&p.Price, &p.Stock, &p.MinStock, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
	}
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	if err := row.Scan(productDest(&p)...); err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func scanProductWithNames(row pgx.Row) (model.Product, error) {
	var p model.Product
	dest := append(productDest(&p), &p.CategoryName, &p.SupplierName)
	if err := row.Scan(dest...); err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func productErr(op string, err error) error {
	if db.IsNoRows(err) {
		return apperr.ProductNotFoundErr.WrapParent(err)
	}
	if _, ok := db.IsUniqueViolation(err); ok {
		return apperr.DuplicateSKUErr.WrapParent(err)
	}
	if _, ok := db.IsForeignKeyViolation(err); ok {
		return apperr.DanglingReferenceErr.WrapParent(err)
	}
	return wrapStorageErr(op, err)
}
