package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/inventory-backoffice/internal/apperr"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/model"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/db"
)

type CategoryRepository interface {
	WithDB(db db.DB) CategoryRepository
	CreateCategory(ctx context.Context, category model.Category) (model.Category, error)
	UpdateCategory(ctx context.Context, category model.Category) (model.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	// ListCategories returns every category ordered by name with its product count.
	ListCategories(ctx context.Context) ([]model.Category, error)
}

type categoryRepository struct {
	db db.DB
}

func NewCategoryRepository(db db.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r categoryRepository) WithDB(db db.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r categoryRepository) CreateCategory(ctx context.Context, category model.Category) (model.Category, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO categories (id, name, description, created_at)
		VALUES (@id, @name, @description, @created_at)
		RETURNING id, name, description, created_at
	`, pgx.NamedArgs{
		"id":          category.ID,
		"name":        category.Name,
		"description": category.Description,
		"created_at":  category.CreatedAt,
	})

	var c model.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
		return model.Category{}, categoryErr("create category", err)
	}

	return c, nil
}

func (r categoryRepository) UpdateCategory(ctx context.Context, category model.Category) (model.Category, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE categories AS c
		SET name = @name, description = @description
		WHERE c.id = @id
		RETURNING c.id, c.name, c.description, c.created_at,
			(SELECT COUNT(*) FROM products p WHERE p.category_id = c.id)
	`, pgx.NamedArgs{
		"id":          category.ID,
		"name":        category.Name,
		"description": category.Description,
	})

	var c model.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.ProductCount); err != nil {
		return model.Category{}, categoryErr("update category", err)
	}

	return c, nil
}

func (r categoryRepository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return wrapStorageErr("delete category", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.CategoryNotFoundErr
	}

	return nil
}

func (r categoryRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.name, c.description, c.created_at, COUNT(p.id)
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name
	`)
	if err != nil {
		return nil, wrapStorageErr("list categories", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.ProductCount); err != nil {
			return nil, wrapStorageErr("scan category", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapStorageErr("list categories", err)
	}

	return categories, nil
}

func categoryErr(op string, err error) error {
	if db.IsNoRows(err) {
		return apperr.CategoryNotFoundErr.WrapParent(err)
	}
	if _, ok := db.IsUniqueViolation(err); ok {
		return apperr.DuplicateCategoryErr.WrapParent(err)
	}
	return wrapStorageErr(op, err)
}
