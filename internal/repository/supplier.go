package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/inventory-backoffice/internal/apperr"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/model"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/db"
)

type SupplierRepository interface {
	WithDB(db db.DB) SupplierRepository
	CreateSupplier(ctx context.Context, supplier model.Supplier) (model.Supplier, error)
	UpdateSupplier(ctx context.Context, supplier model.Supplier) (model.Supplier, error)
	DeleteSupplier(ctx context.Context, id uuid.UUID) error
	ListSuppliers(ctx context.Context) ([]model.Supplier, error)
}

type supplierRepository struct {
	db db.DB
}

func NewSupplierRepository(db db.DB) SupplierRepository {
	return &supplierRepository{db: db}
}

func (r supplierRepository) WithDB(db db.DB) SupplierRepository {
	return &supplierRepository{db: db}
}

func supplierArgs(s model.Supplier) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":         s.ID,
		"name":       s.Name,
		"email":      s.Email,
		"phone":      s.Phone,
		"address":    s.Address,
		"created_at": s.CreatedAt,
	}
}

func (r supplierRepository) CreateSupplier(ctx context.Context, supplier model.Supplier) (model.Supplier, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO suppliers (id, name, email, phone, address, created_at)
		VALUES (@id, @name, @email, @phone, @address, @created_at)
		RETURNING id, name, email, phone, address, created_at
	`, supplierArgs(supplier))

	var s model.Supplier
	if err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Address, &s.CreatedAt); err != nil {
		return model.Supplier{}, supplierErr("create supplier", err)
	}

	return s, nil
}

func (r supplierRepository) UpdateSupplier(ctx context.Context, supplier model.Supplier) (model.Supplier, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE suppliers AS s
		SET name = @name, email = @email, phone = @phone, address = @address
		WHERE s.id = @id
		RETURNING s.id, s.name, s.email, s.phone, s.address, s.created_at,
			(SELECT COUNT(*) FROM products p WHERE p.supplier_id = s.id)
	`, supplierArgs(supplier))

	var s model.Supplier
	if err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Address, &s.CreatedAt, &s.ProductCount); err != nil {
		return model.Supplier{}, supplierErr("update supplier", err)
	}

	return s, nil
}

func (r supplierRepository) DeleteSupplier(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return wrapStorageErr("delete supplier", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.SupplierNotFoundErr
	}

	return nil
}

func (r supplierRepository) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.id, s.name, s.email, s.phone, s.address, s.created_at, COUNT(p.id)
		FROM suppliers s
		LEFT JOIN products p ON p.supplier_id = s.id
		GROUP BY s.id
		ORDER BY s.name
	`)
	if err != nil {
		return nil, wrapStorageErr("list suppliers", err)
	}
	defer rows.Close()

	suppliers := []model.Supplier{}
	for rows.Next() {
		var s model.Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Address, &s.CreatedAt, &s.ProductCount); err != nil {
			return nil, wrapStorageErr("scan supplier", err)
		}
		suppliers = append(suppliers, s)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapStorageErr("list suppliers", err)
	}

	return suppliers, nil
}

func supplierErr(op string, err error) error {
	if db.IsNoRows(err) {
		return apperr.SupplierNotFoundErr.WrapParent(err)
	}
	if _, ok := db.IsUniqueViolation(err); ok {
		return apperr.DuplicateSupplierErr.WrapParent(err)
	}
	return wrapStorageErr(op, err)
}
