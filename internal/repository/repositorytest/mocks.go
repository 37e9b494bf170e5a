// Package repositorytest provides testify mocks of the repository interfaces.
// WithDB returns the receiver, so expectations hold inside transactions too.
package repositorytest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/tuanvumaihuynh/inventory-backoffice/internal/model"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/repository"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/db"
)

var (
	_ repository.ProductRepository       = (*ProductRepository)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepository)(nil)
	_ repository.CategoryRepository      = (*CategoryRepository)(nil)
	_ repository.SupplierRepository      = (*SupplierRepository)(nil)
	_ repository.StatsRepository         = (*StatsRepository)(nil)
	_ repository.OutboxMsgRepository     = (*OutboxMsgRepository)(nil)
)

type ProductRepository struct{ mock.Mock }

func (m *ProductRepository) WithDB(db.DB) repository.ProductRepository { return m }

func (m *ProductRepository) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *ProductRepository) GetProductForUpdate(ctx context.Context, id uuid.UUID) (model.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *ProductRepository) CreateProduct(ctx context.Context, product model.Product) (model.Product, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *ProductRepository) UpdateProduct(ctx context.Context, product model.Product) (model.Product, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *ProductRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ProductRepository) ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]model.Product), args.Error(1)
}

type StockMovementRepository struct{ mock.Mock }

func (m *StockMovementRepository) WithDB(db.DB) repository.StockMovementRepository { return m }

func (m *StockMovementRepository) AppendStockMovement(ctx context.Context, movement model.StockMovement) error {
	return m.Called(ctx, movement).Error(0)
}

func (m *StockMovementRepository) ListRecentStockMovements(ctx context.Context, limit int) ([]model.StockMovement, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]model.StockMovement), args.Error(1)
}

func (m *StockMovementRepository) ListProductStockMovements(ctx context.Context, productID uuid.UUID, limit int) ([]model.StockMovement, error) {
	args := m.Called(ctx, productID, limit)
	return args.Get(0).([]model.StockMovement), args.Error(1)
}

func (m *StockMovementRepository) StockTrend(ctx context.Context, since time.Time, loc *time.Location) ([]model.StockTrendDay, error) {
	args := m.Called(ctx, since, loc)
	return args.Get(0).([]model.StockTrendDay), args.Error(1)
}

type CategoryRepository struct{ mock.Mock }

func (m *CategoryRepository) WithDB(db.DB) repository.CategoryRepository { return m }

func (m *CategoryRepository) CreateCategory(ctx context.Context, category model.Category) (model.Category, error) {
	args := m.Called(ctx, category)
	return args.Get(0).(model.Category), args.Error(1)
}

func (m *CategoryRepository) UpdateCategory(ctx context.Context, category model.Category) (model.Category, error) {
	args := m.Called(ctx, category)
	return args.Get(0).(model.Category), args.Error(1)
}

func (m *CategoryRepository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *CategoryRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Category), args.Error(1)
}

type SupplierRepository struct{ mock.Mock }

func (m *SupplierRepository) WithDB(db.DB) repository.SupplierRepository { return m }

func (m *SupplierRepository) CreateSupplier(ctx context.Context, supplier model.Supplier) (model.Supplier, error) {
	args := m.Called(ctx, supplier)
	return args.Get(0).(model.Supplier), args.Error(1)
}

func (m *SupplierRepository) UpdateSupplier(ctx context.Context, supplier model.Supplier) (model.Supplier, error) {
	args := m.Called(ctx, supplier)
	return args.Get(0).(model.Supplier), args.Error(1)
}

func (m *SupplierRepository) DeleteSupplier(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *SupplierRepository) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Supplier), args.Error(1)
}

type StatsRepository struct{ mock.Mock }

func (m *StatsRepository) CountProducts(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *StatsRepository) CountCategories(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *StatsRepository) CountSuppliers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *StatsRepository) CountLowStockProducts(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *StatsRepository) TotalStockValue(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *StatsRepository) CategoryDistribution(ctx context.Context) ([]model.CategoryCount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.CategoryCount), args.Error(1)
}

type OutboxMsgRepository struct{ mock.Mock }

func (m *OutboxMsgRepository) WithDB(db.DB) repository.OutboxMsgRepository { return m }

func (m *OutboxMsgRepository) CreateOutboxMsg(ctx context.Context, params repository.CreateOutboxMsgParams) error {
	return m.Called(ctx, params).Error(0)
}

func (m *OutboxMsgRepository) ListUnprocessedOutboxMsgs(ctx context.Context, params repository.ListUnprocessedOutboxMsgsParams) ([]repository.OutboxMsg, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]repository.OutboxMsg), args.Error(1)
}

func (m *OutboxMsgRepository) BulkUpdateOutboxMsgs(ctx context.Context, params repository.BulkUpdateOutboxMsgsParams) error {
	return m.Called(ctx, params).Error(0)
}
