package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/inventory-backoffice/internal/apperr"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/config"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/event"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/model"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/repository"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/repository/repositorytest"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/service"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/cache"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/db/dbtest"
	"github.com/tuanvumaihuynh/inventory-backoffice/pkg/ptr"
	"github.com/tuanvumaihuynh/inventory-backoffice/pkg/validator"
)

type productFixture struct {
	db        *dbtest.TxDB
	products  *repositorytest.ProductRepository
	movements *repositorytest.StockMovementRepository
	outbox    *repositorytest.OutboxMsgRepository
	svc       service.ProductService
}

func newProductFixture(t *testing.T) productFixture {
	t.Helper()
	return newCachedProductFixture(t, cache.NoopSnapshotCache{})
}

func newCachedProductFixture(t *testing.T, snapshotCache cache.SnapshotCache) productFixture {
	t.Helper()

	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	f := productFixture{
		db:        &dbtest.TxDB{},
		products:  &repositorytest.ProductRepository{},
		movements: &repositorytest.StockMovementRepository{},
		outbox:    &repositorytest.OutboxMsgRepository{},
	}
	f.svc = service.NewProductService(
		config.Inventory{QueryTimeout: time.Second},
		f.db, v, f.products, f.movements, f.outbox, snapshotCache,
	)
	return f
}

func existingProduct(stock int) model.Product {
	return model.Product{
		ID:       uuid.New(),
		Sku:      "ABC1",
		Name:     "Widget",
		Price:    decimal.RequireFromString("9.99"),
		Stock:    stock,
		MinStock: 5,
	}
}

func updateParams(p model.Product, stock int) service.UpdateProductParams {
	return service.UpdateProductParams{
		Sku:      p.Sku,
		Name:     p.Name,
		Price:    ptr.New(p.Price),
		Stock:    ptr.New(stock),
		MinStock: ptr.New(p.MinStock),
	}
}

func TestProductService_UpdateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Should append one movement with the stock delta", func(t *testing.T) {
		f := newProductFixture(t)
		current := existingProduct(10)
		stored := current
		stored.Stock = 3

		f.products.On("GetProductForUpdate", mock.Anything, current.ID).Return(current, nil).Once()
		f.products.On("UpdateProduct", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
			return p.ID == current.ID && p.Stock == 3
		})).Return(stored, nil).Once()
		f.movements.On("AppendStockMovement", mock.Anything, mock.MatchedBy(func(m model.StockMovement) bool {
			return m.Quantity == -7 &&
				m.MovementType == model.MovementTypeOut &&
				m.Notes == model.DefaultMovementNotes &&
				m.ProductID != nil && *m.ProductID == current.ID
		})).Return(nil).Once()
		f.outbox.On("CreateOutboxMsg", mock.Anything, mock.MatchedBy(func(p repository.CreateOutboxMsgParams) bool {
			var ev event.StockMovedEvent
			if err := json.Unmarshal(p.Payload, &ev); err != nil {
				return false
			}
			return p.Topic == event.TopicStockMoved &&
				*p.PartitionKey == current.ID.String() &&
				ev.Quantity == -7 && ev.StockBefore == 10 && ev.StockAfter == 3
		})).Return(nil).Once()
		f.products.On("GetProduct", mock.Anything, current.ID).Return(stored, nil).Once()

		got, err := f.svc.UpdateProduct(ctx, current.ID, updateParams(current, 3))
		require.NoError(t, err)
		assert.Equal(t, 3, got.Stock)
		assert.Equal(t, 1, f.db.Committed)
		f.products.AssertExpectations(t)
		f.movements.AssertExpectations(t)
		f.outbox.AssertExpectations(t)
	})

	t.Run("Should record an IN movement with caller notes", func(t *testing.T) {
		f := newProductFixture(t)
		current := existingProduct(10)
		stored := current
		stored.Stock = 12

		params := updateParams(current, 12)
		params.Notes = "restock"

		f.products.On("GetProductForUpdate", mock.Anything, current.ID).Return(current, nil)
		f.products.On("UpdateProduct", mock.Anything, mock.Anything).Return(stored, nil)
		f.movements.On("AppendStockMovement", mock.Anything, mock.MatchedBy(func(m model.StockMovement) bool {
			return m.Quantity == 2 && m.MovementType == model.MovementTypeIn && m.Notes == "restock"
		})).Return(nil).Once()
		f.outbox.On("CreateOutboxMsg", mock.Anything, mock.Anything).Return(nil)
		f.products.On("GetProduct", mock.Anything, current.ID).Return(stored, nil)

		_, err := f.svc.UpdateProduct(ctx, current.ID, params)
		require.NoError(t, err)
		f.movements.AssertExpectations(t)
	})

	t.Run("Should not touch the ledger when stock is unchanged", func(t *testing.T) {
		f := newProductFixture(t)
		current := existingProduct(10)
		params := updateParams(current, 10)
		params.Name = "Widget v2"
		stored := current
		stored.Name = params.Name

		f.products.On("GetProductForUpdate", mock.Anything, current.ID).Return(current, nil)
		f.products.On("UpdateProduct", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
			return p.Name == "Widget v2" && p.Stock == 10
		})).Return(stored, nil)
		f.products.On("GetProduct", mock.Anything, current.ID).Return(stored, nil)

		got, err := f.svc.UpdateProduct(ctx, current.ID, params)
		require.NoError(t, err)
		assert.Equal(t, "Widget v2", got.Name)
		f.movements.AssertNotCalled(t, "AppendStockMovement", mock.Anything, mock.Anything)
		f.outbox.AssertNotCalled(t, "CreateOutboxMsg", mock.Anything, mock.Anything)
	})

	t.Run("Should return not found for a missing product", func(t *testing.T) {
		f := newProductFixture(t)
		id := uuid.New()
		f.products.On("GetProductForUpdate", mock.Anything, id).Return(model.Product{}, apperr.ProductNotFoundErr)

		_, err := f.svc.UpdateProduct(ctx, id, updateParams(existingProduct(1), 1))
		require.ErrorIs(t, err, apperr.ProductNotFoundErr)
		assert.Equal(t, 1, f.db.RolledBack)
		f.products.AssertNotCalled(t, "UpdateProduct", mock.Anything, mock.Anything)
	})

	t.Run("Should surface duplicate sku without a ledger entry", func(t *testing.T) {
		f := newProductFixture(t)
		current := existingProduct(10)
		f.products.On("GetProductForUpdate", mock.Anything, current.ID).Return(current, nil)
		f.products.On("UpdateProduct", mock.Anything, mock.Anything).
			Return(model.Product{}, apperr.DuplicateSKUErr.WrapParent(errors.New("23505")))

		params := updateParams(current, 4)
		params.Sku = "TAKEN"
		_, err := f.svc.UpdateProduct(ctx, current.ID, params)
		require.ErrorIs(t, err, apperr.DuplicateSKUErr)
		assert.Equal(t, 1, f.db.RolledBack)
		f.movements.AssertNotCalled(t, "AppendStockMovement", mock.Anything, mock.Anything)
	})

	t.Run("Should roll back when the ledger append fails", func(t *testing.T) {
		f := newProductFixture(t)
		current := existingProduct(10)
		f.products.On("GetProductForUpdate", mock.Anything, current.ID).Return(current, nil)
		f.products.On("UpdateProduct", mock.Anything, mock.Anything).Return(current, nil)
		f.movements.On("AppendStockMovement", mock.Anything, mock.Anything).
			Return(apperr.StorageUnavailableErr.WrapParent(errors.New("conn reset")))

		_, err := f.svc.UpdateProduct(ctx, current.ID, updateParams(current, 7))
		require.ErrorIs(t, err, apperr.StorageUnavailableErr)
		assert.Equal(t, 1, f.db.RolledBack)
		assert.Zero(t, f.db.Committed)
		f.outbox.AssertNotCalled(t, "CreateOutboxMsg", mock.Anything, mock.Anything)
	})

	t.Run("Should reject invalid input before opening a transaction", func(t *testing.T) {
		f := newProductFixture(t)
		current := existingProduct(10)

		params := updateParams(current, -1)
		_, err := f.svc.UpdateProduct(ctx, current.ID, params)
		require.ErrorIs(t, err, apperr.ValidationErr)

		params = updateParams(current, 1)
		params.Price = ptr.New(decimal.RequireFromString("-1"))
		_, err = f.svc.UpdateProduct(ctx, current.ID, params)
		require.ErrorIs(t, err, apperr.ValidationErr)

		params = updateParams(current, 1)
		params.Sku = ""
		_, err = f.svc.UpdateProduct(ctx, current.ID, params)
		require.ErrorIs(t, err, apperr.ValidationErr)

		assert.Zero(t, f.db.Begun)
	})

	t.Run("Should reject an update that omits stock, price or min stock", func(t *testing.T) {
		f := newProductFixture(t)
		current := existingProduct(10)

		for name, clear := range map[string]func(*service.UpdateProductParams){
			"stock":     func(p *service.UpdateProductParams) { p.Stock = nil },
			"price":     func(p *service.UpdateProductParams) { p.Price = nil },
			"min stock": func(p *service.UpdateProductParams) { p.MinStock = nil },
		} {
			params := updateParams(current, 3)
			clear(&params)

			_, err := f.svc.UpdateProduct(ctx, current.ID, params)
			require.ErrorIs(t, err, apperr.ValidationErr, name)
		}

		assert.Zero(t, f.db.Begun)
		f.movements.AssertNotCalled(t, "AppendStockMovement", mock.Anything, mock.Anything)
	})

	t.Run("Should report storage unavailable when the transaction cannot start", func(t *testing.T) {
		f := newProductFixture(t)
		f.db.BeginErr = fmt.Errorf("begin transaction: %w", context.DeadlineExceeded)

		current := existingProduct(10)
		_, err := f.svc.UpdateProduct(ctx, current.ID, updateParams(current, 3))
		require.ErrorIs(t, err, apperr.StorageUnavailableErr)
	})
}

func TestProductService_CreateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Should insert product and enqueue created event", func(t *testing.T) {
		f := newProductFixture(t)
		params := service.CreateProductParams{
			Sku:      "ABC1",
			Name:     "Widget",
			Price:    decimal.RequireFromString("9.99"),
			Stock:    10,
			MinStock: 5,
		}

		f.products.On("CreateProduct", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
			return p.Sku == "ABC1" && p.Stock == 10 && p.ID != uuid.Nil
		})).Return(model.Product{}, nil)
		f.outbox.On("CreateOutboxMsg", mock.Anything, mock.MatchedBy(func(p repository.CreateOutboxMsgParams) bool {
			var ev event.ProductCreatedEvent
			return p.Topic == event.TopicProductCreated &&
				json.Unmarshal(p.Payload, &ev) == nil &&
				ev.Price == "9.99" && ev.Stock == 10
		})).Return(nil)
		f.products.On("GetProduct", mock.Anything, mock.Anything).Return(model.Product{Sku: "ABC1", Stock: 10}, nil)

		got, err := f.svc.CreateProduct(ctx, params)
		require.NoError(t, err)
		assert.Equal(t, "ABC1", got.Sku)
		assert.Equal(t, 1, f.db.Committed)
		f.movements.AssertNotCalled(t, "AppendStockMovement", mock.Anything, mock.Anything)
	})

	t.Run("Should reject duplicate sku", func(t *testing.T) {
		f := newProductFixture(t)
		f.products.On("CreateProduct", mock.Anything, mock.Anything).
			Return(model.Product{}, apperr.DuplicateSKUErr)

		_, err := f.svc.CreateProduct(ctx, service.CreateProductParams{Sku: "ABC1", Name: "Widget"})
		require.ErrorIs(t, err, apperr.DuplicateSKUErr)
		assert.Equal(t, 1, f.db.RolledBack)
		f.outbox.AssertNotCalled(t, "CreateOutboxMsg", mock.Anything, mock.Anything)
	})
}

func TestProductService_ListProductMovements(t *testing.T) {
	ctx := context.Background()

	t.Run("Should clamp the limit", func(t *testing.T) {
		f := newProductFixture(t)
		id := uuid.New()
		f.products.On("GetProduct", mock.Anything, id).Return(model.Product{ID: id}, nil)
		f.movements.On("ListProductStockMovements", mock.Anything, id, service.DefaultMovementsLimit).
			Return([]model.StockMovement{}, nil).Once()
		f.movements.On("ListProductStockMovements", mock.Anything, id, service.MaxMovementsLimit).
			Return([]model.StockMovement{}, nil).Once()

		_, err := f.svc.ListProductMovements(ctx, id, 0)
		require.NoError(t, err)
		_, err = f.svc.ListProductMovements(ctx, id, 10_000)
		require.NoError(t, err)
		f.movements.AssertExpectations(t)
	})

	t.Run("Should return not found for unknown product", func(t *testing.T) {
		f := newProductFixture(t)
		id := uuid.New()
		f.products.On("GetProduct", mock.Anything, id).Return(model.Product{}, apperr.ProductNotFoundErr)

		_, err := f.svc.ListProductMovements(ctx, id, 10)
		require.ErrorIs(t, err, apperr.ProductNotFoundErr)
	})
}
