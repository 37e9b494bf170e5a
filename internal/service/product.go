package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/inventory-backoffice/internal/config"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/event"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/model"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/repository"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/cache"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/db"
	"github.com/tuanvumaihuynh/inventory-backoffice/pkg/outbox"
	"github.com/tuanvumaihuynh/inventory-backoffice/pkg/ptr"
	"github.com/tuanvumaihuynh/inventory-backoffice/pkg/validator"
)

const (
	DefaultMovementsLimit = 50
	MaxMovementsLimit     = 500
)

type CreateProductParams struct {
	Sku         string  `validate:"required,max=64,sku"`
	Name        string  `validate:"required,max=255"`
	Description *string `validate:"omitempty,max=2000"`
	CategoryID  *uuid.UUID
	SupplierID  *uuid.UUID
	Price       decimal.Decimal `validate:"dgte=0"`
	Stock       int             `validate:"gte=0"`
	MinStock    int             `validate:"gte=0"`
	ImageURL    *string         `validate:"omitempty,max=2048"`
}

// UpdateProductParams replaces every writable field of a product. Price, Stock
// and MinStock must be supplied; an absent stock is never read as zero. Notes
// is recorded on the ledger entry when the stock changes.
type UpdateProductParams struct {
	Sku         string  `validate:"required,max=64,sku"`
	Name        string  `validate:"required,max=255"`
	Description *string `validate:"omitempty,max=2000"`
	CategoryID  *uuid.UUID
	SupplierID  *uuid.UUID
	Price       *decimal.Decimal `validate:"required,dgte=0"`
	Stock       *int             `validate:"required,gte=0"`
	MinStock    *int             `validate:"required,gte=0"`
	ImageURL    *string          `validate:"omitempty,max=2048"`
	Notes       string           `validate:"max=500"`
}

type ProductService interface {
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	// UpdateProduct writes the product and, when the stock changes, appends the
	// matching ledger entry in the same transaction. The row stays locked from
	// read to commit, so concurrent updates of one product are serialised.
	UpdateProduct(ctx context.Context, id uuid.UUID, params UpdateProductParams) (model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProductMovements(ctx context.Context, id uuid.UUID, limit int) ([]model.StockMovement, error)
}

type productService struct {
	cfg               config.Inventory
	db                db.DB
	validator         validator.Validator
	productRepo       repository.ProductRepository
	stockMovementRepo repository.StockMovementRepository
	outboxMsgRepo     repository.OutboxMsgRepository
	snapshotCache     cache.SnapshotCache
}

func NewProductService(
	cfg config.Inventory,
	db db.DB,
	validator validator.Validator,
	productRepo repository.ProductRepository,
	stockMovementRepo repository.StockMovementRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
	snapshotCache cache.SnapshotCache,
) ProductService {
	return &productService{
		cfg:               cfg,
		db:                db,
		validator:         validator,
		productRepo:       productRepo,
		stockMovementRepo: stockMovementRepo,
		outboxMsgRepo:     outboxMsgRepo,
		snapshotCache:     snapshotCache,
	}
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	product, err := s.productRepo.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, classify(fmt.Errorf("product repository get product: %w", err))
	}

	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	products, err := s.productRepo.ListProducts(ctx, filter)
	if err != nil {
		return nil, classify(fmt.Errorf("product repository list products: %w", err))
	}

	return products, nil
}

func (s *productService) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	if err := validate(s.validator, params); err != nil {
		return model.Product{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Product{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now()
	product := model.Product{
		ID:          id,
		Sku:         params.Sku,
		Name:        params.Name,
		Description: params.Description,
		CategoryID:  params.CategoryID,
		SupplierID:  params.SupplierID,
		Price:       params.Price,
		Stock:       params.Stock,
		MinStock:    params.MinStock,
		ImageURL:    params.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	evBytes, err := json.Marshal(event.ProductCreatedEvent{
		ProductID: product.ID.String(),
		Sku:       product.Sku,
		Name:      product.Name,
		Price:     product.Price.StringFixed(2),
		Stock:     product.Stock,
		MinStock:  product.MinStock,
	})
	if err != nil {
		return model.Product{}, fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := withTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	var created model.Product
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if _, err := s.productRepo.
			WithDB(db).
			CreateProduct(ctx, product); err != nil {
			return fmt.Errorf("product repository create product: %w", err)
		}

		if err := s.outboxMsgRepo.
			WithDB(db).
			CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
				Topic:        event.TopicProductCreated,
				Headers:      outbox.BuildHeaders(ctx),
				Payload:      evBytes,
				PartitionKey: partitionKey(product.ID),
			}); err != nil {
			return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
		}

		created, err = s.productRepo.WithDB(db).GetProduct(ctx, product.ID)
		if err != nil {
			return fmt.Errorf("product repository get product: %w", err)
		}

		return nil
	}); err != nil {
		return model.Product{}, classify(fmt.Errorf("db with tx: %w", err))
	}

	invalidateSnapshot(ctx, s.snapshotCache)

	return created, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, params UpdateProductParams) (model.Product, error) {
	if err := validate(s.validator, params); err != nil {
		return model.Product{}, err
	}

	ctx, cancel := withTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	var updated model.Product
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		productRepo := s.productRepo.WithDB(db)

		current, err := productRepo.GetProductForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("product repository get product for update: %w", err)
		}

		now := time.Now()
		next := current
		next.Sku = params.Sku
		next.Name = params.Name
		next.Description = params.Description
		next.CategoryID = params.CategoryID
		next.SupplierID = params.SupplierID
		next.Price = *params.Price
		next.Stock = *params.Stock
		next.MinStock = *params.MinStock
		next.ImageURL = params.ImageURL
		next.UpdatedAt = now

		if _, err := productRepo.UpdateProduct(ctx, next); err != nil {
			return fmt.Errorf("product repository update product: %w", err)
		}

		if delta := next.Stock - current.Stock; delta != 0 {
			if err := s.recordStockMovement(ctx, db, current, next, delta, params.Notes, now); err != nil {
				return err
			}
		}

		updated, err = productRepo.GetProduct(ctx, id)
		if err != nil {
			return fmt.Errorf("product repository get product: %w", err)
		}

		return nil
	}); err != nil {
		return model.Product{}, classify(fmt.Errorf("db with tx: %w", err))
	}

	invalidateSnapshot(ctx, s.snapshotCache)

	return updated, nil
}

// recordStockMovement appends the ledger entry for delta and enqueues its event.
// It must run inside the transaction that wrote the new stock.
func (s *productService) recordStockMovement(
	ctx context.Context,
	db db.DB,
	before, after model.Product,
	delta int,
	notes string,
	at time.Time,
) error {
	movement, err := model.NewStockMovement(after.ID, delta, notes, at)
	if err != nil {
		return fmt.Errorf("new stock movement: %w", err)
	}

	if err := s.stockMovementRepo.
		WithDB(db).
		AppendStockMovement(ctx, movement); err != nil {
		return fmt.Errorf("stock movement repository append stock movement: %w", err)
	}

	evBytes, err := json.Marshal(event.StockMovedEvent{
		MovementID:   movement.ID.String(),
		ProductID:    after.ID.String(),
		Sku:          after.Sku,
		Name:         after.Name,
		Quantity:     movement.Quantity,
		MovementType: string(movement.MovementType),
		Notes:        movement.Notes,
		StockBefore:  before.Stock,
		StockAfter:   after.Stock,
		MinStock:     after.MinStock,
		OccurredAt:   at,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := s.outboxMsgRepo.
		WithDB(db).
		CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
			Topic:        event.TopicStockMoved,
			Headers:      outbox.BuildHeaders(ctx),
			Payload:      evBytes,
			PartitionKey: partitionKey(after.ID),
		}); err != nil {
		return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
	}

	return nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := withTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		return classify(fmt.Errorf("product repository delete product: %w", err))
	}

	invalidateSnapshot(ctx, s.snapshotCache)

	return nil
}

func (s *productService) ListProductMovements(ctx context.Context, id uuid.UUID, limit int) ([]model.StockMovement, error) {
	switch {
	case limit <= 0:
		limit = DefaultMovementsLimit
	case limit > MaxMovementsLimit:
		limit = MaxMovementsLimit
	}

	ctx, cancel := withTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	if _, err := s.productRepo.GetProduct(ctx, id); err != nil {
		return nil, classify(fmt.Errorf("product repository get product: %w", err))
	}

	movements, err := s.stockMovementRepo.ListProductStockMovements(ctx, id, limit)
	if err != nil {
		return nil, classify(fmt.Errorf("stock movement repository list product stock movements: %w", err))
	}

	return movements, nil
}

// partitionKey keeps all events of one product on one partition.
func partitionKey(id uuid.UUID) *string {
	return ptr.New(id.String())
}
