package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/inventory-backoffice/internal/config"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/model"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/repository"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/cache"
	"github.com/tuanvumaihuynh/inventory-backoffice/pkg/validator"
)

type SupplierParams struct {
	Name    string  `validate:"required,max=255"`
	Email   *string `validate:"omitempty,email"`
	Phone   *string `validate:"omitempty,max=50"`
	Address *string `validate:"omitempty,max=1000"`
}

type SupplierService interface {
	ListSuppliers(ctx context.Context) ([]model.Supplier, error)
	CreateSupplier(ctx context.Context, params SupplierParams) (model.Supplier, error)
	UpdateSupplier(ctx context.Context, id uuid.UUID, params SupplierParams) (model.Supplier, error)
	DeleteSupplier(ctx context.Context, id uuid.UUID) error
}

type supplierService struct {
	cfg          config.Inventory
	validator    validator.Validator
	supplierRepo repository.SupplierRepository

	snapshotCache cache.SnapshotCache
}

func NewSupplierService(
	cfg config.Inventory,
	validator validator.Validator,
	supplierRepo repository.SupplierRepository,
	snapshotCache cache.SnapshotCache,
) SupplierService {
	return &supplierService{
		cfg:          cfg,
		validator:    validator,
		supplierRepo: supplierRepo,

		snapshotCache: snapshotCache,
	}
}

func (s *supplierService) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	suppliers, err := s.supplierRepo.ListSuppliers(ctx)
	if err != nil {
		return nil, classify(fmt.Errorf("supplier repository list suppliers: %w", err))
	}

	return suppliers, nil
}

func (s *supplierService) CreateSupplier(ctx context.Context, params SupplierParams) (model.Supplier, error) {
	if err := validate(s.validator, params); err != nil {
		return model.Supplier{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Supplier{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	ctx, cancel := withTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	supplier, err := s.supplierRepo.CreateSupplier(ctx, model.Supplier{
		ID:        id,
		Name:      params.Name,
		Email:     params.Email,
		Phone:     params.Phone,
		Address:   params.Address,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return model.Supplier{}, classify(fmt.Errorf("supplier repository create supplier: %w", err))
	}

	invalidateSnapshot(ctx, s.snapshotCache)

	return supplier, nil
}

func (s *supplierService) UpdateSupplier(ctx context.Context, id uuid.UUID, params SupplierParams) (model.Supplier, error) {
	if err := validate(s.validator, params); err != nil {
		return model.Supplier{}, err
	}

	ctx, cancel := withTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	supplier, err := s.supplierRepo.UpdateSupplier(ctx, model.Supplier{
		ID:      id,
		Name:    params.Name,
		Email:   params.Email,
		Phone:   params.Phone,
		Address: params.Address,
	})
	if err != nil {
		return model.Supplier{}, classify(fmt.Errorf("supplier repository update supplier: %w", err))
	}

	invalidateSnapshot(ctx, s.snapshotCache)

	return supplier, nil
}

func (s *supplierService) DeleteSupplier(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := withTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	if err := s.supplierRepo.DeleteSupplier(ctx, id); err != nil {
		return classify(fmt.Errorf("supplier repository delete supplier: %w", err))
	}

	invalidateSnapshot(ctx, s.snapshotCache)

	return nil
}
