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

type CategoryParams struct {
	Name        string  `validate:"required,max=255"`
	Description *string `validate:"omitempty,max=2000"`
}

type CategoryService interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, params CategoryParams) (model.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, params CategoryParams) (model.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	cfg          config.Inventory
	validator    validator.Validator
	categoryRepo repository.CategoryRepository

	snapshotCache cache.SnapshotCache
}

func NewCategoryService(
	cfg config.Inventory,
	validator validator.Validator,
	categoryRepo repository.CategoryRepository,
	snapshotCache cache.SnapshotCache,
) CategoryService {
	return &categoryService{
		cfg:          cfg,
		validator:    validator,
		categoryRepo: categoryRepo,

		snapshotCache: snapshotCache,
	}
}

func (s *categoryService) ListCategories(ctx context.Context) ([]model.Category, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	categories, err := s.categoryRepo.ListCategories(ctx)
	if err != nil {
		return nil, classify(fmt.Errorf("category repository list categories: %w", err))
	}

	return categories, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, params CategoryParams) (model.Category, error) {
	if err := validate(s.validator, params); err != nil {
		return model.Category{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Category{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	ctx, cancel := withTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	category, err := s.categoryRepo.CreateCategory(ctx, model.Category{
		ID:          id,
		Name:        params.Name,
		Description: params.Description,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		return model.Category{}, classify(fmt.Errorf("category repository create category: %w", err))
	}

	invalidateSnapshot(ctx, s.snapshotCache)

	return category, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id uuid.UUID, params CategoryParams) (model.Category, error) {
	if err := validate(s.validator, params); err != nil {
		return model.Category{}, err
	}

	ctx, cancel := withTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	category, err := s.categoryRepo.UpdateCategory(ctx, model.Category{
		ID:          id,
		Name:        params.Name,
		Description: params.Description,
	})
	if err != nil {
		return model.Category{}, classify(fmt.Errorf("category repository update category: %w", err))
	}

	invalidateSnapshot(ctx, s.snapshotCache)

	return category, nil
}

// DeleteCategory removes the category; its products are kept and lose the reference.
func (s *categoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := withTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	if err := s.categoryRepo.DeleteCategory(ctx, id); err != nil {
		return classify(fmt.Errorf("category repository delete category: %w", err))
	}

	invalidateSnapshot(ctx, s.snapshotCache)

	return nil
}
