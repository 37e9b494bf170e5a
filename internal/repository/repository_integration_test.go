//go:build integration

package repository_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/tuanvumaihuynh/inventory-backoffice/internal/apperr"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/model"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/repository"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/db"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/db/dbtest"
	"github.com/tuanvumaihuynh/inventory-backoffice/pkg/ptr"
)

type RepositorySuite struct {
	suite.Suite

	pg *dbtest.Postgres

	products   repository.ProductRepository
	movements  repository.StockMovementRepository
	categories repository.CategoryRepository
	suppliers  repository.SupplierRepository
	stats      repository.StatsRepository
	outbox     repository.OutboxMsgRepository
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupSuite() {
	s.pg = dbtest.StartPostgres(s.T())

	s.products = repository.NewProductRepository(s.pg.Client)
	s.movements = repository.NewStockMovementRepository(s.pg.Client)
	s.categories = repository.NewCategoryRepository(s.pg.Client)
	s.suppliers = repository.NewSupplierRepository(s.pg.Client)
	s.stats = repository.NewStatsRepository(s.pg.Client)
	s.outbox = repository.NewOutboxMsgRepository(s.pg.Client)
}

func (s *RepositorySuite) SetupTest() {
	s.pg.Truncate(s.T())
}

func (s *RepositorySuite) createCategory(name string) model.Category {
	c, err := s.categories.CreateCategory(context.Background(), model.Category{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      name,
		CreatedAt: time.Now(),
	})
	s.Require().NoError(err)
	return c
}

func (s *RepositorySuite) createProduct(sku, price string, stock, minStock int, categoryID *uuid.UUID) model.Product {
	now := time.Now()
	p, err := s.products.CreateProduct(context.Background(), model.Product{
		ID:         uuid.Must(uuid.NewV7()),
		Sku:        sku,
		Name:       "Product " + sku,
		CategoryID: categoryID,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		MinStock:   minStock,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	s.Require().NoError(err)
	return p
}

func (s *RepositorySuite) appendMovement(productID uuid.UUID, delta int, at time.Time) {
	m, err := model.NewStockMovement(productID, delta, "", at)
	s.Require().NoError(err)
	s.Require().NoError(s.movements.AppendStockMovement(context.Background(), m))
}

func (s *RepositorySuite) TestProductRoundTripWithJoinedNames() {
	ctx := context.Background()
	category := s.createCategory("Electronics")
	created := s.createProduct("ABC1", "9.99", 10, 5, &category.ID)

	got, err := s.products.GetProduct(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("ABC1", got.Sku)
	s.True(decimal.RequireFromString("9.99").Equal(got.Price))
	s.Require().NotNil(got.CategoryName)
	s.Equal("Electronics", *got.CategoryName)
	s.Nil(got.SupplierName)
}

func (s *RepositorySuite) TestProductErrors() {
	ctx := context.Background()
	s.createProduct("ABC1", "1.00", 1, 0, nil)

	_, err := s.products.CreateProduct(ctx, model.Product{
		ID:    uuid.Must(uuid.NewV7()),
		Sku:   "ABC1",
		Name:  "Duplicate",
		Price: decimal.Zero,
	})
	s.ErrorIs(err, apperr.DuplicateSKUErr)

	_, err = s.products.CreateProduct(ctx, model.Product{
		ID:         uuid.Must(uuid.NewV7()),
		Sku:        "XYZ9",
		Name:       "Orphan",
		Price:      decimal.Zero,
		CategoryID: ptr.New(uuid.New()),
	})
	s.ErrorIs(err, apperr.DanglingReferenceErr)

	_, err = s.products.GetProduct(ctx, uuid.New())
	s.ErrorIs(err, apperr.ProductNotFoundErr)

	s.ErrorIs(s.products.DeleteProduct(ctx, uuid.New()), apperr.ProductNotFoundErr)
}

func (s *RepositorySuite) TestListProductsFilters() {
	ctx := context.Background()
	category := s.createCategory("Tools")
	s.createProduct("HAM-1", "5.00", 2, 5, &category.ID)
	s.createProduct("SAW_2", "7.00", 9, 5, nil)

	all, err := s.products.ListProducts(ctx, model.ProductFilter{})
	s.Require().NoError(err)
	s.Len(all, 2)

	byCategoryName, err := s.products.ListProducts(ctx, model.ProductFilter{Search: "tool"})
	s.Require().NoError(err)
	s.Require().Len(byCategoryName, 1)
	s.Equal("HAM-1", byCategoryName[0].Sku)

	// "_" must match literally, not as a wildcard.
	literal, err := s.products.ListProducts(ctx, model.ProductFilter{Search: "W_2"})
	s.Require().NoError(err)
	s.Require().Len(literal, 1)
	s.Equal("SAW_2", literal[0].Sku)

	low, err := s.products.ListProducts(ctx, model.ProductFilter{LowStockOnly: true})
	s.Require().NoError(err)
	s.Require().Len(low, 1)
	s.Equal("HAM-1", low[0].Sku)

	inCategory, err := s.products.ListProducts(ctx, model.ProductFilter{CategoryID: &category.ID})
	s.Require().NoError(err)
	s.Len(inCategory, 1)
}

func (s *RepositorySuite) TestAggregates() {
	ctx := context.Background()
	s.createProduct("A", "10.00", 3, 0, nil)
	s.createProduct("B", "2.50", 4, 0, nil)

	value, err := s.stats.TotalStockValue(ctx)
	s.Require().NoError(err)
	s.True(decimal.RequireFromString("40.00").Equal(value), value.String())

	count, err := s.stats.CountProducts(ctx)
	s.Require().NoError(err)
	s.EqualValues(2, count)
}

func (s *RepositorySuite) TestTotalStockValueEmpty() {
	value, err := s.stats.TotalStockValue(context.Background())
	s.Require().NoError(err)
	s.True(value.IsZero())
}

func (s *RepositorySuite) TestLowStockBoundary() {
	ctx := context.Background()
	s.createProduct("AT-MIN", "1.00", 5, 5, nil)
	s.createProduct("BELOW", "1.00", 4, 5, nil)

	low, err := s.stats.CountLowStockProducts(ctx)
	s.Require().NoError(err)
	s.EqualValues(1, low)
}

func (s *RepositorySuite) TestCategoryDistribution() {
	ctx := context.Background()
	empty := s.createCategory("Zeta")
	tools := s.createCategory("Tools")
	books := s.createCategory("Books")
	s.createProduct("T1", "1.00", 1, 0, &tools.ID)
	s.createProduct("B1", "1.00", 1, 0, &books.ID)
	s.createProduct("B2", "1.00", 1, 0, &books.ID)

	dist, err := s.stats.CategoryDistribution(ctx)
	s.Require().NoError(err)
	s.Equal([]model.CategoryCount{
		{ID: books.ID, Name: "Books", Value: 2},
		{ID: tools.ID, Name: "Tools", Value: 1},
		{ID: empty.ID, Name: "Zeta", Value: 0},
	}, dist)

	categories, err := s.categories.ListCategories(ctx)
	s.Require().NoError(err)
	s.Require().Len(categories, 3)
	s.Equal("Books", categories[0].Name)
	s.Equal(2, categories[0].ProductCount)

	_, err = s.categories.CreateCategory(ctx, model.Category{ID: uuid.Must(uuid.NewV7()), Name: "Books"})
	s.ErrorIs(err, apperr.DuplicateCategoryErr)
}

func (s *RepositorySuite) TestStockTrendBucketsByReportDay() {
	ctx := context.Background()
	p := s.createProduct("TR-1", "1.00", 0, 0, nil)

	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	s.Require().NoError(err)
	// 2026-10-18 20:00 UTC is already Oct 19 in UTC+7.
	s.appendMovement(p.ID, 5, time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC))
	s.appendMovement(p.ID, -2, time.Date(2026, 10, 18, 11, 0, 0, 0, time.UTC))
	s.appendMovement(p.ID, 4, time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC))

	days, err := s.movements.StockTrend(ctx, time.Date(2026, 10, 17, 0, 0, 0, 0, loc), loc)
	s.Require().NoError(err)
	s.Require().Len(days, 2)

	s.True(days[0].Day.Equal(time.Date(2026, 10, 18, 0, 0, 0, 0, loc)))
	s.EqualValues(5, days[0].In)
	s.EqualValues(2, days[0].Out)
	s.True(days[1].Day.Equal(time.Date(2026, 10, 19, 0, 0, 0, 0, loc)))
	s.EqualValues(4, days[1].In)
	s.EqualValues(0, days[1].Out)
}

func (s *RepositorySuite) TestLedgerSurvivesProductDelete() {
	ctx := context.Background()
	p := s.createProduct("GONE", "1.00", 0, 0, nil)
	s.appendMovement(p.ID, 3, time.Now())

	s.Require().NoError(s.products.DeleteProduct(ctx, p.ID))

	recent, err := s.movements.ListRecentStockMovements(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(recent, 1)
	s.Nil(recent[0].ProductID)
	s.Nil(recent[0].ProductName)
	s.Equal(3, recent[0].Quantity)
}

func (s *RepositorySuite) TestAppendMovementUnknownProduct() {
	m, err := model.NewStockMovement(uuid.New(), 1, "", time.Now())
	s.Require().NoError(err)

	err = s.movements.AppendStockMovement(context.Background(), m)
	s.ErrorIs(err, apperr.DanglingReferenceErr)
}

func (s *RepositorySuite) TestRecentMovementsOrder() {
	ctx := context.Background()
	p := s.createProduct("ORD", "1.00", 0, 0, nil)
	base := time.Now().Add(-time.Hour)
	for i := range 12 {
		s.appendMovement(p.ID, i+1, base.Add(time.Duration(i)*time.Minute))
	}

	recent, err := s.movements.ListRecentStockMovements(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(recent, 10)
	s.Equal(12, recent[0].Quantity)
	s.Equal(3, recent[9].Quantity)
	s.Require().NotNil(recent[0].ProductName)
	s.Equal("Product ORD", *recent[0].ProductName)

	history, err := s.movements.ListProductStockMovements(ctx, p.ID, 5)
	s.Require().NoError(err)
	s.Len(history, 5)
}

func (s *RepositorySuite) TestOutboxLifecycle() {
	ctx := context.Background()

	s.Require().NoError(s.outbox.CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
		Topic:        "inventory.stock.moved",
		Headers:      map[string]string{"x-correlation-id": "abc"},
		Payload:      json.RawMessage(`{"quantity":-7}`),
		PartitionKey: ptr.New("product-1"),
	}))

	var msgs []repository.OutboxMsg
	s.Require().NoError(s.pg.Client.WithTx(ctx, func(tx db.DB) error {
		var err error
		msgs, err = s.outbox.WithDB(tx).ListUnprocessedOutboxMsgs(ctx, repository.ListUnprocessedOutboxMsgsParams{BatchSize: 10})
		if err != nil {
			return err
		}
		items := make([]repository.BulkUpdateOutboxMsgsItem, len(msgs))
		for i, m := range msgs {
			items[i] = repository.BulkUpdateOutboxMsgsItem{ID: m.ID}
		}
		return s.outbox.WithDB(tx).BulkUpdateOutboxMsgs(ctx, repository.BulkUpdateOutboxMsgsParams{Items: items})
	}))

	s.Require().Len(msgs, 1)
	s.Equal("abc", msgs[0].Headers["x-correlation-id"])
	s.JSONEq(`{"quantity":-7}`, string(msgs[0].Payload))
	s.Require().NotNil(msgs[0].PartitionKey)
	s.Equal("product-1", *msgs[0].PartitionKey)

	remaining, err := s.outbox.ListUnprocessedOutboxMsgs(ctx, repository.ListUnprocessedOutboxMsgsParams{BatchSize: 10})
	s.Require().NoError(err)
	s.Empty(remaining)
}
