package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/inventory-backoffice/internal/config"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/model"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/repository/repositorytest"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/service"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/cache"
)

var statsCfg = config.Inventory{
	QueryTimeout:    time.Second,
	RecentMovements: 10,
	TrendDays:       7,
	StatsCacheTTL:   30 * time.Second,
}

// fixedNow is mid afternoon on Oct 19, so the trend window is Oct 13 to Oct 19.
var fixedNow = time.Date(2026, 10, 19, 15, 4, 5, 0, time.UTC)

func healthyStatsRepo() *repositorytest.StatsRepository {
	repo := &repositorytest.StatsRepository{}
	repo.On("CountProducts", mock.Anything).Return(int64(7), nil)
	repo.On("CountCategories", mock.Anything).Return(int64(2), nil)
	repo.On("CountSuppliers", mock.Anything).Return(int64(1), nil)
	repo.On("CountLowStockProducts", mock.Anything).Return(int64(1), nil)
	repo.On("TotalStockValue", mock.Anything).Return(decimal.RequireFromString("40.00"), nil)
	repo.On("CategoryDistribution", mock.Anything).Return([]model.CategoryCount{
		{ID: uuid.New(), Name: "Electronics", Value: 5},
		{ID: uuid.New(), Name: "Empty", Value: 0},
	}, nil)
	return repo
}

func healthyMovementRepo() *repositorytest.StockMovementRepository {
	repo := &repositorytest.StockMovementRepository{}
	name := "Widget"
	pid := uuid.New()
	repo.On("ListRecentStockMovements", mock.Anything, 10).Return([]model.StockMovement{
		{ID: uuid.New(), ProductID: &pid, Quantity: -7, MovementType: model.MovementTypeOut, Notes: model.DefaultMovementNotes, ProductName: &name},
	}, nil)
	repo.On("StockTrend", mock.Anything, time.Date(2026, 10, 13, 0, 0, 0, 0, time.UTC), time.UTC).Return([]model.StockTrendDay{
		{Day: time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), In: 12, Out: 0},
		{Day: time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), In: 2, Out: 7},
	}, nil)
	return repo
}

func newSnapshotCache(t *testing.T) (*cache.RedisSnapshotCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisSnapshotCache(client, statsCfg.StatsCacheTTL, slog.New(slog.NewTextHandler(io.Discard, nil))), mr
}

func TestStatsService_Snapshot(t *testing.T) {
	ctx := context.Background()
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Should aggregate every metric", func(t *testing.T) {
		svc := service.NewStatsService(statsCfg, time.UTC, discard,
			healthyStatsRepo(), healthyMovementRepo(), cache.NoopSnapshotCache{},
			service.WithClock(func() time.Time { return fixedNow }),
		)

		snapshot := svc.Snapshot(ctx)
		assert.Equal(t, int64(7), snapshot.TotalProducts)
		assert.Equal(t, int64(2), snapshot.TotalCategories)
		assert.Equal(t, int64(1), snapshot.TotalSuppliers)
		assert.Equal(t, int64(1), snapshot.LowStockProducts)
		assert.Equal(t, 40.0, snapshot.TotalStockValue)
		require.Len(t, snapshot.RecentMovements, 1)
		assert.Equal(t, -7, snapshot.RecentMovements[0].Quantity)
		require.Len(t, snapshot.CategoryDistribution, 2)
		assert.Equal(t, int64(0), snapshot.CategoryDistribution[1].Value)

		require.Len(t, snapshot.StockTrends, 7)
		assert.Equal(t, "Oct 13", snapshot.StockTrends[0].Date)
		assert.Equal(t, "Oct 15", snapshot.StockTrends[2].Date)
		assert.Equal(t, int64(12), snapshot.StockTrends[2].In)
		assert.Equal(t, "Oct 19", snapshot.StockTrends[6].Date)
		assert.Equal(t, int64(2), snapshot.StockTrends[6].In)
		assert.Equal(t, int64(7), snapshot.StockTrends[6].Out)
		for _, i := range []int{0, 1, 3, 4, 5} {
			assert.Zero(t, snapshot.StockTrends[i].In)
			assert.Zero(t, snapshot.StockTrends[i].Out)
		}
	})

	t.Run("Should serve the cached snapshot on the next call", func(t *testing.T) {
		statsRepo := healthyStatsRepo()
		movementRepo := healthyMovementRepo()
		snapshotCache, mr := newSnapshotCache(t)

		svc := service.NewStatsService(statsCfg, time.UTC, discard, statsRepo, movementRepo, snapshotCache,
			service.WithClock(func() time.Time { return fixedNow }),
		)

		first := svc.Snapshot(ctx)
		assert.True(t, mr.Exists(cache.SnapshotKey))

		second := svc.Snapshot(ctx)
		assert.Equal(t, first.TotalProducts, second.TotalProducts)
		assert.Equal(t, first.TotalStockValue, second.TotalStockValue)
		statsRepo.AssertNumberOfCalls(t, "CountProducts", 1)
	})

	t.Run("Should fall back to the zeroed snapshot and not cache it", func(t *testing.T) {
		statsRepo := &repositorytest.StatsRepository{}
		statsRepo.On("CountProducts", mock.Anything).Return(int64(7), nil).Maybe()
		statsRepo.On("CountCategories", mock.Anything).Return(int64(2), nil).Maybe()
		statsRepo.On("CountSuppliers", mock.Anything).Return(int64(0), errors.New("relation \"suppliers\" does not exist"))
		statsRepo.On("CountLowStockProducts", mock.Anything).Return(int64(1), nil).Maybe()
		statsRepo.On("TotalStockValue", mock.Anything).Return(decimal.Zero, nil).Maybe()
		statsRepo.On("CategoryDistribution", mock.Anything).Return([]model.CategoryCount{}, nil).Maybe()
		snapshotCache, mr := newSnapshotCache(t)

		var logs bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&logs, nil))
		before := testutil.ToFloat64(service.SnapshotFallbacks)

		svc := service.NewStatsService(statsCfg, time.UTC, logger, statsRepo, healthyMovementRepo(), snapshotCache,
			service.WithClock(func() time.Time { return fixedNow }),
		)

		snapshot := svc.Snapshot(ctx)
		assert.Equal(t, model.EmptyStatsSnapshot(), snapshot)
		assert.NotNil(t, snapshot.RecentMovements)
		assert.NotNil(t, snapshot.StockTrends)
		assert.Equal(t, before+1, testutil.ToFloat64(service.SnapshotFallbacks))
		assert.False(t, mr.Exists(cache.SnapshotKey))
		assert.Contains(t, logs.String(), `"level":"WARN"`)
		assert.Contains(t, logs.String(), "serving zeroed dashboard snapshot")
		assert.Contains(t, logs.String(), "count suppliers")
	})

	t.Run("Should fall back when a read exceeds the deadline", func(t *testing.T) {
		statsRepo := healthyStatsRepo()
		movementRepo := &repositorytest.StockMovementRepository{}
		movementRepo.On("ListRecentStockMovements", mock.Anything, 10).
			Run(func(args mock.Arguments) {
				<-args.Get(0).(context.Context).Done()
			}).
			Return([]model.StockMovement(nil), context.DeadlineExceeded)
		movementRepo.On("StockTrend", mock.Anything, mock.Anything, mock.Anything).
			Return([]model.StockTrendDay{}, nil).Maybe()

		cfg := statsCfg
		cfg.QueryTimeout = 20 * time.Millisecond
		svc := service.NewStatsService(cfg, time.UTC, discard, statsRepo, movementRepo, cache.NoopSnapshotCache{})

		assert.Equal(t, model.EmptyStatsSnapshot(), svc.Snapshot(ctx))
	})

	t.Run("Should keep serving when the cache is down", func(t *testing.T) {
		snapshotCache, mr := newSnapshotCache(t)
		mr.Close()

		svc := service.NewStatsService(statsCfg, time.UTC, discard,
			healthyStatsRepo(), healthyMovementRepo(), snapshotCache,
			service.WithClock(func() time.Time { return fixedNow }),
		)

		assert.Equal(t, int64(7), svc.Snapshot(ctx).TotalProducts)
	})
}

func TestStatsService_TrendUsesReportTimezone(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*60*60)

	// 20:00 UTC on Oct 18 is already Oct 19 in UTC+7.
	now := time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC)
	start := time.Date(2026, 10, 13, 0, 0, 0, 0, loc)

	movementRepo := &repositorytest.StockMovementRepository{}
	movementRepo.On("ListRecentStockMovements", mock.Anything, 10).Return([]model.StockMovement{}, nil)
	movementRepo.On("StockTrend", mock.Anything, start, loc).Return([]model.StockTrendDay{}, nil).Once()

	svc := service.NewStatsService(statsCfg, loc, slog.New(slog.NewTextHandler(io.Discard, nil)),
		healthyStatsRepo(), movementRepo, cache.NoopSnapshotCache{},
		service.WithClock(func() time.Time { return now }),
	)

	snapshot := svc.Snapshot(context.Background())
	require.Len(t, snapshot.StockTrends, 7)
	assert.Equal(t, "Oct 13", snapshot.StockTrends[0].Date)
	assert.Equal(t, "Oct 19", snapshot.StockTrends[6].Date)
	movementRepo.AssertExpectations(t)
}
