package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/tuanvumaihuynh/inventory-backoffice/internal/config"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/model"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/repository"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/cache"
)

type StatsService interface {
	// Snapshot never fails. When any read fails it returns model.EmptyStatsSnapshot.
	Snapshot(ctx context.Context) model.StatsSnapshot
}

type StatsOption func(*statsService)

// WithClock replaces time.Now when locating the trend window.
func WithClock(now func() time.Time) StatsOption {
	return func(s *statsService) {
		s.now = now
	}
}

type statsService struct {
	cfg               config.Inventory
	loc               *time.Location
	logger            *slog.Logger
	statsRepo         repository.StatsRepository
	stockMovementRepo repository.StockMovementRepository
	snapshotCache     cache.SnapshotCache
	now               func() time.Time
}

func NewStatsService(
	cfg config.Inventory,
	loc *time.Location,
	logger *slog.Logger,
	statsRepo repository.StatsRepository,
	stockMovementRepo repository.StockMovementRepository,
	snapshotCache cache.SnapshotCache,
	opts ...StatsOption,
) StatsService {
	s := &statsService{
		cfg:               cfg,
		loc:               loc,
		logger:            logger.With(slog.String("service", "stats")),
		statsRepo:         statsRepo,
		stockMovementRepo: stockMovementRepo,
		snapshotCache:     snapshotCache,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *statsService) Snapshot(ctx context.Context) model.StatsSnapshot {
	cached, err := s.snapshotCache.Get(ctx)
	switch {
	case err == nil:
		snapshotCacheResults.WithLabelValues("hit").Inc()
		return cached
	case errors.Is(err, cache.ErrCacheMiss):
		snapshotCacheResults.WithLabelValues("miss").Inc()
	default:
		snapshotCacheResults.WithLabelValues("error").Inc()
		s.logger.WarnContext(ctx, "read cached snapshot", slog.Any("error", err))
	}

	snapshot, err := s.aggregate(ctx)
	if err != nil {
		SnapshotFallbacks.Inc()
		s.logger.WarnContext(ctx, "serving zeroed dashboard snapshot", slog.Any("error", err))
		return model.EmptyStatsSnapshot()
	}

	if err := s.snapshotCache.Set(ctx, snapshot); err != nil {
		s.logger.WarnContext(ctx, "cache snapshot", slog.Any("error", err))
	}

	return snapshot
}

func (s *statsService) aggregate(ctx context.Context) (model.StatsSnapshot, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	days := max(s.cfg.TrendDays, 1)
	start := startOfDay(s.now().In(s.loc)).AddDate(0, 0, -(days - 1))

	var (
		snapshot   model.StatsSnapshot
		stockValue decimal.Decimal
		trend      []model.StockTrendDay
	)

	g, gctx := errgroup.WithContext(ctx)
	count := func(name string, dst *int64, fn func(context.Context) (int64, error)) {
		g.Go(func() error {
			n, err := fn(gctx)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = n
			return nil
		})
	}

	count("count products", &snapshot.TotalProducts, s.statsRepo.CountProducts)
	count("count categories", &snapshot.TotalCategories, s.statsRepo.CountCategories)
	count("count suppliers", &snapshot.TotalSuppliers, s.statsRepo.CountSuppliers)
	count("count low stock products", &snapshot.LowStockProducts, s.statsRepo.CountLowStockProducts)

	g.Go(func() error {
		v, err := s.statsRepo.TotalStockValue(gctx)
		if err != nil {
			return fmt.Errorf("total stock value: %w", err)
		}
		stockValue = v
		return nil
	})

	g.Go(func() error {
		movements, err := s.stockMovementRepo.ListRecentStockMovements(gctx, s.cfg.RecentMovements)
		if err != nil {
			return fmt.Errorf("recent movements: %w", err)
		}
		snapshot.RecentMovements = movements
		return nil
	})

	g.Go(func() error {
		dist, err := s.statsRepo.CategoryDistribution(gctx)
		if err != nil {
			return fmt.Errorf("category distribution: %w", err)
		}
		snapshot.CategoryDistribution = dist
		return nil
	})

	g.Go(func() error {
		rows, err := s.stockMovementRepo.StockTrend(gctx, start, s.loc)
		if err != nil {
			return fmt.Errorf("stock trend: %w", err)
		}
		trend = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return model.StatsSnapshot{}, err
	}

	snapshot.TotalStockValue = stockValue.Round(2).InexactFloat64()
	snapshot.StockTrends = fillTrend(start, days, trend)
	if snapshot.RecentMovements == nil {
		snapshot.RecentMovements = []model.StockMovement{}
	}
	if snapshot.CategoryDistribution == nil {
		snapshot.CategoryDistribution = []model.CategoryCount{}
	}

	return snapshot, nil
}

// fillTrend returns one entry per calendar day from start, oldest first, with
// zero volumes for days missing from rows.
func fillTrend(start time.Time, days int, rows []model.StockTrendDay) []model.StockTrendDay {
	const dayKey = "2006-01-02"

	byDay := make(map[string]model.StockTrendDay, len(rows))
	for _, row := range rows {
		byDay[row.Day.Format(dayKey)] = row
	}

	trend := make([]model.StockTrendDay, 0, days)
	for i := range days {
		day := start.AddDate(0, 0, i)
		row := byDay[day.Format(dayKey)]
		trend = append(trend, model.StockTrendDay{
			Day:  day,
			Date: day.Format(model.TrendDateLayout),
			In:   row.In,
			Out:  row.Out,
		})
	}

	return trend
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
