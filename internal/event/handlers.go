package event

import (
	"context"
	"fmt"
	"log/slog"
)

func (s *Service) handleProductCreatedEvent(ctx context.Context, ev ProductCreatedEvent) error {
	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", ev.ProductID),
		slog.String("sku", ev.Sku),
	)

	if err := s.snapshotCache.Invalidate(ctx); err != nil {
		return fmt.Errorf("invalidate snapshot cache: %w", err)
	}

	return nil
}

func (s *Service) handleStockMovedEvent(ctx context.Context, ev StockMovedEvent) error {
	if ev.LeavesLowStock() {
		s.logger.WarnContext(ctx, "product fell below reorder threshold",
			slog.String("product_id", ev.ProductID),
			slog.String("sku", ev.Sku),
			slog.Int("stock", ev.StockAfter),
			slog.Int("min_stock", ev.MinStock),
		)
	}

	if err := s.snapshotCache.Invalidate(ctx); err != nil {
		return fmt.Errorf("invalidate snapshot cache: %w", err)
	}

	return nil
}
