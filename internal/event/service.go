package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/cache"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/mq"
)

// Service consumes inventory events relayed from the outbox.
type Service struct {
	logger        *slog.Logger
	mqConsumer    mq.Consumer
	snapshotCache cache.SnapshotCache
}

// New creates a new event service.
func New(
	logger *slog.Logger,
	mqConsumer mq.Consumer,
	snapshotCache cache.SnapshotCache,
) *Service {
	return &Service{
		logger:        logger.With(slog.String("service", "event")),
		mqConsumer:    mqConsumer,
		snapshotCache: snapshotCache,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	if err := s.mqConsumer.RegisterHandler(TopicProductCreated, jsonHandler(s.handleProductCreatedEvent)); err != nil {
		return nil, fmt.Errorf("register product created event handler: %w", err)
	}

	if err := s.mqConsumer.RegisterHandler(TopicStockMoved, jsonHandler(s.handleStockMovedEvent)); err != nil {
		return nil, fmt.Errorf("register stock moved event handler: %w", err)
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	cleanup := func() {
		mqCleanup()
	}

	return cleanup, nil
}

func jsonHandler[T any](handle func(context.Context, T) error) mq.HandlerFunc {
	return func(ctx context.Context, topic string, payload []byte) error {
		var ev T
		if err := json.Unmarshal(payload, &ev); err != nil {
			return fmt.Errorf("unmarshal %s event: %w", topic, err)
		}

		if err := handle(ctx, ev); err != nil {
			return fmt.Errorf("handle %s event: %w", topic, err)
		}

		return nil
	}
}
