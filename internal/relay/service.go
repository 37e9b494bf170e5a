package relay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tuanvumaihuynh/inventory-backoffice/internal/config"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/repository"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/db"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/mq"
	"github.com/tuanvumaihuynh/inventory-backoffice/pkg/ptr"
)

// Service moves committed outbox messages to Kafka.
type Service struct {
	cfg           config.Relay
	logger        *slog.Logger
	db            db.DB
	outboxMsgRepo repository.OutboxMsgRepository
	mqProducer    mq.Producer

	stopChan chan struct{}
}

func NewService(
	cfg config.Relay,
	logger *slog.Logger,
	db db.DB,
	outboxMsgRepo repository.OutboxMsgRepository,
	mqProducer mq.Producer,
) *Service {
	return &Service{
		cfg:           cfg,
		logger:        logger.With(slog.String("service", "relay")),
		db:            db,
		outboxMsgRepo: outboxMsgRepo,
		mqProducer:    mqProducer,
		stopChan:      make(chan struct{}),
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) CleanupFunc {
	ctx, cancel := context.WithCancel(ctx)

	stoppedChan := make(chan struct{})
	go func() {
		defer close(stoppedChan)
		s.run(ctx)
	}()

	return func() {
		close(s.stopChan)
		select {
		case <-stoppedChan:
		case <-time.After(5 * time.Second):
			cancel()
			<-stoppedChan
		}
		cancel()
	}
}

func (s *Service) run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			n, err := s.RelayBatch(ctx)
			if err != nil {
				s.logger.ErrorContext(ctx, "error relaying outbox msgs", slog.Any("error", err))
				continue
			}
			if n > 0 {
				s.logger.InfoContext(ctx, "relayed outbox msgs", slog.Int("count", n))
			}
		}
	}
}

// RelayBatch produces one batch of unprocessed messages and marks each as
// processed, recording the produce error if any. Distinct partition keys are
// produced concurrently; messages of one key go out in creation order. The
// batch stays locked for the duration so concurrent relays do not send it twice.
func (s *Service) RelayBatch(ctx context.Context) (int, error) {
	var relayed int
	err := s.db.WithTx(ctx, func(db db.DB) error {
		outboxMsgs, err := s.outboxMsgRepo.
			WithDB(db).
			ListUnprocessedOutboxMsgs(ctx, repository.ListUnprocessedOutboxMsgsParams{
				BatchSize: s.cfg.BatchSize,
			})
		if err != nil {
			return fmt.Errorf("list unprocessed outbox msgs: %w", err)
		}

		if len(outboxMsgs) == 0 {
			return nil
		}

		produceCtx, cancel := s.produceContext(ctx)
		defer cancel()

		items := make([]repository.BulkUpdateOutboxMsgsItem, len(outboxMsgs))
		var wg sync.WaitGroup
		for _, group := range keyGroups(outboxMsgs) {
			wg.Go(func() {
				for _, i := range group {
					items[i] = s.produce(ctx, produceCtx, outboxMsgs[i])
				}
			})
		}
		wg.Wait()

		if err := s.outboxMsgRepo.
			WithDB(db).
			BulkUpdateOutboxMsgs(ctx, repository.BulkUpdateOutboxMsgsParams{
				Items: items,
			}); err != nil {
			return fmt.Errorf("bulk update outbox msgs: %w", err)
		}

		relayed = len(items)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return relayed, nil
}

func (s *Service) produce(ctx, produceCtx context.Context, msg repository.OutboxMsg) repository.BulkUpdateOutboxMsgsItem {
	item := repository.BulkUpdateOutboxMsgsItem{ID: msg.ID}

	if err := s.mqProducer.Produce(produceCtx, mq.ProduceMsg{
		Topic:        msg.Topic,
		Headers:      msg.Headers,
		Payload:      msg.Payload,
		PartitionKey: msg.PartitionKey,
	}); err != nil {
		s.logger.ErrorContext(ctx,
			"error producing message",
			slog.String("outbox_msg_id", msg.ID.String()),
			slog.String("topic", msg.Topic),
			slog.Any("error", err),
		)
		item.Error = ptr.New(err.Error())
	}

	return item
}

// keyGroups splits a batch into index lists that can be produced in parallel.
// Messages sharing a partition key stay in one group in batch order, so they
// are produced one after another. Unkeyed messages each get their own group.
func keyGroups(msgs []repository.OutboxMsg) [][]int {
	groups := make([][]int, 0, len(msgs))
	byKey := make(map[string]int)
	for i, msg := range msgs {
		if msg.PartitionKey == nil {
			groups = append(groups, []int{i})
			continue
		}
		g, ok := byKey[*msg.PartitionKey]
		if !ok {
			g = len(groups)
			byKey[*msg.PartitionKey] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}

// produceContext bounds how long one batch waits for broker acknowledgements.
// Messages that time out are marked with the error and not retried.
func (s *Service) produceContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.ProduceTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.ProduceTimeout)
}
