package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/tuanvumaihuynh/inventory-backoffice/internal/config"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/event"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/http"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/log"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/relay"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/repository"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/service"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/cache"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/db"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/mq"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/telemetry"
	"github.com/tuanvumaihuynh/inventory-backoffice/pkg/cmdutil"
	"github.com/tuanvumaihuynh/inventory-backoffice/pkg/validator"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running standalone application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log       config.Log
		Postgres  config.Postgres
		HTTP      config.HTTP
		Relay     config.Relay
		Kafka     config.Kafka
		Otel      config.Otel
		Redis     config.Redis
		Inventory config.Inventory
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	reportLoc, err := cfg.Inventory.Location()
	if err != nil {
		return fmt.Errorf("error loading report timezone: %w", err)
	}

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)

	var snapshotCache cache.SnapshotCache = cache.NoopSnapshotCache{}
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("error creating redis client: %w", err)
		}
		defer redisClient.Close()

		snapshotCache = cache.NewRedisSnapshotCache(redisClient, cfg.Inventory.StatsCacheTTL, logger)
	} else {
		logger.InfoContext(ctx, "redis address not set, dashboard snapshot cache disabled")
	}

	kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
	if err != nil {
		return fmt.Errorf("error creating kafka producer: %w", err)
	}
	defer kafkaProducer.Close()

	kafkaConsumer, err := mq.NewKafkaConsumer(ctx, cfg.Kafka, logger)
	if err != nil {
		return fmt.Errorf("error creating kafka consumer: %w", err)
	}
	defer kafkaConsumer.Close()

	v, err := validator.NewDefaultValidator()
	if err != nil {
		return fmt.Errorf("error creating validator: %w", err)
	}

	productRepository := repository.NewProductRepository(dbClient)
	stockMovementRepository := repository.NewStockMovementRepository(dbClient)
	categoryRepository := repository.NewCategoryRepository(dbClient)
	supplierRepository := repository.NewSupplierRepository(dbClient)
	statsRepository := repository.NewStatsRepository(dbClient)
	outboxMsgRepository := repository.NewOutboxMsgRepository(dbClient)

	productService := service.NewProductService(cfg.Inventory, dbClient, v,
		productRepository, stockMovementRepository, outboxMsgRepository, snapshotCache)
	categoryService := service.NewCategoryService(cfg.Inventory, v, categoryRepository, snapshotCache)
	supplierService := service.NewSupplierService(cfg.Inventory, v, supplierRepository, snapshotCache)
	statsService := service.NewStatsService(cfg.Inventory, reportLoc, logger,
		statsRepository, stockMovementRepository, snapshotCache)

	interruptChan := cmdutil.InterruptChan()
	var wg sync.WaitGroup

	wg.Go(func() {
		svc := event.New(logger, kafkaConsumer, snapshotCache)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running event service: %w", err))
		}
		logger.InfoContext(ctx, "event service started")

		<-interruptChan

		logger.InfoContext(ctx, "event service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "event service is stopped")
	})

	wg.Go(func() {
		svc := http.New(cfg.HTTP, logger, productService, categoryService, supplierService, statsService, dbClient)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running http service: %w", err))
		}

		logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

		<-interruptChan

		logger.InfoContext(ctx, "http service is shutting down")
		if err := cleanup(ctx); err != nil {
			logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
		}

		logger.InfoContext(ctx, "http service is stopped")
	})

	wg.Go(func() {
		svc := relay.NewService(cfg.Relay, logger, dbClient, outboxMsgRepository, kafkaProducer)
		cleanup := svc.Run(ctx)
		logger.InfoContext(ctx, "relay service started")

		<-interruptChan

		logger.InfoContext(ctx, "relay service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "relay service is stopped")
	})

	wg.Wait()

	return nil
}
