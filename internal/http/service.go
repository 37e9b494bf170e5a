package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	apicontract "github.com/tuanvumaihuynh/inventory-backoffice/api-contract"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/config"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/http/apierr"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/http/metric"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/http/middleware"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/http/swagger"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/service"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/db"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg     config.HTTP
	logger  *slog.Logger
	metrics *metric.Metrics

	productSvc  service.ProductService
	categorySvc service.CategoryService
	supplierSvc service.SupplierService
	statsSvc    service.StatsService
	health      db.HealthChecker

	// contract is set by Run once the embedded OpenAPI document validates.
	contract *openapi3.T
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	productSvc service.ProductService,
	categorySvc service.CategoryService,
	supplierSvc service.SupplierService,
	statsSvc service.StatsService,
	health db.HealthChecker,
) *Service {
	return &Service{
		cfg:         cfg,
		logger:      log.With(slog.String("service", "http")),
		metrics:     metric.New(),
		productSvc:  productSvc,
		categorySvc: categorySvc,
		supplierSvc: supplierSvc,
		statsSvc:    statsSvc,
		health:      health,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	contract, err := apicontract.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load api contract: %w", err)
	}
	s.contract = contract
	s.logger.InfoContext(ctx, "api contract loaded", slog.String("version", contract.Info.Version))

	return s.RunWithServer(ctx, s.Router())
}

// Router builds the complete handler tree.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger && s.contract != nil {
		if err := swagger.Register(r, s.contract); err != nil {
			s.logger.Error("swagger ui disabled", slog.Any("error", err))
		}
	}

	s.RegisterHandlers(r)

	return r
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.ErrorContext(ctx, "http server stopped", slog.Any("error", err))
		}
	}()

	s.logger.InfoContext(ctx, "http server listening", slog.String("addr", ln.Addr().String()))

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(s.cfg.CORSOrigins),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	h := s.newHandler()

	r.Get("/healthz", s.handle(h.Healthz))

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.handle(h.ListProducts))
			r.Post("/", s.handle(h.CreateProduct))
			r.Get("/{id}", s.handle(h.GetProduct))
			r.Put("/{id}", s.handle(h.UpdateProduct))
			r.Delete("/{id}", s.handle(h.DeleteProduct))
			r.Get("/{id}/movements", s.handle(h.ListProductMovements))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handle(h.ListCategories))
			r.Post("/", s.handle(h.CreateCategory))
			r.Put("/{id}", s.handle(h.UpdateCategory))
			r.Delete("/{id}", s.handle(h.DeleteCategory))
		})

		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/", s.handle(h.ListSuppliers))
			r.Post("/", s.handle(h.CreateSupplier))
			r.Put("/{id}", s.handle(h.UpdateSupplier))
			r.Delete("/{id}", s.handle(h.DeleteSupplier))
		})

		r.Get("/stats", s.handle(h.GetStats))
	})

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
}

func (s *Service) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			s.handleResponseError(w, r, err)
		}
	}
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding error response",
			slog.Any("error", err))
	}
}

type handler struct {
	*productHandler
	*catalogHandler
	*statsHandler
}

func (s *Service) newHandler() *handler {
	return &handler{
		productHandler: newProductHandler(s.productSvc),
		catalogHandler: newCatalogHandler(s.categorySvc, s.supplierSvc),
		statsHandler:   newStatsHandler(s.statsSvc, s.health),
	}
}
