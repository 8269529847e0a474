package http

import (
	"context"
	"net/http"

	_ "github.com/DRSN-tech/catalog-admin/docs" // Импорт сгенерированных файлов
	"github.com/DRSN-tech/catalog-admin/internal/cfg"
	"github.com/DRSN-tech/catalog-admin/internal/usecase"
	"github.com/DRSN-tech/catalog-admin/pkg/e"
	"github.com/DRSN-tech/catalog-admin/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// HealthChecker проверяет доступность зависимостей для /health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Deps — зависимости HTTP-слоя.
type Deps struct {
	ProductUC usecase.ProductUC
	CatalogUC usecase.CatalogUC
	Photos    usecase.PhotoStorage
	Health    HealthChecker
	Cfg       *cfg.HTTPConfig
	Dev       bool // подробности ошибок в ответах
}

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(deps Deps) {
	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.RealIP)
	r.router.Use(accessLog(r.logger))
	r.router.Use(middleware.Recoverer)
	r.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.Cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, e.ErrNotFound, false)
	})

	r.router.Get("/health", healthHandler(deps.Health))
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	prHandler := NewProductHandler(deps.ProductUC, deps.CatalogUC, deps.Photos, deps.Cfg, deps.Dev, r.logger)
	catHandler := NewCatalogHandler(deps.CatalogUC, deps.Dev, r.logger)
	upHandler := NewUploadHandler(deps.Photos, deps.Cfg, deps.Dev, r.logger)

	r.router.Route("/api", func(api chi.Router) {
		registerProductRoutes(api, prHandler)
		registerCatalogRoutes(api, catHandler)
	})

	r.router.Post("/upload", upHandler.upload)
	r.router.Get("/uploads/*", upHandler.serve)
}

func registerProductRoutes(router chi.Router, prHandler *ProductHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", prHandler.listProducts)
		pr.Post("/", prHandler.createProduct)
		pr.Get("/next-id", prHandler.nextProductID)
		pr.Get("/categories", prHandler.listCategoryRows)
		pr.Get("/manufacturers", prHandler.listManufacturerRows)
		pr.Get("/{id}", prHandler.getProduct)
		pr.Put("/{id}", prHandler.updateProduct)
		pr.Delete("/{id}", prHandler.deleteProduct)
	})
}

func registerCatalogRoutes(router chi.Router, catHandler *CatalogHandler) {
	router.Route("/categories", func(c chi.Router) {
		c.Get("/", catHandler.listCategories)
		c.Post("/", catHandler.createCategory)
		c.Put("/{id}", catHandler.updateCategory)
		c.Delete("/{id}", catHandler.deleteCategory)
	})

	router.Route("/manufacturers", func(m chi.Router) {
		m.Get("/", catHandler.listManufacturers)
		m.Post("/", catHandler.createManufacturer)
		m.Put("/{id}", catHandler.updateManufacturer)
		m.Delete("/{id}", catHandler.deleteManufacturer)
	})
}

func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.Ping(r.Context()); err != nil {
				WriteSuccess(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}

		WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
