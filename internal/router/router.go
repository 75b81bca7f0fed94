package router

import (
	"database/sql"
	"net/http"

	"mobilehub/internal/config"
	"mobilehub/internal/handlers"
	"mobilehub/internal/metrics"
	"mobilehub/internal/middleware"
	"mobilehub/internal/models"
	"mobilehub/internal/services"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gocloud.dev/blob"
	"golang.org/x/time/rate"
)

func SetupRouter(db *sql.DB, bucket *blob.Bucket, cfg config.Config, logger zerolog.Logger) *mux.Router {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	tokenService := services.NewTokenService(cfg.JWTSecret, logger)
	catalogService := services.NewCatalogService(db, logger)
	cartService := services.NewCartService(db, logger, catalogService)
	orderService := services.NewOrderService(db, logger)
	uploadService := services.NewUploadService(bucket, logger)

	catalogHandler := handlers.NewCatalogHandler(catalogService, logger)
	cartHandler := handlers.NewCartHandler(cartService, logger)
	orderHandler := handlers.NewOrderHandler(orderService, collector, logger)
	uploadHandler := handlers.NewUploadHandler(uploadService, collector, logger)

	authenticate := middleware.Authentication(tokenService, logger)
	adminOnly := middleware.RequireRole(string(models.RoleAdmin))

	r := mux.NewRouter()

	rateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	r.Use(middleware.ErrorHandling(logger))
	r.Use(middleware.PerformanceMonitoring(collector, logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	r.Use(rateLimiter.Middleware())

	products := r.PathPrefix("/products").Subrouter()
	products.HandleFunc("", catalogHandler.ListProducts).Methods("GET")
	products.HandleFunc("/{id}", catalogHandler.GetProduct).Methods("GET")

	adminProducts := products.PathPrefix("").Subrouter()
	adminProducts.Use(authenticate, adminOnly, middleware.RequestValidation())
	adminProducts.HandleFunc("", catalogHandler.CreateProduct).Methods("POST")
	adminProducts.HandleFunc("/{id}", catalogHandler.UpdateProduct).Methods("PUT")
	adminProducts.HandleFunc("/{id}", catalogHandler.DeleteProduct).Methods("DELETE")

	categories := r.PathPrefix("/categories").Subrouter()
	categories.HandleFunc("", catalogHandler.ListCategories).Methods("GET")
	categories.HandleFunc("/{id}", catalogHandler.GetCategory).Methods("GET")

	adminCategories := categories.PathPrefix("").Subrouter()
	adminCategories.Use(authenticate, adminOnly, middleware.RequestValidation())
	adminCategories.HandleFunc("", catalogHandler.CreateCategory).Methods("POST")
	adminCategories.HandleFunc("/{id}", catalogHandler.UpdateCategory).Methods("PUT")
	adminCategories.HandleFunc("/{id}", catalogHandler.DeleteCategory).Methods("DELETE")

	cart := r.PathPrefix("/cart").Subrouter()
	cart.Use(authenticate, middleware.RequestValidation())
	cart.HandleFunc("", cartHandler.List).Methods("GET")
	cart.HandleFunc("", cartHandler.Create).Methods("POST")
	cart.HandleFunc("/{id}", cartHandler.Get).Methods("GET")
	cart.HandleFunc("/{id}", cartHandler.Update).Methods("PATCH")
	cart.HandleFunc("/{id}", cartHandler.Delete).Methods("DELETE")

	orders := r.PathPrefix("/orders").Subrouter()
	orders.Use(authenticate)
	orders.HandleFunc("", orderHandler.List).Methods("GET")
	orders.HandleFunc("", orderHandler.Place).Methods("POST")

	r.Handle("/upload", authenticate(adminOnly(http.HandlerFunc(uploadHandler.Upload)))).Methods("POST")
	r.HandleFunc("/uploads/{key}", uploadHandler.Serve).Methods("GET")
	r.Handle("/metrics", metrics.Handler(registry)).Methods("GET")
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return r
}
