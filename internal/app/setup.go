// Package app contains the application setup for the sales service.
package app

import (
	"log/slog"
	"net/http"

	catalogservice "github.com/devstore/sales-service/internal/catalog/service"
	catalogstore "github.com/devstore/sales-service/internal/catalog/store"
	catalogrest "github.com/devstore/sales-service/internal/catalog/transport/rest"
	"github.com/devstore/sales-service/internal/config"
	salesservice "github.com/devstore/sales-service/internal/sales/service"
	salesstore "github.com/devstore/sales-service/internal/sales/store"
	salesrest "github.com/devstore/sales-service/internal/sales/transport/rest"
	"github.com/devstore/sales-service/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Dependencies struct {
	ProductService catalogservice.ProductService
	SaleService    salesservice.SaleService
	Logger         *slog.Logger
}

func SetupDependencies(dbPool *pgxpool.Pool, logger *slog.Logger) *Dependencies {
	productStore := catalogstore.NewPgStore(dbPool)
	saleStore := salesstore.NewPgStore(dbPool)

	return &Dependencies{
		ProductService: catalogservice.NewService(productStore),
		SaleService:    salesservice.NewService(saleStore, productStore),
		Logger:         logger,
	}
}

// SetupHttpHandler initializes the HTTP routes for the sales service.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the sales service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := catalogrest.NewHandler(deps.ProductService, deps.Logger)
	productHandler.RegisterRoutes(mux)

	saleHandler := salesrest.NewHandler(deps.SaleService, deps.Logger)
	saleHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the sales service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {

	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
