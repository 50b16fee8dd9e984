package router

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/rs/zerolog"
)

// Keys holds the credentials the router authenticates against.
type Keys struct {
	APIKey      string
	AdminAPIKey string
}

// New creates a new HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	orderHandler *handler.OrderHandler,
	adminHandler *handler.AdminHandler,
	keys Keys,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	mux.HandleFunc("GET /api/products", productHandler.GetAll)
	mux.HandleFunc("GET /api/products/{id}", productHandler.GetByID)

	mux.HandleFunc("POST /api/orders", orderHandler.Checkout)
	mux.HandleFunc("GET /api/orders/lookup", orderHandler.Lookup)
	mux.HandleFunc("GET /api/orders/{id}", orderHandler.GetByID)
	mux.HandleFunc("PATCH /api/orders/{id}", orderHandler.Edit)
	mux.HandleFunc("GET /api/orders/{id}/deadline", orderHandler.Deadline)

	admin := http.NewServeMux()
	admin.HandleFunc("GET /api/admin/orders", adminHandler.ListOrders)
	admin.HandleFunc("PUT /api/admin/orders/{id}/status", adminHandler.UpdateStatus)
	admin.HandleFunc("POST /api/admin/scans", adminHandler.TriggerScan)
	mux.Handle("/api/admin/", middleware.AdminAuth(keys.AdminAPIKey, logger)(admin))

	// Apply middleware in order: Recovery -> RequestID -> Logging -> CORS -> APIKeyAuth
	var h http.Handler = mux
	h = middleware.APIKeyAuth(logger, keys.APIKey, keys.AdminAPIKey)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.RequestID(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
