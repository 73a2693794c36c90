package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouterConfig collects the services the router exposes. Cache may be nil.
type RouterConfig struct {
	Registry    OrderRegistrar
	Settlement  OrderSettler
	Crew        CrewLister
	Supplies    SupplyMover
	StatusCache StatusCache
	Logger      *log.Logger
	CORSOrigins []string
}

// NewRouter assembles the full route table behind logging and CORS.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return RequestLogger(next, cfg.Logger)
	})
	r.Use(func(next http.Handler) http.Handler {
		return CORS(cfg.CORSOrigins, next)
	})

	r.Get("/health", HealthHandler)

	r.Route("/api", func(api chi.Router) {
		api.Post("/service-orders/registry", HandleCreateOrder(cfg.Registry))
		api.Get("/service-orders/{id}", HandleGetOrder(cfg.Registry))
		api.Get("/service-orders/{id}/status", HandleOrderStatus(cfg.Registry, cfg.StatusCache))
		api.Post("/service-orders/{id}/complete", HandleCompleteOrder(cfg.Settlement))
		api.Post("/service-orders/{id}/cancel", HandleCancelOrder(cfg.Settlement))

		api.Get("/employees/active", HandleActiveEmployees(cfg.Crew))
		api.Get("/employees/available", HandleFreeEmployees(cfg.Crew))
		api.Get("/bays/available", HandleFreeBays(cfg.Crew))

		api.Post("/supplies/{id}/pullout", HandleSupplyPullout(cfg.Supplies))
		api.Post("/supplies/{id}/restock", HandleSupplyRestock(cfg.Supplies))
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})

	return r
}
