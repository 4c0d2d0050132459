package routes

import (
	"net/http"

	"github.com/sehat-ai/sehat-backend/internal/api/handlers"
	"github.com/sehat-ai/sehat-backend/internal/api/middleware"
	"github.com/sehat-ai/sehat-backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	triageHandler     *handlers.TriageHandler
	facilityHandler   *handlers.FacilityHandler
	routeHandler      *handlers.RouteHandler
	navigationHandler *handlers.NavigationHandler
	heatmapHandler    *handlers.HeatmapHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	triageHandler *handlers.TriageHandler,
	facilityHandler *handlers.FacilityHandler,
	routeHandler *handlers.RouteHandler,
	navigationHandler *handlers.NavigationHandler,
	heatmapHandler *handlers.HeatmapHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:               http.NewServeMux(),
		triageHandler:     triageHandler,
		facilityHandler:   facilityHandler,
		routeHandler:      routeHandler,
		navigationHandler: navigationHandler,
		heatmapHandler:    heatmapHandler,
		cacheMiddleware:   cacheMiddleware,
		metrics:           metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Triage endpoints
	r.mux.HandleFunc("POST /api/triage", r.triageHandler.Classify)
	r.mux.HandleFunc("GET /api/history", r.triageHandler.History)

	// Facility endpoints
	r.mux.HandleFunc("GET /api/facilities/nearby", r.facilityHandler.Nearby)

	// Route endpoints
	r.mux.HandleFunc("GET /api/routes", r.routeHandler.Get)
	r.mux.HandleFunc("GET /api/routes/fastest", r.routeHandler.Fastest)

	// Navigation session endpoints
	r.mux.HandleFunc("POST /api/navigation/sessions", r.navigationHandler.Start)
	r.mux.HandleFunc("PATCH /api/navigation/sessions/{id}", r.navigationHandler.Update)
	r.mux.HandleFunc("DELETE /api/navigation/sessions/{id}", r.navigationHandler.Stop)

	// Analytics endpoints
	if r.heatmapHandler != nil {
		r.mux.HandleFunc("GET /api/analytics/heatmap", r.heatmapHandler.Get)
	}

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS must be outermost so cached responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	if r.metrics != nil {
		handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	}

	handler = middleware.ResponseOptimization(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
