package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sehat-ai/sehat-backend/internal/adapters/cache"
	"github.com/sehat-ai/sehat-backend/internal/adapters/database"
	"github.com/sehat-ai/sehat-backend/internal/adapters/events"
	"github.com/sehat-ai/sehat-backend/internal/adapters/providers/geolocation"
	"github.com/sehat-ai/sehat-backend/internal/adapters/providers/triage"
	"github.com/sehat-ai/sehat-backend/internal/api/handlers"
	"github.com/sehat-ai/sehat-backend/internal/api/middleware"
	"github.com/sehat-ai/sehat-backend/internal/api/routes"
	"github.com/sehat-ai/sehat-backend/internal/application/services"
	"github.com/sehat-ai/sehat-backend/internal/domain/providers"
	"github.com/sehat-ai/sehat-backend/internal/domain/repositories"
	"github.com/sehat-ai/sehat-backend/internal/infrastructure/clients/gemini"
	"github.com/sehat-ai/sehat-backend/internal/infrastructure/clients/postgres"
	"github.com/sehat-ai/sehat-backend/internal/infrastructure/clients/redis"
	"github.com/sehat-ai/sehat-backend/internal/infrastructure/observability"
	"github.com/sehat-ai/sehat-backend/pkg/config"
)

const navigationJanitorInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// OpenTelemetry export is optional; without an endpoint the meters
	// are no-ops.
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Warn().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Postgres is optional: without it the service runs with history
	// and the heatmap disabled.
	var historyRepo repositories.SearchHistoryRepository
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Warn().Err(err).Msg("PostgreSQL unavailable; search history disabled")
	} else {
		defer pgClient.Close()
		historyRepo = database.NewSearchHistoryAdapter(pgClient)
	}

	// Redis is optional: without it there is no HTTP response cache and
	// no event bus.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable; response cache and event bus disabled")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
	}

	mapProvider := buildMapProvider(cfg)
	classifier := buildClassifier(cfg)

	// Services
	triageService := services.NewTriageService(classifier, historyRepo, eventBus)
	locatorService := services.NewLocatorService(mapProvider)
	fastestRouteService := services.NewFastestRouteService(mapProvider)
	navigationService := services.NewNavigationService(mapProvider)
	go navigationService.RunJanitor(ctx, navigationJanitorInterval)

	var heatmapService *services.HeatmapService
	if historyRepo != nil {
		heatmapService = services.NewHeatmapService(historyRepo)
		if eventBus != nil {
			if err := heatmapService.ConsumeEvents(ctx, eventBus); err != nil {
				log.Warn().Err(err).Msg("failed to subscribe heatmap to search events")
			}
		}
	}

	// Handlers
	triageHandler := handlers.NewTriageHandler(triageService, metrics)
	facilityHandler := handlers.NewFacilityHandler(locatorService)
	routeHandler := handlers.NewRouteHandler(mapProvider, fastestRouteService)
	navigationHandler := handlers.NewNavigationHandler(navigationService)

	var heatmapHandler *handlers.HeatmapHandler
	if heatmapService != nil {
		heatmapHandler = handlers.NewHeatmapHandler(heatmapService)
	}

	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider, metrics)
	}

	router := routes.NewRouter(
		triageHandler,
		facilityHandler,
		routeHandler,
		navigationHandler,
		heatmapHandler,
		cacheMiddleware,
		metrics,
	)
	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("error during server shutdown")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing event bus")
		}
	}

	log.Info().Msg("server stopped")
}

// buildMapProvider picks the configured provider, falling back to the
// mock when no API key is available so the service still starts.
func buildMapProvider(cfg *config.Config) providers.MapProvider {
	if cfg.Maps.Provider == "google" {
		if cfg.Maps.APIKey == "" {
			log.Warn().Msg("GOOGLE_MAPS_API_KEY is not set; using mock map provider")
			return geolocation.NewMockMapProvider()
		}
		provider, err := geolocation.NewGoogleMapProvider(cfg.Maps.APIKey)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize google maps client; using mock map provider")
			return geolocation.NewMockMapProvider()
		}
		return provider
	}
	return geolocation.NewMockMapProvider()
}

func buildClassifier(cfg *config.Config) providers.TriageProvider {
	if cfg.Triage.APIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set; using keyword mock classifier")
		return triage.NewMockClassifier()
	}
	client, err := gemini.NewClient(&cfg.Triage)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize gemini client; using keyword mock classifier")
		return triage.NewMockClassifier()
	}
	return client
}
