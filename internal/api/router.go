package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/lumilearn/cortex/internal/api/handlers"
	mw "github.com/lumilearn/cortex/internal/api/middleware"
	"github.com/lumilearn/cortex/internal/brain"
	"github.com/lumilearn/cortex/internal/buildconfig"
	"github.com/lumilearn/cortex/internal/cognitive"
	"github.com/lumilearn/cortex/internal/config"
	"github.com/lumilearn/cortex/internal/domain"
	"github.com/lumilearn/cortex/internal/embedding"
	"github.com/lumilearn/cortex/internal/llm"
	"github.com/lumilearn/cortex/internal/store"
)

// App holds the router and the learner registry for lifecycle management.
type App struct {
	Router   *chi.Mux
	Registry *brain.Registry

	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	// Stores
	snapshotStore := store.NewSnapshotStore(db)
	episodeStore := store.NewEpisodeStore(db)

	// External clients via provider factory
	var embeddingClient domain.EmbeddingClient
	var llmClient domain.LLMClient

	llmProvider := config.LLMProvider()
	embeddingProvider := config.EmbeddingProvider()

	var err error
	llmClient, err = llm.NewClient(llmProvider, config.LLMAPIKey())
	if err != nil {
		logger.Warn("LLM client initialization failed", zap.String("provider", llmProvider), zap.Error(err))
	} else {
		logger.Info("LLM client initialized", zap.String("provider", llmProvider))
		llmClient = llm.NewResilientClient(llmClient, config.LLMTimeout())
	}

	embeddingClient, err = embedding.NewClient(embeddingProvider, config.EmbeddingAPIKey())
	if err != nil {
		logger.Warn("embedding client initialization failed", zap.String("provider", embeddingProvider), zap.Error(err))
	} else {
		logger.Info("embedding client initialized", zap.String("provider", embeddingProvider))
	}

	// Learner registry
	registry := brain.NewRegistry(brain.Options{
		Cognitive: cognitive.Config{
			BreakInterval:  config.BreakInterval(),
			SessionTimeout: config.SessionTimeout(),
		},
		LLM:       llmClient,
		Snapshots: snapshotStore,
		Archive:   episodeStore,
		Embedder:  embeddingClient,
		Logger:    logger,
	}, logger)
	registry.SetIdleTTL(config.IdleEvictionTTL())
	registry.SetSweepInterval(config.SweepInterval())

	// Handlers
	learnerHandler := handlers.NewLearnerHandler(registry)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Registry:  registry,
		startTime: time.Now(),
	}

	// Metrics collector for middleware
	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	r.Get("/health", healthHandler(db))
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/learners/{id}", func(r chi.Router) {
			r.Post("/initialize", learnerHandler.Initialize)
			r.Post("/interactions", learnerHandler.ProcessInteraction)
			r.Post("/end-session", learnerHandler.EndSession)
			r.Get("/state", learnerHandler.GetState)
			r.Get("/memories", learnerHandler.Recall)
		})
	})

	return app
}

// NewRouter returns just the chi.Mux.
func NewRouter(db *pgxpool.Pool, logger *zap.Logger) *chi.Mux {
	return NewApp(db, logger).Router
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds":    uptime.Seconds(),
			"uptime_human":      uptime.Round(time.Second).String(),
			"request_count":     app.requestCount.Load(),
			"error_count":       app.errorCount.Load(),
			"resident_learners": app.Registry.Len(),
			"goroutines":        runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
			"build":      buildconfig.VersionInfo(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.SnapshotStore   = (*store.SnapshotStore)(nil)
	_ domain.EpisodeArchive  = (*store.EpisodeStore)(nil)
	_ domain.EmbeddingClient = (*embedding.OpenAIClient)(nil)
	_ domain.EmbeddingClient = (*embedding.MockClient)(nil)
	_ domain.LLMClient       = (*llm.OpenAIClient)(nil)
	_ domain.LLMClient       = (*llm.AnthropicClient)(nil)
	_ domain.LLMClient       = (*llm.GeminiClient)(nil)
	_ domain.LLMClient       = (*llm.MockClient)(nil)
	_ domain.LLMClient       = (*llm.ResilientClient)(nil)
)
