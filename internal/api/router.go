package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/athebyme/catalog-sync/docs"
	"github.com/athebyme/catalog-sync/internal/api/handlers"
	"github.com/athebyme/catalog-sync/internal/api/middleware"
	"github.com/athebyme/catalog-sync/pkg/auth"
	"github.com/athebyme/catalog-sync/pkg/interfaces"
)

// RouterConfig зависимости маршрутизатора
type RouterConfig struct {
	SyncHandler    *handlers.SyncHandler
	APIKeyHandler  *handlers.APIKeyHandler
	WebhookHandler *handlers.WebhookHandler
	Auth           interfaces.AuthPort
	Logger         interfaces.LoggerPort

	CORSAllowedOrigins []string
	RequestTimeout     time.Duration
	MetricsEnabled     bool
}

// SetupRouter настраивает маршрутизатор
func SetupRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	// Глобальные middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Tracing)
	r.Use(middleware.SecurityHeaders)
	if cfg.MetricsEnabled {
		r.Use(middleware.Metrics)
	}

	r.Method(http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}))
	r.Method(http.MethodHead, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	noContent := func(w http.ResponseWriter, r *http.Request) {}

	// Публичное чтение ключа, доступно с любого источника
	r.Group(func(r chi.Router) {
		r.Use(middleware.CORS([]string{"*"}))
		r.Use(middleware.Timeout(cfg.RequestTimeout))

		r.Options("/api/apikey", noContent)
		r.Get("/api/apikey", cfg.APIKeyHandler.GetAPIKey)
	})

	// Маршруты встроенного приложения
	r.Group(func(r chi.Router) {
		r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
		r.Options("/api/sync", noContent)

		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware(cfg.Auth, cfg.Logger))

			// синхронизация ограничена таймаутом записи сервера, а не таймаутом запроса
			r.Post("/api/sync", cfg.SyncHandler.SyncCatalog)
			r.With(middleware.Timeout(cfg.RequestTimeout)).Put("/api/apikey", cfg.APIKeyHandler.SaveAPIKey)
		})
	})

	r.With(middleware.Timeout(cfg.RequestTimeout)).Post("/webhooks/billing", cfg.WebhookHandler.BillingWebhook)

	return r
}
