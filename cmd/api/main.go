package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/athebyme/catalog-sync/config"
	"github.com/athebyme/catalog-sync/internal/adapters/logger"
	"github.com/athebyme/catalog-sync/internal/api"
	"github.com/athebyme/catalog-sync/internal/api/handlers"
	"github.com/athebyme/catalog-sync/internal/app"
	"github.com/athebyme/catalog-sync/pkg/auth"
	"github.com/athebyme/catalog-sync/pkg/interfaces"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log, err := logger.NewZapLogger(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Инициализация сервиса",
		interfaces.LogField{Key: "app_name", Value: cfg.AppName},
		interfaces.LogField{Key: "version", Value: cfg.Version},
		interfaces.LogField{Key: "env", Value: cfg.ENV},
	)

	verifier, err := auth.NewSessionVerifier(cfg.Shopify.SessionConfig())
	if err != nil {
		log.Fatal("Ошибка инициализации проверки сессий", interfaces.LogField{Key: "error", Value: err.Error()})
	}

	container, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal("Ошибка инициализации зависимостей", interfaces.LogField{Key: "error", Value: err.Error()})
	}

	router := api.SetupRouter(api.RouterConfig{
		SyncHandler:        handlers.NewSyncHandler(container.Sync, log),
		APIKeyHandler:      handlers.NewAPIKeyHandler(container.Credentials, log),
		WebhookHandler:     handlers.NewWebhookHandler(container.Entitlement, cfg.Shopify.APISecret, log),
		Auth:               verifier,
		Logger:             log,
		CORSAllowedOrigins: cfg.Security.CORSAllowOrigins,
		RequestTimeout:     cfg.Server.RequestTimeout,
		MetricsEnabled:     cfg.Metrics.Enabled,
	})
	log.Info("Маршрутизатор настроен")

	var handler http.Handler = router
	if cfg.Server.BodyLimit > 0 {
		handler = http.MaxBytesHandler(router, int64(cfg.Server.BodyLimit)<<20)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Сервер запущен", interfaces.LogField{Key: "address", Value: server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Ошибка запуска сервера", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}()

	go func() {
		<-quit
		log.Info("Получен сигнал завершения, выполняется graceful shutdown...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Ошибка при graceful shutdown", interfaces.LogField{Key: "error", Value: err.Error()})
		}
		log.Info("HTTP сервер остановлен")

		cancel()
		container.Close()
		close(done)
	}()

	<-done
	log.Info("Сервер корректно завершил работу")
}
