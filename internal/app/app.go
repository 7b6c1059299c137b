// Package app собирает зависимости конвейера синхронизации для cmd/api и cmd/worker.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/athebyme/catalog-sync/config"
	"github.com/athebyme/catalog-sync/internal/adapters/archive"
	"github.com/athebyme/catalog-sync/internal/adapters/cache"
	"github.com/athebyme/catalog-sync/internal/adapters/ingest"
	"github.com/athebyme/catalog-sync/internal/adapters/messaging"
	"github.com/athebyme/catalog-sync/internal/adapters/shopify"
	postgres "github.com/athebyme/catalog-sync/internal/adapters/storage"
	"github.com/athebyme/catalog-sync/internal/domain/services"
	"github.com/athebyme/catalog-sync/internal/utils"
	"github.com/athebyme/catalog-sync/pkg/interfaces"
)

const connectionCheckTimeout = 5 * time.Second

// Container зависимости, общие для API и воркера
type Container struct {
	Storage     *postgres.ShopStorage
	Cache       *cache.RedisCache
	Messaging   *messaging.KafkaMessaging
	Entitlement *services.EntitlementService
	Credentials *services.CredentialService
	Sync        *services.SyncService

	logger interfaces.LoggerPort
}

// Build подключается к хранилищам и собирает конвейер.
// Redis необязателен: без него решение о доступе читается из базы
func Build(ctx context.Context, cfg *config.Config, log interfaces.LoggerPort) (*Container, error) {
	c := &Container{logger: log}

	conn, err := utils.PostgresDSN{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		PoolSize:        cfg.Postgres.PoolSize,
		ConnectTimeout:  cfg.Postgres.Timeout,
		ApplicationName: cfg.AppName,
	}.ConnectionString()
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации строки подключения к PostgreSQL: %w", err)
	}

	c.Storage, err = postgres.NewPostgresStorage(ctx, conn, cfg.Postgres.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации хранилища: %w", err)
	}

	checkCtx, cancel := context.WithTimeout(ctx, connectionCheckTimeout)
	defer cancel()
	if err := c.Storage.Ping(checkCtx); err != nil {
		c.Close()
		return nil, fmt.Errorf("ошибка подключения к PostgreSQL: %w", err)
	}
	log.Info("Соединение с PostgreSQL проверено")

	var entitlementCache interfaces.CachePort
	c.Cache, err = cache.NewRedisCache(checkCtx, cache.Options{
		Host:           cfg.Redis.Host,
		Port:           cfg.Redis.Port,
		Password:       cfg.Redis.Password,
		DB:             cfg.Redis.DB,
		PoolSize:       cfg.Redis.PoolSize,
		MinIdleConns:   cfg.Redis.MinIdleConns,
		MaxRetries:     cfg.Redis.MaxRetries,
		ConnectTimeout: cfg.Redis.ConnectTimeout,
		ReadTimeout:    cfg.Redis.ReadTimeout,
		WriteTimeout:   cfg.Redis.WriteTimeout,
		PoolTimeout:    cfg.Redis.PoolTimeout,
		IdleTimeout:    cfg.Redis.IdleTimeout,
	})
	if err != nil {
		log.Warn("Redis недоступен, кэш доступа отключен",
			interfaces.LogField{Key: "error", Value: err.Error()})
	} else {
		entitlementCache = c.Cache
		log.Info("Кэш инициализирован")
	}

	var events services.SyncEventPublisher
	if cfg.Kafka.Enabled {
		c.Messaging, err = messaging.NewKafkaMessaging(messaging.Options{
			Brokers:           cfg.Kafka.Brokers,
			GroupID:           cfg.Kafka.GroupID,
			ClientID:          cfg.AppName,
			AutoOffsetReset:   cfg.Kafka.AutoOffsetReset,
			SessionTimeout:    cfg.Kafka.SessionTimeout,
			HeartbeatTimeout:  cfg.Kafka.HeartbeatTimeout,
			EnableIdempotence: cfg.Kafka.EnableIdempotence,
			CompressionType:   cfg.Kafka.CompressionType,
		}, log)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("ошибка инициализации системы обмена сообщениями: %w", err)
		}
		events = messaging.NewSyncEventPublisher(c.Messaging, cfg.Kafka.ProducerTopic)
		log.Info("Система обмена сообщениями инициализирована")
	}

	var uploaderOpts []ingest.Option
	if cfg.Archive.Enabled {
		archiver, err := archive.NewS3Archiver(ctx, archive.Options{
			Bucket:   cfg.Archive.Bucket,
			Region:   cfg.Archive.Region,
			Prefix:   cfg.Archive.Prefix,
			Endpoint: cfg.Archive.Endpoint,
		})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("ошибка инициализации архива: %w", err)
		}
		uploaderOpts = append(uploaderOpts, ingest.WithArchiver(archiver))
		log.Info("Архив выгрузок включен", interfaces.LogField{Key: "bucket", Value: cfg.Archive.Bucket})
	}

	factory := shopify.NewClientFactory(c.Storage, cfg.Shopify.APIVersion, nil)
	clients := func(ctx context.Context, shop string) (services.CatalogClient, error) {
		client, err := factory.ForShop(ctx, shop)
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	extractor := services.NewExtractor(services.ExtractorConfig{
		PageSize:          cfg.Catalog.PageSize,
		MaxPages:          cfg.Catalog.MaxPages,
		ThrottleThreshold: cfg.Catalog.ThrottleThreshold,
		MaxRetries:        cfg.Resilience.MaxRetries,
		RetryWaitTime:     cfg.Resilience.RetryWaitTime,
		MaxWaitTime:       cfg.Resilience.MaxWaitTime,
	}, log)

	uploader := ingest.NewUploader(cfg.Ingest.Endpoint, cfg.Ingest.Timeout, log, uploaderOpts...)

	c.Entitlement = services.NewEntitlementService(c.Storage, entitlementCache, cfg.Entitlement.CacheTTL, log)
	c.Credentials = services.NewCredentialService(c.Storage, log)
	c.Sync = services.NewSyncService(c.Entitlement, clients, extractor, c.Credentials, uploader, events, log)

	return c, nil
}

// Close закрывает соединения в обратном порядке
func (c *Container) Close() {
	if c.Messaging != nil {
		if err := c.Messaging.Close(); err != nil {
			c.logger.Error("Ошибка при закрытии Kafka", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			c.logger.Error("Ошибка при закрытии Redis", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}
	if c.Storage != nil {
		if err := c.Storage.Close(); err != nil {
			c.logger.Error("Ошибка при закрытии БД", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}
}
