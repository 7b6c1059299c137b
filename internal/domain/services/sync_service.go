package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/athebyme/catalog-sync/internal/adapters/ingest"
	"github.com/athebyme/catalog-sync/internal/domain/models"
	"github.com/athebyme/catalog-sync/internal/metrics"
	"github.com/athebyme/catalog-sync/pkg/interfaces"
)

// MessageNetworkError сообщение при отсутствии ответа от сервиса приема
const MessageNetworkError = "Network error: Unable to reach the API server"

const eventPublishTimeout = 5 * time.Second

// EntitlementChecker проверяет доступ магазина к синхронизации
type EntitlementChecker interface {
	CheckActive(ctx context.Context, shop string) (bool, error)
}

// CredentialFinder возвращает CredentialNotFoundError при отсутствии ключа
type CredentialFinder interface {
	GetAPIKey(ctx context.Context, shop string) (*models.Credential, error)
}

// CatalogUploader отправляет строки каталога
type CatalogUploader interface {
	Upload(ctx context.Context, rows []models.FlatRow, shopDomain, apiKey string) (json.RawMessage, error)
}

// SyncEventPublisher публикует итог синхронизации
type SyncEventPublisher interface {
	PublishSyncResult(ctx context.Context, result *models.SyncResult, duration time.Duration) error
}

// CatalogClientFactory создает клиент каталога для магазина
type CatalogClientFactory func(ctx context.Context, shop string) (CatalogClient, error)

// SyncServiceInterface запуск синхронизации каталога
type SyncServiceInterface interface {
	Sync(ctx context.Context, shop string) *models.SyncResult
}

// SyncService выполняет конвейер: доступ, выгрузка каталога, разворот, ключ, отправка
type SyncService struct {
	entitlement EntitlementChecker
	clients     CatalogClientFactory
	extractor   *Extractor
	credentials CredentialFinder
	uploader    CatalogUploader
	events      SyncEventPublisher
	logger      interfaces.LoggerPort
}

// NewSyncService events может быть nil
func NewSyncService(
	entitlement EntitlementChecker,
	clients CatalogClientFactory,
	extractor *Extractor,
	credentials CredentialFinder,
	uploader CatalogUploader,
	events SyncEventPublisher,
	logger interfaces.LoggerPort,
) *SyncService {
	return &SyncService{
		entitlement: entitlement,
		clients:     clients,
		extractor:   extractor,
		credentials: credentials,
		uploader:    uploader,
		events:      events,
		logger:      logger,
	}
}

// Sync никогда не возвращает ошибку: любой исход описан в SyncResult
func (s *SyncService) Sync(ctx context.Context, shop string) *models.SyncResult {
	start := time.Now()

	result := s.run(ctx, shop)
	duration := time.Since(start)

	outcome := "success"
	if !result.Success {
		outcome = "failure"
		metrics.SyncFailures.WithLabelValues(string(result.ErrorKind)).Inc()
		s.logger.ErrorWithContext(ctx, "Синхронизация каталога завершилась ошибкой",
			interfaces.LogField{Key: "shop", Value: shop},
			interfaces.LogField{Key: "kind", Value: string(result.ErrorKind)},
			interfaces.LogField{Key: "error", Value: errorText(result.Err)},
			interfaces.LogField{Key: "duration", Value: duration.String()},
		)
	} else {
		metrics.RowsUploaded.Add(float64(result.ProductCount))
		s.logger.InfoWithContext(ctx, "Синхронизация каталога завершена",
			interfaces.LogField{Key: "shop", Value: shop},
			interfaces.LogField{Key: "rows", Value: result.ProductCount},
			interfaces.LogField{Key: "skipped_products", Value: result.SkippedProducts},
			interfaces.LogField{Key: "duration", Value: duration.String()},
		)
	}
	metrics.SyncDuration.WithLabelValues(outcome).Observe(duration.Seconds())

	s.publish(ctx, result, duration)

	return result
}

func (s *SyncService) run(ctx context.Context, shop string) *models.SyncResult {
	active, err := s.entitlement.CheckActive(ctx, shop)
	if err != nil {
		return failure(shop, &models.UnknownSyncError{Err: err})
	}
	if !active {
		return failure(shop, &models.EntitlementRequiredError{ShopDomain: shop})
	}

	client, err := s.clients(ctx, shop)
	if err != nil {
		return failure(shop, &models.UnknownSyncError{Err: fmt.Errorf("failed to create catalog client: %w", err)})
	}

	products, err := s.extractor.ExtractAll(ctx, client)
	if err != nil {
		return failure(shop, err)
	}

	rows, err := Flatten(products)
	if err != nil {
		return failure(shop, err)
	}
	skipped := ZeroVariantProducts(products)

	cred, err := s.credentials.GetAPIKey(ctx, shop)
	if err != nil {
		return failure(shop, err)
	}

	ack, err := s.uploader.Upload(ctx, rows, shop, cred.APIKey)
	if err != nil {
		return failure(shop, err)
	}

	return &models.SyncResult{
		Success:         true,
		Message:         fmt.Sprintf("Successfully synced %d products from %s", len(rows), shop),
		ShopDomain:      shop,
		ProductCount:    len(rows),
		SkippedProducts: skipped,
		APIResult:       ack,
	}
}

// failure строит результат с сообщением, зависящим от класса ошибки
func failure(shop string, err error) *models.SyncResult {
	result := &models.SyncResult{
		Success:    false,
		ShopDomain: shop,
		ErrorKind:  models.Classify(err),
		Err:        err,
	}

	var (
		rejection *models.RemoteRejectionError
		transport *models.TransportError
	)
	switch {
	case errors.As(err, &rejection):
		result.Message = rejection.Error()
		result.Details = ingest.AsRawJSON(rejection.Body)
	case errors.As(err, &transport) && transport.Stage == models.StageUpload:
		result.Message = MessageNetworkError
	default:
		result.Message = "Sync failed: " + err.Error()
	}

	return result
}

func (s *SyncService) publish(ctx context.Context, result *models.SyncResult, duration time.Duration) {
	if s.events == nil {
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventPublishTimeout)
	defer cancel()

	if err := s.events.PublishSyncResult(pubCtx, result, duration); err != nil {
		s.logger.WarnWithContext(ctx, "Не удалось опубликовать событие синхронизации",
			interfaces.LogField{Key: "shop", Value: result.ShopDomain},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
