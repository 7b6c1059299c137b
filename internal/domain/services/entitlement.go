package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	postgres "github.com/athebyme/catalog-sync/internal/adapters/storage"
	"github.com/athebyme/catalog-sync/internal/domain/models"
	"github.com/athebyme/catalog-sync/pkg/interfaces"
)

// Темы биллинговых вебхуков
const (
	TopicAppSubscriptionsUpdate    = "APP_SUBSCRIPTIONS_UPDATE"
	TopicAppPurchasesOneTimeUpdate = "APP_PURCHASES_ONE_TIME_UPDATE"
)

const entitlementCacheKey = "entitlement:active"

// ErrInvalidWebhookPayload тело вебхука не удалось разобрать
var ErrInvalidWebhookPayload = errors.New("invalid webhook payload")

// EntitlementService определяет, есть ли у магазина доступ к синхронизации
type EntitlementService struct {
	billing  postgres.BillingRepository
	cache    interfaces.CachePort
	cacheTTL time.Duration
	logger   interfaces.LoggerPort
	now      func() time.Time
}

// NewEntitlementService cache может быть nil, тогда каждое обращение идет в хранилище
func NewEntitlementService(billing postgres.BillingRepository, cache interfaces.CachePort, cacheTTL time.Duration, logger interfaces.LoggerPort) *EntitlementService {
	return &EntitlementService{
		billing:  billing,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// CheckActive доступ есть, если подписка существует и она активна либо план бесплатный
func (s *EntitlementService) CheckActive(ctx context.Context, shop string) (bool, error) {
	if s.cache != nil {
		cached, err := s.cache.GetWithTenant(ctx, entitlementCacheKey, shop)
		switch {
		case err == nil:
			return string(cached) == "1", nil
		case !errors.Is(err, interfaces.ErrCacheMiss):
			s.logger.WarnWithContext(ctx, "Ошибка чтения кэша доступа",
				interfaces.LogField{Key: "shop", Value: shop},
				interfaces.LogField{Key: "error", Value: err.Error()},
			)
		}
	}

	sub, err := s.billing.GetBillingSubscription(ctx, shop)
	if err != nil {
		return false, fmt.Errorf("failed to get billing subscription: %w", err)
	}

	active := sub.IsActive()

	if s.cache != nil {
		value := []byte("0")
		if active {
			value = []byte("1")
		}
		if err := s.cache.SetWithTenant(ctx, entitlementCacheKey, value, shop, s.cacheTTL); err != nil {
			s.logger.WarnWithContext(ctx, "Ошибка записи кэша доступа",
				interfaces.LogField{Key: "shop", Value: shop},
				interfaces.LogField{Key: "error", Value: err.Error()},
			)
		}
	}

	return active, nil
}

// RecordSubscription сохраняет подписку и сбрасывает кэшированное решение
func (s *EntitlementService) RecordSubscription(ctx context.Context, sub *models.BillingSubscription) error {
	if sub.PlanName == "" || sub.Status == "" {
		if err := s.fillMissing(ctx, sub); err != nil {
			return err
		}
	}

	now := s.now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now

	if err := s.billing.UpsertBillingSubscription(ctx, sub); err != nil {
		return fmt.Errorf("failed to save billing subscription: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.DeleteWithTenant(ctx, entitlementCacheKey, sub.Shop); err != nil {
			s.logger.WarnWithContext(ctx, "Не удалось сбросить кэш доступа",
				interfaces.LogField{Key: "shop", Value: sub.Shop},
				interfaces.LogField{Key: "error", Value: err.Error()},
			)
		}
	}

	return nil
}

// fillMissing дополняет пустые план и статус: из сохраненной подписки,
// а для нового магазина значениями бесплатного плана
func (s *EntitlementService) fillMissing(ctx context.Context, sub *models.BillingSubscription) error {
	existing, err := s.billing.GetBillingSubscription(ctx, sub.Shop)
	if err != nil {
		return fmt.Errorf("failed to load billing subscription: %w", err)
	}

	if existing != nil {
		if sub.PlanName == "" {
			sub.PlanName = existing.PlanName
		}
		if sub.Status == "" {
			sub.Status = existing.Status
		}
		if sub.CreatedAt.IsZero() {
			sub.CreatedAt = existing.CreatedAt
		}
		return nil
	}

	if sub.PlanName == "" {
		sub.PlanName = models.PlanFree
	}
	if sub.Status == "" {
		sub.Status = models.SubscriptionStatusActive
	}
	return nil
}

type webhookSubscription struct {
	ID            json.RawMessage `json:"id"`
	GraphQLID     string          `json:"admin_graphql_api_id"`
	Name          string          `json:"name"`
	Status        string          `json:"status"`
	TrialStartsAt *time.Time      `json:"trial_starts_at"`
	TrialEndsAt   *time.Time      `json:"trial_ends_at"`
	BillingOn     *time.Time      `json:"billing_on"`
	Test          bool            `json:"test"`
}

type billingWebhookPayload struct {
	AppSubscription    *webhookSubscription `json:"app_subscription"`
	AppPurchaseOneTime *webhookSubscription `json:"app_purchase_one_time"`
}

// NormalizeTopic приводит заголовок темы к виду APP_SUBSCRIPTIONS_UPDATE
func NormalizeTopic(topic string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(topic), "/", "_"))
}

// ApplyWebhook обрабатывает биллинговый вебхук. Возвращает false для тем, которые не обрабатываются
func (s *EntitlementService) ApplyWebhook(ctx context.Context, topic, shop string, body []byte) (bool, error) {
	var payload billingWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidWebhookPayload, err)
	}

	var (
		src      *webhookSubscription
		withDate bool
	)
	switch NormalizeTopic(topic) {
	case TopicAppSubscriptionsUpdate:
		src, withDate = payload.AppSubscription, true
	case TopicAppPurchasesOneTimeUpdate:
		src = payload.AppPurchaseOneTime
	default:
		s.logger.InfoWithContext(ctx, "Необработанная тема биллингового вебхука",
			interfaces.LogField{Key: "topic", Value: topic},
			interfaces.LogField{Key: "shop", Value: shop},
		)
		return false, nil
	}

	if src == nil {
		return false, fmt.Errorf("%w: %s has no subscription object", ErrInvalidWebhookPayload, topic)
	}

	sub := &models.BillingSubscription{
		Shop:           shop,
		SubscriptionID: src.subscriptionID(),
		PlanName:       src.Name,
		Status:         src.Status,
		Test:           src.Test,
	}
	if withDate {
		sub.TrialStartsAt = src.TrialStartsAt
		sub.TrialEndsAt = src.TrialEndsAt
		sub.BillingOn = src.BillingOn
	}

	if err := s.RecordSubscription(ctx, sub); err != nil {
		return true, err
	}

	s.logger.InfoWithContext(ctx, "Подписка обновлена",
		interfaces.LogField{Key: "shop", Value: shop},
		interfaces.LogField{Key: "plan", Value: sub.PlanName},
		interfaces.LogField{Key: "status", Value: sub.Status},
	)

	return true, nil
}

// subscriptionID id приходит числом или строкой
func (w *webhookSubscription) subscriptionID() string {
	raw := bytes.TrimSpace(w.ID)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return string(raw)
	}
	return w.GraphQLID
}
