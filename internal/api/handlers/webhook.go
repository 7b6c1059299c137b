package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/athebyme/catalog-sync/internal/domain/services"
	"github.com/athebyme/catalog-sync/pkg/auth"
	"github.com/athebyme/catalog-sync/pkg/interfaces"
)

// Заголовки вебхуков Shopify
const (
	HeaderShopDomain = "X-Shopify-Shop-Domain"
	HeaderTopic      = "X-Shopify-Topic"

	maxWebhookBody = 1 << 20
)

// BillingWebhookApplier применяет биллинговые вебхуки
type BillingWebhookApplier interface {
	ApplyWebhook(ctx context.Context, topic, shop string, body []byte) (bool, error)
}

// WebhookHandler обработчик биллинговых вебхуков
type WebhookHandler struct {
	billing BillingWebhookApplier
	secret  string
	logger  interfaces.LoggerPort
}

// NewWebhookHandler secret - секрет приложения, которым подписаны вебхуки
func NewWebhookHandler(billing BillingWebhookApplier, secret string, logger interfaces.LoggerPort) *WebhookHandler {
	return &WebhookHandler{
		billing: billing,
		secret:  secret,
		logger:  logger,
	}
}

// BillingWebhook обновляет подписку магазина
//
// @Summary Биллинговый вебхук
// @Tags    webhooks
// @Accept  json
// @Success 200
// @Failure 401
// @Failure 500
// @Router  /webhooks/billing [post]
func (h *WebhookHandler) BillingWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	if !auth.VerifyWebhook(body, r.Header.Get(auth.HeaderHmac), h.secret) {
		h.logger.WarnWithContext(r.Context(), "Неверная подпись вебхука",
			interfaces.LogField{Key: "shop", Value: r.Header.Get(HeaderShopDomain)})
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	shop := r.Header.Get(HeaderShopDomain)
	if shop == "" {
		w.WriteHeader(http.StatusOK)
		return
	}
	topic := r.Header.Get(HeaderTopic)

	if _, err := h.billing.ApplyWebhook(r.Context(), topic, shop, body); err != nil {
		if errors.Is(err, services.ErrInvalidWebhookPayload) {
			h.logger.WarnWithContext(r.Context(), "Некорректный биллинговый вебхук",
				interfaces.LogField{Key: "shop", Value: shop},
				interfaces.LogField{Key: "topic", Value: topic},
				interfaces.LogField{Key: "error", Value: err.Error()})
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}

		h.logger.ErrorWithContext(r.Context(), "Ошибка обработки биллингового вебхука",
			interfaces.LogField{Key: "shop", Value: shop},
			interfaces.LogField{Key: "topic", Value: topic},
			interfaces.LogField{Key: "error", Value: err.Error()})
		http.Error(w, "Webhook processing failed", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
