package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/athebyme/catalog-sync/internal/domain/models"
	"github.com/athebyme/catalog-sync/internal/domain/services"
	"github.com/athebyme/catalog-sync/internal/utils"
	"github.com/athebyme/catalog-sync/pkg/auth"
	"github.com/athebyme/catalog-sync/pkg/interfaces"
)

// CredentialManager чтение и сохранение ключа API магазина
type CredentialManager interface {
	GetAPIKey(ctx context.Context, shop string) (*models.Credential, error)
	SaveAPIKey(ctx context.Context, shop, apiKey string) (*models.Credential, error)
}

// APIKeyHandler обработчик ключей API сервиса приема данных
type APIKeyHandler struct {
	credentials CredentialManager
	logger      interfaces.LoggerPort
}

// NewAPIKeyHandler создает новый обработчик ключей
func NewAPIKeyHandler(credentials CredentialManager, logger interfaces.LoggerPort) *APIKeyHandler {
	return &APIKeyHandler{
		credentials: credentials,
		logger:      logger,
	}
}

type apiKeyResponse struct {
	APIKey string `json:"apiKey"`
}

type saveAPIKeyRequest struct {
	APIKey string `json:"apiKey"`
}

// GetAPIKey возвращает ключ по домену магазина
//
// @Summary Ключ API магазина
// @Tags    apikey
// @Produce json
// @Param   shop_domain query string true "Домен магазина"
// @Success 200 {object} apiKeyResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router  /api/apikey [get]
func (h *APIKeyHandler) GetAPIKey(w http.ResponseWriter, r *http.Request) {
	shop := r.URL.Query().Get("shop_domain")
	if shop == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "shop_domain parameter is required"})
		return
	}

	if normalized, err := utils.NormalizeShopDomain(shop); err == nil {
		shop = normalized
	}

	cred, err := h.credentials.GetAPIKey(r.Context(), shop)
	if err != nil {
		var notFound *models.CredentialNotFoundError
		if errors.As(err, &notFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, errorResponse{Error: "API key not found for this shop domain"})
			return
		}

		h.logger.ErrorWithContext(r.Context(), "Ошибка получения ключа API",
			interfaces.LogField{Key: "shop", Value: shop},
			interfaces.LogField{Key: "error", Value: err.Error()})
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{Error: "Internal server error"})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, apiKeyResponse{APIKey: cred.APIKey})
}

// SaveAPIKey сохраняет ключ для магазина из токена сессии
//
// @Summary  Сохранение ключа API
// @Tags     apikey
// @Accept   json
// @Produce  json
// @Security SessionToken
// @Param    body body saveAPIKeyRequest true "Ключ"
// @Success  200 {object} response
// @Failure  400 {object} errorResponse
// @Failure  500 {object} errorResponse
// @Router   /api/apikey [put]
func (h *APIKeyHandler) SaveAPIKey(w http.ResponseWriter, r *http.Request) {
	shop, ok := auth.ShopFromContext(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, errorResponse{Error: "unauthorized", Code: http.StatusUnauthorized})
		return
	}

	var req saveAPIKeyRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{
			Error:   "bad_request",
			Code:    http.StatusBadRequest,
			Message: "Некорректное тело запроса",
		})
		return
	}

	if _, err := h.credentials.SaveAPIKey(r.Context(), shop, req.APIKey); err != nil {
		if errors.Is(err, services.ErrEmptyAPIKey) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, errorResponse{Error: err.Error(), Code: http.StatusBadRequest})
			return
		}

		h.logger.ErrorWithContext(r.Context(), "Ошибка сохранения ключа API",
			interfaces.LogField{Key: "error", Value: err.Error()})
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{Error: "Internal server error", Code: http.StatusInternalServerError})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{Success: true, Message: "API key saved successfully"})
}
