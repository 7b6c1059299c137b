package handlers

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/athebyme/catalog-sync/internal/domain/models"
	"github.com/athebyme/catalog-sync/internal/domain/services"
	"github.com/athebyme/catalog-sync/pkg/auth"
	"github.com/athebyme/catalog-sync/pkg/interfaces"
)

// BillingPath страница выбора плана во встроенном приложении
const BillingPath = "/app/billing"

// SyncHandler обработчик запуска синхронизации
type SyncHandler struct {
	syncService services.SyncServiceInterface
	logger      interfaces.LoggerPort
}

// NewSyncHandler создает новый обработчик синхронизации
func NewSyncHandler(syncService services.SyncServiceInterface, logger interfaces.LoggerPort) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		logger:      logger,
	}
}

// SyncCatalog запускает синхронизацию каталога магазина из токена сессии.
// Ошибки конвейера возвращаются со статусом 200 и success=false,
// отсутствие подписки дает 402 с переходом на страницу биллинга
//
// @Summary  Синхронизация каталога
// @Tags     sync
// @Produce  json
// @Security SessionToken
// @Success  200 {object} models.SyncResult
// @Failure  402 {object} models.SyncResult
// @Router   /api/sync [post]
func (h *SyncHandler) SyncCatalog(w http.ResponseWriter, r *http.Request) {
	shop, ok := auth.ShopFromContext(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, errorResponse{
			Error:   "unauthorized",
			Code:    http.StatusUnauthorized,
			Message: "Магазин не определен",
		})
		return
	}

	result := h.syncService.Sync(r.Context(), shop)

	if result.ErrorKind == models.KindEntitlementRequired {
		w.Header().Set("Location", BillingPath)
		render.Status(r, http.StatusPaymentRequired)
		render.JSON(w, r, result)
		return
	}

	render.Status(r, http.StatusOK)
	if result.Success {
		render.JSON(w, r, syncSuccessResponse{
			Success:         true,
			Message:         result.Message,
			ShopDomain:      result.ShopDomain,
			ProductCount:    result.ProductCount,
			SkippedProducts: result.SkippedProducts,
			APIResult:       result.APIResult,
		})
		return
	}
	render.JSON(w, r, result)
}
