package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/athebyme/catalog-sync/pkg/interfaces"
)

// AuthMiddleware промежуточное ПО для проверки токенов сессии.
// Домен магазина из токена кладется в контекст под ключом tenant_id
func AuthMiddleware(auth interfaces.AuthPort, logger interfaces.LoggerPort) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header is required", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "Invalid authorization format", http.StatusUnauthorized)
				return
			}

			shop, err := auth.ValidateToken(r.Context(), parts[1])
			if err != nil {
				logger.WarnWithContext(r.Context(), "Недействительный токен сессии",
					interfaces.LogField{Key: "error", Value: err.Error()})
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), interfaces.ContextKeyTenantID, shop)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ShopFromContext возвращает домен магазина, установленный AuthMiddleware
func ShopFromContext(ctx context.Context) (string, bool) {
	shop, ok := ctx.Value(interfaces.ContextKeyTenantID).(string)
	return shop, ok && shop != ""
}
