package interfaces

import (
	"context"
)

// AuthPort определяет интерфейс для проверки токенов сессии встроенного приложения
type AuthPort interface {
	// ValidateToken проверяет токен и возвращает домен магазина, выдавшего его
	ValidateToken(ctx context.Context, token string) (string, error)
}
