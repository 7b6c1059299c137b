package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	postgres "github.com/athebyme/catalog-sync/internal/adapters/storage"
	"github.com/athebyme/catalog-sync/internal/domain/models"
	"github.com/athebyme/catalog-sync/pkg/interfaces"
)

// ErrEmptyAPIKey ключ API не передан
var ErrEmptyAPIKey = errors.New("API key is required")

// CredentialService управляет ключами API сервиса приема данных
type CredentialService struct {
	repo   postgres.CredentialRepository
	logger interfaces.LoggerPort
}

func NewCredentialService(repo postgres.CredentialRepository, logger interfaces.LoggerPort) *CredentialService {
	return &CredentialService{repo: repo, logger: logger}
}

// GetAPIKey возвращает CredentialNotFoundError, если ключ не сохранен
func (s *CredentialService) GetAPIKey(ctx context.Context, shop string) (*models.Credential, error) {
	cred, err := s.repo.FindAPIKey(ctx, shop)
	if err != nil {
		return nil, fmt.Errorf("failed to find API key: %w", err)
	}
	if cred == nil || cred.APIKey == "" {
		return nil, &models.CredentialNotFoundError{ShopDomain: shop}
	}

	return cred, nil
}

// SaveAPIKey сохраняет или заменяет ключ магазина
func (s *CredentialService) SaveAPIKey(ctx context.Context, shop, apiKey string) (*models.Credential, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrEmptyAPIKey
	}

	cred, err := s.repo.SaveAPIKey(ctx, shop, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to save API key: %w", err)
	}

	s.logger.InfoWithContext(ctx, "Ключ API сохранен",
		interfaces.LogField{Key: "shop", Value: shop})

	return cred, nil
}
