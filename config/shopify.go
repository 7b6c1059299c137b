package config

import (
	"github.com/athebyme/catalog-sync/pkg/auth"
)

// ShopifyConfig учетные данные приложения в Shopify
type ShopifyConfig struct {
	APIKey     string
	APISecret  string
	APIVersion string
}

// SessionConfig возвращает конфигурацию для auth.SessionVerifier
func (s ShopifyConfig) SessionConfig() auth.SessionConfig {
	return auth.SessionConfig{
		APIKey:    s.APIKey,
		APISecret: s.APISecret,
	}
}
