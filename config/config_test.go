package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("does-not-exist")
	require.NoError(t, err)

	assert.Equal(t, "catalog-sync", cfg.AppName)
	assert.Equal(t, 50, cfg.Catalog.PageSize)
	assert.Equal(t, 1000, cfg.Catalog.MaxPages)
	assert.Equal(t, 60*time.Second, cfg.Ingest.Timeout)
	assert.Equal(t, "2025-01", cfg.Shopify.APIVersion)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("SHOPIFY_API_KEY", "key")
	t.Setenv("CATALOG_MAX_PAGES", "7")
	t.Setenv("INGEST_ENDPOINT", "http://localhost:9999/ingest")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load("does-not-exist")
	require.NoError(t, err)

	assert.Equal(t, "key", cfg.Shopify.SessionConfig().APIKey)
	assert.Equal(t, 7, cfg.Catalog.MaxPages)
	assert.Equal(t, "http://localhost:9999/ingest", cfg.Ingest.Endpoint)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("CATALOG_PAGE_SIZE", "500")

	_, err := Load("does-not-exist")
	assert.Error(t, err)
}
