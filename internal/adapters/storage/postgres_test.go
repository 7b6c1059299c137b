package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athebyme/catalog-sync/internal/domain/models"
)

// Интеграционные тесты запускаются только при заданном POSTGRES_TEST_DSN
func newTestStorage(t *testing.T) *ShopStorage {
	t.Helper()

	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := NewPostgresStorage(ctx, dsn, 2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.EnsureSchema(ctx))
	_, err = s.pool.Exec(ctx, `TRUNCATE api_keys, billing_subscriptions, shopify_sessions`)
	require.NoError(t, err)

	return s
}

func TestShopStorage_APIKeys(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	cred, err := s.FindAPIKey(ctx, "demo.myshopify.com")
	require.NoError(t, err)
	assert.Nil(t, cred)

	_, err = s.SaveAPIKey(ctx, "demo.myshopify.com", "k1")
	require.NoError(t, err)
	saved, err := s.SaveAPIKey(ctx, "demo.myshopify.com", "k2")
	require.NoError(t, err)
	assert.Equal(t, "k2", saved.APIKey)

	cred, err = s.FindAPIKey(ctx, "demo.myshopify.com")
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, "k2", cred.APIKey)
}

func TestShopStorage_Billing(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	sub, err := s.GetBillingSubscription(ctx, "demo.myshopify.com")
	require.NoError(t, err)
	assert.Nil(t, sub)

	require.NoError(t, s.UpsertBillingSubscription(ctx, &models.BillingSubscription{
		Shop: "demo.myshopify.com", SubscriptionID: "gid://shopify/AppSubscription/1",
		PlanName: "Pro", Status: "PENDING",
	}))
	require.NoError(t, s.UpsertBillingSubscription(ctx, &models.BillingSubscription{
		Shop: "demo.myshopify.com", SubscriptionID: "gid://shopify/AppSubscription/1",
		PlanName: "Pro", Status: "ACTIVE",
	}))

	sub, err = s.GetBillingSubscription(ctx, "demo.myshopify.com")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.True(t, sub.IsActive())
}

func TestShopStorage_OfflineToken(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	token, err := s.FindOfflineAccessToken(ctx, "demo.myshopify.com")
	require.NoError(t, err)
	assert.Empty(t, token)

	_, err = s.pool.Exec(ctx,
		`INSERT INTO shopify_sessions (id, shop, access_token, is_online) VALUES ('offline_demo.myshopify.com', 'demo.myshopify.com', 'shpat_x', false)`)
	require.NoError(t, err)

	token, err = s.FindOfflineAccessToken(ctx, "demo.myshopify.com")
	require.NoError(t, err)
	assert.Equal(t, "shpat_x", token)
}
