package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/athebyme/catalog-sync/internal/domain/models"
	"github.com/athebyme/catalog-sync/pkg/interfaces"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CredentialRepository хранит ключи API сервиса приема данных
type CredentialRepository interface {
	// FindAPIKey возвращает nil, nil если ключ для магазина не сохранен
	FindAPIKey(ctx context.Context, shopDomain string) (*models.Credential, error)
	SaveAPIKey(ctx context.Context, shopDomain, apiKey string) (*models.Credential, error)
}

// BillingRepository хранит зеркало подписок магазинов
type BillingRepository interface {
	// GetBillingSubscription возвращает nil, nil если подписки нет
	GetBillingSubscription(ctx context.Context, shop string) (*models.BillingSubscription, error)
	UpsertBillingSubscription(ctx context.Context, sub *models.BillingSubscription) error
}

// SessionRepository читает офлайн-токены доступа к Admin API
type SessionRepository interface {
	// FindOfflineAccessToken возвращает пустую строку если сессии нет
	FindOfflineAccessToken(ctx context.Context, shop string) (string, error)
}

// ShopStoragePort объединяет все репозитории хранилища
type ShopStoragePort interface {
	CredentialRepository
	BillingRepository
	SessionRepository
	interfaces.StoragePort
}

var _ ShopStoragePort = (*ShopStorage)(nil)

// Schema описывает таблицы, которые создает приложение-оболочка
const Schema = `
CREATE TABLE IF NOT EXISTS api_keys (
	id          BIGSERIAL PRIMARY KEY,
	shop_domain TEXT NOT NULL UNIQUE,
	api_key     TEXT NOT NULL,
	saved_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS billing_subscriptions (
	shop            TEXT PRIMARY KEY,
	subscription_id TEXT NOT NULL,
	plan_name       TEXT NOT NULL,
	status          TEXT NOT NULL,
	trial_starts_at TIMESTAMPTZ,
	trial_ends_at   TIMESTAMPTZ,
	billing_on      TIMESTAMPTZ,
	test            BOOLEAN NOT NULL DEFAULT false,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS shopify_sessions (
	id           TEXT PRIMARY KEY,
	shop         TEXT NOT NULL,
	access_token TEXT NOT NULL,
	is_online    BOOLEAN NOT NULL DEFAULT false,
	scope        TEXT
);
`

// ShopStorage реализация ShopStoragePort для PostgreSQL
type ShopStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage создает новый экземпляр ShopStorage
func NewPostgresStorage(ctx context.Context, connectionString string, poolSize int) (*ShopStorage, error) {
	cfg, err := pgxpool.ParseConfig(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}
	if poolSize > 0 {
		cfg.MaxConns = int32(poolSize)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &ShopStorage{pool: pool}, nil
}

func NewPostgresStorageWithPool(ctx context.Context, pool *pgxpool.Pool) (*ShopStorage, error) {
	if pool == nil {
		return nil, errors.New("pool is nil")
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return &ShopStorage{pool: pool}, nil
}

// Ping проверяет соединение с БД
func (r *ShopStorage) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close закрывает соединение с БД
func (r *ShopStorage) Close() error {
	r.pool.Close()
	return nil
}

// EnsureSchema создает таблицы, если их нет
func (r *ShopStorage) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// FindAPIKey получает ключ API по домену магазина
func (r *ShopStorage) FindAPIKey(ctx context.Context, shopDomain string) (*models.Credential, error) {
	query := `
		SELECT shop_domain, api_key, saved_at
		FROM api_keys
		WHERE shop_domain = $1
	`

	var cred models.Credential
	err := r.pool.QueryRow(ctx, query, shopDomain).Scan(&cred.ShopDomain, &cred.APIKey, &cred.SavedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}

	return &cred, nil
}

// SaveAPIKey сохраняет или заменяет ключ API магазина
func (r *ShopStorage) SaveAPIKey(ctx context.Context, shopDomain, apiKey string) (*models.Credential, error) {
	query := `
		INSERT INTO api_keys (shop_domain, api_key, saved_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (shop_domain)
		DO UPDATE SET
			api_key = EXCLUDED.api_key,
			saved_at = EXCLUDED.saved_at
		RETURNING shop_domain, api_key, saved_at
	`

	var cred models.Credential
	err := r.pool.QueryRow(ctx, query, shopDomain, apiKey, time.Now().UTC()).
		Scan(&cred.ShopDomain, &cred.APIKey, &cred.SavedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save api key: %w", err)
	}

	return &cred, nil
}

// GetBillingSubscription получает подписку магазина
func (r *ShopStorage) GetBillingSubscription(ctx context.Context, shop string) (*models.BillingSubscription, error) {
	query := `
		SELECT shop, subscription_id, plan_name, status, trial_starts_at, trial_ends_at,
		       billing_on, test, created_at, updated_at
		FROM billing_subscriptions
		WHERE shop = $1
	`

	var sub models.BillingSubscription
	err := r.pool.QueryRow(ctx, query, shop).Scan(
		&sub.Shop, &sub.SubscriptionID, &sub.PlanName, &sub.Status,
		&sub.TrialStartsAt, &sub.TrialEndsAt, &sub.BillingOn, &sub.Test,
		&sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get billing subscription: %w", err)
	}

	return &sub, nil
}

// UpsertBillingSubscription сохраняет подписку магазина
func (r *ShopStorage) UpsertBillingSubscription(ctx context.Context, sub *models.BillingSubscription) error {
	query := `
		INSERT INTO billing_subscriptions (shop, subscription_id, plan_name, status,
			trial_starts_at, trial_ends_at, billing_on, test, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (shop)
		DO UPDATE SET
			subscription_id = EXCLUDED.subscription_id,
			plan_name = EXCLUDED.plan_name,
			status = EXCLUDED.status,
			trial_starts_at = EXCLUDED.trial_starts_at,
			trial_ends_at = EXCLUDED.trial_ends_at,
			billing_on = EXCLUDED.billing_on,
			test = EXCLUDED.test,
			updated_at = EXCLUDED.updated_at
	`

	now := time.Now().UTC()
	tag, err := r.pool.Exec(ctx, query,
		sub.Shop, sub.SubscriptionID, sub.PlanName, sub.Status,
		sub.TrialStartsAt, sub.TrialEndsAt, sub.BillingOn, sub.Test, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert billing subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to upsert billing subscription: no rows affected")
	}

	sub.UpdatedAt = now
	return nil
}

// FindOfflineAccessToken получает офлайн-токен магазина
func (r *ShopStorage) FindOfflineAccessToken(ctx context.Context, shop string) (string, error) {
	query := `
		SELECT access_token
		FROM shopify_sessions
		WHERE shop = $1 AND is_online = false
		LIMIT 1
	`

	var token string
	if err := r.pool.QueryRow(ctx, query, shop).Scan(&token); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get offline session: %w", err)
	}

	return token, nil
}
