package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	postgres "github.com/athebyme/catalog-sync/internal/adapters/storage"
)

// ErrNoOfflineSession магазин не установил приложение или сессия удалена
var ErrNoOfflineSession = errors.New("offline session not found")

// ClientFactory создает клиентов Admin API по офлайн-токену магазина
type ClientFactory struct {
	sessions   postgres.SessionRepository
	apiVersion string
	httpClient *http.Client
}

func NewClientFactory(sessions postgres.SessionRepository, apiVersion string, httpClient *http.Client) *ClientFactory {
	return &ClientFactory{sessions: sessions, apiVersion: apiVersion, httpClient: httpClient}
}

// ForShop возвращает клиент, авторизованный офлайн-токеном магазина
func (f *ClientFactory) ForShop(ctx context.Context, shop string) (*Client, error) {
	token, err := f.sessions.FindOfflineAccessToken(ctx, shop)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, fmt.Errorf("%w for %s", ErrNoOfflineSession, shop)
	}

	var opts []Option
	if f.httpClient != nil {
		opts = append(opts, WithHTTPClient(f.httpClient))
	}

	return NewClient(shop, token, f.apiVersion, opts...), nil
}
