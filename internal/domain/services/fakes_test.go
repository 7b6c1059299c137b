package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/athebyme/catalog-sync/internal/domain/models"
)

func strPtr(s string) *string { return &s }

// product строит товар с вариантами по списку цен
func product(id string, prices ...string) models.RawProduct {
	p := models.RawProduct{
		ID:          id,
		Title:       "Product " + id,
		Handle:      "product-" + id,
		Description: "Description " + id,
	}
	for i, price := range prices {
		p.Variants.Edges = append(p.Variants.Edges, models.Edge[models.Variant]{
			Node: models.Variant{
				ID:               fmt.Sprintf("%s-v%d", id, i+1),
				Title:            fmt.Sprintf("Variant %d", i+1),
				Price:            price,
				AvailableForSale: true,
			},
		})
	}
	return p
}

type fetchResponse struct {
	page *models.CatalogPage
	err  error
}

type fakeCatalog struct {
	mu        sync.Mutex
	responses []fetchResponse
	afters    []*string
	calls     int
}

func (f *fakeCatalog) FetchProducts(ctx context.Context, first int, after *string) (*models.CatalogPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.afters = append(f.afters, after)
	i := f.calls
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	f.calls++

	r := f.responses[i]
	return r.page, r.err
}

func page(hasNext bool, cursor string, products ...models.RawProduct) fetchResponse {
	p := &models.CatalogPage{Products: products, HasNextPage: hasNext}
	if cursor != "" {
		p.EndCursor = strPtr(cursor)
	}
	return fetchResponse{page: p}
}

type fakeBilling struct {
	sub      *models.BillingSubscription
	err      error
	gets     int
	upserted *models.BillingSubscription
}

func (f *fakeBilling) GetBillingSubscription(ctx context.Context, shop string) (*models.BillingSubscription, error) {
	f.gets++
	return f.sub, f.err
}

func (f *fakeBilling) UpsertBillingSubscription(ctx context.Context, sub *models.BillingSubscription) error {
	if f.err != nil {
		return f.err
	}
	f.upserted = sub
	f.sub = sub
	return nil
}

type fakeCredentials struct {
	keys map[string]string
	err  error
}

func (f *fakeCredentials) FindAPIKey(ctx context.Context, shop string) (*models.Credential, error) {
	if f.err != nil {
		return nil, f.err
	}
	key, ok := f.keys[shop]
	if !ok {
		return nil, nil
	}
	return &models.Credential{ShopDomain: shop, APIKey: key}, nil
}

func (f *fakeCredentials) SaveAPIKey(ctx context.Context, shop, apiKey string) (*models.Credential, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.keys == nil {
		f.keys = map[string]string{}
	}
	f.keys[shop] = apiKey
	return &models.Credential{ShopDomain: shop, APIKey: apiKey, SavedAt: time.Now()}, nil
}

type staticEntitlement struct {
	active bool
	err    error
}

func (s staticEntitlement) CheckActive(ctx context.Context, shop string) (bool, error) {
	return s.active, s.err
}

type fakeUploader struct {
	rows   []models.FlatRow
	apiKey string
	calls  int
	ack    json.RawMessage
	err    error
}

func (f *fakeUploader) Upload(ctx context.Context, rows []models.FlatRow, shop, apiKey string) (json.RawMessage, error) {
	f.calls++
	f.rows = rows
	f.apiKey = apiKey
	return f.ack, f.err
}

type recordingPublisher struct {
	results []*models.SyncResult
	err     error
}

func (r *recordingPublisher) PublishSyncResult(ctx context.Context, result *models.SyncResult, duration time.Duration) error {
	r.results = append(r.results, result)
	return r.err
}
