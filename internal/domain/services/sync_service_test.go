package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athebyme/catalog-sync/internal/adapters/ingest"
	"github.com/athebyme/catalog-sync/internal/adapters/logger"
	"github.com/athebyme/catalog-sync/internal/domain/models"
	"github.com/athebyme/catalog-sync/pkg/jsonl"
)

type syncFixture struct {
	catalog     *fakeCatalog
	clientCalls int
	entitlement staticEntitlement
	credentials *fakeCredentials
	uploader    *fakeUploader
	events      *recordingPublisher
}

func newSyncFixture() *syncFixture {
	return &syncFixture{
		catalog: &fakeCatalog{responses: []fetchResponse{
			page(false, "", product("1", "19.99", "20.00"), product("2")),
		}},
		entitlement: staticEntitlement{active: true},
		credentials: &fakeCredentials{keys: map[string]string{testShop: "ingest-key"}},
		uploader:    &fakeUploader{ack: json.RawMessage(`{"ok":true}`)},
		events:      &recordingPublisher{},
	}
}

func (f *syncFixture) service(uploader CatalogUploader) *SyncService {
	if uploader == nil {
		uploader = f.uploader
	}
	factory := func(ctx context.Context, shop string) (CatalogClient, error) {
		f.clientCalls++
		return f.catalog, nil
	}
	return NewSyncService(
		f.entitlement,
		factory,
		testExtractor(10),
		NewCredentialService(f.credentials, logger.NewNop()),
		uploader,
		f.events,
		logger.NewNop(),
	)
}

func TestSync_Success(t *testing.T) {
	f := newSyncFixture()

	result := f.service(nil).Sync(context.Background(), testShop)

	require.True(t, result.Success, result.Message)
	assert.Equal(t, "Successfully synced 2 products from demo.myshopify.com", result.Message)
	assert.Equal(t, 2, result.ProductCount)
	assert.Equal(t, 1, result.SkippedProducts)
	assert.Equal(t, testShop, result.ShopDomain)
	assert.JSONEq(t, `{"ok":true}`, string(result.APIResult))
	assert.Empty(t, result.ErrorKind)

	assert.Equal(t, "ingest-key", f.uploader.apiKey)
	assert.Len(t, f.uploader.rows, 2)

	require.Len(t, f.events.results, 1)
	assert.True(t, f.events.results[0].Success)
}

func TestSync_EntitlementRequired_NoNetworkCalls(t *testing.T) {
	f := newSyncFixture()
	f.entitlement = staticEntitlement{active: false}

	result := f.service(nil).Sync(context.Background(), testShop)

	assert.False(t, result.Success)
	assert.Equal(t, models.KindEntitlementRequired, result.ErrorKind)
	assert.Equal(t, 0, f.clientCalls)
	assert.Equal(t, 0, f.catalog.calls)
	assert.Equal(t, 0, f.uploader.calls)

	var ee *models.EntitlementRequiredError
	assert.ErrorAs(t, result.Err, &ee)
}

func TestSync_EntitlementStoreError(t *testing.T) {
	f := newSyncFixture()
	f.entitlement = staticEntitlement{err: errors.New("db down")}

	result := f.service(nil).Sync(context.Background(), testShop)

	assert.False(t, result.Success)
	assert.Equal(t, models.KindUnknown, result.ErrorKind)
	assert.Equal(t, "Sync failed: db down", result.Message)
	assert.Equal(t, 0, f.catalog.calls)
}

func TestSync_CredentialNotFound(t *testing.T) {
	f := newSyncFixture()
	f.credentials.keys = nil

	result := f.service(nil).Sync(context.Background(), testShop)

	assert.False(t, result.Success)
	assert.Equal(t, models.KindCredentialNotFound, result.ErrorKind)
	assert.Equal(t, "Sync failed: API key not found for shop demo.myshopify.com", result.Message)
	assert.Equal(t, 0, f.uploader.calls)
}

func TestSync_GraphQLError(t *testing.T) {
	f := newSyncFixture()
	f.catalog.responses = []fetchResponse{{err: &models.UpstreamQueryError{Raw: []byte(`[{"message":"boom"}]`)}}}

	result := f.service(nil).Sync(context.Background(), testShop)

	assert.False(t, result.Success)
	assert.Equal(t, models.KindUpstreamQuery, result.ErrorKind)
	assert.Equal(t, `Sync failed: GraphQL Error: [{"message":"boom"}]`, result.Message)
	assert.Equal(t, 0, f.uploader.calls)
}

func TestSync_MalformedPrice(t *testing.T) {
	f := newSyncFixture()
	f.catalog.responses = []fetchResponse{page(false, "", product("1", "abc"))}

	result := f.service(nil).Sync(context.Background(), testShop)

	assert.False(t, result.Success)
	assert.Equal(t, models.KindMalformedPrice, result.ErrorKind)
	assert.Equal(t, 0, f.uploader.calls)
}

func TestSync_RemoteRejection(t *testing.T) {
	f := newSyncFixture()
	f.uploader.err = &models.RemoteRejectionError{StatusCode: 500, Status: "500 Internal Server Error", Body: []byte(`{"error":"x"}`)}

	result := f.service(nil).Sync(context.Background(), testShop)

	assert.False(t, result.Success)
	assert.Equal(t, models.KindRemoteRejection, result.ErrorKind)
	assert.Equal(t, "API request failed: 500 - Internal Server Error", result.Message)
	assert.JSONEq(t, `{"error":"x"}`, string(result.Details))

	require.Len(t, f.events.results, 1)
	assert.False(t, f.events.results[0].Success)
}

func TestSync_UploadTransportError(t *testing.T) {
	f := newSyncFixture()
	f.uploader.err = &models.TransportError{Stage: models.StageUpload, Err: errors.New("dial tcp: connection refused")}

	result := f.service(nil).Sync(context.Background(), testShop)

	assert.False(t, result.Success)
	assert.Equal(t, models.KindTransport, result.ErrorKind)
	assert.Equal(t, MessageNetworkError, result.Message)
}

func TestSync_PublishFailureIgnored(t *testing.T) {
	f := newSyncFixture()
	f.events.err = errors.New("broker down")

	result := f.service(nil).Sync(context.Background(), testShop)
	assert.True(t, result.Success)
}

func TestSync_EndToEndWithUploader(t *testing.T) {
	var received []models.FlatRow
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(10<<20))
		file, _, err := r.FormFile("data")
		require.NoError(t, err)
		data, _ := io.ReadAll(file)
		received, err = jsonl.Unmarshal[models.FlatRow](data)
		require.NoError(t, err)
		_, _ = w.Write([]byte(`{"received":2}`))
	}))
	defer srv.Close()

	f := newSyncFixture()
	uploader := ingest.NewUploader(srv.URL, 5*time.Second, logger.NewNop())

	result := f.service(uploader).Sync(context.Background(), testShop)

	require.True(t, result.Success, result.Message)
	assert.Equal(t, 2, result.ProductCount)
	require.Len(t, received, 2)
	assert.Equal(t, "1-v1", received[0].VariantID)
	assert.Equal(t, 19.99, received[0].Price)
	assert.Equal(t, "1-v2", received[1].VariantID)
	assert.JSONEq(t, `{"received":2}`, string(result.APIResult))
}
