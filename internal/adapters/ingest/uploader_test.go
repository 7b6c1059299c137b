package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athebyme/catalog-sync/internal/adapters/logger"
	"github.com/athebyme/catalog-sync/internal/domain/models"
	"github.com/athebyme/catalog-sync/pkg/jsonl"
)

func sampleRows() []models.FlatRow {
	img := "https://cdn.example.com/a.png"
	qty := 5
	sku := "SKU-1"
	return []models.FlatRow{
		{Title: "Shirt", Handle: "shirt", ProductID: "p1", VariantID: "v1", Price: 19.99, SKU: &sku, InventoryQuantity: &qty, Image: &img},
		{Title: "Shirt", Handle: "shirt", ProductID: "p1", VariantID: "v2", Price: 21},
	}
}

func TestUploader_Success(t *testing.T) {
	var (
		gotShop, gotAuth, gotFilename, gotType string
		gotRows                                []models.FlatRow
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseMultipartForm(10<<20))
		gotShop = r.FormValue(FieldShopDomain)

		file, header, err := r.FormFile(FieldData)
		require.NoError(t, err)
		defer file.Close()
		gotFilename = header.Filename
		gotType = header.Header.Get("Content-Type")

		data, _ := io.ReadAll(file)
		gotRows, err = jsonl.Unmarshal[models.FlatRow](data)
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"accepted","rows":2}`))
	}))
	defer srv.Close()

	u := NewUploader(srv.URL, time.Second, logger.NewNop())
	ack, err := u.Upload(context.Background(), sampleRows(), "demo.myshopify.com", "secret")
	require.NoError(t, err)

	assert.JSONEq(t, `{"status":"accepted","rows":2}`, string(ack))
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "demo.myshopify.com", gotShop)
	assert.Equal(t, "products.jsonl", gotFilename)
	assert.Equal(t, "application/x-jsonlines", gotType)
	assert.Equal(t, sampleRows(), gotRows)
}

func TestUploader_RemoteRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"x"}`))
	}))
	defer srv.Close()

	u := NewUploader(srv.URL, time.Second, logger.NewNop())
	_, err := u.Upload(context.Background(), sampleRows(), "demo.myshopify.com", "secret")

	var rej *models.RemoteRejectionError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, 500, rej.StatusCode)
	assert.Equal(t, []byte(`{"error":"x"}`), rej.Body)
	assert.Equal(t, "API request failed: 500 - Internal Server Error", rej.Error())
}

func TestUploader_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	u := NewUploader(url, time.Second, logger.NewNop())
	_, err := u.Upload(context.Background(), sampleRows(), "demo.myshopify.com", "secret")

	var te *models.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, models.StageUpload, te.Stage)
	assert.Equal(t, models.KindTransport, models.Classify(err))
}

func TestUploader_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	u := NewUploader(srv.URL, 50*time.Millisecond, logger.NewNop())
	_, err := u.Upload(context.Background(), sampleRows(), "demo.myshopify.com", "secret")

	var te *models.TransportError
	require.ErrorAs(t, err, &te)
}

func TestUploader_SingleAttempt(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	u := NewUploader(srv.URL, time.Second, logger.NewNop())
	_, err := u.Upload(context.Background(), sampleRows(), "demo.myshopify.com", "secret")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

type fakeArchiver struct {
	payload []byte
	err     error
}

func (f *fakeArchiver) Archive(ctx context.Context, shop string, payload []byte) (string, error) {
	f.payload = payload
	return "key", f.err
}

func TestUploader_ArchiveFailureDoesNotFailUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	arch := &fakeArchiver{err: errors.New("s3 down")}
	u := NewUploader(srv.URL, time.Second, logger.NewNop(), WithArchiver(arch))

	ack, err := u.Upload(context.Background(), sampleRows(), "demo.myshopify.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, `"ok"`, string(ack))
	assert.Equal(t, 2, strings.Count(string(arch.payload), "\n")+1)
}

func TestAsRawJSON(t *testing.T) {
	assert.Equal(t, "null", string(AsRawJSON(nil)))
	assert.Equal(t, `{"a":1}`, string(AsRawJSON([]byte(` {"a":1} `))))

	var s string
	require.NoError(t, json.Unmarshal(AsRawJSON([]byte("plain text")), &s))
	assert.Equal(t, "plain text", s)
}
