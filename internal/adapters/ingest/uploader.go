package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/go-faster/errors"

	"github.com/athebyme/catalog-sync/internal/domain/models"
	"github.com/athebyme/catalog-sync/pkg/interfaces"
	"github.com/athebyme/catalog-sync/pkg/jsonl"
)

// Поля multipart формы, которые ожидает сервис приема
const (
	FieldShopDomain = "shop_domain"
	FieldData       = "data"
	DataFilename    = "products.jsonl"

	DefaultTimeout = 60 * time.Second
)

// PayloadArchiver сохраняет копию выгрузки перед отправкой
type PayloadArchiver interface {
	Archive(ctx context.Context, shopDomain string, payload []byte) (string, error)
}

// Uploader отправляет каталог одним multipart запросом.
// Выполняется ровно одна попытка, payload не делится на части
type Uploader struct {
	endpoint   string
	httpClient *http.Client
	archiver   PayloadArchiver
	logger     interfaces.LoggerPort
}

// Option настраивает Uploader
type Option func(*Uploader)

// WithArchiver включает архивирование выгрузок
func WithArchiver(a PayloadArchiver) Option {
	return func(u *Uploader) { u.archiver = a }
}

// WithHTTPClient подменяет HTTP клиент
func WithHTTPClient(hc *http.Client) Option {
	return func(u *Uploader) { u.httpClient = hc }
}

func NewUploader(endpoint string, timeout time.Duration, logger interfaces.LoggerPort, opts ...Option) *Uploader {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	u := &Uploader{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(u)
	}

	return u
}

// Upload сериализует строки в JSONL и отправляет их сервису приема.
// Возвращает тело ответа как есть; не-JSON ответ оборачивается в JSON строку
func (u *Uploader) Upload(ctx context.Context, rows []models.FlatRow, shopDomain, apiKey string) (json.RawMessage, error) {
	payload, err := jsonl.Marshal(rows)
	if err != nil {
		return nil, &models.UnknownSyncError{Err: errors.Wrap(err, "serialize rows")}
	}

	if u.archiver != nil {
		key, err := u.archiver.Archive(ctx, shopDomain, payload)
		if err != nil {
			u.logger.WarnWithContext(ctx, "Не удалось сохранить выгрузку в архив",
				interfaces.LogField{Key: "shop", Value: shopDomain},
				interfaces.LogField{Key: "error", Value: err.Error()},
			)
		} else {
			u.logger.DebugWithContext(ctx, "Выгрузка сохранена в архив",
				interfaces.LogField{Key: "key", Value: key})
		}
	}

	body, contentType, err := buildForm(shopDomain, payload)
	if err != nil {
		return nil, &models.UnknownSyncError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, body)
	if err != nil {
		return nil, &models.UnknownSyncError{Err: errors.Wrap(err, "create request")}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, &models.TransportError{Stage: models.StageUpload, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.TransportError{Stage: models.StageUpload, Err: errors.Wrap(err, "read response")}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &models.RemoteRejectionError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       respBody,
		}
	}

	return AsRawJSON(respBody), nil
}

func buildForm(shopDomain string, payload []byte) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField(FieldShopDomain, shopDomain); err != nil {
		return nil, "", errors.Wrap(err, "write shop_domain")
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FieldData, DataFilename))
	h.Set("Content-Type", jsonl.ContentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", errors.Wrap(err, "create data part")
	}
	if _, err := part.Write(payload); err != nil {
		return nil, "", errors.Wrap(err, "write data part")
	}

	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "close form")
	}

	return &buf, w.FormDataContentType(), nil
}

// AsRawJSON возвращает тело как JSON; пустое тело дает null, прочее становится строкой
func AsRawJSON(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return json.RawMessage("null")
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}

	quoted, _ := json.Marshal(string(body))
	return quoted
}
