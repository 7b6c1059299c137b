package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/athebyme/catalog-sync/internal/domain/models"
	"github.com/go-faster/errors"
)

const (
	// DefaultAPIVersion версия Admin API по умолчанию
	DefaultAPIVersion = "2025-01"

	// HeaderAccessToken заголовок с токеном доступа Admin API
	HeaderAccessToken = "X-Shopify-Access-Token"

	codeThrottled = "THROTTLED"

	maxResponseSize = 64 << 20
)

// Client клиент Admin GraphQL API одного магазина
type Client struct {
	httpClient  *http.Client
	endpoint    string
	accessToken string
}

// Option настраивает Client
type Option func(*Client)

// WithHTTPClient подменяет HTTP клиент
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithEndpoint задает полный URL graphql.json, например для тестового сервера
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// NewClient создает клиент для магазина shop
func NewClient(shop, accessToken, apiVersion string, opts ...Option) *Client {
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}

	c := &Client{
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		endpoint:    fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shop, apiVersion),
		accessToken: accessToken,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

type productsResponse struct {
	Data *struct {
		Products *models.Connection[models.RawProduct] `json:"products"`
	} `json:"data"`
	Errors     json.RawMessage `json:"errors"`
	Extensions *struct {
		Cost *struct {
			RequestedQueryCost float64                `json:"requestedQueryCost"`
			ThrottleStatus     *models.ThrottleStatus `json:"throttleStatus"`
		} `json:"cost"`
	} `json:"extensions"`
}

// FetchProducts запрашивает одну страницу товаров
func (c *Client) FetchProducts(ctx context.Context, first int, after *string) (*models.CatalogPage, error) {
	vars := map[string]interface{}{"first": first, "after": nil}
	if after != nil {
		vars["after"] = *after
	}

	payload, err := json.Marshal(graphQLRequest{Query: ProductsQuery, Variables: vars})
	if err != nil {
		return nil, errors.Wrap(err, "marshal query")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set(HeaderAccessToken, c.accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &models.TransportError{Stage: models.StageExtract, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &models.TransportError{Stage: models.StageExtract, Err: errors.Wrap(err, "read body")}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, models.NewUpstreamProtocolError(0, resp.StatusCode, body,
			fmt.Errorf("unexpected status %s", resp.Status))
	}

	return decodeProductsPage(body)
}

func decodeProductsPage(body []byte) (*models.CatalogPage, error) {
	var gr productsResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, models.NewUpstreamProtocolError(0, http.StatusOK, body, err)
	}

	if qe := decodeErrors(gr.Errors); qe != nil {
		return nil, qe
	}

	if gr.Data == nil || gr.Data.Products == nil {
		return nil, models.NewUpstreamProtocolError(0, http.StatusOK, body, errors.New("missing data.products"))
	}

	products := gr.Data.Products
	page := &models.CatalogPage{Products: products.Nodes()}
	if products.PageInfo != nil {
		page.HasNextPage = products.PageInfo.HasNextPage
		page.EndCursor = products.PageInfo.EndCursor
	}
	if gr.Extensions != nil && gr.Extensions.Cost != nil {
		page.Throttle = gr.Extensions.Cost.ThrottleStatus
		page.RequestedCost = gr.Extensions.Cost.RequestedQueryCost
	}

	return page, nil
}

// decodeErrors разбирает поле errors: массив объектов или строку
func decodeErrors(raw json.RawMessage) *models.UpstreamQueryError {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	qe := &models.UpstreamQueryError{Raw: []byte(trimmed)}

	var list []graphQLError
	if err := json.Unmarshal(trimmed, &list); err == nil {
		// пустой массив тоже означает отказ запроса
		for _, e := range list {
			qe.Messages = append(qe.Messages, e.Message)
			if strings.EqualFold(e.Extensions.Code, codeThrottled) {
				qe.Throttled = true
			}
		}
		return qe
	}

	var msg string
	if err := json.Unmarshal(trimmed, &msg); err == nil {
		qe.Messages = []string{msg}
		qe.Throttled = strings.Contains(strings.ToLower(msg), "throttled")
		return qe
	}

	qe.Messages = []string{string(trimmed)}
	return qe
}
