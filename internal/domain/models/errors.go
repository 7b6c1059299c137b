package models

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind класс ошибки синхронизации
type ErrorKind string

const (
	KindEntitlementRequired ErrorKind = "entitlement_required"
	KindUpstreamProtocol    ErrorKind = "upstream_protocol"
	KindUpstreamQuery       ErrorKind = "upstream_query"
	KindPaginationLimit     ErrorKind = "pagination_limit"
	KindMalformedPrice      ErrorKind = "malformed_price"
	KindCredentialNotFound  ErrorKind = "credential_not_found"
	KindTransport           ErrorKind = "transport"
	KindRemoteRejection     ErrorKind = "remote_rejection"
	KindUnknown             ErrorKind = "unknown"
)

// Стадии конвейера для TransportError
const (
	StageExtract = "extract"
	StageUpload  = "upload"
)

const maxBodySnippet = 500

// EntitlementRequiredError магазин не имеет активной подписки
type EntitlementRequiredError struct {
	ShopDomain string
}

func (e *EntitlementRequiredError) Error() string {
	return fmt.Sprintf("active billing plan required for %s", e.ShopDomain)
}

// UpstreamProtocolError страница каталога не является корректным JSON или пришла с ошибочным статусом
type UpstreamProtocolError struct {
	Page       int
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamProtocolError) Error() string {
	msg := fmt.Sprintf("Failed to parse GraphQL response (page %d", e.Page)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(", status %d", e.StatusCode)
	}
	msg += ")"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamProtocolError) Unwrap() error { return e.Err }

// NewUpstreamProtocolError усекает тело ответа, чтобы не тащить в логи целую страницу
func NewUpstreamProtocolError(page, status int, body []byte, err error) *UpstreamProtocolError {
	snippet := string(body)
	if len(snippet) > maxBodySnippet {
		snippet = snippet[:maxBodySnippet]
	}
	return &UpstreamProtocolError{Page: page, StatusCode: status, Body: snippet, Err: err}
}

// UpstreamQueryError Admin API вернул ошибки уровня запроса
type UpstreamQueryError struct {
	Page      int
	Messages  []string
	Throttled bool
	Raw       []byte
}

func (e *UpstreamQueryError) Error() string {
	if len(e.Raw) > 0 {
		return "GraphQL Error: " + string(e.Raw)
	}
	return "GraphQL Error: " + strings.Join(e.Messages, "; ")
}

// PaginationLimitError пагинация не завершилась за допустимое число страниц
type PaginationLimitError struct {
	MaxPages int
}

func (e *PaginationLimitError) Error() string {
	return fmt.Sprintf("catalog pagination exceeded %d pages", e.MaxPages)
}

// MalformedPriceError цена варианта не является числом
type MalformedPriceError struct {
	ProductID string
	VariantID string
	Value     string
	Err       error
}

func (e *MalformedPriceError) Error() string {
	return fmt.Sprintf("variant %s of product %s has malformed price %q", e.VariantID, e.ProductID, e.Value)
}

func (e *MalformedPriceError) Unwrap() error { return e.Err }

// CredentialNotFoundError для магазина не сохранен ключ API
type CredentialNotFoundError struct {
	ShopDomain string
}

func (e *CredentialNotFoundError) Error() string {
	return fmt.Sprintf("API key not found for shop %s", e.ShopDomain)
}

// TransportError ответ не был получен: сеть, DNS, таймаут
type TransportError struct {
	Stage string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Stage, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteRejectionError сервис приема ответил неуспешным статусом. Body передается без изменений
type RemoteRejectionError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *RemoteRejectionError) Error() string {
	return fmt.Sprintf("API request failed: %d - %s", e.StatusCode, e.StatusText())
}

// StatusText текст статуса без числового префикса
func (e *RemoteRejectionError) StatusText() string {
	if text := strings.TrimSpace(strings.TrimPrefix(e.Status, fmt.Sprint(e.StatusCode))); text != "" {
		return text
	}
	return http.StatusText(e.StatusCode)
}

// UnknownSyncError любая иная ошибка
type UnknownSyncError struct {
	Err error
}

func (e *UnknownSyncError) Error() string {
	if e.Err == nil {
		return "unknown sync error"
	}
	return e.Err.Error()
}

func (e *UnknownSyncError) Unwrap() error { return e.Err }

// Classify определяет класс ошибки
func Classify(err error) ErrorKind {
	var (
		entitlement *EntitlementRequiredError
		protocol    *UpstreamProtocolError
		query       *UpstreamQueryError
		limit       *PaginationLimitError
		price       *MalformedPriceError
		credential  *CredentialNotFoundError
		transport   *TransportError
		rejection   *RemoteRejectionError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &entitlement):
		return KindEntitlementRequired
	case errors.As(err, &protocol):
		return KindUpstreamProtocol
	case errors.As(err, &query):
		return KindUpstreamQuery
	case errors.As(err, &limit):
		return KindPaginationLimit
	case errors.As(err, &price):
		return KindMalformedPrice
	case errors.As(err, &credential):
		return KindCredentialNotFound
	case errors.As(err, &transport):
		return KindTransport
	case errors.As(err, &rejection):
		return KindRemoteRejection
	default:
		return KindUnknown
	}
}

// IsTransient сообщает, имеет ли смысл повторить запрос страницы каталога
func IsTransient(err error) bool {
	var (
		transport *TransportError
		query     *UpstreamQueryError
		protocol  *UpstreamProtocolError
	)

	switch {
	case errors.As(err, &transport):
		return true
	case errors.As(err, &query):
		return query.Throttled
	case errors.As(err, &protocol):
		return protocol.StatusCode == http.StatusTooManyRequests || protocol.StatusCode >= http.StatusInternalServerError
	default:
		return false
	}
}
