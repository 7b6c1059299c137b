package models

import (
	"encoding/json"
	"time"
)

// SyncResult итог одного запуска синхронизации
type SyncResult struct {
	Success         bool            `json:"success"`
	Message         string          `json:"message"`
	ShopDomain      string          `json:"shopDomain,omitempty"`
	ProductCount    int             `json:"productCount,omitempty"`
	SkippedProducts int             `json:"skippedProducts,omitempty"`
	APIResult       json.RawMessage `json:"apiResult,omitempty"`
	Details         json.RawMessage `json:"details,omitempty"`
	ErrorKind       ErrorKind       `json:"errorKind,omitempty"`

	// Err исходная ошибка для вызывающего кода; в ответ не сериализуется
	Err error `json:"-"`
}

// Credential ключ API внешнего сервиса приема данных
type Credential struct {
	ShopDomain string    `json:"shop_domain"`
	APIKey     string    `json:"api_key"`
	SavedAt    time.Time `json:"saved_at"`
}

// ---------------------------- KAFKA MODELS ----------------------------

// Типы событий синхронизации
const (
	EventSyncCompleted = "catalog_sync_completed"
	EventSyncFailed    = "catalog_sync_failed"
)

// CommandSyncCatalog тип команды асинхронного запуска синхронизации
const CommandSyncCatalog = "sync_catalog"

// SyncEvent событие о завершении синхронизации
type SyncEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	ShopDomain string    `json:"shop_domain"`
	RowCount   int       `json:"row_count"`
	ErrorKind  ErrorKind `json:"error_kind,omitempty"`
	Message    string    `json:"message"`
	DurationMs int64     `json:"duration_ms"`
	Timestamp  int64     `json:"timestamp"`
}

// SyncCommand команда на запуск синхронизации
type SyncCommand struct {
	CommandType string `json:"command_type"`
	TenantID    string `json:"tenant_id"`
	RequestID   string `json:"request_id,omitempty"`
}
