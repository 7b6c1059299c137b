package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/athebyme/catalog-sync/internal/domain/models"
	"github.com/athebyme/catalog-sync/pkg/interfaces"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// SyncEventPublisher публикует события о результатах синхронизации
type SyncEventPublisher struct {
	bus   interfaces.MessagingPort
	topic string
}

func NewSyncEventPublisher(bus interfaces.MessagingPort, topic string) *SyncEventPublisher {
	return &SyncEventPublisher{bus: bus, topic: topic}
}

// NewSyncEvent строит событие из результата синхронизации
func NewSyncEvent(result *models.SyncResult, duration time.Duration) models.SyncEvent {
	eventType := models.EventSyncCompleted
	if !result.Success {
		eventType = models.EventSyncFailed
	}

	return models.SyncEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		ShopDomain: result.ShopDomain,
		RowCount:   result.ProductCount,
		ErrorKind:  result.ErrorKind,
		Message:    result.Message,
		DurationMs: duration.Milliseconds(),
		Timestamp:  time.Now().Unix(),
	}
}

// PublishSyncResult публикует событие с заголовком магазина
func (p *SyncEventPublisher) PublishSyncResult(ctx context.Context, result *models.SyncResult, duration time.Duration) error {
	payload, err := json.Marshal(NewSyncEvent(result, duration))
	if err != nil {
		return errors.Wrap(err, "marshal sync event")
	}

	if err := p.bus.PublishForTenant(ctx, p.topic, payload, result.ShopDomain); err != nil {
		return errors.Wrapf(err, "publish to %s", p.topic)
	}

	return nil
}

// DecodeSyncCommand разбирает команду на запуск синхронизации.
// Магазин берется из тела, при его отсутствии из заголовка tenant_id
func DecodeSyncCommand(msg *interfaces.Message) (*models.SyncCommand, error) {
	var cmd models.SyncCommand
	if err := json.Unmarshal(msg.Value, &cmd); err != nil {
		return nil, errors.Wrap(err, "decode command")
	}

	if cmd.TenantID == "" {
		cmd.TenantID = msg.TenantID
	}
	if cmd.TenantID == "" {
		return nil, errors.New("command has no tenant_id")
	}

	return &cmd, nil
}
