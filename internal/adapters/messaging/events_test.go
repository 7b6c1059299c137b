package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athebyme/catalog-sync/internal/domain/models"
	"github.com/athebyme/catalog-sync/pkg/interfaces"
)

type recordingBus struct {
	topic, tenant string
	payload       []byte
}

func (b *recordingBus) Publish(ctx context.Context, topic string, message []byte) error {
	b.topic, b.payload = topic, message
	return nil
}

func (b *recordingBus) PublishForTenant(ctx context.Context, topic string, message []byte, tenantID string) error {
	b.topic, b.payload, b.tenant = topic, message, tenantID
	return nil
}

func (b *recordingBus) Subscribe(ctx context.Context, topic string, handler interfaces.MessageHandler) (func() error, error) {
	return func() error { return nil }, nil
}

func (b *recordingBus) Close() error { return nil }

func TestSyncEventPublisher(t *testing.T) {
	bus := &recordingBus{}
	p := NewSyncEventPublisher(bus, "catalog-sync-events")

	result := &models.SyncResult{
		Success:    false,
		Message:    "Sync failed: boom",
		ShopDomain: "demo.myshopify.com",
		ErrorKind:  models.KindTransport,
	}
	require.NoError(t, p.PublishSyncResult(context.Background(), result, 1500*time.Millisecond))

	assert.Equal(t, "catalog-sync-events", bus.topic)
	assert.Equal(t, "demo.myshopify.com", bus.tenant)

	var ev models.SyncEvent
	require.NoError(t, json.Unmarshal(bus.payload, &ev))
	assert.Equal(t, models.EventSyncFailed, ev.Type)
	assert.Equal(t, models.KindTransport, ev.ErrorKind)
	assert.Equal(t, int64(1500), ev.DurationMs)
	assert.NotEmpty(t, ev.ID)
}

func TestDecodeSyncCommand(t *testing.T) {
	cmd, err := DecodeSyncCommand(&interfaces.Message{
		Value: []byte(`{"command_type":"sync_catalog","tenant_id":"demo.myshopify.com"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, models.CommandSyncCatalog, cmd.CommandType)
	assert.Equal(t, "demo.myshopify.com", cmd.TenantID)

	cmd, err = DecodeSyncCommand(&interfaces.Message{
		Value:    []byte(`{"command_type":"sync_catalog"}`),
		TenantID: "header.myshopify.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "header.myshopify.com", cmd.TenantID)

	_, err = DecodeSyncCommand(&interfaces.Message{Value: []byte(`{"command_type":"sync_catalog"}`)})
	assert.Error(t, err)

	_, err = DecodeSyncCommand(&interfaces.Message{Value: []byte(`nope`)})
	assert.Error(t, err)
}

func TestKafkaMessageConversion(t *testing.T) {
	km := messageToKafkaMessage("commands", []byte("x"), "demo.myshopify.com",
		map[string]string{HeaderTenantID: "demo.myshopify.com"})

	assert.Equal(t, "commands", *km.TopicPartition.Topic)
	assert.Equal(t, kafka.PartitionAny, km.TopicPartition.Partition)

	msg := kafkaMessageToMessage(km)
	assert.Equal(t, "commands", msg.Topic)
	assert.Equal(t, "demo.myshopify.com", msg.Key)
	assert.Equal(t, "demo.myshopify.com", msg.TenantID)
	assert.NotEmpty(t, msg.ID)
	assert.WithinDuration(t, time.Now(), msg.PublishedAt, time.Minute)
}
