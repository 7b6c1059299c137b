package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athebyme/catalog-sync/internal/adapters/logger"
	"github.com/athebyme/catalog-sync/internal/domain/models"
	"github.com/athebyme/catalog-sync/pkg/interfaces"
)

type recordingSync struct {
	shops     []string
	requestID string
	result    *models.SyncResult
}

func (r *recordingSync) Sync(ctx context.Context, shop string) *models.SyncResult {
	r.shops = append(r.shops, shop)
	r.requestID, _ = ctx.Value(interfaces.ContextKeyRequestID).(string)
	if r.result != nil {
		return r.result
	}
	return &models.SyncResult{Success: true, ShopDomain: shop}
}

func TestCommandHandler_RunsSync(t *testing.T) {
	svc := &recordingSync{}
	h := NewCommandHandler(svc, logger.NewNop())

	err := h(context.Background(), &interfaces.Message{
		Value: []byte(`{"command_type":"sync_catalog","tenant_id":"Demo.myshopify.com","request_id":"r-1"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"demo.myshopify.com"}, svc.shops)
	assert.Equal(t, "r-1", svc.requestID)
}

func TestCommandHandler_TenantFromHeader(t *testing.T) {
	svc := &recordingSync{}
	h := NewCommandHandler(svc, logger.NewNop())

	err := h(context.Background(), &interfaces.Message{
		Value:    []byte(`{"command_type":"sync_catalog"}`),
		TenantID: "demo.myshopify.com",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"demo.myshopify.com"}, svc.shops)
}

func TestCommandHandler_FailedSyncIsNotHandlerError(t *testing.T) {
	svc := &recordingSync{result: &models.SyncResult{ErrorKind: models.KindTransport}}
	h := NewCommandHandler(svc, logger.NewNop())

	err := h(context.Background(), &interfaces.Message{
		Value: []byte(`{"command_type":"sync_catalog","tenant_id":"demo.myshopify.com"}`),
	})
	assert.NoError(t, err)
}

func TestCommandHandler_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"bad json", `{`, true},
		{"no tenant", `{"command_type":"sync_catalog"}`, true},
		{"invalid shop", `{"command_type":"sync_catalog","tenant_id":"example.com"}`, true},
		{"unknown command", `{"command_type":"reindex","tenant_id":"demo.myshopify.com"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &recordingSync{}
			h := NewCommandHandler(svc, logger.NewNop())

			err := h(context.Background(), &interfaces.Message{Value: []byte(tt.value)})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Empty(t, svc.shops)
		})
	}
}
