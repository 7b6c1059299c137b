// Package worker обрабатывает асинхронные команды на запуск синхронизации.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/athebyme/catalog-sync/internal/adapters/messaging"
	"github.com/athebyme/catalog-sync/internal/domain/models"
	"github.com/athebyme/catalog-sync/internal/domain/services"
	"github.com/athebyme/catalog-sync/internal/metrics"
	"github.com/athebyme/catalog-sync/internal/utils"
	"github.com/athebyme/catalog-sync/pkg/interfaces"
)

// NewCommandHandler возвращает обработчик команд sync_catalog.
// Неуспешная синхронизация не является ошибкой обработчика: ее итог уходит в событие
func NewCommandHandler(syncService services.SyncServiceInterface, logger interfaces.LoggerPort) interfaces.MessageHandler {
	return func(ctx context.Context, msg *interfaces.Message) error {
		start := time.Now()
		metrics.ActiveWorkers.Inc()
		defer metrics.ActiveWorkers.Dec()

		logger.InfoWithContext(ctx, "Получена команда",
			interfaces.LogField{Key: "message_id", Value: msg.ID},
			interfaces.LogField{Key: "topic", Value: msg.Topic},
		)

		cmd, err := messaging.DecodeSyncCommand(msg)
		if err != nil {
			logger.ErrorWithContext(ctx, "Ошибка декодирования команды",
				interfaces.LogField{Key: "message_id", Value: msg.ID},
				interfaces.LogField{Key: "error", Value: err.Error()})
			metrics.MessagesProcessed.WithLabelValues("unknown", "error").Inc()
			return err
		}

		if cmd.CommandType != models.CommandSyncCatalog {
			logger.WarnWithContext(ctx, "Неизвестный тип команды",
				interfaces.LogField{Key: "command_type", Value: cmd.CommandType})
			metrics.MessagesProcessed.WithLabelValues(cmd.CommandType, "unknown").Inc()
			return nil
		}

		shop, err := utils.NormalizeShopDomain(cmd.TenantID)
		if err != nil {
			metrics.MessagesProcessed.WithLabelValues(cmd.CommandType, "error").Inc()
			return fmt.Errorf("command tenant %q: %w", cmd.TenantID, err)
		}

		cmdCtx := context.WithValue(ctx, interfaces.ContextKeyTenantID, shop)
		if cmd.RequestID != "" {
			cmdCtx = context.WithValue(cmdCtx, interfaces.ContextKeyRequestID, cmd.RequestID)
		}

		result := syncService.Sync(cmdCtx, shop)

		status := "success"
		if !result.Success {
			status = "failed"
		}
		metrics.MessagesProcessed.WithLabelValues(cmd.CommandType, status).Inc()
		metrics.MessageProcessingDuration.WithLabelValues(cmd.CommandType).Observe(time.Since(start).Seconds())

		logger.InfoWithContext(cmdCtx, "Команда обработана",
			interfaces.LogField{Key: "command_type", Value: cmd.CommandType},
			interfaces.LogField{Key: "success", Value: result.Success},
			interfaces.LogField{Key: "duration", Value: time.Since(start).String()},
		)

		return nil
	}
}
