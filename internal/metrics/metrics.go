// Package metrics содержит метрики Prometheus сервиса.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP
var (
	HTTPDurations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_durations_seconds",
		Help:    "Длительность HTTP запросов",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method", "status"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Общее количество HTTP запросов",
	}, []string{"path", "method", "status"})

	HTTPActiveRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_active_requests",
		Help: "Количество активных HTTP запросов",
	})
)

// Синхронизация каталога
var (
	SyncDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_sync_duration_seconds",
		Help:    "Длительность синхронизации каталога",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"outcome"})

	SyncFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_sync_failures_total",
		Help: "Количество неудачных синхронизаций по классу ошибки",
	}, []string{"kind"})

	RowsUploaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_sync_rows_uploaded_total",
		Help: "Количество выгруженных строк",
	})

	PagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_pages_fetched_total",
		Help: "Количество полученных страниц каталога",
	})

	UpstreamRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_upstream_retries_total",
		Help: "Количество повторных запросов страниц каталога",
	})

	CacheOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_operations_total",
		Help: "Количество операций с кэшем",
	}, []string{"operation", "status"})
)

// Воркер
var (
	MessagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_messages_processed_total",
		Help: "Количество обработанных сообщений",
	}, []string{"command_type", "status"})

	MessageProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "worker_message_processing_duration_seconds",
		Help:    "Длительность обработки сообщений",
		Buckets: prometheus.DefBuckets,
	}, []string{"command_type"})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "worker_active",
		Help: "Количество сообщений в обработке",
	})
)
