package messaging

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/athebyme/catalog-sync/pkg/interfaces"
	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/google/uuid"
)

// Заголовки, которые добавляются к каждому сообщению
const (
	HeaderMessageID = "message_id"
	HeaderTimestamp = "timestamp"
	HeaderTenantID  = "tenant_id"
)

// Options параметры подключения к Kafka
type Options struct {
	Brokers           []string
	GroupID           string
	ClientID          string
	AutoOffsetReset   string
	SessionTimeout    time.Duration
	HeartbeatTimeout  time.Duration
	EnableIdempotence bool
	CompressionType   string
}

// KafkaMessaging реализация MessagingPort с использованием Kafka
type KafkaMessaging struct {
	producer       *kafka.Producer
	consumers      map[string]*kafka.Consumer
	consumersMutex sync.Mutex
	opts           Options
	logger         interfaces.LoggerPort
	done           chan struct{}
	closeOnce      sync.Once
}

// NewKafkaMessaging создает новый экземпляр KafkaMessaging
func NewKafkaMessaging(opts Options, logger interfaces.LoggerPort) (*KafkaMessaging, error) {
	if len(opts.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are not configured")
	}
	if opts.ClientID == "" {
		opts.ClientID = "catalog-sync"
	}
	if opts.AutoOffsetReset == "" {
		opts.AutoOffsetReset = "latest"
	}

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":  strings.Join(opts.Brokers, ","),
		"client.id":          opts.ClientID + "-producer",
		"acks":               "all",
		"enable.idempotence": opts.EnableIdempotence,
		"retries":            5,
		"retry.backoff.ms":   500,
		"compression.type":   opts.CompressionType,
		"linger.ms":          10,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Kafka producer: %w", err)
	}

	k := &KafkaMessaging{
		producer:  producer,
		consumers: make(map[string]*kafka.Consumer),
		opts:      opts,
		logger:    logger,
		done:      make(chan struct{}),
	}

	go k.deliveryReports()

	return k, nil
}

// deliveryReports логирует результаты доставки асинхронных Produce
func (k *KafkaMessaging) deliveryReports() {
	for {
		select {
		case <-k.done:
			return
		case ev, ok := <-k.producer.Events():
			if !ok {
				return
			}
			if m, ok := ev.(*kafka.Message); ok && m.TopicPartition.Error != nil {
				k.logger.Error("Ошибка доставки сообщения в Kafka",
					interfaces.LogField{Key: "topic", Value: topicName(m)},
					interfaces.LogField{Key: "error", Value: m.TopicPartition.Error.Error()},
				)
			}
		}
	}
}

func topicName(m *kafka.Message) string {
	if m.TopicPartition.Topic == nil {
		return ""
	}
	return *m.TopicPartition.Topic
}

// messageToKafkaMessage преобразует сообщение в kafka.Message
func messageToKafkaMessage(topic string, message []byte, key string, headers map[string]string) *kafka.Message {
	kafkaHeaders := make([]kafka.Header, 0, len(headers)+2)
	for k, v := range headers {
		kafkaHeaders = append(kafkaHeaders, kafka.Header{Key: k, Value: []byte(v)})
	}

	kafkaHeaders = append(kafkaHeaders,
		kafka.Header{Key: HeaderMessageID, Value: []byte(uuid.New().String())},
		kafka.Header{Key: HeaderTimestamp, Value: []byte(strconv.FormatInt(time.Now().UnixNano(), 10))},
	)

	var keyBytes []byte
	if key != "" {
		keyBytes = []byte(key)
	}

	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          message,
		Key:            keyBytes,
		Headers:        kafkaHeaders,
	}
}

// kafkaMessageToMessage преобразует kafka.Message в Message
func kafkaMessageToMessage(msg *kafka.Message) *interfaces.Message {
	headers := make(map[string]string, len(msg.Headers))
	for _, header := range msg.Headers {
		headers[header.Key] = string(header.Value)
	}

	publishedAt := time.Now()
	if ts, err := strconv.ParseInt(headers[HeaderTimestamp], 10, 64); err == nil {
		publishedAt = time.Unix(0, ts)
	}

	return &interfaces.Message{
		ID:          headers[HeaderMessageID],
		Topic:       topicName(msg),
		Key:         string(msg.Key),
		Value:       msg.Value,
		Headers:     headers,
		TenantID:    headers[HeaderTenantID],
		PublishedAt: publishedAt,
	}
}

// Publish публикует сообщение в указанную тему
func (k *KafkaMessaging) Publish(ctx context.Context, topic string, message []byte) error {
	return k.producer.Produce(messageToKafkaMessage(topic, message, "", nil), nil)
}

// PublishForTenant публикует сообщение с ключом и заголовком магазина.
// Ключ сохраняет порядок событий одного магазина внутри партиции
func (k *KafkaMessaging) PublishForTenant(ctx context.Context, topic string, message []byte, tenantID string) error {
	headers := map[string]string{HeaderTenantID: tenantID}
	return k.producer.Produce(messageToKafkaMessage(topic, message, tenantID, headers), nil)
}

// Subscribe подписывается на тему и обрабатывает сообщения с помощью handler
func (k *KafkaMessaging) Subscribe(ctx context.Context, topic string, handler interfaces.MessageHandler) (func() error, error) {
	config := &interfaces.ConsumerConfig{
		GroupID:     k.opts.GroupID,
		AutoCommit:  false,
		PollTimeout: 100 * time.Millisecond,
	}

	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":     strings.Join(k.opts.Brokers, ","),
		"group.id":              config.GroupID,
		"client.id":             k.opts.ClientID + "-consumer",
		"auto.offset.reset":     k.opts.AutoOffsetReset,
		"enable.auto.commit":    config.AutoCommit,
		"session.timeout.ms":    int(k.opts.SessionTimeout.Milliseconds()),
		"heartbeat.interval.ms": int(k.opts.HeartbeatTimeout.Milliseconds()),
		"max.poll.interval.ms":  900000, // синхронизация большого каталога может идти минутами
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Kafka consumer: %w", err)
	}

	if err := consumer.Subscribe(topic, nil); err != nil {
		consumer.Close()
		return nil, fmt.Errorf("ошибка подписки на топик %s: %w", topic, err)
	}

	id := uuid.New().String()
	k.consumersMutex.Lock()
	k.consumers[id] = consumer
	k.consumersMutex.Unlock()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		k.consumeMessages(ctx, consumer, handler, config)
	}()

	unsubscribe := func() error {
		k.consumersMutex.Lock()
		c, ok := k.consumers[id]
		delete(k.consumers, id)
		k.consumersMutex.Unlock()

		if !ok {
			return nil
		}
		<-stopped
		return c.Close()
	}

	return unsubscribe, nil
}

// consumeMessages читает сообщения до отмены контекста
func (k *KafkaMessaging) consumeMessages(ctx context.Context, consumer *kafka.Consumer, handler interfaces.MessageHandler, config *interfaces.ConsumerConfig) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-k.done:
			return
		default:
		}

		ev := consumer.Poll(int(config.PollTimeout.Milliseconds()))
		if ev == nil {
			continue
		}

		switch e := ev.(type) {
		case *kafka.Message:
			msg := kafkaMessageToMessage(e)
			if err := handler(ctx, msg); err != nil {
				k.logger.WarnWithContext(ctx, "Обработчик вернул ошибку",
					interfaces.LogField{Key: "topic", Value: msg.Topic},
					interfaces.LogField{Key: "message_id", Value: msg.ID},
					interfaces.LogField{Key: "error", Value: err.Error()},
				)
			}

			// Команды не переигрываются: результат синхронизации уже отражен в событии
			if !config.AutoCommit {
				if _, err := consumer.CommitMessage(e); err != nil {
					k.logger.WarnWithContext(ctx, "Ошибка подтверждения сообщения",
						interfaces.LogField{Key: "error", Value: err.Error()})
				}
			}

		case kafka.Error:
			k.logger.ErrorWithContext(ctx, "Ошибка Kafka consumer",
				interfaces.LogField{Key: "code", Value: e.Code().String()},
				interfaces.LogField{Key: "error", Value: e.Error()},
			)
			if e.Code() == kafka.ErrAllBrokersDown {
				return
			}
		}
	}
}

// Close закрывает соединение с системой обмена сообщениями
func (k *KafkaMessaging) Close() error {
	k.closeOnce.Do(func() {
		close(k.done)

		k.consumersMutex.Lock()
		for id, consumer := range k.consumers {
			_ = consumer.Close()
			delete(k.consumers, id)
		}
		k.consumersMutex.Unlock()

		k.producer.Flush(15 * 1000)
		k.producer.Close()
	})
	return nil
}
