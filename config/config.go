package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config содержит все настройки сервиса
type Config struct {
	AppName  string
	Version  string
	LogLevel string
	ENV      string

	Server struct {
		Host            string
		Port            int
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration // должен покрывать всю синхронизацию каталога
		ShutdownTimeout time.Duration
		RequestTimeout  time.Duration // таймаут для коротких маршрутов
		BodyLimit       int           // максимальный размер запроса в МБ
	}

	Postgres struct {
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
		SSLMode  string
		Timeout  time.Duration
		PoolSize int // размер пула соединений
	}

	Redis struct {
		Host           string
		Port           int
		Password       string
		DB             int
		PoolSize       int           // размер пула соединений
		MinIdleConns   int           // минимальное количество неактивных соединений
		ConnectTimeout time.Duration // таймаут соединения
		ReadTimeout    time.Duration // таймаут чтения
		WriteTimeout   time.Duration // таймаут записи
		PoolTimeout    time.Duration // таймаут ожидания соединения из пула
		IdleTimeout    time.Duration // таймаут неактивного соединения
		MaxRetries     int           // максимальное количество повторных попыток
	}

	Kafka struct {
		Enabled           bool
		Brokers           []string
		GroupID           string
		ProducerTopic     string // события о результатах синхронизации
		ConsumerTopic     string // команды на запуск синхронизации
		AutoOffsetReset   string
		SessionTimeout    time.Duration
		HeartbeatTimeout  time.Duration
		EnableIdempotence bool
		CompressionType   string
	}

	Metrics struct {
		Enabled     bool
		ServiceName string
		Endpoint    string
		Port        int // порт HTTP сервера метрик воркера
	}

	Security struct {
		CORSAllowOrigins []string
	}

	Resilience struct {
		MaxRetries    int           // максимальное число повторов запроса страницы
		RetryWaitTime time.Duration // начальная задержка между повторами
		MaxWaitTime   time.Duration // верхняя граница задержки
	}

	Shopify ShopifyConfig

	Catalog struct {
		PageSize          int     // товаров на страницу запроса
		MaxPages          int     // верхняя граница числа страниц
		ThrottleThreshold float64 // минимальный остаток бюджета запросов перед следующей страницей
	}

	Ingest struct {
		Endpoint string
		Timeout  time.Duration
	}

	Archive struct {
		Enabled  bool
		Bucket   string
		Region   string
		Prefix   string
		Endpoint string // для S3-совместимых хранилищ
	}

	Entitlement struct {
		CacheTTL time.Duration
	}
}

// Load загружает конфигурацию из .env, файла и переменных окружения
func Load(configPath string) (*Config, error) {
	configFile := "config"
	if configPath != "" {
		configFile = configPath
	}

	// .env не обязателен: в контейнере переменные приходят из окружения
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("ошибка чтения .env: %w", err)
	}

	var cfg Config

	v := viper.New()
	v.SetConfigName(configFile)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")
	v.AddConfigPath("../../config")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
		// Продолжаем, если файл не найден, будем использовать только переменные окружения
	}

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка десериализации конфигурации: %w", err)
	}

	if cfg.ENV == "" {
		cfg.ENV = "development"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// IsProduction сообщает, запущен ли сервис в production окружении
func (c *Config) IsProduction() bool {
	return c.ENV == "production"
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	if c.Catalog.PageSize < 1 || c.Catalog.PageSize > 250 {
		return fmt.Errorf("catalog.pageSize must be in [1, 250], got %d", c.Catalog.PageSize)
	}
	if c.Catalog.MaxPages < 1 {
		return fmt.Errorf("catalog.maxPages must be positive, got %d", c.Catalog.MaxPages)
	}
	if c.Ingest.Endpoint == "" {
		return fmt.Errorf("ingest.endpoint is required")
	}
	if c.Ingest.Timeout <= 0 {
		return fmt.Errorf("ingest.timeout must be positive")
	}
	if c.Archive.Enabled && c.Archive.Bucket == "" {
		return fmt.Errorf("archive.bucket is required when archive is enabled")
	}
	return nil
}

// setDefaults устанавливает значения по умолчанию
func setDefaults(v *viper.Viper) {
	// Основные настройки
	v.SetDefault("appName", "catalog-sync")
	v.SetDefault("version", "1.0.0")
	v.SetDefault("logLevel", "info")
	v.SetDefault("env", "development")

	// Настройки сервера
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "5m")
	v.SetDefault("server.shutdownTimeout", "10s")
	v.SetDefault("server.requestTimeout", "30s")
	v.SetDefault("server.bodyLimit", 10) // 10 МБ

	// Настройки Postgres
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.dbname", "postgres")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.timeout", "5s")
	v.SetDefault("postgres.poolSize", 10)

	// Настройки Redis
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.poolSize", 10)
	v.SetDefault("redis.minIdleConns", 2)
	v.SetDefault("redis.connectTimeout", "1s")
	v.SetDefault("redis.readTimeout", "1s")
	v.SetDefault("redis.writeTimeout", "1s")
	v.SetDefault("redis.poolTimeout", "4s")
	v.SetDefault("redis.idleTimeout", "300s")
	v.SetDefault("redis.maxRetries", 3)

	// Настройки Kafka
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.groupID", "catalog-sync")
	v.SetDefault("kafka.producerTopic", "catalog-sync-events")
	v.SetDefault("kafka.consumerTopic", "catalog-sync-commands")
	v.SetDefault("kafka.autoOffsetReset", "latest")
	v.SetDefault("kafka.sessionTimeout", "10s")
	v.SetDefault("kafka.heartbeatTimeout", "3s")
	v.SetDefault("kafka.enableIdempotence", true)
	v.SetDefault("kafka.compressionType", "snappy")

	// Настройки метрик
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.serviceName", "catalog-sync")
	v.SetDefault("metrics.endpoint", "/metrics")
	v.SetDefault("metrics.port", 9090)

	// Настройки безопасности
	v.SetDefault("security.corsAllowOrigins", []string{"*"})

	// Настройки отказоустойчивости
	v.SetDefault("resilience.maxRetries", 3)
	v.SetDefault("resilience.retryWaitTime", "500ms")
	v.SetDefault("resilience.maxWaitTime", "10s")

	// Настройки Shopify
	v.SetDefault("shopify.apiVersion", "2025-01")

	// Настройки каталога
	v.SetDefault("catalog.pageSize", 50)
	v.SetDefault("catalog.maxPages", 1000)
	v.SetDefault("catalog.throttleThreshold", 20)

	// Сервис приема данных
	v.SetDefault("ingest.endpoint", "https://bckn.tensorsolution.in/api/v1/sync-shopify-data")
	v.SetDefault("ingest.timeout", "60s")

	// Архив выгрузок
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.region", "us-east-1")
	v.SetDefault("archive.prefix", "catalog-sync")

	// Подписки
	v.SetDefault("entitlement.cacheTTL", "5m")
}

// bindEnvVariables привязывает переменные окружения к конфигурации
func bindEnvVariables(v *viper.Viper) {
	// Основные настройки
	_ = v.BindEnv("appName", "APP_NAME")
	_ = v.BindEnv("version", "APP_VERSION")
	_ = v.BindEnv("logLevel", "LOG_LEVEL")
	_ = v.BindEnv("env", "APP_ENV")

	// Настройки сервера
	_ = v.BindEnv("server.host", "SERVER_HOST")
	_ = v.BindEnv("server.port", "SERVER_PORT", "PORT")
	_ = v.BindEnv("server.readTimeout", "SERVER_READ_TIMEOUT")
	_ = v.BindEnv("server.writeTimeout", "SERVER_WRITE_TIMEOUT")
	_ = v.BindEnv("server.shutdownTimeout", "SERVER_SHUTDOWN_TIMEOUT")
	_ = v.BindEnv("server.requestTimeout", "SERVER_REQUEST_TIMEOUT")
	_ = v.BindEnv("server.bodyLimit", "SERVER_BODY_LIMIT")

	// Настройки Postgres
	_ = v.BindEnv("postgres.host", "POSTGRES_HOST")
	_ = v.BindEnv("postgres.port", "POSTGRES_PORT")
	_ = v.BindEnv("postgres.user", "POSTGRES_USER")
	_ = v.BindEnv("postgres.password", "POSTGRES_PASSWORD")
	_ = v.BindEnv("postgres.dbname", "POSTGRES_DBNAME")
	_ = v.BindEnv("postgres.sslmode", "POSTGRES_SSLMODE")
	_ = v.BindEnv("postgres.timeout", "POSTGRES_TIMEOUT")
	_ = v.BindEnv("postgres.poolSize", "POSTGRES_POOL_SIZE")

	// Настройки Redis
	_ = v.BindEnv("redis.host", "REDIS_HOST")
	_ = v.BindEnv("redis.port", "REDIS_PORT")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.db", "REDIS_DB")
	_ = v.BindEnv("redis.poolSize", "REDIS_POOL_SIZE")
	_ = v.BindEnv("redis.maxRetries", "REDIS_MAX_RETRIES")

	// Настройки Kafka
	_ = v.BindEnv("kafka.enabled", "KAFKA_ENABLED")
	_ = v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	_ = v.BindEnv("kafka.groupID", "KAFKA_GROUP_ID")
	_ = v.BindEnv("kafka.producerTopic", "KAFKA_PRODUCER_TOPIC")
	_ = v.BindEnv("kafka.consumerTopic", "KAFKA_CONSUMER_TOPIC")
	_ = v.BindEnv("kafka.autoOffsetReset", "KAFKA_AUTO_OFFSET_RESET")

	// Настройки метрик
	_ = v.BindEnv("metrics.enabled", "METRICS_ENABLED")
	_ = v.BindEnv("metrics.endpoint", "METRICS_ENDPOINT")
	_ = v.BindEnv("metrics.port", "METRICS_PORT")

	// Настройки безопасности
	_ = v.BindEnv("security.corsAllowOrigins", "CORS_ALLOW_ORIGINS")

	// Настройки отказоустойчивости
	_ = v.BindEnv("resilience.maxRetries", "RESILIENCE_MAX_RETRIES")
	_ = v.BindEnv("resilience.retryWaitTime", "RESILIENCE_RETRY_WAIT_TIME")
	_ = v.BindEnv("resilience.maxWaitTime", "RESILIENCE_MAX_WAIT_TIME")

	// Настройки Shopify
	_ = v.BindEnv("shopify.apiKey", "SHOPIFY_API_KEY")
	_ = v.BindEnv("shopify.apiSecret", "SHOPIFY_API_SECRET")
	_ = v.BindEnv("shopify.apiVersion", "SHOPIFY_API_VERSION")

	// Настройки каталога
	_ = v.BindEnv("catalog.pageSize", "CATALOG_PAGE_SIZE")
	_ = v.BindEnv("catalog.maxPages", "CATALOG_MAX_PAGES")
	_ = v.BindEnv("catalog.throttleThreshold", "CATALOG_THROTTLE_THRESHOLD")

	// Сервис приема данных
	_ = v.BindEnv("ingest.endpoint", "INGEST_ENDPOINT")
	_ = v.BindEnv("ingest.timeout", "INGEST_TIMEOUT")

	// Архив выгрузок
	_ = v.BindEnv("archive.enabled", "ARCHIVE_ENABLED")
	_ = v.BindEnv("archive.bucket", "ARCHIVE_BUCKET")
	_ = v.BindEnv("archive.region", "ARCHIVE_REGION", "AWS_REGION")
	_ = v.BindEnv("archive.prefix", "ARCHIVE_PREFIX")
	_ = v.BindEnv("archive.endpoint", "ARCHIVE_ENDPOINT")

	// Подписки
	_ = v.BindEnv("entitlement.cacheTTL", "ENTITLEMENT_CACHE_TTL")
}
