package config

import "time"

// Configuration keys. The key space is flat and upper-case so every key
// can also be supplied through the environment.
const (
	KeyConfigFile = "HEALTHPROBE_CONFIG"

	KeyHTTPAddr              = "HTTP_ADDR"
	KeyServiceName           = "SERVICE_NAME"
	KeyLogLevel              = "LOG_LEVEL"
	KeyLogFile               = "LOG_FILE"
	KeyMetricsExporter       = "METRICS_EXPORTER"
	KeyTracingExporter       = "TRACING_EXPORTER"
	KeyTracingSamplePct      = "TRACING_SAMPLE_PCT"
	KeyEnableHistogram       = "ENABLE_HISTOGRAM_METRICS"
	KeyDefaultTimeout        = "DEFAULT_TIMEOUT"
	KeyThreadJoinTimeout     = "THREAD_JOIN_TIMEOUT"
	KeyMaxConcurrentChecks   = "MAX_CONCURRENT_CHECKS"
	KeyCPUSampleInterval     = "CPU_SAMPLE_INTERVAL"
	KeyMemoryCriticalPercent = "MEMORY_CRITICAL_PERCENT"
	KeySecretsDir            = "SECRETS_DIR"

	KeyEnableRedis         = "ENABLE_REDIS_CHECK"
	KeyEnableDB            = "ENABLE_DB_CHECK"
	KeyEnableCache         = "ENABLE_CACHE_CHECK"
	KeyEnableLocalCache    = "ENABLE_LOCAL_CACHE_CHECK"
	KeyEnableElasticsearch = "ENABLE_ELASTICSEARCH_CHECK"
	KeyEnableRabbitMQ      = "ENABLE_RABBITMQ_CHECK"
	KeyEnableTaskQueue     = "ENABLE_TASK_QUEUE_CHECK"
	KeyEnableMongoDB       = "ENABLE_MONGODB_CHECK"
	KeyEnableKafka         = "ENABLE_KAFKA_CHECK"

	KeyRedisHost     = "REDIS_HOST"
	KeyRedisPort     = "REDIS_PORT"
	KeyRedisDB       = "REDIS_DB"
	KeyRedisPassword = "REDIS_PASSWORD"

	KeyDatabaseDriver = "DATABASE_DRIVER"
	KeyDatabaseURL    = "DATABASE_URL"

	KeyCacheURL = "CACHE_URL"
	KeyCacheTTL = "CACHE_TTL"

	KeyElasticsearchHost     = "ELASTICSEARCH_HOST"
	KeyElasticsearchUsername = "ELASTICSEARCH_USERNAME"
	KeyElasticsearchPassword = "ELASTICSEARCH_PASSWORD"

	KeyRabbitMQHost     = "RABBITMQ_HOST"
	KeyRabbitMQPort     = "RABBITMQ_PORT"
	KeyRabbitMQUser     = "RABBITMQ_USER"
	KeyRabbitMQPassword = "RABBITMQ_PASSWORD"
	KeyRabbitMQVHost    = "RABBITMQ_VHOST"

	KeyTaskQueueBrokerURL = "TASK_QUEUE_BROKER_URL"
	KeyMongoDBURI         = "MONGODB_URI"
	KeyKafkaBrokers       = "KAFKA_BROKERS"

	KeyCustomURLs      = "CUSTOM_URLS_TO_CHECK"
	KeyURLCheckTimeout = "URL_CHECK_TIMEOUT"
	KeyURLCheckRetries = "URL_CHECK_RETRIES"
	KeyURLCheckBackoff = "URL_CHECK_BACKOFF"
)

// Default configuration constants.
const (
	DefaultHTTPAddr              = ":8000"
	DefaultServiceName           = "healthprobe"
	DefaultLogLevel              = "info"
	DefaultMetricsExporter       = "prometheus"
	DefaultTracingExporter       = "none"
	DefaultTracingSamplePct      = 1.0
	DefaultTimeout               = 5 * time.Second
	DefaultThreadJoinTimeout     = 10 * time.Second
	DefaultMaxConcurrentChecks   = 10
	DefaultCPUSampleInterval     = time.Second
	DefaultMemoryCriticalPercent = 95.0
	DefaultSecretsDir            = "/run/secrets"
	DefaultDatabaseDriver        = "postgres"
	DefaultRedisPort             = 6379
	DefaultRabbitMQPort          = 5672
	DefaultCacheTTL              = time.Second
	DefaultURLCheckTimeout       = 2 * time.Second
	DefaultURLCheckRetries       = 3
	DefaultURLCheckBackoff       = 300 * time.Millisecond
)

// Keys lists every key read from the environment.
var Keys = []string{
	KeyHTTPAddr, KeyServiceName, KeyLogLevel, KeyLogFile,
	KeyMetricsExporter, KeyTracingExporter, KeyTracingSamplePct, KeyEnableHistogram,
	KeyDefaultTimeout, KeyThreadJoinTimeout, KeyMaxConcurrentChecks,
	KeyCPUSampleInterval, KeyMemoryCriticalPercent, KeySecretsDir,

	KeyEnableRedis, KeyEnableDB, KeyEnableCache, KeyEnableLocalCache,
	KeyEnableElasticsearch, KeyEnableRabbitMQ, KeyEnableTaskQueue,
	KeyEnableMongoDB, KeyEnableKafka,

	KeyRedisHost, KeyRedisPort, KeyRedisDB, KeyRedisPassword,
	KeyDatabaseDriver, KeyDatabaseURL,
	KeyCacheURL, KeyCacheTTL,
	KeyElasticsearchHost, KeyElasticsearchUsername, KeyElasticsearchPassword,
	KeyRabbitMQHost, KeyRabbitMQPort, KeyRabbitMQUser, KeyRabbitMQPassword, KeyRabbitMQVHost,
	KeyTaskQueueBrokerURL, KeyMongoDBURI, KeyKafkaBrokers,
	KeyCustomURLs, KeyURLCheckTimeout, KeyURLCheckRetries, KeyURLCheckBackoff,
}

// positiveDurationKeys must not be zero. A zero cache TTL never stores,
// so the round-trip checks would always report a mismatch.
var positiveDurationKeys = []string{KeyCacheTTL}

// durationKeys and intKeys are validated on Load.
var (
	durationKeys = []string{
		KeyDefaultTimeout, KeyThreadJoinTimeout, KeyCPUSampleInterval,
		KeyCacheTTL, KeyURLCheckTimeout, KeyURLCheckBackoff,
	}
	intKeys = []string{
		KeyMaxConcurrentChecks, KeyRedisPort, KeyRedisDB, KeyRabbitMQPort, KeyURLCheckRetries,
	}
	floatKeys = []string{
		KeyTracingSamplePct, KeyMemoryCriticalPercent,
	}
)
