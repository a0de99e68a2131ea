package probe

import (
	"github.com/jonwraymond/healthprobe/config"
	"github.com/jonwraymond/healthprobe/health"
)

// Check names.
const (
	RedisCheck         = "redis"
	DatabaseCheck      = "database"
	CacheCheck         = "cache"
	LocalCacheCheck    = "local_cache"
	ElasticsearchCheck = "elasticsearch"
	RabbitMQCheck      = "rabbitmq"
	TaskQueueCheck     = "task_queue"
	MongoDBCheck       = "mongodb"
	KafkaCheck         = "kafka"
	CustomURLsCheck    = "custom_urls"
)

// Specs returns the enablement rule of every dependency check, in
// report order.
func Specs() []health.CheckSpec {
	return []health.CheckSpec{
		{Name: RedisCheck, EnabledFlag: config.KeyEnableRedis, RequiredSettings: []string{config.KeyRedisHost}},
		{Name: DatabaseCheck, EnabledFlag: config.KeyEnableDB, RequiredSettings: []string{config.KeyDatabaseURL}},
		{Name: CacheCheck, EnabledFlag: config.KeyEnableCache, RequiredSettings: []string{config.KeyCacheURL}},
		{Name: LocalCacheCheck, EnabledFlag: config.KeyEnableLocalCache},
		{Name: ElasticsearchCheck, EnabledFlag: config.KeyEnableElasticsearch, RequiredSettings: []string{config.KeyElasticsearchHost}},
		{Name: RabbitMQCheck, EnabledFlag: config.KeyEnableRabbitMQ, RequiredSettings: []string{config.KeyRabbitMQHost}},
		{Name: TaskQueueCheck, EnabledFlag: config.KeyEnableTaskQueue, RequiredSettings: []string{config.KeyTaskQueueBrokerURL}},
		{Name: MongoDBCheck, EnabledFlag: config.KeyEnableMongoDB, RequiredSettings: []string{config.KeyMongoDBURI}},
		{Name: KafkaCheck, EnabledFlag: config.KeyEnableKafka, RequiredSettings: []string{config.KeyKafkaBrokers}},
		{Name: CustomURLsCheck, RequiredSettings: []string{config.KeyCustomURLs}},
	}
}

// Checks binds every spec to its probe over clients. A non-nil reg
// receives the specs and gates each probe, so a disabled check stays
// inert even when its probe is called directly.
func Checks(clients *Clients, s *config.Settings, reg *health.Registry) []health.Check {
	cacheTTL := s.Duration(config.KeyCacheTTL, config.DefaultCacheTTL)

	probes := map[string]health.ProbeFunc{
		RedisCheck:         RedisProbe(clients),
		DatabaseCheck:      DatabaseProbe(clients, s.String(config.KeyDatabaseDriver, config.DefaultDatabaseDriver)),
		CacheCheck:         CacheProbe(clients, cacheTTL),
		LocalCacheCheck:    LocalCacheProbe(clients, cacheTTL),
		ElasticsearchCheck: ElasticsearchProbe(clients),
		RabbitMQCheck:      RabbitMQProbe(clients),
		TaskQueueCheck:     TaskQueueProbe(clients),
		MongoDBCheck:       MongoDBProbe(clients),
		KafkaCheck:         KafkaProbe(clients),
		CustomURLsCheck:    URLsProbe(clients, s.Strings(config.KeyCustomURLs)),
	}

	specs := Specs()
	checks := make([]health.Check, 0, len(specs))
	for _, spec := range specs {
		p := probes[spec.Name]
		if reg != nil {
			reg.Add(spec)
			p = reg.Gate(spec.Name, p)
		}
		checks = append(checks, health.Check{Spec: spec, Probe: p})
	}
	return checks
}
