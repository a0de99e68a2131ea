package probe

// Kind identifies a dependency client.
type Kind string

const (
	KindRedis         Kind = "redis"
	KindDatabase      Kind = "database"
	KindCache         Kind = "cache"
	KindLocalCache    Kind = "local_cache"
	KindElasticsearch Kind = "elasticsearch"
	KindRabbitMQ      Kind = "rabbitmq"
	KindTaskQueue     Kind = "task_queue"
	KindMongoDB       Kind = "mongodb"
	KindKafka         Kind = "kafka"
	KindHTTP          Kind = "http"
)

// Kinds lists every client kind.
var Kinds = []Kind{
	KindRedis, KindDatabase, KindCache, KindLocalCache, KindElasticsearch,
	KindRabbitMQ, KindTaskQueue, KindMongoDB, KindKafka, KindHTTP,
}

func (k Kind) String() string { return string(k) }
