package probe

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/jonwraymond/healthprobe/cache"
	"github.com/jonwraymond/healthprobe/health"
)

// DB is a pooled SQL handle.
type DB interface {
	Ping(ctx context.Context) error
	Close() error
}

// AMQPConn is an open broker connection.
type AMQPConn interface {
	// OpenChannel opens a channel on the connection. The caller closes it.
	OpenChannel() (io.Closer, error)
	Close() error
}

// WorkerInspector lists the live task queue worker servers.
type WorkerInspector interface {
	Servers() ([]*asynq.ServerInfo, error)
	Close() error
}

// MongoClient is a connected MongoDB client.
type MongoClient interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
	Disconnect(ctx context.Context) error
}

// KafkaClient is a Kafka client able to reach a broker.
type KafkaClient interface {
	Ping(ctx context.Context) error
	Close()
}

// Clients holds one lazily built handle per dependency kind.
//
// Contract:
//   - Concurrency: safe for concurrent use; a handle is constructed at most
//     once even under concurrent first use.
//   - Errors: construction failures are returned to the caller and not
//     remembered; the next call tries again.
//   - Ownership: handles are never rebuilt after a failed ping. Close
//     releases every constructed handle.
type Clients struct {
	factory Factory

	redis         slot[redis.UniversalClient]
	database      slot[DB]
	cache         slot[cache.Cache]
	localCache    slot[cache.Cache]
	elasticsearch slot[*elasticsearch.Client]
	rabbitmq      slot[AMQPConn]
	taskQueue     slot[WorkerInspector]
	mongodb       slot[MongoClient]
	kafka         slot[KafkaClient]
	http          slot[*URLChecker]
}

// NewClients creates a client set built by factory.
func NewClients(factory Factory) *Clients {
	return &Clients{factory: factory}
}

// Redis returns the Redis client.
func (c *Clients) Redis() (redis.UniversalClient, error) {
	return c.redis.get(builder(KindRedis, c.factory.Redis))
}

// Database returns the SQL pool.
func (c *Clients) Database() (DB, error) {
	return c.database.get(builder(KindDatabase, c.factory.Database))
}

// Cache returns the shared Redis-backed cache.
func (c *Clients) Cache() (cache.Cache, error) {
	return c.cache.get(builder(KindCache, c.factory.Cache))
}

// LocalCache returns the in-process cache.
func (c *Clients) LocalCache() (cache.Cache, error) {
	return c.localCache.get(builder(KindLocalCache, c.factory.LocalCache))
}

// Elasticsearch returns the search client.
func (c *Clients) Elasticsearch() (*elasticsearch.Client, error) {
	return c.elasticsearch.get(builder(KindElasticsearch, c.factory.Elasticsearch))
}

// RabbitMQ returns the broker connection.
func (c *Clients) RabbitMQ() (AMQPConn, error) {
	return c.rabbitmq.get(builder(KindRabbitMQ, c.factory.RabbitMQ))
}

// TaskQueue returns the worker inspector.
func (c *Clients) TaskQueue() (WorkerInspector, error) {
	return c.taskQueue.get(builder(KindTaskQueue, c.factory.TaskQueue))
}

// MongoDB returns the MongoDB client.
func (c *Clients) MongoDB() (MongoClient, error) {
	return c.mongodb.get(builder(KindMongoDB, c.factory.MongoDB))
}

// Kafka returns the Kafka client.
func (c *Clients) Kafka() (KafkaClient, error) {
	return c.kafka.get(builder(KindKafka, c.factory.Kafka))
}

// HTTP returns the URL checker.
func (c *Clients) HTTP() (*URLChecker, error) {
	return c.http.get(builder(KindHTTP, c.factory.HTTP))
}

// Get returns the handle for kind.
func (c *Clients) Get(kind Kind) (any, error) {
	switch kind {
	case KindRedis:
		return c.Redis()
	case KindDatabase:
		return c.Database()
	case KindCache:
		return c.Cache()
	case KindLocalCache:
		return c.LocalCache()
	case KindElasticsearch:
		return c.Elasticsearch()
	case KindRabbitMQ:
		return c.RabbitMQ()
	case KindTaskQueue:
		return c.TaskQueue()
	case KindMongoDB:
		return c.MongoDB()
	case KindKafka:
		return c.Kafka()
	case KindHTTP:
		return c.HTTP()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Close releases every constructed handle and empties the slots.
func (c *Clients) Close(ctx context.Context) error {
	var errs []error
	closeErr := func(kind Kind, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", kind, err))
		}
	}

	if v, ok := c.redis.take(); ok {
		closeErr(KindRedis, v.Close())
	}
	if v, ok := c.database.take(); ok {
		closeErr(KindDatabase, v.Close())
	}
	for kind, s := range map[Kind]*slot[cache.Cache]{KindCache: &c.cache, KindLocalCache: &c.localCache} {
		if v, ok := s.take(); ok {
			if closer, ok := v.(io.Closer); ok {
				closeErr(kind, closer.Close())
			}
		}
	}
	c.elasticsearch.take()
	if v, ok := c.rabbitmq.take(); ok {
		closeErr(KindRabbitMQ, v.Close())
	}
	if v, ok := c.taskQueue.take(); ok {
		closeErr(KindTaskQueue, v.Close())
	}
	if v, ok := c.mongodb.take(); ok {
		closeErr(KindMongoDB, v.Disconnect(ctx))
	}
	if v, ok := c.kafka.take(); ok {
		v.Close()
	}
	c.http.take()

	return errors.Join(errs...)
}

// builder adapts a factory function to a slot constructor. A missing
// function means the dependency is not configured.
func builder[T any](kind Kind, fn func() (T, error)) func() (T, error) {
	return func() (T, error) {
		if fn == nil {
			var zero T
			return zero, health.NotConfiguredError(fmt.Sprintf("no %s client configured", kind))
		}
		return fn()
	}
}
