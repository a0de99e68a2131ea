package probe

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/go-sql-driver/mysql"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jonwraymond/healthprobe/cache"
	"github.com/jonwraymond/healthprobe/config"
	"github.com/jonwraymond/healthprobe/resilience"
)

// Factory constructs dependency clients, one function per kind.
// A nil function reports the kind as not configured.
type Factory struct {
	Redis         func() (redis.UniversalClient, error)
	Database      func() (DB, error)
	Cache         func() (cache.Cache, error)
	LocalCache    func() (cache.Cache, error)
	Elasticsearch func() (*elasticsearch.Client, error)
	RabbitMQ      func() (AMQPConn, error)
	TaskQueue     func() (WorkerInspector, error)
	MongoDB       func() (MongoClient, error)
	Kafka         func() (KafkaClient, error)
	HTTP          func() (*URLChecker, error)
}

// DefaultFactory builds real clients from settings. Every client uses
// DEFAULT_TIMEOUT for its dial and I/O budget.
func DefaultFactory(s *config.Settings) Factory {
	timeout := s.Duration(config.KeyDefaultTimeout, config.DefaultTimeout)

	return Factory{
		Redis: func() (redis.UniversalClient, error) {
			return NewRedisClient(s, timeout), nil
		},
		Database: func() (DB, error) {
			return OpenDatabase(
				s.String(config.KeyDatabaseDriver, config.DefaultDatabaseDriver),
				s.String(config.KeyDatabaseURL, ""),
				timeout,
			)
		},
		Cache: func() (cache.Cache, error) {
			c, err := cache.NewRedisCacheFromURL(s.String(config.KeyCacheURL, ""), timeout)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
		LocalCache: func() (cache.Cache, error) {
			return cache.NewMemoryCache(), nil
		},
		Elasticsearch: func() (*elasticsearch.Client, error) {
			return NewElasticsearchClient(s, timeout)
		},
		RabbitMQ: func() (AMQPConn, error) {
			return DialRabbitMQ(RabbitMQURL(s), timeout)
		},
		TaskQueue: func() (WorkerInspector, error) {
			return NewTaskQueueInspector(s.String(config.KeyTaskQueueBrokerURL, ""), timeout)
		},
		MongoDB: func() (MongoClient, error) {
			return ConnectMongo(s.String(config.KeyMongoDBURI, ""), timeout)
		},
		Kafka: func() (KafkaClient, error) {
			return NewKafkaClient(s.Strings(config.KeyKafkaBrokers), timeout)
		},
		HTTP: func() (*URLChecker, error) {
			return NewURLChecker(nil, s.Duration(config.KeyURLCheckTimeout, config.DefaultURLCheckTimeout),
				resilience.NewRetry(resilience.RetryConfig{
					MaxAttempts:  s.Int(config.KeyURLCheckRetries, config.DefaultURLCheckRetries),
					InitialDelay: s.Duration(config.KeyURLCheckBackoff, config.DefaultURLCheckBackoff),
					Multiplier:   2,
					RetryIf:      IsTransportError,
				})), nil
		},
	}
}

// NewRedisClient connects lazily to REDIS_HOST:REDIS_PORT.
func NewRedisClient(s *config.Settings, timeout time.Duration) *redis.Client {
	addr := net.JoinHostPort(
		s.String(config.KeyRedisHost, "localhost"),
		strconv.Itoa(s.Int(config.KeyRedisPort, config.DefaultRedisPort)),
	)
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DB:           s.Int(config.KeyRedisDB, 0),
		Password:     s.String(config.KeyRedisPassword, ""),
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		PoolSize:     2,
	})
}

// OpenDatabase opens a pool for driver ("postgres" or "mysql"). Neither
// driver dials until the first ping.
func OpenDatabase(driver, url string, timeout time.Duration) (DB, error) {
	switch driver {
	case "postgres", "":
		cfg, err := pgxpool.ParseConfig(url)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSetting, config.KeyDatabaseURL, err)
		}
		cfg.ConnConfig.ConnectTimeout = timeout
		cfg.MaxConns = 2
		pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		return pgxDB{pool: pool}, nil

	case "mysql":
		cfg, err := mysql.ParseDSN(url)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSetting, config.KeyDatabaseURL, err)
		}
		cfg.Timeout = timeout
		cfg.ReadTimeout = timeout
		cfg.WriteTimeout = timeout
		connector, err := mysql.NewConnector(cfg)
		if err != nil {
			return nil, err
		}
		db := sql.OpenDB(connector)
		db.SetMaxOpenConns(2)
		return sqlDB{db: db}, nil

	default:
		return nil, fmt.Errorf("%w: %s %q", ErrInvalidSetting, config.KeyDatabaseDriver, driver)
	}
}

type pgxDB struct{ pool *pgxpool.Pool }

func (d pgxDB) Ping(ctx context.Context) error { return d.pool.Ping(ctx) }

func (d pgxDB) Close() error {
	d.pool.Close()
	return nil
}

type sqlDB struct{ db *sql.DB }

func (d sqlDB) Ping(ctx context.Context) error { return d.db.PingContext(ctx) }

func (d sqlDB) Close() error { return d.db.Close() }

// NewElasticsearchClient builds a client for ELASTICSEARCH_HOST. Retries
// are disabled so a ping is one request.
func NewElasticsearchClient(s *config.Settings, timeout time.Duration) (*elasticsearch.Client, error) {
	host := s.String(config.KeyElasticsearchHost, "")
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    []string{host},
		Username:     s.String(config.KeyElasticsearchUsername, ""),
		Password:     s.String(config.KeyElasticsearchPassword, ""),
		DisableRetry: true,
		Transport: &http.Transport{
			DialContext:           (&net.Dialer{Timeout: timeout}).DialContext,
			ResponseHeaderTimeout: timeout,
		},
	})
}

// RabbitMQURL builds the broker URL from the RABBITMQ_* settings.
// A host that is already an amqp URL is used as-is.
func RabbitMQURL(s *config.Settings) string {
	host := s.String(config.KeyRabbitMQHost, "localhost")
	if strings.HasPrefix(host, "amqp://") || strings.HasPrefix(host, "amqps://") {
		return host
	}
	return amqp.URI{
		Scheme:   "amqp",
		Host:     host,
		Port:     s.Int(config.KeyRabbitMQPort, config.DefaultRabbitMQPort),
		Username: s.String(config.KeyRabbitMQUser, "guest"),
		Password: s.String(config.KeyRabbitMQPassword, "guest"),
		Vhost:    s.String(config.KeyRabbitMQVHost, "/"),
	}.String()
}

// DialRabbitMQ opens a broker connection.
func DialRabbitMQ(url string, timeout time.Duration) (AMQPConn, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Dial:   amqp.DefaultDial(timeout),
		Locale: "en_US",
	})
	if err != nil {
		return nil, err
	}
	return amqpConn{conn: conn}, nil
}

type amqpConn struct{ conn *amqp.Connection }

func (c amqpConn) OpenChannel() (io.Closer, error) {
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func (c amqpConn) Close() error { return c.conn.Close() }

// NewTaskQueueInspector builds an inspector for the broker at url
// (redis://[:password@]host:port/db).
func NewTaskQueueInspector(url string, timeout time.Duration) (WorkerInspector, error) {
	opt, err := asynq.ParseRedisURI(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSetting, config.KeyTaskQueueBrokerURL, err)
	}
	if o, ok := opt.(asynq.RedisClientOpt); ok {
		o.DialTimeout = timeout
		o.ReadTimeout = timeout
		o.WriteTimeout = timeout
		opt = o
	}
	return asynq.NewInspector(opt), nil
}

// ConnectMongo creates a client for uri. The driver connects in the
// background; Ping reports reachability.
func ConnectMongo(uri string, timeout time.Duration) (MongoClient, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(timeout).
		SetConnectTimeout(timeout)
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// NewKafkaClient creates a client seeded with brokers.
func NewKafkaClient(brokers []string, timeout time.Duration) (KafkaClient, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrInvalidSetting, config.KeyKafkaBrokers)
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DialTimeout(timeout),
		kgo.RequestTimeoutOverhead(timeout),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}
