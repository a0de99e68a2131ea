package probe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/hibiken/asynq"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/jonwraymond/healthprobe/cache"
	"github.com/jonwraymond/healthprobe/health"
	"github.com/jonwraymond/healthprobe/internal/redisfake"
)

func run(t *testing.T, name string, probe health.ProbeFunc) health.Result {
	t.Helper()
	return health.NewRunner(nil).Run(context.Background(), health.Check{
		Spec:  health.CheckSpec{Name: name},
		Probe: probe,
	})
}

func TestRedisProbe(t *testing.T) {
	fake := redisfake.New()
	clients := NewClients(Factory{
		Redis: func() (redis.UniversalClient, error) { return fake.Client(), nil },
	})

	if r := run(t, RedisCheck, RedisProbe(clients)); r.Status != health.StatusHealthy {
		t.Fatalf("status = %v, want healthy (%s)", r.Status, r.Message)
	}

	fake.Fail(errRefused)
	r := run(t, RedisCheck, RedisProbe(clients))
	if r.Status != health.StatusUnhealthy {
		t.Fatalf("status = %v, want unhealthy", r.Status)
	}
	if r.Message != MsgRedisUnreachable {
		t.Errorf("message = %q, want %q", r.Message, MsgRedisUnreachable)
	}
	if r.Fault != health.FaultConnection {
		t.Errorf("fault = %v, want connection", r.Fault)
	}
	if r.Duration != 0 {
		t.Errorf("duration = %v, want 0 on failure", r.Duration)
	}
}

func TestCacheProbe(t *testing.T) {
	fake := redisfake.New()
	clients := NewClients(Factory{
		Cache: func() (cache.Cache, error) { return cache.NewRedisCache(fake.Client()), nil },
	})
	probe := CacheProbe(clients, time.Second)

	r := run(t, CacheCheck, probe)
	if r.Status != health.StatusHealthy {
		t.Fatalf("status = %v, want healthy (%s)", r.Status, r.Message)
	}
	if fake.Len() != 0 {
		t.Errorf("probe left %d keys behind", fake.Len())
	}

	fake.Corrupt.Store(true)
	r = run(t, CacheCheck, probe)
	if r.Status != health.StatusUnhealthy || r.Message != MsgCacheMismatch {
		t.Errorf("corrupt read = %v %q, want unhealthy %q", r.Status, r.Message, MsgCacheMismatch)
	}
	if r.Duration <= 0 {
		t.Error("a reported problem keeps the measured duration")
	}

	fake.Corrupt.Store(false)
	fake.Fail(errRefused)
	r = run(t, CacheCheck, probe)
	if r.Status != health.StatusUnhealthy || r.Fault != health.FaultConnection {
		t.Errorf("failing backend = %v %v, want unhealthy connection", r.Status, r.Fault)
	}
}

func TestLocalCacheProbe(t *testing.T) {
	clients := NewClients(Factory{
		LocalCache: func() (cache.Cache, error) { return cache.NewMemoryCache(), nil },
	})
	if r := run(t, LocalCacheCheck, LocalCacheProbe(clients, time.Second)); r.Status != health.StatusHealthy {
		t.Errorf("status = %v, want healthy (%s)", r.Status, r.Message)
	}

	// A zero TTL never stores, so the read-back misses.
	r := run(t, LocalCacheCheck, LocalCacheProbe(clients, 0))
	if r.Message != MsgLocalCacheMismatch {
		t.Errorf("message = %q, want %q", r.Message, MsgLocalCacheMismatch)
	}
}

func TestDatabaseProbe(t *testing.T) {
	db := &fakeDB{}
	clients := NewClients(Factory{Database: func() (DB, error) { return db, nil }})

	r := run(t, DatabaseCheck, DatabaseProbe(clients, "postgres"))
	if r.Status != health.StatusHealthy || r.Details["driver"] != "postgres" {
		t.Fatalf("result = %+v", r)
	}

	db.err = errRefused
	r = run(t, DatabaseCheck, DatabaseProbe(clients, "postgres"))
	if r.Status != health.StatusUnhealthy || r.Message != errRefused.Error() {
		t.Errorf("result = %v %q", r.Status, r.Message)
	}
	if r.Fault != health.FaultConnection {
		t.Errorf("fault = %v, want connection", r.Fault)
	}

	db.err = context.DeadlineExceeded
	if r := run(t, DatabaseCheck, DatabaseProbe(clients, "postgres")); r.Fault != health.FaultTimeout {
		t.Errorf("fault = %v, want timeout", r.Fault)
	}
}

func newElasticsearchClient(t *testing.T, status int) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead || r.URL.Path != "/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}, DisableRetry: true})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return es
}

func TestElasticsearchProbe(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		want    health.Status
		message string
	}{
		{name: "ok", status: http.StatusOK, want: health.StatusHealthy},
		{name: "server error", status: http.StatusInternalServerError, want: health.StatusUnhealthy, message: MsgElasticsearchPing},
		{name: "unauthorized", status: http.StatusUnauthorized, want: health.StatusUnhealthy, message: MsgElasticsearchPing},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			es := newElasticsearchClient(t, tc.status)
			clients := NewClients(Factory{
				Elasticsearch: func() (*elasticsearch.Client, error) { return es, nil },
			})

			r := run(t, ElasticsearchCheck, ElasticsearchProbe(clients))
			if r.Status != tc.want {
				t.Fatalf("status = %v, want %v (%s)", r.Status, tc.want, r.Message)
			}
			if r.Message != tc.message {
				t.Errorf("message = %q, want %q", r.Message, tc.message)
			}
		})
	}
}

func TestElasticsearchProbe_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{addr}, DisableRetry: true})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	clients := NewClients(Factory{Elasticsearch: func() (*elasticsearch.Client, error) { return es, nil }})

	r := run(t, ElasticsearchCheck, ElasticsearchProbe(clients))
	if r.Status != health.StatusUnhealthy || r.Fault != health.FaultConnection {
		t.Errorf("result = %v %v, want unhealthy connection", r.Status, r.Fault)
	}
}

func TestRabbitMQProbe(t *testing.T) {
	conn := &fakeAMQP{}
	clients := NewClients(Factory{RabbitMQ: func() (AMQPConn, error) { return conn, nil }})

	if r := run(t, RabbitMQCheck, RabbitMQProbe(clients)); r.Status != health.StatusHealthy {
		t.Fatalf("status = %v (%s)", r.Status, r.Message)
	}
	if conn.opened.Load() != 1 {
		t.Errorf("channels opened = %d, want 1", conn.opened.Load())
	}

	conn.openErr = errors.New("channel/connection is not open")
	if r := run(t, RabbitMQCheck, RabbitMQProbe(clients)); r.Status != health.StatusUnhealthy {
		t.Errorf("status = %v, want unhealthy", r.Status)
	}
}

func TestRabbitMQProbe_DialFailure(t *testing.T) {
	clients := NewClients(Factory{RabbitMQ: func() (AMQPConn, error) { return nil, errRefused }})

	r := run(t, RabbitMQCheck, RabbitMQProbe(clients))
	if r.Status != health.StatusUnhealthy || r.Fault != health.FaultConnection {
		t.Errorf("result = %v %v, want unhealthy connection", r.Status, r.Fault)
	}
}

func TestRabbitMQProbe_CredentialsRefused(t *testing.T) {
	clients := NewClients(Factory{RabbitMQ: func() (AMQPConn, error) { return nil, amqp.ErrCredentials }})

	r := run(t, RabbitMQCheck, RabbitMQProbe(clients))
	if r.Status != health.StatusUnhealthy || r.Fault != health.FaultProtocol {
		t.Errorf("result = %v %v, want unhealthy protocol", r.Status, r.Fault)
	}
}

func TestTaskQueueProbe(t *testing.T) {
	insp := &fakeInspector{servers: []*asynq.ServerInfo{
		{Host: "w1", ActiveWorkers: []*asynq.WorkerInfo{{}, {}}},
		{Host: "w2"},
	}}
	clients := NewClients(Factory{TaskQueue: func() (WorkerInspector, error) { return insp, nil }})

	r := run(t, TaskQueueCheck, TaskQueueProbe(clients))
	if r.Status != health.StatusHealthy {
		t.Fatalf("status = %v (%s)", r.Status, r.Message)
	}
	if r.Details["servers"] != 2 || r.Details["active_workers"] != 2 {
		t.Errorf("details = %v", r.Details)
	}

	insp.servers = nil
	r = run(t, TaskQueueCheck, TaskQueueProbe(clients))
	if r.Status != health.StatusUnhealthy || r.Message != MsgTaskQueueNoResponder {
		t.Errorf("result = %v %q", r.Status, r.Message)
	}

	insp.err = errRefused
	if r := run(t, TaskQueueCheck, TaskQueueProbe(clients)); r.Fault != health.FaultConnection {
		t.Errorf("fault = %v, want connection", r.Fault)
	}
}

func TestMongoDBProbe(t *testing.T) {
	m := &fakeMongo{}
	clients := NewClients(Factory{MongoDB: func() (MongoClient, error) { return m, nil }})

	if r := run(t, MongoDBCheck, MongoDBProbe(clients)); r.Status != health.StatusHealthy {
		t.Fatalf("status = %v (%s)", r.Status, r.Message)
	}
	m.err = context.DeadlineExceeded
	if r := run(t, MongoDBCheck, MongoDBProbe(clients)); r.Fault != health.FaultTimeout {
		t.Errorf("fault = %v, want timeout", r.Fault)
	}
}

func TestKafkaProbe(t *testing.T) {
	k := &fakeKafka{}
	clients := NewClients(Factory{Kafka: func() (KafkaClient, error) { return k, nil }})

	if r := run(t, KafkaCheck, KafkaProbe(clients)); r.Status != health.StatusHealthy {
		t.Fatalf("status = %v (%s)", r.Status, r.Message)
	}
	k.err = errRefused
	if r := run(t, KafkaCheck, KafkaProbe(clients)); r.Status != health.StatusUnhealthy {
		t.Errorf("status = %v, want unhealthy", r.Status)
	}
}

func TestProbe_UnconfiguredClientIsNotConnected(t *testing.T) {
	clients := NewClients(Factory{})
	probes := map[string]health.ProbeFunc{
		RedisCheck:   RedisProbe(clients),
		KafkaCheck:   KafkaProbe(clients),
		MongoDBCheck: MongoDBProbe(clients),
	}
	for name, p := range probes {
		if r := run(t, name, p); r.Status != health.StatusNotConfigured {
			t.Errorf("%s status = %v, want not_connected", name, r.Status)
		}
	}
}
