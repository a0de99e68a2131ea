package probe

import (
	"context"
	"io"
	"net"
	"os"
	"sync/atomic"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/jonwraymond/healthprobe/cache"
	"github.com/jonwraymond/healthprobe/internal/redisfake"
)

var errRefused error = &net.OpError{
	Op:   "dial",
	Net:  "tcp",
	Addr: &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 1},
	Err:  os.NewSyscallError("connect", syscall.ECONNREFUSED),
}

type fakeDB struct {
	err    error
	closed atomic.Bool
}

func (d *fakeDB) Ping(context.Context) error { return d.err }
func (d *fakeDB) Close() error               { d.closed.Store(true); return nil }

type fakeChannel struct{ err error }

func (c fakeChannel) Close() error { return c.err }

type fakeAMQP struct {
	openErr  error
	closeErr error
	opened   atomic.Int64
	closed   atomic.Bool
}

func (a *fakeAMQP) OpenChannel() (io.Closer, error) {
	if a.openErr != nil {
		return nil, a.openErr
	}
	a.opened.Add(1)
	return fakeChannel{err: a.closeErr}, nil
}

func (a *fakeAMQP) Close() error { a.closed.Store(true); return nil }

type fakeInspector struct {
	servers []*asynq.ServerInfo
	err     error
}

func (i *fakeInspector) Servers() ([]*asynq.ServerInfo, error) { return i.servers, i.err }
func (i *fakeInspector) Close() error                          { return nil }

type fakeMongo struct {
	err          error
	disconnected atomic.Bool
}

func (m *fakeMongo) Ping(context.Context, *readpref.ReadPref) error { return m.err }
func (m *fakeMongo) Disconnect(context.Context) error {
	m.disconnected.Store(true)
	return nil
}

type fakeKafka struct {
	err    error
	closed atomic.Bool
}

func (k *fakeKafka) Ping(context.Context) error { return k.err }
func (k *fakeKafka) Close()                     { k.closed.Store(true) }

// spyFactory counts constructions per kind.
type spyFactory struct {
	counts map[Kind]*atomic.Int64
}

func newSpyFactory() *spyFactory {
	counts := make(map[Kind]*atomic.Int64, len(Kinds))
	for _, k := range Kinds {
		counts[k] = &atomic.Int64{}
	}
	return &spyFactory{counts: counts}
}

func (s *spyFactory) count(k Kind) int64 { return s.counts[k].Load() }

func (s *spyFactory) total() int64 {
	var n int64
	for _, c := range s.counts {
		n += c.Load()
	}
	return n
}

// factory returns a Factory whose constructors count and hand out fakes.
func (s *spyFactory) factory(fake *redisfake.Hook) Factory {
	return Factory{
		Redis: func() (redis.UniversalClient, error) {
			s.counts[KindRedis].Add(1)
			return fake.Client(), nil
		},
		Database: func() (DB, error) {
			s.counts[KindDatabase].Add(1)
			return &fakeDB{}, nil
		},
		Cache: func() (cache.Cache, error) {
			s.counts[KindCache].Add(1)
			return cache.NewRedisCache(fake.Client()), nil
		},
		LocalCache: func() (cache.Cache, error) {
			s.counts[KindLocalCache].Add(1)
			return cache.NewMemoryCache(), nil
		},
		RabbitMQ: func() (AMQPConn, error) {
			s.counts[KindRabbitMQ].Add(1)
			return &fakeAMQP{}, nil
		},
		TaskQueue: func() (WorkerInspector, error) {
			s.counts[KindTaskQueue].Add(1)
			return &fakeInspector{servers: []*asynq.ServerInfo{{Host: "worker-1"}}}, nil
		},
		MongoDB: func() (MongoClient, error) {
			s.counts[KindMongoDB].Add(1)
			return &fakeMongo{}, nil
		},
		Kafka: func() (KafkaClient, error) {
			s.counts[KindKafka].Add(1)
			return &fakeKafka{}, nil
		},
		HTTP: func() (*URLChecker, error) {
			s.counts[KindHTTP].Add(1)
			return NewURLChecker(nil, 0, nil), nil
		},
	}
}
