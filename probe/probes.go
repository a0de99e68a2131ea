package probe

import (
	"context"
	"errors"
	"time"

	"github.com/jonwraymond/healthprobe/cache"
	"github.com/jonwraymond/healthprobe/health"
)

// Problem messages reported by the probes.
const (
	MsgRedisUnreachable     = "Cannot connect to Redis"
	MsgCacheMismatch        = "Cache read/write failed"
	MsgLocalCacheMismatch   = "Local cache read/write failed"
	MsgElasticsearchPing    = "Elasticsearch ping failed"
	MsgTaskQueueNoResponder = "Task queue workers not responding"
)

// RedisProbe sends PING. Every failure reads MsgRedisUnreachable.
func RedisProbe(clients *Clients) health.ProbeFunc {
	return func(ctx context.Context) (health.Outcome, error) {
		client, err := clients.Redis()
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, &health.Fault{Kind: faultKind(err), Message: MsgRedisUnreachable}
		}
		return health.Outcome{}, nil
	}
}

// DatabaseProbe pings the SQL pool, acquiring a connection if none is idle.
func DatabaseProbe(clients *Clients, driver string) health.ProbeFunc {
	return func(ctx context.Context) (health.Outcome, error) {
		db, err := clients.Database()
		if err != nil {
			return nil, err
		}
		if err := db.Ping(ctx); err != nil {
			return nil, wrapFault(err)
		}
		return health.Outcome{"driver": driver}, nil
	}
}

// CacheProbe writes, reads back and deletes a unique key in the shared cache.
func CacheProbe(clients *Clients, ttl time.Duration) health.ProbeFunc {
	return cacheProbe(clients.Cache, ttl, MsgCacheMismatch)
}

// LocalCacheProbe is CacheProbe against the in-process cache.
func LocalCacheProbe(clients *Clients, ttl time.Duration) health.ProbeFunc {
	return cacheProbe(clients.LocalCache, ttl, MsgLocalCacheMismatch)
}

func cacheProbe(get func() (cache.Cache, error), ttl time.Duration, mismatch string) health.ProbeFunc {
	return func(ctx context.Context) (health.Outcome, error) {
		c, err := get()
		if err != nil {
			return nil, err
		}
		err = cache.RoundTrip(ctx, c, ttl)
		switch {
		case errors.Is(err, cache.ErrMismatch):
			return health.Outcome{health.MessageKey: mismatch}, nil
		case err != nil:
			return nil, wrapFault(err)
		}
		return health.Outcome{}, nil
	}
}

// ElasticsearchProbe sends HEAD / and expects a 2xx answer.
func ElasticsearchProbe(clients *Clients) health.ProbeFunc {
	return func(ctx context.Context) (health.Outcome, error) {
		es, err := clients.Elasticsearch()
		if err != nil {
			return nil, err
		}
		res, err := es.Ping(es.Ping.WithContext(ctx))
		if err != nil {
			return nil, wrapFault(err)
		}
		defer res.Body.Close()

		if res.IsError() {
			return health.Outcome{
				health.MessageKey: MsgElasticsearchPing,
				"status_code":     res.StatusCode,
			}, nil
		}
		return health.Outcome{}, nil
	}
}

// RabbitMQProbe opens and closes a channel on the broker connection.
func RabbitMQProbe(clients *Clients) health.ProbeFunc {
	return func(ctx context.Context) (health.Outcome, error) {
		conn, err := clients.RabbitMQ()
		if err != nil {
			return nil, wrapFault(err)
		}
		ch, err := conn.OpenChannel()
		if err != nil {
			return nil, wrapFault(err)
		}
		if err := ch.Close(); err != nil {
			return nil, health.ProtocolFault("channel close", err)
		}
		return health.Outcome{}, nil
	}
}

// TaskQueueProbe lists the worker servers registered with the broker.
// An empty list is a problem, not a raised failure.
func TaskQueueProbe(clients *Clients) health.ProbeFunc {
	return func(ctx context.Context) (health.Outcome, error) {
		insp, err := clients.TaskQueue()
		if err != nil {
			return nil, err
		}
		servers, err := insp.Servers()
		if err != nil {
			return nil, wrapFault(err)
		}
		if len(servers) == 0 {
			return health.Outcome{health.MessageKey: MsgTaskQueueNoResponder}, nil
		}

		active := 0
		for _, s := range servers {
			active += len(s.ActiveWorkers)
		}
		return health.Outcome{"servers": len(servers), "active_workers": active}, nil
	}
}

// MongoDBProbe runs the ping command against the primary.
func MongoDBProbe(clients *Clients) health.ProbeFunc {
	return func(ctx context.Context) (health.Outcome, error) {
		client, err := clients.MongoDB()
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx, nil); err != nil {
			return nil, wrapFault(err)
		}
		return health.Outcome{}, nil
	}
}

// KafkaProbe asks any seed broker for metadata.
func KafkaProbe(clients *Clients) health.ProbeFunc {
	return func(ctx context.Context) (health.Outcome, error) {
		client, err := clients.Kafka()
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx); err != nil {
			return nil, wrapFault(err)
		}
		return health.Outcome{}, nil
	}
}
