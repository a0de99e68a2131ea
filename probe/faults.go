package probe

import (
	"database/sql/driver"
	"errors"
	"io"
	"net/url"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/jonwraymond/healthprobe/health"
)

// wrapFault classifies a native client error. Faults and not-configured
// errors pass through unchanged.
func wrapFault(err error) error {
	var f *health.Fault
	if errors.As(err, &f) || errors.Is(err, health.ErrNotConfigured) {
		return err
	}
	return &health.Fault{Kind: faultKind(err), Err: err}
}

// faultKind maps a client error to a fault kind.
//
// A *url.Error satisfies net.Error whatever it wraps, so it is unwrapped
// first: a parse failure never reached the network.
func faultKind(err error) health.FaultKind {
	var ue *url.Error
	if errors.As(err, &ue) {
		switch {
		case ue.Op == "parse":
			return health.FaultUnexpected
		case ue.Timeout():
			return health.FaultTimeout
		}
		err = ue.Err
	}

	kind := health.ClassifyFault(err)
	switch {
	case kind == health.FaultTimeout:
		return kind
	case isDropped(err):
		return health.FaultConnection
	case isRefusal(err):
		return health.FaultProtocol
	case kind == health.FaultConnection:
		return kind
	}
	return health.FaultUnexpected
}

// isDropped reports errors raised when a connection closed under the
// client.
func isDropped(err error) bool {
	for _, target := range []error{
		io.EOF,
		io.ErrUnexpectedEOF,
		driver.ErrBadConn,
		mysql.ErrInvalidConn,
		amqp.ErrClosed,
		redis.ErrClosed,
		kgo.ErrClientClosed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// isRefusal reports an answer from the dependency itself, such as an
// authentication failure or a rejected command.
func isRefusal(err error) bool {
	var (
		redisErr redis.Error
		pgErr    *pgconn.PgError
		mysqlErr *mysql.MySQLError
		amqpErr  *amqp.Error
		kafkaErr *kerr.Error
		mongoErr mongo.CommandError
	)
	return errors.As(err, &redisErr) ||
		errors.As(err, &pgErr) ||
		errors.As(err, &mysqlErr) ||
		errors.As(err, &amqpErr) ||
		errors.As(err, &kafkaErr) ||
		errors.As(err, &mongoErr)
}
