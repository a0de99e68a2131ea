// Package redisfake answers go-redis commands from memory so tests can
// exercise Redis-backed code without a server.
package redisfake

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

// Hook is a redis.Hook that never calls the next hook, so the client
// never dials. It supports PING, SET, GET and DEL.
type Hook struct {
	mu   sync.Mutex
	data map[string]string
	err  error

	// Corrupt makes GET return a value different from the one stored.
	Corrupt atomic.Bool

	calls atomic.Int64
}

// New returns an empty fake.
func New() *Hook {
	return &Hook{data: make(map[string]string)}
}

// Client returns a client whose commands are answered by h.
func (h *Hook) Client() *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: "redisfake:6379"})
	client.AddHook(h)
	return client
}

// Fail makes every subsequent command fail with err. Nil restores service.
func (h *Hook) Fail(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

// Calls returns the number of commands answered.
func (h *Hook) Calls() int64 {
	return h.calls.Load()
}

// Len returns the number of stored keys.
func (h *Hook) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.data)
}

func (h *Hook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h *Hook) ProcessHook(_ redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		h.process(cmd)
		return cmd.Err()
	}
}

func (h *Hook) ProcessPipelineHook(_ redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		var first error
		for _, cmd := range cmds {
			h.process(cmd)
			if err := cmd.Err(); err != nil && first == nil {
				first = err
			}
		}
		return first
	}
}

func (h *Hook) process(cmd redis.Cmder) {
	h.calls.Add(1)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.err != nil {
		cmd.SetErr(h.err)
		return
	}

	args := cmd.Args()
	switch strings.ToLower(cmd.Name()) {
	case "ping":
		if c, ok := cmd.(*redis.StatusCmd); ok {
			c.SetVal("PONG")
		}
	case "set":
		h.data[arg(args, 1)] = arg(args, 2)
		if c, ok := cmd.(*redis.StatusCmd); ok {
			c.SetVal("OK")
		}
	case "get":
		c, ok := cmd.(*redis.StringCmd)
		if !ok {
			break
		}
		v, found := h.data[arg(args, 1)]
		switch {
		case !found:
			c.SetErr(redis.Nil)
		case h.Corrupt.Load():
			c.SetVal(v + "-corrupted")
		default:
			c.SetVal(v)
		}
	case "del":
		var n int64
		for _, a := range args[1:] {
			key := toString(a)
			if _, found := h.data[key]; found {
				delete(h.data, key)
				n++
			}
		}
		if c, ok := cmd.(*redis.IntCmd); ok {
			c.SetVal(n)
		}
	default:
		cmd.SetErr(fmt.Errorf("redisfake: unsupported command %q", cmd.Name()))
	}
}

func arg(args []any, i int) string {
	if i >= len(args) {
		return ""
	}
	return toString(args[i])
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

var _ redis.Hook = (*Hook)(nil)
