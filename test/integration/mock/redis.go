//go:build integration

package mock

import (
	"context"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// Redis is an in-process miniredis server with a client bound to it.
type Redis struct {
	server *miniredis.Miniredis
	Client *redis.Client
}

// NewRedis starts miniredis and connects a client to it.
func NewRedis() *Redis {
	server, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	return &Redis{
		server: server,
		Client: redis.NewClient(&redis.Options{Addr: server.Addr()}),
	}
}

// Flush drops every key.
func (r *Redis) Flush() error {
	return r.Client.FlushAll(context.Background()).Err()
}

// FastForward advances key TTLs by d, expiring anything that runs out.
func (r *Redis) FastForward(d time.Duration) {
	r.server.FastForward(d)
}

// Close disconnects the client and stops the server.
func (r *Redis) Close() {
	_ = r.Client.Close()
	r.server.Close()
}
