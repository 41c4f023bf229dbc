// Package redis is a store.Backend keeping each collection under a
// prefixed redis string key.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/phrazzld/studyhall/internal/store"
	goredis "github.com/redis/go-redis/v9"
)

// Backend stores encoded collections in redis.
type Backend struct {
	client *goredis.Client
	prefix string
}

// Options configures the connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every key, e.g. "studyhall:".
	Prefix string
}

// New connects to redis and verifies the connection with a PING.
func New(ctx context.Context, opts Options) (*Backend, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return &Backend{client: client, prefix: opts.Prefix}, nil
}

func (b *Backend) key(k string) string {
	return b.prefix + k
}

// Get implements store.Backend.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := b.client.Get(ctx, b.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, store.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// PutBatch implements store.Backend. The writes run in one MULTI/EXEC block.
func (b *Backend) PutBatch(ctx context.Context, entries map[string][]byte) error {
	_, err := b.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for key, value := range entries {
			pipe.Set(ctx, b.key(key), value, 0)
		}
		return nil
	})
	return err
}

// Close implements store.Backend.
func (b *Backend) Close() error {
	return b.client.Close()
}
