// Package redisblob stores snapshot blobs in Redis, so several machines can share a session.
package redisblob

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/codalotl/draftpatch/internal/snapshot"
	redis "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces keys in a shared Redis.
const DefaultPrefix = "draftpatch:snapshot:"

// Store is a Redis-backed snapshot.BlobStore.
type Store struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

// New wraps an existing client.
func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, prefix: DefaultPrefix, now: time.Now}
}

// Open connects to addr and pings it.
func Open(ctx context.Context, addr string) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redisblob: ping %s: %w", addr, err)
	}
	return New(rdb), nil
}

// WithPrefix returns a copy of s that uses prefix for all keys.
func (s *Store) WithPrefix(prefix string) *Store {
	c := *s
	c.prefix = prefix
	return &c
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.rdb.Close()
}

// Put stores data under key along with the write time.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := snapshot.ValidateKey(key); err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.prefix+key, data, 0)
	pipe.Set(ctx, s.prefix+key+":updated", s.now().UnixNano(), 0)
	_, err := pipe.Exec(ctx)
	return err
}

// Get returns the blob under key, or snapshot.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := snapshot.ValidateKey(key); err != nil {
		return nil, err
	}
	b, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, snapshot.ErrNotFound
	}
	return b, err
}

// UpdatedAt returns when key was last written.
func (s *Store) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	ns, err := s.rdb.Get(ctx, s.prefix+key+":updated").Int64()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, snapshot.ErrNotFound
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, ns), nil
}
