package rediskv

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/wazazi/core"
)

const keyPrefix = "wazazi:"

type Store struct {
	client *redis.Client
}

var _ core.KVStore = (*Store)(nil)

func Open(ctx context.Context, addr string, db int) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "redis ping")
	}
	return &Store{client: client}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, core.ErrKeyNotFound
		}
		return nil, errors.Wrapf(err, "reading %s", key)
	}
	return val, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	return errors.Wrapf(s.client.Set(ctx, keyPrefix+key, value, 0).Err(), "writing %s", key)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return errors.Wrapf(s.client.Del(ctx, keyPrefix+key).Err(), "deleting %s", key)
}

func (s *Store) Close() error { return s.client.Close() }
