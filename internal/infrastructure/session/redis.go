package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	rdb    *redis.Client
	sealer *Sealer
	ttl    time.Duration
}

func NewRedisStore(rdb *redis.Client, sealer *Sealer, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, sealer: sealer, ttl: ttl}
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.rdb.Get(ctx, key(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(r.sealer, data)
}

func (r *RedisStore) Save(ctx context.Context, id string, sess *Session) error {
	data, err := encode(r.sealer, sess)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, key(id), data, r.ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, key(id)).Err()
}
