package session

import (
	"context"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

type MemcachedStore struct {
	mc     *memcache.Client
	sealer *Sealer
	ttl    time.Duration
}

func NewMemcachedStore(mc *memcache.Client, sealer *Sealer, ttl time.Duration) *MemcachedStore {
	return &MemcachedStore{mc: mc, sealer: sealer, ttl: ttl}
}

func (m *MemcachedStore) Get(ctx context.Context, id string) (*Session, error) {
	item, err := m.mc.Get(key(id))
	if err == memcache.ErrCacheMiss {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(m.sealer, item.Value)
}

func (m *MemcachedStore) Save(ctx context.Context, id string, sess *Session) error {
	data, err := encode(m.sealer, sess)
	if err != nil {
		return err
	}
	return m.mc.Set(&memcache.Item{
		Key:        key(id),
		Value:      data,
		Expiration: expiration(m.ttl, time.Now()),
	})
}

// memcached reads expirations above 30 days as a unix time.
const relativeExpirationLimit = 30 * 24 * time.Hour

func expiration(ttl time.Duration, now time.Time) int32 {
	if ttl <= 0 {
		return 0
	}
	if ttl > relativeExpirationLimit {
		return int32(now.Add(ttl).Unix())
	}
	return int32(ttl / time.Second)
}

func (m *MemcachedStore) Delete(ctx context.Context, id string) error {
	err := m.mc.Delete(key(id))
	if err == memcache.ErrCacheMiss {
		return nil
	}
	return err
}
