package session

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps sessions in process. Sessions are lost on restart.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: cache.New(ttl, ttl/2),
	}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	v, ok := m.cache.Get(key(id))
	if !ok {
		return nil, ErrNotFound
	}
	sess := v.(Session)
	return &sess, nil
}

func (m *MemoryStore) Save(ctx context.Context, id string, sess *Session) error {
	m.cache.SetDefault(key(id), *sess)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.cache.Delete(key(id))
	return nil
}
