// Package profile keeps the user's profile picture. The payload is opaque:
// whatever the client uploads under a key is returned unchanged.
package profile

import (
	"fmt"
	"log/slog"

	gcache "github.com/patrickmn/go-cache"
	"github.com/tartampluch/go-jyoti/internal/config"
)

// Store is a key-value store for opaque payloads.
type Store interface {
	Set(key string, value []byte) error
	Get(key string) ([]byte, bool, error)
	Delete(key string)
}

// MemoryStore keeps payloads in process memory, without expiry. Values
// are lost on restart.
type MemoryStore struct {
	cache *gcache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: gcache.New(gcache.NoExpiration, config.CacheCleanup)}
}

// Set stores a copy of value.
func (m *MemoryStore) Set(key string, value []byte) error {
	m.cache.Set(key, append([]byte(nil), value...), gcache.NoExpiration)
	slog.Debug(config.MsgProfileStored,
		config.LogKeyComponent, config.CompProfile,
		config.LogKeyKey, key,
		config.LogKeySizeBytes, len(value),
	)
	return nil
}

// Get returns a copy of the payload stored under key.
func (m *MemoryStore) Get(key string) ([]byte, bool, error) {
	v, ok := m.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false, fmt.Errorf("%s: %T", config.ErrProfileValue, v)
	}
	return append([]byte(nil), b...), true, nil
}

func (m *MemoryStore) Delete(key string) {
	m.cache.Delete(key)
}
