package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/bookhaven/internal/domain"
)

// kvStoreInMemory: простое in-memory key-value хранилище с опциональной квотой.
type kvStoreInMemory struct {
	mu         sync.RWMutex
	items      map[string]string
	quotaBytes int
}

// Option настраивает in-memory хранилище.
type Option func(*kvStoreInMemory)

// WithQuota ограничивает суммарный объём ключей и значений в байтах (0: без лимита).
func WithQuota(bytes int) Option {
	return func(s *kvStoreInMemory) {
		if bytes > 0 {
			s.quotaBytes = bytes
		}
	}
}

// NewKVStore возвращает in-memory хранилище для локальной разработки и тестов.
func NewKVStore(opts ...Option) *kvStoreInMemory {
	s := &kvStoreInMemory{items: make(map[string]string)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get возвращает значение ключа и признак наличия.
func (s *kvStoreInMemory) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.items[key]
	return value, ok, nil
}

// Set записывает значение, если оно укладывается в квоту.
func (s *kvStoreInMemory) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quotaBytes > 0 {
		used := s.usedBytesLocked()
		if old, ok := s.items[key]; ok {
			used -= len(key) + len(old)
		}
		if used+len(key)+len(value) > s.quotaBytes {
			return fmt.Errorf("set %q: %w", key, domain.ErrQuotaExceeded)
		}
	}
	s.items[key] = value
	return nil
}

// Remove удаляет ключ, отсутствие ключа не считается ошибкой.
func (s *kvStoreInMemory) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
	return nil
}

// Keys возвращает отсортированный список ключей.
func (s *kvStoreInMemory) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *kvStoreInMemory) usedBytesLocked() int {
	var used int
	for k, v := range s.items {
		used += len(k) + len(v)
	}
	return used
}

var _ domain.KVStore = (*kvStoreInMemory)(nil)
