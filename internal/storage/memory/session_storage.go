package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/bookhaven/internal/domain"
)

type sessionEntry struct {
	store       *kvStoreInMemory
	lastTouched time.Time
}

// sessionStorageInMemory держит отдельное хранилище на каждую сессию и забывает
// сессии, к которым не обращались дольше idleTTL.
type sessionStorageInMemory struct {
	mu        sync.Mutex
	sessions  map[string]*sessionEntry
	opts      []Option
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewSessionStorage создаёт in-memory хранилище сессий. idleTTL <= 0 отключает
// вытеснение. Опции применяются к хранилищу каждой сессии.
func NewSessionStorage(idleTTL time.Duration, opts ...Option) domain.SessionStorage {
	return newSessionStorage(idleTTL, time.Now, opts...)
}

func newSessionStorage(idleTTL time.Duration, now func() time.Time, opts ...Option) *sessionStorageInMemory {
	return &sessionStorageInMemory{
		sessions: make(map[string]*sessionEntry),
		opts:     opts,
		idleTTL:  idleTTL,
		now:      now,
	}
}

// ForSession возвращает хранилище сессии. Данные создаются при первой операции
// и живут, пока к сессии обращаются чаще, чем раз в idleTTL.
func (s *sessionStorageInMemory) ForSession(sessionID string) domain.KVStore {
	s.mu.Lock()
	s.sweepLocked(s.now())
	s.mu.Unlock()
	return &sessionKV{parent: s, sessionID: sessionID}
}

// touch возвращает живое хранилище сессии, продлевая его срок.
func (s *sessionStorageInMemory) touch(sessionID string) *kvStoreInMemory {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	entry, ok := s.sessions[sessionID]
	if !ok || s.expired(entry, now) {
		entry = &sessionEntry{store: NewKVStore(s.opts...)}
		s.sessions[sessionID] = entry
	}
	entry.lastTouched = now
	return entry.store
}

func (s *sessionStorageInMemory) expired(entry *sessionEntry, now time.Time) bool {
	return s.idleTTL > 0 && now.Sub(entry.lastTouched) > s.idleTTL
}

// sweepLocked удаляет простаивающие сессии не чаще раза в idleTTL/2.
func (s *sessionStorageInMemory) sweepLocked(now time.Time) {
	if s.idleTTL <= 0 || now.Sub(s.lastSweep) < s.idleTTL/2 {
		return
	}
	s.lastSweep = now
	for id, entry := range s.sessions {
		if s.expired(entry, now) {
			delete(s.sessions, id)
		}
	}
}

func (s *sessionStorageInMemory) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// sessionKV адресует хранилище сессии по id при каждой операции.
type sessionKV struct {
	parent    *sessionStorageInMemory
	sessionID string
}

func (k *sessionKV) Get(ctx context.Context, key string) (string, bool, error) {
	return k.parent.touch(k.sessionID).Get(ctx, key)
}

func (k *sessionKV) Set(ctx context.Context, key, value string) error {
	return k.parent.touch(k.sessionID).Set(ctx, key, value)
}

func (k *sessionKV) Remove(ctx context.Context, key string) error {
	return k.parent.touch(k.sessionID).Remove(ctx, key)
}

var (
	_ domain.SessionStorage = (*sessionStorageInMemory)(nil)
	_ domain.KVStore        = (*sessionKV)(nil)
)
