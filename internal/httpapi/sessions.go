package httpapi

import (
	"fmt"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/vladislavdragonenkov/bookhaven/internal/storefront"
)

const maxSessionIDLength = 128

// StorefrontFactory создаёт командный интерфейс для сессии.
type StorefrontFactory func(sessionID string) *storefront.Storefront

type sessionEntry struct {
	// mu сериализует команды одной сессии.
	mu       sync.Mutex
	front    *storefront.Storefront
	lastSeen time.Time
}

// sessionRegistry хранит живые сессии и вытесняет простаивающие.
type sessionRegistry struct {
	mu        sync.Mutex
	entries   map[string]*sessionEntry
	factory   StorefrontFactory
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newSessionRegistry(factory StorefrontFactory, idleTTL time.Duration) *sessionRegistry {
	return &sessionRegistry{
		entries: make(map[string]*sessionEntry),
		factory: factory,
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// acquire возвращает заблокированную сессию; release обязателен.
func (r *sessionRegistry) acquire(sessionID string) (*storefront.Storefront, func()) {
	r.mu.Lock()
	now := r.now()
	r.sweepLocked(now)

	entry, ok := r.entries[sessionID]
	if !ok {
		entry = &sessionEntry{front: r.factory(sessionID)}
		r.entries[sessionID] = entry
	}
	entry.lastSeen = now
	r.mu.Unlock()

	entry.mu.Lock()
	return entry.front, entry.mu.Unlock
}

// sweepLocked удаляет сессии, простаивающие дольше idleTTL. Корзина остаётся
// в хранилище сессии и будет перечитана при следующем запросе.
func (r *sessionRegistry) sweepLocked(now time.Time) {
	if r.idleTTL <= 0 || now.Sub(r.lastSweep) < r.idleTTL/2 {
		return
	}
	r.lastSweep = now
	for id, entry := range r.entries {
		if now.Sub(entry.lastSeen) > r.idleTTL {
			delete(r.entries, id)
		}
	}
}

func (r *sessionRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// newSessionID выдаёт новый URL-безопасный идентификатор сессии.
func newSessionID() (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return id, nil
}

func validSessionID(id string) bool {
	if id == "" || len(id) > maxSessionIDLength {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
