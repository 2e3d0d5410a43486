package storefront

import (
	"context"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookhaven/internal/domain"
	"github.com/vladislavdragonenkov/bookhaven/internal/metrics"
)

const (
	scopeSession = "session"
	scopeDurable = "durable"

	emptyList = "[]"
)

// SessionCartStore хранит сериализованную корзину в хранилище текущей сессии.
type SessionCartStore struct {
	kv      domain.KVStore
	logger  *log.Entry
	metrics *metrics.StorefrontMetrics
}

// NewSessionCartStore создаёт хранилище корзины поверх kv сессии.
func NewSessionCartStore(kv domain.KVStore, logger *log.Entry, m *metrics.StorefrontMetrics) *SessionCartStore {
	if logger == nil {
		logger = log.WithField("component", "session-cart")
	}
	return &SessionCartStore{kv: kv, logger: logger, metrics: m}
}

// Load читает корзину. Отсутствующая или повреждённая запись даёт пустую корзину.
func (s *SessionCartStore) Load(ctx context.Context) domain.Cart {
	cart, _ := s.load(ctx)
	return cart
}

// load возвращает корзину и признак того, что хранилище удалось прочитать.
// Повреждённый JSON считается прочитанным: корзина пуста. Позиции, нарушающие
// инварианты корзины, исправляются через Cart.Normalize.
func (s *SessionCartStore) load(ctx context.Context) (domain.Cart, bool) {
	if s.kv == nil {
		return domain.Cart{}, false
	}

	raw, ok, err := s.kv.Get(ctx, domain.CartKey)
	if err != nil {
		s.metrics.RecordStorageError(scopeSession, "load")
		s.logger.WithError(fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)).Warn("failed to read cart from session storage")
		return domain.Cart{}, false
	}
	if !ok {
		return domain.Cart{}, true
	}

	var cart domain.Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		s.metrics.RecordStorageError(scopeSession, "parse")
		s.logger.WithError(fmt.Errorf("%w: %w", domain.ErrParseFailure, err)).Warn("stored cart is corrupt, starting with empty cart")
		return domain.Cart{}, true
	}

	normalized, fixed := cart.Normalize()
	if fixed > 0 {
		s.metrics.RecordStorageError(scopeSession, "parse")
		s.logger.WithError(domain.ErrParseFailure).WithField("fixed_lines", fixed).
			Warn("stored cart violates line invariants, normalized")
	}
	return normalized, true
}

// Save сериализует и записывает корзину целиком.
func (s *SessionCartStore) Save(ctx context.Context, cart domain.Cart) error {
	if s.kv == nil {
		return fmt.Errorf("%w: %w", domain.ErrWriteFailure, domain.ErrStorageUnavailable)
	}

	payload, err := json.Marshal(cart.Clone())
	if err != nil {
		return s.writeFailed("save", fmt.Errorf("marshal cart: %w", err))
	}
	if err := s.kv.Set(ctx, domain.CartKey, string(payload)); err != nil {
		return s.writeFailed("save", fmt.Errorf("write cart: %w", err))
	}
	return nil
}

// Clear сбрасывает сохранённую корзину в пустой список.
func (s *SessionCartStore) Clear(ctx context.Context) error {
	if s.kv == nil {
		return fmt.Errorf("%w: %w", domain.ErrWriteFailure, domain.ErrStorageUnavailable)
	}
	if err := s.kv.Set(ctx, domain.CartKey, emptyList); err != nil {
		return s.writeFailed("clear", fmt.Errorf("clear cart: %w", err))
	}
	return nil
}

// Remove удаляет запись корзины из сессии.
func (s *SessionCartStore) Remove(ctx context.Context) error {
	if s.kv == nil {
		return nil
	}
	if err := s.kv.Remove(ctx, domain.CartKey); err != nil {
		return s.writeFailed("remove", fmt.Errorf("remove cart: %w", err))
	}
	return nil
}

func (s *SessionCartStore) writeFailed(op string, err error) error {
	s.metrics.RecordStorageError(scopeSession, op)
	s.logger.WithError(err).WithField("op", op).Error("session storage write failed")
	return fmt.Errorf("%w: %w", domain.ErrWriteFailure, err)
}
