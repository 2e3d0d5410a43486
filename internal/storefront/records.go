package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookhaven/internal/domain"
	"github.com/vladislavdragonenkov/bookhaven/internal/metrics"
)

// Snapshot: содержимое всех коллекций хранилищ на момент чтения.
type Snapshot struct {
	Cart          domain.Cart              `json:"cart"`
	CustomerData  []domain.CustomerInquiry `json:"customerData"`
	OrderHistory  []domain.Order           `json:"orderHistory"`
	Subscriptions []domain.Subscription    `json:"subscriptions"`
}

// DurableRecordStore дописывает обращения, заказы и подписки в долговременное хранилище.
// Каждая коллекция хранится одним JSON-массивом и перезаписывается целиком.
type DurableRecordStore struct {
	kv      domain.KVStore
	logger  *log.Entry
	metrics *metrics.StorefrontMetrics

	// mu сериализует цикл чтение-дописывание-запись внутри процесса.
	mu sync.Mutex
}

// NewDurableRecordStore создаёт хранилище записей поверх долговременного kv.
func NewDurableRecordStore(kv domain.KVStore, logger *log.Entry, m *metrics.StorefrontMetrics) *DurableRecordStore {
	if logger == nil {
		logger = log.WithField("component", "durable-records")
	}
	return &DurableRecordStore{kv: kv, logger: logger, metrics: m}
}

// AppendCustomerInquiry дописывает обращение в список обращений.
func (s *DurableRecordStore) AppendCustomerInquiry(ctx context.Context, inquiry domain.CustomerInquiry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return appendRecord(ctx, s, domain.CustomerDataKey, inquiry, nil)
}

// AppendOrder дописывает заказ в историю заказов.
func (s *DurableRecordStore) AppendOrder(ctx context.Context, order domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return appendRecord(ctx, s, domain.OrderHistoryKey, order, nil)
}

// AppendSubscription дописывает подписку. Повтор email (с учётом регистра) даёт
// ErrDuplicateSubscription, список при этом не меняется.
func (s *DurableRecordStore) AppendSubscription(ctx context.Context, sub domain.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return appendRecord(ctx, s, domain.SubscriptionsKey, sub, func(existing []domain.Subscription) error {
		for _, item := range existing {
			if item.Email == sub.Email {
				return domain.ErrDuplicateSubscription
			}
		}
		return nil
	})
}

// Initialize создаёт пустые коллекции для отсутствующих ключей.
func (s *DurableRecordStore) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.kv == nil {
		return domain.ErrStorageUnavailable
	}

	var errs []error
	for _, key := range domain.DurableKeys {
		_, ok, err := s.kv.Get(ctx, key)
		if err != nil {
			errs = append(errs, fmt.Errorf("read %s: %w", key, err))
			continue
		}
		if ok {
			continue
		}
		if err := s.kv.Set(ctx, key, emptyList); err != nil {
			errs = append(errs, fmt.Errorf("seed %s: %w", key, err))
		}
	}
	if len(errs) > 0 {
		s.metrics.RecordStorageError(scopeDurable, "initialize")
		return fmt.Errorf("%w: %w", domain.ErrWriteFailure, errors.Join(errs...))
	}
	return nil
}

// Inquiries возвращает сохранённые обращения; ошибки чтения дают пустой список.
func (s *DurableRecordStore) Inquiries(ctx context.Context) []domain.CustomerInquiry {
	items, _ := loadList[domain.CustomerInquiry](ctx, s, domain.CustomerDataKey)
	return items
}

// Orders возвращает историю заказов; ошибки чтения дают пустой список.
func (s *DurableRecordStore) Orders(ctx context.Context) []domain.Order {
	items, _ := loadList[domain.Order](ctx, s, domain.OrderHistoryKey)
	return items
}

// Subscriptions возвращает подписки; ошибки чтения дают пустой список.
func (s *DurableRecordStore) Subscriptions(ctx context.Context) []domain.Subscription {
	items, _ := loadList[domain.Subscription](ctx, s, domain.SubscriptionsKey)
	return items
}

// Snapshot читает все долговременные коллекции.
func (s *DurableRecordStore) Snapshot(ctx context.Context) Snapshot {
	return Snapshot{
		Cart:          domain.Cart{},
		CustomerData:  s.Inquiries(ctx),
		OrderHistory:  s.Orders(ctx),
		Subscriptions: s.Subscriptions(ctx),
	}
}

// ClearAll удаляет все долговременные коллекции.
func (s *DurableRecordStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.kv == nil {
		return domain.ErrStorageUnavailable
	}

	var errs []error
	for _, key := range domain.DurableKeys {
		if err := s.kv.Remove(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", key, err))
		}
	}
	if len(errs) > 0 {
		s.metrics.RecordStorageError(scopeDurable, "clear")
		return fmt.Errorf("%w: %w", domain.ErrWriteFailure, errors.Join(errs...))
	}
	s.logger.Info("all durable collections cleared")
	return nil
}

// loadList читает коллекцию. Отсутствующая или повреждённая запись даёт пустой список,
// ошибка возвращается только при недоступности хранилища.
func loadList[T any](ctx context.Context, s *DurableRecordStore, key string) ([]T, error) {
	if s.kv == nil {
		return []T{}, domain.ErrStorageUnavailable
	}

	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.metrics.RecordStorageError(scopeDurable, "load")
		err = fmt.Errorf("%w: read %s: %w", domain.ErrStorageUnavailable, key, err)
		s.logger.WithError(err).Warn("failed to read durable collection")
		return []T{}, err
	}
	if !ok {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.metrics.RecordStorageError(scopeDurable, "parse")
		s.logger.WithError(fmt.Errorf("%w: %w", domain.ErrParseFailure, err)).
			WithField("key", key).
			Warn("stored collection is corrupt, treating as empty")
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// appendRecord дописывает запись и сохраняет весь список одной записью.
// check вызывается до записи и может отклонить добавление.
func appendRecord[T any](ctx context.Context, s *DurableRecordStore, key string, record T, check func([]T) error) error {
	items, err := loadList[T](ctx, s, key)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrWriteFailure, err)
	}
	if check != nil {
		if err := check(items); err != nil {
			return err
		}
	}

	payload, err := json.Marshal(append(items, record))
	if err != nil {
		s.metrics.RecordStorageError(scopeDurable, "append")
		return fmt.Errorf("%w: marshal %s: %w", domain.ErrWriteFailure, key, err)
	}
	if err := s.kv.Set(ctx, key, string(payload)); err != nil {
		s.metrics.RecordStorageError(scopeDurable, "append")
		s.logger.WithError(err).WithField("key", key).Error("failed to write durable collection")
		return fmt.Errorf("%w: write %s: %w", domain.ErrWriteFailure, key, err)
	}
	return nil
}
