package storefront

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookhaven/internal/domain"
	"github.com/vladislavdragonenkov/bookhaven/internal/metrics"
)

// summaryDateLayout повторяет короткий формат даты витрины (M/D/YYYY).
const summaryDateLayout = "1/2/2006"

// SessionOptions задаёт параметры CartSession.
type SessionOptions struct {
	Logger    *log.Entry
	Clock     func() time.Time
	Metrics   *metrics.StorefrontMetrics
	Publisher domain.OrderEventPublisher
}

// Option настраивает CartSession.
type Option func(*SessionOptions)

// WithLogger задаёт logger сессии.
func WithLogger(logger *log.Entry) Option {
	return func(opts *SessionOptions) {
		opts.Logger = logger
	}
}

// WithClock подменяет источник времени.
func WithClock(clock func() time.Time) Option {
	return func(opts *SessionOptions) {
		opts.Clock = clock
	}
}

// WithMetrics задаёт метрики витрины.
func WithMetrics(m *metrics.StorefrontMetrics) Option {
	return func(opts *SessionOptions) {
		opts.Metrics = m
	}
}

// WithEventPublisher задаёт publisher событий об оформленных заказах.
func WithEventPublisher(publisher domain.OrderEventPublisher) Option {
	return func(opts *SessionOptions) {
		opts.Publisher = publisher
	}
}

// CartSession владеет корзиной одной сессии и реализует правила работы с ней.
// Не безопасна для конкурентного использования: вызовы одной сессии сериализует вызывающий.
type CartSession struct {
	store     *SessionCartStore
	records   *DurableRecordStore
	logger    *log.Entry
	clock     func() time.Time
	metrics   *metrics.StorefrontMetrics
	publisher domain.OrderEventPublisher

	cart domain.Cart
	// degraded выставляется после неудачной записи корзины: пока запись не пройдёт,
	// корзина в памяти главнее сохранённой.
	degraded bool
}

// NewCartSession создаёт сессию. store может быть nil: тогда корзина живёт только в памяти.
func NewCartSession(store *SessionCartStore, records *DurableRecordStore, options ...Option) *CartSession {
	var opts SessionOptions
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "cart-session")
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	return &CartSession{
		store:     store,
		records:   records,
		logger:    logger,
		clock:     clock,
		metrics:   opts.Metrics,
		publisher: opts.Publisher,
		cart:      domain.Cart{},
	}
}

// Degraded сообщает, что последняя запись корзины в хранилище сессии не удалась.
func (s *CartSession) Degraded() bool {
	return s.degraded
}

// Cart перечитывает корзину и возвращает её копию.
func (s *CartSession) Cart(ctx context.Context) domain.Cart {
	s.reload(ctx)
	return s.cart.Clone()
}

// AddItem добавляет книгу: совпадение по названию увеличивает количество,
// иначе в конец добавляется новая позиция.
func (s *CartSession) AddItem(ctx context.Context, title, author, price string) (domain.CartLine, error) {
	s.reload(ctx)
	title = domain.LineTitle(title)

	var line domain.CartLine
	if idx := s.cart.IndexOf(title); idx >= 0 {
		s.cart[idx].Quantity++
		line = s.cart[idx]
	} else {
		created, err := domain.NewCartLine(title, author, price, s.clock())
		if err != nil {
			return domain.CartLine{}, err
		}
		s.cart = append(s.cart, created)
		line = created
	}

	s.persist(ctx)
	s.logger.WithFields(log.Fields{
		"title":    line.Title,
		"quantity": line.Quantity,
	}).Debug("item added to cart")
	return line, nil
}

// ClearCart очищает корзину в памяти и в хранилище сессии.
func (s *CartSession) ClearCart(ctx context.Context) error {
	s.reload(ctx)
	if len(s.cart) == 0 {
		return domain.ErrCartAlreadyEmpty
	}

	s.cart = domain.Cart{}
	s.clearStored(ctx)
	return nil
}

// CommitOrder превращает корзину в заказ, дописывает его в историю и очищает корзину.
// Корзина очищается и при ошибке записи истории: заказ и ошибка возвращаются вместе.
func (s *CartSession) CommitOrder(ctx context.Context) (domain.Order, error) {
	s.reload(ctx)

	order, err := domain.NewOrder(s.cart, s.clock())
	if err != nil {
		return domain.Order{}, err
	}

	var appendErr error
	if s.records == nil {
		appendErr = fmt.Errorf("%w: %w", domain.ErrWriteFailure, domain.ErrStorageUnavailable)
	} else {
		appendErr = s.records.AppendOrder(ctx, order)
	}

	s.cart = domain.Cart{}
	s.clearStored(ctx)

	entry := s.logger.WithFields(log.Fields{
		"order_id":    order.OrderID,
		"total_items": order.TotalItems,
		"total_price": order.TotalPrice,
	})
	if appendErr != nil {
		entry.WithError(appendErr).Error("order was not saved to history, cart cleared anyway")
		return order, appendErr
	}

	s.metrics.RecordOrderCommitted(order.TotalItems, order.TotalPrice)
	entry.Info("order committed")
	s.publish(ctx, order)
	return order, nil
}

// ClearAllData удаляет корзину сессии и все долговременные коллекции.
func (s *CartSession) ClearAllData(ctx context.Context) error {
	s.cart = domain.Cart{}
	s.degraded = false

	var errs []error
	if s.store != nil {
		if err := s.store.Remove(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if s.records != nil {
		if err := s.records.ClearAll(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Snapshot возвращает корзину сессии и все долговременные коллекции.
func (s *CartSession) Snapshot(ctx context.Context) Snapshot {
	var snapshot Snapshot
	if s.records != nil {
		snapshot = s.records.Snapshot(ctx)
	} else {
		snapshot = Snapshot{
			CustomerData:  []domain.CustomerInquiry{},
			OrderHistory:  []domain.Order{},
			Subscriptions: []domain.Subscription{},
		}
	}
	snapshot.Cart = s.Cart(ctx)
	return snapshot
}

// reload подтягивает корзину из хранилища, если оно канонично.
func (s *CartSession) reload(ctx context.Context) {
	if s.store == nil || s.degraded {
		return
	}
	if cart, ok := s.store.load(ctx); ok {
		s.cart = cart
	}
}

func (s *CartSession) persist(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, s.cart); err != nil {
		s.markDegraded(err)
		return
	}
	s.degraded = false
}

func (s *CartSession) clearStored(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.Clear(ctx); err != nil {
		s.markDegraded(err)
		return
	}
	s.degraded = false
}

func (s *CartSession) markDegraded(err error) {
	if !s.degraded {
		s.logger.WithError(err).Warn("session storage write failed, keeping cart in memory")
	}
	s.degraded = true
}

func (s *CartSession) publish(ctx context.Context, order domain.Order) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderCommitted(ctx, order); err != nil {
		s.logger.WithError(err).WithField("order_id", order.OrderID).Warn("failed to publish order committed event")
	}
}

// ComputeTotal суммирует цену * количество по всем позициям с округлением до центов.
// Нераспознанная цена считается нулевой.
func ComputeTotal(cart domain.Cart) float64 {
	return cart.TotalPrice()
}

// Summarize формирует многострочное описание корзины.
func Summarize(cart domain.Cart) string {
	var b strings.Builder
	b.WriteString("Shopping Cart Contents:\n\n")
	for _, line := range cart {
		fmt.Fprintf(&b, "%s\n%s\n", line.Title, line.Author)
		fmt.Fprintf(&b, "%s x %d = %s\n", line.Price, line.Quantity, domain.FormatPrice(line.Total()))
		fmt.Fprintf(&b, "Added: %s\n\n", line.DateAdded.Format(summaryDateLayout))
	}
	fmt.Fprintf(&b, "Total Items: %d\n", cart.TotalItems())
	fmt.Fprintf(&b, "Total Price: %s", domain.FormatPrice(ComputeTotal(cart)))
	return b.String()
}

// RenderCartSummary формирует строку индикатора корзины.
func RenderCartSummary(itemCount int, totalPrice float64) string {
	return fmt.Sprintf("Cart Summary: %d items | Total: %s", itemCount, domain.FormatPrice(totalPrice))
}

// OrderConfirmation формирует вопрос подтверждения заказа.
func OrderConfirmation(itemCount int, totalPrice float64) string {
	return fmt.Sprintf("Process order for %d item(s)? Total: %s", itemCount, domain.FormatPrice(totalPrice))
}
