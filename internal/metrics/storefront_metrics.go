package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты действий витрины для label "result".
const (
	ResultOK        = "ok"
	ResultRejected  = "rejected"
	ResultFailed    = "failed"
	ResultDuplicate = "duplicate"
)

// StorefrontMetrics содержит метрики корзины и долговременных записей.
// Методы безопасно вызывать на nil-получателе: метрики тогда просто не пишутся.
type StorefrontMetrics struct {
	// Действия пользователя по типу и результату
	actions *prometheus.CounterVec

	// Оформленные заказы
	ordersCommitted prometheus.Counter
	orderValue      prometheus.Histogram
	orderItems      prometheus.Histogram

	// Ошибки хранилищ по области (session/durable) и операции
	storageErrors *prometheus.CounterVec

	// Длительность обработки команды
	commandDuration *prometheus.HistogramVec
}

// NewStorefrontMetrics регистрирует метрики в DefaultRegisterer.
func NewStorefrontMetrics() *StorefrontMetrics {
	return NewStorefrontMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewStorefrontMetricsWithRegisterer регистрирует метрики в переданном реестре.
func NewStorefrontMetricsWithRegisterer(registerer prometheus.Registerer) *StorefrontMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StorefrontMetrics{
		actions: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookhaven_storefront_actions_total",
			Help: "Total number of storefront actions grouped by action and result",
		}, []string{"action", "result"})),
		ordersCommitted: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookhaven_orders_committed_total",
			Help: "Total number of carts committed into orders",
		})),
		orderValue: register(registerer, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bookhaven_order_value_dollars",
			Help:    "Total price of committed orders",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500},
		})),
		orderItems: register(registerer, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bookhaven_order_items",
			Help:    "Number of items in committed orders",
			Buckets: []float64{1, 2, 3, 5, 10, 20},
		})),
		storageErrors: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookhaven_storage_errors_total",
			Help: "Total number of storage errors grouped by scope and operation",
		}, []string{"scope", "op"})),
		commandDuration: register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bookhaven_command_duration_seconds",
			Help:    "Duration of storefront command handling in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"action"})),
	}
}

// register регистрирует коллектор или возвращает уже зарегистрированный того же типа.
func register[T prometheus.Collector](registerer prometheus.Registerer, collector T) T {
	if err := registerer.Register(collector); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := already.ExistingCollector.(T)
			if !ok {
				panic(fmt.Sprintf("collector already registered with unexpected type: %T", already.ExistingCollector))
			}
			return existing
		}
		panic(fmt.Sprintf("register collector: %v", err))
	}
	return collector
}

// RecordAction увеличивает счётчик действия с указанным результатом.
func (m *StorefrontMetrics) RecordAction(action, result string) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(action, result).Inc()
}

// RecordOrderCommitted фиксирует оформленный заказ, его сумму и количество позиций.
func (m *StorefrontMetrics) RecordOrderCommitted(totalItems int, totalPrice float64) {
	if m == nil {
		return
	}
	m.ordersCommitted.Inc()
	m.orderValue.Observe(totalPrice)
	m.orderItems.Observe(float64(totalItems))
}

// RecordStorageError увеличивает счётчик ошибок хранилища.
func (m *StorefrontMetrics) RecordStorageError(scope, op string) {
	if m == nil {
		return
	}
	m.storageErrors.WithLabelValues(scope, op).Inc()
}

// RecordCommandDuration записывает время обработки команды.
func (m *StorefrontMetrics) RecordCommandDuration(action string, duration time.Duration) {
	if m == nil {
		return
	}
	m.commandDuration.WithLabelValues(action).Observe(duration.Seconds())
}
