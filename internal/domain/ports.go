package domain

import "context"

// Ключи хранилищ. Каждая коллекция хранится отдельным JSON-массивом.
const (
	// CartKey: корзина в хранилище сессии.
	CartKey = "bookHavenCart"
	// CustomerDataKey: обращения клиентов в долговременном хранилище.
	CustomerDataKey = "bookHavenCustomerData"
	// OrderHistoryKey: история заказов в долговременном хранилище.
	OrderHistoryKey = "bookHavenOrderHistory"
	// SubscriptionsKey: подписки на рассылку в долговременном хранилище.
	SubscriptionsKey = "bookHavenSubscriptions"
)

// DurableKeys перечисляет все коллекции долговременного хранилища.
var DurableKeys = []string{CustomerDataKey, OrderHistoryKey, SubscriptionsKey}

// KVStore описывает строковое key-value хранилище.
type KVStore interface {
	// Get возвращает значение и признак его наличия.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set записывает значение целиком.
	Set(ctx context.Context, key, value string) error
	// Remove удаляет ключ; отсутствие ключа ошибкой не считается.
	Remove(ctx context.Context, key string) error
}

// SessionStorage выдаёт хранилище, привязанное к одной сессии браузера.
type SessionStorage interface {
	ForSession(sessionID string) KVStore
}

// OrderEventPublisher публикует события об оформленных заказах.
type OrderEventPublisher interface {
	PublishOrderCommitted(ctx context.Context, order Order) error
}
