package kafka

import (
	"time"

	"github.com/vladislavdragonenkov/bookhaven/internal/domain"
)

// EventType определяет тип события
type EventType string

const (
	// EventTypeOrderCommitted: корзина оформлена в заказ и сохранена в истории.
	EventTypeOrderCommitted EventType = "order.committed"
)

// TopicOrderEvents: топик событий заказов витрины.
const TopicOrderEvents = "bookhaven.order.events"

// OrderLine: позиция заказа в событии.
type OrderLine struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
}

// OrderCommittedEvent представляет событие оформленного заказа
type OrderCommittedEvent struct {
	EventType  EventType   `json:"event_type"`
	OrderID    string      `json:"order_id"`
	Status     string      `json:"status"`
	TotalItems int         `json:"total_items"`
	TotalPrice float64     `json:"total_price"`
	Items      []OrderLine `json:"items"`
	OrderDate  time.Time   `json:"order_date"`
	Timestamp  time.Time   `json:"timestamp"`
}

// NewOrderCommittedEvent создает событие из оформленного заказа
func NewOrderCommittedEvent(order domain.Order) *OrderCommittedEvent {
	items := make([]OrderLine, 0, len(order.Items))
	for _, line := range order.Items {
		items = append(items, OrderLine{
			Title:    line.Title,
			Author:   line.Author,
			Price:    line.Price,
			Quantity: line.Quantity,
		})
	}

	return &OrderCommittedEvent{
		EventType:  EventTypeOrderCommitted,
		OrderID:    order.OrderID,
		Status:     string(order.Status),
		TotalItems: order.TotalItems,
		TotalPrice: order.TotalPrice,
		Items:      items,
		OrderDate:  order.OrderDate,
		Timestamp:  time.Now().UTC(),
	}
}
