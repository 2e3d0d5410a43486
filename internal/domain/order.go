package domain

import (
	"fmt"
	"time"
)

// OrderStatus описывает состояние оформленного заказа.
type OrderStatus string

const (
	// OrderStatusProcessed: заказ сформирован из корзины и сохранён в истории.
	OrderStatusProcessed OrderStatus = "Processed"
)

// Order: неизменяемый снимок корзины на момент оформления.
type Order struct {
	OrderID string `json:"orderId"`
	// Items: замороженная копия позиций, а не ссылка на живую корзину.
	Items      []CartLine  `json:"items"`
	TotalItems int         `json:"totalItems"`
	TotalPrice float64     `json:"totalPrice"`
	OrderDate  time.Time   `json:"orderDate"`
	Status     OrderStatus `json:"status"`
}

// NewOrderID формирует идентификатор заказа из времени создания.
func NewOrderID(now time.Time) string {
	return fmt.Sprintf("ORDER-%d", now.UnixMilli())
}

// NewOrder фиксирует корзину в заказ. Пустая корзина даёт ErrEmptyCart.
func NewOrder(cart Cart, now time.Time) (Order, error) {
	if len(cart) == 0 {
		return Order{}, ErrEmptyCart
	}
	if errs := cart.Validate(); len(errs) > 0 {
		return Order{}, errs[0]
	}

	snapshot := cart.Clone()
	return Order{
		OrderID:    NewOrderID(now),
		Items:      snapshot,
		TotalItems: snapshot.TotalItems(),
		TotalPrice: snapshot.TotalPrice(),
		OrderDate:  now.UTC(),
		Status:     OrderStatusProcessed,
	}, nil
}
