package storefront

import (
	"context"
	"errors"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookhaven/internal/domain"
	"github.com/vladislavdragonenkov/bookhaven/internal/metrics"
)

// OutcomeKind классифицирует результат команды для UI.
type OutcomeKind string

const (
	OutcomeItemAdded         OutcomeKind = "item_added"
	OutcomeItemRejected      OutcomeKind = "item_rejected"
	OutcomeCartContents      OutcomeKind = "cart_contents"
	OutcomeCartEmpty         OutcomeKind = "cart_empty"
	OutcomeNothingToClear    OutcomeKind = "nothing_to_clear"
	OutcomeCartCleared       OutcomeKind = "cart_cleared"
	OutcomeOrderCommitted    OutcomeKind = "order_committed"
	OutcomeOrderNotSaved     OutcomeKind = "order_not_saved"
	OutcomeOrderFailed       OutcomeKind = "order_failed"
	OutcomeMissingFields     OutcomeKind = "missing_fields"
	OutcomeInvalidEmail      OutcomeKind = "invalid_email"
	OutcomeInquirySaved      OutcomeKind = "inquiry_saved"
	OutcomeInquiryFailed     OutcomeKind = "inquiry_failed"
	OutcomeEmailRequired     OutcomeKind = "email_required"
	OutcomeAlreadySubscribed OutcomeKind = "already_subscribed"
	OutcomeSubscribed        OutcomeKind = "subscribed"
	OutcomeSubscribeFailed   OutcomeKind = "subscribe_failed"
	OutcomeCartSummary       OutcomeKind = "cart_summary"
	OutcomeDataCleared       OutcomeKind = "data_cleared"
)

// Тексты уведомлений витрины.
const (
	MsgItemAdded         = "Item added to cart"
	MsgItemRejected      = "Could not add this item to the cart."
	MsgCartEmptyView     = "Your cart is empty"
	MsgNothingToClear    = "No items to clear"
	MsgCartCleared       = "Cart cleared"
	MsgCartEmptyCommit   = "Cart is empty"
	MsgOrderThanks       = "Thank you for your order"
	MsgOrderNotSaved     = "Your order was processed but could not be saved to your order history."
	MsgOrderFailed       = "Your order could not be processed. Please try again."
	MsgMissingFields     = "Please fill in all required fields."
	MsgInvalidEmail      = "Please enter a valid email address."
	MsgInquiryThanks     = "Thank you for your message"
	MsgInquiryFailed     = "There was an error saving your message. Please try again."
	MsgEmailRequired     = "Please enter your email address to subscribe."
	MsgAlreadySubscribed = "This email is already subscribed to our newsletter."
	MsgSubscribed        = "Thank you for subscribing!"
	MsgSubscribeFailed   = "There was an error saving your subscription. Please try again."
	MsgDataCleared       = "All stored data has been cleared"
)

// Outcome: результат команды: вид и текст уведомления для пользователя.
type Outcome struct {
	Kind    OutcomeKind `json:"kind"`
	Message string      `json:"message"`
	// Order заполняется только при оформлении заказа.
	Order *domain.Order `json:"order,omitempty"`
}

// Storefront: командный интерфейс витрины: один метод на действие пользователя.
// Экземпляр обслуживает одну сессию.
type Storefront struct {
	session *CartSession
	records *DurableRecordStore
	logger  *log.Entry
	clock   func() time.Time
	metrics *metrics.StorefrontMetrics
}

// NewStorefront связывает команды с корзиной сессии и хранилищем записей.
func NewStorefront(session *CartSession, records *DurableRecordStore, options ...Option) *Storefront {
	var opts SessionOptions
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "storefront")
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Storefront{
		session: session,
		records: records,
		logger:  logger,
		clock:   clock,
		metrics: opts.Metrics,
	}
}

// Session возвращает корзину, которой управляют команды.
func (f *Storefront) Session() *CartSession {
	return f.session
}

// AddItem добавляет книгу в корзину.
func (f *Storefront) AddItem(ctx context.Context, title, author, price string) Outcome {
	defer f.observe("add_item", f.clock())

	if _, err := f.session.AddItem(ctx, title, author, price); err != nil {
		f.logger.WithError(err).WithField("title", title).Warn("item rejected")
		f.metrics.RecordAction("add_item", metrics.ResultRejected)
		return Outcome{Kind: OutcomeItemRejected, Message: MsgItemRejected}
	}
	f.metrics.RecordAction("add_item", metrics.ResultOK)
	return Outcome{Kind: OutcomeItemAdded, Message: MsgItemAdded}
}

// ViewCart показывает содержимое корзины.
func (f *Storefront) ViewCart(ctx context.Context) Outcome {
	defer f.observe("view_cart", f.clock())

	cart := f.session.Cart(ctx)
	if len(cart) == 0 {
		return Outcome{Kind: OutcomeCartEmpty, Message: MsgCartEmptyView}
	}
	return Outcome{Kind: OutcomeCartContents, Message: Summarize(cart)}
}

// ClearCart очищает корзину.
func (f *Storefront) ClearCart(ctx context.Context) Outcome {
	defer f.observe("clear_cart", f.clock())

	if err := f.session.ClearCart(ctx); err != nil {
		if errors.Is(err, domain.ErrCartAlreadyEmpty) {
			f.metrics.RecordAction("clear_cart", metrics.ResultRejected)
			return Outcome{Kind: OutcomeNothingToClear, Message: MsgNothingToClear}
		}
		f.logger.WithError(err).Warn("clear cart failed")
	}
	f.metrics.RecordAction("clear_cart", metrics.ResultOK)
	return Outcome{Kind: OutcomeCartCleared, Message: MsgCartCleared}
}

// CommitOrder оформляет заказ из текущей корзины.
func (f *Storefront) CommitOrder(ctx context.Context) Outcome {
	defer f.observe("commit_order", f.clock())

	order, err := f.session.CommitOrder(ctx)
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		f.metrics.RecordAction("commit_order", metrics.ResultRejected)
		return Outcome{Kind: OutcomeCartEmpty, Message: MsgCartEmptyCommit}
	case err != nil && order.OrderID != "":
		f.metrics.RecordAction("commit_order", metrics.ResultFailed)
		return Outcome{Kind: OutcomeOrderNotSaved, Message: MsgOrderNotSaved, Order: &order}
	case err != nil:
		f.logger.WithError(err).Error("commit order failed")
		f.metrics.RecordAction("commit_order", metrics.ResultFailed)
		return Outcome{Kind: OutcomeOrderFailed, Message: MsgOrderFailed}
	}
	f.metrics.RecordAction("commit_order", metrics.ResultOK)
	return Outcome{Kind: OutcomeOrderCommitted, Message: MsgOrderThanks, Order: &order}
}

// OrderPrompt возвращает текст подтверждения перед оформлением заказа.
func (f *Storefront) OrderPrompt(ctx context.Context) Outcome {
	cart := f.session.Cart(ctx)
	if len(cart) == 0 {
		return Outcome{Kind: OutcomeCartEmpty, Message: MsgCartEmptyCommit}
	}
	return Outcome{Kind: OutcomeCartSummary, Message: OrderConfirmation(cart.TotalItems(), ComputeTotal(cart))}
}

// SubmitInquiry сохраняет обращение из формы обратной связи.
func (f *Storefront) SubmitInquiry(ctx context.Context, in domain.InquiryInput) Outcome {
	defer f.observe("submit_inquiry", f.clock())

	inquiry, err := domain.NewCustomerInquiry(in, f.clock())
	if err != nil {
		f.metrics.RecordAction("submit_inquiry", metrics.ResultRejected)
		if domain.MissingRequired(err) {
			return Outcome{Kind: OutcomeMissingFields, Message: MsgMissingFields}
		}
		return Outcome{Kind: OutcomeInvalidEmail, Message: MsgInvalidEmail}
	}

	if err := f.records.AppendCustomerInquiry(ctx, inquiry); err != nil {
		f.logger.WithError(err).Error("failed to save customer inquiry")
		f.metrics.RecordAction("submit_inquiry", metrics.ResultFailed)
		return Outcome{Kind: OutcomeInquiryFailed, Message: MsgInquiryFailed}
	}
	f.metrics.RecordAction("submit_inquiry", metrics.ResultOK)
	return Outcome{Kind: OutcomeInquirySaved, Message: MsgInquiryThanks}
}

// Subscribe подписывает email на рассылку.
func (f *Storefront) Subscribe(ctx context.Context, email string) Outcome {
	defer f.observe("subscribe", f.clock())

	if strings.TrimSpace(email) == "" {
		f.metrics.RecordAction("subscribe", metrics.ResultRejected)
		return Outcome{Kind: OutcomeEmailRequired, Message: MsgEmailRequired}
	}
	sub, err := domain.NewSubscription(email, f.clock())
	if err != nil {
		f.metrics.RecordAction("subscribe", metrics.ResultRejected)
		return Outcome{Kind: OutcomeInvalidEmail, Message: MsgInvalidEmail}
	}

	if err := f.records.AppendSubscription(ctx, sub); err != nil {
		if errors.Is(err, domain.ErrDuplicateSubscription) {
			f.metrics.RecordAction("subscribe", metrics.ResultDuplicate)
			return Outcome{Kind: OutcomeAlreadySubscribed, Message: MsgAlreadySubscribed}
		}
		f.logger.WithError(err).Error("failed to save subscription")
		f.metrics.RecordAction("subscribe", metrics.ResultFailed)
		return Outcome{Kind: OutcomeSubscribeFailed, Message: MsgSubscribeFailed}
	}
	f.metrics.RecordAction("subscribe", metrics.ResultOK)
	return Outcome{Kind: OutcomeSubscribed, Message: MsgSubscribed}
}

// CartSummary возвращает строку индикатора корзины.
func (f *Storefront) CartSummary(ctx context.Context) Outcome {
	cart := f.session.Cart(ctx)
	return Outcome{
		Kind:    OutcomeCartSummary,
		Message: RenderCartSummary(cart.TotalItems(), ComputeTotal(cart)),
	}
}

// ClearAllData удаляет все сохранённые данные сессии и витрины.
func (f *Storefront) ClearAllData(ctx context.Context) Outcome {
	if err := f.session.ClearAllData(ctx); err != nil {
		f.logger.WithError(err).Warn("clear all data finished with errors")
	}
	return Outcome{Kind: OutcomeDataCleared, Message: MsgDataCleared}
}

func (f *Storefront) observe(action string, started time.Time) {
	f.metrics.RecordCommandDuration(action, f.clock().Sub(started))
}
