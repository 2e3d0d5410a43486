package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookhaven/internal/domain"
)

func testOrder() domain.Order {
	now := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	return domain.Order{
		OrderID: domain.NewOrderID(now),
		Items: []domain.CartLine{
			{ID: "l1", Title: "Dune", Author: "Frank Herbert", Price: "$12.50", Quantity: 2, DateAdded: now},
		},
		TotalItems: 2,
		TotalPrice: 25,
		OrderDate:  now,
		Status:     domain.OrderStatusProcessed,
	}
}

func TestProducer_PublishOrderCommitted(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mockProducer, log.WithField("component", "kafka-producer-test"))

	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event OrderCommittedEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.EventType != EventTypeOrderCommitted || event.OrderID != "ORDER-1773484200000" {
			return fmt.Errorf("unexpected event: %+v", event)
		}
		if len(event.Items) != 1 || event.Items[0].Quantity != 2 {
			return fmt.Errorf("unexpected items: %+v", event.Items)
		}
		return nil
	})

	if err := producer.PublishOrderCommitted(context.Background(), testOrder()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishOrderCommitted_Error(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mockProducer, nil)

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	if err := producer.PublishOrderCommitted(context.Background(), testOrder()); err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishOrderCommitted_CanceledContext(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mockProducer, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := producer.PublishOrderCommitted(ctx, testOrder()); err == nil {
		t.Fatal("expected context error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_MarshalError(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mockProducer, nil)

	if err := producer.PublishEvent(TopicOrderEvents, "key", make(chan int)); err == nil {
		t.Fatal("expected marshal error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewOrderCommittedEvent(t *testing.T) {
	order := testOrder()

	event := NewOrderCommittedEvent(order)

	if event.EventType != EventTypeOrderCommitted {
		t.Errorf("expected event type %s, got %s", EventTypeOrderCommitted, event.EventType)
	}
	if event.Status != "Processed" {
		t.Errorf("expected status Processed, got %s", event.Status)
	}
	if event.TotalItems != 2 || event.TotalPrice != 25 {
		t.Errorf("unexpected totals: %d / %v", event.TotalItems, event.TotalPrice)
	}
	if event.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}
