package usecase

import (
	"time"

	"github.com/circley-tech/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OutboxStatus string

const (
	Pending    OutboxStatus = "PENDING"
	Processing OutboxStatus = "PROCESSING"
	Processed  OutboxStatus = "PROCESSED"
)

type OutboxEventType string

const (
	OrderPlaced        OutboxEventType = "order.placed"
	OrderStatusChanged OutboxEventType = "order.status_changed"
)

// OutboxEvent — событие, записанное в той же транзакции, что и изменение заказа.
type OutboxEvent struct {
	ID          int64
	EventID     uuid.UUID
	EventType   OutboxEventType
	OrderID     int64
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// OrderEvent — содержимое события о заказе до сериализации.
type OrderEvent struct {
	EventID     uuid.UUID
	Type        OutboxEventType
	OrderID     int64
	OrderNumber uuid.UUID
	CustomerID  int64
	Status      domain.OrderStatus
	Subtotal    decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal
	OccurredAt  time.Time
}

func NewOrderEvent(eventType OutboxEventType, order *domain.Order, occurredAt time.Time) *OrderEvent {
	return &OrderEvent{
		EventID:     uuid.New(),
		Type:        eventType,
		OrderID:     order.ID,
		OrderNumber: order.Number,
		CustomerID:  order.CustomerID,
		Status:      order.Status,
		Subtotal:    order.Subtotal,
		Discount:    order.DiscountTotal,
		Total:       order.Total,
		OccurredAt:  occurredAt,
	}
}

func NewOutboxEvent(event *OrderEvent, payload []byte) *OutboxEvent {
	return &OutboxEvent{
		EventID:   event.EventID,
		EventType: event.Type,
		OrderID:   event.OrderID,
		Payload:   payload,
		Status:    Pending,
		CreatedAt: event.OccurredAt,
	}
}
