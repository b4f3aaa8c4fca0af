package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusInTransit OrderStatus = "IN_TRANSIT"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusInTransit, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentCard     PaymentMethod = "CARD"
	PaymentTransfer PaymentMethod = "TRANSFER"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}

// Order — заказ. Денежные поля и позиции копируются из корзины при оформлении
// и больше никогда не пересчитываются.
type Order struct {
	ID                  int64
	Number              uuid.UUID
	CustomerID          int64
	Status              OrderStatus
	Subtotal            decimal.Decimal
	DiscountTotal       decimal.Decimal
	Total               decimal.Decimal
	ShippingAddress     string
	PaymentMethod       PaymentMethod
	PlacedAt            time.Time
	ShippedAt           *time.Time
	EstimatedDelivery   *time.Time
	DeliveredAt         *time.Time
	ConfirmedByCustomer bool
	ConfirmedByAdmin    bool
	Lines               []OrderLine
}

// OrderLine — снимок позиции корзины на момент оформления.
type OrderLine struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Subtotal — стоимость позиции заказа, округлённая до копеек.
func (l OrderLine) Subtotal() decimal.Decimal {
	return Round2(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
}

// NewOrderFromCart снимает копию корзины: итоги берутся из последнего пересчёта как есть,
// цены позиций — зафиксированные (с подстановкой текущей цены, если зафиксированной нет).
func NewOrderFromCart(cart *Cart, address string, method PaymentMethod,
	estimatedDelivery *time.Time, now time.Time) *Order {
	lines := make([]OrderLine, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, OrderLine{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.Price(),
		})
	}

	return &Order{
		Number:            uuid.New(),
		CustomerID:        cart.CustomerID,
		Status:            OrderStatusPending,
		Subtotal:          cart.Subtotal,
		DiscountTotal:     cart.TotalDiscount,
		Total:             cart.Total,
		ShippingAddress:   address,
		PaymentMethod:     method,
		PlacedAt:          now,
		EstimatedDelivery: estimatedDelivery,
		Lines:             lines,
	}
}

// ConfirmByCustomer фиксирует подтверждение получения покупателем.
// Заказ считается доставленным, когда подтвердили обе стороны.
func (o *Order) ConfirmByCustomer(now time.Time) {
	o.ConfirmedByCustomer = true
	if o.ConfirmedByAdmin {
		o.markDelivered(now)
	}
}

// ConfirmByAdmin фиксирует подтверждение администратора. Без подтверждения
// покупателя заказ переходит в IN_TRANSIT.
func (o *Order) ConfirmByAdmin(now time.Time) {
	o.ConfirmedByAdmin = true
	if o.ConfirmedByCustomer {
		o.markDelivered(now)
		return
	}
	o.MarkInTransit(now)
}

func (o *Order) MarkInTransit(now time.Time) {
	o.Status = OrderStatusInTransit
	if o.ShippedAt == nil {
		o.ShippedAt = &now
	}
}

func (o *Order) markDelivered(now time.Time) {
	o.Status = OrderStatusDelivered
	o.DeliveredAt = &now
	o.ConfirmedByCustomer = true
	o.ConfirmedByAdmin = true
}

// SetStatus — ручная смена статуса из админки.
func (o *Order) SetStatus(status OrderStatus, now time.Time) {
	switch status {
	case OrderStatusInTransit:
		o.MarkInTransit(now)
	case OrderStatusDelivered:
		o.markDelivered(now)
	default:
		o.Status = status
	}
}
