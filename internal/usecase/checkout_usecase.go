package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/circley-tech/storefront/internal/domain"
	"github.com/circley-tech/storefront/internal/pricing"
	"github.com/circley-tech/storefront/pkg/e"
	"github.com/circley-tech/storefront/pkg/logger"
)

const estimatedDeliveryLayout = "2006-01-02"

// CheckoutUseCase превращает активную корзину в заказ.
type CheckoutUseCase struct {
	cartRepo      CartRepository
	promotionRepo PromotionRepository
	orderRepo     OrderRepository
	customerRepo  CustomerRepository
	outboxRepo    OutboxRepository
	encoder       EventEncoder
	txManager     TxManager
	engine        *pricing.Engine
	logger        logger.Logger
}

func NewCheckoutUC(
	cartRepo CartRepository,
	promotionRepo PromotionRepository,
	orderRepo OrderRepository,
	customerRepo CustomerRepository,
	outboxRepo OutboxRepository,
	encoder EventEncoder,
	txManager TxManager,
	engine *pricing.Engine,
	logger logger.Logger,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		cartRepo:      cartRepo,
		promotionRepo: promotionRepo,
		orderRepo:     orderRepo,
		customerRepo:  customerRepo,
		outboxRepo:    outboxRepo,
		encoder:       encoder,
		txManager:     txManager,
		engine:        engine,
		logger:        logger,
	}
}

// Checkout оформляет заказ: пересчитывает корзину, снимает с неё копию, очищает и деактивирует
// корзину и ставит событие order.placed в outbox. Всё выполняется в одной транзакции.
func (c *CheckoutUseCase) Checkout(ctx context.Context, req *CheckoutReq) (*domain.Order, error) {
	const op = "CheckoutUseCase.Checkout"

	if !req.PaymentMethod.Valid() {
		return nil, e.Wrap(op, e.ErrInvalidPaymentMethod)
	}
	estimated := c.parseEstimatedDelivery(req.EstimatedDelivery)

	var order *domain.Order
	err := c.txManager.Do(ctx, func(ctx context.Context) error {
		cart, err := loadActiveCart(ctx, c.cartRepo, req.CustomerID, false)
		if err != nil {
			if errors.Is(err, e.ErrCartNotFound) {
				return e.ErrEmptyCart
			}
			return err
		}

		if cart.IsEmpty() {
			return e.ErrEmptyCart
		}

		address, err := c.shippingAddress(ctx, req)
		if err != nil {
			return err
		}

		// Итоги заказа — ровно то, что покупатель видит после последнего пересчёта
		if _, err := recalculate(ctx, c.cartRepo, c.promotionRepo, c.engine, cart); err != nil {
			return err
		}

		now := c.engine.Now()
		order, err = c.orderRepo.Create(ctx, domain.NewOrderFromCart(cart, address, req.PaymentMethod, estimated, now))
		if err != nil {
			return err
		}

		if err := c.cartRepo.Consume(ctx, cart.ID); err != nil {
			return err
		}

		return enqueueOrderEvent(ctx, c.outboxRepo, c.encoder, OrderPlaced, order, now)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	c.logger.Infof("Order placed. order_id: %d, customer_id: %d, total: %s",
		order.ID, order.CustomerID, order.Total.StringFixed(domain.MoneyPlaces))

	return order, nil
}

// shippingAddress берёт адрес из запроса, а если он пуст — из профиля покупателя.
func (c *CheckoutUseCase) shippingAddress(ctx context.Context, req *CheckoutReq) (string, error) {
	if address := strings.TrimSpace(req.ShippingAddress); address != "" {
		return address, nil
	}

	customer, err := c.customerRepo.GetByID(ctx, req.CustomerID)
	if err != nil {
		return "", err
	}

	if address := strings.TrimSpace(customer.Address); address != "" {
		return address, nil
	}

	return "", e.ErrShippingAddressNeeded
}

func (c *CheckoutUseCase) parseEstimatedDelivery(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	t, err := time.ParseInLocation(estimatedDeliveryLayout, value, c.engine.Now().Location())
	if err != nil {
		c.logger.Debugf("Ignoring invalid estimated delivery date %q: %v", value, err)
		return nil
	}

	return &t
}

// enqueueOrderEvent сериализует событие о заказе и пишет его в outbox текущей транзакции.
func enqueueOrderEvent(
	ctx context.Context,
	repo OutboxRepository,
	encoder EventEncoder,
	eventType OutboxEventType,
	order *domain.Order,
	now time.Time,
) error {
	event := NewOrderEvent(eventType, order, now)

	payload, err := encoder.Encode(event)
	if err != nil {
		return err
	}

	_, err = repo.Create(ctx, NewOutboxEvent(event, payload))
	return err
}
