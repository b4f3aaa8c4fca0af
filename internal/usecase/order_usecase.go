package usecase

import (
	"context"

	"github.com/circley-tech/storefront/internal/domain"
	"github.com/circley-tech/storefront/internal/pricing"
	"github.com/circley-tech/storefront/pkg/e"
	"github.com/circley-tech/storefront/pkg/logger"
)

// OrderUseCase ведёт заказ после оформления. Денежные поля и позиции заказа не меняются.
type OrderUseCase struct {
	orderRepo  OrderRepository
	outboxRepo OutboxRepository
	encoder    EventEncoder
	txManager  TxManager
	engine     *pricing.Engine
	logger     logger.Logger
}

func NewOrderUC(
	orderRepo OrderRepository,
	outboxRepo OutboxRepository,
	encoder EventEncoder,
	txManager TxManager,
	engine *pricing.Engine,
	logger logger.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		orderRepo:  orderRepo,
		outboxRepo: outboxRepo,
		encoder:    encoder,
		txManager:  txManager,
		engine:     engine,
		logger:     logger,
	}
}

func (o *OrderUseCase) ListCustomerOrders(ctx context.Context, customerID int64) ([]domain.Order, error) {
	const op = "OrderUseCase.ListCustomerOrders"

	orders, err := o.orderRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return orders, nil
}

// GetCustomerOrder возвращает заказ, только если он принадлежит покупателю.
func (o *OrderUseCase) GetCustomerOrder(ctx context.Context, customerID, orderID int64) (*domain.Order, error) {
	const op = "OrderUseCase.GetCustomerOrder"

	order, err := o.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if order.CustomerID != customerID {
		return nil, e.Wrap(op, e.ErrOrderNotFound)
	}

	return order, nil
}

func (o *OrderUseCase) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	const op = "OrderUseCase.GetOrder"

	order, err := o.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return order, nil
}

func (o *OrderUseCase) ListOrders(ctx context.Context, filter OrderFilter) ([]domain.Order, error) {
	const op = "OrderUseCase.ListOrders"

	if filter.Status != nil && !filter.Status.Valid() {
		return nil, e.Wrap(op, e.ErrInvalidOrderStatus)
	}

	orders, err := o.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return orders, nil
}

// ConfirmByCustomer — покупатель подтверждает получение заказа.
func (o *OrderUseCase) ConfirmByCustomer(ctx context.Context, customerID, orderID int64) (*domain.Order, error) {
	const op = "OrderUseCase.ConfirmByCustomer"

	order, err := o.progress(ctx, orderID, func(order *domain.Order) error {
		if order.CustomerID != customerID {
			return e.ErrOrderNotFound
		}
		if order.Status == domain.OrderStatusCancelled {
			return e.ErrInvalidOrderStatus
		}

		order.ConfirmByCustomer(o.engine.Now())
		return nil
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return order, nil
}

// ConfirmByAdmin — администратор подтверждает отправку или доставку заказа.
func (o *OrderUseCase) ConfirmByAdmin(ctx context.Context, orderID int64) (*domain.Order, error) {
	const op = "OrderUseCase.ConfirmByAdmin"

	order, err := o.progress(ctx, orderID, func(order *domain.Order) error {
		if order.Status == domain.OrderStatusCancelled {
			return e.ErrInvalidOrderStatus
		}

		order.ConfirmByAdmin(o.engine.Now())
		return nil
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return order, nil
}

// UpdateStatus — ручная смена статуса администратором.
func (o *OrderUseCase) UpdateStatus(ctx context.Context, req *UpdateOrderStatusReq) (*domain.Order, error) {
	const op = "OrderUseCase.UpdateStatus"

	if !req.Status.Valid() {
		return nil, e.Wrap(op, e.ErrInvalidOrderStatus)
	}

	order, err := o.progress(ctx, req.OrderID, func(order *domain.Order) error {
		order.SetStatus(req.Status, o.engine.Now())
		return nil
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return order, nil
}

// progress блокирует заказ, применяет изменение и сохраняет его. При смене статуса
// в той же транзакции пишется событие order.status_changed.
func (o *OrderUseCase) progress(ctx context.Context, orderID int64, apply func(order *domain.Order) error) (*domain.Order, error) {
	var order *domain.Order

	err := o.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		order, err = o.orderRepo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		previous := order.Status
		if err := apply(order); err != nil {
			return err
		}

		if err := o.orderRepo.UpdateProgress(ctx, order); err != nil {
			return err
		}

		if order.Status == previous {
			return nil
		}

		o.logger.Infof("Order status changed. order_id: %d, from: %s, to: %s", order.ID, previous, order.Status)
		return enqueueOrderEvent(ctx, o.outboxRepo, o.encoder, OrderStatusChanged, order, o.engine.Now())
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}
