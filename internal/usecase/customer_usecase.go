package usecase

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/circley-tech/storefront/internal/domain"
	"github.com/circley-tech/storefront/internal/pricing"
	"github.com/circley-tech/storefront/pkg/e"
	"github.com/circley-tech/storefront/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// CustomerUseCase — профили покупателей и сводка для админки.
// Учётные данные и вход обслуживает внешний шлюз аутентификации.
type CustomerUseCase struct {
	customerRepo  CustomerRepository
	productRepo   ProductRepository
	orderRepo     OrderRepository
	promotionRepo PromotionRepository
	cartRepo      CartRepository
	contactRepo   ContactMessageRepository
	cacheRepo     CacheRepository
	txManager     TxManager
	engine        *pricing.Engine
	logger        logger.Logger
}

func NewCustomerUC(
	customerRepo CustomerRepository,
	productRepo ProductRepository,
	orderRepo OrderRepository,
	promotionRepo PromotionRepository,
	cartRepo CartRepository,
	contactRepo ContactMessageRepository,
	cacheRepo CacheRepository,
	txManager TxManager,
	engine *pricing.Engine,
	logger logger.Logger,
) *CustomerUseCase {
	return &CustomerUseCase{
		customerRepo:  customerRepo,
		productRepo:   productRepo,
		orderRepo:     orderRepo,
		promotionRepo: promotionRepo,
		cartRepo:      cartRepo,
		contactRepo:   contactRepo,
		cacheRepo:     cacheRepo,
		txManager:     txManager,
		engine:        engine,
		logger:        logger,
	}
}

func (c *CustomerUseCase) Register(ctx context.Context, req *RegisterCustomerReq) (*domain.Customer, error) {
	const op = "CustomerUseCase.Register"

	customer := domain.NewCustomer(
		strings.TrimSpace(req.Username),
		strings.TrimSpace(req.FullName),
		strings.TrimSpace(req.Email),
		strings.TrimSpace(req.Phone),
		strings.TrimSpace(req.Address),
	)

	if err := validateCustomer(customer); err != nil {
		return nil, e.Wrap(op, err)
	}

	created, err := c.customerRepo.Create(ctx, customer)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return created, nil
}

func (c *CustomerUseCase) GetProfile(ctx context.Context, customerID int64) (*domain.Customer, error) {
	const op = "CustomerUseCase.GetProfile"

	customer, err := c.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return customer, nil
}

func (c *CustomerUseCase) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	const op = "CustomerUseCase.ListCustomers"

	customers, err := c.customerRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return customers, nil
}

// UpdateCustomer частично обновляет профиль покупателя.
func (c *CustomerUseCase) UpdateCustomer(ctx context.Context, req *UpdateCustomerReq) (*domain.Customer, error) {
	const op = "CustomerUseCase.UpdateCustomer"

	customer, err := c.customerRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	for _, f := range []struct {
		src *string
		dst *string
	}{
		{req.Username, &customer.Username},
		{req.FullName, &customer.FullName},
		{req.Email, &customer.Email},
		{req.Phone, &customer.Phone},
		{req.Address, &customer.Address},
	} {
		if f.src != nil {
			*f.dst = strings.TrimSpace(*f.src)
		}
	}

	if err := validateCustomer(customer); err != nil {
		return nil, e.Wrap(op, err)
	}

	updated, err := c.customerRepo.Update(ctx, customer)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return updated, nil
}

// DeleteCustomer удаляет покупателя без заказов. Товары из его активной корзины
// возвращаются на склад в той же транзакции.
func (c *CustomerUseCase) DeleteCustomer(ctx context.Context, id int64) error {
	const op = "CustomerUseCase.DeleteCustomer"

	var released []int64
	err := c.txManager.Do(ctx, func(ctx context.Context) error {
		if _, err := c.customerRepo.GetByID(ctx, id); err != nil {
			return err
		}

		cart, err := loadActiveCart(ctx, c.cartRepo, id, false)
		switch {
		case errors.Is(err, e.ErrCartNotFound):
		case err != nil:
			return err
		default:
			for _, line := range cart.Lines {
				if err := c.productRepo.AdjustStock(ctx, line.ProductID, line.Quantity); err != nil {
					return err
				}
				released = append(released, line.ProductID)
			}
		}

		return c.customerRepo.Delete(ctx, id)
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	if len(released) > 0 {
		if err := c.cacheRepo.DeleteProducts(ctx, released); err != nil {
			c.logger.Warnf("Failed to delete products from cache: %v", err)
		}
	}

	c.logger.Infof("Customer deleted. customer_id: %d, released products: %d", id, len(released))
	return nil
}

// Dashboard собирает счётчики параллельными запросами.
func (c *CustomerUseCase) Dashboard(ctx context.Context) (*Dashboard, error) {
	const op = "CustomerUseCase.Dashboard"

	var res Dashboard
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		res.Customers, err = c.customerRepo.Count(gCtx)
		return err
	})
	g.Go(func() (err error) {
		res.Products, err = c.productRepo.Count(gCtx)
		return err
	})
	g.Go(func() (err error) {
		res.Orders, err = c.orderRepo.Count(gCtx)
		return err
	})
	g.Go(func() (err error) {
		res.ActivePromotions, err = c.promotionRepo.CountActive(gCtx, c.engine.Today())
		return err
	})
	g.Go(func() (err error) {
		res.Revenue, err = c.orderRepo.Revenue(gCtx)
		return err
	})
	g.Go(func() (err error) {
		res.UnreadMessages, err = c.contactRepo.CountUnread(gCtx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, e.Wrap(op, err)
	}

	return &res, nil
}

func validateCustomer(customer *domain.Customer) error {
	if customer.Username == "" {
		return e.ErrUsernameRequired
	}

	if customer.Email != "" {
		if _, err := mail.ParseAddress(customer.Email); err != nil {
			return e.ErrInvalidEmail
		}
	}

	return nil
}
