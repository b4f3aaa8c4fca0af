package usecase

import (
	"context"
	"errors"

	"github.com/circley-tech/storefront/internal/domain"
	"github.com/circley-tech/storefront/internal/pricing"
	"github.com/circley-tech/storefront/pkg/e"
	"github.com/circley-tech/storefront/pkg/logger"
)

// CartUseCase управляет корзиной покупателя. Каждое изменение выполняется в транзакции
// под блокировкой строки корзины и заканчивается пересчётом итогов.
type CartUseCase struct {
	cartRepo      CartRepository
	productRepo   ProductRepository
	promotionRepo PromotionRepository
	cacheRepo     CacheRepository
	txManager     TxManager
	engine        *pricing.Engine
	logger        logger.Logger
}

func NewCartUC(
	cartRepo CartRepository,
	productRepo ProductRepository,
	promotionRepo PromotionRepository,
	cacheRepo CacheRepository,
	txManager TxManager,
	engine *pricing.Engine,
	logger logger.Logger,
) *CartUseCase {
	return &CartUseCase{
		cartRepo:      cartRepo,
		productRepo:   productRepo,
		promotionRepo: promotionRepo,
		cacheRepo:     cacheRepo,
		txManager:     txManager,
		engine:        engine,
		logger:        logger,
	}
}

// cartMutation изменяет корзину внутри транзакции и возвращает товары, остаток которых изменился.
type cartMutation func(ctx context.Context, cart *domain.Cart) ([]int64, error)

// GetCart возвращает активную корзину покупателя, создавая её при необходимости, с актуальными итогами.
func (c *CartUseCase) GetCart(ctx context.Context, customerID int64) (*CartView, error) {
	const op = "CartUseCase.GetCart"

	view, err := c.mutate(ctx, customerID, nil)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return view, nil
}

// AddItem добавляет товар в корзину. Повторное добавление увеличивает количество в существующей позиции.
func (c *CartUseCase) AddItem(ctx context.Context, req *AddItemReq) (*CartView, error) {
	const op = "CartUseCase.AddItem"

	if req.Quantity <= 0 {
		return nil, e.Wrap(op, e.ErrInvalidQuantity)
	}

	view, err := c.mutate(ctx, req.CustomerID, func(ctx context.Context, cart *domain.Cart) ([]int64, error) {
		product, err := c.lockProduct(ctx, req.ProductID)
		if err != nil {
			return nil, err
		}

		if !product.CanSupply(req.Quantity) {
			return nil, e.ErrInsufficientStock
		}

		quantity := req.Quantity
		line := domain.NewCartLine(cart.ID, product.ID, quantity, product.Price)
		if existing, ok := cart.FindProduct(product.ID); ok {
			line.ID = existing.ID
			line.Quantity = existing.Quantity + quantity
		}

		if err := c.productRepo.AdjustStock(ctx, product.ID, -quantity); err != nil {
			return nil, err
		}

		if _, err := c.cartRepo.UpsertLine(ctx, line); err != nil {
			return nil, err
		}

		return []int64{product.ID}, nil
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return view, nil
}

// UpdateItem устанавливает новое количество позиции. Количество <= 0 удаляет позицию.
// Цена позиции фиксируется заново по текущей цене товара.
func (c *CartUseCase) UpdateItem(ctx context.Context, req *UpdateItemReq) (*CartView, error) {
	const op = "CartUseCase.UpdateItem"

	if req.Quantity <= 0 {
		view, err := c.RemoveItem(ctx, NewRemoveItemReq(req.CustomerID, req.LineID))
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		return view, nil
	}

	view, err := c.mutate(ctx, req.CustomerID, func(ctx context.Context, cart *domain.Cart) ([]int64, error) {
		existing, ok := cart.FindLine(req.LineID)
		if !ok {
			return nil, e.ErrCartLineNotFound
		}

		// Уменьшать позицию можно и у снятого с продажи товара, добавлять — нет.
		product, err := c.productRepo.GetForUpdate(ctx, existing.ProductID)
		if err != nil {
			return nil, err
		}

		diff := req.Quantity - existing.Quantity
		if diff > 0 {
			if !product.IsActive {
				return nil, e.ErrProductNotFound
			}
			if !product.CanSupply(diff) {
				return nil, e.ErrInsufficientStock
			}
		}

		var touched []int64
		if diff != 0 {
			if err := c.productRepo.AdjustStock(ctx, product.ID, -diff); err != nil {
				return nil, err
			}
			touched = append(touched, product.ID)
		}

		line := domain.NewCartLine(cart.ID, product.ID, req.Quantity, product.Price)
		line.ID = existing.ID
		if _, err := c.cartRepo.UpsertLine(ctx, line); err != nil {
			return nil, err
		}

		return touched, nil
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return view, nil
}

// RemoveItem удаляет позицию и возвращает её количество на склад.
func (c *CartUseCase) RemoveItem(ctx context.Context, req *RemoveItemReq) (*CartView, error) {
	const op = "CartUseCase.RemoveItem"

	view, err := c.mutate(ctx, req.CustomerID, func(ctx context.Context, cart *domain.Cart) ([]int64, error) {
		existing, ok := cart.FindLine(req.LineID)
		if !ok {
			return nil, e.ErrCartLineNotFound
		}

		if err := c.productRepo.AdjustStock(ctx, existing.ProductID, existing.Quantity); err != nil {
			return nil, err
		}

		if err := c.cartRepo.DeleteLine(ctx, cart.ID, existing.ID); err != nil {
			return nil, err
		}

		return []int64{existing.ProductID}, nil
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return view, nil
}

// mutate блокирует корзину, применяет изменение, пересчитывает и сохраняет итоги.
// После коммита из кэша удаляются товары с изменённым остатком.
func (c *CartUseCase) mutate(ctx context.Context, customerID int64, fn cartMutation) (*CartView, error) {
	var (
		view    *CartView
		touched []int64
	)

	err := c.txManager.Do(ctx, func(ctx context.Context) error {
		cart, err := loadActiveCart(ctx, c.cartRepo, customerID, true)
		if err != nil {
			return err
		}

		if fn != nil {
			touched, err = fn(ctx, cart)
			if err != nil {
				return err
			}

			if cart.Lines, err = c.cartRepo.ListLines(ctx, cart.ID); err != nil {
				return err
			}
		}

		totals, err := recalculate(ctx, c.cartRepo, c.promotionRepo, c.engine, cart)
		if err != nil {
			return err
		}

		view = NewCartView(cart, totals.Contributions)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(touched) > 0 {
		if err := c.cacheRepo.DeleteProducts(ctx, touched); err != nil {
			c.logger.Warnf("Failed to delete products from cache: %v", err)
		}
	}

	return view, nil
}

// lockProduct блокирует товар; неактивный товар недоступен для корзины.
func (c *CartUseCase) lockProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	product, err := c.productRepo.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}

	if !product.IsActive {
		return nil, e.ErrProductNotFound
	}

	return product, nil
}

// loadActiveCart возвращает заблокированную активную корзину с позициями.
// При create=false отсутствие корзины возвращается как e.ErrCartNotFound.
func loadActiveCart(ctx context.Context, repo CartRepository, customerID int64, create bool) (*domain.Cart, error) {
	cart, err := repo.GetActiveForUpdate(ctx, customerID)
	if err != nil {
		if !errors.Is(err, e.ErrCartNotFound) || !create {
			return nil, err
		}

		if cart, err = repo.CreateActive(ctx, customerID); err != nil {
			return nil, err
		}
	}

	if cart.Lines, err = repo.ListLines(ctx, cart.ID); err != nil {
		return nil, err
	}

	return cart, nil
}

// recalculate пересчитывает корзину по действующим акциям и сохраняет итоги.
func recalculate(
	ctx context.Context,
	cartRepo CartRepository,
	promotionRepo PromotionRepository,
	engine *pricing.Engine,
	cart *domain.Cart,
) (domain.Totals, error) {
	promotions, err := promotionRepo.ListActive(ctx, engine.Today())
	if err != nil {
		return domain.Totals{}, err
	}

	totals := engine.Compute(cart.Lines, promotions)
	if err := cartRepo.UpdateTotals(ctx, cart.ID, totals); err != nil {
		return domain.Totals{}, err
	}

	cart.ApplyTotals(totals)
	return totals, nil
}
