package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/circley-tech/storefront/internal/domain"
	"github.com/circley-tech/storefront/internal/pricing"
	"github.com/circley-tech/storefront/pkg/e"
	"github.com/circley-tech/storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

var maxPercentage = decimal.NewFromInt(100)

type PromotionUseCase struct {
	promotionRepo PromotionRepository
	productRepo   ProductRepository
	txManager     TxManager
	engine        *pricing.Engine
	logger        logger.Logger
}

func NewPromotionUC(
	promotionRepo PromotionRepository,
	productRepo ProductRepository,
	txManager TxManager,
	engine *pricing.Engine,
	logger logger.Logger,
) *PromotionUseCase {
	return &PromotionUseCase{
		promotionRepo: promotionRepo,
		productRepo:   productRepo,
		txManager:     txManager,
		engine:        engine,
		logger:        logger,
	}
}

// ListCurrentPromotions возвращает акции, действующие сегодня по календарю магазина.
func (p *PromotionUseCase) ListCurrentPromotions(ctx context.Context) ([]domain.Promotion, error) {
	const op = "PromotionUseCase.ListCurrentPromotions"

	promotions, err := p.promotionRepo.ListActive(ctx, p.engine.Today())
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return promotions, nil
}

func (p *PromotionUseCase) ListPromotions(ctx context.Context) ([]domain.Promotion, error) {
	const op = "PromotionUseCase.ListPromotions"

	promotions, err := p.promotionRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return promotions, nil
}

func (p *PromotionUseCase) CreatePromotion(ctx context.Context, req *CreatePromotionReq) (*domain.Promotion, error) {
	const op = "PromotionUseCase.CreatePromotion"

	promotion := domain.NewPromotion(
		strings.TrimSpace(req.Name),
		strings.TrimSpace(req.Description),
		req.Kind,
		req.Value,
		req.RequiredUnits,
		req.PaidUnits,
		dateOrNil(req.StartDate),
		dateOrNil(req.EndDate),
	)
	promotion.IsActive = req.IsActive
	normalizeGroupSize(promotion)

	if err := validatePromotion(promotion); err != nil {
		return nil, e.Wrap(op, err)
	}

	var created *domain.Promotion
	err := p.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		created, err = p.promotionRepo.Create(ctx, promotion)
		if err != nil {
			return err
		}

		created.ProductIDs, err = p.linkProducts(ctx, created.ID, req.ProductIDs)
		return err
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	p.logger.Infof("Promotion created. promotion_id: %d, kind: %s", created.ID, created.Kind)
	return created, nil
}

// UpdatePromotion частично обновляет акцию. Пересчёт корзин происходит при следующем обращении к ним.
func (p *PromotionUseCase) UpdatePromotion(ctx context.Context, req *UpdatePromotionReq) (*domain.Promotion, error) {
	const op = "PromotionUseCase.UpdatePromotion"

	var updated *domain.Promotion
	err := p.txManager.Do(ctx, func(ctx context.Context) error {
		promotion, err := p.promotionRepo.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}

		applyPromotionUpdate(promotion, req)
		normalizeGroupSize(promotion)

		if err := validatePromotion(promotion); err != nil {
			return err
		}

		updated, err = p.promotionRepo.Update(ctx, promotion)
		return err
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return updated, nil
}

// SetPromotionProducts заменяет список товаров акции. Пустой список делает процентную акцию общей на корзину.
func (p *PromotionUseCase) SetPromotionProducts(ctx context.Context, req *SetPromotionProductsReq) (*domain.Promotion, error) {
	const op = "PromotionUseCase.SetPromotionProducts"

	var promotion *domain.Promotion
	err := p.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		promotion, err = p.promotionRepo.GetByID(ctx, req.PromotionID)
		if err != nil {
			return err
		}

		promotion.ProductIDs, err = p.linkProducts(ctx, promotion.ID, req.ProductIDs)
		return err
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return promotion, nil
}

// DeletePromotion удаляет акцию. Итоги корзин пересчитаются при следующем обращении к ним.
func (p *PromotionUseCase) DeletePromotion(ctx context.Context, id int64) error {
	const op = "PromotionUseCase.DeletePromotion"

	if err := p.promotionRepo.Delete(ctx, id); err != nil {
		return e.Wrap(op, err)
	}

	p.logger.Infof("Promotion deleted. promotion_id: %d", id)
	return nil
}

// linkProducts проверяет существование товаров и сохраняет привязку без дублей.
func (p *PromotionUseCase) linkProducts(ctx context.Context, promotionID int64, productIDs []int64) ([]int64, error) {
	ids := slices.Clone(productIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	for _, id := range ids {
		if _, err := p.productRepo.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}

	if err := p.promotionRepo.SetProducts(ctx, promotionID, ids); err != nil {
		return nil, err
	}

	return ids, nil
}

func applyPromotionUpdate(promotion *domain.Promotion, req *UpdatePromotionReq) {
	if req.Name != nil {
		promotion.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		promotion.Description = strings.TrimSpace(*req.Description)
	}
	if req.Kind != nil {
		promotion.Kind = *req.Kind
	}
	if req.Value != nil {
		promotion.Value = *req.Value
	}
	if req.RequiredUnits != nil {
		promotion.RequiredUnits = *req.RequiredUnits
	}
	if req.PaidUnits != nil {
		promotion.PaidUnits = *req.PaidUnits
	}
	if req.IsActive != nil {
		promotion.IsActive = *req.IsActive
	}

	switch {
	case req.ClearStartDate:
		promotion.StartDate = nil
	case req.StartDate != nil:
		promotion.StartDate = dateOrNil(req.StartDate)
	}

	switch {
	case req.ClearEndDate:
		promotion.EndDate = nil
	case req.EndDate != nil:
		promotion.EndDate = dateOrNil(req.EndDate)
	}
}

// normalizeGroupSize подставляет «2 по цене 1», если N и M не заданы.
func normalizeGroupSize(promotion *domain.Promotion) {
	if promotion.Kind != domain.PromotionBuyNPayM {
		promotion.RequiredUnits, promotion.PaidUnits = 0, 0
		return
	}

	if promotion.RequiredUnits == 0 && promotion.PaidUnits == 0 {
		promotion.RequiredUnits, promotion.PaidUnits = promotion.GroupSize()
	}
}

func validatePromotion(promotion *domain.Promotion) error {
	if promotion.Name == "" {
		return fmt.Errorf("%w: name is required", e.ErrInvalidPromotion)
	}

	switch promotion.Kind {
	case domain.PromotionPercentage:
		if promotion.Value.IsNegative() || promotion.Value.GreaterThan(maxPercentage) {
			return fmt.Errorf("%w: percentage must be between 0 and 100", e.ErrInvalidPromotion)
		}
	case domain.PromotionBuyNPayM:
		if promotion.PaidUnits < 1 || promotion.RequiredUnits <= promotion.PaidUnits {
			return fmt.Errorf("%w: required units must exceed paid units", e.ErrInvalidPromotion)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", e.ErrInvalidPromotion, promotion.Kind)
	}

	if promotion.StartDate != nil && promotion.EndDate != nil && promotion.StartDate.After(*promotion.EndDate) {
		return e.ErrInvalidDateRange
	}

	return nil
}

func dateOrNil(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := domain.DateOf(*t)
	return &d
}
