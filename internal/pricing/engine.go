// Package pricing считает скидки и итоги корзины по действующим акциям.
//
// Все суммы округляются до копеек (half-up) в каждой точке, где фиксируется
// скидка или итог: вклад каждой позиции BUY_N_PAY_M, вклад каждой процентной
// акции, затем ещё раз сумма скидок. Итоги корзины и заказа зависят от этого порядка.
package pricing

import (
	"time"

	"github.com/circley-tech/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Engine пересчитывает корзину. Состояния, кроме часов и часового пояса магазина, не хранит.
type Engine struct {
	now func() time.Time
	loc *time.Location
}

func NewEngine(loc *time.Location) *Engine {
	return NewEngineWithClock(loc, time.Now)
}

func NewEngineWithClock(loc *time.Location, now func() time.Time) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{now: now, loc: loc}
}

// Today возвращает текущую дату в часовом поясе магазина.
func (e *Engine) Today() time.Time {
	return domain.DateOf(e.now().In(e.loc))
}

// Now возвращает текущее время в часовом поясе магазина.
func (e *Engine) Now() time.Time {
	return e.now().In(e.loc)
}

// Compute считает подытог, скидку и итог корзины. Акции применяются независимо друг от друга
// в порядке переданного списка; неактивные и вне окна действия пропускаются.
// Входные данные не изменяются.
func (e *Engine) Compute(lines []domain.CartLine, promotions []domain.Promotion) domain.Totals {
	today := e.Today()
	subtotal := Subtotal(lines)

	var (
		sum           = decimal.Zero
		contributions = make([]domain.DiscountContribution, 0, len(promotions))
	)
	for i := range promotions {
		promo := &promotions[i]
		if !promo.AppliesOn(today) {
			continue
		}

		amount := Discount(lines, promo)
		if amount.IsZero() {
			continue
		}

		sum = sum.Add(amount)
		contributions = append(contributions, domain.DiscountContribution{
			PromotionID:   promo.ID,
			PromotionName: promo.Name,
			Kind:          promo.Kind,
			Amount:        amount,
		})
	}

	totalDiscount := domain.Round2(sum)

	return domain.Totals{
		Subtotal:      subtotal,
		TotalDiscount: totalDiscount,
		Total:         domain.MaxZero(subtotal.Sub(totalDiscount)),
		Contributions: contributions,
	}
}

// Subtotal — round2(Σ количество × цена) по всем позициям.
func Subtotal(lines []domain.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Amount())
	}
	return domain.Round2(sum)
}

// Discount возвращает вклад одной акции, уже округлённый до копеек.
func Discount(lines []domain.CartLine, promo *domain.Promotion) decimal.Decimal {
	switch promo.Kind {
	case domain.PromotionPercentage:
		return PercentageDiscount(lines, promo)
	case domain.PromotionBuyNPayM:
		return GroupDiscount(lines, promo)
	default:
		return decimal.Zero
	}
}

// PercentageDiscount — round2(подытог подходящих позиций × процент / 100).
// Без списка товаров акция действует на всю корзину.
func PercentageDiscount(lines []domain.CartLine, promo *domain.Promotion) decimal.Decimal {
	if !promo.Value.IsPositive() {
		return decimal.Zero
	}

	restricted := decimal.Zero
	for _, l := range lines {
		if promo.IsCartWide() || promo.Covers(l.ProductID) {
			restricted = restricted.Add(l.Amount())
		}
	}

	if !restricted.IsPositive() {
		return decimal.Zero
	}

	return domain.Round2(restricted.Mul(promo.Value).Div(hundred))
}

// GroupDiscount — «возьми N, заплати за M» отдельно по каждой позиции:
// бесплатных единиц floor(q/N)×(N−M), вклад позиции округляется до копеек.
// Действует только на товары из списка акции.
func GroupDiscount(lines []domain.CartLine, promo *domain.Promotion) decimal.Decimal {
	required, paid := promo.GroupSize()

	total := decimal.Zero
	for _, l := range lines {
		if !promo.Covers(l.ProductID) || l.Quantity < required {
			continue
		}

		free := (l.Quantity / required) * (required - paid)
		total = total.Add(domain.Round2(l.Price().Mul(decimal.NewFromInt(int64(free)))))
	}

	return total
}

// DiscountedUnitPrice — витринная цена товара после его акций: процентные акции применяются
// к цене последовательно, BUY_N_PAY_M цену единицы не меняет. Округление один раз в конце.
// Для позиций корзины не используется.
func (e *Engine) DiscountedUnitPrice(productID int64, price decimal.Decimal, promotions []domain.Promotion) decimal.Decimal {
	today := e.Today()

	result := price
	for i := range promotions {
		promo := &promotions[i]
		if !promo.AppliesOn(today) || !promo.Covers(productID) || promo.Kind != domain.PromotionPercentage {
			continue
		}
		if !promo.Value.IsPositive() {
			continue
		}

		result = domain.MaxZero(result.Sub(result.Mul(promo.Value).Div(hundred)))
	}

	return domain.Round2(result)
}

// HasActivePromotion сообщает, есть ли у товара действующая акция.
func (e *Engine) HasActivePromotion(productID int64, promotions []domain.Promotion) bool {
	today := e.Today()
	for i := range promotions {
		if promotions[i].AppliesOn(today) && promotions[i].Covers(productID) {
			return true
		}
	}
	return false
}
