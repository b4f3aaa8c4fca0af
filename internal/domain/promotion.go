package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// PromotionKind — тип скидки акции.
type PromotionKind string

const (
	// PromotionPercentage — процент от стоимости подходящих позиций.
	PromotionPercentage PromotionKind = "PERCENTAGE"
	// PromotionBuyNPayM — «возьми N, заплати за M» внутри одной позиции корзины.
	PromotionBuyNPayM PromotionKind = "BUY_N_PAY_M"
)

const (
	defaultRequiredUnits = 2
	defaultPaidUnits     = 1
)

func (k PromotionKind) Valid() bool {
	return k == PromotionPercentage || k == PromotionBuyNPayM
}

// Promotion описывает акцию.
// StartDate и EndDate сравниваются по календарной дате включительно, nil — граница открыта.
type Promotion struct {
	ID            int64
	Name          string
	Description   string
	Kind          PromotionKind
	Value         decimal.Decimal // Процент для PERCENTAGE
	RequiredUnits int             // N для BUY_N_PAY_M
	PaidUnits     int             // M для BUY_N_PAY_M
	ProductIDs    []int64         // Товары акции, пустой список — вся корзина
	IsActive      bool
	StartDate     *time.Time
	EndDate       *time.Time
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

func NewPromotion(name, description string, kind PromotionKind, value decimal.Decimal,
	requiredUnits, paidUnits int, start, end *time.Time) *Promotion {
	return &Promotion{
		Name:          name,
		Description:   description,
		Kind:          kind,
		Value:         value,
		RequiredUnits: requiredUnits,
		PaidUnits:     paidUnits,
		IsActive:      true,
		StartDate:     start,
		EndDate:       end,
	}
}

// AppliesOn сообщает, действует ли акция в календарный день day.
func (p *Promotion) AppliesOn(day time.Time) bool {
	if !p.IsActive {
		return false
	}

	d := DateOf(day)
	if p.StartDate != nil && d.Before(DateOf(*p.StartDate)) {
		return false
	}
	if p.EndDate != nil && d.After(DateOf(*p.EndDate)) {
		return false
	}

	return true
}

// Covers сообщает, входит ли товар в явный список товаров акции.
func (p *Promotion) Covers(productID int64) bool {
	return slices.Contains(p.ProductIDs, productID)
}

// IsCartWide — акция без списка товаров.
func (p *Promotion) IsCartWide() bool {
	return len(p.ProductIDs) == 0
}

// GroupSize возвращает N и M для BUY_N_PAY_M. Незаданные или бессмысленные
// значения сводятся к «2 по цене 1».
func (p *Promotion) GroupSize() (required int, paid int) {
	if p.RequiredUnits < 2 || p.PaidUnits < 1 || p.PaidUnits >= p.RequiredUnits {
		return defaultRequiredUnits, defaultPaidUnits
	}
	return p.RequiredUnits, p.PaidUnits
}

// DateOf отбрасывает время суток, сохраняя календарную дату в локации t.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
