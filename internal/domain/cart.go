package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart — корзина покупателя. Subtotal, TotalDiscount и Total — кэш последнего пересчёта.
type Cart struct {
	ID            int64
	CustomerID    int64
	IsActive      bool
	Subtotal      decimal.Decimal
	TotalDiscount decimal.Decimal
	Total         decimal.Decimal
	Lines         []CartLine
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CartLine — позиция корзины с ценой, зафиксированной при добавлении или последнем изменении.
type CartLine struct {
	ID          int64
	CartID      int64
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.NullDecimal // Зафиксированная цена, может отсутствовать у старых записей
	ListPrice   decimal.Decimal     // Текущая цена товара в каталоге
}

func NewCartLine(cartID, productID int64, quantity int, unitPrice decimal.Decimal) *CartLine {
	return &CartLine{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: decimal.NewNullDecimal(Round2(unitPrice)),
	}
}

// Price возвращает зафиксированную цену, а если её нет — текущую цену товара.
func (l CartLine) Price() decimal.Decimal {
	if l.UnitPrice.Valid && l.UnitPrice.Decimal.IsPositive() {
		return l.UnitPrice.Decimal
	}
	return l.ListPrice
}

// Amount — стоимость позиции без округления.
func (l CartLine) Amount() decimal.Decimal {
	return l.Price().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// DiscountContribution — вклад одной акции в скидку корзины.
type DiscountContribution struct {
	PromotionID   int64
	PromotionName string
	Kind          PromotionKind
	Amount        decimal.Decimal
}

// Totals — результат пересчёта корзины.
type Totals struct {
	Subtotal      decimal.Decimal
	TotalDiscount decimal.Decimal
	Total         decimal.Decimal
	Contributions []DiscountContribution
}

// ApplyTotals записывает результат пересчёта в кэшируемые поля корзины.
func (c *Cart) ApplyTotals(t Totals) {
	c.Subtotal = t.Subtotal
	c.TotalDiscount = t.TotalDiscount
	c.Total = t.Total
}

// FindLine ищет позицию корзины по идентификатору.
func (c *Cart) FindLine(lineID int64) (*CartLine, bool) {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			return &c.Lines[i], true
		}
	}
	return nil, false
}

// FindProduct ищет позицию корзины по товару.
func (c *Cart) FindProduct(productID int64) (*CartLine, bool) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i], true
		}
	}
	return nil, false
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
