package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product описывает товар каталога
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal // Текущая цена из каталога, 2 знака
	Stock       int
	CategoryID  int64
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

func NewProduct(name string, description string, price decimal.Decimal, stock int, categoryID int64) *Product {
	return &Product{
		Name:        name,
		Description: description,
		Price:       Round2(price),
		Stock:       stock,
		CategoryID:  categoryID,
		IsActive:    true,
	}
}

// CanSupply сообщает, хватает ли остатка на складе для quantity единиц.
func (p *Product) CanSupply(quantity int) bool {
	return quantity <= p.Stock
}
