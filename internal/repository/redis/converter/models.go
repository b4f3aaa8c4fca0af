package converter

import "github.com/shopspring/decimal"

// ProductInfoRedisModel — JSON-представление товара в кэше. Цена хранится строкой,
// чтобы не терять точность.
type ProductInfoRedisModel struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	CategoryName string          `json:"category_name"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
}
