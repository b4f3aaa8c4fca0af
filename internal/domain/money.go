package domain

import "github.com/shopspring/decimal"

// MoneyPlaces — количество знаков после запятой у денежных сумм.
const MoneyPlaces = 2

// Round2 округляет сумму до копеек по правилу half-up.
// decimal.Round округляет половину от нуля, для неотрицательных сумм это и есть half-up.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// MaxZero возвращает d, но не меньше 0.00.
func MaxZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero.Round(MoneyPlaces)
	}
	return d
}
