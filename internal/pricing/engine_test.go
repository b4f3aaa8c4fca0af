package pricing

import (
	"testing"
	"time"

	"github.com/circley-tech/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 16, 15, 30, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngineWithClock(time.UTC, func() time.Time { return fixedNow })
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func line(productID int64, qty int, price string) domain.CartLine {
	return domain.CartLine{
		ProductID: productID,
		Quantity:  qty,
		UnitPrice: decimal.NewNullDecimal(dec(price)),
		ListPrice: dec(price),
	}
}

func percentage(id int64, value string, products ...int64) domain.Promotion {
	return domain.Promotion{
		ID:         id,
		Name:       "percent",
		Kind:       domain.PromotionPercentage,
		Value:      dec(value),
		ProductIDs: products,
		IsActive:   true,
	}
}

func pairPromo(id int64, products ...int64) domain.Promotion {
	return domain.Promotion{
		ID:         id,
		Name:       "2x1",
		Kind:       domain.PromotionBuyNPayM,
		ProductIDs: products,
		IsActive:   true,
	}
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2))
}

func TestCompute_EndToEndScenario(t *testing.T) {
	engine := newTestEngine()
	lines := []domain.CartLine{
		line(1, 3, "10.00"),
		line(2, 1, "50.00"),
	}
	promos := []domain.Promotion{percentage(1, "10", 1)}

	totals := engine.Compute(lines, promos)

	assertMoney(t, "80.00", totals.Subtotal)
	assertMoney(t, "3.00", totals.TotalDiscount)
	assertMoney(t, "77.00", totals.Total)
	require.Len(t, totals.Contributions, 1)
	assertMoney(t, "3.00", totals.Contributions[0].Amount)
}

func TestCompute_NoPromotions(t *testing.T) {
	engine := newTestEngine()
	lines := []domain.CartLine{line(1, 2, "19.99"), line(2, 3, "0.35")}

	totals := engine.Compute(lines, nil)

	assertMoney(t, "41.03", totals.Subtotal)
	assertMoney(t, "0.00", totals.TotalDiscount)
	assert.True(t, totals.Total.Equal(totals.Subtotal))
}

func TestCompute_EmptyCart(t *testing.T) {
	totals := newTestEngine().Compute(nil, []domain.Promotion{percentage(1, "50")})

	assertMoney(t, "0.00", totals.Subtotal)
	assertMoney(t, "0.00", totals.TotalDiscount)
	assertMoney(t, "0.00", totals.Total)
	assert.Empty(t, totals.Contributions)
}

func TestCompute_SkipsInactiveAndOutOfWindowPromotions(t *testing.T) {
	engine := newTestEngine()
	lines := []domain.CartLine{line(1, 4, "10.00")}

	inactive := percentage(1, "50", 1)
	inactive.IsActive = false

	expired := percentage(2, "50", 1)
	expired.EndDate = day(2026, 10, 15)

	future := pairPromo(3, 1)
	future.StartDate = day(2026, 10, 17)

	endsToday := percentage(4, "10", 1)
	endsToday.StartDate = day(2026, 10, 1)
	endsToday.EndDate = day(2026, 10, 16)

	totals := engine.Compute(lines, []domain.Promotion{inactive, expired, future, endsToday})

	assertMoney(t, "40.00", totals.Subtotal)
	assertMoney(t, "4.00", totals.TotalDiscount)
	assertMoney(t, "36.00", totals.Total)
	require.Len(t, totals.Contributions, 1)
	assert.Equal(t, int64(4), totals.Contributions[0].PromotionID)
}

func TestPercentageDiscount_Property(t *testing.T) {
	tests := []struct {
		qty   int
		price string
		rate  string
		want  string
	}{
		{1, "10.00", "10", "1.00"},
		{3, "3.33", "15", "1.50"},   // 9.99 × 0.15 = 1.4985
		{7, "1.15", "50", "4.03"},   // 8.05 × 0.5 = 4.025 → half-up
		{2, "0.05", "5", "0.01"},    // 0.10 × 0.05 = 0.005 → half-up
		{1, "99.99", "100", "99.99"},
		{5, "12.50", "0", "0.00"},
		{5, "12.50", "-10", "0.00"},
	}

	for _, tt := range tests {
		promo := percentage(1, tt.rate, 1)
		got := PercentageDiscount([]domain.CartLine{line(1, tt.qty, tt.price)}, &promo)
		assertMoney(t, tt.want, got)
	}
}

func TestPercentageDiscount_CartWideWhenNoProducts(t *testing.T) {
	promo := percentage(1, "10")
	lines := []domain.CartLine{line(1, 1, "20.00"), line(2, 2, "15.00")}

	assertMoney(t, "5.00", PercentageDiscount(lines, &promo))
}

func TestPercentageDiscount_IgnoresOtherProducts(t *testing.T) {
	promo := percentage(1, "10", 99)
	lines := []domain.CartLine{line(1, 1, "20.00")}

	assertMoney(t, "0.00", PercentageDiscount(lines, &promo))
}

func TestGroupDiscount_PairProperty(t *testing.T) {
	tests := []struct {
		qty  int
		want string
	}{
		{0, "0.00"},
		{1, "0.00"},
		{2, "10.00"},
		{3, "10.00"},
		{5, "20.00"},
		{6, "30.00"},
	}

	promo := pairPromo(1, 1)
	for _, tt := range tests {
		got := GroupDiscount([]domain.CartLine{line(1, tt.qty, "10.00")}, &promo)
		assertMoney(t, tt.want, got)
	}
}

func TestGroupDiscount_PerLineNotPooled(t *testing.T) {
	promo := pairPromo(1, 1, 2)
	// по одной единице двух разных товаров — пары внутри позиции нет
	lines := []domain.CartLine{line(1, 1, "10.00"), line(2, 1, "10.00")}

	assertMoney(t, "0.00", GroupDiscount(lines, &promo))
}

func TestGroupDiscount_EmptyProductSetContributesNothing(t *testing.T) {
	promo := pairPromo(1)
	lines := []domain.CartLine{line(1, 4, "10.00")}

	assertMoney(t, "0.00", GroupDiscount(lines, &promo))
}

func TestGroupDiscount_BuyThreePayTwo(t *testing.T) {
	promo := pairPromo(1, 1)
	promo.RequiredUnits = 3
	promo.PaidUnits = 2

	got := GroupDiscount([]domain.CartLine{line(1, 7, "4.99")}, &promo)
	assertMoney(t, "9.98", got)
}

func TestCompute_FallsBackToListPriceWhenCapturedMissing(t *testing.T) {
	engine := newTestEngine()
	missing := domain.CartLine{ProductID: 1, Quantity: 2, ListPrice: dec("12.00")}
	zero := domain.CartLine{ProductID: 2, Quantity: 1, UnitPrice: decimal.NewNullDecimal(decimal.Zero), ListPrice: dec("5.00")}

	totals := engine.Compute([]domain.CartLine{missing, zero}, []domain.Promotion{pairPromo(1, 1)})

	assertMoney(t, "29.00", totals.Subtotal)
	assertMoney(t, "12.00", totals.TotalDiscount)
	assertMoney(t, "17.00", totals.Total)
}

func TestCompute_UsesCapturedPriceNotListPrice(t *testing.T) {
	engine := newTestEngine()
	l := line(1, 2, "10.00")
	l.ListPrice = dec("15.00")

	totals := engine.Compute([]domain.CartLine{l}, []domain.Promotion{percentage(1, "10", 1)})

	assertMoney(t, "20.00", totals.Subtotal)
	assertMoney(t, "2.00", totals.TotalDiscount)
}

func TestCompute_TotalFlooredAtZero(t *testing.T) {
	engine := newTestEngine()
	// две акции на один и тот же товар складываются без приоритета
	promos := []domain.Promotion{percentage(1, "100", 1), pairPromo(2, 1)}

	totals := engine.Compute([]domain.CartLine{line(1, 2, "10.00")}, promos)

	assertMoney(t, "20.00", totals.Subtotal)
	assertMoney(t, "30.00", totals.TotalDiscount)
	assertMoney(t, "0.00", totals.Total)
	assert.Len(t, totals.Contributions, 2)
}

// Каждый вклад округляется отдельно, затем округляется сумма. Одно округление
// «сырой» суммы дало бы 0.01 вместо 0.02 — это ожидаемое поведение.
func TestCompute_DoubleRoundingOfDiscounts(t *testing.T) {
	engine := newTestEngine()
	lines := []domain.CartLine{line(1, 1, "0.10"), line(2, 1, "0.10")}
	promos := []domain.Promotion{percentage(1, "5", 1), percentage(2, "5", 2)}

	totals := engine.Compute(lines, promos)

	assertMoney(t, "0.02", totals.TotalDiscount)
	single := dec("0.10").Mul(dec("0.05")).Add(dec("0.10").Mul(dec("0.05"))).Round(2)
	assertMoney(t, "0.01", single)
	assertMoney(t, "0.18", totals.Total)
}

func TestCompute_Idempotent(t *testing.T) {
	engine := newTestEngine()
	lines := []domain.CartLine{line(1, 5, "3.33"), line(2, 2, "7.77")}
	promos := []domain.Promotion{percentage(1, "12.5"), pairPromo(2, 2)}

	first := engine.Compute(lines, promos)
	second := engine.Compute(lines, promos)

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.TotalDiscount.Equal(second.TotalDiscount))
	assert.True(t, first.Total.Equal(second.Total))
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, "3.33", lines[0].UnitPrice.Decimal.StringFixed(2))
}

func TestCompute_TotalInvariant(t *testing.T) {
	engine := newTestEngine()
	carts := [][]domain.CartLine{
		{line(1, 1, "0.01")},
		{line(1, 9, "1.11"), line(2, 3, "250.00")},
		{line(2, 2, "0.99"), line(3, 11, "13.13")},
	}
	promos := []domain.Promotion{percentage(1, "33.33"), pairPromo(2, 2, 3), percentage(3, "90", 3)}

	for _, lines := range carts {
		totals := engine.Compute(lines, promos)
		want := totals.Subtotal.Sub(totals.TotalDiscount)
		if want.IsNegative() {
			want = decimal.Zero
		}
		assert.True(t, totals.Total.Equal(want), "total %s, want %s", totals.Total, want)
		assert.Equal(t, int32(-2), min(totals.Total.Exponent(), -2))
	}
}

func TestDiscountedUnitPrice(t *testing.T) {
	engine := newTestEngine()
	promos := []domain.Promotion{
		percentage(1, "10", 1),
		percentage(2, "10", 1),
		pairPromo(3, 1),
		percentage(4, "50", 2),
	}

	assertMoney(t, "81.00", engine.DiscountedUnitPrice(1, dec("100.00"), promos))
	assertMoney(t, "100.00", engine.DiscountedUnitPrice(3, dec("100.00"), promos))
	assert.True(t, engine.HasActivePromotion(1, promos))
	assert.False(t, engine.HasActivePromotion(3, promos))
}

func TestToday_UsesStoreLocation(t *testing.T) {
	loc := time.FixedZone("UTC-6", -6*60*60)
	engine := NewEngineWithClock(loc, func() time.Time {
		return time.Date(2026, 10, 17, 3, 0, 0, 0, time.UTC)
	})

	assert.Equal(t, 16, engine.Today().Day())
}
