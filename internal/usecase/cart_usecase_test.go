package usecase

import (
	"context"
	"testing"

	"github.com/circley-tech/storefront/internal/domain"
	"github.com/circley-tech/storefront/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartUseCase_GetCartCreatesEmptyCart(t *testing.T) {
	env := newTestEnv()

	view, err := env.cart.GetCart(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(7), view.Cart.CustomerID)
	assert.True(t, view.Cart.IsActive)
	assert.Empty(t, view.Cart.Lines)
	assertMoney(t, "0.00", view.Cart.Subtotal)
	assertMoney(t, "0.00", view.Cart.Total)

	_, ok := env.s.activeCart(7)
	assert.True(t, ok)
}

func TestCartUseCase_AddItemCapturesPriceAndReservesStock(t *testing.T) {
	env := newTestEnv()
	product := env.s.addProduct("Taza", "10.00", 5)

	view, err := env.cart.AddItem(context.Background(), NewAddItemReq(1, product.ID, 3))
	require.NoError(t, err)

	require.Len(t, view.Cart.Lines, 1)
	l := view.Cart.Lines[0]
	assert.Equal(t, 3, l.Quantity)
	assert.Equal(t, "Taza", l.ProductName)
	assertMoney(t, "10.00", l.UnitPrice.Decimal)
	assertMoney(t, "30.00", view.Cart.Subtotal)
	assertMoney(t, "30.00", view.Cart.Total)

	assert.Equal(t, 2, env.s.products[product.ID].Stock)
	assert.Contains(t, env.cache.deleted, product.ID)
}

func TestCartUseCase_AddItemTwiceMergesLine(t *testing.T) {
	env := newTestEnv()
	product := env.s.addProduct("Taza", "10.00", 10)
	ctx := context.Background()

	_, err := env.cart.AddItem(ctx, NewAddItemReq(1, product.ID, 1))
	require.NoError(t, err)
	view, err := env.cart.AddItem(ctx, NewAddItemReq(1, product.ID, 2))
	require.NoError(t, err)

	require.Len(t, view.Cart.Lines, 1)
	assert.Equal(t, 3, view.Cart.Lines[0].Quantity)
	assert.Equal(t, 7, env.s.products[product.ID].Stock)
}

func TestCartUseCase_AddItemValidation(t *testing.T) {
	env := newTestEnv()
	product := env.s.addProduct("Taza", "10.00", 2)
	inactive := env.s.addProduct("Vaso", "4.00", 10)
	inactive.IsActive = false
	env.s.products[inactive.ID] = inactive
	ctx := context.Background()

	_, err := env.cart.AddItem(ctx, NewAddItemReq(1, product.ID, 0))
	assert.ErrorIs(t, err, e.ErrInvalidQuantity)

	_, err = env.cart.AddItem(ctx, NewAddItemReq(1, product.ID, 3))
	assert.ErrorIs(t, err, e.ErrInsufficientStock)

	_, err = env.cart.AddItem(ctx, NewAddItemReq(1, inactive.ID, 1))
	assert.ErrorIs(t, err, e.ErrProductNotFound)

	_, err = env.cart.AddItem(ctx, NewAddItemReq(1, 999, 1))
	assert.ErrorIs(t, err, e.ErrProductNotFound)

	assert.Equal(t, 2, env.s.products[product.ID].Stock)
	assert.Empty(t, env.s.lines)
}

func TestCartUseCase_AppliesActivePromotions(t *testing.T) {
	env := newTestEnv()
	a := env.s.addProduct("A", "10.00", 10)
	b := env.s.addProduct("B", "50.00", 10)
	env.s.addPromotion(domain.Promotion{
		Name:       "10% en A",
		Kind:       domain.PromotionPercentage,
		Value:      dec("10"),
		ProductIDs: []int64{a.ID},
		IsActive:   true,
	})
	ctx := context.Background()

	_, err := env.cart.AddItem(ctx, NewAddItemReq(1, a.ID, 3))
	require.NoError(t, err)
	view, err := env.cart.AddItem(ctx, NewAddItemReq(1, b.ID, 1))
	require.NoError(t, err)

	assertMoney(t, "80.00", view.Cart.Subtotal)
	assertMoney(t, "3.00", view.Cart.TotalDiscount)
	assertMoney(t, "77.00", view.Cart.Total)
	require.Len(t, view.Discounts, 1)
	assert.Equal(t, "10% en A", view.Discounts[0].PromotionName)

	stored, _ := env.s.activeCart(1)
	assertMoney(t, "77.00", stored.Total)
}

func TestCartUseCase_UpdateItemAdjustsStockByDifference(t *testing.T) {
	env := newTestEnv()
	product := env.s.addProduct("Taza", "10.00", 10)
	ctx := context.Background()

	view, err := env.cart.AddItem(ctx, NewAddItemReq(1, product.ID, 2))
	require.NoError(t, err)
	lineID := view.Cart.Lines[0].ID

	// новая цена фиксируется при изменении позиции
	p := env.s.products[product.ID]
	p.Price = dec("12.00")
	env.s.products[product.ID] = p

	view, err = env.cart.UpdateItem(ctx, NewUpdateItemReq(1, lineID, 4))
	require.NoError(t, err)
	assert.Equal(t, 6, env.s.products[product.ID].Stock)
	assertMoney(t, "12.00", view.Cart.Lines[0].UnitPrice.Decimal)
	assertMoney(t, "48.00", view.Cart.Subtotal)

	view, err = env.cart.UpdateItem(ctx, NewUpdateItemReq(1, lineID, 1))
	require.NoError(t, err)
	assert.Equal(t, 9, env.s.products[product.ID].Stock)
	assert.Equal(t, 1, view.Cart.Lines[0].Quantity)

	_, err = env.cart.UpdateItem(ctx, NewUpdateItemReq(1, lineID, 20))
	assert.ErrorIs(t, err, e.ErrInsufficientStock)
	assert.Equal(t, 9, env.s.products[product.ID].Stock)
}

func TestCartUseCase_UpdateItemDecreasesDeactivatedProduct(t *testing.T) {
	env := newTestEnv()
	product := env.s.addProduct("Taza", "10.00", 10)
	ctx := context.Background()

	view, err := env.cart.AddItem(ctx, NewAddItemReq(1, product.ID, 4))
	require.NoError(t, err)
	lineID := view.Cart.Lines[0].ID

	p := env.s.products[product.ID]
	p.IsActive = false
	env.s.products[product.ID] = p

	view, err = env.cart.UpdateItem(ctx, NewUpdateItemReq(1, lineID, 2))
	require.NoError(t, err)
	require.Len(t, view.Cart.Lines, 1)
	assert.Equal(t, 2, view.Cart.Lines[0].Quantity)
	assert.Equal(t, 8, env.s.products[product.ID].Stock)

	_, err = env.cart.UpdateItem(ctx, NewUpdateItemReq(1, lineID, 3))
	assert.ErrorIs(t, err, e.ErrProductNotFound)
	assert.Equal(t, 8, env.s.products[product.ID].Stock)
}

func TestCartUseCase_UpdateItemToZeroRemovesLine(t *testing.T) {
	env := newTestEnv()
	product := env.s.addProduct("Taza", "10.00", 10)
	ctx := context.Background()

	view, err := env.cart.AddItem(ctx, NewAddItemReq(1, product.ID, 4))
	require.NoError(t, err)

	view, err = env.cart.UpdateItem(ctx, NewUpdateItemReq(1, view.Cart.Lines[0].ID, 0))
	require.NoError(t, err)

	assert.Empty(t, view.Cart.Lines)
	assertMoney(t, "0.00", view.Cart.Total)
	assert.Equal(t, 10, env.s.products[product.ID].Stock)
}

func TestCartUseCase_RemoveItem(t *testing.T) {
	env := newTestEnv()
	a := env.s.addProduct("A", "10.00", 10)
	b := env.s.addProduct("B", "3.50", 10)
	ctx := context.Background()

	_, err := env.cart.AddItem(ctx, NewAddItemReq(1, a.ID, 2))
	require.NoError(t, err)
	view, err := env.cart.AddItem(ctx, NewAddItemReq(1, b.ID, 2))
	require.NoError(t, err)

	line, ok := view.Cart.FindProduct(a.ID)
	require.True(t, ok)

	view, err = env.cart.RemoveItem(ctx, NewRemoveItemReq(1, line.ID))
	require.NoError(t, err)
	require.Len(t, view.Cart.Lines, 1)
	assertMoney(t, "7.00", view.Cart.Total)
	assert.Equal(t, 10, env.s.products[a.ID].Stock)

	_, err = env.cart.RemoveItem(ctx, NewRemoveItemReq(1, line.ID))
	assert.ErrorIs(t, err, e.ErrCartLineNotFound)
}

func TestCartUseCase_LineOfAnotherCustomerIsNotFound(t *testing.T) {
	env := newTestEnv()
	product := env.s.addProduct("Taza", "10.00", 10)
	ctx := context.Background()

	view, err := env.cart.AddItem(ctx, NewAddItemReq(1, product.ID, 1))
	require.NoError(t, err)

	_, err = env.cart.RemoveItem(ctx, NewRemoveItemReq(2, view.Cart.Lines[0].ID))
	assert.ErrorIs(t, err, e.ErrCartLineNotFound)
	assert.Equal(t, 9, env.s.products[product.ID].Stock)
}

func TestCartUseCase_KeepsCapturedPriceAfterCatalogChange(t *testing.T) {
	env := newTestEnv()
	product := env.s.addProduct("Taza", "10.00", 10)
	ctx := context.Background()

	_, err := env.cart.AddItem(ctx, NewAddItemReq(1, product.ID, 2))
	require.NoError(t, err)

	p := env.s.products[product.ID]
	p.Price = dec("15.00")
	env.s.products[product.ID] = p

	view, err := env.cart.GetCart(ctx, 1)
	require.NoError(t, err)
	assertMoney(t, "20.00", view.Cart.Subtotal)
}

func TestCartUseCase_RollsBackOnRecalculationFailure(t *testing.T) {
	env := newTestEnv()
	product := env.s.addProduct("Taza", "10.00", 10)
	env.s.failOn["Promotion.ListActive"] = errInjected

	_, err := env.cart.AddItem(context.Background(), NewAddItemReq(1, product.ID, 3))
	require.ErrorIs(t, err, errInjected)

	assert.Equal(t, 10, env.s.products[product.ID].Stock)
	assert.Empty(t, env.s.lines)
	assert.Empty(t, env.cache.deleted)
}
