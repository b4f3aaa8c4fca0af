package usecase

import (
	"context"
	"testing"

	"github.com/circley-tech/storefront/internal/domain"
	"github.com/circley-tech/storefront/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerUseCase_Register(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.customers.Register(ctx, &RegisterCustomerReq{Username: " "})
	assert.ErrorIs(t, err, e.ErrUsernameRequired)

	_, err = env.customers.Register(ctx, &RegisterCustomerReq{Username: "ana", Email: "not-an-email"})
	assert.ErrorIs(t, err, e.ErrInvalidEmail)

	customer, err := env.customers.Register(ctx, &RegisterCustomerReq{
		Username: "ana",
		FullName: "Ana Torres",
		Email:    "ana@example.com",
		Address:  " Calle 1 ",
	})
	require.NoError(t, err)
	assert.NotZero(t, customer.ID)
	assert.Equal(t, "Calle 1", customer.Address)

	_, err = env.customers.Register(ctx, &RegisterCustomerReq{Username: "ana"})
	assert.ErrorIs(t, err, e.ErrAlreadyExists)

	profile, err := env.customers.GetProfile(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Torres", profile.DisplayName())

	_, err = env.customers.GetProfile(ctx, 999)
	assert.ErrorIs(t, err, e.ErrCustomerNotFound)
}

func TestCustomerUseCase_Dashboard(t *testing.T) {
	env := newTestEnv()
	order, _ := placeOrder(t, env)
	env.s.addPromotion(domain.Promotion{Name: "apagada", Kind: domain.PromotionPercentage})
	env.s.messages[1] = domain.ContactMessage{ID: 1, SenderName: "Luis"}
	env.s.messages[2] = domain.ContactMessage{ID: 2, SenderName: "Eva", IsRead: true}

	dashboard, err := env.customers.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), dashboard.Customers)
	assert.Equal(t, int64(2), dashboard.Products)
	assert.Equal(t, int64(1), dashboard.Orders)
	assert.Equal(t, int64(1), dashboard.ActivePromotions)
	assert.Equal(t, int64(1), dashboard.UnreadMessages)
	assert.True(t, dashboard.Revenue.Equal(order.Total))
}

func TestCustomerUseCase_UpdateCustomer(t *testing.T) {
	env := newTestEnv()
	ana := env.s.addCustomer("ana", "Calle 1")
	env.s.addCustomer("luis", "")
	ctx := context.Background()

	updated, err := env.customers.UpdateCustomer(ctx, &UpdateCustomerReq{
		ID:      ana.ID,
		Email:   ptr(" ana@example.com "),
		Address: ptr("Calle 2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "ana", updated.Username)
	assert.Equal(t, "ana@example.com", env.s.customers[ana.ID].Email)
	assert.Equal(t, "Calle 2", env.s.customers[ana.ID].Address)

	_, err = env.customers.UpdateCustomer(ctx, &UpdateCustomerReq{ID: ana.ID, Email: ptr("nope")})
	assert.ErrorIs(t, err, e.ErrInvalidEmail)

	_, err = env.customers.UpdateCustomer(ctx, &UpdateCustomerReq{ID: ana.ID, Username: ptr(" ")})
	assert.ErrorIs(t, err, e.ErrUsernameRequired)

	_, err = env.customers.UpdateCustomer(ctx, &UpdateCustomerReq{ID: ana.ID, Username: ptr("luis")})
	assert.ErrorIs(t, err, e.ErrAlreadyExists)

	_, err = env.customers.UpdateCustomer(ctx, &UpdateCustomerReq{ID: 999, FullName: ptr("X")})
	assert.ErrorIs(t, err, e.ErrCustomerNotFound)
}

func TestCustomerUseCase_DeleteCustomerReleasesCartStock(t *testing.T) {
	env := newTestEnv()
	customer := env.s.addCustomer("ana", "Calle 1")
	a, b := fillCart(t, env, customer.ID)
	ctx := context.Background()
	require.Equal(t, 7, env.s.products[a.ID].Stock)

	require.NoError(t, env.customers.DeleteCustomer(ctx, customer.ID))

	assert.NotContains(t, env.s.customers, customer.ID)
	assert.Empty(t, env.s.carts)
	assert.Empty(t, env.s.lines)
	assert.Equal(t, 10, env.s.products[a.ID].Stock)
	assert.Equal(t, 10, env.s.products[b.ID].Stock)
	assert.ElementsMatch(t, []int64{a.ID, b.ID}, env.cache.deleted[len(env.cache.deleted)-2:])

	assert.ErrorIs(t, env.customers.DeleteCustomer(ctx, customer.ID), e.ErrCustomerNotFound)
}

func TestCustomerUseCase_DeleteCustomerWithOrdersIsRefused(t *testing.T) {
	env := newTestEnv()
	_, customer := placeOrder(t, env)
	ctx := context.Background()

	// новая корзина после заказа: её резерв не должен вернуться на склад при отказе
	product := env.s.addProduct("Taza", "4.00", 5)
	_, err := env.cart.AddItem(ctx, NewAddItemReq(customer.ID, product.ID, 2))
	require.NoError(t, err)

	err = env.customers.DeleteCustomer(ctx, customer.ID)
	require.ErrorIs(t, err, e.ErrCustomerInUse)

	assert.Contains(t, env.s.customers, customer.ID)
	assert.Equal(t, 3, env.s.products[product.ID].Stock)
	_, ok := env.s.activeCart(customer.ID)
	assert.True(t, ok)
}
