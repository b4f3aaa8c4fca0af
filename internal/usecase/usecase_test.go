package usecase

import (
	"testing"
	"time"

	"github.com/circley-tech/storefront/internal/pricing"
	"github.com/circley-tech/storefront/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	s      *memStore
	tx     *fakeTxManager
	cache  *fakeCache
	images *fakeImages
	engine *pricing.Engine

	cart      *CartUseCase
	checkout  *CheckoutUseCase
	orders    *OrderUseCase
	catalog   *CatalogUseCase
	promos    *PromotionUseCase
	customers *CustomerUseCase
	news      *NewsUseCase
	contact   *ContactUseCase
}

func newTestEnv() *testEnv {
	s := newMemStore()
	env := &testEnv{
		s:      s,
		tx:     &fakeTxManager{s: s},
		cache:  newFakeCache(),
		images: &fakeImages{},
		engine: pricing.NewEngineWithClock(time.UTC, func() time.Time { return testNow }),
	}

	var (
		log       = logger.Nop{}
		products  = &fakeProductRepo{s}
		cats      = &fakeCategoryRepo{s}
		customers = &fakeCustomerRepo{s}
		promos    = &fakePromotionRepo{s}
		carts     = &fakeCartRepo{s}
		orders    = &fakeOrderRepo{s}
		outbox    = &fakeOutboxRepo{s}
		news      = &fakeNewsRepo{s}
		messages  = &fakeContactRepo{s}
	)

	env.cart = NewCartUC(carts, products, promos, env.cache, env.tx, env.engine, log)
	env.checkout = NewCheckoutUC(carts, promos, orders, customers, outbox, fakeEncoder{}, env.tx, env.engine, log)
	env.orders = NewOrderUC(orders, outbox, fakeEncoder{}, env.tx, env.engine, log)
	env.catalog = NewCatalogUC(products, cats, promos, env.cache, env.images, env.tx, env.engine, log)
	env.promos = NewPromotionUC(promos, products, env.tx, env.engine, log)
	env.customers = NewCustomerUC(customers, products, orders, promos, carts, messages, env.cache, env.tx, env.engine, log)
	env.news = NewNewsUC(news, env.engine, log)
	env.contact = NewContactUC(messages, log)

	return env
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2))
}

func ptr[T any](v T) *T {
	return &v
}
