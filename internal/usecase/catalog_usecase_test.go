package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/circley-tech/storefront/internal/domain"
	"github.com/circley-tech/storefront/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogUseCase_ListProductsWithDisplayPrice(t *testing.T) {
	env := newTestEnv()
	discounted := env.s.addProduct("Camisa", "100.00", 3)
	regular := env.s.addProduct("Pantalón", "40.00", 1)
	env.s.addProduct("Agotado", "5.00", 0)
	env.s.addPromotion(domain.Promotion{
		Name:       "10%",
		Kind:       domain.PromotionPercentage,
		Value:      dec("10"),
		ProductIDs: []int64{discounted.ID},
		IsActive:   true,
	})

	listings, err := env.catalog.ListProducts(context.Background(), ProductFilter{})
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, discounted.ID, listings[0].Product.ID)
	assertMoney(t, "90.00", listings[0].DisplayPrice)
	assert.True(t, listings[0].OnPromotion)

	assert.Equal(t, regular.ID, listings[1].Product.ID)
	assertMoney(t, "40.00", listings[1].DisplayPrice)
	assert.False(t, listings[1].OnPromotion)
}

func TestCatalogUseCase_GetProductsInfoMergesCacheAndDB(t *testing.T) {
	env := newTestEnv()
	fromDB := env.s.addProduct("Taza", "4.50", 3)
	env.cache.products[1] = NewProductInfo(1, "Cached", "Hogar", dec("2.00"), 9)

	res, err := env.catalog.GetProductsInfo(context.Background(), NewGetProductsReq([]int64{1, fromDB.ID, 404}))
	require.NoError(t, err)

	require.Len(t, res.Products, 2)
	assert.Equal(t, "Cached", res.Products[0].Name)
	assert.Equal(t, "Taza", res.Products[1].Name)
	assertMoney(t, "4.50", res.Products[1].Price)
	assert.Equal(t, []int64{404}, res.NotFoundProducts)

	select {
	case cached := <-env.cache.setCh:
		require.Len(t, cached, 1)
		assert.Equal(t, fromDB.ID, cached[0].ID)
	case <-time.After(time.Second):
		t.Fatal("products were not written to cache")
	}
}

func TestCatalogUseCase_GetProductsInfoFallsBackWhenCacheFails(t *testing.T) {
	env := newTestEnv()
	product := env.s.addProduct("Taza", "4.50", 3)
	env.cache.getErr = errInjected

	res, err := env.catalog.GetProductsInfo(context.Background(), NewGetProductsReq([]int64{product.ID}))
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.Empty(t, res.NotFoundProducts)
}

func TestCatalogUseCase_GetProductsInfoErrors(t *testing.T) {
	env := newTestEnv()

	_, err := env.catalog.GetProductsInfo(context.Background(), NewGetProductsReq(nil))
	assert.ErrorIs(t, err, e.ErrNoProducts)

	env.s.failOn["Product.GetProductsInfo"] = errInjected
	_, err = env.catalog.GetProductsInfo(context.Background(), NewGetProductsReq([]int64{1}))
	assert.ErrorIs(t, err, errInjected)
}

func TestCatalogUseCase_CreateProduct(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.catalog.CreateCategory(ctx, &CreateCategoryReq{Name: "  "})
	assert.ErrorIs(t, err, e.ErrCategoryNameRequired)

	category, err := env.catalog.CreateCategory(ctx, &CreateCategoryReq{Name: "Hogar"})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  CreateProductReq
		want error
	}{
		{"no name", CreateProductReq{Price: dec("1.00"), CategoryID: category.ID}, e.ErrProductNameRequired},
		{"precision", CreateProductReq{Name: "Taza", Price: dec("1.005"), CategoryID: category.ID}, e.ErrPricePrecision},
		{"zero price", CreateProductReq{Name: "Taza", Price: dec("0"), CategoryID: category.ID}, e.ErrPriceMustBePositive},
		{"negative stock", CreateProductReq{Name: "Taza", Price: dec("1.00"), Stock: -1, CategoryID: category.ID}, e.ErrNegativeStock},
		{"unknown category", CreateProductReq{Name: "Taza", Price: dec("1.00"), CategoryID: 999}, e.ErrCategoryNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.catalog.CreateProduct(ctx, &tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	product, err := env.catalog.CreateProduct(ctx, &CreateProductReq{
		Name: " Taza ", Price: dec("4.5"), Stock: 3, CategoryID: category.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Taza", product.Name)
	assertMoney(t, "4.50", product.Price)
	assert.True(t, product.IsActive)
}

func TestCatalogUseCase_UpdateProductInvalidatesCache(t *testing.T) {
	env := newTestEnv()
	product := env.s.addProduct("Taza", "4.50", 3)
	ctx := context.Background()

	updated, err := env.catalog.UpdateProduct(ctx, &UpdateProductReq{
		ID:       product.ID,
		Price:    ptr(dec("5.25")),
		IsActive: ptr(false),
	})
	require.NoError(t, err)

	assertMoney(t, "5.25", updated.Price)
	assert.False(t, env.s.products[product.ID].IsActive)
	assert.Equal(t, []int64{product.ID}, env.cache.deleted)

	_, err = env.catalog.UpdateProduct(ctx, &UpdateProductReq{ID: product.ID, Stock: ptr(-5)})
	assert.ErrorIs(t, err, e.ErrNegativeStock)
	assert.Equal(t, 3, env.s.products[product.ID].Stock)
}

func TestCatalogUseCase_UploadProductImages(t *testing.T) {
	env := newTestEnv()
	product := env.s.addProduct("Taza", "4.50", 3)
	images := []ProductImage{*NewProductImage([]byte{1}, "image/png", 1, "a.png")}
	ctx := context.Background()

	res, err := env.catalog.UploadProductImages(ctx, &UploadProductImagesReq{ProductID: product.ID, Images: images})
	require.NoError(t, err)
	assert.Equal(t, []string{"products/a.png"}, res.ImagesKeys)
	assert.Equal(t, res.ImagesKeys, env.s.images[product.ID])

	_, err = env.catalog.UploadProductImages(ctx, &UploadProductImagesReq{ProductID: product.ID})
	assert.ErrorIs(t, err, e.ErrNoImages)
}

func TestCatalogUseCase_UploadProductImagesCleansUpOnFailure(t *testing.T) {
	env := newTestEnv()
	product := env.s.addProduct("Taza", "4.50", 3)
	env.s.failOn["Product.AddImages"] = errInjected
	images := []ProductImage{*NewProductImage([]byte{1}, "image/png", 1, "a.png")}

	_, err := env.catalog.UploadProductImages(context.Background(),
		&UploadProductImagesReq{ProductID: product.ID, Images: images})
	require.ErrorIs(t, err, errInjected)

	assert.Equal(t, []string{"products/a.png"}, env.images.cleaned)
	assert.Empty(t, env.s.images[product.ID])
}

func TestCatalogUseCase_DeleteProduct(t *testing.T) {
	env := newTestEnv()
	product := env.s.addProduct("Taza", "4.50", 3)
	env.s.images[product.ID] = []string{"products/a.png"}
	ctx := context.Background()

	_, err := env.cart.AddItem(ctx, NewAddItemReq(1, product.ID, 1))
	require.NoError(t, err)

	require.NoError(t, env.catalog.DeleteProduct(ctx, product.ID))

	assert.NotContains(t, env.s.products, product.ID)
	assert.Empty(t, env.s.lines)
	assert.Equal(t, []string{"products/a.png"}, env.images.cleaned)
	assert.Contains(t, env.cache.deleted, product.ID)

	assert.ErrorIs(t, env.catalog.DeleteProduct(ctx, product.ID), e.ErrProductNotFound)
}

func TestCatalogUseCase_DeleteProductReferencedByOrder(t *testing.T) {
	env := newTestEnv()
	order, _ := placeOrder(t, env)
	productID := order.Lines[0].ProductID
	ctx := context.Background()

	err := env.catalog.DeleteProduct(ctx, productID)
	require.ErrorIs(t, err, e.ErrProductInUse)

	assert.Contains(t, env.s.products, productID)
	assert.Empty(t, env.images.cleaned)

	// снять с продажи такой товар можно
	_, err = env.catalog.UpdateProduct(ctx, &UpdateProductReq{ID: productID, IsActive: ptr(false)})
	require.NoError(t, err)
}

func TestCatalogUseCase_UpdateCategory(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	hogar, err := env.catalog.CreateCategory(ctx, &CreateCategoryReq{Name: "Hogar"})
	require.NoError(t, err)
	_, err = env.catalog.CreateCategory(ctx, &CreateCategoryReq{Name: "Cocina"})
	require.NoError(t, err)

	updated, err := env.catalog.UpdateCategory(ctx, &UpdateCategoryReq{
		ID:          hogar.ID,
		Name:        ptr(" Casa "),
		Description: ptr("todo para la casa"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Casa", updated.Name)
	assert.Equal(t, "todo para la casa", env.s.categories[hogar.ID].Description)

	_, err = env.catalog.UpdateCategory(ctx, &UpdateCategoryReq{ID: hogar.ID, Name: ptr("")})
	assert.ErrorIs(t, err, e.ErrCategoryNameRequired)

	_, err = env.catalog.UpdateCategory(ctx, &UpdateCategoryReq{ID: hogar.ID, Name: ptr("Cocina")})
	assert.ErrorIs(t, err, e.ErrAlreadyExists)

	_, err = env.catalog.UpdateCategory(ctx, &UpdateCategoryReq{ID: 999, Name: ptr("X")})
	assert.ErrorIs(t, err, e.ErrCategoryNotFound)
}

func TestCatalogUseCase_ArchiveCategoryHidesItsProducts(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	category, err := env.catalog.CreateCategory(ctx, &CreateCategoryReq{Name: "Hogar"})
	require.NoError(t, err)
	product, err := env.catalog.CreateProduct(ctx, &CreateProductReq{
		Name: "Taza", Price: dec("4.50"), Stock: 3, CategoryID: category.ID,
	})
	require.NoError(t, err)

	listings, err := env.catalog.ListProducts(ctx, ProductFilter{Search: "hogar"})
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, product.ID, listings[0].Product.ID)

	require.NoError(t, env.catalog.ArchiveCategory(ctx, category.ID))
	assert.ErrorIs(t, env.catalog.ArchiveCategory(ctx, category.ID), e.ErrCategoryNotFound)

	categories, err := env.catalog.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, categories)

	listings, err = env.catalog.ListProducts(ctx, ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, listings)

	// сам товар остаётся, но в архивную категорию новые не добавляются
	assert.Contains(t, env.s.products, product.ID)
	_, err = env.catalog.CreateProduct(ctx, &CreateProductReq{
		Name: "Vaso", Price: dec("2.00"), Stock: 1, CategoryID: category.ID,
	})
	assert.ErrorIs(t, err, e.ErrCategoryNotFound)

	_, err = env.catalog.UpdateCategory(ctx, &UpdateCategoryReq{ID: category.ID, Name: ptr("Casa")})
	assert.ErrorIs(t, err, e.ErrCategoryNotFound)
}
