package usecase

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/circley-tech/storefront/internal/domain"
	"github.com/circley-tech/storefront/internal/pricing"
	"github.com/circley-tech/storefront/pkg/e"
	"github.com/circley-tech/storefront/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const cacheWriteTimeout = 500 * time.Millisecond

// CatalogUseCase реализует бизнес-логику каталога: категории, товары, изображения и витрину.
type CatalogUseCase struct {
	productRepo   ProductRepository
	categoryRepo  CategoryRepository
	promotionRepo PromotionRepository
	cacheRepo     CacheRepository
	imagesInfra   ImagesInfra
	txManager     TxManager
	engine        *pricing.Engine
	logger        logger.Logger
	group         singleflight.Group
}

func NewCatalogUC(
	productRepo ProductRepository,
	categoryRepo CategoryRepository,
	promotionRepo PromotionRepository,
	cacheRepo CacheRepository,
	imagesInfra ImagesInfra,
	txManager TxManager,
	engine *pricing.Engine,
	logger logger.Logger,
) *CatalogUseCase {
	return &CatalogUseCase{
		productRepo:   productRepo,
		categoryRepo:  categoryRepo,
		promotionRepo: promotionRepo,
		cacheRepo:     cacheRepo,
		imagesInfra:   imagesInfra,
		txManager:     txManager,
		engine:        engine,
		logger:        logger,
	}
}

// ListProducts возвращает активные товары в наличии с витринной ценой после действующих акций.
func (c *CatalogUseCase) ListProducts(ctx context.Context, filter ProductFilter) ([]ProductListing, error) {
	const op = "CatalogUseCase.ListProducts"

	filter.OnlyInStock = true
	filter.Search = strings.TrimSpace(filter.Search)

	products, err := c.productRepo.List(ctx, filter)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	promotions, err := c.promotionRepo.ListActive(ctx, c.engine.Today())
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	result := make([]ProductListing, 0, len(products))
	for _, product := range products {
		result = append(result, NewProductListing(
			product,
			c.engine.DiscountedUnitPrice(product.ID, product.Price, promotions),
			c.engine.HasActivePromotion(product.ID, promotions),
		))
	}

	return result, nil
}

// GetProductsInfo возвращает информацию о продуктах по их идентификаторам.
func (c *CatalogUseCase) GetProductsInfo(ctx context.Context, req *GetProductsReq) (*GetProductsRes, error) {
	const op = "CatalogUseCase.GetProductsInfo"

	// Валидация
	if len(req.IDs) == 0 {
		return nil, e.Wrap(op, e.ErrNoProducts)
	}

	// Поиск продуктов в кэше
	cacheProductsMap, err := c.cacheRepo.GetProducts(ctx, req.IDs)
	var nonCacheable []int64
	if err != nil {
		c.logger.Warnf("Failed to read products from cache: %v", e.Wrap(op, err))
		cacheProductsMap = nil
		nonCacheable = append(nonCacheable, req.IDs...)
	} else {
		for _, productID := range req.IDs {
			if _, ok := cacheProductsMap[productID]; !ok {
				nonCacheable = append(nonCacheable, productID)
			}
		}
	}

	// Получение продуктов из БД
	var productsInfoFromDB []ProductInfo
	if len(nonCacheable) > 0 {
		productsInfoFromDB, err = c.loadProductsInfo(ctx, nonCacheable)
		if err != nil {
			return nil, e.Wrap(op, err)
		}

		// Фоновое добавление продуктов в кэш
		if len(productsInfoFromDB) > 0 {
			go func() {
				bgCtx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
				defer cancel()

				if err := c.cacheRepo.SetProducts(bgCtx, productsInfoFromDB); err != nil {
					c.logger.Warnf("Failed to cache products in background: %v", e.Wrap(op, err))
				}
			}()
		}
	}

	dbProductsMap := make(map[int64]ProductInfo, len(productsInfoFromDB))
	for _, productInfo := range productsInfoFromDB {
		dbProductsMap[productInfo.ID] = productInfo
	}

	// Формирование результата
	result := make([]ProductInfo, 0, len(req.IDs))
	notFoundProducts := make([]int64, 0)
	for _, id := range req.IDs {
		if pr, ok := cacheProductsMap[id]; ok {
			result = append(result, pr)
		} else if pr, ok := dbProductsMap[id]; ok {
			result = append(result, pr)
		} else {
			notFoundProducts = append(notFoundProducts, id)
		}
	}

	return NewGetProductsRes(result, notFoundProducts), nil
}

// loadProductsInfo читает товары из БД; одинаковые одновременные промахи кэша объединяются.
func (c *CatalogUseCase) loadProductsInfo(ctx context.Context, ids []int64) ([]ProductInfo, error) {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)

	parts := make([]string, 0, len(sorted))
	for _, id := range slices.Compact(sorted) {
		parts = append(parts, strconv.FormatInt(id, 10))
	}

	v, err, _ := c.group.Do(strings.Join(parts, ","), func() (any, error) {
		return c.productRepo.GetProductsInfo(ctx, ids)
	})
	if err != nil {
		return nil, err
	}

	return v.([]ProductInfo), nil
}

func (c *CatalogUseCase) CreateCategory(ctx context.Context, req *CreateCategoryReq) (*domain.Category, error) {
	const op = "CatalogUseCase.CreateCategory"

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, e.Wrap(op, e.ErrCategoryNameRequired)
	}

	category, err := c.categoryRepo.Create(ctx, domain.NewCategory(name, strings.TrimSpace(req.Description)))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return category, nil
}

func (c *CatalogUseCase) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const op = "CatalogUseCase.ListCategories"

	categories, err := c.categoryRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return categories, nil
}

// UpdateCategory меняет название и описание категории.
func (c *CatalogUseCase) UpdateCategory(ctx context.Context, req *UpdateCategoryReq) (*domain.Category, error) {
	const op = "CatalogUseCase.UpdateCategory"

	category, err := c.liveCategory(ctx, req.ID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if req.Name != nil {
		category.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		category.Description = strings.TrimSpace(*req.Description)
	}
	if category.Name == "" {
		return nil, e.Wrap(op, e.ErrCategoryNameRequired)
	}

	updated, err := c.categoryRepo.Update(ctx, category)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Название категории входит в кэшируемую информацию о товарах
	if ids := c.categoryProductIDs(ctx, updated.ID); len(ids) > 0 {
		if err := c.cacheRepo.DeleteProducts(ctx, ids); err != nil {
			c.logger.Warnf("Failed to delete products: %v", e.Wrap(op, err))
		}
	}

	return updated, nil
}

// ArchiveCategory убирает категорию из каталога. Товары архивной категории
// остаются в заказах и корзинах, но пропадают с витрины.
func (c *CatalogUseCase) ArchiveCategory(ctx context.Context, id int64) error {
	const op = "CatalogUseCase.ArchiveCategory"

	if err := c.categoryRepo.Archive(ctx, id); err != nil {
		return e.Wrap(op, err)
	}

	c.logger.Infof("Category archived. category_id: %d", id)
	return nil
}

// liveCategory возвращает категорию, если она не в архиве.
func (c *CatalogUseCase) liveCategory(ctx context.Context, id int64) (*domain.Category, error) {
	category, err := c.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category.IsArchived {
		return nil, e.ErrCategoryNotFound
	}
	return category, nil
}

func (c *CatalogUseCase) categoryProductIDs(ctx context.Context, categoryID int64) []int64 {
	products, err := c.productRepo.List(ctx, ProductFilter{CategoryID: &categoryID})
	if err != nil {
		c.logger.Warnf("Failed to list category products: %v", err)
		return nil
	}

	ids := make([]int64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

func (c *CatalogUseCase) CreateProduct(ctx context.Context, req *CreateProductReq) (*domain.Product, error) {
	const op = "CatalogUseCase.CreateProduct"

	product := domain.NewProduct(strings.TrimSpace(req.Name), strings.TrimSpace(req.Description), req.Price, req.Stock, req.CategoryID)
	if err := validateProduct(product, req.Price); err != nil {
		return nil, e.Wrap(op, err)
	}

	if _, err := c.liveCategory(ctx, req.CategoryID); err != nil {
		return nil, e.Wrap(op, err)
	}

	created, err := c.productRepo.Create(ctx, product)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return created, nil
}

// UpdateProduct частично обновляет товар. Позиции корзин сохраняют цену, зафиксированную ранее.
func (c *CatalogUseCase) UpdateProduct(ctx context.Context, req *UpdateProductReq) (*domain.Product, error) {
	const op = "CatalogUseCase.UpdateProduct"

	var updated *domain.Product
	err := c.txManager.Do(ctx, func(ctx context.Context) error {
		product, err := c.productRepo.GetForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}

		price := product.Price
		if req.Name != nil {
			product.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			product.Description = strings.TrimSpace(*req.Description)
		}
		if req.Price != nil {
			price = *req.Price
			product.Price = domain.Round2(price)
		}
		if req.Stock != nil {
			product.Stock = *req.Stock
		}
		if req.IsActive != nil {
			product.IsActive = *req.IsActive
		}
		if req.CategoryID != nil && *req.CategoryID != product.CategoryID {
			if _, err := c.liveCategory(ctx, *req.CategoryID); err != nil {
				return err
			}
			product.CategoryID = *req.CategoryID
		}

		if err := validateProduct(product, price); err != nil {
			return err
		}

		updated, err = c.productRepo.Update(ctx, product)
		return err
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Удаление из кэша старых данных товара
	if err := c.cacheRepo.DeleteProducts(ctx, []int64{updated.ID}); err != nil {
		c.logger.Warnf("Failed to delete products: %v", e.Wrap(op, err))
	}

	return updated, nil
}

// UploadProductImages сохраняет изображения товара в объектное хранилище и привязывает их к товару.
// Если привязка не удалась, загруженные объекты удаляются.
func (c *CatalogUseCase) UploadProductImages(ctx context.Context, req *UploadProductImagesReq) (*UploadImagesRes, error) {
	const op = "CatalogUseCase.UploadProductImages"

	if len(req.Images) == 0 {
		return nil, e.Wrap(op, e.ErrNoImages)
	}

	product, err := c.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Сохранение изображений в MinIO
	imagesRes, err := c.imagesInfra.UploadImages(ctx, NewUploadImagesReq(product.Name, req.Images))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	err = c.txManager.Do(ctx, func(ctx context.Context) error {
		return c.productRepo.AddImages(ctx, product.ID, imagesRes.ImagesKeys)
	})
	if err != nil {
		c.logger.Warnf(
			"Cleaning up orphaned images after transaction failure. product_id: %d, error: %v",
			product.ID,
			e.Wrap(op, err),
		)
		c.imagesInfra.CleanupImages(imagesRes.ImagesKeys)

		return nil, e.Wrap(op, err)
	}

	if err := c.cacheRepo.DeleteProducts(ctx, []int64{product.ID}); err != nil {
		c.logger.Warnf("Failed to delete products: %v", e.Wrap(op, err))
	}

	return imagesRes, nil
}

// DeleteProduct удаляет товар, его изображения и позиции корзин. Товар из заказов
// удалить нельзя, его снимают с продажи через is_active.
func (c *CatalogUseCase) DeleteProduct(ctx context.Context, id int64) error {
	const op = "CatalogUseCase.DeleteProduct"

	var keys []string
	err := c.txManager.Do(ctx, func(ctx context.Context) error {
		if _, err := c.productRepo.GetForUpdate(ctx, id); err != nil {
			return err
		}

		var err error
		keys, err = c.productRepo.Delete(ctx, id)
		return err
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	if len(keys) > 0 {
		c.imagesInfra.CleanupImages(keys)
	}

	if err := c.cacheRepo.DeleteProducts(ctx, []int64{id}); err != nil {
		c.logger.Warnf("Failed to delete products: %v", e.Wrap(op, err))
	}

	c.logger.Infof("Product deleted. product_id: %d, images: %d", id, len(keys))
	return nil
}

// validateProduct проверяет товар перед сохранением; rawPrice — цена до округления.
func validateProduct(product *domain.Product, rawPrice decimal.Decimal) error {
	if product.Name == "" {
		return e.ErrProductNameRequired
	}

	if !rawPrice.Equal(domain.Round2(rawPrice)) {
		return e.ErrPricePrecision
	}

	if !product.Price.IsPositive() {
		return e.ErrPriceMustBePositive
	}

	if product.Stock < 0 {
		return e.ErrNegativeStock
	}

	return nil
}
