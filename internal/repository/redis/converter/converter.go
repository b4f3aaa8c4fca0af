package converter

import "github.com/circley-tech/storefront/internal/usecase"

// ProductInfoConverter переводит ProductInfo в модель кэша и обратно.
type ProductInfoConverter struct{}

func (ProductInfoConverter) ToRedisModel(entity *usecase.ProductInfo) *ProductInfoRedisModel {
	return &ProductInfoRedisModel{
		ID:           entity.ID,
		Name:         entity.Name,
		CategoryName: entity.CategoryName,
		Price:        entity.Price,
		Stock:        entity.Stock,
	}
}

func (ProductInfoConverter) ToUseCase(model *ProductInfoRedisModel) usecase.ProductInfo {
	return usecase.NewProductInfo(model.ID, model.Name, model.CategoryName, model.Price, model.Stock)
}

func (c ProductInfoConverter) ToArrRedisModel(entities []usecase.ProductInfo) []ProductInfoRedisModel {
	result := make([]ProductInfoRedisModel, 0, len(entities))
	for i := range entities {
		result = append(result, *c.ToRedisModel(&entities[i]))
	}
	return result
}
