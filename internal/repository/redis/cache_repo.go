package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/circley-tech/storefront/internal/cfg"
	"github.com/circley-tech/storefront/internal/repository/redis/converter"
	"github.com/circley-tech/storefront/internal/usecase"
	"github.com/circley-tech/storefront/pkg/clients"
	"github.com/circley-tech/storefront/pkg/e"
	"github.com/circley-tech/storefront/pkg/logger"
	"github.com/jimlawless/whereami"
)

const productKeyPrefix = "storefront:product:"

// CacheRepo кэширует сводку по товарам. Кэш не источник истины: ошибки записи
// и удаления только логируются.
type CacheRepo struct {
	client *clients.RedisClient
	conv   converter.ProductInfoConverter
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, conv converter.ProductInfoConverter,
	cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		conv:   conv,
		cfg:    cfg,
		logger: logger,
	}
}

// GetProducts возвращает найденные в кэше товары; промахи просто отсутствуют в результате.
func (r *CacheRepo) GetProducts(ctx context.Context, ids []int64) (map[int64]usecase.ProductInfo, error) {
	if len(ids) == 0 {
		return map[int64]usecase.ProductInfo{}, nil
	}

	keys := buildProductKeys(ids)

	values, err := r.client.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := make(map[int64]usecase.ProductInfo, len(values))
	var stale []string
	for i, val := range values {
		data, err := redisValueToBytes(val, keys[i])
		if err != nil {
			r.logger.Warnf("%v", e.Wrap(whereami.WhereAmI(), err))
			continue
		}

		if data == nil {
			continue
		}

		var model converter.ProductInfoRedisModel
		if err := json.Unmarshal(data, &model); err != nil || model.ID != ids[i] {
			r.logger.Warnf("dropping malformed cache entry %s: %v", keys[i], err)
			stale = append(stale, keys[i])
			continue
		}

		result[ids[i]] = r.conv.ToUseCase(&model)
	}

	if len(stale) > 0 {
		if err := r.client.Client.Del(ctx, stale...).Err(); err != nil {
			r.logger.Warnf("Redis DEL failed: %v", e.Wrap(whereami.WhereAmI(), err))
		}
	}

	return result, nil
}

// SetProducts пишет товары одним пайплайном с TTL из конфигурации.
func (r *CacheRepo) SetProducts(ctx context.Context, products []usecase.ProductInfo) error {
	if len(products) == 0 {
		return nil
	}

	pipeline := r.client.Client.Pipeline()
	for _, model := range r.conv.ToArrRedisModel(products) {
		data, err := json.Marshal(model)
		if err != nil {
			r.logger.Warnf("failed to marshal product %d for cache: %v", model.ID, err)
			continue
		}

		pipeline.Set(ctx, productKey(model.ID), data, r.cfg.ProductTTL)
	}

	if _, err := pipeline.Exec(ctx); err != nil {
		r.logger.Warnf("Cache pipeline failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

// DeleteProducts сбрасывает записи после изменения товара или его остатка.
func (r *CacheRepo) DeleteProducts(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	if err := r.client.Client.Del(ctx, buildProductKeys(ids)...).Err(); err != nil {
		r.logger.Warnf("Redis DEL failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

func buildProductKeys(ids []int64) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(id)
	}

	return keys
}

func productKey(id int64) string {
	return fmt.Sprintf("%s%d", productKeyPrefix, id)
}

// redisValueToBytes приводит значение MGET к []byte; nil означает промах.
func redisValueToBytes(val any, key string) ([]byte, error) {
	switch v := val.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected Redis value type for key %s: %T", key, val)
	}
}
