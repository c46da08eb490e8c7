package redis

import (
	"context"
	"fmt"

	"github.com/bloomlane/visual-search/internal/cfg"
	"github.com/bloomlane/visual-search/pkg/clients"
	"github.com/bloomlane/visual-search/pkg/e"
	"github.com/bloomlane/visual-search/pkg/logger"
	"github.com/jimlawless/whereami"
)

// CacheRepo кэширует presigned-ссылки на изображения по ключу объекта.
// TTL кэша короче срока жизни самой ссылки, чтобы из кэша не отдавались
// протухшие подписи.
type CacheRepo struct {
	client *clients.RedisClient
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// GetImageURLs возвращает закэшированные ссылки по ключам объектов, промахи
// просто не попадают в результат.
func (r *CacheRepo) GetImageURLs(ctx context.Context, keys []string) (map[string]string, error) {
	cacheKeys := r.buildImageCacheKeys(keys)

	values, err := r.client.Client.MGet(ctx, cacheKeys...).Result()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := make(map[string]string, len(values))
	for i, val := range values {
		url, err := redisValueToString(val, cacheKeys[i])
		if err != nil {
			r.logger.Warnf("%v", e.Wrap(whereami.WhereAmI(), err))
			continue
		}

		if url == "" {
			continue // cache miss
		}

		result[keys[i]] = url
	}

	return result, nil
}

// SetImageURLs атомарно кэширует несколько ссылок с заданным TTL.
// Ошибки записи логируются, но не возвращаются: кэш не критичен для выдачи.
func (r *CacheRepo) SetImageURLs(ctx context.Context, urls map[string]string) error {
	pipeline := r.client.Client.Pipeline()
	for key, url := range urls {
		pipeline.Set(ctx, r.imageKey(key), url, r.cfg.ImageURLTTL)
	}

	if _, err := pipeline.Exec(ctx); err != nil {
		r.logger.Warnf("Cache pipeline failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

// buildImageCacheKeys формирует Redis-ключи из ключей объектов
func (r *CacheRepo) buildImageCacheKeys(keys []string) []string {
	cacheKeys := make([]string, len(keys))
	for i, key := range keys {
		cacheKeys[i] = r.imageKey(key)
	}

	return cacheKeys
}

// imageKey возвращает Redis-ключ для одной ссылки
func (r *CacheRepo) imageKey(objectKey string) string {
	return fmt.Sprintf("image_url:%s", objectKey)
}

// redisValueToString конвертирует значение из Redis в строку.
// Поддерживает string и []byte, возвращает ошибку для неизвестных типов.
func redisValueToString(val interface{}, key string) (string, error) {
	switch v := val.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", nil // cache miss
	default:
		return "", fmt.Errorf("unexpected Redis value type for key %s: %T", key, val)
	}
}
