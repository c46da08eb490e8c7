package usecase

import (
	"context"
	"time"

	"github.com/bloomlane/visual-search/internal/domain"
)

type VectorRepository interface {
	// UpsertOne идемпотентно записывает вектор товара; повторная индексация
	// перезаписывает прежний вектор и payload без отдельного удаления.
	UpsertOne(ctx context.Context, entry VectorEntry) error
	// UpsertBatch пишет батч одним вызовом. Транспортная ошибка означает,
	// что весь батч не записан, — решение о повторе за вызывающим.
	UpsertBatch(ctx context.Context, entries []VectorEntry) (*UpsertBatchRes, error)
	Query(ctx context.Context, vector []float32, topK uint64, filter *SearchFilter) ([]domain.VectorMatch, error)
	Stats(ctx context.Context) (*VectorIndexStats, error)
}

type MetadataRepository interface {
	Upsert(ctx context.Context, record *domain.ProductImageRecord) error
	// UpsertMany пишет записи успешной части батча в одной транзакции.
	UpsertMany(ctx context.Context, records []*domain.ProductImageRecord) error
	// GetMany возвращает найденные записи; отсутствующие id просто не попадают
	// в результат — осиротевшие точки индекса ожидаемы и не являются ошибкой.
	GetMany(ctx context.Context, ids []int64) (map[int64]domain.ProductImageRecord, error)
	// List — страница проиндексированных записей для батчевой переиндексации.
	List(ctx context.Context, shopID string, limit, offset int) ([]domain.ProductImageRecord, error)
	Count(ctx context.Context) (int64, error)
	LastIndexedAt(ctx context.Context) (*time.Time, error)
}

type ImageRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	PresignURL(ctx context.Context, key string) (string, error)
}

type CacheRepository interface {
	GetImageURLs(ctx context.Context, keys []string) (map[string]string, error)
	SetImageURLs(ctx context.Context, urls map[string]string) error
}
