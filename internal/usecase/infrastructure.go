package usecase

import (
	"context"

	"github.com/bloomlane/visual-search/internal/domain"
)

type EmbedderInfra interface {
	// EmbedImage возвращает вектор фиксированной размерности для изображения.
	// Транзиентные ошибки коллаборатора отличимы от постоянных через
	// errors.Is(err, e.ErrEmbedderUnavailable) / e.ErrEmbedderRejected.
	EmbedImage(ctx context.Context, image []byte) (*domain.ImageEmbedding, error)
}

type CatalogInfra interface {
	// GetProduct возвращает e.ErrProductNotFound, если товара нет в каталоге.
	GetProduct(ctx context.Context, productID int64, shopID string) (*CatalogProduct, error)
	ListProducts(ctx context.Context, req *ListProductsReq) ([]CatalogProduct, error)
}

type ImageLoaderInfra interface {
	// Load получает и валидирует байты изображения из URL, base64 или S3-ключа.
	Load(ctx context.Context, src ImageSource) ([]byte, error)
}

type EventProducer interface {
	ProductIndexed(ctx context.Context, productID int64, shopID string) error
	BatchCompleted(ctx context.Context, batchID string, res *BatchIndexRes) error
}
