package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Внутренние ошибки с векторами
	ErrEmptyVector        = fmt.Errorf("empty embedding vector")
	ErrVectorSizeMismatch = fmt.Errorf("embedding size does not match collection vector size")

	// 400 Bad Request
	ErrStatusBadRequest    = fmt.Errorf("bad request")
	ErrMissingImage        = fmt.Errorf("image_url or image_base64 is required")
	ErrMissingProductID    = fmt.Errorf("product_id is required")
	ErrProductNameRequired = fmt.Errorf("product name is required")
	ErrPriceMustBePositive = fmt.Errorf("price must be positive")
	ErrInvalidPrice        = fmt.Errorf("invalid price")
	ErrPricePrecision      = fmt.Errorf("price must have at most 2 decimal places")
	ErrInvalidTopK         = fmt.Errorf("top_k must be between 1 and 100")
	ErrInvalidBatchSource  = fmt.Errorf("source must be either catalog or store")

	// Ошибки обработки изображений (терминальные для конкретного товара)
	ErrImageTooSmall        = fmt.Errorf("image payload is too small")
	ErrImageTooLarge        = fmt.Errorf("image payload is too large")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")
	ErrImageUnreachable     = fmt.Errorf("failed to fetch image")
	ErrInvalidBase64        = fmt.Errorf("invalid base64 image payload")

	// Ошибки коллабораторов
	ErrEmbedderUnavailable = fmt.Errorf("embedding service unavailable")
	ErrEmbedderRejected    = fmt.Errorf("embedding service rejected input")

	// 404 Not Found
	ErrProductNotFound = fmt.Errorf("product not found")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
