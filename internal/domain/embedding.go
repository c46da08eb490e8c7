package domain

import "time"

// Payload описывает дополнительную информацию вектора
type Payload map[string]any

// ImageEmbedding — векторное представление изображения. Не персистится:
// в Qdrant уходит только вектор и payload.
type ImageEmbedding struct {
	Vector    []float32
	Model     string
	CreatedAt time.Time
}

func NewImageEmbedding(vector []float32, model string) *ImageEmbedding {
	return &ImageEmbedding{
		Vector:    vector,
		Model:     model,
		CreatedAt: time.Now().UTC(),
	}
}

// NewPayload собирает payload точки Qdrant. Поля shop_id, colors и occasions
// используются как фильтры при поиске.
func NewPayload(productID int64, imageKey string, shopID string, colors []string, occasions []string, model string) Payload {
	return Payload{
		"product_id": productID,
		"image_key":  imageKey,
		"shop_id":    shopID,
		"colors":     toAnySlice(colors),
		"occasions":  toAnySlice(occasions),
		"model":      model,
		"indexed_at": time.Now().UTC().Unix(),
	}
}

func toAnySlice(values []string) []any {
	result := make([]any, 0, len(values))
	for _, v := range values {
		result = append(result, v)
	}
	return result
}
