package usecase

import (
	"time"

	"github.com/bloomlane/visual-search/internal/domain"
)

// INDEXING

// ImageSource описывает источник изображения: внешний URL, inline base64
// или ключ объекта в S3. Заполняется ровно одно поле.
type ImageSource struct {
	URL        string
	Base64     string
	StorageKey string
}

func (s ImageSource) IsEmpty() bool {
	return s.URL == "" && s.Base64 == "" && s.StorageKey == ""
}

// IndexProductReq — прямая индексация: каталог присылает метаданные inline.
type IndexProductReq struct {
	ProductID int64
	Image     ImageSource
	Name      string
	Price     int64
	Colors    []string
	Occasions []string
	Tags      []string
	ShopID    string
}

type IndexProductRes struct {
	ProductID int64
	VectorID  uint64
	IndexedAt time.Time
}

type ReindexProductReq struct {
	ProductID int64
	ShopID    string
}

// ReindexProductRes: Skipped=true для отключённого или отсутствующего товара —
// это штатный исход, а не ошибка.
type ReindexProductRes struct {
	ProductID int64
	Skipped   bool
	Reason    string
	IndexedAt time.Time
	Duration  time.Duration
}

// BatchSource — откуда брать кандидатов батча.
type BatchSource string

const (
	BatchSourceCatalog BatchSource = "catalog" // текущие товары каталога
	BatchSourceStore   BatchSource = "store"   // уже проиндексированные записи (переиндексация)
)

type BatchIndexReq struct {
	Source BatchSource
	Limit  int
	Offset int
	ShopID string
}

type BatchItemError struct {
	ProductID int64
	Error     string
}

type BatchIndexRes struct {
	Total    int
	Indexed  int
	Failed   int
	Errors   []BatchItemError
	Duration time.Duration
}

// SEARCH

type SearchFilter struct {
	ShopID    string
	Colors    []string
	Occasions []string
}

type SearchReq struct {
	Image  ImageSource
	TopK   uint64
	Filter *SearchFilter
}

// SearchResult — совпадение, обогащённое метаданными и ссылкой на изображение.
type SearchResult struct {
	ProductID int64
	Name      string
	Price     int64
	ImageKey  string
	ImageURL  string
	Colors    []string
	Occasions []string
	Tags      []string
	Score     float32
}

type SearchRes struct {
	Exact        []SearchResult
	Similar      []SearchResult
	SearchTime   time.Duration
	TotalIndexed int64
}

// STATS

type StatsRes struct {
	TotalIndexed       int64
	LastIndexedAt      *time.Time
	VectorIndexHealthy bool
	VectorCount        uint64
	MetadataRows       int64
}

// INFRASTRUCTURE

// CatalogProduct — строка товара, как её отдаёт сервис каталога.
type CatalogProduct struct {
	ID        int64
	Name      string
	Price     int64
	Image     string // URL или S3-ключ исходного изображения
	Colors    []string
	Occasions []string
	Tags      []string
	Enabled   bool
	ShopID    string
}

type ListProductsReq struct {
	ShopID      string
	EnabledOnly bool
	Limit       int
	Offset      int
}

// REPOSITORIES

type VectorEntry struct {
	ProductID int64
	Embedding *domain.ImageEmbedding
	Payload   domain.Payload
}

type UpsertBatchRes struct {
	SuccessCount int
	FailedCount  int
}

type VectorIndexStats struct {
	Count   uint64
	Healthy bool
}

// MAPPERS

func NewIndexProductRes(productID int64, indexedAt time.Time) *IndexProductRes {
	return &IndexProductRes{
		ProductID: productID,
		VectorID:  domain.PointID(productID),
		IndexedAt: indexedAt,
	}
}

func NewSkippedReindexRes(productID int64, reason string, duration time.Duration) *ReindexProductRes {
	return &ReindexProductRes{
		ProductID: productID,
		Skipped:   true,
		Reason:    reason,
		Duration:  duration,
	}
}

func NewVectorEntry(productID int64, embedding *domain.ImageEmbedding, payload domain.Payload) VectorEntry {
	return VectorEntry{
		ProductID: productID,
		Embedding: embedding,
		Payload:   payload,
	}
}

func NewBatchItemError(productID int64, err error) BatchItemError {
	return BatchItemError{
		ProductID: productID,
		Error:     err.Error(),
	}
}

func NewListProductsReq(shopID string, enabledOnly bool, limit, offset int) *ListProductsReq {
	return &ListProductsReq{
		ShopID:      shopID,
		EnabledOnly: enabledOnly,
		Limit:       limit,
		Offset:      offset,
	}
}

func NewUpsertBatchRes(successCount, failedCount int) *UpsertBatchRes {
	return &UpsertBatchRes{
		SuccessCount: successCount,
		FailedCount:  failedCount,
	}
}
