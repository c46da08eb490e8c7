package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/bloomlane/visual-search/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Infof(format string, args ...any)            {}
func (nopLogger) Warnf(format string, args ...any)            {}
func (nopLogger) Errorf(err error, format string, args ...any) {}

// callRecorder считает вызовы и фиксирует их порядок для проверки
// последовательности записи вектор -> метаданные.
type callRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *callRecorder) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
}

func (r *callRecorder) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	for _, call := range r.calls {
		if call == name {
			n++
		}
	}
	return n
}

func (r *callRecorder) order() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type mockVectorRepo struct {
	rec        *callRecorder
	upsertErr  error
	batchErr   error
	queryRes   []domain.VectorMatch
	queryErr   error
	statsRes   *VectorIndexStats
	statsErr   error
	lastEntry  VectorEntry
	lastBatch  []VectorEntry
	lastTopK   uint64
	lastFilter *SearchFilter
}

func (m *mockVectorRepo) UpsertOne(ctx context.Context, entry VectorEntry) error {
	m.rec.record("vector.UpsertOne")
	m.lastEntry = entry
	return m.upsertErr
}

func (m *mockVectorRepo) UpsertBatch(ctx context.Context, entries []VectorEntry) (*UpsertBatchRes, error) {
	m.rec.record("vector.UpsertBatch")
	m.lastBatch = entries
	if m.batchErr != nil {
		return NewUpsertBatchRes(0, len(entries)), m.batchErr
	}
	return NewUpsertBatchRes(len(entries), 0), nil
}

func (m *mockVectorRepo) Query(ctx context.Context, vector []float32, topK uint64, filter *SearchFilter) ([]domain.VectorMatch, error) {
	m.rec.record("vector.Query")
	m.lastTopK = topK
	m.lastFilter = filter
	return m.queryRes, m.queryErr
}

func (m *mockVectorRepo) Stats(ctx context.Context) (*VectorIndexStats, error) {
	m.rec.record("vector.Stats")
	return m.statsRes, m.statsErr
}

type mockMetadataRepo struct {
	rec         *callRecorder
	upsertErr   error
	manyErr     error
	records     map[int64]domain.ProductImageRecord
	getManyErr  error
	listRes     []domain.ProductImageRecord
	listErr     error
	countRes    int64
	countErr    error
	lastIdxTime *time.Time
	lastIdxErr  error
	lastRecord  *domain.ProductImageRecord
	lastMany    []*domain.ProductImageRecord
}

func (m *mockMetadataRepo) Upsert(ctx context.Context, record *domain.ProductImageRecord) error {
	m.rec.record("metadata.Upsert")
	m.lastRecord = record
	return m.upsertErr
}

func (m *mockMetadataRepo) UpsertMany(ctx context.Context, records []*domain.ProductImageRecord) error {
	m.rec.record("metadata.UpsertMany")
	m.lastMany = records
	return m.manyErr
}

func (m *mockMetadataRepo) GetMany(ctx context.Context, ids []int64) (map[int64]domain.ProductImageRecord, error) {
	m.rec.record("metadata.GetMany")
	return m.records, m.getManyErr
}

func (m *mockMetadataRepo) List(ctx context.Context, shopID string, limit, offset int) ([]domain.ProductImageRecord, error) {
	m.rec.record("metadata.List")
	return m.listRes, m.listErr
}

func (m *mockMetadataRepo) Count(ctx context.Context) (int64, error) {
	m.rec.record("metadata.Count")
	return m.countRes, m.countErr
}

func (m *mockMetadataRepo) LastIndexedAt(ctx context.Context) (*time.Time, error) {
	m.rec.record("metadata.LastIndexedAt")
	return m.lastIdxTime, m.lastIdxErr
}

type mockImageLoader struct {
	rec     *callRecorder
	data    []byte
	err     error
	perItem map[string]error // ошибки по конкретным ключам/URL
}

func (m *mockImageLoader) Load(ctx context.Context, src ImageSource) ([]byte, error) {
	m.rec.record("loader.Load")
	if m.perItem != nil {
		if err, ok := m.perItem[imageKeyFromSource(src)]; ok {
			return nil, err
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.data, nil
}

type mockEmbedder struct {
	rec    *callRecorder
	vector []float32
	err    error
}

func (m *mockEmbedder) EmbedImage(ctx context.Context, image []byte) (*domain.ImageEmbedding, error) {
	m.rec.record("embedder.EmbedImage")
	if m.err != nil {
		return nil, m.err
	}
	return domain.NewImageEmbedding(m.vector, "test-model"), nil
}

type mockCatalog struct {
	rec     *callRecorder
	product *CatalogProduct
	getErr  error
	listRes []CatalogProduct
	listErr error
}

func (m *mockCatalog) GetProduct(ctx context.Context, productID int64, shopID string) (*CatalogProduct, error) {
	m.rec.record("catalog.GetProduct")
	return m.product, m.getErr
}

func (m *mockCatalog) ListProducts(ctx context.Context, req *ListProductsReq) ([]CatalogProduct, error) {
	m.rec.record("catalog.ListProducts")
	return m.listRes, m.listErr
}

type mockImageRepo struct {
	rec        *callRecorder
	presignErr error
	urls       map[string]string
}

func (m *mockImageRepo) Get(ctx context.Context, key string) ([]byte, error) {
	m.rec.record("storage.Get")
	return nil, nil
}

func (m *mockImageRepo) PresignURL(ctx context.Context, key string) (string, error) {
	m.rec.record("storage.PresignURL")
	if m.presignErr != nil {
		return "", m.presignErr
	}
	if url, ok := m.urls[key]; ok {
		return url, nil
	}
	return "https://cdn.test/" + key, nil
}

type mockCacheRepo struct {
	rec    *callRecorder
	cached map[string]string
	getErr error
	setErr error
	stored map[string]string
}

func (m *mockCacheRepo) GetImageURLs(ctx context.Context, keys []string) (map[string]string, error) {
	m.rec.record("cache.GetImageURLs")
	if m.getErr != nil {
		return nil, m.getErr
	}
	result := make(map[string]string)
	for _, key := range keys {
		if url, ok := m.cached[key]; ok {
			result[key] = url
		}
	}
	return result, nil
}

func (m *mockCacheRepo) SetImageURLs(ctx context.Context, urls map[string]string) error {
	m.rec.record("cache.SetImageURLs")
	m.stored = urls
	return m.setErr
}

type mockProducer struct {
	rec          *callRecorder
	indexedCalls int
	batchCalls   int
	err          error
}

func (m *mockProducer) ProductIndexed(ctx context.Context, productID int64, shopID string) error {
	m.rec.record("producer.ProductIndexed")
	m.indexedCalls++
	return m.err
}

func (m *mockProducer) BatchCompleted(ctx context.Context, batchID string, res *BatchIndexRes) error {
	m.rec.record("producer.BatchCompleted")
	m.batchCalls++
	return m.err
}
