package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bloomlane/visual-search/internal/domain"
	"github.com/bloomlane/visual-search/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type indexFixture struct {
	rec      *callRecorder
	vector   *mockVectorRepo
	metadata *mockMetadataRepo
	loader   *mockImageLoader
	embedder *mockEmbedder
	catalog  *mockCatalog
	producer *mockProducer
	uc       *IndexUseCase
}

func newIndexFixture() *indexFixture {
	rec := &callRecorder{}
	f := &indexFixture{
		rec:      rec,
		vector:   &mockVectorRepo{rec: rec},
		metadata: &mockMetadataRepo{rec: rec},
		loader:   &mockImageLoader{rec: rec, data: []byte("image-bytes")},
		embedder: &mockEmbedder{rec: rec, vector: []float32{0.1, 0.2, 0.3}},
		catalog:  &mockCatalog{rec: rec},
		producer: &mockProducer{rec: rec},
	}

	f.uc = NewIndexUC(
		f.vector, f.metadata, f.loader, f.embedder, f.catalog, f.producer,
		nopLogger{},
		4,   // maxConcurrent
		50,  // defaultLimit
		200, // maxLimit
		time.Second,
	)

	return f
}

func validIndexReq() *IndexProductReq {
	return &IndexProductReq{
		ProductID: 42,
		Image:     ImageSource{URL: "https://flowers.test/42.jpg"},
		Name:      "Букет «Рассвет»",
		Price:     259900,
		Colors:    []string{"red", "white"},
		Occasions: []string{"birthday"},
		ShopID:    "shop-1",
	}
}

func TestIndexProduct_Success(t *testing.T) {
	f := newIndexFixture()

	res, err := f.uc.IndexProduct(context.Background(), validIndexReq())
	require.NoError(t, err)

	assert.Equal(t, int64(42), res.ProductID)
	assert.Equal(t, domain.PointID(42), res.VectorID)
	assert.False(t, res.IndexedAt.IsZero())

	assert.Equal(t, int64(42), f.vector.lastEntry.ProductID)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, f.vector.lastEntry.Embedding.Vector)
	require.NotNil(t, f.metadata.lastRecord)
	assert.Equal(t, "https://flowers.test/42.jpg", f.metadata.lastRecord.ImageKey)
	assert.Equal(t, 1, f.producer.indexedCalls)
}

func TestIndexProduct_VectorWrittenBeforeMetadata(t *testing.T) {
	f := newIndexFixture()

	_, err := f.uc.IndexProduct(context.Background(), validIndexReq())
	require.NoError(t, err)

	order := f.rec.order()
	vectorIdx, metadataIdx := -1, -1
	for i, call := range order {
		switch call {
		case "vector.UpsertOne":
			vectorIdx = i
		case "metadata.Upsert":
			metadataIdx = i
		}
	}
	require.NotEqual(t, -1, vectorIdx)
	require.NotEqual(t, -1, metadataIdx)
	assert.Less(t, vectorIdx, metadataIdx, "вектор должен записываться до метаданных")
}

func TestIndexProduct_VectorFailureSkipsMetadata(t *testing.T) {
	f := newIndexFixture()
	f.vector.upsertErr = errors.New("qdrant down")

	_, err := f.uc.IndexProduct(context.Background(), validIndexReq())
	require.Error(t, err)

	assert.Equal(t, 0, f.rec.count("metadata.Upsert"))
	assert.Equal(t, 0, f.producer.indexedCalls)
}

func TestIndexProduct_Validation(t *testing.T) {
	f := newIndexFixture()

	tests := []struct {
		name    string
		mutate  func(req *IndexProductReq)
		wantErr error
	}{
		{"missing product id", func(r *IndexProductReq) { r.ProductID = 0 }, e.ErrMissingProductID},
		{"missing image", func(r *IndexProductReq) { r.Image = ImageSource{} }, e.ErrMissingImage},
		{"empty name", func(r *IndexProductReq) { r.Name = "   " }, e.ErrProductNameRequired},
		{"non-positive price", func(r *IndexProductReq) { r.Price = 0 }, e.ErrPriceMustBePositive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validIndexReq()
			tt.mutate(req)

			_, err := f.uc.IndexProduct(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Equal(t, 0, f.rec.count("vector.UpsertOne"))
	assert.Equal(t, 0, f.rec.count("metadata.Upsert"))
}

func TestIndexProduct_EventFailureDoesNotFailIndexing(t *testing.T) {
	f := newIndexFixture()
	f.producer.err = errors.New("kafka unreachable")

	_, err := f.uc.IndexProduct(context.Background(), validIndexReq())
	assert.NoError(t, err)
}

func TestReindexProduct_SkipsMissingProduct(t *testing.T) {
	f := newIndexFixture()
	f.catalog.getErr = e.ErrProductNotFound

	res, err := f.uc.ReindexProduct(context.Background(), &ReindexProductReq{ProductID: 7})
	require.NoError(t, err)

	assert.True(t, res.Skipped)
	assert.Equal(t, "product not found", res.Reason)
	assert.Equal(t, 0, f.rec.count("vector.UpsertOne"))
	assert.Equal(t, 0, f.rec.count("metadata.Upsert"))
}

func TestReindexProduct_SkipsDisabledProduct(t *testing.T) {
	f := newIndexFixture()
	f.catalog.product = &CatalogProduct{ID: 7, Name: "Пионы", Price: 100, Enabled: false}

	res, err := f.uc.ReindexProduct(context.Background(), &ReindexProductReq{ProductID: 7})
	require.NoError(t, err)

	assert.True(t, res.Skipped)
	assert.Equal(t, "product disabled", res.Reason)
	assert.Equal(t, 0, f.rec.count("vector.UpsertOne"))
	assert.Equal(t, 0, f.rec.count("metadata.Upsert"))
}

func TestReindexProduct_IndexesEnabledProduct(t *testing.T) {
	f := newIndexFixture()
	f.catalog.product = &CatalogProduct{
		ID:      7,
		Name:    "Пионы",
		Price:   150000,
		Image:   "products/7.jpg",
		Enabled: true,
	}

	res, err := f.uc.ReindexProduct(context.Background(), &ReindexProductReq{ProductID: 7})
	require.NoError(t, err)

	assert.False(t, res.Skipped)
	assert.Equal(t, int64(7), res.ProductID)
	assert.Equal(t, 1, f.rec.count("vector.UpsertOne"))
	assert.Equal(t, 1, f.rec.count("metadata.Upsert"))
}

func TestReindexProduct_CatalogFailurePropagates(t *testing.T) {
	f := newIndexFixture()
	f.catalog.getErr = errors.New("catalog timeout")

	_, err := f.uc.ReindexProduct(context.Background(), &ReindexProductReq{ProductID: 7})
	assert.Error(t, err)
}

func catalogProducts(n int) []CatalogProduct {
	products := make([]CatalogProduct, 0, n)
	for i := 1; i <= n; i++ {
		products = append(products, CatalogProduct{
			ID:      int64(i),
			Name:    "Букет",
			Price:   100000,
			Image:   "products/" + string(rune('0'+i)) + ".jpg",
			Enabled: true,
		})
	}
	return products
}

func TestBatchIndex_AllSucceed(t *testing.T) {
	f := newIndexFixture()
	f.catalog.listRes = catalogProducts(5)

	res, err := f.uc.BatchIndex(context.Background(), &BatchIndexReq{Source: BatchSourceCatalog})
	require.NoError(t, err)

	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 5, res.Indexed)
	assert.Equal(t, 0, res.Failed)
	assert.Len(t, f.vector.lastBatch, 5)
	assert.Len(t, f.metadata.lastMany, 5)
	assert.Equal(t, 1, f.producer.batchCalls)
}

func TestBatchIndex_ItemFailureDoesNotFailBatch(t *testing.T) {
	f := newIndexFixture()
	f.catalog.listRes = catalogProducts(5)
	f.loader.perItem = map[string]error{
		"products/2.jpg": e.ErrImageUnreachable,
		"products/4.jpg": e.ErrImageTooSmall,
	}

	res, err := f.uc.BatchIndex(context.Background(), &BatchIndexReq{Source: BatchSourceCatalog})
	require.NoError(t, err)

	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 3, res.Indexed)
	assert.Equal(t, 2, res.Failed)
	assert.Len(t, res.Errors, 2)
	assert.Len(t, f.vector.lastBatch, 3)
	assert.Len(t, f.metadata.lastMany, 3)

	failedIDs := map[int64]bool{}
	for _, itemErr := range res.Errors {
		failedIDs[itemErr.ProductID] = true
	}
	assert.True(t, failedIDs[2])
	assert.True(t, failedIDs[4])
}

func TestBatchIndex_JoinFailureFailsWholeBatch(t *testing.T) {
	f := newIndexFixture()
	f.catalog.listRes = catalogProducts(3)
	f.vector.batchErr = errors.New("qdrant down")

	_, err := f.uc.BatchIndex(context.Background(), &BatchIndexReq{Source: BatchSourceCatalog})
	require.Error(t, err)

	assert.Equal(t, 0, f.rec.count("metadata.UpsertMany"))
}

func TestBatchIndex_MetadataFailureFailsWholeBatch(t *testing.T) {
	f := newIndexFixture()
	f.catalog.listRes = catalogProducts(3)
	f.metadata.manyErr = errors.New("postgres down")

	_, err := f.uc.BatchIndex(context.Background(), &BatchIndexReq{Source: BatchSourceCatalog})
	assert.Error(t, err)
}

func TestBatchIndex_EmptyPageSkipsWrites(t *testing.T) {
	f := newIndexFixture()
	f.catalog.listRes = nil

	res, err := f.uc.BatchIndex(context.Background(), &BatchIndexReq{Source: BatchSourceCatalog})
	require.NoError(t, err)

	assert.Equal(t, 0, res.Total)
	assert.Equal(t, 0, f.rec.count("vector.UpsertBatch"))
	assert.Equal(t, 0, f.rec.count("metadata.UpsertMany"))
}

func TestBatchIndex_StoreSourceUsesMetadata(t *testing.T) {
	f := newIndexFixture()
	f.metadata.listRes = []domain.ProductImageRecord{
		{ProductID: 1, Name: "Розы", Price: 100, ImageKey: "products/1.jpg"},
		{ProductID: 2, Name: "Тюльпаны", Price: 200, ImageKey: "https://ext.test/2.jpg"},
	}

	res, err := f.uc.BatchIndex(context.Background(), &BatchIndexReq{Source: BatchSourceStore})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Indexed)
	assert.Equal(t, 1, f.rec.count("metadata.List"))
	assert.Equal(t, 0, f.rec.count("catalog.ListProducts"))
}

func TestBatchIndex_InvalidSource(t *testing.T) {
	f := newIndexFixture()

	_, err := f.uc.BatchIndex(context.Background(), &BatchIndexReq{Source: "warehouse"})
	assert.ErrorIs(t, err, e.ErrInvalidBatchSource)
}

func TestImageSourceFromRef(t *testing.T) {
	assert.Equal(t, ImageSource{URL: "https://x.test/a.jpg"}, imageSourceFromRef("https://x.test/a.jpg"))
	assert.Equal(t, ImageSource{StorageKey: "products/a.jpg"}, imageSourceFromRef("products/a.jpg"))
}
