package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bloomlane/visual-search/internal/usecase"
	"github.com/bloomlane/visual-search/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Infof(format string, args ...any)             {}
func (nopLogger) Warnf(format string, args ...any)             {}
func (nopLogger) Errorf(err error, format string, args ...any) {}

type stubIndexerUC struct {
	indexRes   *usecase.IndexProductRes
	indexErr   error
	reindexRes *usecase.ReindexProductRes
	batchRes   *usecase.BatchIndexRes
	lastIndex  *usecase.IndexProductReq
}

func (s *stubIndexerUC) IndexProduct(ctx context.Context, req *usecase.IndexProductReq) (*usecase.IndexProductRes, error) {
	s.lastIndex = req
	return s.indexRes, s.indexErr
}

func (s *stubIndexerUC) ReindexProduct(ctx context.Context, req *usecase.ReindexProductReq) (*usecase.ReindexProductRes, error) {
	return s.reindexRes, nil
}

func (s *stubIndexerUC) BatchIndex(ctx context.Context, req *usecase.BatchIndexReq) (*usecase.BatchIndexRes, error) {
	return s.batchRes, nil
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)

	return w
}

func TestIndexProduct_HandlerSuccess(t *testing.T) {
	uc := &stubIndexerUC{
		indexRes: usecase.NewIndexProductRes(42, time.Now().UTC()),
	}
	h := NewIndexHandler(uc, nopLogger{})

	w := postJSON(t, h.indexProduct, `{
		"product_id": 42,
		"image_url": "https://flowers.test/42.jpg",
		"name": "Букет",
		"price": "599.99",
		"colors": ["red"],
		"shop_id": "shop-1"
	}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp indexProductResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.ProductID)
	assert.Equal(t, uint64(42), resp.VectorID)

	require.NotNil(t, uc.lastIndex)
	assert.Equal(t, int64(59999), uc.lastIndex.Price)
	assert.Equal(t, "https://flowers.test/42.jpg", uc.lastIndex.Image.URL)
}

func TestIndexProduct_HandlerNumericPrice(t *testing.T) {
	uc := &stubIndexerUC{indexRes: usecase.NewIndexProductRes(1, time.Now().UTC())}
	h := NewIndexHandler(uc, nopLogger{})

	w := postJSON(t, h.indexProduct, `{"product_id": 1, "image_url": "https://x.test/1.jpg", "name": "Розы", "price": 600}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(60000), uc.lastIndex.Price)
}

func TestIndexProduct_HandlerBadPrice(t *testing.T) {
	h := NewIndexHandler(&stubIndexerUC{}, nopLogger{})

	w := postJSON(t, h.indexProduct, `{"product_id": 1, "image_url": "https://x.test/1.jpg", "name": "Розы", "price": "abc"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIndexProduct_HandlerMalformedJSON(t *testing.T) {
	h := NewIndexHandler(&stubIndexerUC{}, nopLogger{})

	w := postJSON(t, h.indexProduct, `{"product_id": `)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIndexProduct_HandlerMapsUsecaseError(t *testing.T) {
	uc := &stubIndexerUC{indexErr: e.Wrap("IndexUseCase.IndexProduct", e.ErrEmbedderUnavailable)}
	h := NewIndexHandler(uc, nopLogger{})

	w := postJSON(t, h.indexProduct, `{"product_id": 1, "image_url": "https://x.test/1.jpg", "name": "Розы", "price": 600}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, e.ErrEmbedderUnavailable.Error(), resp.Message)
}

func TestReindexProduct_HandlerSkipped(t *testing.T) {
	uc := &stubIndexerUC{
		reindexRes: usecase.NewSkippedReindexRes(7, "product disabled", 15*time.Millisecond),
	}
	h := NewIndexHandler(uc, nopLogger{})

	w := postJSON(t, h.reindexProduct, `{"product_id": 7}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp reindexProductResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Skipped)
	assert.Equal(t, "product disabled", resp.Reason)
	assert.Nil(t, resp.IndexedAt)
}

func TestBatchIndex_HandlerReportsPartialFailure(t *testing.T) {
	uc := &stubIndexerUC{
		batchRes: &usecase.BatchIndexRes{
			Total:   5,
			Indexed: 3,
			Failed:  2,
			Errors: []usecase.BatchItemError{
				{ProductID: 2, Error: "failed to fetch image"},
				{ProductID: 4, Error: "image payload is too small"},
			},
			Duration: 2 * time.Second,
		},
	}
	h := NewIndexHandler(uc, nopLogger{})

	w := postJSON(t, h.batchIndex, `{"source": "catalog", "limit": 5}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp batchIndexResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Total)
	assert.Equal(t, 3, resp.Indexed)
	assert.Equal(t, 2, resp.Failed)
	require.Len(t, resp.Errors, 2)
	assert.Equal(t, int64(2000), resp.DurationMs)
}
