package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	config "github.com/bloomlane/visual-search/internal/cfg"
	"github.com/bloomlane/visual-search/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Infof(format string, args ...any)             {}
func (nopLogger) Warnf(format string, args ...any)             {}
func (nopLogger) Errorf(err error, format string, args ...any) {}

func newTestService(baseURL string, vectorSize uint64, maxRetries int) *EmbedService {
	return NewEmbedService(&config.EmbedderCfg{
		BaseURL:    baseURL,
		Model:      "clip-vit-base-patch32",
		Timeout:    2 * time.Second,
		MaxRetries: maxRetries,
	}, vectorSize, nopLogger{})
}

func vectorOf(size int) []float32 {
	v := make([]float32, size)
	for i := range v {
		v[i] = 0.1
	}
	return v
}

func TestEmbedImage_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings/image", r.URL.Path)

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.Image)
		assert.Equal(t, "clip-vit-base-patch32", req.Model)

		json.NewEncoder(w).Encode(embedResponse{Vector: vectorOf(4), Model: "clip-vit-base-patch32"})
	}))
	defer srv.Close()

	svc := newTestService(srv.URL, 4, 3)

	embedding, err := svc.EmbedImage(context.Background(), []byte("image-bytes"))
	require.NoError(t, err)

	assert.Len(t, embedding.Vector, 4)
	assert.Equal(t, "clip-vit-base-patch32", embedding.Model)
}

func TestEmbedImage_RetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(embedResponse{Vector: vectorOf(4)})
	}))
	defer srv.Close()

	svc := newTestService(srv.URL, 4, 3)

	embedding, err := svc.EmbedImage(context.Background(), []byte("image-bytes"))
	require.NoError(t, err)
	assert.Len(t, embedding.Vector, 4)
	assert.Equal(t, int32(2), calls.Load())
}

func TestEmbedImage_PermanentFailureNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(embedResponse{Error: "corrupt image"})
	}))
	defer srv.Close()

	svc := newTestService(srv.URL, 4, 3)

	_, err := svc.EmbedImage(context.Background(), []byte("image-bytes"))
	assert.ErrorIs(t, err, e.ErrEmbedderRejected)
	assert.Equal(t, int32(1), calls.Load())
}

func TestEmbedImage_AllAttemptsExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	svc := newTestService(srv.URL, 4, 2)

	_, err := svc.EmbedImage(context.Background(), []byte("image-bytes"))
	assert.ErrorIs(t, err, e.ErrEmbedderUnavailable)
	assert.Equal(t, int32(2), calls.Load())
}

func TestEmbedImage_VectorSizeMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Vector: vectorOf(3)})
	}))
	defer srv.Close()

	svc := newTestService(srv.URL, 4, 1)

	_, err := svc.EmbedImage(context.Background(), []byte("image-bytes"))
	assert.ErrorIs(t, err, e.ErrVectorSizeMismatch)
}

func TestEmbedImage_EmptyVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{})
	}))
	defer srv.Close()

	svc := newTestService(srv.URL, 4, 1)

	_, err := svc.EmbedImage(context.Background(), []byte("image-bytes"))
	assert.ErrorIs(t, err, e.ErrEmptyVector)
}
