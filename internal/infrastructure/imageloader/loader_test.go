package imageloader

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	config "github.com/bloomlane/visual-search/internal/cfg"
	"github.com/bloomlane/visual-search/internal/usecase"
	"github.com/bloomlane/visual-search/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jpegPayload собирает байты с JPEG-сигнатурой нужной длины.
func jpegPayload(size int) []byte {
	data := make([]byte, size)
	copy(data, []byte{0xFF, 0xD8, 0xFF, 0xE0})
	return data
}

func pngPayload(size int) []byte {
	data := make([]byte, size)
	copy(data, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A})
	return data
}

type stubStorage struct {
	data map[string][]byte
	err  error
}

func (s *stubStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	data, ok := s.data[key]
	if !ok {
		return nil, errors.New("no such object")
	}
	return data, nil
}

func (s *stubStorage) PresignURL(ctx context.Context, key string) (string, error) {
	return "", errors.New("not implemented")
}

func newTestLoader(storage usecase.ImageRepository) *Loader {
	return NewLoader(storage, &config.MinIOCfg{
		PublicEndpoint: "https://images.bloomlane.test",
		BucketName:     "product-images",
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"valid jpeg", jpegPayload(1024), nil},
		{"valid png", pngPayload(1024), nil},
		{"too small", jpegPayload(10), e.ErrImageTooSmall},
		{"too large", jpegPayload(maxImageSize + 1), e.ErrImageTooLarge},
		{"not an image", bytes.Repeat([]byte("plain text "), 100), e.ErrUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.data)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestLoad_Base64(t *testing.T) {
	loader := newTestLoader(&stubStorage{})
	payload := jpegPayload(256)

	data, err := loader.Load(context.Background(), usecase.ImageSource{
		Base64: base64.StdEncoding.EncodeToString(payload),
	})
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestLoad_Base64DataURI(t *testing.T) {
	loader := newTestLoader(&stubStorage{})
	payload := pngPayload(256)

	data, err := loader.Load(context.Background(), usecase.ImageSource{
		Base64: "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload),
	})
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestLoad_InvalidBase64(t *testing.T) {
	loader := newTestLoader(&stubStorage{})

	_, err := loader.Load(context.Background(), usecase.ImageSource{Base64: "%%% not base64 %%%"})
	assert.ErrorIs(t, err, e.ErrInvalidBase64)
}

func TestLoad_StorageKey(t *testing.T) {
	payload := jpegPayload(512)
	loader := newTestLoader(&stubStorage{data: map[string][]byte{"products/1.jpg": payload}})

	data, err := loader.Load(context.Background(), usecase.ImageSource{StorageKey: "products/1.jpg"})
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestLoad_StorageFailure(t *testing.T) {
	loader := newTestLoader(&stubStorage{err: errors.New("minio down")})

	_, err := loader.Load(context.Background(), usecase.ImageSource{StorageKey: "products/1.jpg"})
	assert.ErrorIs(t, err, e.ErrImageUnreachable)
}

func TestLoad_URL(t *testing.T) {
	payload := jpegPayload(512)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	loader := newTestLoader(&stubStorage{})

	data, err := loader.Load(context.Background(), usecase.ImageSource{URL: srv.URL + "/flower.jpg"})
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestLoad_URLNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	loader := newTestLoader(&stubStorage{})

	_, err := loader.Load(context.Background(), usecase.ImageSource{URL: srv.URL + "/missing.jpg"})
	assert.ErrorIs(t, err, e.ErrImageUnreachable)
}

func TestLoad_OwnStorageURLReadDirectly(t *testing.T) {
	payload := jpegPayload(512)
	storage := &stubStorage{data: map[string][]byte{"products/7.jpg": payload}}
	loader := newTestLoader(storage)

	// URL указывает на собственный бакет — читаем из MinIO, без HTTP
	data, err := loader.Load(context.Background(), usecase.ImageSource{
		URL: "https://images.bloomlane.test/product-images/products/7.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestLoad_EmptySource(t *testing.T) {
	loader := newTestLoader(&stubStorage{})

	_, err := loader.Load(context.Background(), usecase.ImageSource{})
	assert.ErrorIs(t, err, e.ErrMissingImage)
}

func TestStorageKeyFromURL(t *testing.T) {
	loader := newTestLoader(&stubStorage{})

	assert.Equal(t, "products/7.jpg",
		loader.storageKeyFromURL("https://images.bloomlane.test/product-images/products/7.jpg"))
	assert.Equal(t, "",
		loader.storageKeyFromURL("https://images.bloomlane.test/other-bucket/products/7.jpg"))
	assert.Equal(t, "",
		loader.storageKeyFromURL("https://cdn.elsewhere.test/product-images/products/7.jpg"))
}
