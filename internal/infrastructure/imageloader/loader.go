package imageloader

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/bloomlane/visual-search/internal/cfg"
	"github.com/bloomlane/visual-search/internal/usecase"
	"github.com/bloomlane/visual-search/pkg/e"
	"github.com/jimlawless/whereami"
)

const (
	// minImageSize отсекает пустые и обрезанные payload до дорогой векторизации
	minImageSize = 64
	maxImageSize = 15 << 20
	fetchTimeout = 20 * time.Second
)

// Loader получает байты изображения из внешнего URL, inline base64 или S3.
// URL, указывающий на собственное хранилище, читается напрямую из MinIO,
// чтобы не гонять байты через лишний сетевой круг.
type Loader struct {
	storage    usecase.ImageRepository
	httpClient *http.Client
	publicHost string
	bucket     string
}

func NewLoader(storage usecase.ImageRepository, cfg *config.MinIOCfg) *Loader {
	return &Loader{
		storage:    storage,
		httpClient: &http.Client{Timeout: fetchTimeout},
		publicHost: hostOf(cfg.PublicEndpoint),
		bucket:     cfg.BucketName,
	}
}

// Load возвращает провалидированные байты изображения. Ошибка загрузки
// терминальна для текущего элемента и не ретраится внутри.
func (l *Loader) Load(ctx context.Context, src usecase.ImageSource) ([]byte, error) {
	data, err := l.fetch(ctx, src)
	if err != nil {
		return nil, err
	}

	if err := Validate(data); err != nil {
		return nil, err
	}

	return data, nil
}

func (l *Loader) fetch(ctx context.Context, src usecase.ImageSource) ([]byte, error) {
	switch {
	case src.Base64 != "":
		return decodeBase64(src.Base64)

	case src.StorageKey != "":
		data, err := l.storage.Get(ctx, src.StorageKey)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), e.Wrap(err.Error(), e.ErrImageUnreachable))
		}
		return data, nil

	case src.URL != "":
		if key := l.storageKeyFromURL(src.URL); key != "" {
			data, err := l.storage.Get(ctx, key)
			if err != nil {
				return nil, e.Wrap(whereami.WhereAmI(), e.Wrap(err.Error(), e.ErrImageUnreachable))
			}
			return data, nil
		}
		return l.fetchURL(ctx, src.URL)

	default:
		return nil, e.ErrMissingImage
	}
}

func (l *Loader) fetchURL(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrImageUnreachable)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), e.Wrap(err.Error(), e.ErrImageUnreachable))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, e.Wrap(whereami.WhereAmI(), e.Wrap(fmt.Sprintf("status %d from %s", resp.StatusCode, rawURL), e.ErrImageUnreachable))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), e.Wrap(err.Error(), e.ErrImageUnreachable))
	}

	return data, nil
}

// storageKeyFromURL возвращает ключ объекта, если URL указывает на бакет
// изображений этого сервиса, иначе пустую строку.
func (l *Loader) storageKeyFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host != l.publicHost {
		return ""
	}

	prefix := "/" + l.bucket + "/"
	if !strings.HasPrefix(u.Path, prefix) {
		return ""
	}

	return strings.TrimPrefix(u.Path, prefix)
}

// Validate проверяет размер payload и сигнатуру формата до векторизации.
func Validate(data []byte) error {
	if len(data) < minImageSize {
		return e.ErrImageTooSmall
	}

	if len(data) > maxImageSize {
		return e.ErrImageTooLarge
	}

	mimeType := http.DetectContentType(data[:min(len(data), 512)])
	switch mimeType {
	case "image/jpeg", "image/png", "image/webp", "image/gif":
		return nil
	default:
		return e.Wrap(mimeType, e.ErrUnsupportedMediaType)
	}
}

func decodeBase64(payload string) ([]byte, error) {
	// Каталог может прислать data URI целиком
	if idx := strings.Index(payload, ";base64,"); idx != -1 {
		payload = payload[idx+len(";base64,"):]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrInvalidBase64)
	}

	return data, nil
}

func hostOf(endpoint string) string {
	if strings.Contains(endpoint, "://") {
		if u, err := url.Parse(endpoint); err == nil {
			return u.Host
		}
	}

	return endpoint
}
