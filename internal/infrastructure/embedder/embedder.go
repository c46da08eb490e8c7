package embedder

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	config "github.com/bloomlane/visual-search/internal/cfg"
	"github.com/bloomlane/visual-search/internal/domain"
	"github.com/bloomlane/visual-search/pkg/e"
	"github.com/bloomlane/visual-search/pkg/jitter"
	"github.com/bloomlane/visual-search/pkg/logger"
)

// EmbedService — клиент сервиса векторизации изображений.
//
// Транзиентные отказы (сеть, 429, 5xx) ретраятся с экспоненциальной задержкой
// и джиттером и в итоге заворачиваются в e.ErrEmbedderUnavailable; постоянные
// (4xx) сразу возвращаются как e.ErrEmbedderRejected, чтобы конвейер мог
// отличить failed-retryable от failed-permanent.
type EmbedService struct {
	httpClient *http.Client
	cfg        *config.EmbedderCfg
	vectorSize uint64
	logger     logger.Logger
}

func NewEmbedService(cfg *config.EmbedderCfg, vectorSize uint64, logger logger.Logger) *EmbedService {
	return &EmbedService{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		vectorSize: vectorSize,
		logger:     logger,
	}
}

type embedRequest struct {
	Image string `json:"image"`
	Model string `json:"model"`
}

type embedResponse struct {
	Vector []float32 `json:"vector"`
	Model  string    `json:"model"`
	Error  string    `json:"error,omitempty"`
}

// EmbedImage векторизует одно изображение. Кэширования нет намеренно:
// повторная векторизация исключается тем, что неизменённые товары не
// переиндексируются, — это решение вызывающей стороны.
func (s *EmbedService) EmbedImage(ctx context.Context, image []byte) (*domain.ImageEmbedding, error) {
	const (
		op         = "EmbedService.EmbedImage"
		baseJitter = 1 * time.Second
		maxJitter  = 30 * time.Second
	)

	var lastErr error
	for attempt := 0; attempt < s.cfg.MaxRetries; attempt++ {
		embedding, err := s.embedOnce(ctx, image)
		if err == nil {
			return embedding, nil
		}

		if !isTransient(err) {
			return nil, e.Wrap(op, err)
		}
		lastErr = err

		if attempt == s.cfg.MaxRetries-1 {
			break
		}

		sleepTime := jitter.ExponentialBackoff(baseJitter, maxJitter, attempt, jitter.DefaultJitter)
		s.logger.Warnf("embedding failed, retrying in %v (attempt %d): %v", sleepTime, attempt+1, err)

		select {
		case <-time.After(sleepTime):
		case <-ctx.Done():
			return nil, e.Wrap(op, ctx.Err())
		}
	}

	return nil, e.Wrap(op, e.Wrap(fmt.Sprintf("all %d attempts failed: %v", s.cfg.MaxRetries, lastErr), e.ErrEmbedderUnavailable))
}

func (s *EmbedService) embedOnce(ctx context.Context, image []byte) (*domain.ImageEmbedding, error) {
	body, err := json.Marshal(embedRequest{
		Image: base64.StdEncoding.EncodeToString(image),
		Model: s.cfg.Model,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/v1/embeddings/image", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.ApiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.ApiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, e.Wrap(err.Error(), e.ErrEmbedderUnavailable)
	}
	defer resp.Body.Close()

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil && resp.StatusCode == http.StatusOK {
		return nil, e.Wrap(err.Error(), e.ErrEmbedderUnavailable)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// обработка ниже
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, e.Wrap(fmt.Sprintf("status %d: %s", resp.StatusCode, parsed.Error), e.ErrEmbedderUnavailable)
	default:
		return nil, e.Wrap(fmt.Sprintf("status %d: %s", resp.StatusCode, parsed.Error), e.ErrEmbedderRejected)
	}

	if len(parsed.Vector) == 0 {
		return nil, e.ErrEmptyVector
	}

	if uint64(len(parsed.Vector)) != s.vectorSize {
		return nil, e.Wrap(fmt.Sprintf("got %d, expected %d", len(parsed.Vector), s.vectorSize), e.ErrVectorSizeMismatch)
	}

	model := parsed.Model
	if model == "" {
		model = s.cfg.Model
	}

	return domain.NewImageEmbedding(parsed.Vector, model), nil
}

func isTransient(err error) bool {
	return errors.Is(err, e.ErrEmbedderUnavailable)
}
