package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/bloomlane/visual-search/internal/domain"
	"github.com/bloomlane/visual-search/pkg/e"
	"github.com/bloomlane/visual-search/pkg/logger"
)

// SearchUseCase реализует поиск похожих букетов по фотографии.
//
// Выдача делится на два яруса по порогам похожести: score >= exactThreshold —
// точные совпадения, score >= similarThreshold — похожие, остальное
// отбрасывается. Совпадения без записи метаданных (осиротевшие точки индекса)
// молча исключаются из выдачи — это сигнал рассинхронизации хранилищ, а не
// результат для покупателя.
type SearchUseCase struct {
	vectorRepo       VectorRepository
	metadataRepo     MetadataRepository
	imageLoader      ImageLoaderInfra
	embedder         EmbedderInfra
	imageRepo        ImageRepository
	cacheRepo        CacheRepository
	logger           logger.Logger
	exactThreshold   float32
	similarThreshold float32
	defaultTopK      uint64
	maxTopK          uint64
}

func NewSearchUC(
	vectorRepo VectorRepository,
	metadataRepo MetadataRepository,
	imageLoader ImageLoaderInfra,
	embedder EmbedderInfra,
	imageRepo ImageRepository,
	cacheRepo CacheRepository,
	logger logger.Logger,
	exactThreshold float32,
	similarThreshold float32,
	defaultTopK uint64,
	maxTopK uint64,
) *SearchUseCase {
	return &SearchUseCase{
		vectorRepo:       vectorRepo,
		metadataRepo:     metadataRepo,
		imageLoader:      imageLoader,
		embedder:         embedder,
		imageRepo:        imageRepo,
		cacheRepo:        cacheRepo,
		logger:           logger,
		exactThreshold:   exactThreshold,
		similarThreshold: similarThreshold,
		defaultTopK:      defaultTopK,
		maxTopK:          maxTopK,
	}
}

func (s *SearchUseCase) Search(ctx context.Context, req *SearchReq) (*SearchRes, error) {
	const op = "SearchUseCase.Search"

	start := time.Now()

	if req.Image.IsEmpty() {
		return nil, e.Wrap(op, e.ErrMissingImage)
	}

	topK := req.TopK
	if topK == 0 {
		topK = s.defaultTopK
	}
	if topK > s.maxTopK {
		return nil, e.Wrap(op, e.ErrInvalidTopK)
	}

	imageBytes, err := s.imageLoader.Load(ctx, req.Image)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	embedding, err := s.embedder.EmbedImage(ctx, imageBytes)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	matches, err := s.vectorRepo.Query(ctx, embedding.Vector, topK, req.Filter)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	totalIndexed, err := s.metadataRepo.Count(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	exact, similar, err := s.partitionMatches(ctx, matches)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	s.resolveImageURLs(ctx, exact)
	s.resolveImageURLs(ctx, similar)

	return &SearchRes{
		Exact:        exact,
		Similar:      similar,
		SearchTime:   time.Since(start),
		TotalIndexed: totalIndexed,
	}, nil
}

// partitionMatches обогащает совпадения метаданными и раскладывает их по
// ярусам. Ярусы не пересекаются: каждый результат попадает ровно в один.
func (s *SearchUseCase) partitionMatches(ctx context.Context, matches []domain.VectorMatch) ([]SearchResult, []SearchResult, error) {
	exact := make([]SearchResult, 0, len(matches))
	similar := make([]SearchResult, 0, len(matches))

	if len(matches) == 0 {
		return exact, similar, nil
	}

	ids := make([]int64, 0, len(matches))
	for _, match := range matches {
		ids = append(ids, match.ProductID)
	}

	records, err := s.metadataRepo.GetMany(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	for _, match := range matches {
		record, ok := records[match.ProductID]
		if !ok {
			s.logger.Warnf("orphaned vector without metadata, product_id: %d", match.ProductID)
			continue
		}

		if match.Score < s.similarThreshold {
			continue
		}

		result := newSearchResult(record, match.Score)
		if match.Score >= s.exactThreshold {
			exact = append(exact, result)
		} else {
			similar = append(similar, result)
		}
	}

	return exact, similar, nil
}

// resolveImageURLs проставляет ссылки на изображения по сохранённому
// image_key: внешние URL отдаются как есть, S3-ключи превращаются в
// presigned-ссылки с кэшированием в Redis. Ошибки здесь деградируют выдачу
// (пустая ссылка), но не валят поиск.
func (s *SearchUseCase) resolveImageURLs(ctx context.Context, results []SearchResult) {
	keys := make([]string, 0, len(results))
	for i := range results {
		key := results[i].ImageKey
		if key == "" {
			continue
		}

		if strings.Contains(key, "://") {
			results[i].ImageURL = key
			continue
		}

		keys = append(keys, key)
	}

	if len(keys) == 0 {
		return
	}

	cached, err := s.cacheRepo.GetImageURLs(ctx, keys)
	if err != nil {
		s.logger.Warnf("image url cache lookup failed: %v", err)
		cached = map[string]string{}
	}

	fresh := make(map[string]string)
	for i := range results {
		key := results[i].ImageKey
		if results[i].ImageURL != "" || key == "" {
			continue
		}

		if url, ok := cached[key]; ok {
			results[i].ImageURL = url
			continue
		}

		url, err := s.imageRepo.PresignURL(ctx, key)
		if err != nil {
			s.logger.Warnf("failed to presign image url, key: %s, error: %v", key, err)
			continue
		}

		results[i].ImageURL = url
		fresh[key] = url
	}

	if len(fresh) > 0 {
		if err := s.cacheRepo.SetImageURLs(ctx, fresh); err != nil {
			s.logger.Warnf("failed to cache image urls: %v", err)
		}
	}
}

func newSearchResult(record domain.ProductImageRecord, score float32) SearchResult {
	return SearchResult{
		ProductID: record.ProductID,
		Name:      record.Name,
		Price:     record.Price,
		ImageKey:  record.ImageKey,
		Colors:    record.Colors,
		Occasions: record.Occasions,
		Tags:      record.Tags,
		Score:     score,
	}
}
