package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/bloomlane/visual-search/internal/domain"
	"github.com/bloomlane/visual-search/pkg/e"
	"github.com/bloomlane/visual-search/pkg/logger"
	"github.com/google/uuid"
)

// IndexUseCase реализует одиночную и батчевую индексацию изображений товаров.
//
// Порядок записи строгий: сначала вектор, потом метаданные. Осиротевший вектор
// самовосстанавливается при следующей переиндексации, а метаданные без вектора —
// это товар, который ранжируется, но не находится поиском.
type IndexUseCase struct {
	vectorRepo    VectorRepository
	metadataRepo  MetadataRepository
	imageLoader   ImageLoaderInfra
	embedder      EmbedderInfra
	catalog       CatalogInfra
	producer      EventProducer
	logger        logger.Logger
	maxConcurrent int
	defaultLimit  int
	maxLimit      int
	joinGrace     time.Duration
}

func NewIndexUC(
	vectorRepo VectorRepository,
	metadataRepo MetadataRepository,
	imageLoader ImageLoaderInfra,
	embedder EmbedderInfra,
	catalog CatalogInfra,
	producer EventProducer,
	logger logger.Logger,
	maxConcurrent int,
	defaultLimit int,
	maxLimit int,
	joinGrace time.Duration,
) *IndexUseCase {
	return &IndexUseCase{
		vectorRepo:    vectorRepo,
		metadataRepo:  metadataRepo,
		imageLoader:   imageLoader,
		embedder:      embedder,
		catalog:       catalog,
		producer:      producer,
		logger:        logger,
		maxConcurrent: maxConcurrent,
		defaultLimit:  defaultLimit,
		maxLimit:      maxLimit,
		joinGrace:     joinGrace,
	}
}

// IndexProduct — прямая индексация одного товара с метаданными из запроса.
// Первая терминальная ошибка возвращается сразу, без компенсирующих откатов:
// upsert-семантика обоих хранилищ делает повтор безопасным.
func (u *IndexUseCase) IndexProduct(ctx context.Context, req *IndexProductReq) (*IndexProductRes, error) {
	const op = "IndexUseCase.IndexProduct"

	if err := u.validateIndexReq(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	entry, record, err := u.prepareItem(ctx, newCandidateFromIndexReq(req))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := u.vectorRepo.UpsertOne(ctx, entry); err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := u.metadataRepo.Upsert(ctx, record); err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := u.producer.ProductIndexed(ctx, req.ProductID, req.ShopID); err != nil {
		u.logger.Warnf("failed to publish indexed event for product %d: %v", req.ProductID, err)
	}

	return NewIndexProductRes(req.ProductID, record.IndexedAt), nil
}

// ReindexProduct переиндексирует товар по id, забирая текущее состояние из
// каталога. Отключённый или отсутствующий товар — это skipped, а не ошибка:
// плановые джобы не должны считать «нечего делать» сбоем.
func (u *IndexUseCase) ReindexProduct(ctx context.Context, req *ReindexProductReq) (*ReindexProductRes, error) {
	const op = "IndexUseCase.ReindexProduct"

	start := time.Now()

	if req.ProductID <= 0 {
		return nil, e.Wrap(op, e.ErrMissingProductID)
	}

	product, err := u.catalog.GetProduct(ctx, req.ProductID, req.ShopID)
	if err != nil {
		if isNotFound(err) {
			return NewSkippedReindexRes(req.ProductID, "product not found", time.Since(start)), nil
		}
		return nil, e.Wrap(op, err)
	}

	if !product.Enabled {
		return NewSkippedReindexRes(req.ProductID, "product disabled", time.Since(start)), nil
	}

	res, err := u.IndexProduct(ctx, indexReqFromCatalog(product))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &ReindexProductRes{
		ProductID: res.ProductID,
		IndexedAt: res.IndexedAt,
		Duration:  time.Since(start),
	}, nil
}

// BatchIndex — двухфазная батчевая индексация: изолированный fan-out
// (load+embed каждого кандидата независимо, ошибка одного не валит батч),
// затем общая точка записи — один батчевый upsert векторов и одна транзакция
// метаданных. Ошибка в фазе записи фатальна для всего батча: после неуспешного
// батчевого вызова нет способа узнать, какие элементы доехали до коллаборатора.
func (u *IndexUseCase) BatchIndex(ctx context.Context, req *BatchIndexReq) (*BatchIndexRes, error) {
	const op = "IndexUseCase.BatchIndex"

	start := time.Now()

	limit := req.Limit
	if limit <= 0 {
		limit = u.defaultLimit
	}
	if limit > u.maxLimit {
		limit = u.maxLimit
	}

	candidates, err := u.resolveCandidates(ctx, req, limit)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	entries, records, itemErrors := u.fanOut(ctx, candidates)

	if len(entries) > 0 {
		joinCtx, cancel := u.joinContext(ctx)
		defer cancel()

		if _, err := u.vectorRepo.UpsertBatch(joinCtx, entries); err != nil {
			return nil, e.Wrap(op, err)
		}

		if err := u.metadataRepo.UpsertMany(joinCtx, records); err != nil {
			return nil, e.Wrap(op, err)
		}
	}

	res := &BatchIndexRes{
		Total:    len(candidates),
		Indexed:  len(entries),
		Failed:   len(itemErrors),
		Errors:   itemErrors,
		Duration: time.Since(start),
	}

	if err := u.producer.BatchCompleted(ctx, uuid.NewString(), res); err != nil {
		u.logger.Warnf("failed to publish batch event: %v", err)
	}

	return res, nil
}

// batchCandidate — нормализованный кандидат батча независимо от источника.
type batchCandidate struct {
	ProductID int64
	Image     ImageSource
	Name      string
	Price     int64
	Colors    []string
	Occasions []string
	Tags      []string
	ShopID    string
}

type batchItemResult struct {
	productID int64
	entry     VectorEntry
	record    *domain.ProductImageRecord
	err       error
}

// fanOut выполняет load+embed кандидатов с ограниченной конкурентностью,
// чтобы не упереться в rate limit сервиса векторизации. Возвращает успешно
// подготовленные записи в исходном порядке и ошибки по каждому неуспешному
// кандидату. После отмены контекста новые кандидаты не берутся в работу.
func (u *IndexUseCase) fanOut(ctx context.Context, candidates []batchCandidate) ([]VectorEntry, []*domain.ProductImageRecord, []BatchItemError) {
	results := make([]batchItemResult, len(candidates))
	sem := make(chan struct{}, u.maxConcurrent)

	var wg sync.WaitGroup
	for i, candidate := range candidates {
		wg.Add(1)
		go func(i int, c batchCandidate) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[i] = batchItemResult{productID: c.ProductID, err: ctx.Err()}
				return
			}

			entry, record, err := u.prepareItem(ctx, c)
			if err != nil {
				results[i] = batchItemResult{productID: c.ProductID, err: err}
				return
			}

			results[i] = batchItemResult{productID: c.ProductID, entry: entry, record: record}
		}(i, candidate)
	}
	wg.Wait()

	entries := make([]VectorEntry, 0, len(candidates))
	records := make([]*domain.ProductImageRecord, 0, len(candidates))
	itemErrors := make([]BatchItemError, 0)
	for _, result := range results {
		if result.err != nil {
			u.logger.Warnf("batch item failed, product_id: %d, error: %v", result.productID, result.err)
			itemErrors = append(itemErrors, NewBatchItemError(result.productID, result.err))
			continue
		}

		entries = append(entries, result.entry)
		records = append(records, result.record)
	}

	return entries, records, itemErrors
}

// joinContext возвращает контекст фазы записи. Если дедлайн запроса уже
// истёк, даём короткий отдельный срок, чтобы записать уже сделанную работу,
// а не потерять её.
func (u *IndexUseCase) joinContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx.Err() == nil {
		return ctx, func() {}
	}

	return context.WithTimeout(context.WithoutCancel(ctx), u.joinGrace)
}

// prepareItem — общий участок обоих конвейеров: загрузка и валидация
// изображения, векторизация, сборка записи для Qdrant и PostgreSQL.
func (u *IndexUseCase) prepareItem(ctx context.Context, c batchCandidate) (VectorEntry, *domain.ProductImageRecord, error) {
	imageBytes, err := u.imageLoader.Load(ctx, c.Image)
	if err != nil {
		return VectorEntry{}, nil, err
	}

	embedding, err := u.embedder.EmbedImage(ctx, imageBytes)
	if err != nil {
		return VectorEntry{}, nil, err
	}

	imageKey := imageKeyFromSource(c.Image)
	payload := domain.NewPayload(c.ProductID, imageKey, c.ShopID, c.Colors, c.Occasions, embedding.Model)

	record := domain.NewProductImageRecord(c.ProductID, c.Name, c.Price, imageKey, c.ShopID)
	record.Colors = c.Colors
	record.Occasions = c.Occasions
	record.Tags = c.Tags
	record.IndexedAt = time.Now().UTC()

	return NewVectorEntry(c.ProductID, embedding, payload), record, nil
}

// resolveCandidates собирает список кандидатов: либо текущие активные товары
// каталога, либо страница уже проиндексированных записей (переиндексация без
// обращения к каталогу).
func (u *IndexUseCase) resolveCandidates(ctx context.Context, req *BatchIndexReq, limit int) ([]batchCandidate, error) {
	switch req.Source {
	case BatchSourceCatalog:
		products, err := u.catalog.ListProducts(ctx, NewListProductsReq(req.ShopID, true, limit, req.Offset))
		if err != nil {
			return nil, err
		}

		candidates := make([]batchCandidate, 0, len(products))
		for _, product := range products {
			candidates = append(candidates, newCandidateFromCatalog(product))
		}
		return candidates, nil

	case BatchSourceStore:
		records, err := u.metadataRepo.List(ctx, req.ShopID, limit, req.Offset)
		if err != nil {
			return nil, err
		}

		candidates := make([]batchCandidate, 0, len(records))
		for _, record := range records {
			candidates = append(candidates, newCandidateFromRecord(record))
		}
		return candidates, nil

	default:
		return nil, e.ErrInvalidBatchSource
	}
}

func (u *IndexUseCase) validateIndexReq(req *IndexProductReq) error {
	if req.ProductID <= 0 {
		return e.ErrMissingProductID
	}

	if req.Image.IsEmpty() {
		return e.ErrMissingImage
	}

	if strings.TrimSpace(req.Name) == "" {
		return e.ErrProductNameRequired
	}

	if req.Price <= 0 {
		return e.ErrPriceMustBePositive
	}

	return nil
}

func newCandidateFromIndexReq(req *IndexProductReq) batchCandidate {
	return batchCandidate{
		ProductID: req.ProductID,
		Image:     req.Image,
		Name:      req.Name,
		Price:     req.Price,
		Colors:    req.Colors,
		Occasions: req.Occasions,
		Tags:      req.Tags,
		ShopID:    req.ShopID,
	}
}

func newCandidateFromCatalog(product CatalogProduct) batchCandidate {
	return batchCandidate{
		ProductID: product.ID,
		Image:     imageSourceFromRef(product.Image),
		Name:      product.Name,
		Price:     product.Price,
		Colors:    product.Colors,
		Occasions: product.Occasions,
		Tags:      product.Tags,
		ShopID:    product.ShopID,
	}
}

func newCandidateFromRecord(record domain.ProductImageRecord) batchCandidate {
	return batchCandidate{
		ProductID: record.ProductID,
		Image:     imageSourceFromRef(record.ImageKey),
		Name:      record.Name,
		Price:     record.Price,
		Colors:    record.Colors,
		Occasions: record.Occasions,
		Tags:      record.Tags,
		ShopID:    record.ShopID,
	}
}

func indexReqFromCatalog(product *CatalogProduct) *IndexProductReq {
	return &IndexProductReq{
		ProductID: product.ID,
		Image:     imageSourceFromRef(product.Image),
		Name:      product.Name,
		Price:     product.Price,
		Colors:    product.Colors,
		Occasions: product.Occasions,
		Tags:      product.Tags,
		ShopID:    product.ShopID,
	}
}

// imageSourceFromRef различает внешний URL и ключ объекта в S3.
func imageSourceFromRef(ref string) ImageSource {
	if strings.Contains(ref, "://") {
		return ImageSource{URL: ref}
	}

	return ImageSource{StorageKey: ref}
}

// imageKeyFromSource возвращает значение image_key записи: ключ объекта,
// если изображение лежит в S3, иначе исходный URL.
func imageKeyFromSource(src ImageSource) string {
	if src.StorageKey != "" {
		return src.StorageKey
	}

	return src.URL
}

func isNotFound(err error) bool {
	return errors.Is(err, e.ErrProductNotFound)
}
