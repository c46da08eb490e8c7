package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/bloomlane/visual-search/internal/usecase"
	"github.com/bloomlane/visual-search/pkg/logger"
)

type IndexHandler struct {
	indexUsecase usecase.IndexerUC
	logger       logger.Logger
}

func NewIndexHandler(indexUsecase usecase.IndexerUC, logger logger.Logger) *IndexHandler {
	return &IndexHandler{indexUsecase: indexUsecase, logger: logger}
}

type indexProductRequest struct {
	ProductID   int64           `json:"product_id"`
	ImageURL    string          `json:"image_url,omitempty"`
	ImageBase64 string          `json:"image_base64,omitempty"`
	ImageKey    string          `json:"image_key,omitempty"`
	Name        string          `json:"name"`
	Price       json.RawMessage `json:"price"`
	Colors      []string        `json:"colors,omitempty"`
	Occasions   []string        `json:"occasions,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	ShopID      string          `json:"shop_id,omitempty"`
}

type indexProductResponse struct {
	ProductID int64     `json:"product_id"`
	VectorID  uint64    `json:"vector_id"`
	IndexedAt time.Time `json:"indexed_at"`
}

type reindexProductRequest struct {
	ProductID int64  `json:"product_id"`
	ShopID    string `json:"shop_id,omitempty"`
}

type reindexProductResponse struct {
	ProductID  int64      `json:"product_id"`
	Skipped    bool       `json:"skipped"`
	Reason     string     `json:"reason,omitempty"`
	IndexedAt  *time.Time `json:"indexed_at,omitempty"`
	DurationMs int64      `json:"duration_ms"`
}

type batchIndexRequest struct {
	Source string `json:"source"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
	ShopID string `json:"shop_id,omitempty"`
}

type batchItemError struct {
	ProductID int64  `json:"product_id"`
	Error     string `json:"error"`
}

type batchIndexResponse struct {
	Total      int              `json:"total"`
	Indexed    int              `json:"indexed"`
	Failed     int              `json:"failed"`
	Errors     []batchItemError `json:"errors"`
	DurationMs int64            `json:"duration_ms"`
}

// indexProduct
//
//	@Summary		Индексация товара
//	@Description	Векторизует изображение товара и записывает его в поисковый индекс
//	@Tags			indexing
//	@Accept			json
//	@Produce		json
//	@Param			request	body		indexProductRequest	true	"Товар и изображение"
//	@Success		200		{object}	indexProductResponse
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		422		{object}	ErrorResponse	"Изображение недоступно или отклонено"
//	@Router			/index [post]
func (h *IndexHandler) indexProduct(w http.ResponseWriter, r *http.Request) {
	var req indexProductRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warnf("%d bad index request: %v", http.StatusBadRequest, err)
		WriteError(w, err)
		return
	}

	price, err := priceFromJSON(req.Price)
	if err != nil {
		h.logger.Warnf("%d bad price, product_id: %d: %v", http.StatusBadRequest, req.ProductID, err)
		WriteError(w, err)
		return
	}

	res, err := h.indexUsecase.IndexProduct(r.Context(), &usecase.IndexProductReq{
		ProductID: req.ProductID,
		Image: usecase.ImageSource{
			URL:        req.ImageURL,
			Base64:     req.ImageBase64,
			StorageKey: req.ImageKey,
		},
		Name:      req.Name,
		Price:     price,
		Colors:    req.Colors,
		Occasions: req.Occasions,
		Tags:      req.Tags,
		ShopID:    req.ShopID,
	})
	if err != nil {
		h.logger.Warnf("index failed, product_id: %d: %v", req.ProductID, err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, indexProductResponse{
		ProductID: res.ProductID,
		VectorID:  res.VectorID,
		IndexedAt: res.IndexedAt,
	})
}

// reindexProduct
//
//	@Summary		Переиндексация товара
//	@Description	Переиндексирует товар по текущему состоянию каталога; отключённый или отсутствующий товар пропускается
//	@Tags			indexing
//	@Accept			json
//	@Produce		json
//	@Param			request	body		reindexProductRequest	true	"Идентификатор товара"
//	@Success		200		{object}	reindexProductResponse
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Router			/reindex-one [post]
func (h *IndexHandler) reindexProduct(w http.ResponseWriter, r *http.Request) {
	var req reindexProductRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warnf("%d bad reindex request: %v", http.StatusBadRequest, err)
		WriteError(w, err)
		return
	}

	res, err := h.indexUsecase.ReindexProduct(r.Context(), &usecase.ReindexProductReq{
		ProductID: req.ProductID,
		ShopID:    req.ShopID,
	})
	if err != nil {
		h.logger.Warnf("reindex failed, product_id: %d: %v", req.ProductID, err)
		WriteError(w, err)
		return
	}

	resp := reindexProductResponse{
		ProductID:  res.ProductID,
		Skipped:    res.Skipped,
		Reason:     res.Reason,
		DurationMs: res.Duration.Milliseconds(),
	}
	if !res.Skipped {
		resp.IndexedAt = &res.IndexedAt
	}

	WriteSuccess(w, http.StatusOK, resp)
}

// batchIndex
//
//	@Summary		Батчевая индексация
//	@Description	Индексирует страницу товаров каталога или уже проиндексированных записей; ошибки отдельных товаров не валят батч
//	@Tags			indexing
//	@Accept			json
//	@Produce		json
//	@Param			request	body		batchIndexRequest	true	"Источник и страница кандидатов"
//	@Success		200		{object}	batchIndexResponse
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Router			/batch-index [post]
func (h *IndexHandler) batchIndex(w http.ResponseWriter, r *http.Request) {
	var req batchIndexRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warnf("%d bad batch request: %v", http.StatusBadRequest, err)
		WriteError(w, err)
		return
	}

	res, err := h.indexUsecase.BatchIndex(r.Context(), &usecase.BatchIndexReq{
		Source: usecase.BatchSource(req.Source),
		Limit:  req.Limit,
		Offset: req.Offset,
		ShopID: req.ShopID,
	})
	if err != nil {
		h.logger.Warnf("batch index failed, source: %s: %v", req.Source, err)
		WriteError(w, err)
		return
	}

	itemErrors := make([]batchItemError, 0, len(res.Errors))
	for _, itemErr := range res.Errors {
		itemErrors = append(itemErrors, batchItemError(itemErr))
	}

	WriteSuccess(w, http.StatusOK, batchIndexResponse{
		Total:      res.Total,
		Indexed:    res.Indexed,
		Failed:     res.Failed,
		Errors:     itemErrors,
		DurationMs: res.Duration.Milliseconds(),
	})
}
