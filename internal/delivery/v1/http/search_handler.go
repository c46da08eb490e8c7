package http

import (
	"net/http"

	"github.com/bloomlane/visual-search/internal/usecase"
	"github.com/bloomlane/visual-search/pkg/logger"
)

type SearchHandler struct {
	searchUsecase usecase.SearcherUC
	logger        logger.Logger
}

func NewSearchHandler(searchUsecase usecase.SearcherUC, logger logger.Logger) *SearchHandler {
	return &SearchHandler{searchUsecase: searchUsecase, logger: logger}
}

type searchFilter struct {
	ShopID    string   `json:"shop_id,omitempty"`
	Colors    []string `json:"colors,omitempty"`
	Occasions []string `json:"occasions,omitempty"`
}

type searchRequest struct {
	ImageURL    string        `json:"image_url,omitempty"`
	ImageBase64 string        `json:"image_base64,omitempty"`
	TopK        uint64        `json:"top_k,omitempty"`
	Filter      *searchFilter `json:"filter,omitempty"`
}

type searchResultItem struct {
	ProductID int64    `json:"product_id"`
	Name      string   `json:"name"`
	Price     int64    `json:"price"`
	ImageURL  string   `json:"image_url,omitempty"`
	Colors    []string `json:"colors,omitempty"`
	Occasions []string `json:"occasions,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Score     float32  `json:"score"`
}

type searchResponse struct {
	Exact        []searchResultItem `json:"exact"`
	Similar      []searchResultItem `json:"similar"`
	SearchTimeMs int64              `json:"search_time_ms"`
	TotalIndexed int64              `json:"total_indexed"`
}

// search
//
//	@Summary		Поиск похожих букетов по фотографии
//	@Description	Векторизует фото покупателя и возвращает точные и похожие совпадения из индекса
//	@Tags			search
//	@Accept			json
//	@Produce		json
//	@Param			request	body		searchRequest	true	"Фото и фильтры"
//	@Success		200		{object}	searchResponse
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		503		{object}	ErrorResponse	"Сервис векторизации недоступен"
//	@Router			/search [post]
func (h *SearchHandler) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warnf("%d bad search request: %v", http.StatusBadRequest, err)
		WriteError(w, err)
		return
	}

	ucReq := &usecase.SearchReq{
		Image: usecase.ImageSource{
			URL:    req.ImageURL,
			Base64: req.ImageBase64,
		},
		TopK: req.TopK,
	}
	if req.Filter != nil {
		ucReq.Filter = &usecase.SearchFilter{
			ShopID:    req.Filter.ShopID,
			Colors:    req.Filter.Colors,
			Occasions: req.Filter.Occasions,
		}
	}

	res, err := h.searchUsecase.Search(r.Context(), ucReq)
	if err != nil {
		h.logger.Warnf("search failed: %v", err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, searchResponse{
		Exact:        toResultItems(res.Exact),
		Similar:      toResultItems(res.Similar),
		SearchTimeMs: res.SearchTime.Milliseconds(),
		TotalIndexed: res.TotalIndexed,
	})
}

func toResultItems(results []usecase.SearchResult) []searchResultItem {
	items := make([]searchResultItem, 0, len(results))
	for _, result := range results {
		items = append(items, searchResultItem{
			ProductID: result.ProductID,
			Name:      result.Name,
			Price:     result.Price,
			ImageURL:  result.ImageURL,
			Colors:    result.Colors,
			Occasions: result.Occasions,
			Tags:      result.Tags,
			Score:     result.Score,
		})
	}

	return items
}
