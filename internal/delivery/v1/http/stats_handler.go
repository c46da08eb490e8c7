package http

import (
	"net/http"
	"time"

	"github.com/bloomlane/visual-search/internal/usecase"
	"github.com/bloomlane/visual-search/pkg/logger"
)

type StatsHandler struct {
	statsUsecase usecase.StatsUC
	logger       logger.Logger
}

func NewStatsHandler(statsUsecase usecase.StatsUC, logger logger.Logger) *StatsHandler {
	return &StatsHandler{statsUsecase: statsUsecase, logger: logger}
}

type statsResponse struct {
	TotalIndexed       int64      `json:"total_indexed"`
	LastIndexedAt      *time.Time `json:"last_indexed_at,omitempty"`
	VectorIndexHealthy bool       `json:"vector_index_healthy"`
	VectorCount        uint64     `json:"vector_count"`
	MetadataRows       int64      `json:"metadata_rows"`
}

// stats
//
//	@Summary		Состояние поискового индекса
//	@Description	Количество проиндексированных товаров и здоровье векторного индекса; отвечает даже при недоступных хранилищах
//	@Tags			stats
//	@Produce		json
//	@Success		200	{object}	statsResponse
//	@Router			/stats [get]
func (h *StatsHandler) stats(w http.ResponseWriter, r *http.Request) {
	res, err := h.statsUsecase.Stats(r.Context())
	if err != nil {
		h.logger.Warnf("stats failed: %v", err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, statsResponse{
		TotalIndexed:       res.TotalIndexed,
		LastIndexedAt:      res.LastIndexedAt,
		VectorIndexHealthy: res.VectorIndexHealthy,
		VectorCount:        res.VectorCount,
		MetadataRows:       res.MetadataRows,
	})
}
