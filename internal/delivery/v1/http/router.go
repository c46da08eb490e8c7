package http

import (
	_ "github.com/bloomlane/visual-search/docs" // Импорт сгенерированных файлов
	"github.com/bloomlane/visual-search/internal/usecase"
	"github.com/bloomlane/visual-search/pkg/logger"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(indexUC usecase.IndexerUC, searchUC usecase.SearcherUC, statsUC usecase.StatsUC) {
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"), // ссылка на JSON
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		registerIndexRoutes(v1, NewIndexHandler(indexUC, r.logger))
		registerSearchRoutes(v1, NewSearchHandler(searchUC, r.logger))
		registerStatsRoutes(v1, NewStatsHandler(statsUC, r.logger))
	})
}

func registerIndexRoutes(router chi.Router, h *IndexHandler) {
	router.Post("/index", h.indexProduct)
	router.Post("/reindex-one", h.reindexProduct)
	router.Post("/batch-index", h.batchIndex)
}

func registerSearchRoutes(router chi.Router, h *SearchHandler) {
	router.Post("/search", h.search)
}

func registerStatsRoutes(router chi.Router, h *StatsHandler) {
	router.Get("/stats", h.stats)
}
