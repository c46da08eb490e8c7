package usecase

import (
	"context"

	"github.com/bloomlane/visual-search/pkg/logger"
)

// StatsUseCase отдаёт операционную сводку по индексам. Эндпоинт существует
// для дашбордов, поэтому никогда не возвращает ошибку: недоступный
// коллаборатор отражается деградированным статусом.
type StatsUseCase struct {
	vectorRepo   VectorRepository
	metadataRepo MetadataRepository
	logger       logger.Logger
}

func NewStatsUC(vectorRepo VectorRepository, metadataRepo MetadataRepository, logger logger.Logger) *StatsUseCase {
	return &StatsUseCase{
		vectorRepo:   vectorRepo,
		metadataRepo: metadataRepo,
		logger:       logger,
	}
}

func (s *StatsUseCase) Stats(ctx context.Context) (*StatsRes, error) {
	res := &StatsRes{}

	rows, err := s.metadataRepo.Count(ctx)
	if err != nil {
		s.logger.Warnf("stats: metadata count failed: %v", err)
	} else {
		res.MetadataRows = rows
		res.TotalIndexed = rows
	}

	lastIndexedAt, err := s.metadataRepo.LastIndexedAt(ctx)
	if err != nil {
		s.logger.Warnf("stats: last indexed lookup failed: %v", err)
	} else {
		res.LastIndexedAt = lastIndexedAt
	}

	vectorStats, err := s.vectorRepo.Stats(ctx)
	if err != nil {
		s.logger.Warnf("stats: vector index unavailable: %v", err)
		res.VectorIndexHealthy = false
		return res, nil
	}

	res.VectorIndexHealthy = vectorStats.Healthy
	res.VectorCount = vectorStats.Count

	return res, nil
}
