package usecase

import "context"

type IndexerUC interface {
	IndexProduct(ctx context.Context, req *IndexProductReq) (*IndexProductRes, error)
	ReindexProduct(ctx context.Context, req *ReindexProductReq) (*ReindexProductRes, error)
	BatchIndex(ctx context.Context, req *BatchIndexReq) (*BatchIndexRes, error)
}

type SearcherUC interface {
	Search(ctx context.Context, req *SearchReq) (*SearchRes, error)
}

type StatsUC interface {
	Stats(ctx context.Context) (*StatsRes, error)
}
