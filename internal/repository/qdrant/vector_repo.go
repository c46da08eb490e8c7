package qdrant

import (
	"context"

	"github.com/bloomlane/visual-search/internal/cfg"
	"github.com/bloomlane/visual-search/internal/domain"
	"github.com/bloomlane/visual-search/internal/usecase"
	"github.com/bloomlane/visual-search/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/qdrant/go-client/qdrant"
)

// VectorRepo — репозиторий векторов изображений в Qdrant.
// Id точки однозначно соответствует id товара (см. domain.PointID),
// upsert идемпотентен: переиндексация перезаписывает вектор и payload.
type VectorRepo struct {
	client *qdrant.Client
	cfg    *cfg.QdrantCfg
}

func NewVectorRepo(client *qdrant.Client, cfg *cfg.QdrantCfg) *VectorRepo {
	return &VectorRepo{
		client: client,
		cfg:    cfg,
	}
}

// UpsertOne записывает вектор одного товара.
func (q *VectorRepo) UpsertOne(ctx context.Context, entry usecase.VectorEntry) error {
	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Points:         []*qdrant.PointStruct{toPoint(entry)},
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// UpsertBatch записывает батч одним вызовом. Qdrant не отдаёт поэлементный
// статус батча: транспортная ошибка означает, что не записан весь батч,
// решение о повторе остаётся за вызывающим.
func (q *VectorRepo) UpsertBatch(ctx context.Context, entries []usecase.VectorEntry) (*usecase.UpsertBatchRes, error) {
	points := make([]*qdrant.PointStruct, 0, len(entries))
	for _, entry := range entries {
		points = append(points, toPoint(entry))
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return usecase.NewUpsertBatchRes(0, len(entries)), e.Wrap(whereami.WhereAmI(), err)
	}

	return usecase.NewUpsertBatchRes(len(entries), 0), nil
}

// Query возвращает topK ближайших точек. Фильтр по метаданным уходит в
// Qdrant, а не применяется на клиенте.
func (q *VectorRepo) Query(ctx context.Context, vector []float32, topK uint64, filter *usecase.SearchFilter) ([]domain.VectorMatch, error) {
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(topK),
		Filter:         buildFilter(filter),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	matches := make([]domain.VectorMatch, 0, len(points))
	for _, point := range points {
		matches = append(matches, domain.NewVectorMatch(
			domain.ProductIDFromPoint(point.GetId().GetNum()),
			point.GetScore(),
			decodePayload(point.GetPayload()),
		))
	}

	return matches, nil
}

// Stats возвращает количество точек коллекции. Ошибка трактуется вызывающим
// как нездоровый индекс.
func (q *VectorRepo) Stats(ctx context.Context) (*usecase.VectorIndexStats, error) {
	count, err := q.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: q.cfg.QdrantCollectionName,
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &usecase.VectorIndexStats{
		Count:   count,
		Healthy: true,
	}, nil
}

func toPoint(entry usecase.VectorEntry) *qdrant.PointStruct {
	return &qdrant.PointStruct{
		Id:      qdrant.NewIDNum(domain.PointID(entry.ProductID)),
		Vectors: qdrant.NewVectors(entry.Embedding.Vector...),
		Payload: qdrant.NewValueMap(entry.Payload),
	}
}

func buildFilter(filter *usecase.SearchFilter) *qdrant.Filter {
	if filter == nil {
		return nil
	}

	var must []*qdrant.Condition
	if filter.ShopID != "" {
		must = append(must, qdrant.NewMatch("shop_id", filter.ShopID))
	}
	if len(filter.Colors) > 0 {
		must = append(must, qdrant.NewMatchKeywords("colors", filter.Colors...))
	}
	if len(filter.Occasions) > 0 {
		must = append(must, qdrant.NewMatchKeywords("occasions", filter.Occasions...))
	}

	if len(must) == 0 {
		return nil
	}

	return &qdrant.Filter{Must: must}
}

func decodePayload(payload map[string]*qdrant.Value) domain.Payload {
	result := make(domain.Payload, len(payload))
	for key, value := range payload {
		result[key] = decodeValue(value)
	}

	return result
}

func decodeValue(value *qdrant.Value) any {
	switch kind := value.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_ListValue:
		values := kind.ListValue.GetValues()
		list := make([]any, 0, len(values))
		for _, v := range values {
			list = append(list, decodeValue(v))
		}
		return list
	default:
		return nil
	}
}
