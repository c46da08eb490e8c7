package clients

import (
	"context"
	"fmt"

	config "github.com/bloomlane/visual-search/internal/cfg"
	"github.com/bloomlane/visual-search/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/qdrant/go-client/qdrant"
)

type QdrantClient struct {
	Client *qdrant.Client
	cfg    *config.QdrantCfg
}

func NewQdrantClient(cfg *config.QdrantCfg) (*QdrantClient, error) {
	qdrantClient, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.ApiKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &QdrantClient{
		Client: qdrantClient,
		cfg:    cfg,
	}, nil
}

// EnsureCollection создаёт коллекцию при первом запуске и сверяет размерность
// векторов существующей коллекции с конфигурацией. Несовпадение размерности —
// ошибка конфигурации, падаем на старте, а не на каждом запросе.
func EnsureCollection(ctx context.Context, client *QdrantClient) error {
	exists, err := client.Client.CollectionExists(ctx, client.cfg.QdrantCollectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		if err := client.Client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: client.cfg.QdrantCollectionName,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     client.cfg.VectorSize,
				Distance: qdrant.Distance_Cosine,
			}),
		}); err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}

		return nil
	}

	info, err := client.Client.GetCollectionInfo(ctx, client.cfg.QdrantCollectionName)
	if err != nil {
		return fmt.Errorf("failed to get collection info: %w", err)
	}

	params := info.GetConfig().GetParams().GetVectorsConfig().GetParams()
	if params != nil && params.GetSize() != client.cfg.VectorSize {
		return fmt.Errorf("collection %s has vector size %d, config expects %d: %w",
			client.cfg.QdrantCollectionName, params.GetSize(), client.cfg.VectorSize, e.ErrVectorSizeMismatch)
	}

	return nil
}
