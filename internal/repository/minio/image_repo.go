package minio

import (
	"context"
	"io"
	"net/url"

	"github.com/bloomlane/visual-search/internal/cfg"
	"github.com/bloomlane/visual-search/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

// ImageRepo реализует доступ к изображениям товаров поверх MinIO.
// Сервис только читает бакет: загрузкой изображений владеет каталог.
type ImageRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewImageRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *ImageRepo {
	return &ImageRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// Get читает объект целиком по ключу.
func (i *ImageRepo) Get(ctx context.Context, key string) ([]byte, error) {
	object, err := i.mc.GetObject(ctx, i.cfg.BucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return data, nil
}

// PresignURL возвращает временную ссылку на объект для выдачи поиска.
func (i *ImageRepo) PresignURL(ctx context.Context, key string) (string, error) {
	presigned, err := i.mc.PresignedGetObject(ctx, i.cfg.BucketName, key, i.cfg.PresignTTL, url.Values{})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return presigned.String(), nil
}
