package converter

import (
	"github.com/bloomlane/visual-search/internal/domain"
)

// ProductImageConverter преобразует записи ProductImageRecord между domain и
// моделью PostgreSQL.
type ProductImageConverter interface {
	ToModel(entity *domain.ProductImageRecord) *ProductImageModel
	ToEntity(model *ProductImageModel) *domain.ProductImageRecord
}

type productImageConverter struct{}

func NewProductImageConverter() ProductImageConverter {
	return &productImageConverter{}
}

func (c *productImageConverter) ToModel(entity *domain.ProductImageRecord) *ProductImageModel {
	return &ProductImageModel{
		ProductID: entity.ProductID,
		Name:      entity.Name,
		Price:     entity.Price,
		ImageKey:  entity.ImageKey,
		Colors:    entity.Colors,
		Occasions: entity.Occasions,
		Tags:      entity.Tags,
		ShopID:    entity.ShopID,
		IndexedAt: entity.IndexedAt,
		UpdatedAt: entity.UpdatedAt,
	}
}

func (c *productImageConverter) ToEntity(model *ProductImageModel) *domain.ProductImageRecord {
	return &domain.ProductImageRecord{
		ProductID: model.ProductID,
		Name:      model.Name,
		Price:     model.Price,
		ImageKey:  model.ImageKey,
		Colors:    model.Colors,
		Occasions: model.Occasions,
		Tags:      model.Tags,
		ShopID:    model.ShopID,
		IndexedAt: model.IndexedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
