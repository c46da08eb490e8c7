package domain

import "time"

// ProductImageRecord — запись метаданных проиндексированного товара.
// Существует тогда и только тогда, когда в Qdrant есть точка с тем же id
// (окна частичного отказа сходятся при переиндексации).
type ProductImageRecord struct {
	ProductID int64
	Name      string
	Price     int64 // цена в минорных единицах валюты
	ImageKey  string
	Colors    []string
	Occasions []string
	Tags      []string
	ShopID    string
	IndexedAt time.Time
	UpdatedAt *time.Time
}

func NewProductImageRecord(productID int64, name string, price int64, imageKey string, shopID string) *ProductImageRecord {
	return &ProductImageRecord{
		ProductID: productID,
		Name:      name,
		Price:     price,
		ImageKey:  imageKey,
		ShopID:    shopID,
	}
}
