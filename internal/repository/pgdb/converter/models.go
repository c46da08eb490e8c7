package converter

import "time"

// ProductImageModel представляет запись таблицы product_images в PostgreSQL.
type ProductImageModel struct {
	ProductID int64      `db:"product_id"`
	Name      string     `db:"name"`
	Price     int64      `db:"price"`
	ImageKey  string     `db:"image_key"`
	Colors    []string   `db:"colors"`
	Occasions []string   `db:"occasions"`
	Tags      []string   `db:"tags"`
	ShopID    string     `db:"shop_id"`
	IndexedAt time.Time  `db:"indexed_at"`
	UpdatedAt *time.Time `db:"updated_at"`
}
