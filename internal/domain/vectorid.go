package domain

// Каталог и метаданные используют числовые id, Qdrant — числовые id точек.
// Все преобразования id на границе векторного индекса идут только через эти
// две функции, чтобы исключить расползание неявных приведений типов.

// PointID возвращает id точки Qdrant для товара.
func PointID(productID int64) uint64 {
	return uint64(productID)
}

// ProductIDFromPoint возвращает id товара по id точки Qdrant.
func ProductIDFromPoint(pointID uint64) int64 {
	return int64(pointID)
}
