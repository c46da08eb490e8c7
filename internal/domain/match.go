package domain

// VectorMatch — результат запроса к векторному индексу.
// Score — нормированная косинусная похожесть в [0,1], выше = более похоже.
type VectorMatch struct {
	ProductID int64
	Score     float32
	Payload   Payload
}

func NewVectorMatch(productID int64, score float32, payload Payload) VectorMatch {
	return VectorMatch{
		ProductID: productID,
		Score:     score,
		Payload:   payload,
	}
}
