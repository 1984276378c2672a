package core

// SimilarityHit is a candidate returned by a vector index. Payload holds the
// decoded stored image bytes.
type SimilarityHit struct {
	ID      string
	Score   float64
	Payload []byte
}
