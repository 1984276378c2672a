// Package vectorindex provides core.VectorIndex implementations: a local
// SQLite index with cosine scoring and an OpenSearch (Serverless) kNN index,
// plus helpers to ingest catalog images into either.
package vectorindex

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hupe1980/fashionagent/core"
)

// Document is one catalog entry: the embedding of an image and the image itself.
type Document struct {
	ID     string
	Vector core.Embedding
	Image  []byte
}

// CosineSimilarity computes the cosine similarity of two equal-length vectors.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector dimension mismatch: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// encodeBlob encodes a float32 slice as a little-endian binary blob.
func encodeBlob(vec []float32) []byte {
	buf := &bytes.Buffer{}
	if err := binary.Write(buf, binary.LittleEndian, vec); err != nil {
		// Should never happen with bytes.Buffer
		return nil
	}
	return buf.Bytes()
}

// decodeBlob is the inverse of encodeBlob.
func decodeBlob(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("invalid vector blob length %d", len(blob))
	}
	vec := make([]float32, len(blob)/4)
	if err := binary.Read(bytes.NewReader(blob), binary.LittleEndian, vec); err != nil {
		return nil, err
	}
	return vec, nil
}
