package core

import "context"

// Embedding is a fixed-dimension vector representing image and/or text content.
type Embedding []float32

// EmbeddingInput carries the content to embed. At least one of Image or Text
// must be set.
type EmbeddingInput struct {
	Image []byte
	Text  string
}

// Empty reports whether neither image nor text is present.
func (in EmbeddingInput) Empty() bool { return len(in.Image) == 0 && in.Text == "" }

// Embedder computes multimodal embeddings.
type Embedder interface {
	Embed(ctx context.Context, in EmbeddingInput) (Embedding, error)
	Dimensions() int
}

// TaskType selects the image synthesis operation.
type TaskType string

const (
	TaskTextToImage TaskType = "TEXT_IMAGE"
	TaskInpaint     TaskType = "INPAINTING"
	TaskOutpaint    TaskType = "OUTPAINTING"
)

// SynthesisRequest describes one image synthesis / edit call. Params holds
// the task specific parameters (prompt text, source image, mask prompt).
type SynthesisRequest struct {
	TaskType      TaskType
	Params        map[string]any
	Count         int
	GuidanceScale float64
	Seed          int
	Quality       string
	Width         int
	Height        int
}

// ImageSynthesizer generates or edits images and returns the raw image bytes
// in service order.
type ImageSynthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) ([][]byte, error)
}

// VectorIndex returns the nearest neighbours of a vector in the index's
// native descending score order.
type VectorIndex interface {
	Search(ctx context.Context, vector Embedding, candidates int) ([]SimilarityHit, error)
	// Name identifies the index (bound into ConversationState.RetrievalDatabase).
	Name() string
}

// Coordinates is a geographic position.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Geocoder resolves a place name. found is false when nothing matches.
type Geocoder interface {
	Lookup(ctx context.Context, place string) (coords Coordinates, found bool, err error)
}

// CurrentWeather is a point-in-time observation.
type CurrentWeather struct {
	Temperature   float64
	ConditionCode int
}

// WeatherService returns the current weather at a position.
type WeatherService interface {
	Current(ctx context.Context, at Coordinates) (CurrentWeather, error)
}
