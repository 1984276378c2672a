package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/hupe1980/fashionagent/core"
)

// Embedder is a fake core.Embedder returning Vector (or Err) and recording
// every input.
type Embedder struct {
	mu     sync.Mutex
	Vector core.Embedding
	Err    error
	Inputs []core.EmbeddingInput
}

var _ core.Embedder = (*Embedder)(nil)

// Embed records in and returns the configured vector.
func (e *Embedder) Embed(_ context.Context, in core.EmbeddingInput) (core.Embedding, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Inputs = append(e.Inputs, in)
	if e.Err != nil {
		return nil, e.Err
	}
	if e.Vector == nil {
		return core.Embedding{1, 0, 0, 0}, nil
	}
	return append(core.Embedding(nil), e.Vector...), nil
}

// Dimensions returns the length of the configured vector.
func (e *Embedder) Dimensions() int {
	if e.Vector == nil {
		return 4
	}
	return len(e.Vector)
}

// Calls returns the number of Embed invocations.
func (e *Embedder) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Inputs)
}

// Synthesizer is a fake core.ImageSynthesizer.
type Synthesizer struct {
	mu       sync.Mutex
	Images   [][]byte
	Err      error
	Requests []core.SynthesisRequest
}

var _ core.ImageSynthesizer = (*Synthesizer)(nil)

// Synthesize records req and returns the configured images, defaulting to
// a single small payload.
func (s *Synthesizer) Synthesize(_ context.Context, req core.SynthesisRequest) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Requests = append(s.Requests, req)
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Images == nil {
		return [][]byte{[]byte("synthesized-image")}, nil
	}
	return s.Images, nil
}

// Calls returns the number of Synthesize invocations.
func (s *Synthesizer) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Requests)
}

// Index is a fake core.VectorIndex returning Hits verbatim.
type Index struct {
	mu         sync.Mutex
	IndexName  string
	Hits       []core.SimilarityHit
	Err        error
	Candidates []int
}

var _ core.VectorIndex = (*Index)(nil)

// Search records the candidate count and returns the configured hits.
func (i *Index) Search(_ context.Context, _ core.Embedding, candidates int) ([]core.SimilarityHit, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.Candidates = append(i.Candidates, candidates)
	if i.Err != nil {
		return nil, i.Err
	}
	return append([]core.SimilarityHit(nil), i.Hits...), nil
}

// Name returns IndexName, defaulting to "fake-index".
func (i *Index) Name() string {
	if i.IndexName == "" {
		return "fake-index"
	}
	return i.IndexName
}

// Calls returns the number of Search invocations.
func (i *Index) Calls() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.Candidates)
}

// Geocoder is a fake core.Geocoder over a case-insensitive place table.
type Geocoder struct {
	Places map[string]core.Coordinates
	Err    error
}

var _ core.Geocoder = (*Geocoder)(nil)

// Lookup resolves place from Places.
func (g *Geocoder) Lookup(_ context.Context, place string) (core.Coordinates, bool, error) {
	if g.Err != nil {
		return core.Coordinates{}, false, g.Err
	}
	for name, c := range g.Places {
		if strings.EqualFold(name, place) {
			return c, true, nil
		}
	}
	return core.Coordinates{}, false, nil
}

// Weather is a fake core.WeatherService.
type Weather struct {
	Observation core.CurrentWeather
	Err         error
}

var _ core.WeatherService = (*Weather)(nil)

// Current returns the configured observation.
func (w *Weather) Current(context.Context, core.Coordinates) (core.CurrentWeather, error) {
	if w.Err != nil {
		return core.CurrentWeather{}, w.Err
	}
	return w.Observation, nil
}

// ErrUnreachable is a stand-in for a transport failure.
var ErrUnreachable = errors.New("unreachable")
