// Package retrieval implements multimodal similarity search over the catalog
// vector index: embed the query, fetch a fixed candidate pool, keep the hits
// scoring above the threshold in the order the index returned them.
package retrieval

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/fashionagent/core"
	"github.com/hupe1980/fashionagent/logging"
)

const (
	// CandidatePool is the number of neighbours requested from the index
	// regardless of the caller's k.
	CandidatePool = 5

	// ScoreThreshold is the exclusive lower bound on hit scores.
	ScoreThreshold = 0.2

	// None is the sentinel the reasoning model uses for an absent argument.
	None = "None"
)

// Query describes one retrieval. ImageRef is an artifact location; empty and
// None mean absent for both ImageRef and Text.
type Query struct {
	ImageRef string
	Text     string
	K        int
}

// Options configures an Engine.
type Options struct {
	// TruncateToK cuts the filtered hits to min(k, n). Off by default: k is an
	// intent signal and every hit above the threshold is returned.
	TruncateToK bool
	Logger      logging.Logger
}

// Engine answers similarity queries.
type Engine struct {
	embedder  core.Embedder
	index     core.VectorIndex
	artifacts core.ArtifactStore
	opts      Options
}

// New creates an Engine. index may be nil, in which case every Retrieve
// fails with core.ErrUnavailable.
func New(embedder core.Embedder, index core.VectorIndex, artifacts core.ArtifactStore, optFns ...func(o *Options)) *Engine {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Engine{
		embedder:  embedder,
		index:     index,
		artifacts: artifacts,
		opts:      opts,
	}
}

// Available reports whether an index is configured.
func (e *Engine) Available() bool { return e != nil && e.index != nil }

// Database names the configured index, or "" when retrieval is unavailable.
func (e *Engine) Database() string {
	if !e.Available() {
		return ""
	}
	return e.index.Name()
}

// Present reports whether an argument carries a value.
func Present(v string) bool { return v != "" && v != None }

// Retrieve embeds the query and returns the index hits whose score is
// strictly greater than ScoreThreshold, in index order. The result never
// holds more than CandidatePool hits.
func (e *Engine) Retrieve(ctx context.Context, q Query) ([]core.SimilarityHit, error) {
	const op = "retrieval.retrieve"

	hasImage, hasText := Present(q.ImageRef), Present(q.Text)
	if !hasImage && !hasText {
		return nil, core.Errorf(op, core.KindInvalidInput, "an image reference or a text query is required")
	}
	if !e.Available() {
		return nil, core.Errorf(op, core.KindUnavailable, "no vector index configured")
	}
	if q.K < 1 {
		return nil, core.Errorf(op, core.KindInvalidInput, "k must be positive, got %d", q.K)
	}

	start := time.Now()

	var in core.EmbeddingInput
	if hasImage {
		if e.artifacts == nil {
			return nil, core.Errorf(op, core.KindUnavailable, "no artifact store configured to resolve %s", q.ImageRef)
		}
		img, err := e.artifacts.Get(ctx, q.ImageRef)
		if err != nil {
			kind := core.KindUpstream
			if core.KindOf(err) == core.KindNotFound {
				kind = core.KindNotFound
			}
			return nil, core.E(op, kind, fmt.Errorf("load image %s: %w", q.ImageRef, err))
		}
		in.Image = img
	}
	if hasText {
		in.Text = q.Text
	}

	vec, err := e.embedder.Embed(ctx, in)
	if err != nil {
		return nil, core.E(op, core.KindUpstream, fmt.Errorf("embed query: %w", err))
	}

	candidates, err := e.index.Search(ctx, vec, CandidatePool)
	if err != nil {
		return nil, core.E(op, core.KindUpstream, fmt.Errorf("search %s: %w", e.index.Name(), err))
	}

	hits := Filter(candidates)
	if e.opts.TruncateToK && len(hits) > q.K {
		hits = hits[:q.K]
	}

	e.opts.Logger.Info("retrieval.search.complete",
		"index", e.index.Name(),
		"candidates", len(candidates),
		"hits", len(hits),
		"image", hasImage,
		"text", hasText,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return hits, nil
}

// Filter keeps the first CandidatePool candidates scoring above
// ScoreThreshold without reordering them.
func Filter(candidates []core.SimilarityHit) []core.SimilarityHit {
	if len(candidates) > CandidatePool {
		candidates = candidates[:CandidatePool]
	}

	hits := make([]core.SimilarityHit, 0, len(candidates))
	for _, c := range candidates {
		if c.Score > ScoreThreshold {
			hits = append(hits, c)
		}
	}
	return hits
}
