// Package embedding computes multimodal (image and/or text) embeddings with
// the Amazon Titan multimodal embedding model on Bedrock.
package embedding

import (
	"context"
	"encoding/base64"
	"fmt"
	"slices"

	"github.com/hupe1980/fashionagent/core"
	"github.com/hupe1980/fashionagent/internal/bedrock"
	"github.com/hupe1980/fashionagent/logging"
)

// DefaultModelID is the Titan multimodal embedding model.
const DefaultModelID = "amazon.titan-embed-image-v1"

// SupportedDimensions are the output lengths the model accepts.
var SupportedDimensions = []int{256, 384, 1024}

// IsSupportedDimension reports whether d is an accepted output length.
func IsSupportedDimension(d int) bool { return slices.Contains(SupportedDimensions, d) }

// Options configures a TitanEmbedder.
type Options struct {
	ModelID    string
	Dimensions int
	Logger     logging.Logger
}

// TitanEmbedder implements core.Embedder.
type TitanEmbedder struct {
	client bedrock.Invoker
	opts   Options
}

var _ core.Embedder = (*TitanEmbedder)(nil)

// NewTitanEmbedder creates an embedder. Dimensions defaults to 1024 and must
// be one of SupportedDimensions.
func NewTitanEmbedder(client bedrock.Invoker, optFns ...func(o *Options)) (*TitanEmbedder, error) {
	opts := Options{
		ModelID:    DefaultModelID,
		Dimensions: 1024,
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if !IsSupportedDimension(opts.Dimensions) {
		return nil, core.Errorf("embedding.new", core.KindConfig, "unsupported embedding dimension %d (supported: %v)", opts.Dimensions, SupportedDimensions)
	}
	if client == nil {
		return nil, core.Errorf("embedding.new", core.KindConfig, "bedrock client is required")
	}

	return &TitanEmbedder{client: client, opts: opts}, nil
}

type embeddingConfig struct {
	OutputEmbeddingLength int `json:"outputEmbeddingLength"`
}

type embedRequest struct {
	InputImage      string          `json:"inputImage,omitempty"`
	InputText       string          `json:"inputText,omitempty"`
	EmbeddingConfig embeddingConfig `json:"embeddingConfig"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
	Message   string    `json:"message,omitempty"`
}

// Dimensions returns the configured output length.
func (e *TitanEmbedder) Dimensions() int { return e.opts.Dimensions }

// Embed computes the embedding of the image and/or text in `in`.
func (e *TitanEmbedder) Embed(ctx context.Context, in core.EmbeddingInput) (core.Embedding, error) {
	if in.Empty() {
		return nil, core.Errorf("embedding.embed", core.KindInvalidInput, "image or text is required")
	}

	req := embedRequest{
		InputText:       in.Text,
		EmbeddingConfig: embeddingConfig{OutputEmbeddingLength: e.opts.Dimensions},
	}
	if len(in.Image) > 0 {
		req.InputImage = base64.StdEncoding.EncodeToString(in.Image)
	}

	var resp embedResponse
	if err := bedrock.InvokeJSON(ctx, e.client, e.opts.ModelID, req, &resp); err != nil {
		return nil, core.E("embedding.embed", core.KindUpstream, err)
	}
	if len(resp.Embedding) != e.opts.Dimensions {
		return nil, core.E("embedding.embed", core.KindUpstream,
			fmt.Errorf("expected %d dimensions, got %d %s", e.opts.Dimensions, len(resp.Embedding), resp.Message))
	}

	e.opts.Logger.Debug("embedding.computed", "model", e.opts.ModelID, "image", len(in.Image) > 0, "text", in.Text != "")

	return core.Embedding(resp.Embedding), nil
}
