// Package imagegen generates and edits images with the Amazon Titan image
// generator on Bedrock.
package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/hupe1980/fashionagent/core"
	"github.com/hupe1980/fashionagent/internal/bedrock"
	"github.com/hupe1980/fashionagent/logging"
)

// DefaultModelID is the Titan image generator model.
const DefaultModelID = "amazon.titan-image-generator-v2:0"

// Defaults applied to zero-valued request fields.
const (
	DefaultSize          = 1024
	DefaultGuidanceScale = 10.0
)

// Options configures a TitanSynthesizer.
type Options struct {
	ModelID string
	Logger  logging.Logger
}

// TitanSynthesizer implements core.ImageSynthesizer.
type TitanSynthesizer struct {
	client bedrock.Invoker
	opts   Options
}

var _ core.ImageSynthesizer = (*TitanSynthesizer)(nil)

// NewTitanSynthesizer creates a synthesizer over the given Bedrock client.
func NewTitanSynthesizer(client bedrock.Invoker, optFns ...func(o *Options)) *TitanSynthesizer {
	opts := Options{
		ModelID: DefaultModelID,
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &TitanSynthesizer{client: client, opts: opts}
}

type generationConfig struct {
	NumberOfImages int     `json:"numberOfImages"`
	Quality        string  `json:"quality,omitempty"`
	Height         int     `json:"height"`
	Width          int     `json:"width"`
	CfgScale       float64 `json:"cfgScale"`
	Seed           int     `json:"seed"`
}

type synthesisResponse struct {
	Images []string `json:"images"`
	Error  *string  `json:"error,omitempty"`
}

// paramsKey maps a task type to the payload field carrying its parameters.
func paramsKey(t core.TaskType) (string, error) {
	switch t {
	case core.TaskTextToImage:
		return "textToImageParams", nil
	case core.TaskInpaint:
		return "inPaintingParams", nil
	case core.TaskOutpaint:
		return "outPaintingParams", nil
	default:
		return "", fmt.Errorf("unsupported task type %q", t)
	}
}

// BuildPayload renders the task-typed request body sent to the model.
func BuildPayload(req core.SynthesisRequest) (map[string]any, error) {
	key, err := paramsKey(req.TaskType)
	if err != nil {
		return nil, err
	}

	cfg := generationConfig{
		NumberOfImages: req.Count,
		Quality:        req.Quality,
		Height:         req.Height,
		Width:          req.Width,
		CfgScale:       req.GuidanceScale,
		Seed:           req.Seed,
	}
	if cfg.NumberOfImages < 1 {
		cfg.NumberOfImages = 1
	}
	if cfg.Height == 0 {
		cfg.Height = DefaultSize
	}
	if cfg.Width == 0 {
		cfg.Width = DefaultSize
	}
	if cfg.CfgScale == 0 {
		cfg.CfgScale = DefaultGuidanceScale
	}

	return map[string]any{
		"taskType":              string(req.TaskType),
		key:                     req.Params,
		"imageGenerationConfig": cfg,
	}, nil
}

// Synthesize invokes the model and returns the decoded images in service order.
func (s *TitanSynthesizer) Synthesize(ctx context.Context, req core.SynthesisRequest) ([][]byte, error) {
	payload, err := BuildPayload(req)
	if err != nil {
		return nil, core.E("imagegen.synthesize", core.KindInvalidInput, err)
	}

	var resp synthesisResponse
	if err := bedrock.InvokeJSON(ctx, s.client, s.opts.ModelID, payload, &resp); err != nil {
		return nil, core.E("imagegen.synthesize", core.KindUpstream, err)
	}
	if resp.Error != nil && *resp.Error != "" {
		return nil, core.E("imagegen.synthesize", core.KindUpstream, fmt.Errorf("image generation error: %s", *resp.Error))
	}
	if len(resp.Images) == 0 {
		return nil, core.E("imagegen.synthesize", core.KindUpstream, errors.New("no images returned"))
	}

	images := make([][]byte, 0, len(resp.Images))
	for i, enc := range resp.Images {
		img, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return nil, core.E("imagegen.synthesize", core.KindUpstream, fmt.Errorf("decode image %d: %w", i, err))
		}
		images = append(images, img)
	}

	s.opts.Logger.Debug("imagegen.synthesized", "task", string(req.TaskType), "images", len(images))

	return images, nil
}
