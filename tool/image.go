package tool

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/fashionagent/artifact"
	"github.com/hupe1980/fashionagent/core"
	"github.com/hupe1980/fashionagent/imagegen"
)

const (
	maxNameSuffix = 1000000
	maxEditSeed   = 214783647
	editQuality   = "premium"
	negativeText  = "bad quality, low resolution"
)

var (
	errNoSynthesizer = errors.New("image synthesis is not configured")
	errNoArtifacts   = errors.New("artifact store is not configured")
	errNoImage       = errors.New("image synthesis returned no image")
)

func (t *Toolset) imageGenerate(ctx context.Context, call core.ToolCall, a ImageGenerateArgs) core.ToolResult {
	prompt := a.InputQuery
	if a.Weather != None && a.Weather != "" {
		prompt = fmt.Sprintf("%s.Make the clothing suitable for wearing in %s weather conditions.", a.InputQuery, a.Weather)
	}

	req := core.SynthesisRequest{
		TaskType:      core.TaskTextToImage,
		Params:        map[string]any{"text": prompt},
		Count:         1,
		Width:         imagegen.DefaultSize,
		Height:        imagegen.DefaultSize,
		GuidanceScale: imagegen.DefaultGuidanceScale,
		Seed:          0,
	}
	name := fmt.Sprintf("gen_image_%d.jpg", t.opts.IntN(maxNameSuffix+1))

	loc, err := t.synthesizeAndStore(ctx, req, artifact.OutputKey(name))
	if err != nil {
		t.opts.Logger.Warn("tool.image_generate.failed", "error", err)
		return failure(call, CodeBadRequest, fmt.Sprintf("Image cannot be generated, please try again: see error %v", err))
	}
	return success(call, loc)
}

func (t *Toolset) inpaint(ctx context.Context, call core.ToolCall, a InpaintArgs) core.ToolResult {
	loc, err := t.edit(ctx, a.ImageLocation, func(encoded string) core.SynthesisRequest {
		return t.editRequest(core.TaskInpaint, map[string]any{
			"text":         a.Text,
			"negativeText": negativeText,
			"image":        encoded,
			"maskPrompt":   a.Mask,
		})
	})
	if err != nil {
		t.opts.Logger.Warn("tool.inpaint.failed", "image", a.ImageLocation, "error", err)
		return failure(call, CodeBadRequest, fmt.Sprintf("Image cannot be inpainted, please try again: see error %v", err))
	}
	return success(call, loc)
}

func (t *Toolset) outpaint(ctx context.Context, call core.ToolCall, a OutpaintArgs) core.ToolResult {
	loc, err := t.edit(ctx, a.ImageLocation, func(encoded string) core.SynthesisRequest {
		return t.editRequest(core.TaskOutpaint, map[string]any{
			"text":            a.Text,
			"image":           encoded,
			"maskPrompt":      a.Mask,
			"outPaintingMode": "PRECISE",
		})
	})
	if err != nil {
		t.opts.Logger.Warn("tool.outpaint.failed", "image", a.ImageLocation, "error", err)
		return failure(call, CodeBadRequest, fmt.Sprintf("Image cannot be outpainted, please try again: see error %v", err))
	}
	return success(call, loc)
}

func (t *Toolset) editRequest(task core.TaskType, params map[string]any) core.SynthesisRequest {
	return core.SynthesisRequest{
		TaskType:      task,
		Params:        params,
		Count:         1,
		Quality:       editQuality,
		Width:         imagegen.DefaultSize,
		Height:        imagegen.DefaultSize,
		GuidanceScale: imagegen.DefaultGuidanceScale,
		Seed:          t.opts.IntN(maxEditSeed + 1),
	}
}

// edit loads the source image, builds the request and writes the result
// back under the source's base name.
func (t *Toolset) edit(ctx context.Context, source string, build func(encoded string) core.SynthesisRequest) (string, error) {
	if t.opts.Artifacts == nil {
		return "", errNoArtifacts
	}

	img, err := t.opts.Artifacts.Get(ctx, source)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", source, err)
	}

	key := artifact.OutputKey(artifact.BaseName(source))
	return t.synthesizeAndStore(ctx, build(base64.StdEncoding.EncodeToString(img)), key)
}

func (t *Toolset) synthesizeAndStore(ctx context.Context, req core.SynthesisRequest, key string) (string, error) {
	if t.opts.Synthesizer == nil {
		return "", errNoSynthesizer
	}
	if t.opts.Artifacts == nil {
		return "", errNoArtifacts
	}

	start := time.Now()
	images, err := t.opts.Synthesizer.Synthesize(ctx, req)
	if err != nil {
		return "", err
	}
	if len(images) == 0 {
		return "", errNoImage
	}

	return t.store(ctx, key, images[0], start)
}

func (t *Toolset) store(ctx context.Context, key string, data []byte, start time.Time) (string, error) {
	loc, err := t.opts.Artifacts.Put(ctx, key, data)
	if err != nil {
		return "", fmt.Errorf("store %s: %w", key, err)
	}
	t.opts.Logger.Info("artifact.put", "location", loc, "bytes", len(data), "duration_ms", time.Since(start).Milliseconds())
	return loc, nil
}
