package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/fashionagent/artifact"
	"github.com/hupe1980/fashionagent/core"
	"github.com/hupe1980/fashionagent/retrieval"
)

const (
	msgNoDatabase    = "No database available for image look_up, try other actions."
	msgNoInputs      = "No valid inputs provided. Ask user to provide and image or image description"
	msgLookupError   = "Error in image_lookup. Please take another action."
	msgNoSimilarItem = "No similar images found in the catalog."
)

// imageLookup retrieves the closest catalog item and stores it as a new
// artifact. When nothing usable comes back the input image is echoed.
func (t *Toolset) imageLookup(ctx context.Context, call core.ToolCall, a ImageLookupArgs) core.ToolResult {
	if t.opts.Retriever == nil || !t.opts.Retriever.Available() {
		t.opts.Logger.Warn("tool.image_lookup.no_database")
		return failure(call, CodeNotFound, msgNoDatabase)
	}

	hasImage := retrieval.Present(a.InputImage)
	if !hasImage && !retrieval.Present(a.InputQuery) {
		t.opts.Logger.Warn("tool.image_lookup.no_inputs")
		return failure(call, CodeNotFound, msgNoInputs)
	}

	start := time.Now()
	hits, err := t.opts.Retriever.Retrieve(ctx, retrieval.Query{ImageRef: a.InputImage, Text: a.InputQuery, K: 1})
	if err != nil {
		t.opts.Logger.Error("tool.image_lookup.failed", "error", err)
		if hasImage {
			return success(call, a.InputImage)
		}
		return failure(call, CodeBadRequest, msgLookupError)
	}

	if len(hits) == 0 {
		if hasImage {
			return success(call, a.InputImage)
		}
		return failure(call, CodeNotFound, msgNoSimilarItem)
	}

	if t.opts.Artifacts == nil {
		return failure(call, CodeBadRequest, msgLookupError)
	}

	name := fmt.Sprintf("lookup_image_%d.jpg", t.opts.IntN(maxNameSuffix+1))
	loc, err := t.store(ctx, artifact.OutputKey(name), hits[0].Payload, start)
	if err != nil {
		t.opts.Logger.Error("tool.image_lookup.failed", "error", err)
		if hasImage {
			return success(call, a.InputImage)
		}
		return failure(call, CodeBadRequest, msgLookupError)
	}

	return success(call, loc)
}
