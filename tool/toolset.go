package tool

import (
	"context"
	"io"
	"math/rand/v2"

	"github.com/hupe1980/fashionagent/core"
	"github.com/hupe1980/fashionagent/logging"
	"github.com/hupe1980/fashionagent/model"
	"github.com/hupe1980/fashionagent/retrieval"
)

// Retriever is the similarity search capability used by image_lookup.
type Retriever interface {
	Retrieve(ctx context.Context, q retrieval.Query) ([]core.SimilarityHit, error)
	Available() bool
}

// Options wires the external capabilities the tools depend on. Any field
// may be nil; the affected tool then reports a failure result.
type Options struct {
	Artifacts   core.ArtifactStore
	Synthesizer core.ImageSynthesizer
	Retriever   Retriever
	Geocoder    core.Geocoder
	Weather     core.WeatherService

	// HumanIn enables the human_input tool; prompts are written to HumanOut.
	HumanIn  io.Reader
	HumanOut io.Writer

	// IntN returns a pseudo-random int in [0, n). Used for artifact name
	// suffixes and edit seeds.
	IntN func(n int) int

	Logger logging.Logger
}

// Toolset executes decoded tool invocations.
type Toolset struct {
	opts Options
}

// NewToolset creates a Toolset.
func NewToolset(optFns ...func(o *Options)) *Toolset {
	opts := Options{
		IntN:   rand.IntN,
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Toolset{opts: opts}
}

// WithHumanInput enables the human_input tool.
func WithHumanInput(in io.Reader, out io.Writer) func(o *Options) {
	return func(o *Options) {
		o.HumanIn = in
		o.HumanOut = out
	}
}

// HumanInputEnabled reports whether the human_input tool is served.
func (t *Toolset) HumanInputEnabled() bool { return t.opts.HumanIn != nil }

// Definitions returns the catalog served by this toolset.
func (t *Toolset) Definitions() []model.ToolDefinition { return Definitions(t.HumanInputEnabled()) }

// Execute decodes and runs call. It never panics past its boundary and
// never returns an error: every failure becomes a failure result.
func (t *Toolset) Execute(ctx context.Context, call core.ToolCall) (result core.ToolResult) {
	defer func() {
		if r := recover(); r != nil {
			t.opts.Logger.Error("tool.call.panic", "tool", call.Name, "panic", r)
			result = ErrorResult(call, PanicError(call.Name, r))
		}
	}()

	inv, err := Decode(call)
	if err != nil {
		return ErrorResult(call, err)
	}
	return t.Run(ctx, call, inv)
}

// Run executes a decoded invocation. The switch is exhaustive over the
// closed Invocation set.
func (t *Toolset) Run(ctx context.Context, call core.ToolCall, inv Invocation) core.ToolResult {
	switch a := inv.(type) {
	case WeatherArgs:
		return t.currentWeather(ctx, call, a)
	case ImageGenerateArgs:
		return t.imageGenerate(ctx, call, a)
	case InpaintArgs:
		return t.inpaint(ctx, call, a)
	case OutpaintArgs:
		return t.outpaint(ctx, call, a)
	case ImageLookupArgs:
		return t.imageLookup(ctx, call, a)
	case HumanInputArgs:
		return t.humanInput(call, a)
	default:
		return ErrorResult(call, NewToolError(call.Name, "unknown tool", ErrCodeInvalidTool))
	}
}
