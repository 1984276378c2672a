// Package flow implements the orchestrator of the fashion assistant.
//
// A turn is driven by a small state machine:
//
//	INTAKE -> REASON -> ROUTE -> EXECUTE -> REASON -> ... -> DONE
//
// INTAKE extracts the input image reference from the user's text, REASON
// asks the model for the next assistant message, ROUTE inspects it for tool
// calls and EXECUTE runs them through the sequential Dispatcher. Request
// construction is split into pluggable RequestProcessors.
package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/fashionagent/core"
	"github.com/hupe1980/fashionagent/logging"
	"github.com/hupe1980/fashionagent/model"
)

// DefaultMaxIterations bounds the REASON steps of a single turn.
const DefaultMaxIterations = 10

// InputImageShape is the structure extracted during INTAKE.
var InputImageShape = model.Shape{
	Name:        "InputImage",
	Description: "input image location",
	Fields: []model.Field{
		{Name: "input_image", Description: "S3 url for the image input path"},
	},
}

// Tools is the tool capability driven by a Flow.
type Tools interface {
	ToolExecutor
	Definitions() []model.ToolDefinition
}

// Options configures a Flow.
type Options struct {
	// MaxIterations bounds the REASON steps per turn. Values below one fall
	// back to DefaultMaxIterations; a turn is never unbounded.
	MaxIterations int
	// Instructions is the system prompt template.
	Instructions string
	// Extractor performs INTAKE. Defaults to a model backed extractor over
	// the reasoning model.
	Extractor model.StructuredExtractor
	// Database is the retrieval index handle bound into the state during
	// INTAKE. Empty means retrieval is unavailable.
	Database string
	// MaxHistory limits the messages sent to the model. Zero keeps all.
	MaxHistory int
	// Stream selects the provider's streaming transport for REASON calls.
	Stream bool
	// Processors replaces the default request processors.
	Processors []RequestProcessor
	Logger     logging.Logger
}

// Flow runs conversation turns.
type Flow struct {
	model      model.Model
	tools      Tools
	dispatcher *Dispatcher
	opts       Options
}

// New creates a Flow.
func New(m model.Model, tools Tools, optFns ...func(o *Options)) *Flow {
	opts := Options{
		MaxIterations: DefaultMaxIterations,
		Instructions:  DefaultInstructions,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.MaxIterations < 1 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.Extractor == nil {
		opts.Extractor = model.NewModelExtractor(m)
	}
	if opts.Processors == nil {
		opts.Processors = []RequestProcessor{
			NewInstructionsProcessor(opts.Instructions),
			NewContentsProcessor(opts.MaxHistory),
		}
	}

	return &Flow{
		model:      m,
		tools:      tools,
		dispatcher: NewDispatcher(tools, opts.Logger),
		opts:       opts,
	}
}

// Run executes one turn for input on top of st and returns the extended
// state together with the final assistant message. st itself is not
// modified. On error the returned state holds every message appended before
// the failure.
func (f *Flow) Run(ctx context.Context, st *core.ConversationState, input string) (*core.ConversationState, core.Message, error) {
	if st == nil {
		st = core.NewConversationState(core.NewID())
	}
	next := st.Clone()
	next.Conversation = next.Conversation.Append(core.NewUserMessage(input))

	limiter := core.NewIterationLimiter(f.opts.MaxIterations)
	start := time.Now()

	var (
		state = StateIntake
		last  core.Message
	)

	for {
		var to State

		switch state {
		case StateIntake:
			f.intake(ctx, next, input)
			to = StateReason

		case StateReason:
			if err := limiter.Increment(); err != nil {
				f.opts.Logger.Warn("flow.iteration.limit", "session_id", next.SessionID, "max", f.opts.MaxIterations)
				return next, core.Message{}, err
			}
			msg, err := f.reason(ctx, next)
			if err != nil {
				return next, core.Message{}, err
			}
			next.Conversation = next.Conversation.Append(msg)
			last = msg
			to = StateRoute

		case StateRoute:
			to = Route(last)

		case StateExecute:
			results := f.dispatcher.Execute(ctx, last.ToolCalls)
			msgs := make([]core.Message, len(results))
			for i, r := range results {
				msgs[i] = core.NewToolMessage(r)
			}
			next.Conversation = next.Conversation.Append(msgs...)
			to = StateReason

		case StateDone:
			f.opts.Logger.Info(
				"flow.turn.complete",
				"session_id", next.SessionID,
				"steps", limiter.Count(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return next, last, nil
		}

		if err := Transition(state, to); err != nil {
			return next, core.Message{}, err
		}
		f.opts.Logger.Debug("flow.state.transition", "session_id", next.SessionID, "from", state.String(), "to", to.String())
		state = to
	}
}

// intake binds the input image reference and the retrieval database. An
// extraction failure leaves the reference empty and is never fatal.
func (f *Flow) intake(ctx context.Context, st *core.ConversationState, input string) {
	st.RetrievalDatabase = f.opts.Database
	st.InputImageRef = ""

	ex, err := f.opts.Extractor.Extract(ctx, input, InputImageShape)
	if err != nil {
		f.opts.Logger.Warn("flow.intake.failed", "session_id", st.SessionID, "error", err)
		return
	}
	if !ex.Found {
		f.opts.Logger.Debug("flow.intake.no_image", "session_id", st.SessionID)
		return
	}

	st.InputImageRef = ex.Get("input_image")
	f.opts.Logger.Info("flow.intake.extracted", "session_id", st.SessionID, "input_image", st.InputImageRef)
}

func (f *Flow) reason(ctx context.Context, st *core.ConversationState) (core.Message, error) {
	req := model.Request{Stream: f.opts.Stream}
	for _, p := range f.opts.Processors {
		if err := p.ProcessRequest(ctx, st, &req); err != nil {
			return core.Message{}, fmt.Errorf("request processor %s failed: %w", p.Name(), err)
		}
	}
	if f.tools != nil {
		req.Tools = f.tools.Definitions()
	}

	start := time.Now()
	resp, err := model.Invoke(ctx, f.model, req)
	if err != nil {
		f.opts.Logger.Error("model.call.failed", "model", f.model.Info().Name, "error", err)
		return core.Message{}, err
	}

	msg := resp.Message
	for i := range msg.ToolCalls {
		if msg.ToolCalls[i].ID == "" {
			msg.ToolCalls[i].ID = core.NewID()
		}
	}

	kv := []any{
		"model", f.model.Info().Name,
		"tool_calls", len(msg.ToolCalls),
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if resp.Usage != nil {
		kv = append(kv, "prompt_tokens", resp.Usage.PromptTokens, "completion_tokens", resp.Usage.CompletionTokens)
	}
	f.opts.Logger.Info("model.call.complete", kv...)

	return msg, nil
}
