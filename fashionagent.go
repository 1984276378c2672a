// Package fashionagent provides a high-level façade over the turn engine,
// the orchestrator and the tool set of the fashion assistant. Most
// applications interact with this package by:
//  1. Building the capabilities (config.Build, or hand-wired fakes in tests)
//  2. Creating an Agent via New() with a reasoning model and a tool set
//  3. Calling Chat for conversational turns or Invoke for a single tool
//
// The façade delegates turn execution to engine.Engine and orchestration to
// flow.Flow while keeping setup concise. All defaults are safe for local
// development; production deployments supply a durable session store and a
// structured logger.
package fashionagent

import (
	"context"

	"github.com/hupe1980/fashionagent/core"
	"github.com/hupe1980/fashionagent/engine"
	"github.com/hupe1980/fashionagent/flow"
	"github.com/hupe1980/fashionagent/logging"
	"github.com/hupe1980/fashionagent/model"
	"github.com/hupe1980/fashionagent/session"
	"github.com/hupe1980/fashionagent/tool"
)

// Options configures the Agent instance.
type Options struct {
	// MaxConcurrentTurns limits the number of turns executing at the same
	// time across sessions. Zero means unlimited.
	MaxConcurrentTurns int

	// SessionStore defaults to an in-memory implementation.
	SessionStore core.SessionStore

	// Flow customises the orchestrator (iterations, extractor, database).
	Flow []func(o *flow.Options)

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Agent is the fashion assistant.
type Agent struct {
	opts   Options
	tools  *tool.Toolset
	flow   *flow.Flow
	engine *engine.Engine
}

// New creates an Agent reasoning with m over tools.
func New(m model.Model, tools *tool.Toolset, optFns ...func(o *Options)) *Agent {
	opts := Options{
		MaxConcurrentTurns: engine.DefaultConfig.MaxConcurrentTurns,
		SessionStore:       session.NewInMemoryStore(),
		Logger:             logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	flowOpts := append([]func(o *flow.Options){func(o *flow.Options) { o.Logger = logging.ForComponent(opts.Logger, "flow") }}, opts.Flow...)
	f := flow.New(m, tools, flowOpts...)

	e := engine.New(f, func(o *engine.Options) {
		o.Config = engine.Config{MaxConcurrentTurns: opts.MaxConcurrentTurns}
		o.SessionStore = opts.SessionStore
		o.Logger = logging.ForComponent(opts.Logger, "engine")
	})

	return &Agent{opts: opts, tools: tools, flow: f, engine: e}
}

// Chat runs one conversational turn for sessionID and returns the final
// assistant message.
func (a *Agent) Chat(ctx context.Context, sessionID, text string) (core.Message, error) {
	return a.engine.Turn(ctx, sessionID, text)
}

// History returns the messages recorded for sessionID.
func (a *Agent) History(ctx context.Context, sessionID string) ([]core.Message, error) {
	return a.engine.History(ctx, sessionID)
}

// Cancel stops the active turn of sessionID.
func (a *Agent) Cancel(sessionID string) error { return a.engine.CancelTurn(sessionID) }

// Invoke executes a single tool call outside of any conversation.
func (a *Agent) Invoke(ctx context.Context, call core.ToolCall) core.ToolResult {
	if call.ID == "" {
		call.ID = core.NewID()
	}
	return a.tools.Execute(ctx, call)
}
