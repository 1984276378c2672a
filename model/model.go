package model

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/fashionagent/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// NewToolDefinition builds a function-type ToolDefinition.
func NewToolDefinition(name, description string, parameters map[string]any) ToolDefinition {
	return ToolDefinition{
		Type: "function",
		Function: FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}

// Request captures the normalized model input produced by flows.
type Request struct {
	Instructions string           `json:"instructions"` // System prompt
	Messages     []core.Message   `json:"messages"`     // Conversation history, oldest first
	Tools        []ToolDefinition `json:"tools,omitempty"`
	// ToolChoice forces a call of the named tool. Empty leaves the choice
	// to the model.
	ToolChoice string `json:"tool_choice,omitempty"`
	Stream     bool   `json:"stream,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a streaming model.
type Response struct {
	ID           string       `json:"id"`
	Partial      bool         `json:"partial"` // Indicates if this is a partial response
	Message      core.Message `json:"message"`
	FinishReason string       `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "bedrock", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required by flows to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// Invoke drains a Generate call into a single final Response. Partial text
// chunks are concatenated when the provider never emits a final chunk.
func Invoke(ctx context.Context, m Model, req Request) (Response, error) {
	respCh, errCh := m.Generate(ctx, req)

	var (
		final   *Response
		partial strings.Builder
	)

	for resp := range respCh {
		if resp.Partial {
			partial.WriteString(resp.Message.Content)
			continue
		}
		r := resp
		final = &r
	}

	if err := <-errCh; err != nil {
		return Response{}, core.E("model.invoke", core.KindUpstream, err)
	}

	if final == nil {
		if partial.Len() == 0 {
			return Response{}, core.Errorf("model.invoke", core.KindUpstream, "model %s returned no response", m.Info().Name)
		}
		final = &Response{Message: core.NewAssistantMessage(partial.String()), FinishReason: "stop"}
	}

	if final.Message.Role == "" {
		final.Message.Role = core.RoleAssistant
	}
	if final.Message.ID == "" {
		final.Message.ID = core.NewID()
	}

	return *final, nil
}

// Step produces the assistant message for one scripted generation.
type Step func(req Request) (core.Message, error)

// Reply returns a Step answering with plain text.
func Reply(text string) Step {
	return func(Request) (core.Message, error) { return core.NewAssistantMessage(text), nil }
}

// CallTools returns a Step requesting the given tool calls.
func CallTools(text string, calls ...core.ToolCall) Step {
	return func(Request) (core.Message, error) { return core.NewAssistantMessage(text, calls...), nil }
}

// Fail returns a Step failing with err.
func Fail(err error) Step {
	return func(Request) (core.Message, error) { return core.Message{}, err }
}

// ScriptedModel is a deterministic in-memory Model useful for tests & examples.
// Each Generate call consumes the next Step; requests are recorded.
type ScriptedModel struct {
	mu       sync.Mutex
	info     Info
	steps    []Step
	requests []Request
}

var _ Model = (*ScriptedModel)(nil)

// NewScriptedModel constructs a ScriptedModel with tool support enabled.
func NewScriptedModel(name string, steps ...Step) *ScriptedModel {
	return &ScriptedModel{
		info:  Info{Name: name, Provider: "scripted", SupportsTools: true},
		steps: steps,
	}
}

// Generate implements Model.
func (m *ScriptedModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 1)
	errCh := make(chan error, 1)

	m.mu.Lock()
	idx := len(m.requests)
	m.requests = append(m.requests, req)
	var step Step
	if idx < len(m.steps) {
		step = m.steps[idx]
	}
	m.mu.Unlock()

	go func() {
		defer close(respCh)
		defer close(errCh)

		if err := ctx.Err(); err != nil {
			errCh <- err
			return
		}
		if step == nil {
			errCh <- fmt.Errorf("script exhausted after %d responses", idx)
			return
		}

		msg, err := step(req)
		if err != nil {
			errCh <- err
			return
		}

		finish := "stop"
		if msg.HasToolCalls() {
			finish = "tool_calls"
		}
		respCh <- Response{ID: core.NewID(), Message: msg, FinishReason: finish}
	}()

	return respCh, errCh
}

// Info implements Model.
func (m *ScriptedModel) Info() Info { return m.info }

// Requests returns the recorded requests.
func (m *ScriptedModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}
