package testutil

import (
	"encoding/json"
	"fmt"

	"github.com/hupe1980/fashionagent/core"
)

// MessageBuilder provides a fluent helper for constructing messages in tests.
// Example:
//
//	msg := NewMessageBuilder().Assistant("checking").Call("weather", `{"location_name":"Paris"}`).Build()
//
// Chain only the parts you need; sensible defaults are applied.
type MessageBuilder struct {
	id      string
	role    core.Role
	content string
	calls   []core.ToolCall
	result  *core.ToolResult
}

// NewMessageBuilder creates a builder with default role assistant.
func NewMessageBuilder() *MessageBuilder { return &MessageBuilder{role: core.RoleAssistant} }

// ID overrides the auto-generated message ID (chainable).
func (b *MessageBuilder) ID(id string) *MessageBuilder { b.id = id; return b }

// User sets role user and the text content (chainable).
func (b *MessageBuilder) User(text string) *MessageBuilder {
	b.role = core.RoleUser
	b.content = text
	return b
}

// Assistant sets role assistant and the text content (chainable).
func (b *MessageBuilder) Assistant(text string) *MessageBuilder {
	b.role = core.RoleAssistant
	b.content = text
	return b
}

// Call appends a tool call with the given name and JSON arguments. Call IDs
// default to call-<n> in order of addition (chainable).
func (b *MessageBuilder) Call(name, args string) *MessageBuilder {
	return b.CallWithID(fmt.Sprintf("call-%d", len(b.calls)+1), name, args)
}

// CallWithID appends a tool call with an explicit ID (chainable).
func (b *MessageBuilder) CallWithID(id, name, args string) *MessageBuilder {
	b.role = core.RoleAssistant
	b.calls = append(b.calls, core.ToolCall{ID: id, Name: name, Arguments: json.RawMessage(args)})
	return b
}

// Result sets role tool and attaches a tool result (chainable).
func (b *MessageBuilder) Result(callID, name, output string, status core.Status) *MessageBuilder {
	b.role = core.RoleTool
	b.content = output
	b.result = &core.ToolResult{CallID: callID, Name: name, Output: output, Status: status}
	return b
}

// Build constructs the core.Message value.
func (b *MessageBuilder) Build() core.Message {
	var msg core.Message
	switch b.role {
	case core.RoleUser:
		msg = core.NewUserMessage(b.content)
	case core.RoleTool:
		msg = core.NewToolMessage(*b.result)
	default:
		msg = core.NewAssistantMessage(b.content, append([]core.ToolCall(nil), b.calls...)...)
	}
	if b.id != "" {
		msg.ID = b.id
	}
	return msg
}
