package core

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a Message.
type Role string

const (
	// RoleUser marks operator / end-user input.
	RoleUser Role = "user"
	// RoleAssistant marks reasoning output (text and tool calls).
	RoleAssistant Role = "assistant"
	// RoleTool marks the result of exactly one tool call.
	RoleTool Role = "tool"
)

// ToolCall is a structured request, authored by the assistant, to execute a
// named tool. ID is unique within a turn and correlates the ToolResult.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Status is the outcome of a tool execution.
type Status string

const (
	// StatusSuccess marks a tool that produced its intended output.
	StatusSuccess Status = "success"
	// StatusFailure marks a tool whose failure was converted into text.
	StatusFailure Status = "failure"
)

// ToolResult is the outcome of a single ToolCall. Code carries the HTTP-like
// status used by the direct invocation path (200, 400, 404, 500).
type ToolResult struct {
	CallID string `json:"call_id"`
	Name   string `json:"name"`
	Output string `json:"output"`
	Status Status `json:"status"`
	Code   int    `json:"code,omitempty"`
}

// Succeeded reports whether the result has success status.
func (r ToolResult) Succeeded() bool { return r.Status == StatusSuccess }

// Message is one entry of a Conversation. Assistant messages may carry tool
// calls; tool messages carry exactly one Result.
type Message struct {
	ID        string         `json:"id"`
	Role      Role           `json:"role"`
	Content   string         `json:"content,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	ToolCalls []ToolCall     `json:"tool_calls,omitempty"`
	Result    *ToolResult    `json:"result,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// HasToolCalls reports whether the message requests at least one tool.
func (m Message) HasToolCalls() bool { return len(m.ToolCalls) > 0 }

// Clone returns a copy sharing no mutable slices or maps with m.
func (m Message) Clone() Message {
	c := m
	if m.ToolCalls != nil {
		c.ToolCalls = make([]ToolCall, len(m.ToolCalls))
		for i, tc := range m.ToolCalls {
			c.ToolCalls[i] = tc
			if tc.Arguments != nil {
				c.ToolCalls[i].Arguments = append(json.RawMessage(nil), tc.Arguments...)
			}
		}
	}
	if m.Data != nil {
		c.Data = make(map[string]any, len(m.Data))
		for k, v := range m.Data {
			c.Data[k] = v
		}
	}
	if m.Result != nil {
		r := *m.Result
		c.Result = &r
	}
	return c
}

// NewUserMessage creates a user-authored text message.
func NewUserMessage(text string) Message {
	return Message{ID: NewID(), Role: RoleUser, Content: text, Timestamp: time.Now().UTC()}
}

// NewAssistantMessage creates an assistant message with optional tool calls.
func NewAssistantMessage(text string, calls ...ToolCall) Message {
	return Message{ID: NewID(), Role: RoleAssistant, Content: text, ToolCalls: calls, Timestamp: time.Now().UTC()}
}

// NewToolMessage wraps a ToolResult as a tool-role message. Content mirrors
// the result output so providers that only read text still see it.
func NewToolMessage(result ToolResult) Message {
	r := result
	return Message{ID: NewID(), Role: RoleTool, Content: result.Output, Result: &r, Timestamp: time.Now().UTC()}
}

// NewID generates a new unique identifier for messages, calls and sessions.
func NewID() string { return uuid.NewString() }
