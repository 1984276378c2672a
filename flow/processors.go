package flow

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/fashionagent/core"
	internalutil "github.com/hupe1980/fashionagent/internal/util"
	"github.com/hupe1980/fashionagent/model"
)

// RequestProcessor contributes to the model request of a REASON step.
type RequestProcessor interface {
	// Name returns the processor's identifier.
	Name() string
	// ProcessRequest modifies the request before the model call.
	ProcessRequest(ctx context.Context, st *core.ConversationState, req *model.Request) error
}

// InstructionsProcessor renders the system prompt template against the
// session state. The template is parsed on first use.
type InstructionsProcessor struct {
	template string

	once   sync.Once
	prompt *internalutil.Prompt
	err    error
}

// NewInstructionsProcessor creates a new instructions processor.
func NewInstructionsProcessor(template string) *InstructionsProcessor {
	return &InstructionsProcessor{template: template}
}

// Name returns the processor's identifier.
func (p *InstructionsProcessor) Name() string { return "instructions" }

// ProcessRequest sets the rendered instructions on req.
func (p *InstructionsProcessor) ProcessRequest(_ context.Context, st *core.ConversationState, req *model.Request) error {
	vars := map[string]any{
		"input_image": st.InputImageRef,
		"database":    st.RetrievalDatabase,
		"session_id":  st.SessionID,
	}

	p.once.Do(func() { p.prompt, p.err = internalutil.ParsePrompt(p.template) })
	if p.err != nil {
		return fmt.Errorf("failed to parse template: %w", p.err)
	}

	rendered, err := p.prompt.Render(vars)
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	req.Instructions = rendered
	return nil
}

// ContentsProcessor copies the conversation history into the request.
type ContentsProcessor struct {
	maxHistory int
}

// NewContentsProcessor creates a new contents processor. maxHistory <= 0
// keeps the full history.
func NewContentsProcessor(maxHistory int) *ContentsProcessor {
	return &ContentsProcessor{maxHistory: maxHistory}
}

// Name returns the processor's identifier.
func (p *ContentsProcessor) Name() string { return "contents" }

// ProcessRequest sets req.Messages from the conversation.
func (p *ContentsProcessor) ProcessRequest(_ context.Context, st *core.ConversationState, req *model.Request) error {
	msgs := st.Conversation.Messages()
	if p.maxHistory > 0 && len(msgs) > p.maxHistory {
		msgs = trimHistory(msgs, p.maxHistory)
	}
	req.Messages = msgs
	return nil
}

// trimHistory keeps the last n messages, extending the window backwards so
// it never starts with a tool result whose call was cut off and always
// contains the latest user message.
func trimHistory(msgs []core.Message, n int) []core.Message {
	start := len(msgs) - n
	for start > 0 && msgs[start].Role == core.RoleTool {
		start--
	}
	for i := start - 1; i >= 0; i-- {
		if msgs[i].Role != core.RoleUser {
			continue
		}
		if !containsRole(msgs[start:], core.RoleUser) {
			start = i
		}
		break
	}
	return msgs[start:]
}

func containsRole(msgs []core.Message, role core.Role) bool {
	for _, m := range msgs {
		if m.Role == role {
			return true
		}
	}
	return false
}
