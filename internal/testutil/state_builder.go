package testutil

import "github.com/hupe1980/fashionagent/core"

// StateBuilder helps construct conversation states with fluent chaining for tests.
// Example:
//
//	st := NewStateBuilder("sess-1").Image("s3://bucket/in.jpg").Messages(m1, m2).Build()
type StateBuilder struct {
	id       string
	image    string
	database string
	messages []core.Message
}

// NewStateBuilder creates a new builder for the given session id.
func NewStateBuilder(id string) *StateBuilder { return &StateBuilder{id: id} }

// Image sets the input image reference (chainable).
func (b *StateBuilder) Image(ref string) *StateBuilder { b.image = ref; return b }

// Database sets the retrieval database handle (chainable).
func (b *StateBuilder) Database(name string) *StateBuilder { b.database = name; return b }

// Message appends a single message to the history (chainable).
func (b *StateBuilder) Message(m core.Message) *StateBuilder {
	b.messages = append(b.messages, m)
	return b
}

// Messages appends multiple messages to the history (chainable).
func (b *StateBuilder) Messages(ms ...core.Message) *StateBuilder {
	b.messages = append(b.messages, ms...)
	return b
}

// Build returns a *core.ConversationState with the configured history.
func (b *StateBuilder) Build() *core.ConversationState {
	st := core.NewConversationState(b.id)
	st.InputImageRef = b.image
	st.RetrievalDatabase = b.database
	st.Conversation = core.NewConversation(b.messages...)
	return st
}
