package core

import "encoding/json"

// Conversation is an ordered, append-only sequence of Messages. Values are
// never mutated in place: Append returns a new Conversation and leaves the
// receiver untouched, so older snapshots stay valid.
type Conversation struct {
	messages []Message
}

// NewConversation builds a conversation from the given messages (copied).
func NewConversation(msgs ...Message) Conversation {
	return Conversation{}.Append(msgs...)
}

// Append returns a new Conversation extended by msgs.
func (c Conversation) Append(msgs ...Message) Conversation {
	out := make([]Message, len(c.messages), len(c.messages)+len(msgs))
	copy(out, c.messages)
	for _, m := range msgs {
		out = append(out, m.Clone())
	}
	return Conversation{messages: out}
}

// Len returns the number of messages.
func (c Conversation) Len() int { return len(c.messages) }

// Messages returns a copy of the message sequence.
func (c Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	for i, m := range c.messages {
		out[i] = m.Clone()
	}
	return out
}

// Last returns the most recent message, if any.
func (c Conversation) Last() (Message, bool) {
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1].Clone(), true
}

// LastOfRole returns the most recent message authored by role.
func (c Conversation) LastOfRole(role Role) (Message, bool) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == role {
			return c.messages[i].Clone(), true
		}
	}
	return Message{}, false
}

// MarshalJSON encodes the conversation as a JSON array of messages.
func (c Conversation) MarshalJSON() ([]byte, error) {
	if c.messages == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.messages)
}

// UnmarshalJSON decodes a JSON array of messages.
func (c *Conversation) UnmarshalJSON(data []byte) error {
	var msgs []Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return err
	}
	c.messages = msgs
	return nil
}

// ConversationState is the per-session state the orchestrator threads
// through a turn. An empty InputImageRef means no image was supplied; an
// empty RetrievalDatabase means similarity retrieval is unavailable.
type ConversationState struct {
	SessionID         string       `json:"session_id"`
	Conversation      Conversation `json:"messages"`
	InputImageRef     string       `json:"input_image_ref,omitempty"`
	RetrievalDatabase string       `json:"retrieval_database,omitempty"`
}

// NewConversationState returns an empty state bound to sessionID.
func NewConversationState(sessionID string) *ConversationState {
	return &ConversationState{SessionID: sessionID}
}

// Clone returns a copy safe for independent extension.
func (s *ConversationState) Clone() *ConversationState {
	c := *s
	c.Conversation = NewConversation(s.Conversation.messages...)
	return &c
}
