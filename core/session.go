package core

import "context"

// SessionStore checkpoints ConversationState between turns. Load returns a
// fresh empty state for unknown ids.
type SessionStore interface {
	Load(ctx context.Context, sessionID string) (*ConversationState, error)
	Save(ctx context.Context, state *ConversationState) error
}
