// Package engine runs conversation turns on behalf of the fashionagent
// façade.
//
// The Engine owns the cross-cutting concerns around a single turn: it loads
// the session's ConversationState from the SessionStore, runs the
// orchestrator, checkpoints the extended state and returns the final
// assistant message.
//
// # Concurrency
//
//   - Turns of different sessions run concurrently, bounded by
//     Config.MaxConcurrentTurns.
//   - Turns of the same session are serialised by a per-session lock, so a
//     state is never loaded by two turns at once.
//   - Every active turn has its own cancellable context; CancelTurn stops
//     it without affecting other sessions.
//
// A turn that fails is not checkpointed: the session keeps the state it had
// before the turn started.
package engine
