// Package core provides the foundational domain types and interfaces of the
// fashion assistant. It defines:
//
//   - Messages, tool calls and tool results forming an append-only Conversation
//   - ConversationState threaded through a turn and checkpointed between turns
//   - The error taxonomy (InvalidInput, NotFound, Unavailable, Upstream, UnmappedValue)
//   - Narrow capability interfaces for artifacts, embeddings, image synthesis,
//     vector search, geocoding and weather
//
// Implementation concerns (SDK clients, persistence, orchestration) live in
// other packages so that tests can substitute in-process fakes.
package core
