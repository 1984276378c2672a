// Package session houses concrete implementations of core.SessionStore, the
// checkpoint store that carries ConversationState from one turn to the next.
// The interface itself lives in the core package so the façade and the CLI
// only depend on the contract; the wiring layer decides which backend to
// instantiate.
//
// InMemoryStore keeps states in a process local map. SQLiteStore persists
// them as JSON rows through the pure-Go modernc.org/sqlite driver.
package session
