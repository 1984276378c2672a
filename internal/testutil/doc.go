// Package testutil contains helper builders and in-process fakes used across
// tests to reduce boilerplate when constructing messages and conversation
// state and when standing in for external capabilities (embedding, image
// synthesis, vector search, geocoding, weather). They are not intended for
// production usage.
package testutil
