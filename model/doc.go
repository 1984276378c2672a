// Package model defines the provider-agnostic abstractions and concrete
// helpers for interacting with reasoning models.
//
// Core goals:
//   - Unify streaming + non-streaming generation behind a single interface
//   - Normalize tool / function call representation (ToolDefinition, core.ToolCall)
//   - Typed structured extraction (StructuredExtractor) with an explicit
//     "not found" result instead of an error
//   - Facilitate lightweight scripting for tests (ScriptedModel)
//
// Providers (Anthropic direct or on Amazon Bedrock, OpenAI) implement the
// Model interface so the flow remains decoupled from vendor SDKs.
package model
