// Package core provides the foundational domain types, interfaces and
// contracts used by AgriMesh. It defines the core abstractions for:
//
//   - Sessions (per-user conversational state with bounded turn history)
//   - Handlers (specialist units of work invoked via handoff)
//   - Handoff contexts (the packaged state a handler receives)
//   - Pluggable blob stores for durable session persistence
//   - External AI service boundaries (speech, translation, inference)
//
// The package intentionally keeps implementation concerns (persistence,
// routing, orchestration, concrete handlers) out of scope, exposing small
// interfaces to enable custom backends and extensions.
package core
