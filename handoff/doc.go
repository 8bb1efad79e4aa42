// Package handoff transfers conversations from the core to specialist
// handlers. It packages the user's language preference, profile, a short
// window of recent conversation turns, and an optional attachment reference
// into a handoff context, and drives multi-step sequential workflows that
// halt at the first failing step.
package handoff
