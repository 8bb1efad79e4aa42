// Package orchestrator is the conversational front door. It detects the
// user's language, routes messages to specialist handlers through the
// handoff coordinator, records conversation turns, walks new farmers through
// seasonal onboarding roadmaps and degrades gracefully when a specialist or
// external service is unavailable.
package orchestrator
