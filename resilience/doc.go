// Package resilience shields callers from the instability of external AI
// services. It combines three cooperating mechanisms:
//
//   - A per-service circuit breaker (CLOSED/OPEN/HALF_OPEN) that stops
//     calling a failing dependency for a cooldown period
//   - A bounded retry policy with exponential backoff that distinguishes
//     transient from permanent failures via typed error classification
//   - Graceful fallback wrappers that convert exhausted or rejected calls
//     into well-formed degraded results instead of raised errors
//
// Breakers are owned by a BreakerRegistry so tests can instantiate isolated
// instances; there are no process-wide singletons. All breaker state
// transitions are mutex-serialized and at most one HALF_OPEN trial call is
// admitted per breaker at a time.
package resilience
