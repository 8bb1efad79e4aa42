// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer AgriLogger with contextual
// helpers (user, request, component) and domain specific logging helpers for
// handlers, external service calls and workflows.
package logging
