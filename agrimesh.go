// Package agrimesh provides a high-level façade over the farmer assistant
// core: session storage, intent routing, handoff coordination, resilient
// external AI services and the specialist handlers. Most applications
// interact with this package by:
//  1. Creating an AgriMesh via New() (optionally overriding the durable
//     store, AI providers and resilience settings)
//  2. Processing user messages with ProcessText / ProcessVoice
//  3. Inspecting or resetting circuit breakers through the registry
//
// All defaults are safe for local development and testing; production
// deployments supply a SQLite-backed blob store and real AI providers.
package agrimesh

import (
	"context"
	"time"

	"github.com/missionai/agrimesh/blob"
	"github.com/missionai/agrimesh/core"
	"github.com/missionai/agrimesh/handlers"
	"github.com/missionai/agrimesh/handoff"
	"github.com/missionai/agrimesh/logging"
	"github.com/missionai/agrimesh/orchestrator"
	"github.com/missionai/agrimesh/resilience"
	"github.com/missionai/agrimesh/router"
	"github.com/missionai/agrimesh/session"
)

// Options configures the AgriMesh instance.
type Options struct {
	// Durable is the blob backend session state persists through.
	// Defaults to an in-memory store.
	Durable core.BlobStore

	// AI service boundaries. Nil services degrade gracefully to fallback
	// responses instead of failing.
	Speech      core.SpeechService
	Translation core.TranslationService
	Inference   core.InferenceService

	// FailureThreshold is the consecutive failure count that opens a
	// circuit breaker.
	FailureThreshold int

	// OpenTimeout is how long an open breaker waits before admitting a
	// trial request.
	OpenTimeout time.Duration

	// Retry bounds attempts per external call.
	Retry resilience.RetryPolicy

	// Logger (defaults to a JSON slog logger if nil).
	Logger *logging.AgriLogger
}

// AgriMesh aggregates the assistant's subsystems behind one entry point.
type AgriMesh struct {
	sessions     *session.Store
	registry     *handoff.Registry
	breakers     *resilience.BreakerRegistry
	services     *resilience.Services
	orchestrator *orchestrator.Orchestrator
}

// New creates an AgriMesh instance with optional overrides. Any unset
// service is initialized with a safe default.
func New(optFns ...func(o *Options)) *AgriMesh {
	opts := Options{
		Durable:          blob.NewMemoryStore(),
		FailureThreshold: resilience.DefaultFailureThreshold,
		OpenTimeout:      resilience.DefaultOpenTimeout,
		Retry:            resilience.DefaultRetryPolicy(),
		Logger:           logging.NewLogger(nil),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Durable == nil {
		opts.Durable = blob.NewMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(nil)
	}

	breakers := resilience.NewBreakerRegistry(func(o *resilience.BreakerOptions) {
		o.FailureThreshold = opts.FailureThreshold
		o.OpenTimeout = opts.OpenTimeout
	})
	executor := resilience.NewExecutor(func(o *resilience.Options) {
		o.Registry = breakers
		o.Policy = opts.Retry
		o.Logger = opts.Logger.WithComponent("resilience")
	})
	services := resilience.NewServices(func(o *resilience.ServiceOptions) {
		o.Executor = executor
		o.Speech = opts.Speech
		o.Translation = opts.Translation
		o.Inference = opts.Inference
		o.Logger = opts.Logger.WithComponent("services")
	})

	sessions := session.New(func(o *session.Options) {
		o.Durable = opts.Durable
		o.Logger = opts.Logger.WithComponent("session")
	})

	registry := handoff.NewRegistry()
	handlers.RegisterAll(registry, services)

	coordinator := handoff.NewCoordinator(registry, sessions, func(o *handoff.Options) {
		o.Logger = opts.Logger
	})
	orch := orchestrator.New(sessions, coordinator, func(o *orchestrator.Options) {
		o.Services = services
		o.Logger = opts.Logger
	})

	return &AgriMesh{
		sessions:     sessions,
		registry:     registry,
		breakers:     breakers,
		services:     services,
		orchestrator: orch,
	}
}

// ProcessText handles one text message end to end.
func (a *AgriMesh) ProcessText(ctx context.Context, userID, message, attachmentRef string) orchestrator.Response {
	return a.orchestrator.ProcessText(ctx, userID, message, attachmentRef)
}

// ProcessVoice transcribes audio, answers it and synthesizes a spoken reply.
func (a *AgriMesh) ProcessVoice(ctx context.Context, userID string, audio []byte) orchestrator.Response {
	return a.orchestrator.ProcessVoice(ctx, userID, audio)
}

// Sessions exposes the session store for persistence operations.
func (a *AgriMesh) Sessions() *session.Store { return a.sessions }

// Breakers exposes the circuit breaker registry for status inspection and
// manual reset.
func (a *AgriMesh) Breakers() *resilience.BreakerRegistry { return a.breakers }

// Handlers exposes the handler registry.
func (a *AgriMesh) Handlers() *handoff.Registry { return a.registry }

// Orchestrator exposes the orchestrator for onboarding flows.
func (a *AgriMesh) Orchestrator() *orchestrator.Orchestrator { return a.orchestrator }

// RegisterHandler adds or replaces a specialist handler.
func (a *AgriMesh) RegisterHandler(h core.Handler) { a.registry.Register(h) }

// Route exposes the intent router for diagnostics.
func (a *AgriMesh) Route(message string) (string, bool) {
	return router.New().Route(message, nil)
}
