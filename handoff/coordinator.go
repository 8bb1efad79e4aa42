package handoff

import (
	"context"
	"time"

	"github.com/missionai/agrimesh/core"
	"github.com/missionai/agrimesh/logging"
	"github.com/missionai/agrimesh/session"
)

// Options configures a Coordinator.
type Options struct {
	Logger *logging.AgriLogger
}

// Coordinator packages conversation state and dispatches it to registered
// specialist handlers.
type Coordinator struct {
	registry *Registry
	sessions *session.Store
	logger   *logging.AgriLogger
}

// NewCoordinator creates a Coordinator over the given registry and session
// store.
func NewCoordinator(registry *Registry, sessions *session.Store, optFns ...func(o *Options)) *Coordinator {
	opts := Options{
		Logger: logging.NewLogger(nil),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(nil)
	}
	return &Coordinator{
		registry: registry,
		sessions: sessions,
		logger:   opts.Logger.WithComponent("handoff"),
	}
}

// BuildContext assembles the handoff context for a user: language
// preference, profile, the most recent conversation turns, and an optional
// attachment reference. Missing profile fields are passed through as-is;
// specialists handle absence themselves.
func (c *Coordinator) BuildContext(userID, attachmentRef string) core.HandoffContext {
	sess := c.sessions.Get(userID)
	return core.HandoffContext{
		UserID:        userID,
		Language:      sess.LanguagePreference,
		Profile:       sess.Profile,
		RecentTurns:   c.sessions.RecentTurns(userID, core.HandoffHistoryTurns),
		AttachmentRef: attachmentRef,
	}
}

// Handoff packages the user's context and hands the message to the named
// handler. An unregistered target fails with core.ErrHandlerNotFound before
// any handler code runs; errors from the handler itself propagate unchanged.
func (c *Coordinator) Handoff(ctx context.Context, userID, target, message, attachmentRef string) (core.Result, error) {
	handler, err := c.registry.Lookup(target)
	if err != nil {
		c.logger.Warn("handoff target not registered", "handler", target, "user_id", userID)
		return core.Result{}, err
	}

	hc := c.BuildContext(userID, attachmentRef)
	start := time.Now()
	result, err := handler.Process(ctx, hc, message)
	c.logger.WithContext("user_id", userID).LogHandlerCall(target, time.Since(start), err == nil, err)
	return result, err
}

// WorkflowStep is a single handler invocation within a workflow.
type WorkflowStep struct {
	TargetHandler string `json:"target_handler"`
	Message       string `json:"message"`
	AttachmentRef string `json:"attachment_ref,omitempty"`
}

// WorkflowResult reports the outcome of a sequential workflow. FailedAtStep
// is the zero-based index of the failing step, or -1 when every step
// succeeded. Results holds one entry per completed step, in order.
type WorkflowResult struct {
	Success      bool          `json:"success"`
	FailedAtStep int           `json:"failed_at_step"`
	Results      []core.Result `json:"results"`
	Err          error         `json:"-"`
}

// RunWorkflow executes the steps strictly in order, rebuilding the handoff
// context before each step so later steps see the turns recorded by earlier
// ones. Each successful step is appended to the user's conversation history
// before the next step runs. The workflow halts at the first failure;
// completed results are kept.
func (c *Coordinator) RunWorkflow(ctx context.Context, userID string, steps []WorkflowStep) WorkflowResult {
	results := make([]core.Result, 0, len(steps))
	start := time.Now()

	for i, step := range steps {
		result, err := c.Handoff(ctx, userID, step.TargetHandler, step.Message, step.AttachmentRef)
		if err != nil {
			c.logger.WithContext("user_id", userID).WithContext("step", i).
				LogWorkflow(len(steps), time.Since(start), false, err)
			return WorkflowResult{Success: false, FailedAtStep: i, Results: results, Err: err}
		}

		results = append(results, result)
		if appendErr := c.sessions.AppendTurn(userID, core.ConversationTurn{
			UserMessage:   step.Message,
			AgentResponse: result.Message,
			HandlerName:   result.HandlerName,
		}); appendErr != nil {
			c.logger.Warn("failed to record workflow turn",
				"user_id", userID, "step", i, "error", appendErr)
		}
	}

	c.logger.WithContext("user_id", userID).LogWorkflow(len(steps), time.Since(start), true, nil)
	return WorkflowResult{Success: true, FailedAtStep: -1, Results: results}
}
