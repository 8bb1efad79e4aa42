package handoff

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/missionai/agrimesh/core"
	"github.com/missionai/agrimesh/session"
)

func echoHandler(name string) core.Handler {
	return core.HandlerFunc{
		HandlerName: name,
		Fn: func(_ context.Context, hc core.HandoffContext, message string) (core.Result, error) {
			return core.Result{
				HandlerName: name,
				Message:     "handled: " + message,
				Data:        map[string]any{"turns_seen": len(hc.RecentTurns)},
			}, nil
		},
	}
}

func failingHandler(name string, err error) core.Handler {
	return core.HandlerFunc{
		HandlerName: name,
		Fn: func(context.Context, core.HandoffContext, string) (core.Result, error) {
			return core.Result{}, err
		},
	}
}

func newTestCoordinator(handlers ...core.Handler) (*Coordinator, *session.Store) {
	registry := NewRegistry()
	for _, h := range handlers {
		registry.Register(h)
	}
	sessions := session.New()
	return NewCoordinator(registry, sessions), sessions
}

func TestRegistry_LookupUnknown(t *testing.T) {
	r := NewRegistry()
	r.Register(echoHandler(core.HandlerSoilAnalysis))

	_, err := r.Lookup("orchard_whisperer")

	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrHandlerNotFound)
	assert.Contains(t, err.Error(), "orchard_whisperer")
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	r := NewRegistry()
	r.Register(echoHandler(core.HandlerSoilAnalysis))
	r.Register(failingHandler(core.HandlerSoilAnalysis, errors.New("boom")))

	h, err := r.Lookup(core.HandlerSoilAnalysis)
	require.NoError(t, err)

	_, err = h.Process(context.Background(), core.HandoffContext{}, "hi")
	assert.Error(t, err)
}

func TestBuildContext_PackagesSessionState(t *testing.T) {
	c, sessions := newTestCoordinator()
	lang := core.LanguageKannada
	name := "Shivamma"
	require.NoError(t, sessions.Save("farmer-1", core.SessionUpdate{
		LanguagePreference: &lang,
		Profile:            &core.Profile{Name: name},
	}))
	for i := 0; i < 5; i++ {
		require.NoError(t, sessions.AppendTurn("farmer-1", core.ConversationTurn{
			UserMessage:   fmt.Sprintf("q%d", i),
			AgentResponse: fmt.Sprintf("a%d", i),
		}))
	}

	hc := c.BuildContext("farmer-1", "photo-123")

	assert.Equal(t, "farmer-1", hc.UserID)
	assert.Equal(t, core.LanguageKannada, hc.Language)
	require.NotNil(t, hc.Profile)
	assert.Equal(t, "Shivamma", hc.Profile.Name)
	assert.Equal(t, "photo-123", hc.AttachmentRef)
	// Only the most recent window travels with the handoff.
	require.Len(t, hc.RecentTurns, core.HandoffHistoryTurns)
	assert.Equal(t, "q2", hc.RecentTurns[0].UserMessage)
	assert.Equal(t, "q4", hc.RecentTurns[2].UserMessage)
}

func TestHandoff_InvokesHandler(t *testing.T) {
	c, _ := newTestCoordinator(echoHandler(core.HandlerDiseaseDiagnosis))

	result, err := c.Handoff(context.Background(), "farmer-1",
		core.HandlerDiseaseDiagnosis, "spots on leaves", "")

	require.NoError(t, err)
	assert.Equal(t, core.HandlerDiseaseDiagnosis, result.HandlerName)
	assert.Equal(t, "handled: spots on leaves", result.Message)
}

func TestHandoff_UnknownTargetFailsBeforeInvoke(t *testing.T) {
	invoked := false
	c, _ := newTestCoordinator(core.HandlerFunc{
		HandlerName: core.HandlerMarketPrice,
		Fn: func(context.Context, core.HandoffContext, string) (core.Result, error) {
			invoked = true
			return core.Result{}, nil
		},
	})

	_, err := c.Handoff(context.Background(), "farmer-1", "no_such_handler", "hello", "")

	assert.ErrorIs(t, err, core.ErrHandlerNotFound)
	assert.False(t, invoked)
}

func TestHandoff_HandlerErrorPropagatesUnchanged(t *testing.T) {
	sentinel := errors.New("model overloaded")
	c, _ := newTestCoordinator(failingHandler(core.HandlerWeatherAdvisor, sentinel))

	_, err := c.Handoff(context.Background(), "farmer-1",
		core.HandlerWeatherAdvisor, "rain tomorrow?", "")

	assert.ErrorIs(t, err, sentinel)
}

func TestRunWorkflow_AllStepsSucceed(t *testing.T) {
	c, sessions := newTestCoordinator(
		echoHandler(core.HandlerSoilAnalysis),
		echoHandler(core.HandlerWeatherAdvisor),
	)

	result := c.RunWorkflow(context.Background(), "farmer-1", []WorkflowStep{
		{TargetHandler: core.HandlerSoilAnalysis, Message: "check soil"},
		{TargetHandler: core.HandlerWeatherAdvisor, Message: "check weather"},
	})

	assert.True(t, result.Success)
	assert.Equal(t, -1, result.FailedAtStep)
	require.Len(t, result.Results, 2)
	assert.Equal(t, core.HandlerSoilAnalysis, result.Results[0].HandlerName)
	assert.Equal(t, core.HandlerWeatherAdvisor, result.Results[1].HandlerName)

	// Each completed step is recorded as a conversation turn.
	turns := sessions.RecentTurns("farmer-1", core.MaxContextTurns)
	require.Len(t, turns, 2)
	assert.Equal(t, "check soil", turns[0].UserMessage)
	assert.Equal(t, core.HandlerWeatherAdvisor, turns[1].HandlerName)
}

func TestRunWorkflow_HaltsAtFirstFailure(t *testing.T) {
	sentinel := errors.New("service down")
	invokedThird := false
	c, _ := newTestCoordinator(
		echoHandler(core.HandlerSoilAnalysis),
		echoHandler(core.HandlerWeatherAdvisor),
		failingHandler(core.HandlerMarketPrice, sentinel),
		core.HandlerFunc{
			HandlerName: core.HandlerFinanceCalc,
			Fn: func(context.Context, core.HandoffContext, string) (core.Result, error) {
				invokedThird = true
				return core.Result{}, nil
			},
		},
	)

	result := c.RunWorkflow(context.Background(), "farmer-1", []WorkflowStep{
		{TargetHandler: core.HandlerSoilAnalysis, Message: "step 0"},
		{TargetHandler: core.HandlerWeatherAdvisor, Message: "step 1"},
		{TargetHandler: core.HandlerMarketPrice, Message: "step 2"},
		{TargetHandler: core.HandlerFinanceCalc, Message: "step 3"},
	})

	assert.False(t, result.Success)
	assert.Equal(t, 2, result.FailedAtStep)
	assert.Len(t, result.Results, 2)
	assert.ErrorIs(t, result.Err, sentinel)
	assert.False(t, invokedThird)
}

func TestRunWorkflow_LaterStepsSeeEarlierTurns(t *testing.T) {
	var secondStepTurns int
	c, _ := newTestCoordinator(
		echoHandler(core.HandlerSoilAnalysis),
		core.HandlerFunc{
			HandlerName: core.HandlerFinanceCalc,
			Fn: func(_ context.Context, hc core.HandoffContext, _ string) (core.Result, error) {
				secondStepTurns = len(hc.RecentTurns)
				return core.Result{HandlerName: core.HandlerFinanceCalc, Message: "ok"}, nil
			},
		},
	)

	result := c.RunWorkflow(context.Background(), "farmer-1", []WorkflowStep{
		{TargetHandler: core.HandlerSoilAnalysis, Message: "analyze"},
		{TargetHandler: core.HandlerFinanceCalc, Message: "now budget"},
	})

	require.True(t, result.Success)
	assert.Equal(t, 1, secondStepTurns)
}

func TestRunWorkflow_EmptyStepsSucceeds(t *testing.T) {
	c, _ := newTestCoordinator()

	result := c.RunWorkflow(context.Background(), "farmer-1", nil)

	assert.True(t, result.Success)
	assert.Equal(t, -1, result.FailedAtStep)
	assert.Empty(t, result.Results)
}
