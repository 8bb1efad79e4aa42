package agrimesh

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/missionai/agrimesh/blob"
	"github.com/missionai/agrimesh/core"
	"github.com/missionai/agrimesh/resilience"
)

func TestNew_DefaultsAnswerQuestions(t *testing.T) {
	mesh := New()

	resp := mesh.ProcessText(context.Background(), "farmer-1",
		"Calculate the profit for growing rice", "")

	assert.Equal(t, core.HandlerFinanceCalc, resp.HandlerName)
	assert.NotEmpty(t, resp.Message)
}

func TestNew_SessionsPersistAcrossInstances(t *testing.T) {
	durable := blob.NewMemoryStore()
	mesh := New(func(o *Options) { o.Durable = durable })
	lang := core.LanguageHindi
	require.NoError(t, mesh.Sessions().Save("farmer-1", core.SessionUpdate{LanguagePreference: &lang}))

	restarted := New(func(o *Options) { o.Durable = durable })
	result := restarted.Sessions().Restore("farmer-1")

	assert.True(t, result.ProfileRestored)
	assert.Equal(t, core.LanguageHindi, restarted.Sessions().Get("farmer-1").LanguagePreference)
}

func TestBreakers_ExposedForInspection(t *testing.T) {
	mesh := New()
	mesh.Breakers().Get(core.ServiceInference)

	status, ok := mesh.Breakers().Status(core.ServiceInference)

	require.True(t, ok)
	assert.Equal(t, resilience.StateClosed, status.State)
}

func TestRegisterHandler_ReplacesDefault(t *testing.T) {
	mesh := New()
	mesh.RegisterHandler(core.HandlerFunc{
		HandlerName: core.HandlerMarketPrice,
		Fn: func(context.Context, core.HandoffContext, string) (core.Result, error) {
			return core.Result{HandlerName: core.HandlerMarketPrice, Message: "custom"}, nil
		},
	})

	resp := mesh.ProcessText(context.Background(), "farmer-1", "mandi rate for onion?", "")

	assert.Equal(t, "custom", resp.Message)
}

func TestRoute_Diagnostics(t *testing.T) {
	mesh := New()

	target, ambiguous := mesh.Route("Tell me about cotton")

	assert.Equal(t, "ambiguous", target)
	assert.True(t, ambiguous)
}
