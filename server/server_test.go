package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/missionai/agrimesh"
	"github.com/missionai/agrimesh/core"
	"github.com/missionai/agrimesh/orchestrator"
)

func newTestServer() *httptest.Server {
	mesh := agrimesh.New()
	return httptest.NewServer(New(mesh).Router())
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestChat_RoutesMessage(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/v1/chat", map[string]string{
		"user_id": "farmer-1",
		"message": "Calculate the profit for growing rice",
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[orchestrator.Response](t, resp)
	assert.Equal(t, core.HandlerFinanceCalc, body.HandlerName)
	assert.NotEmpty(t, body.Message)
}

func TestChat_RejectsMissingFields(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/v1/chat", map[string]string{"user_id": "farmer-1"})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestVoice_NoProviderDegradesGracefully(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/v1/voice?user_id=farmer-1", "audio/wav",
		bytes.NewReader([]byte("fake-audio")))
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[orchestrator.Response](t, resp)
	assert.True(t, body.FallbackMode)
	assert.Contains(t, body.Message, "Voice input unavailable")
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	// Chat creates a session and records a turn.
	postJSON(t, ts.URL+"/v1/chat", map[string]string{
		"user_id": "farmer-1",
		"message": "what is the mandi rate for onion?",
	}).Body.Close()

	resp, err := http.Get(ts.URL + "/v1/sessions/farmer-1/")
	require.NoError(t, err)
	sess := decode[core.Session](t, resp)
	assert.Equal(t, "farmer-1", sess.UserID)

	resp = postJSON(t, ts.URL+"/v1/sessions/farmer-1/persist", nil)
	persisted := decode[map[string]any](t, resp)
	assert.Equal(t, true, persisted["persisted"])

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/v1/sessions/farmer-1/", nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	deleted := decode[map[string]any](t, delResp)
	assert.Equal(t, true, deleted["deleted"])
}

func TestOnboardingEndpoints(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/v1/sessions/farmer-1/onboarding/start", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	roadmap := decode[orchestrator.Roadmap](t, resp)
	assert.Equal(t, 1, roadmap.CurrentStep)
	assert.NotEmpty(t, roadmap.Steps)

	resp = postJSON(t, ts.URL+"/v1/sessions/farmer-1/onboarding/progress", map[string]int{"step": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	update := decode[orchestrator.ProgressUpdate](t, resp)
	assert.True(t, update.Success)
	assert.Equal(t, 2, update.CurrentStep)

	statusResp, err := http.Get(ts.URL + "/v1/sessions/farmer-1/onboarding/status")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, statusResp.StatusCode)
	status := decode[orchestrator.OnboardingStatus](t, statusResp)
	assert.Equal(t, 2, status.CurrentStep)
	assert.False(t, status.OnboardingComplete)

	resp = postJSON(t, ts.URL+"/v1/sessions/farmer-1/onboarding/progress", map[string]int{"step": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestRecommendationsEndpoint(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/sessions/farmer-1/recommendations")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rec := decode[orchestrator.Recommendations](t, resp)
	assert.False(t, rec.Personalized)
	assert.NotEmpty(t, rec.Suggestions)
}

func TestBreakerEndpoints(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/breakers/")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode[map[string]any](t, resp)

	reset := postJSON(t, ts.URL+"/v1/breakers/no-such-service/reset", nil)
	assert.Equal(t, http.StatusNotFound, reset.StatusCode)
	reset.Body.Close()
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
