package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/inquest"
	"github.com/aretw0/inquest/pkg/adapters/mockmodel"
	"github.com/aretw0/inquest/pkg/domain"
)

const taskJSON = `{
	"name": "greeting",
	"plan": [
		{"use": "system_message", "params": {"message": "Be nice."}},
		{"use": "generate"}
	],
	"samples": [{"id": "a", "input": "hello"}]
}`

func newTestServer(t *testing.T) (*httptest.Server, *inquest.Engine) {
	t.Helper()
	eng, err := inquest.New(mockmodel.Constant("hi there"))
	require.NoError(t, err)
	server := httptest.NewServer(NewHandler(eng))
	t.Cleanup(server.Close)
	return server, eng
}

func TestHealthz(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestInfo(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/info")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "inquest-http", body["app"])
	assert.Equal(t, "mockmodel", body["model"])
}

func TestMetricsEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSubmitTask_Wait(t *testing.T) {
	server, eng := newTestServer(t)

	resp, err := http.Post(server.URL+"/runs?wait=true", "application/json", strings.NewReader(taskJSON))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report inquest.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, "greeting", report.Task)
	require.Len(t, report.Runs, 1)
	assert.Equal(t, domain.RunStatusSuccess, report.Runs[0].Status)

	// The run is retrievable afterwards.
	runResp, err := http.Get(server.URL + "/runs/" + report.Runs[0].ID)
	require.NoError(t, err)
	defer runResp.Body.Close()
	assert.Equal(t, http.StatusOK, runResp.StatusCode)

	ids, err := eng.Store().List(t.Context())
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestSubmitTask_Async(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Post(server.URL+"/runs", "application/json", strings.NewReader(taskJSON))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "greeting", body["task"])
	assert.Equal(t, "accepted", body["status"])
	assert.Equal(t, float64(1), body["epochs"])
}

func TestSubmitTask_RejectsBadBody(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Post(server.URL+"/runs", "application/json", strings.NewReader("not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmitTask_RejectsUnknownSolver(t *testing.T) {
	server, _ := newTestServer(t)

	body := `{"name": "t", "plan": [{"use": "nope"}], "samples": [{"input": "hi"}]}`
	resp, err := http.Post(server.URL+"/runs", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetRun_NotFound(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/runs/ghost")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListAndDeleteRuns(t *testing.T) {
	server, eng := newTestServer(t)

	record := &domain.RunRecord{ID: "run-1", Status: domain.RunStatusSuccess}
	require.NoError(t, eng.Store().Save(t.Context(), record))

	resp, err := http.Get(server.URL + "/runs")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Runs []string `json:"runs"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"run-1"}, body.Runs)

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/runs/run-1", nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer delResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)

	_, err = eng.Store().Load(t.Context(), "run-1")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}
