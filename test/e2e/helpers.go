package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamforge/calliope/pkg/models"
	"github.com/streamforge/calliope/pkg/processor"
)

// ────────────────────────────────────────────────────────────
// Processor Helpers
// ────────────────────────────────────────────────────────────

// Tick runs one processor iteration and fails the test on error.
func (app *TestApp) Tick(t *testing.T) *processor.Outcome {
	t.Helper()
	outcome, err := app.Processor.ProcessOnce(context.Background())
	require.NoError(t, err)
	return outcome
}

// TickExpectingError runs one processor iteration that must fail.
func (app *TestApp) TickExpectingError(t *testing.T) error {
	t.Helper()
	_, err := app.Processor.ProcessOnce(context.Background())
	require.Error(t, err)
	return err
}

// InterruptStatus reads the stored status of an interrupt.
func (app *TestApp) InterruptStatus(t *testing.T, id string) models.InterruptStatus {
	t.Helper()
	record, err := app.Interrupts.Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, record, "interrupt %s not found", id)
	return record.Status
}

// ────────────────────────────────────────────────────────────
// HTTP Client Helpers
// ────────────────────────────────────────────────────────────

// SubmitInterrupt posts an interrupt and returns its assigned ID.
func (app *TestApp) SubmitInterrupt(t *testing.T, kind, persona, message string) string {
	t.Helper()
	body := map[string]interface{}{"kind": kind}
	if persona != "" {
		body["persona"] = persona
	}
	if message != "" {
		body["message"] = message
	}
	resp := app.postJSON(t, "/api/v1/interrupt", body, http.StatusAccepted)
	id, _ := resp["interrupt_id"].(string)
	require.NotEmpty(t, id)
	return id
}

// DrainChunks fetches and consumes every pending audio chunk.
func (app *TestApp) DrainChunks(t *testing.T) []models.AudioChunk {
	t.Helper()
	var body struct {
		Chunks []models.AudioChunk `json:"chunks"`
	}
	app.getInto(t, "/api/v1/audio", http.StatusOK, &body)
	return body.Chunks
}

// ChunkCount reads the pending chunk count without consuming anything.
func (app *TestApp) ChunkCount(t *testing.T) int {
	t.Helper()
	var body struct {
		Count int `json:"count"`
	}
	app.getInto(t, "/api/v1/count", http.StatusOK, &body)
	return body.Count
}

func (app *TestApp) postJSON(t *testing.T, path string, body interface{}, expectedStatus int) map[string]interface{} {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, app.BaseURL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, expectedStatus, resp.StatusCode, "POST %s: unexpected status", path)
	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result
}

func (app *TestApp) getJSON(t *testing.T, path string, expectedStatus int) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	app.getInto(t, path, expectedStatus, &result)
	return result
}

func (app *TestApp) getJSONArray(t *testing.T, path string, expectedStatus int) []interface{} {
	t.Helper()
	var result []interface{}
	app.getInto(t, path, expectedStatus, &result)
	return result
}

func (app *TestApp) getInto(t *testing.T, path string, expectedStatus int, out interface{}) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, app.BaseURL+path, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, expectedStatus, resp.StatusCode, "GET %s: unexpected status", path)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}
