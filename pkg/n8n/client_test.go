package n8n

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casali/flowpilot/pkg/log"
	"github.com/casali/flowpilot/pkg/models"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(Config{BaseURL: server.URL, APIKey: "test-key"}, log.Discard())

	return client, server
}

func TestGetWorkflow(t *testing.T) {
	var gotKey, gotPath string

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-N8N-API-KEY")
		gotPath = r.URL.Path

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.Workflow{ID: "wf1", Name: "Orders"})
	}))

	workflow, err := client.GetWorkflow(t.Context(), "wf1")
	require.NoError(t, err)

	assert.Equal(t, "wf1", workflow.ID)
	assert.Equal(t, "Orders", workflow.Name)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "/api/v1/workflows/wf1", gotPath)
}

func TestListWorkflowsUnwrapsEnvelope(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"a","name":"A"},{"id":"b","name":"B"}]}`))
	}))

	workflows, err := client.ListWorkflows(t.Context())
	require.NoError(t, err)
	require.Len(t, workflows, 2)
	assert.Equal(t, "b", workflows[1].ID)
}

func TestDeleteWorkflowNoContent(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))

	assert.NoError(t, client.DeleteWorkflow(t.Context(), "wf1"))
}

func TestActivateUsesLifecycleEndpoint(t *testing.T) {
	var gotMethod, gotPath string

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"wf1","active":true}`))
	}))

	workflow, err := client.ActivateWorkflow(t.Context(), "wf1")
	require.NoError(t, err)

	assert.True(t, workflow.Active)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/v1/workflows/wf1/activate", gotPath)
}

func TestRequestNotConfigured(t *testing.T) {
	client := NewClient(Config{}, log.Discard())

	_, err := client.GetWorkflow(t.Context(), "wf1")
	assert.True(t, IsNotConfigured(err))
	assert.Contains(t, err.Error(), "instance URL")

	client = NewClient(Config{BaseURL: "https://n8n.example.com"}, log.Discard())

	_, err = client.GetWorkflow(t.Context(), "wf1")
	assert.True(t, IsNotConfigured(err))
	assert.Contains(t, err.Error(), "API key")
}

func TestRequestUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "k"}, log.Discard())

	_, err := client.GetWorkflow(t.Context(), "wf1")
	assert.True(t, IsUnreachable(err))
}

func TestRequestHTMLErrorPage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("<!DOCTYPE html><html><body>Not here</body></html>"))
	}))

	_, err := client.GetWorkflow(t.Context(), "wf1")
	assert.True(t, IsNonJSONResponse(err))
	assert.Contains(t, err.Error(), "instance URL")
}

func TestRequestJSONErrorMessage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"workflow not found"}`))
	}))

	_, err := client.GetWorkflow(t.Context(), "missing")
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "workflow not found")
}

func TestUpdateWorkflowSendsSanitizedBody(t *testing.T) {
	var gotBody map[string]any

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"wf1","name":"Orders"}`))
	}))

	workflow := &models.Workflow{
		ID:     "wf1",
		Name:   "Orders",
		Active: true,
		Nodes:  []*models.WorkflowNode{{ID: "n1", Name: "A", Type: "t", Parameters: map[string]any{}}},
	}

	_, err := client.UpdateWorkflow(t.Context(), "wf1", SanitizeForUpdate(workflow))
	require.NoError(t, err)

	assert.NotContains(t, gotBody, "id")
	assert.NotContains(t, gotBody, "active")
	assert.Equal(t, "Orders", gotBody["name"])
}
