package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casali/flowpilot/pkg/log"
	"github.com/casali/flowpilot/pkg/models"
)

func newTestClient(baseURL string) *Client {
	return NewClient(Config{BaseURL: baseURL, APIKey: "test-key"}, log.Discard())
}

func TestComplete_TextReply(t *testing.T) {
	var captured Request

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "Hello there"}},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	reply, err := client.Complete(context.Background(), Request{
		Model:    "test-model",
		Messages: []Message{TextMessage(RoleUser, "hi")},
		Stream:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, ReplyText, reply.Kind)
	assert.Equal(t, "Hello there", reply.Content)
	assert.False(t, captured.Stream, "Complete must force streaming off")
}

func TestComplete_ToolCallsWinOverText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{
					"content": "I'll add that node",
					"tool_calls": []map[string]any{
						{
							"id":   "call_1",
							"type": "function",
							"function": map[string]any{
								"name":      "add_node",
								"arguments": `{"workflowId":"1","nodeType":"n8n-nodes-base.set"}`,
							},
						},
					},
				}},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	reply, err := client.Complete(context.Background(), Request{Model: "test-model"})
	require.NoError(t, err)

	assert.Equal(t, ReplyToolCalls, reply.Kind)
	require.Len(t, reply.ToolCalls, 1)
	assert.Equal(t, "add_node", reply.ToolCalls[0].Function.Name)
	assert.Empty(t, reply.Content)
}

func TestComplete_EmptyReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": ""}},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Complete(context.Background(), Request{Model: "test-model"})
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestComplete_MissingAPIKey(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://localhost:1"}, log.Discard())

	_, err := client.Complete(context.Background(), Request{Model: "test-model"})
	assert.True(t, IsNotConfigured(err))
}

func TestComplete_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(server.URL)

	_, err := client.Complete(context.Background(), Request{Model: "test-model"})
	assert.True(t, IsUnreachable(err))
}

func TestComplete_GatewayErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Complete(context.Background(), Request{Model: "test-model"})
	require.Error(t, err)

	var gatewayErr *GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Equal(t, http.StatusUnauthorized, gatewayErr.StatusCode)
	assert.Contains(t, gatewayErr.Message, "invalid api key")
}

func TestStream_AccumulatesDeltas(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var captured Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		assert.True(t, captured.Stream, "Stream must force streaming on")

		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(
			"data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n" +
				"data: {not valid json}\n\n" +
				": keep-alive comment\n\n" +
				"data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\n" +
				"data: [DONE]\n\n" +
				"data: {\"choices\":[{\"delta\":{\"content\":\"ignored\"}}]}\n\n"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	var tokens []string

	text, err := client.Stream(context.Background(), Request{Model: "test-model"}, func(token string) {
		tokens = append(tokens, token)
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello", text)
	assert.Equal(t, []string{"Hel", "lo"}, tokens)
}

func TestStream_EmptyFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Stream(context.Background(), Request{Model: "test-model"}, nil)
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestSuggestWorkflowFix_ExtractsModifiedWorkflow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content := "PROBLEM:\nThe webhook node has no response.\n\nFIX:\n1. Add a Respond to Webhook node.\n\n" +
			"MODIFIED WORKFLOW:\n{\"name\":\"Fixed\",\"nodes\":[]}"
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	suggestion, err := client.SuggestWorkflowFix(context.Background(), "test-model",
		map[string]any{"name": "Broken", "nodes": []any{}}, "webhook never responds")
	require.NoError(t, err)

	assert.Contains(t, suggestion.Suggestion, "PROBLEM:")
	require.NotNil(t, suggestion.ModifiedWorkflow)
	assert.Equal(t, "Fixed", suggestion.ModifiedWorkflow["name"])
}

func TestGenerateTitle_FallbackOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	title := client.GenerateTitle(context.Background(), []Message{TextMessage(RoleUser, "help me")})
	assert.Equal(t, "New Conversation", title)
}

func TestGenerateTitle_TrimsQuotes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "\"Slack Alert Workflow\""}},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	title := client.GenerateTitle(context.Background(), []Message{TextMessage(RoleUser, "set up slack alerts")})
	assert.Equal(t, "Slack Alert Workflow", title)
}

func TestVisionMessage_Shape(t *testing.T) {
	message := VisionMessage("what is on screen", "data:image/png;base64,AAAA")

	parts, ok := message.Content.([]ContentPart)
	require.True(t, ok)
	require.Len(t, parts, 2)

	assert.Equal(t, "text", parts[0].Type)
	assert.Equal(t, "image_url", parts[1].Type)
	assert.Equal(t, "data:image/png;base64,AAAA", parts[1].ImageURL.URL)
}

func TestRequest_ToolsSerialization(t *testing.T) {
	body, err := json.Marshal(Request{
		Model: "test-model",
		Tools: []models.ToolDeclaration{
			{Type: "function", Function: models.FunctionDeclare{Name: "add_node"}},
		},
		ToolChoice: "auto",
	})
	require.NoError(t, err)

	assert.Contains(t, string(body), `"tool_choice":"auto"`)
	assert.Contains(t, string(body), `"name":"add_node"`)
}
