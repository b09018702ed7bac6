package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/casali/flowpilot/pkg/config"
	"github.com/casali/flowpilot/pkg/executor"
	"github.com/casali/flowpilot/pkg/llm"
	"github.com/casali/flowpilot/pkg/log"
	"github.com/casali/flowpilot/pkg/mocks"
	"github.com/casali/flowpilot/pkg/models"
	"github.com/casali/flowpilot/pkg/n8n"
)

func builderSettings() config.Settings {
	settings := config.Default()
	settings.N8NConnected = true
	settings.AssistantMode = models.AssistantModeBuilder

	return settings
}

func TestSend_BuilderActionRequestAttachesTools(t *testing.T) {
	gateway := new(mocks.MockGateway)

	var captured llm.Request

	gateway.On("Complete", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(llm.Request)
		}).
		Return(&llm.Reply{Kind: llm.ReplyText, Content: "Done."}, nil)

	orch := NewOrchestrator(gateway, builderSettings(), log.Discard(), nil)

	_, err := orch.Send(context.Background(), SendRequest{
		UserMessage: "Add a sticky note saying TODO to workflow wf1",
	})
	require.NoError(t, err)

	require.NotEmpty(t, captured.Tools)
	assert.Equal(t, "auto", captured.ToolChoice)
	assert.Equal(t, 4096, captured.MaxTokens)
	assert.InDelta(t, 0.4, captured.Temperature, 0.001)
}

func TestSend_QuestionNeverAttachesTools(t *testing.T) {
	gateway := new(mocks.MockGateway)

	var captured llm.Request

	gateway.On("Complete", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(llm.Request)
		}).
		Return(&llm.Reply{Kind: llm.ReplyText, Content: "Check the webhook path."}, nil)

	orch := NewOrchestrator(gateway, builderSettings(), log.Discard(), nil)

	reply, err := orch.Send(context.Background(), SendRequest{
		UserMessage: "Why is my webhook failing?",
	})
	require.NoError(t, err)

	assert.Empty(t, captured.Tools, "questions must not get the tool list")
	assert.Empty(t, captured.ToolChoice)
	assert.Equal(t, "Check the webhook path.", reply.Content)
}

func TestSend_HelperModeNeverAttachesTools(t *testing.T) {
	gateway := new(mocks.MockGateway)
	gateway.On("Complete", mock.Anything, mock.MatchedBy(func(r llm.Request) bool {
		return len(r.Tools) == 0
	})).Return(&llm.Reply{Kind: llm.ReplyText, Content: "You could add a Set node."}, nil)

	settings := builderSettings()
	settings.AssistantMode = models.AssistantModeHelper

	orch := NewOrchestrator(gateway, settings, log.Discard(), nil)

	_, err := orch.Send(context.Background(), SendRequest{UserMessage: "Add a Set node"})
	require.NoError(t, err)
	gateway.AssertExpectations(t)
}

func TestSend_DisconnectedNeverAttachesTools(t *testing.T) {
	gateway := new(mocks.MockGateway)
	gateway.On("Complete", mock.Anything, mock.MatchedBy(func(r llm.Request) bool {
		return len(r.Tools) == 0
	})).Return(&llm.Reply{Kind: llm.ReplyText, Content: "Connect n8n first."}, nil)

	settings := builderSettings()
	settings.N8NConnected = false

	orch := NewOrchestrator(gateway, settings, log.Discard(), nil)

	_, err := orch.Send(context.Background(), SendRequest{UserMessage: "Delete the Set node"})
	require.NoError(t, err)
	gateway.AssertExpectations(t)
}

func TestSend_HistoryWindowKeepsLastTwenty(t *testing.T) {
	gateway := new(mocks.MockGateway)

	var captured llm.Request

	gateway.On("Complete", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(llm.Request)
		}).
		Return(&llm.Reply{Kind: llm.ReplyText, Content: "ok"}, nil)

	history := make([]llm.Message, 0, 30)
	for range 15 {
		history = append(history,
			llm.TextMessage(llm.RoleUser, "older"),
			llm.TextMessage(llm.RoleAssistant, "reply"))
	}

	orch := NewOrchestrator(gateway, builderSettings(), log.Discard(), nil)

	_, err := orch.Send(context.Background(), SendRequest{
		History:     history,
		UserMessage: "Why does it loop?",
	})
	require.NoError(t, err)

	// system + 20 history + current user message
	assert.Len(t, captured.Messages, 22)
	assert.Equal(t, llm.RoleSystem, captured.Messages[0].Role)
}

func TestSend_StreamingUsedOnlyWithoutTools(t *testing.T) {
	gateway := new(mocks.MockGateway)
	gateway.On("Stream", mock.Anything, mock.Anything, mock.Anything).
		Return("**bold** answer", nil)

	orch := NewOrchestrator(gateway, builderSettings(), log.Discard(), nil)

	reply, err := orch.Send(context.Background(), SendRequest{
		UserMessage: "What does the cron node do?",
		OnToken:     func(string) {},
	})
	require.NoError(t, err)

	assert.Equal(t, llm.ReplyText, reply.Kind)
	assert.Equal(t, "bold answer", reply.Content, "streamed text is normalized to plain text")
	gateway.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestSend_ToolsSuppressStreaming(t *testing.T) {
	gateway := new(mocks.MockGateway)
	gateway.On("Complete", mock.Anything, mock.Anything).
		Return(&llm.Reply{Kind: llm.ReplyToolCalls, ToolCalls: []models.ToolCall{{ID: "call_1"}}}, nil)

	orch := NewOrchestrator(gateway, builderSettings(), log.Discard(), nil)

	reply, err := orch.Send(context.Background(), SendRequest{
		UserMessage: "Create a workflow called Invoices",
		OnToken:     func(string) {},
	})
	require.NoError(t, err)

	assert.Equal(t, llm.ReplyToolCalls, reply.Kind)
	gateway.AssertNotCalled(t, "Stream", mock.Anything, mock.Anything, mock.Anything)
}

func TestSend_ScreenshotBecomesMultimodalMessage(t *testing.T) {
	gateway := new(mocks.MockGateway)

	var captured llm.Request

	gateway.On("Complete", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(llm.Request)
		}).
		Return(&llm.Reply{Kind: llm.ReplyText, Content: "I can see the canvas."}, nil)

	orch := NewOrchestrator(gateway, builderSettings(), log.Discard(), nil)

	_, err := orch.Send(context.Background(), SendRequest{
		UserMessage: "Why is this node red?",
		Context:     &TurnContext{Screenshot: "data:image/png;base64,AAAA"},
	})
	require.NoError(t, err)

	last := captured.Messages[len(captured.Messages)-1]
	parts, ok := last.Content.([]llm.ContentPart)
	require.True(t, ok, "screenshot turns the user message multimodal")
	assert.Len(t, parts, 2)
}

// Full mediation pipeline: action request with tools attached, a tool-call
// reply, preview rendering, confirmation, and the executor writing the new
// node at the default position.
func TestStickyNotePipeline(t *testing.T) {
	gateway := new(mocks.MockGateway)
	gateway.On("Complete", mock.Anything, mock.MatchedBy(func(r llm.Request) bool {
		return len(r.Tools) > 0
	})).Return(&llm.Reply{
		Kind: llm.ReplyToolCalls,
		ToolCalls: []models.ToolCall{{
			ID:   "call_1",
			Type: "function",
			Function: models.ToolFunction{
				Name:      "add_node",
				Arguments: `{"workflow_id":"wf1","node_name":"Note1","node_type":"n8n-nodes-base.stickyNote","parameters":{"content":"TODO"}}`,
			},
		}},
	}, nil)

	orch := NewOrchestrator(gateway, builderSettings(), log.Discard(), nil)

	reply, err := orch.Send(context.Background(), SendRequest{
		UserMessage: "Add a sticky note saying TODO to workflow wf1",
	})
	require.NoError(t, err)
	require.Equal(t, llm.ReplyToolCalls, reply.Kind)

	preview := executor.NewParser(log.Discard()).Parse(reply.ToolCalls[0])
	assert.Equal(t, "➕", preview.Icon)
	assert.Equal(t, `Add a new "Note1" node to the workflow`, preview.ConfirmMessage)

	api := new(mocks.MockWorkflowAPI)
	api.On("GetWorkflow", mock.Anything, "wf1").Return(&models.Workflow{
		ID:          "wf1",
		Name:        "My Flow",
		Nodes:       []*models.WorkflowNode{},
		Connections: map[string]models.NodeConnections{},
	}, nil)

	var saved *n8n.UpdatePayload

	api.On("UpdateWorkflow", mock.Anything, "wf1", mock.Anything).
		Run(func(args mock.Arguments) {
			saved = args.Get(2).(*n8n.UpdatePayload)
		}).
		Return(&models.Workflow{ID: "wf1"}, nil)

	exec := executor.NewExecutor(api, log.Discard(), nil)

	results := exec.ExecuteBatch(context.Background(), reply.ToolCalls,
		func(context.Context, models.ActionPreview) (bool, error) { return true, nil })

	require.Len(t, results, 1)
	require.True(t, results[0].Success, results[0].Error)
	require.Len(t, saved.Nodes, 1)
	assert.Equal(t, [2]float64{250, 250}, saved.Nodes[0].Position)
	assert.Equal(t, "TODO", saved.Nodes[0].Parameters["content"])
}
