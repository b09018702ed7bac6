package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/casali/flowpilot/pkg/log"
	"github.com/casali/flowpilot/pkg/models"
)

func toolCall(name, arguments string) models.ToolCall {
	return models.ToolCall{
		ID:   "call_1",
		Type: "function",
		Function: models.ToolFunction{
			Name:      name,
			Arguments: arguments,
		},
	}
}

func TestParse_ValidArguments(t *testing.T) {
	parser := NewParser(log.Discard())

	preview := parser.Parse(toolCall("add_node", `{"workflow_id":"wf1","node_name":"Note1","node_type":"n8n-nodes-base.stickyNote"}`))

	assert.Equal(t, "add_node", preview.ToolName)
	assert.Equal(t, "➕", preview.Icon)
	assert.Equal(t, "Add Node", preview.Description)
	assert.True(t, preview.RequiresConfirmation)
	assert.Equal(t, `Add a new "Note1" node to the workflow`, preview.ConfirmMessage)
	assert.Equal(t, "wf1", preview.Args["workflow_id"])
}

func TestParse_MalformedArgumentsNeverFails(t *testing.T) {
	parser := NewParser(log.Discard())

	preview := parser.Parse(toolCall("delete_node", `{"workflow_id": oops`))

	assert.Equal(t, "delete_node", preview.ToolName)
	assert.Empty(t, preview.Args)
	assert.True(t, preview.RequiresConfirmation)
	assert.Equal(t, `Delete the "" node from the workflow`, preview.ConfirmMessage)
}

func TestParse_UnknownToolGetsGenericPreview(t *testing.T) {
	parser := NewParser(log.Discard())

	preview := parser.Parse(toolCall("launch_rocket", `{"target":"moon"}`))

	assert.Equal(t, "🔧", preview.Icon)
	assert.Equal(t, "Execute launch_rocket", preview.ConfirmMessage)
	assert.Equal(t, "Unknown action", preview.Description)
	assert.True(t, preview.RequiresConfirmation, "hallucinated tools stay confirmation-gated")
}

func TestParse_AuxToolSkipsConfirmation(t *testing.T) {
	parser := NewParser(log.Discard())

	preview := parser.Parse(toolCall("web_search", `{"query":"n8n webhook node"}`))

	assert.Equal(t, "🔎", preview.Icon)
	assert.Equal(t, "Web Search", preview.Description)
	assert.Equal(t, "Search the web for n8n webhook node", preview.ConfirmMessage)
	assert.False(t, preview.RequiresConfirmation)
}

func TestParse_EmptyArguments(t *testing.T) {
	parser := NewParser(log.Discard())

	preview := parser.Parse(toolCall("deactivate_workflow", ""))

	assert.NotNil(t, preview.Args)
	assert.Empty(t, preview.Args)
	assert.Equal(t, "Turn off this workflow", preview.ConfirmMessage)
}
