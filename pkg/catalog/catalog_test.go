package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryActionRequiresConfirmation(t *testing.T) {
	for _, action := range Definitions() {
		assert.True(t, action.RequiresConfirmation, "action %s must require confirmation", action.Name)
	}
}

func TestDefinitionsStableOrder(t *testing.T) {
	first := Definitions()
	second := Definitions()

	require.Equal(t, len(first), len(second))

	for i := range first {
		assert.Equal(t, first[i].Name, second[i].Name)
	}

	assert.Equal(t, ActionDuplicateWorkflow, first[0].Name)
	assert.Equal(t, ActionDeleteWorkflow, first[len(first)-1].Name)
}

func TestConfirmMessageTemplatesArePure(t *testing.T) {
	args := map[string]any{
		"workflow_id": "wf1",
		"new_name":    "Copy",
		"name":        "Fresh",
		"node_name":   "HTTP Request",
	}

	for _, action := range Definitions() {
		first := action.ConfirmMessage(args)
		second := action.ConfirmMessage(args)
		assert.Equal(t, first, second, "template for %s is not pure", action.Name)
		assert.NotEmpty(t, first)
	}
}

func TestLookup(t *testing.T) {
	action, ok := Lookup(ActionAddNode)
	require.True(t, ok)
	assert.Equal(t, "➕", action.Icon)

	_, ok = Lookup("summon_workflow")
	assert.False(t, ok)
}

func TestDescribeUnknownTool(t *testing.T) {
	icon, text := Describe("summon_workflow", nil)

	assert.Equal(t, "🔧", icon)
	assert.Equal(t, "Execute summon_workflow", text)
}

func TestGatewayToolsShape(t *testing.T) {
	tools := GatewayTools()
	require.Len(t, tools, len(Definitions()))

	encoded, err := json.Marshal(tools[0])
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(encoded, &raw))

	assert.Equal(t, "function", raw["type"])

	function, ok := raw["function"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, ActionDuplicateWorkflow, function["name"])

	parameters, ok := function["parameters"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", parameters["type"])
	assert.Contains(t, parameters, "required")
}

func TestAuxToolsNeverConfirmationGated(t *testing.T) {
	for _, tool := range AuxDefinitions() {
		assert.False(t, tool.RequiresConfirmation, "aux tool %s must not be gated", tool.Name)
	}

	assert.True(t, IsAuxTool(AuxWebSearch))
	assert.True(t, IsAuxTool(AuxFetchURL))
	assert.False(t, IsAuxTool(ActionDeleteWorkflow))
}
