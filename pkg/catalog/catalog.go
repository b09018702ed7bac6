// Package catalog declares the fixed set of actions the LLM may request
// against the connected n8n instance. The catalog is small and static by
// design: a closed set declared at process start, not an open plugin
// registry. Every mutating action requires human confirmation; zero actions
// bypass it.
package catalog

import (
	"fmt"

	"github.com/casali/flowpilot/pkg/models"
)

// Mutating action names, as exposed to the LLM.
const (
	ActionDuplicateWorkflow  = "duplicate_workflow"
	ActionCreateWorkflow     = "create_workflow"
	ActionActivateWorkflow   = "activate_workflow"
	ActionDeactivateWorkflow = "deactivate_workflow"
	ActionUpdateNode         = "update_node"
	ActionAddNode            = "add_node"
	ActionDeleteNode         = "delete_node"
	ActionDeleteWorkflow     = "delete_workflow"
)

// ActionDefinition describes one callable action: the machine schema handed
// to the LLM and the human-facing rendering used by the confirmation prompt.
type ActionDefinition struct {
	Name                 string
	Label                string
	Icon                 string
	Description          string
	Schema               *models.JSONSchema
	RequiresConfirmation bool

	// ConfirmMessage renders the confirmation line from the parsed argument
	// map. Templates must be pure: same args, same string.
	ConfirmMessage func(args map[string]any) string
}

func argString(args map[string]any, key string) string {
	value, _ := args[key].(string)

	return value
}

var actions = []ActionDefinition{
	{
		Name:        ActionDuplicateWorkflow,
		Label:       "Duplicate Workflow",
		Icon:        "📋",
		Description: "Duplicate an existing workflow with a new name. Creates a copy of the workflow without modifying the original.",
		Schema: &models.JSONSchema{
			Type: "object",
			Properties: map[string]*models.Property{
				"workflow_id": {Type: "string", Description: "The ID of the workflow to duplicate (from the current workflow context)"},
				"new_name":    {Type: "string", Description: "The name for the new duplicated workflow"},
			},
			Required: []string{"workflow_id", "new_name"},
		},
		RequiresConfirmation: true,
		ConfirmMessage: func(args map[string]any) string {
			return fmt.Sprintf("Create a copy of this workflow named %q", argString(args, "new_name"))
		},
	},
	{
		Name:        ActionCreateWorkflow,
		Label:       "Create Workflow",
		Icon:        "➕",
		Description: "Create a new empty workflow with the specified name. Use this when the user wants to start a completely new workflow.",
		Schema: &models.JSONSchema{
			Type: "object",
			Properties: map[string]*models.Property{
				"name": {Type: "string", Description: "The name for the new workflow"},
			},
			Required: []string{"name"},
		},
		RequiresConfirmation: true,
		ConfirmMessage: func(args map[string]any) string {
			return fmt.Sprintf("Create a new workflow named %q", argString(args, "name"))
		},
	},
	{
		Name:        ActionActivateWorkflow,
		Label:       "Activate Workflow",
		Icon:        "▶️",
		Description: "Activate a workflow so it runs automatically when triggered. Use this when the user wants to turn on a workflow.",
		Schema: &models.JSONSchema{
			Type: "object",
			Properties: map[string]*models.Property{
				"workflow_id": {Type: "string", Description: "The ID of the workflow to activate"},
			},
			Required: []string{"workflow_id"},
		},
		RequiresConfirmation: true,
		ConfirmMessage: func(map[string]any) string {
			return "Turn on this workflow so it runs automatically"
		},
	},
	{
		Name:        ActionDeactivateWorkflow,
		Label:       "Deactivate Workflow",
		Icon:        "⏸️",
		Description: "Deactivate a workflow so it stops running automatically. Use this when the user wants to turn off a workflow.",
		Schema: &models.JSONSchema{
			Type: "object",
			Properties: map[string]*models.Property{
				"workflow_id": {Type: "string", Description: "The ID of the workflow to deactivate"},
			},
			Required: []string{"workflow_id"},
		},
		RequiresConfirmation: true,
		ConfirmMessage: func(map[string]any) string {
			return "Turn off this workflow"
		},
	},
	{
		Name:        ActionUpdateNode,
		Label:       "Update Node",
		Icon:        "✏️",
		Description: "Update a node's parameters in a workflow. Use this to change node settings, fix expressions, or modify configurations. REQUIRES USER CONFIRMATION.",
		Schema: &models.JSONSchema{
			Type: "object",
			Properties: map[string]*models.Property{
				"workflow_id": {Type: "string", Description: "The ID of the workflow containing the node"},
				"node_name":   {Type: "string", Description: "The exact name of the node to update (as shown in the workflow)"},
				"parameters":  {Type: "object", Description: "The parameters to update on the node. Only include the fields that need to change."},
			},
			Required: []string{"workflow_id", "node_name", "parameters"},
		},
		RequiresConfirmation: true,
		ConfirmMessage: func(args map[string]any) string {
			return fmt.Sprintf("Update the %q node with new parameters", argString(args, "node_name"))
		},
	},
	{
		Name:        ActionAddNode,
		Label:       "Add Node",
		Icon:        "➕",
		Description: `Add a new node to a workflow. For sticky notes use type "n8n-nodes-base.stickyNote" with parameters including content, width, height, color.`,
		Schema: &models.JSONSchema{
			Type: "object",
			Properties: map[string]*models.Property{
				"workflow_id": {Type: "string", Description: "The ID of the workflow to add the node to"},
				"node_name":   {Type: "string", Description: "The name for the new node (must be unique)"},
				"node_type":   {Type: "string", Description: `The n8n node type. For sticky notes: "n8n-nodes-base.stickyNote"`},
				"parameters":  {Type: "object", Description: `Node parameters. For sticky notes: { content: "markdown text", width: 300, height: 200, color: 4 }. Colors: 1=blue, 2=yellow, 3=red, 4=green, 5=purple, 6=gray`},
				"position":    {Type: "array", Description: "Position as [x, y] coordinates. For overview stickies: [0, -200]. For node annotations: position near the related node.", Items: &models.Property{Type: "number"}},
				"connect_from": {Type: "string", Description: "Optional: The name of an existing node to connect from (not used for sticky notes)"},
			},
			Required: []string{"workflow_id", "node_name", "node_type"},
		},
		RequiresConfirmation: true,
		ConfirmMessage: func(args map[string]any) string {
			return fmt.Sprintf("Add a new %q node to the workflow", argString(args, "node_name"))
		},
	},
	{
		Name:        ActionDeleteNode,
		Label:       "Delete Node",
		Icon:        "🗑️",
		Description: "Delete a node from a workflow. REQUIRES USER CONFIRMATION. This removes the node and all its connections.",
		Schema: &models.JSONSchema{
			Type: "object",
			Properties: map[string]*models.Property{
				"workflow_id": {Type: "string", Description: "The ID of the workflow containing the node"},
				"node_name":   {Type: "string", Description: "The exact name of the node to delete"},
			},
			Required: []string{"workflow_id", "node_name"},
		},
		RequiresConfirmation: true,
		ConfirmMessage: func(args map[string]any) string {
			return fmt.Sprintf("Delete the %q node from the workflow", argString(args, "node_name"))
		},
	},
	{
		Name:        ActionDeleteWorkflow,
		Label:       "Delete Workflow",
		Icon:        "🗑️",
		Description: "Delete a workflow entirely. REQUIRES USER CONFIRMATION. This cannot be undone.",
		Schema: &models.JSONSchema{
			Type: "object",
			Properties: map[string]*models.Property{
				"workflow_id": {Type: "string", Description: "The ID of the workflow to delete"},
			},
			Required: []string{"workflow_id"},
		},
		RequiresConfirmation: true,
		ConfirmMessage: func(map[string]any) string {
			return "Permanently delete this workflow (cannot be undone)"
		},
	},
}

var actionsByName = func() map[string]ActionDefinition {
	index := make(map[string]ActionDefinition, len(actions))
	for _, action := range actions {
		index[action.Name] = action
	}

	return index
}()

// Definitions returns the mutating actions in stable declaration order. The
// slice is used verbatim as the LLM's tool list, so the order never changes
// between calls.
func Definitions() []ActionDefinition {
	return actions
}

// Lookup finds an action by name.
func Lookup(name string) (ActionDefinition, bool) {
	action, ok := actionsByName[name]

	return action, ok
}

// Describe renders the icon and confirmation text for a tool name and its
// parsed arguments. Unknown names get a generic rendering because the LLM
// can hallucinate a tool that was never declared.
func Describe(name string, args map[string]any) (icon, text string) {
	action, ok := actionsByName[name]
	if !ok {
		if tool, auxOK := LookupAux(name); auxOK {
			return tool.Icon, tool.ConfirmMessage(args)
		}

		return "🔧", "Execute " + name
	}

	return action.Icon, action.ConfirmMessage(args)
}

// GatewayTools serializes the mutating catalog into the declarations the
// LLM gateway expects.
func GatewayTools() []models.ToolDeclaration {
	declarations := make([]models.ToolDeclaration, 0, len(actions))
	for _, action := range actions {
		declarations = append(declarations, models.ToolDeclaration{
			Type: "function",
			Function: models.FunctionDeclare{
				Name:        action.Name,
				Description: action.Description,
				Parameters:  action.Schema,
			},
		})
	}

	return declarations
}
