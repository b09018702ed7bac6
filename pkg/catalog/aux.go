package catalog

import "github.com/casali/flowpilot/pkg/models"

// Read-only auxiliary tool names. These never touch the n8n instance and are
// never confirmation-gated; they are offered independently of the mutating
// catalog and of the assistant mode.
const (
	AuxWebSearch = "web_search"
	AuxFetchURL  = "fetch_url"
)

var auxTools = []ActionDefinition{
	{
		Name:        AuxWebSearch,
		Label:       "Web Search",
		Icon:        "🔎",
		Description: "Search the web for current documentation, typically n8n node references or third-party API docs.",
		Schema: &models.JSONSchema{
			Type: "object",
			Properties: map[string]*models.Property{
				"query": {Type: "string", Description: "The search query"},
			},
			Required: []string{"query"},
		},
		ConfirmMessage: func(args map[string]any) string {
			return "Search the web for " + argString(args, "query")
		},
	},
	{
		Name:        AuxFetchURL,
		Label:       "Fetch URL",
		Icon:        "🌐",
		Description: "Fetch the text content of a public documentation page the user linked to.",
		Schema: &models.JSONSchema{
			Type: "object",
			Properties: map[string]*models.Property{
				"url": {Type: "string", Description: "The HTTP or HTTPS URL to fetch"},
			},
			Required: []string{"url"},
		},
		ConfirmMessage: func(args map[string]any) string {
			return "Fetch " + argString(args, "url")
		},
	},
}

// AuxDefinitions returns the read-only auxiliary tools in stable order.
func AuxDefinitions() []ActionDefinition {
	return auxTools
}

// AuxGatewayTools serializes the auxiliary catalog for the LLM gateway.
func AuxGatewayTools() []models.ToolDeclaration {
	declarations := make([]models.ToolDeclaration, 0, len(auxTools))
	for _, tool := range auxTools {
		declarations = append(declarations, models.ToolDeclaration{
			Type: "function",
			Function: models.FunctionDeclare{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Schema,
			},
		})
	}

	return declarations
}

// LookupAux finds a read-only auxiliary tool by name.
func LookupAux(name string) (ActionDefinition, bool) {
	for _, tool := range auxTools {
		if tool.Name == name {
			return tool, true
		}
	}

	return ActionDefinition{}, false
}

// IsAuxTool reports whether a tool name belongs to the read-only catalog.
func IsAuxTool(name string) bool {
	for _, tool := range auxTools {
		if tool.Name == name {
			return true
		}
	}

	return false
}
