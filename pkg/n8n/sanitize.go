package n8n

import (
	"github.com/casali/flowpilot/pkg/models"
)

// UpdatePayload is the exact shape PUT /workflows/{id} and POST /workflows
// accept. It deliberately has no ID field (the id travels in the URL path)
// and no Active field (activation goes through the lifecycle endpoints).
// Sending either makes n8n reject or silently ignore the write.
type UpdatePayload struct {
	Name        string                            `json:"name"`
	Nodes       []*SanitizedNode                  `json:"nodes"`
	Connections map[string]models.NodeConnections `json:"connections"`
	Settings    map[string]any                    `json:"settings,omitempty"`
	StaticData  map[string]any                    `json:"staticData,omitempty"`
}

// SanitizedNode carries the whitelisted node fields n8n accepts on writes.
type SanitizedNode struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Position    [2]float64     `json:"position"`
	Parameters  map[string]any `json:"parameters"`
	TypeVersion float64        `json:"typeVersion,omitempty"`
	Credentials map[string]any `json:"credentials,omitempty"`
	Disabled    *bool          `json:"disabled,omitempty"`
	Notes       string         `json:"notes,omitempty"`
	NotesInFlow *bool          `json:"notesInFlow,omitempty"`
	WebhookID   string         `json:"webhookId,omitempty"`
}

// SanitizeForUpdate reduces a workflow document to the whitelisted shape the
// write endpoints accept, dropping every server-generated or read-only field
// the document picked up on its way through a read-merge-write cycle.
func SanitizeForUpdate(workflow *models.Workflow) *UpdatePayload {
	nodes := make([]*SanitizedNode, 0, len(workflow.Nodes))
	for _, node := range workflow.Nodes {
		nodes = append(nodes, sanitizeNode(node))
	}

	connections := workflow.Connections
	if connections == nil {
		// n8n rejects a null connections value; an empty object is fine.
		connections = map[string]models.NodeConnections{}
	}

	return &UpdatePayload{
		Name:        workflow.Name,
		Nodes:       nodes,
		Connections: connections,
		Settings:    workflow.Settings,
		StaticData:  workflow.StaticData,
	}
}

func sanitizeNode(node *models.WorkflowNode) *SanitizedNode {
	parameters := node.Parameters
	if parameters == nil {
		parameters = map[string]any{}
	}

	return &SanitizedNode{
		ID:          node.ID,
		Name:        node.Name,
		Type:        node.Type,
		Position:    node.Position,
		Parameters:  parameters,
		TypeVersion: node.TypeVersion,
		Credentials: node.Credentials,
		Disabled:    node.Disabled,
		Notes:       node.Notes,
		NotesInFlow: node.NotesInFlow,
		WebhookID:   node.WebhookID,
	}
}
