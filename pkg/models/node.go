package models

// WorkflowNode represents a node instance inside an n8n workflow document.
// Optional fields use pointers where presence matters on writes: n8n treats
// an absent "disabled" differently from an explicit false.
type WorkflowNode struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"        validate:"required,min=1"`
	Type        string         `json:"type"        validate:"required"`
	TypeVersion float64        `json:"typeVersion,omitempty"`
	Parameters  map[string]any `json:"parameters"`
	Position    [2]float64     `json:"position"`
	Credentials map[string]any `json:"credentials,omitempty"`
	Disabled    *bool          `json:"disabled,omitempty"`
	Notes       string         `json:"notes,omitempty"`
	NotesInFlow *bool          `json:"notesInFlow,omitempty"`
	WebhookID   string         `json:"webhookId,omitempty"`
}

// Sticky notes have no execution semantics and never take connections.
const NodeTypeStickyNote = "n8n-nodes-base.stickyNote"
