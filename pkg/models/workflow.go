// Package models defines the core domain models shared across the assistant:
// the n8n workflow document as it travels over the REST API, the tool-call
// shapes exchanged with the LLM gateway, and the JSON Schema types used to
// describe callable actions.
package models

// Workflow represents one n8n workflow document as returned by the REST API.
// Instances are request-scoped: the executor fetches a fresh copy immediately
// before every mutation and never caches one across turns.
type Workflow struct {
	ID          string                     `json:"id,omitempty"`
	Name        string                     `json:"name"       validate:"required"`
	Active      bool                       `json:"active,omitempty"`
	Nodes       []*WorkflowNode            `json:"nodes"`
	Connections map[string]NodeConnections `json:"connections"`
	Settings    map[string]any             `json:"settings,omitempty"`
	StaticData  map[string]any             `json:"staticData,omitempty"`

	// Server-generated metadata. Present on reads, must never be written back.
	CreatedAt    string `json:"createdAt,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
	VersionID    string `json:"versionId,omitempty"`
	Tags         []any  `json:"tags,omitempty"`
	Shared       []any  `json:"shared,omitempty"`
	TriggerCount int    `json:"triggerCount,omitempty"`
}

// NodeConnections holds the ordered outgoing edges of one source node,
// keyed in the parent map by the source node's name.
type NodeConnections struct {
	Main [][]Connection `json:"main"`
}

// Connection is a single directed edge to a target node.
type Connection struct {
	Node  string `json:"node"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// NodeByName returns the node with the given exact name, or nil. Node names
// are unique within one document, an invariant the external system enforces
// and the executor relies on.
func (w *Workflow) NodeByName(name string) *WorkflowNode {
	for _, n := range w.Nodes {
		if n.Name == name {
			return n
		}
	}

	return nil
}

// WorkflowList is the envelope n8n wraps around GET /workflows responses.
type WorkflowList struct {
	Data []*Workflow `json:"data"`
}
