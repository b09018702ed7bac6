package web

import (
	"github.com/casali/flowpilot/pkg/llm"
	"github.com/casali/flowpilot/pkg/models"
)

// ChatRequest is one conversation turn from an HTTP client.
type ChatRequest struct {
	Message string        `json:"message" validate:"required,min=1"`
	History []llm.Message `json:"history"`
}

// ChatResponse carries the classified reply. On a tool-call reply the client
// receives previews to render its confirmation prompt; nothing has executed
// yet.
type ChatResponse struct {
	Type      string                 `json:"type"`
	Content   string                 `json:"content,omitempty"`
	ToolCalls []models.ToolCall      `json:"tool_calls,omitempty"`
	Previews  []models.ActionPreview `json:"previews,omitempty"`
}

// ExecuteRequest runs tool calls the user already confirmed in the client.
type ExecuteRequest struct {
	ToolCalls []models.ToolCall `json:"tool_calls" validate:"required,min=1"`
	Confirmed bool              `json:"confirmed"`
}

// ExecuteResponse is the uniform batch outcome plus the text to feed back
// into the conversation.
type ExecuteResponse struct {
	Results []models.ExecutionResult `json:"results"`
	Report  string                   `json:"report"`
}

// ActionInfo describes one catalog entry for clients building their own UI.
type ActionInfo struct {
	Name                 string `json:"name"`
	Label                string `json:"label"`
	Icon                 string `json:"icon"`
	Description          string `json:"description"`
	RequiresConfirmation bool   `json:"requires_confirmation"`
}

// UsageResponse reports the quota state.
type UsageResponse struct {
	Remaining int `json:"remaining"`
	Limit     int `json:"limit"`
}
