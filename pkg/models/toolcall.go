package models

// AssistantMode selects how far the assistant may go on the user's behalf.
type AssistantMode string

const (
	// AssistantModeBuilder permits offering mutating actions to the LLM.
	AssistantModeBuilder AssistantMode = "builder"
	// AssistantModeHelper restricts the assistant to suggestions only.
	AssistantModeHelper AssistantMode = "helper"
)

// ToolCall is a single structured action invocation emitted by the LLM.
// Arguments arrive as an encoded JSON string and are treated as untrusted
// input until parsed and validated against the action's declared schema.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction carries the name and raw argument payload of a tool call.
type ToolFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ActionPreview is the human-facing rendering of a tool call, shown in the
// confirmation prompt before anything executes. It is derived deterministically
// from a ToolCall plus the action catalog; a malformed argument payload yields
// an empty Args map rather than an error so the user can still cancel.
type ActionPreview struct {
	ToolName             string         `json:"tool_name"`
	Description          string         `json:"description"`
	Icon                 string         `json:"icon"`
	Args                 map[string]any `json:"args"`
	RequiresConfirmation bool           `json:"requires_confirmation"`
	ConfirmMessage       string         `json:"confirm_message"`
}

// ExecutionResult is the uniform outcome of executing one tool call.
// UserCancelled is distinguished from failure so the UI can render it
// neutrally and the LLM is told "cancelled", not "failed".
type ExecutionResult struct {
	ToolCallID    string `json:"tool_call_id"`
	ToolName      string `json:"tool_name"`
	Success       bool   `json:"success"`
	Data          any    `json:"data,omitempty"`
	Error         string `json:"error,omitempty"`
	UserCancelled bool   `json:"user_cancelled,omitempty"`
}
