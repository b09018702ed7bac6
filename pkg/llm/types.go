package llm

import (
	"github.com/casali/flowpilot/pkg/models"
)

// Message roles in the gateway protocol.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ContentPart is one element of a multimodal message body.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL carries an image as a data-URL-embedded PNG.
type ImageURL struct {
	URL string `json:"url"`
}

// Message is one conversation entry. Content is either a plain string or a
// []ContentPart for multimodal turns; both serialize the way the gateway
// expects.
type Message struct {
	Role       string            `json:"role"`
	Content    any               `json:"content"`
	ToolCalls  []models.ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string            `json:"tool_call_id,omitempty"`
}

// TextMessage builds a plain text message.
func TextMessage(role, text string) Message {
	return Message{Role: role, Content: text}
}

// VisionMessage builds a user message carrying text plus one PNG screenshot
// as a data URL.
func VisionMessage(text, imageDataURL string) Message {
	return Message{
		Role: RoleUser,
		Content: []ContentPart{
			{Type: "text", Text: text},
			{Type: "image_url", ImageURL: &ImageURL{URL: imageDataURL}},
		},
	}
}

// Request is the gateway chat-completions request body.
type Request struct {
	Model       string                   `json:"model"`
	Messages    []Message                `json:"messages"`
	MaxTokens   int                      `json:"max_tokens,omitempty"`
	Temperature float64                  `json:"temperature"`
	Tools       []models.ToolDeclaration `json:"tools,omitempty"`
	ToolChoice  string                   `json:"tool_choice,omitempty"`
	Stream      bool                     `json:"stream,omitempty"`
}

type completionResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Content   string            `json:"content"`
			ToolCalls []models.ToolCall `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type streamFrame struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// ReplyKind classifies a gateway reply.
type ReplyKind string

const (
	ReplyText      ReplyKind = "text"
	ReplyToolCalls ReplyKind = "tool_calls"
)

// Reply is the classified outcome of one completion: either assistant text
// or a batch of tool calls to mediate.
type Reply struct {
	Kind      ReplyKind
	Content   string
	ToolCalls []models.ToolCall
}
