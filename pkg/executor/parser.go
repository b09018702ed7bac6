// Package executor mediates tool calls emitted by the LLM into confirmed
// mutations against the connected n8n instance. Every call flows through the
// same pipeline: parse to a preview, ask the human, validate the arguments,
// dispatch to exactly one workflow operation.
package executor

import (
	"encoding/json"
	"log/slog"

	"github.com/casali/flowpilot/pkg/catalog"
	"github.com/casali/flowpilot/pkg/models"
)

// Parser turns raw tool calls into confirmation previews.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a preview parser.
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logger.With("module", "tool_parser")}
}

// Parse builds the preview for one tool call. It never fails: a malformed
// argument payload yields an empty argument map, and an unknown tool name
// yields a generic rendering, so the user always gets a cancel option.
func (p *Parser) Parse(call models.ToolCall) models.ActionPreview {
	args := map[string]any{}
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			p.logger.Warn("malformed tool arguments",
				"tool", call.Function.Name,
				"error", err)

			args = map[string]any{}
		}
	}

	icon, message := catalog.Describe(call.Function.Name, args)

	preview := models.ActionPreview{
		ToolName:             call.Function.Name,
		Icon:                 icon,
		Args:                 args,
		RequiresConfirmation: true,
		ConfirmMessage:       message,
	}

	if action, ok := catalog.Lookup(call.Function.Name); ok {
		preview.Description = action.Label
		preview.RequiresConfirmation = action.RequiresConfirmation
	} else if tool, ok := catalog.LookupAux(call.Function.Name); ok {
		preview.Description = tool.Label
		preview.RequiresConfirmation = tool.RequiresConfirmation
	} else {
		// Hallucinated names stay confirmation-gated; fail closed.
		preview.Description = "Unknown action"
	}

	return preview
}
