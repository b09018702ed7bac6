package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/casali/flowpilot/pkg/catalog"
	"github.com/casali/flowpilot/pkg/models"
)

// AuxExecutor runs the read-only auxiliary tool calls. Unlike the mutating
// executor it never asks for confirmation; these tools cannot change
// anything on the n8n instance.
type AuxExecutor struct {
	client *Client
}

// NewAuxExecutor wraps a search client for tool-call dispatch.
func NewAuxExecutor(client *Client) *AuxExecutor {
	return &AuxExecutor{client: client}
}

// Execute runs one auxiliary tool call into a uniform execution result.
func (e *AuxExecutor) Execute(ctx context.Context, call models.ToolCall) models.ExecutionResult {
	args := map[string]any{}
	if call.Function.Arguments != "" {
		_ = json.Unmarshal([]byte(call.Function.Arguments), &args)
	}

	result := models.ExecutionResult{
		ToolCallID: call.ID,
		ToolName:   call.Function.Name,
	}

	switch call.Function.Name {
	case catalog.AuxWebSearch:
		query, _ := args["query"].(string)
		if strings.TrimSpace(query) == "" {
			result.Error = "web_search requires a query"

			return result
		}

		hits, err := e.client.Search(ctx, query)
		if err != nil {
			result.Error = err.Error()

			return result
		}

		result.Success = true
		result.Data = formatSearchResults(hits)
	case catalog.AuxFetchURL:
		target, _ := args["url"].(string)

		text, err := e.client.FetchURL(ctx, target)
		if err != nil {
			result.Error = err.Error()

			return result
		}

		result.Success = true
		result.Data = text
	default:
		result.Error = fmt.Sprintf("unknown auxiliary tool %q", call.Function.Name)
	}

	return result
}

// formatSearchResults renders hits as the text block fed back to the model.
func formatSearchResults(hits []SearchResult) string {
	if len(hits) == 0 {
		return "No results found."
	}

	var builder strings.Builder

	for i, hit := range hits {
		fmt.Fprintf(&builder, "%d. %s\n%s\n%s\n\n", i+1, hit.Title, hit.URL, hit.Content)
	}

	return strings.TrimSpace(builder.String())
}
