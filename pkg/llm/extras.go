package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const (
	titleModel        = "google/gemini-flash-1.5"
	titleMaxTokens    = 20
	titleMaxLength    = 50
	fallbackTitle     = "New Conversation"
	fixMaxTokens      = 8192
	fixTemperature    = 0.3
	titleInstructions = "Generate a short title (3-6 words) for this n8n workflow conversation. " +
		"Just return the title, nothing else. No quotes, no punctuation at the end."
)

// GenerateTitle produces a short conversation title from the opening
// messages. Any failure falls back to a generic title; naming a conversation
// is never worth surfacing an error for.
func (c *Client) GenerateTitle(ctx context.Context, messages []Message) string {
	var lines []string

	for _, message := range messages {
		text, ok := message.Content.(string)
		if !ok {
			continue
		}

		if len(text) > 200 {
			text = text[:200]
		}

		lines = append(lines, message.Role+": "+text)
	}

	reply, err := c.Complete(ctx, Request{
		Model: titleModel,
		Messages: []Message{
			TextMessage(RoleSystem, titleInstructions),
			TextMessage(RoleUser, strings.Join(lines, "\n")),
		},
		MaxTokens:   titleMaxTokens,
		Temperature: fixTemperature,
	})
	if err != nil || reply.Kind != ReplyText {
		c.logger.Warn("title generation failed", "error", err)

		return fallbackTitle
	}

	title := strings.Trim(strings.TrimSpace(reply.Content), `"'`)
	if title == "" {
		return fallbackTitle
	}

	if len(title) > titleMaxLength {
		title = title[:titleMaxLength]
	}

	return title
}

// FixSuggestion is the outcome of a one-shot workflow diagnosis.
type FixSuggestion struct {
	Suggestion       string
	ModifiedWorkflow map[string]any
}

var modifiedWorkflowPattern = regexp.MustCompile(`(?i)MODIFIED WORKFLOW[^:]*:\s*\n?\s*(\{[\s\S]*\})`)

const fixPromptFormat = `Analyze this workflow and suggest a fix for the described issue.

Issue: %s

Current Workflow:
%s

Respond in this exact format:

PROBLEM:
[One paragraph explaining what is wrong]

FIX:
[Numbered steps to resolve the issue]

MODIFIED WORKFLOW (if applicable):
[The corrected workflow JSON, or "No JSON changes needed" if the fix is procedural]`

// SuggestWorkflowFix asks the model to diagnose a workflow issue, returning
// the suggestion text plus a modified workflow document when one could be
// extracted from the reply.
func (c *Client) SuggestWorkflowFix(ctx context.Context, model string, workflowJSON map[string]any, issue string) (*FixSuggestion, error) {
	encoded, err := json.MarshalIndent(workflowJSON, "", "  ")
	if err != nil {
		return nil, err
	}

	reply, err := c.Complete(ctx, Request{
		Model: model,
		Messages: []Message{
			TextMessage(RoleSystem, "You are an expert n8n workflow automation engineer. Provide precise, actionable fixes."),
			TextMessage(RoleUser, fmt.Sprintf(fixPromptFormat, issue, encoded)),
		},
		MaxTokens:   fixMaxTokens,
		Temperature: fixTemperature,
	})
	if err != nil {
		return nil, err
	}

	suggestion := &FixSuggestion{Suggestion: reply.Content}

	if match := modifiedWorkflowPattern.FindStringSubmatch(reply.Content); match != nil {
		var workflow map[string]any
		if err := json.Unmarshal([]byte(match[1]), &workflow); err == nil {
			suggestion.ModifiedWorkflow = workflow
		}
	}

	return suggestion, nil
}
