// Package chat assembles LLM conversation turns: system prompt, history
// window, page context, and the conditional tool list, then classifies the
// reply as assistant text or a batch of tool calls.
package chat

import (
	"regexp"
	"strings"
)

var questionLeads = regexp.MustCompile(`(?i)^(what|why|how|when|where|who|which|can you explain|does|is|are|do|could you|would you|tell me|explain)\b`)

// IsLikelyQuestion detects messages that ask rather than instruct. Questions
// never get the mutating tool list: "Why is my webhook failing?" must be
// answered, not acted on. The heuristic is deliberately conservative; a
// false positive only means the user has to phrase the command as one.
func IsLikelyQuestion(message string) bool {
	trimmed := strings.TrimSpace(message)
	if strings.HasSuffix(trimmed, "?") {
		return true
	}

	return questionLeads.MatchString(trimmed)
}
