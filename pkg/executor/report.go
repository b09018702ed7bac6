package executor

import (
	"fmt"
	"strings"

	"github.com/casali/flowpilot/pkg/models"
)

// FormatResultsForLLM renders a batch outcome as the follow-up message fed
// back into the conversation so the model can narrate what happened.
// Cancellations are reported as "cancelled", never "failed", so the model
// does not treat them as retryable faults.
func FormatResultsForLLM(results []models.ExecutionResult) string {
	if len(results) == 0 {
		return "No actions were executed."
	}

	var builder strings.Builder

	builder.WriteString("Action results:\n")

	for _, result := range results {
		switch {
		case result.UserCancelled:
			fmt.Fprintf(&builder, "- %s: cancelled by the user. Do not retry it; acknowledge the choice and ask what they would like instead.\n", result.ToolName)
		case result.Success:
			fmt.Fprintf(&builder, "- %s: completed successfully.%s\n", result.ToolName, describeData(result.Data))
		default:
			fmt.Fprintf(&builder, "- %s: failed: %s\n", result.ToolName, result.Error)
		}
	}

	builder.WriteString("\nSummarize the outcome for the user in one or two sentences. Do not invent details beyond these results.")

	return builder.String()
}

func describeData(data any) string {
	workflow, ok := data.(*models.Workflow)
	if !ok || workflow == nil {
		return ""
	}

	if workflow.ID != "" {
		return fmt.Sprintf(" Workflow %q (id %s).", workflow.Name, workflow.ID)
	}

	return fmt.Sprintf(" Workflow %q.", workflow.Name)
}
