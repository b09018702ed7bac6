package executor

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/casali/flowpilot/pkg/models"
)

// validateArgs checks an argument map against an action's declared schema.
// The arguments come from the LLM and are untrusted: missing required fields
// or wrong primitive types are rejected here instead of turning into nulls
// inside a network payload.
func validateArgs(schema *models.JSONSchema, args map[string]any) error {
	if schema == nil {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(args),
	)
	if err != nil {
		return fmt.Errorf("argument validation failed: %w", err)
	}

	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, issue := range result.Errors() {
		details = append(details, issue.String())
	}

	return fmt.Errorf("invalid arguments: %s", strings.Join(details, "; "))
}
