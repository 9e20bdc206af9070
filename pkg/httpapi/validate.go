package httpapi

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

var evaluateRequestSchema = mustResolve(&jsonschema.Schema{
	Type:     "object",
	Required: []string{"text", "schemes"},
	Properties: map[string]*jsonschema.Schema{
		"text": {
			Type:      "string",
			MinLength: jsonschema.Ptr(1),
		},
		"schemes": {
			Type:     "array",
			Items:    &jsonschema.Schema{Type: "string"},
			MinItems: jsonschema.Ptr(1),
		},
		"context_type": {
			Type: "string",
			Enum: []any{"content", "platform", "both", ""},
		},
		"include_reasoning": {
			Type: "boolean",
		},
	},
})

func mustResolve(s *jsonschema.Schema) *jsonschema.Resolved {
	resolved, err := s.Resolve(nil)
	if err != nil {
		panic(fmt.Sprintf("httpapi: invalid evaluate request schema: %v", err))
	}
	return resolved
}

// validateEvaluateRequest checks the bound request body against the schema
// above (non-empty text, a non-empty scheme list, a known context_type), then
// re-checks context_type explicitly.
func validateEvaluateRequest(req evaluateRequest) error {
	if err := evaluateRequestSchema.Validate(req); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	switch req.ContextType {
	case "", "content", "platform", "both":
	default:
		return fmt.Errorf("invalid context_type %q", req.ContextType)
	}

	return nil
}
