package agent

import (
	"encoding/json"
	"fmt"

	"github.com/aeropilot-ai/aeropilot/internal/util"
)

// OutputContract constrains the shape of an agent's final answer: either free
// text (the default) or a JSON object the answer must validate against.
type OutputContract struct {
	schema map[string]any
}

// FreeText returns the default contract: any final text is accepted.
func FreeText() OutputContract { return OutputContract{} }

// StructuredOutput returns a contract requiring the final answer to be a JSON
// object valid against schema (minimal JSON schema: properties + required).
func StructuredOutput(schema map[string]any) OutputContract {
	return OutputContract{schema: schema}
}

// StructuredOutputFor derives the schema from a Go struct via reflection.
func StructuredOutputFor(structType any) OutputContract {
	return OutputContract{schema: util.CreateSchema(structType)}
}

// IsStructured reports whether the contract requires a structured answer.
func (c OutputContract) IsStructured() bool { return c.schema != nil }

// Schema returns the contract's schema, nil for free text.
func (c OutputContract) Schema() map[string]any { return c.schema }

// Validate checks output against the contract. For structured contracts it
// parses output as a JSON object and validates it, returning the decoded
// value; for free text it returns nil with no error.
func (c OutputContract) Validate(output string) (map[string]any, error) {
	if c.schema == nil {
		return nil, nil
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(output), &decoded); err != nil {
		return nil, fmt.Errorf("output is not a JSON object: %w", err)
	}

	if err := util.ValidateParameters(decoded, c.schema); err != nil {
		return nil, fmt.Errorf("output violates contract: %w", err)
	}

	return decoded, nil
}
