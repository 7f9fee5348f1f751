package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// envelopeSchema validates only the top-level shape: 'workOrders' must be
// present and must be an array. The model's output is an untrusted external
// payload; per-field cleanup happens after this gate in sanitize.go.
var envelopeSchema = map[string]any{
	"type":     "object",
	"required": []any{"workOrders"},
	"properties": map[string]any{
		"workOrders": map[string]any{"type": "array"},
	},
}

// ValidateEnvelope checks data against the response envelope schema.
func ValidateEnvelope(data []byte) error {
	return validateAgainst(envelopeSchema, data)
}

func validateAgainst(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
