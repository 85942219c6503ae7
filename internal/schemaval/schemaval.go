// Package schemaval validates the JSON payload `detect --json` writes to
// standard output against the stable detect-result schema (spec §6), so a
// malformed field name or enum value is caught before it reaches a host
// parsing the CLI's output.
package schemaval

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed detect_result.schema.json
var detectResultSchemaJSON []byte

const detectResultSchemaID = "https://awmkit.dev/schema/detect-result-v1.schema.json"

var (
	compileOnce  sync.Once
	detectResult *jsonschema.Schema
	compileErr   error
)

func compiledDetectResultSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(detectResultSchemaID, bytes.NewReader(detectResultSchemaJSON)); err != nil {
			compileErr = fmt.Errorf("schemaval: add schema resource: %w", err)
			return
		}
		detectResult, compileErr = compiler.Compile(detectResultSchemaID)
	})
	return detectResult, compileErr
}

// ValidateDetectResult validates a `detect --json` payload against the
// stable schema. It is the last step before the CLI writes payload to
// stdout, so a schema drift fails loudly in tests rather than silently
// shipping a malformed contract to hosts.
func ValidateDetectResult(payload []byte) error {
	schema, err := compiledDetectResultSchema()
	if err != nil {
		return err
	}

	var instance any
	if err := json.Unmarshal(payload, &instance); err != nil {
		return fmt.Errorf("schemaval: unmarshal payload: %w", err)
	}

	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("schemaval: detect result failed schema validation: %w", err)
	}
	return nil
}
