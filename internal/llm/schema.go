package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

type schemaValidator struct {
	schema *jsonschema.Schema
}

func compileSchema(def JSONSchema) (*schemaValidator, error) {
	if len(def.Schema) == 0 {
		return nil, fmt.Errorf("schema %q is empty", def.Name)
	}
	url := "mem://" + def.Name + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(def.Schema)); err != nil {
		return nil, fmt.Errorf("load schema %q: %w", def.Name, err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", def.Name, err)
	}
	return &schemaValidator{schema: schema}, nil
}

// validate checks that content is a JSON object satisfying the schema.
func (v *schemaValidator) validate(content string) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(content)))
	dec.UseNumber()

	var parsed any
	if err := dec.Decode(&parsed); err != nil {
		return invalidSchemaError("response is not valid JSON", err)
	}
	if _, ok := parsed.(map[string]any); !ok {
		return invalidSchemaError("response is not a JSON object", nil)
	}
	if err := v.schema.Validate(parsed); err != nil {
		return invalidSchemaError("response does not match schema", err)
	}
	return nil
}
