package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/invopop/jsonschema"
	santhosh "github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "https://schemactl.local/config.schema.json"

var (
	compileOnce sync.Once
	compiled    *santhosh.Schema
	compileErr  error
)

// Schema returns the JSON Schema of the configuration file, generated from
// Config. Unknown keys are not allowed.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		FieldNameTag:               "yaml",
		ExpandedStruct:             true,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	s := r.Reflect(&Config{})
	s.ID = schemaURL
	s.Title = "schemactl configuration"

	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generated schema: %w", err)
	}
	return b, nil
}

func compiledSchema() (*santhosh.Schema, error) {
	compileOnce.Do(func() {
		var data []byte
		data, compileErr = Schema()
		if compileErr != nil {
			return
		}
		c := santhosh.NewCompiler()
		c.Draft = santhosh.Draft2020
		if compileErr = c.AddResource(schemaURL, bytes.NewReader(data)); compileErr != nil {
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// Check validates raw YAML against the configuration schema.
func Check(data []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compiling config schema: %w", err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if raw == nil {
		return nil
	}

	// Round trip through JSON so the validator sees JSON types.
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
