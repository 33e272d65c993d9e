package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const defaultMetaSchema = "https://json-schema.org/draft/2020-12/schema"

// Validate checks d against its meta-schema and reports an error wrapping
// ErrInvalidSchema when it does not conform. Documents without "$schema" are
// checked against draft 2020-12.
//
// Only the document itself is checked. References such as
// {"$ref": "https://example.com/address.json"} are never resolved, so a
// schema pointing at definitions elsewhere in the registry still validates.
func Validate(d *Document) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding schema document: %w", err)
	}

	metaURL, err := metaSchemaURL(d)
	if err != nil {
		return err
	}

	c := jsonschema.NewCompiler()
	c.LoadURL = func(s string) (io.ReadCloser, error) {
		return nil, fmt.Errorf("unsupported meta-schema %s", s)
	}
	meta, err := c.Compile(metaURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}

	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("decoding schema document: %w", err)
	}
	if err := meta.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	return nil
}

func metaSchemaURL(d *Document) (string, error) {
	raw, ok := d.Extra["$schema"]
	if !ok {
		return defaultMetaSchema, nil
	}
	var url string
	if err := json.Unmarshal(raw, &url); err != nil || url == "" {
		return "", fmt.Errorf("%w: $schema must be a non-empty string", ErrInvalidSchema)
	}
	return url, nil
}
