// Package parser decodes schema documents from local files.
package parser

import (
	"encoding/json"
	"fmt"

	"github.com/reglet-dev/schemactl/schema"
	"gopkg.in/yaml.v3"
)

// YAMLDocumentParser implements DocumentParser for YAML. The YAML tree is
// re-encoded as JSON so both formats share one decoder.
type YAMLDocumentParser struct{}

// NewYAMLDocumentParser creates a new YAMLDocumentParser.
func NewYAMLDocumentParser() DocumentParser {
	return &YAMLDocumentParser{}
}

// Parse decodes YAML bytes into a Document.
func (p *YAMLDocumentParser) Parse(data []byte) (*schema.Document, error) {
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("decoding schema YAML: %w", err)
	}
	raw, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("schema YAML is not representable as JSON: %w", err)
	}
	return schema.Parse(raw)
}
