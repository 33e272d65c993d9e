package parser

import (
	"github.com/reglet-dev/schemactl/schema"
)

// JSONDocumentParser implements DocumentParser for JSON.
type JSONDocumentParser struct{}

// NewJSONDocumentParser creates a new JSONDocumentParser.
func NewJSONDocumentParser() DocumentParser {
	return &JSONDocumentParser{}
}

// Parse decodes JSON bytes into a Document.
func (p *JSONDocumentParser) Parse(data []byte) (*schema.Document, error) {
	return schema.Parse(data)
}
