package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/reglet-dev/schemactl/schema"
)

// DocumentParser parses raw schema bytes into a Document.
type DocumentParser interface {
	// Parse decodes schema bytes into a Document.
	Parse(data []byte) (*schema.Document, error)
}

// ForPath returns the parser matching a file extension.
func ForPath(path string) (DocumentParser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return NewJSONDocumentParser(), nil
	case ".yaml", ".yml":
		return NewYAMLDocumentParser(), nil
	default:
		return nil, fmt.Errorf("unsupported schema file extension %q", ext)
	}
}
