package schema

import (
	"fmt"
	"strings"
)

// NewObjectDescription is the description given to a newly created schema.
const NewObjectDescription = "Newly created schema"

// FieldKind is a field type offered by the editor. Most kinds are JSON Schema
// types; uuid, email and date are strings with a format.
type FieldKind string

const (
	KindString  FieldKind = "string"
	KindNumber  FieldKind = "number"
	KindBoolean FieldKind = "boolean"
	KindArray   FieldKind = "array"
	KindInteger FieldKind = "integer"
	KindUUID    FieldKind = "uuid"
	KindEmail   FieldKind = "email"
	KindDate    FieldKind = "date"
)

// FieldKinds returns the kinds in the order the editor presents them.
func FieldKinds() []FieldKind {
	return []FieldKind{
		KindString, KindNumber, KindBoolean, KindArray,
		KindInteger, KindUUID, KindEmail, KindDate,
	}
}

// ParseFieldKind parses a field kind name.
func ParseFieldKind(s string) (FieldKind, error) {
	k := FieldKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range FieldKinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown field type %q", s)
}

// Document returns the sub-schema for a field of this kind.
func (k FieldKind) Document() *Document {
	switch k {
	case KindUUID, KindEmail, KindDate:
		return &Document{Type: Types{"string"}, Format: string(k)}
	default:
		return &Document{Type: Types{string(k)}}
	}
}

// NewObject returns the document a new schema starts from: an object with a
// title, a description and no properties.
func NewObject(title string) *Document {
	return &Document{
		Type:        Types{"object"},
		Title:       title,
		Description: NewObjectDescription,
		Properties:  map[string]*Document{},
	}
}

// AddField adds a top-level field of the given kind. The properties keyword
// is created when absent.
func (d *Document) AddField(name string, kind FieldKind) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyFieldName
	}
	if _, err := ParseFieldKind(string(kind)); err != nil {
		return err
	}
	if _, exists := d.Properties[name]; exists {
		return fmt.Errorf("%w: %s", ErrFieldExists, name)
	}
	if d.Properties == nil {
		d.Properties = make(map[string]*Document)
	}
	d.Properties[name] = kind.Document()
	return nil
}

// RemoveField removes a top-level field.
func (d *Document) RemoveField(name string) error {
	if _, exists := d.Properties[name]; !exists {
		return fmt.Errorf("%w: %s", ErrFieldNotFound, name)
	}
	delete(d.Properties, name)
	return nil
}
