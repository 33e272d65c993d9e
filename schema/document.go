// Package schema models JSON Schema documents and classifies the changes
// between two revisions of a document.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Document is a JSON Schema document, or a sub-schema of one.
//
// Only the keywords the editor works with are modeled as fields. Every other
// keyword is kept verbatim in Extra so that a document survives a decode, edit,
// encode round trip without losing information.
type Document struct {
	// Type is the "type" keyword. Nil means the keyword is absent.
	Type Types

	// Properties maps field names to sub-schemas. Nil means the keyword is
	// absent; an empty non-nil map means it is present and empty. The two are
	// equivalent for comparison purposes.
	Properties map[string]*Document

	// Extra holds every keyword not modeled above.
	Extra map[string]json.RawMessage

	// boolean is set when the document is a boolean schema (true or false).
	boolean *bool

	Title       string
	Description string
	Format      string
}

// Bool returns a boolean schema.
func Bool(v bool) *Document {
	return &Document{boolean: &v}
}

// Boolean reports whether d is a boolean schema and, if so, its value.
func (d *Document) Boolean() (value, ok bool) {
	if d == nil || d.boolean == nil {
		return false, false
	}
	return *d.boolean, true
}

// Parse decodes a JSON-encoded schema document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		var shapeErr *InvalidSchemaShapeError
		if errors.As(err, &shapeErr) {
			return nil, err
		}
		return nil, fmt.Errorf("decoding schema document: %w", err)
	}
	return &doc, nil
}

// FieldNames returns the names of the top-level properties, sorted.
func (d *Document) FieldNames() []string {
	if d == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(d.Properties))
}

// Field returns the sub-schema of a top-level property.
func (d *Document) Field(name string) (*Document, bool) {
	if d == nil {
		return nil, false
	}
	f, ok := d.Properties[name]
	return f, ok
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		Title:       d.Title,
		Description: d.Description,
		Format:      d.Format,
	}
	if d.boolean != nil {
		b := *d.boolean
		out.boolean = &b
	}
	if d.Type != nil {
		out.Type = slices.Clone(d.Type)
	}
	if d.Properties != nil {
		out.Properties = make(map[string]*Document, len(d.Properties))
		for name, p := range d.Properties {
			out.Properties[name] = p.Clone()
		}
	}
	if d.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(d.Extra))
		for k, v := range d.Extra {
			out.Extra[k] = bytes.Clone(v)
		}
	}
	return out
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Document) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch string(trimmed) {
	case "true", "false":
		*d = *Bool(string(trimmed) == "true")
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil || raw == nil {
		return &InvalidSchemaShapeError{Reason: "schema must be an object or a boolean"}
	}

	var out Document
	for key, value := range raw {
		switch key {
		case "type":
			t, err := decodeTypes(value)
			if err != nil {
				return err
			}
			out.Type = t
		case "title", "description", "format":
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return &InvalidSchemaShapeError{Path: key, Reason: "must be a string"}
			}
			switch key {
			case "title":
				out.Title = s
			case "description":
				out.Description = s
			default:
				out.Format = s
			}
		case "properties":
			props, err := decodeProperties(value)
			if err != nil {
				return err
			}
			out.Properties = props
		default:
			if out.Extra == nil {
				out.Extra = make(map[string]json.RawMessage)
			}
			out.Extra[key] = bytes.Clone(value)
		}
	}

	*d = out
	return nil
}

func decodeTypes(value json.RawMessage) (Types, error) {
	invalid := &InvalidSchemaShapeError{Path: "type", Reason: "must be a string or a list of strings"}

	// null would otherwise decode into an empty string or a nil list.
	if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
		return nil, invalid
	}
	var single string
	if err := json.Unmarshal(value, &single); err == nil {
		return Types{single}, nil
	}
	var list []*string
	if err := json.Unmarshal(value, &list); err != nil {
		return nil, invalid
	}
	types := make(Types, 0, len(list))
	for _, t := range list {
		if t == nil {
			return nil, invalid
		}
		types = append(types, *t)
	}
	return types, nil
}

func decodeProperties(value json.RawMessage) (map[string]*Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(value, &raw); err != nil || raw == nil {
		return nil, &InvalidSchemaShapeError{Path: "properties", Reason: "must be an object"}
	}

	props := make(map[string]*Document, len(raw))
	for name, sub := range raw {
		var child Document
		if err := child.UnmarshalJSON(sub); err != nil {
			var shapeErr *InvalidSchemaShapeError
			if errors.As(err, &shapeErr) {
				return nil, shapeErr.under("properties." + name)
			}
			return nil, err
		}
		props[name] = &child
	}
	return props, nil
}

// MarshalJSON implements json.Marshaler.
func (d Document) MarshalJSON() ([]byte, error) {
	if d.boolean != nil {
		return json.Marshal(*d.boolean)
	}

	out := make(map[string]any, len(d.Extra)+5)
	for k, v := range d.Extra {
		out[k] = v
	}
	if d.Type != nil {
		if len(d.Type) == 1 {
			out["type"] = d.Type[0]
		} else {
			out["type"] = []string(d.Type)
		}
	}
	if d.Title != "" {
		out["title"] = d.Title
	}
	if d.Description != "" {
		out["description"] = d.Description
	}
	if d.Format != "" {
		out["format"] = d.Format
	}
	if d.Properties != nil {
		props := make(map[string]*Document, len(d.Properties))
		for name, p := range d.Properties {
			if p == nil {
				p = &Document{}
			}
			props[name] = p
		}
		out["properties"] = props
	}
	return json.Marshal(out)
}

// Types is the value of the "type" keyword. JSON Schema allows either a single
// type name or a list of names; a single name decodes to a one-element list.
type Types []string

// Equal reports whether t and other name the same set of types. Two absent
// values are equal; an absent value never equals a present one.
func (t Types) Equal(other Types) bool {
	if (t == nil) != (other == nil) {
		return false
	}
	if len(t) != len(other) {
		return false
	}
	a := slices.Clone(t)
	b := slices.Clone(other)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}

// String returns the type names joined by "|", or "" when absent.
func (t Types) String() string {
	return strings.Join(t, "|")
}

func (d *Document) typ() Types {
	if d == nil {
		return nil
	}
	return d.Type
}

func (d *Document) properties() map[string]*Document {
	if d == nil {
		return nil
	}
	return d.Properties
}
