package schema_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/reglet-dev/schemactl/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RoundTripPreservesUnknownKeywords(t *testing.T) {
	t.Parallel()

	input := `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"title": "Customer",
		"description": "A customer record",
		"required": ["name"],
		"properties": {
			"name": {"type": "string", "minLength": 1},
			"tags": {"type": "array", "items": {"type": "string"}},
			"id": {"type": "string", "format": "uuid"}
		}
	}`

	doc, err := schema.Parse([]byte(input))
	require.NoError(t, err)

	assert.Equal(t, schema.Types{"object"}, doc.Type)
	assert.Equal(t, "Customer", doc.Title)
	assert.Equal(t, "A customer record", doc.Description)
	assert.Equal(t, []string{"id", "name", "tags"}, doc.FieldNames())
	assert.Contains(t, doc.Extra, "required")
	assert.Contains(t, doc.Extra, "$schema")

	id, ok := doc.Field("id")
	require.True(t, ok)
	assert.Equal(t, "uuid", id.Format)

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, input, string(out))
}

func TestParse_AbsentVersusEmptyProperties(t *testing.T) {
	t.Parallel()

	absent, err := schema.Parse([]byte(`{"type":"object"}`))
	require.NoError(t, err)
	assert.Nil(t, absent.Properties)

	empty, err := schema.Parse([]byte(`{"type":"object","properties":{}}`))
	require.NoError(t, err)
	require.NotNil(t, empty.Properties)
	assert.Empty(t, empty.Properties)

	out, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"object","properties":{}}`, string(out))

	out, err = json.Marshal(absent)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"object"}`, string(out))
}

func TestParse_BooleanSubschemas(t *testing.T) {
	t.Parallel()

	doc, err := schema.Parse([]byte(`{"properties":{"anything":true,"nothing":false}}`))
	require.NoError(t, err)

	anything, _ := doc.Field("anything")
	v, ok := anything.Boolean()
	assert.True(t, ok)
	assert.True(t, v)
	assert.Nil(t, anything.Type)

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"properties":{"anything":true,"nothing":false}}`, string(out))
}

func TestParse_TypeList(t *testing.T) {
	t.Parallel()

	doc, err := schema.Parse([]byte(`{"properties":{"nick":{"type":["string","null"]}}}`))
	require.NoError(t, err)

	nick, _ := doc.Field("nick")
	assert.Equal(t, schema.Types{"string", "null"}, nick.Type)
	assert.Equal(t, "string|null", nick.Type.String())
}

func TestParse_InvalidShape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantPath string
	}{
		{name: "top-level array", input: `[1,2]`, wantPath: ""},
		{name: "top-level null", input: `null`, wantPath: ""},
		{name: "properties not an object", input: `{"properties":["a"]}`, wantPath: "properties"},
		{name: "property value is a string", input: `{"properties":{"a":"string"}}`, wantPath: "properties.a"},
		{name: "type is a number", input: `{"type":3}`, wantPath: "type"},
		{name: "nested type is invalid", input: `{"properties":{"a":{"properties":{"b":{"type":{}}}}}}`, wantPath: "properties.a.properties.b.type"},
		{name: "title is not a string", input: `{"title":42}`, wantPath: "title"},
		{name: "type is null", input: `{"type":null}`, wantPath: "type"},
		{name: "property type is null", input: `{"properties":{"a":{"type":null}}}`, wantPath: "properties.a.type"},
		{name: "type list holds null", input: `{"type":["string",null]}`, wantPath: "type"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := schema.Parse([]byte(tc.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, schema.ErrInvalidSchemaShape))

			var shapeErr *schema.InvalidSchemaShapeError
			require.ErrorAs(t, err, &shapeErr)
			assert.Equal(t, tc.wantPath, shapeErr.Path)
		})
	}
}

func TestParse_SyntaxError(t *testing.T) {
	t.Parallel()

	_, err := schema.Parse([]byte(`{"type":`))
	require.Error(t, err)
	assert.False(t, errors.Is(err, schema.ErrInvalidSchemaShape))
}

func TestTypes_Equal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b schema.Types
		want bool
	}{
		{"both absent", nil, nil, true},
		{"absent vs present", nil, schema.Types{"string"}, false},
		{"present vs absent", schema.Types{"string"}, nil, false},
		{"same single", schema.Types{"string"}, schema.Types{"string"}, true},
		{"different single", schema.Types{"string"}, schema.Types{"integer"}, false},
		{"list order ignored", schema.Types{"string", "null"}, schema.Types{"null", "string"}, true},
		{"list length differs", schema.Types{"string"}, schema.Types{"string", "null"}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Equal(tc.b))
		})
	}
}

func TestDocument_CloneIsDeep(t *testing.T) {
	t.Parallel()

	doc, err := schema.Parse([]byte(`{"type":"object","required":["a"],"properties":{"a":{"type":"string"}}}`))
	require.NoError(t, err)

	clone := doc.Clone()
	require.NoError(t, clone.AddField("b", schema.KindInteger))
	clone.Properties["a"].Type[0] = "number"
	clone.Extra["required"][2] = 'z'
	clone.Title = "changed"

	assert.Equal(t, []string{"a"}, doc.FieldNames())
	assert.Equal(t, schema.Types{"string"}, doc.Properties["a"].Type)
	assert.JSONEq(t, `["a"]`, string(doc.Extra["required"]))
	assert.Empty(t, doc.Title)
}
