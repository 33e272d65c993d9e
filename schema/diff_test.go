package schema_test

import (
	"testing"

	"github.com/reglet-dev/schemactl/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) *schema.Document {
	t.Helper()
	doc, err := schema.Parse([]byte(s))
	require.NoError(t, err)
	return doc
}

func TestClassify(t *testing.T) {
	t.Parallel()

	base := `{"type":"object","properties":{"name":{"type":"string"},"age":{"type":"integer"}}}`

	tests := []struct {
		name     string
		original string
		modified string
		want     schema.ChangeType
	}{
		{
			name:     "identical documents",
			original: base,
			modified: base,
			want:     schema.ChangeNone,
		},
		{
			name:     "field removed",
			original: base,
			modified: `{"type":"object","properties":{"name":{"type":"string"}}}`,
			want:     schema.ChangeBreaking,
		},
		{
			name:     "field removed while another is added",
			original: base,
			modified: `{"type":"object","properties":{"name":{"type":"string"},"years":{"type":"integer"}}}`,
			want:     schema.ChangeBreaking,
		},
		{
			name:     "field type changed",
			original: base,
			modified: `{"type":"object","properties":{"name":{"type":"string"},"age":{"type":"number"}}}`,
			want:     schema.ChangeBreaking,
		},
		{
			name:     "field type dropped",
			original: base,
			modified: `{"type":"object","properties":{"name":{"type":"string"},"age":{}}}`,
			want:     schema.ChangeBreaking,
		},
		{
			name:     "field type introduced",
			original: `{"properties":{"age":{}}}`,
			modified: `{"properties":{"age":{"type":"integer"}}}`,
			want:     schema.ChangeBreaking,
		},
		{
			name:     "fields added",
			original: base,
			modified: `{"type":"object","properties":{"name":{"type":"string"},"age":{"type":"integer"},"email":{"type":"string"},"active":{"type":"boolean"}}}`,
			want:     schema.ChangeAdditive,
		},
		{
			name:     "only descriptions changed",
			original: base,
			modified: `{"type":"object","description":"new","properties":{"name":{"type":"string","description":"full name","title":"Name"},"age":{"type":"integer"}}}`,
			want:     schema.ChangeNone,
		},
		{
			name:     "nested property change is not inspected",
			original: `{"properties":{"address":{"type":"object","properties":{"city":{"type":"string"}}}}}`,
			modified: `{"properties":{"address":{"type":"object","properties":{}}}}`,
			want:     schema.ChangeNone,
		},
		{
			name:     "format change is not inspected",
			original: `{"properties":{"id":{"type":"string"}}}`,
			modified: `{"properties":{"id":{"type":"string","format":"uuid"}}}`,
			want:     schema.ChangeNone,
		},
		{
			name:     "absent and empty properties are equivalent",
			original: `{"type":"object"}`,
			modified: `{"type":"object","properties":{}}`,
			want:     schema.ChangeNone,
		},
		{
			name:     "first field added to absent properties",
			original: `{"type":"object"}`,
			modified: `{"type":"object","properties":{"name":{"type":"string"}}}`,
			want:     schema.ChangeAdditive,
		},
		{
			name:     "all fields removed",
			original: base,
			modified: `{"type":"object"}`,
			want:     schema.ChangeBreaking,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			original := mustParse(t, tc.original)
			modified := mustParse(t, tc.modified)
			assert.Equal(t, tc.want, schema.Classify(original, modified))
			assert.Equal(t, tc.want, schema.Diff(original, modified).Change())
		})
	}
}

func TestClassify_NilDocuments(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `{"properties":{"a":{"type":"string"}}}`)

	assert.Equal(t, schema.ChangeNone, schema.Classify(nil, nil))
	assert.Equal(t, schema.ChangeAdditive, schema.Classify(nil, doc))
	assert.Equal(t, schema.ChangeBreaking, schema.Classify(doc, nil))
}

func TestClassify_ManyFieldsIsStable(t *testing.T) {
	t.Parallel()

	original := mustParse(t, `{"properties":{"a":{"type":"string"},"b":{"type":"string"},"c":{"type":"string"},"d":{"type":"string"},"e":{"type":"string"},"f":{"type":"string"}}}`)
	modified := mustParse(t, `{"properties":{"a":{"type":"string"},"c":{"type":"integer"},"d":{"type":"string"},"e":{"type":"string"},"f":{"type":"string"},"g":{"type":"string"}}}`)

	for range 50 {
		assert.Equal(t, schema.ChangeBreaking, schema.Classify(original, modified))
		assert.Equal(t, schema.ChangeAdditive, schema.Classify(original, mustParse(t, `{"properties":{"a":{"type":"string"},"b":{"type":"string"},"c":{"type":"string"},"d":{"type":"string"},"e":{"type":"string"},"f":{"type":"string"},"g":{}}}`)))
	}
}

func TestDiff_Report(t *testing.T) {
	t.Parallel()

	original := mustParse(t, `{"properties":{"a":{"type":"string"},"b":{"type":"integer"},"c":{"type":"boolean"}}}`)
	modified := mustParse(t, `{"properties":{"b":{"type":"number"},"c":{"type":"boolean"},"e":{"type":"string"},"d":{"type":"string"}}}`)

	r := schema.Diff(original, modified)
	assert.Equal(t, []string{"a"}, r.Removed)
	assert.Equal(t, []schema.FieldChange{{Name: "b", From: schema.Types{"integer"}, To: schema.Types{"number"}}}, r.Retyped)
	assert.Equal(t, []string{"d", "e"}, r.Added)
	assert.False(t, r.Empty())
	assert.Equal(t, schema.ChangeBreaking, r.Change())

	assert.True(t, schema.Diff(original, original).Empty())
}

func TestChangeType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "none", schema.ChangeNone.String())
	assert.Equal(t, "additive", schema.ChangeAdditive.String())
	assert.Equal(t, "breaking", schema.ChangeBreaking.String())
	assert.Equal(t, "minor", schema.ChangeAdditive.Bump())
	assert.Equal(t, "major", schema.ChangeBreaking.Bump())

	for _, s := range []string{"major", "breaking", " Breaking "} {
		c, err := schema.ParseChangeType(s)
		require.NoError(t, err)
		assert.Equal(t, schema.ChangeBreaking, c)
	}
	_, err := schema.ParseChangeType("patch")
	assert.Error(t, err)

	_, err = schema.ChangeType(7).MarshalText()
	assert.Error(t, err)
}
