package values_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/reglet-dev/schemactl/editor/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewArtifactID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "simple", input: "orders", want: "orders"},
		{name: "dotted", input: "com.example.Order", want: "com.example.Order"},
		{name: "trimmed", input: "  orders-v2 ", want: "orders-v2"},
		{name: "empty", input: "   ", wantErr: true},
		{name: "slash", input: "a/b", wantErr: true},
		{name: "backslash", input: `a\b`, wantErr: true},
		{name: "traversal", input: "a..b", wantErr: true},
		{name: "space", input: "my schema", wantErr: true},
		{name: "too long", input: strings.Repeat("a", 513), wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := values.NewArtifactID(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestArtifactID_JSON(t *testing.T) {
	t.Parallel()

	var id values.ArtifactID
	require.NoError(t, json.Unmarshal([]byte(`"orders"`), &id))
	assert.Equal(t, "orders", id.String())

	out, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"orders"`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`"../etc"`), &id))
	assert.Error(t, json.Unmarshal([]byte(`42`), &id))
}

func TestParseArtifactRef(t *testing.T) {
	t.Parallel()

	ref, err := values.ParseArtifactRef("orders")
	require.NoError(t, err)
	assert.Equal(t, "default", ref.Group())
	assert.Equal(t, "orders", ref.Artifact())
	assert.Equal(t, "default/orders", ref.String())

	ref, err = values.ParseArtifactRef("billing/invoice")
	require.NoError(t, err)
	assert.Equal(t, "billing", ref.Group())
	assert.True(t, ref.Equals(values.MustNewArtifactRef("billing", "invoice")))

	_, err = values.ParseArtifactRef("a/b/c")
	assert.Error(t, err)

	_, err = values.NewArtifactRef("bad group", "x")
	assert.Error(t, err)
}

func TestComputeDigest_IgnoresFormatting(t *testing.T) {
	t.Parallel()

	a, err := values.ComputeDigest([]byte(`{"type":"object","title":"x"}`))
	require.NoError(t, err)
	b, err := values.ComputeDigest([]byte("{\n  \"title\": \"x\",\n  \"type\": \"object\"\n}\n"))
	require.NoError(t, err)
	c, err := values.ComputeDigest([]byte(`{"type":"object","title":"y"}`))
	require.NoError(t, err)

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
	assert.True(t, strings.HasPrefix(a.String(), "sha256:"))
	assert.NoError(t, a.Verify([]byte(`{"title":"x","type":"object"}`)))
	assert.Error(t, a.Verify([]byte(`{"title":"y","type":"object"}`)))

	_, err = values.ComputeDigest([]byte(`not json`))
	assert.Error(t, err)
}

func TestParseDigest(t *testing.T) {
	t.Parallel()

	d, err := values.ParseDigest("sha256:abcd")
	require.NoError(t, err)
	assert.False(t, d.IsEmpty())
	assert.Equal(t, "sha256:abcd", d.String())

	for _, bad := range []string{"sha256abcd", "md5:abcd", "sha256:", ""} {
		_, err := values.ParseDigest(bad)
		assert.Error(t, err, bad)
	}
	assert.Empty(t, values.Digest{}.String())
}
