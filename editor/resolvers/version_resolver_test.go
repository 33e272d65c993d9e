package resolvers_test

import (
	"testing"

	"github.com/reglet-dev/schemactl/editor/resolvers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemverResolver_Resolve(t *testing.T) {
	t.Parallel()

	resolver := resolvers.NewSemverResolver()

	tests := []struct {
		name       string
		constraint string
		available  []string
		expected   string
		wantErr    bool
	}{
		{
			name:       "exact match",
			constraint: "1.0.0",
			available:  []string{"1.0.0", "1.1.0", "2.0.0"},
			expected:   "1.0.0",
		},
		{
			name:       "latest",
			constraint: "latest",
			available:  []string{"1.0.0", "2.0.0", "1.10.0"},
			expected:   "2.0.0",
		},
		{
			name:      "empty means latest",
			available: []string{"1.2.0", "1.10.0", "1.9.0"},
			expected:  "1.10.0",
		},
		{
			name:       "caret range within major",
			constraint: "^1.0",
			available:  []string{"1.0.0", "1.3.0", "2.0.0"},
			expected:   "1.3.0",
		},
		{
			name:       "skips registry ids that are not versions",
			constraint: "latest",
			available:  []string{"1", "draft", "1.1.0"},
			expected:   "1.1.0",
		},
		{
			name:       "no semantic versions",
			constraint: "latest",
			available:  []string{"draft"},
			wantErr:    true,
		},
		{
			name:       "no match",
			constraint: "^3.0",
			available:  []string{"1.0.0", "2.0.0"},
			wantErr:    true,
		},
		{
			name:       "invalid constraint",
			constraint: "not-a-constraint",
			available:  []string{"1.0.0"},
			wantErr:    true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := resolver.Resolve(tc.constraint, tc.available)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}
