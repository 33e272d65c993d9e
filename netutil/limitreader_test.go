package netutil_test

import (
	"strings"
	"testing"
	"testing/iotest"

	"github.com/reglet-dev/schemactl/netutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAll_EnforcesLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		limit   int64
		wantErr bool
	}{
		{name: "under limit", content: "hello", limit: 10},
		{name: "exactly at limit", content: "hello", limit: 5},
		{name: "over limit", content: "hello world", limit: 5, wantErr: true},
		{name: "empty", content: "", limit: 10},
		{name: "zero limit with content", content: "h", limit: 0, wantErr: true},
		{name: "zero limit empty", content: "", limit: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := netutil.ReadAll(strings.NewReader(tt.content), tt.limit)
			if tt.wantErr {
				require.ErrorIs(t, err, netutil.ErrSizeLimitExceeded)
				assert.LessOrEqual(t, int64(len(got)), tt.limit)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.content, string(got))
		})
	}
}

func TestLimitedReader_OneByteReads(t *testing.T) {
	t.Parallel()

	got, err := netutil.ReadAll(iotest.OneByteReader(strings.NewReader("abcdef")), 6)
	require.NoError(t, err)
	assert.Equal(t, "abcdef", string(got))

	_, err = netutil.ReadAll(iotest.OneByteReader(strings.NewReader("abcdefg")), 6)
	assert.ErrorIs(t, err, netutil.ErrSizeLimitExceeded)
}

func TestSizeLimitExceededError_Message(t *testing.T) {
	t.Parallel()

	err := &netutil.SizeLimitExceededError{Limit: 10 * 1024 * 1024}
	assert.Equal(t, "response body exceeds 10 MiB limit", err.Error())
}

func TestFormatSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "512 B", netutil.FormatSize(512))
	assert.Equal(t, "1.5 KiB", netutil.FormatSize(1536))
	assert.Equal(t, "2.0 MiB", netutil.FormatSize(2*1024*1024))
	assert.Equal(t, "1.0 GiB", netutil.FormatSize(1024*1024*1024))
}
