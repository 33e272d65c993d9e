// Package netutil holds HTTP plumbing shared by the registry clients: bounded
// body reads, TLS settings, and URL helpers.
package netutil

import (
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// ErrSizeLimitExceeded matches every *SizeLimitExceededError.
var ErrSizeLimitExceeded = errors.New("size limit exceeded")

// LimitedReader reads at most Limit bytes from R and fails, rather than
// truncating silently, when R holds more.
type LimitedReader struct {
	r         io.Reader
	limit     int64
	remaining int64
}

// NewLimitedReader wraps r with a size limit.
func NewLimitedReader(r io.Reader, limit int64) *LimitedReader {
	return &LimitedReader{r: r, limit: limit, remaining: limit}
}

// Read implements io.Reader. Content of exactly limit bytes is accepted.
func (l *LimitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, &SizeLimitExceededError{Limit: l.limit}
	}
	// Allow one byte past the limit through so overflow is observable.
	if allowed := l.remaining + 1; int64(len(p)) > allowed {
		p = p[:allowed]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n - 1, &SizeLimitExceededError{Limit: l.limit}
	}
	return n, err
}

// ReadAll reads r to EOF, failing with *SizeLimitExceededError past limit bytes.
func ReadAll(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(NewLimitedReader(r, limit))
}

// SizeLimitExceededError is returned when a body is larger than allowed.
type SizeLimitExceededError struct {
	Limit int64
}

func (e *SizeLimitExceededError) Error() string {
	return fmt.Sprintf("response body exceeds %s limit", FormatSize(e.Limit))
}

// Is implements error matching for errors.Is() checks.
func (e *SizeLimitExceededError) Is(target error) bool {
	return target == ErrSizeLimitExceeded
}

// FormatSize returns a human-readable binary size, e.g. "1.5 KiB".
func FormatSize(bytes int64) string {
	if bytes < 0 {
		return fmt.Sprintf("%d B", bytes)
	}
	return humanize.IBytes(uint64(bytes))
}
