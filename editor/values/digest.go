package values

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/gowebpki/jcs"
)

// Digest is a content hash of a schema document.
type Digest struct {
	algorithm string // sha256
	value     string // hex-encoded hash
}

// ParseDigest parses a digest string (e.g., "sha256:abc123...").
func ParseDigest(s string) (Digest, error) {
	algorithm, value, found := strings.Cut(s, ":")
	if !found || value == "" {
		return Digest{}, fmt.Errorf("invalid digest format: %s", s)
	}
	if algorithm != "sha256" {
		return Digest{}, fmt.Errorf("unsupported digest algorithm: %s", algorithm)
	}
	return Digest{algorithm: algorithm, value: value}, nil
}

// ComputeDigest hashes the RFC 8785 canonical form of a JSON document, so
// whitespace and key order do not affect the result.
func ComputeDigest(content []byte) (Digest, error) {
	canonical, err := jcs.Transform(content)
	if err != nil {
		return Digest{}, fmt.Errorf("canonicalizing content: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return Digest{algorithm: "sha256", value: hex.EncodeToString(sum[:])}, nil
}

// String returns the canonical digest string.
func (d Digest) String() string {
	if d.IsEmpty() {
		return ""
	}
	return d.algorithm + ":" + d.value
}

// IsEmpty returns true if this is the zero value.
func (d Digest) IsEmpty() bool {
	return d.value == ""
}

// Equals checks equality with another digest.
func (d Digest) Equals(other Digest) bool {
	return d.algorithm == other.algorithm && d.value == other.value
}

// Verify checks that content hashes to this digest.
func (d Digest) Verify(content []byte) error {
	computed, err := ComputeDigest(content)
	if err != nil {
		return err
	}
	if !d.Equals(computed) {
		return fmt.Errorf("digest mismatch: expected %s, got %s", d, computed)
	}
	return nil
}
