package netutil

import (
	"fmt"
	"net/url"
	"strings"
)

// StripCredentials removes user:password@ from a URL for safe logging.
// Returns the original string if the URL cannot be parsed.
func StripCredentials(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	parsed.User = nil
	return parsed.String()
}

// ParseBaseURL validates a registry base URL. It must be absolute http or
// https with a host; a trailing slash is removed so paths can be appended.
func ParseBaseURL(rawURL string) (*url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("invalid registry URL %q: %w", StripCredentials(rawURL), err)
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return nil, fmt.Errorf("registry URL %q must use http or https", StripCredentials(rawURL))
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("registry URL %q has no host", StripCredentials(rawURL))
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	parsed.RawPath = ""
	return parsed, nil
}

// IsHTTPS returns true if the URL uses the HTTPS scheme.
func IsHTTPS(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(parsed.Scheme, "https")
}
