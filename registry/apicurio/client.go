// Package apicurio implements ports.SchemaRegistry against the Apicurio
// Registry v3 REST API.
package apicurio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/reglet-dev/schemactl/editor/entities"
	"github.com/reglet-dev/schemactl/editor/values"
	"github.com/reglet-dev/schemactl/netutil"
)

const (
	// DefaultMaxBodySize bounds every response body.
	DefaultMaxBodySize = 10 * 1024 * 1024
	// DefaultSearchLimit is the number of artifacts requested by a search.
	DefaultSearchLimit = 1000

	requestIDHeader = "X-Request-ID"
)

// Client is an Apicurio Registry v3 client.
type Client struct {
	baseURL     *url.URL
	http        *http.Client
	logger      *slog.Logger
	maxBodySize int64
	searchLimit int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMaxBodySize sets the maximum accepted response body size.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithSearchLimit sets how many artifacts or versions a listing requests.
func WithSearchLimit(limit int) Option {
	return func(c *Client) {
		if limit > 0 {
			c.searchLimit = limit
		}
	}
}

// New creates a client for the registry API rooted at baseURL,
// e.g. http://localhost:8080/apis/registry/v3.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := netutil.ParseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:     u,
		http:        netutil.NewHTTPClient(30*time.Second, false),
		logger:      slog.Default(),
		maxBodySize: DefaultMaxBodySize,
		searchLimit: DefaultSearchLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SearchArtifacts lists JSON artifacts with a single search request.
func (c *Client) SearchArtifacts(ctx context.Context) ([]entities.Artifact, error) {
	query := url.Values{}
	query.Set("artifactType", entities.ArtifactTypeJSON)
	query.Set("limit", strconv.Itoa(c.searchLimit))

	var out artifactSearchResults
	if err := c.getJSON(ctx, c.endpoint("search", "artifacts"), query, &out); err != nil {
		return nil, fmt.Errorf("searching artifacts: %w", err)
	}

	artifacts := make([]entities.Artifact, 0, len(out.Artifacts))
	for _, a := range out.Artifacts {
		artifact, err := a.toEntity()
		if err != nil {
			c.logger.Warn("skipping artifact with invalid id", "group", a.GroupID, "artifact", a.ArtifactID, "error", err)
			continue
		}
		artifacts = append(artifacts, artifact)
	}
	if out.Count > len(out.Artifacts) {
		c.logger.Warn("search results truncated", "returned", len(out.Artifacts), "count", out.Count, "limit", c.searchLimit)
	}
	return artifacts, nil
}

// GetArtifact returns artifact metadata.
func (c *Client) GetArtifact(ctx context.Context, ref values.ArtifactRef) (*entities.Artifact, error) {
	var out artifactMetaData
	if err := c.getJSON(ctx, c.artifactEndpoint(ref), nil, &out); err != nil {
		return nil, mapError(err, ref, "")
	}
	artifact, err := out.toEntity()
	if err != nil {
		return nil, err
	}
	return &artifact, nil
}

// ListVersions returns an artifact's versions in registry order.
func (c *Client) ListVersions(ctx context.Context, ref values.ArtifactRef) ([]entities.Version, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(c.searchLimit))

	var out versionSearchResults
	if err := c.getJSON(ctx, c.artifactEndpoint(ref, "versions"), query, &out); err != nil {
		return nil, mapError(err, ref, "")
	}

	versions := make([]entities.Version, 0, len(out.Versions))
	for _, v := range out.Versions {
		versions = append(versions, v.toEntity(ref))
	}
	return versions, nil
}

// GetContent fetches the raw content of one version.
func (c *Client) GetContent(ctx context.Context, ref values.ArtifactRef, version string) ([]byte, error) {
	body, err := c.do(ctx, http.MethodGet, c.artifactEndpoint(ref, "versions", version, "content"), nil, nil)
	if err != nil {
		return nil, mapError(err, ref, version)
	}
	return body, nil
}

// CreateArtifact creates an artifact together with its first version.
func (c *Client) CreateArtifact(ctx context.Context, artifact entities.NewArtifact) (*entities.Version, error) {
	req := createArtifact{
		ArtifactID:   artifact.Ref.Artifact(),
		ArtifactType: entities.ArtifactTypeJSON,
		Name:         artifact.Name,
		Description:  artifact.Description,
		FirstVersion: &createVersion{
			Version: artifact.Version,
			Content: versionContent{
				Content:     string(artifact.Content),
				ContentType: entities.ContentTypeJSON,
			},
		},
	}

	var out createArtifactResponse
	if err := c.sendJSON(ctx, http.MethodPost, c.endpoint("groups", artifact.Ref.Group(), "artifacts"), req, &out); err != nil {
		return nil, mapError(err, artifact.Ref, "")
	}
	v := out.Version.toEntity(artifact.Ref)
	return &v, nil
}

// CreateVersion appends a version to an existing artifact.
func (c *Client) CreateVersion(ctx context.Context, ref values.ArtifactRef, version string, content []byte) (*entities.Version, error) {
	req := createVersion{
		Version: version,
		Content: versionContent{
			Content:     string(content),
			ContentType: entities.ContentTypeJSON,
		},
	}

	var out versionMetaData
	if err := c.sendJSON(ctx, http.MethodPost, c.artifactEndpoint(ref, "versions"), req, &out); err != nil {
		return nil, mapError(err, ref, version)
	}
	v := out.toEntity(ref)
	return &v, nil
}

// UpdateArtifactMetadata replaces the artifact's name and description.
func (c *Client) UpdateArtifactMetadata(ctx context.Context, ref values.ArtifactRef, name, description string) error {
	req := editableArtifactMetaData{Name: name, Description: description}
	if err := c.sendJSON(ctx, http.MethodPut, c.artifactEndpoint(ref), req, nil); err != nil {
		return mapError(err, ref, "")
	}
	return nil
}

func (c *Client) endpoint(segments ...string) *url.URL {
	return c.baseURL.JoinPath(segments...)
}

func (c *Client) artifactEndpoint(ref values.ArtifactRef, segments ...string) *url.URL {
	return c.endpoint(append([]string{"groups", ref.Group(), "artifacts", ref.Artifact()}, segments...)...)
}

func (c *Client) getJSON(ctx context.Context, endpoint *url.URL, query url.Values, out any) error {
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}
	body, err := c.do(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", endpoint.Path, err)
	}
	return nil
}

func (c *Client) sendJSON(ctx context.Context, method string, endpoint *url.URL, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	body, err := c.do(ctx, method, endpoint, payload, http.Header{"Content-Type": {"application/json"}})
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", endpoint.Path, err)
	}
	return nil
}

// do performs one request and returns the response body. Error statuses
// become *ProblemError.
func (c *Client) do(ctx context.Context, method string, endpoint *url.URL, payload []byte, header http.Header) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json, */*")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, netutil.StripCredentials(endpoint.String()), err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := netutil.ReadAll(resp.Body, c.maxBodySize)
	c.logger.Debug("registry request",
		"request_id", requestID,
		"method", method,
		"url", netutil.StripCredentials(endpoint.String()),
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", endpoint.Path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, newProblemError(resp.StatusCode, body, requestID)
	}
	return body, nil
}
