package apicurio

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/reglet-dev/schemactl/editor/entities"
	"github.com/reglet-dev/schemactl/editor/values"
)

const maxDetailLength = 200

// ProblemError is an RFC 7807 problem details response from the registry.
type ProblemError struct {
	Type      string `json:"type,omitempty"`
	Title     string `json:"title,omitempty"`
	Detail    string `json:"detail,omitempty"`
	Instance  string `json:"instance,omitempty"`
	Name      string `json:"name,omitempty"`
	RequestID string `json:"-"`
	Status    int    `json:"status,omitempty"`
}

func (e *ProblemError) Error() string {
	msg := fmt.Sprintf("registry returned %d %s", e.Status, http.StatusText(e.Status))
	switch {
	case e.Detail != "":
		msg += ": " + e.Detail
	case e.Title != "":
		msg += ": " + e.Title
	}
	if e.RequestID != "" {
		msg += " (request " + e.RequestID + ")"
	}
	return msg
}

func newProblemError(status int, body []byte, requestID string) *ProblemError {
	problem := &ProblemError{}
	if err := json.Unmarshal(body, problem); err != nil {
		problem = &ProblemError{Detail: truncate(strings.TrimSpace(string(body)))}
	}
	// The status line is authoritative.
	problem.Status = status
	problem.RequestID = requestID
	return problem
}

func truncate(s string) string {
	if len(s) <= maxDetailLength {
		return s
	}
	return s[:maxDetailLength] + "..."
}

// mapError translates registry problems into entity errors, keeping the
// problem in the chain.
func mapError(err error, ref values.ArtifactRef, version string) error {
	var problem *ProblemError
	if !errors.As(err, &problem) {
		return err
	}

	switch problem.Status {
	case http.StatusNotFound:
		if version != "" && problem.Name != "ArtifactNotFoundException" {
			return fmt.Errorf("%w: %w", &entities.VersionNotFoundError{Ref: ref, Version: version}, problem)
		}
		return fmt.Errorf("%w: %w", &entities.ArtifactNotFoundError{Ref: ref}, problem)
	case http.StatusConflict:
		return fmt.Errorf("%w: %w", &entities.ConflictError{Ref: ref, Version: version}, problem)
	default:
		return err
	}
}
