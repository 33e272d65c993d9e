package apicurio

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/reglet-dev/schemactl/editor/entities"
	"github.com/reglet-dev/schemactl/editor/values"
)

// registryTime accepts RFC 3339 and the offset-without-colon form older
// registry builds emit (2024-05-21T13:26:07+0000).
type registryTime struct {
	time.Time
}

var registryTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05.000Z0700",
}

func (t *registryTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", data, err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range registryTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

type artifactMetaData struct {
	CreatedOn    registryTime      `json:"createdOn"`
	ModifiedOn   registryTime      `json:"modifiedOn"`
	Labels       map[string]string `json:"labels,omitempty"`
	GroupID      string            `json:"groupId"`
	ArtifactID   string            `json:"artifactId"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	ArtifactType string            `json:"artifactType"`
	Owner        string            `json:"owner"`
	ModifiedBy   string            `json:"modifiedBy"`
}

func (a artifactMetaData) toEntity() (entities.Artifact, error) {
	ref, err := values.NewArtifactRef(a.GroupID, a.ArtifactID)
	if err != nil {
		return entities.Artifact{}, err
	}
	return entities.Artifact{
		Ref:          ref,
		Name:         a.Name,
		Description:  a.Description,
		ArtifactType: a.ArtifactType,
		Owner:        a.Owner,
		ModifiedBy:   a.ModifiedBy,
		CreatedOn:    a.CreatedOn.Time,
		ModifiedOn:   a.ModifiedOn.Time,
		Labels:       a.Labels,
	}, nil
}

type artifactSearchResults struct {
	Artifacts []artifactMetaData `json:"artifacts"`
	Count     int                `json:"count"`
}

type versionMetaData struct {
	CreatedOn    registryTime `json:"createdOn"`
	Version      string       `json:"version"`
	ArtifactType string       `json:"artifactType"`
	Owner        string       `json:"owner"`
	State        string       `json:"state"`
	GlobalID     int64        `json:"globalId"`
	ContentID    int64        `json:"contentId"`
}

func (v versionMetaData) toEntity(ref values.ArtifactRef) entities.Version {
	return entities.Version{
		Ref:          ref,
		Version:      v.Version,
		ArtifactType: v.ArtifactType,
		Owner:        v.Owner,
		State:        v.State,
		CreatedOn:    v.CreatedOn.Time,
		GlobalID:     v.GlobalID,
		ContentID:    v.ContentID,
	}
}

type versionSearchResults struct {
	Versions []versionMetaData `json:"versions"`
	Count    int               `json:"count"`
}

type versionContent struct {
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
}

type createVersion struct {
	Version string         `json:"version,omitempty"`
	Content versionContent `json:"content"`
}

type createArtifact struct {
	FirstVersion *createVersion `json:"firstVersion,omitempty"`
	ArtifactID   string         `json:"artifactId"`
	ArtifactType string         `json:"artifactType"`
	Name         string         `json:"name,omitempty"`
	Description  string         `json:"description,omitempty"`
}

type createArtifactResponse struct {
	Artifact artifactMetaData `json:"artifact"`
	Version  versionMetaData  `json:"version"`
}

type editableArtifactMetaData struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
