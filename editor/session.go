package editor

import (
	"fmt"

	"github.com/reglet-dev/schemactl/editor/entities"
	"github.com/reglet-dev/schemactl/editor/values"
	"github.com/reglet-dev/schemactl/schema"
)

// Session is an in-memory edit of one artifact version. The baseline document
// is kept untouched so the draft can be classified against it on save.
// A Session is not safe for concurrent use.
type Session struct {
	artifact entities.Artifact
	original *schema.Document
	draft    *schema.Document
	ref      values.ArtifactRef
	version  string
}

// Field is a top-level field as shown to the user.
type Field struct {
	Name   string
	Type   string
	Format string
}

// Preview is the outcome a save would have.
type Preview struct {
	Report schema.Report
	Change schema.ChangeType
	From   string
	To     string
}

func newSession(artifact entities.Artifact, version string, doc *schema.Document) *Session {
	return &Session{
		artifact: artifact,
		ref:      artifact.Ref,
		version:  version,
		original: doc.Clone(),
		draft:    doc,
	}
}

// Ref returns the artifact being edited.
func (s *Session) Ref() values.ArtifactRef {
	return s.ref
}

// Artifact returns the artifact metadata loaded when the session opened.
func (s *Session) Artifact() entities.Artifact {
	return s.artifact
}

// Version returns the baseline version.
func (s *Session) Version() string {
	return s.version
}

// Original returns a copy of the baseline document.
func (s *Session) Original() *schema.Document {
	return s.original.Clone()
}

// Draft returns the document being edited. Changes to it are part of the session.
func (s *Session) Draft() *schema.Document {
	return s.draft
}

// Fields lists the draft's top-level fields sorted by name.
func (s *Session) Fields() []Field {
	names := s.draft.FieldNames()
	fields := make([]Field, 0, len(names))
	for _, name := range names {
		sub, _ := s.draft.Field(name)
		f := Field{Name: name}
		if sub != nil {
			f.Type = sub.Type.String()
			f.Format = sub.Format
			if v, ok := sub.Boolean(); ok {
				f.Type = fmt.Sprintf("%t", v)
			}
		}
		fields = append(fields, f)
	}
	return fields
}

// SetTitle changes the draft title.
func (s *Session) SetTitle(title string) {
	s.draft.Title = title
}

// SetDescription changes the draft description.
func (s *Session) SetDescription(description string) {
	s.draft.Description = description
}

// AddField adds a top-level field of the given kind to the draft.
func (s *Session) AddField(name string, kind schema.FieldKind) error {
	return s.draft.AddField(name, kind)
}

// RemoveField removes a top-level field from the draft.
func (s *Session) RemoveField(name string) error {
	return s.draft.RemoveField(name)
}

// MetadataChanged reports whether the draft's title or description differ
// from the baseline.
func (s *Session) MetadataChanged() bool {
	return s.draft.Title != s.original.Title || s.draft.Description != s.original.Description
}

// Preview classifies the draft against the baseline and computes the version
// a save would create.
func (s *Session) Preview() (Preview, error) {
	report := schema.Diff(s.original, s.draft)
	change := schema.Classify(s.original, s.draft)
	next, err := schema.NextVersion(s.version, change)
	if err != nil {
		return Preview{}, err
	}
	return Preview{
		Report: report,
		Change: change,
		From:   s.version,
		To:     next,
	}, nil
}

// rebase makes the draft the new baseline at version. Unless metadataSaved,
// the previous title and description are kept so the change stays pending.
func (s *Session) rebase(version string, metadataSaved bool) {
	title, description := s.original.Title, s.original.Description
	s.version = version
	s.original = s.draft.Clone()
	if !metadataSaved {
		s.original.Title, s.original.Description = title, description
		return
	}
	s.artifact.Name = s.draft.Title
	s.artifact.Description = s.draft.Description
}
