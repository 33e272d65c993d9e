package filesystem

import (
	"time"

	"github.com/reglet-dev/schemactl/editor/entities"
)

// Baseline represents the YAML structure of a baseline lock file.
type Baseline struct {
	Generated time.Time             `yaml:"generated"`
	Schemas   map[string]SchemaLock `yaml:"schemas"`
	Version   int                   `yaml:"lockfile_version"`
}

// SchemaLock represents a pinned schema version in YAML.
type SchemaLock struct {
	Fetched  time.Time `yaml:"fetched,omitempty"`
	Group    string    `yaml:"group"`
	Artifact string    `yaml:"artifact"`
	Version  string    `yaml:"version"`
	Digest   string    `yaml:"digest"`
}

// ToEntity converts the YAML representation to a domain entity.
func (b *Baseline) ToEntity() *entities.Baseline {
	entity := &entities.Baseline{
		Generated: b.Generated,
		Version:   b.Version,
		Schemas:   make(map[string]entities.SchemaLock, len(b.Schemas)),
	}

	for file, lock := range b.Schemas {
		entity.Schemas[file] = entities.SchemaLock(lock)
	}

	return entity
}

// FromEntity converts a domain baseline to its YAML representation.
func FromEntity(entity *entities.Baseline) *Baseline {
	if entity == nil {
		return nil
	}

	b := &Baseline{
		Generated: entity.Generated,
		Version:   entity.Version,
		Schemas:   make(map[string]SchemaLock, len(entity.Schemas)),
	}

	for file, lock := range entity.Schemas {
		b.Schemas[file] = SchemaLock(lock)
	}

	return b
}
