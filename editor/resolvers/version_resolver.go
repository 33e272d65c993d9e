// Package resolvers implements version constraint resolution.
package resolvers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Latest selects the highest available version.
const Latest = "latest"

// SemverResolver implements ports.VersionResolver using Masterminds/semver.
type SemverResolver struct{}

// NewSemverResolver creates a new SemverResolver.
func NewSemverResolver() *SemverResolver {
	return &SemverResolver{}
}

// Resolve returns the highest available version that satisfies the constraint.
// An empty constraint or "latest" accepts any version. Available entries that
// are not semantic versions are skipped. The registry's spelling of the chosen
// version is returned unchanged.
func (r *SemverResolver) Resolve(constraint string, available []string) (string, error) {
	constraint = strings.TrimSpace(constraint)

	// Prereleases are excluded by ">= 0", so "latest" is handled without a constraint.
	var c *semver.Constraints
	if constraint != "" && constraint != Latest {
		var err error
		c, err = semver.NewConstraint(constraint)
		if err != nil {
			return "", fmt.Errorf("invalid version constraint %q: %w", constraint, err)
		}
	}

	var valid []*semver.Version
	for _, vStr := range available {
		v, err := semver.NewVersion(vStr)
		if err != nil {
			continue
		}
		if c == nil || c.Check(v) {
			valid = append(valid, v)
		}
	}

	if len(valid) == 0 {
		if c == nil {
			return "", fmt.Errorf("no semantic versions available")
		}
		return "", fmt.Errorf("no version satisfies constraint %q from available options", constraint)
	}

	// Ascending, so the last element is the highest.
	sort.Sort(semver.Collection(valid))

	return valid[len(valid)-1].Original(), nil
}
