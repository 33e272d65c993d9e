package schema

import (
	"errors"
	"fmt"
	"math"

	"github.com/Masterminds/semver/v3"
)

var (
	errMajorOverflow = errors.New("major component cannot be incremented")
	errMinorOverflow = errors.New("minor component cannot be incremented")
)

// InitialVersion is the version given to a newly created schema.
const InitialVersion = "1.0.0"

// ParseVersion parses a version of exactly three dot-separated non-negative
// integers. Prefixes ("v1.2.3"), pre-release or build suffixes, leading zeros
// and any other component count are rejected with a *MalformedVersionError.
func ParseVersion(version string) (*semver.Version, error) {
	v, err := semver.StrictNewVersion(version)
	if err != nil {
		return nil, &MalformedVersionError{Version: version, Err: err}
	}
	if v.Prerelease() != "" || v.Metadata() != "" {
		return nil, &MalformedVersionError{Version: version}
	}
	return v, nil
}

// NextVersion computes the version that follows current for the given change.
//
//   - ChangeBreaking: (major+1).0.0
//   - ChangeAdditive: major.(minor+1).0
//   - ChangeNone: current, unchanged
//
// The patch component is never incremented. current is validated for every
// change type, so a malformed version fails even when nothing changed. A
// component that cannot be incremented without wrapping is malformed too.
func NextVersion(current string, change ChangeType) (string, error) {
	v, err := ParseVersion(current)
	if err != nil {
		return "", err
	}

	switch change {
	case ChangeBreaking:
		if v.Major() == math.MaxUint64 {
			return "", &MalformedVersionError{Version: current, Err: errMajorOverflow}
		}
		next := v.IncMajor()
		return next.String(), nil
	case ChangeAdditive:
		if v.Minor() == math.MaxUint64 {
			return "", &MalformedVersionError{Version: current, Err: errMinorOverflow}
		}
		next := v.IncMinor()
		return next.String(), nil
	case ChangeNone:
		return current, nil
	default:
		return "", fmt.Errorf("unknown change type %d", int(change))
	}
}
