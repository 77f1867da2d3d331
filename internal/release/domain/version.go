package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-semver/semver"
	"github.com/distribution/reference"
)

// RefTypeTag is the GITHUB_REF_TYPE value of a tag push.
const RefTypeTag = "tag"

var (
	// ErrNotTagEvent is returned when the CI run was not triggered by a tag push.
	ErrNotTagEvent = errors.New("aborting, workflow not triggered by tag event")
	// ErrEmptyVersion is returned for a blank version string.
	ErrEmptyVersion = errors.New("version is empty")
	// ErrInvalidVersion is returned when the version is not a valid image tag.
	ErrInvalidVersion = errors.New("version is not a valid image tag")
)

// versionProbe is only used to run a candidate version through the image tag grammar.
var versionProbe = mustNamed("release")

// Version is the release identifier written to the chart, the git tag and the image tag.
type Version struct {
	raw string
}

// ParseVersion trims s and validates it against the container image tag grammar,
// the strictest of the places a version ends up in.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, &PreconditionError{Err: ErrEmptyVersion}
	}
	if _, err := reference.WithTag(versionProbe, s); err != nil {
		return Version{}, &PreconditionError{Err: fmt.Errorf("%w: %q", ErrInvalidVersion, s)}
	}
	return Version{raw: s}, nil
}

// VersionFromRef resolves the version from CI reference inputs. The reference
// must be a tag and its name must be present.
func VersionFromRef(refName, refType string) (Version, error) {
	if refName == "" || refType != RefTypeTag {
		return Version{}, &PreconditionError{Err: ErrNotTagEvent}
	}
	return ParseVersion(refName)
}

// String returns the version as entered.
func (v Version) String() string {
	return v.raw
}

// IsZero reports whether v was never resolved.
func (v Version) IsZero() bool {
	return v.raw == ""
}

// IsPrerelease reports whether v carries a semver pre-release part (e.g. 1.2.0-rc1).
// Versions that are not semver fall back to looking for an "-rc" marker.
func (v Version) IsPrerelease() bool {
	sv, err := semver.NewVersion(strings.TrimPrefix(v.raw, "v"))
	if err != nil {
		return strings.Contains(v.raw, "-rc")
	}
	return sv.PreRelease != ""
}

// ImageRef builds the tagged image reference for repository, e.g.
// "place1/wg-access-server:1.2.0".
func ImageRef(repository string, v Version) (string, error) {
	named, err := reference.ParseNormalizedNamed(repository)
	if err != nil {
		return "", fmt.Errorf("invalid image repository %q: %w", repository, err)
	}
	tagged, err := reference.WithTag(named, v.String())
	if err != nil {
		return "", fmt.Errorf("invalid image tag %q: %w", v, err)
	}
	return reference.FamiliarString(tagged), nil
}

func mustNamed(name string) reference.Named {
	n, err := reference.ParseNormalizedNamed(name)
	if err != nil {
		panic(err)
	}
	return n
}
