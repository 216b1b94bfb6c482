// SPDX-License-Identifier: Apache-2.0

// Package semver implements the hybrid version scheme used by package feeds:
// SemVer 2.0 ordering extended with an optional fourth numeric component and a
// trailing "_N" package-release integer. The package release orders between the
// numeric components and the prerelease labels, so strict SemVer producers and
// legacy four-component producers sort consistently against each other.
package semver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	mmsemver "github.com/Masterminds/semver/v3"
)

const componentCount = 4

var (
	versionExpr = regexp.MustCompile(
		`^(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:\.(\d+))?(?:-([0-9A-Za-z.-]+))?(?:\+([0-9A-Za-z.-]+))?(?:_(\d+))?$`)
	releaseSuffixExpr = regexp.MustCompile(`_(\d+)$`)
)

// Version is an immutable parsed version. Build metadata is carried for display
// only and never participates in ordering or equality.
type Version struct {
	raw        string
	numeric    [componentCount]uint64
	prerelease []string
	metadata   string
	release    uint64

	normalized string
	full       string
}

// Parse parses a version string in loose mode: one to four numeric components
// (missing trailing components default to zero), an optional dot-separated
// prerelease, optional build metadata and an optional package-release suffix.
func Parse(text string) (*Version, error) {
	trimmed := strings.TrimSpace(text)

	m := versionExpr.FindStringSubmatch(trimmed)
	if m == nil {
		return nil, NewParseError(nil, text)
	}

	v := &Version{raw: trimmed, metadata: m[6]}
	for i := 0; i < componentCount; i++ {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.ParseUint(m[i+1], 10, 31)
		if err != nil {
			return nil, NewParseError(err, text)
		}
		v.numeric[i] = n
	}

	if m[5] != "" {
		v.prerelease = strings.Split(m[5], ".")
		for _, label := range v.prerelease {
			if label == "" {
				return nil, NewParseError(nil, text)
			}
		}
	}

	if m[7] != "" {
		n, err := strconv.ParseUint(m[7], 10, 31)
		if err != nil {
			return nil, NewParseError(err, text)
		}
		v.release = n
	}

	// Rendered eagerly so a *Version shared between goroutines stays
	// read-only after Parse returns.
	v.normalized = v.render(false)
	v.full = v.render(true)

	return v, nil
}

// ParseStrict parses a version string in strict mode: the leading numeric run
// must be exactly three components forming a valid SemVer 2.0 core. Build
// metadata and the package-release suffix remain accepted. Core validation is
// delegated to the SemVer grammar before the loose parser builds the value.
func ParseStrict(text string) (*Version, error) {
	trimmed := strings.TrimSpace(text)

	core := trimmed
	if m := releaseSuffixExpr.FindStringSubmatch(core); m != nil {
		core = strings.TrimSuffix(core, m[0])
	}

	if _, err := mmsemver.StrictNewVersion(core); err != nil {
		return nil, NewParseError(err, text)
	}

	return Parse(trimmed)
}

// MustParse parses a version string in loose mode and panics on failure.
// Intended for fixed version literals.
func MustParse(text string) *Version {
	v, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return v
}

func (v *Version) Major() uint64 { return v.numeric[0] }
func (v *Version) Minor() uint64 { return v.numeric[1] }
func (v *Version) Build() uint64 { return v.numeric[2] }

// Revision returns the fourth numeric component (zero for three-component versions).
func (v *Version) Revision() uint64 { return v.numeric[3] }

// Release returns the package-release integer carried by the "_N" suffix.
func (v *Version) Release() uint64 { return v.release }

// Prerelease returns the prerelease labels in order. The slice is shared;
// callers must not mutate it.
func (v *Version) Prerelease() []string { return v.prerelease }

// Metadata returns the build metadata verbatim. It is display-only.
func (v *Version) Metadata() string { return v.metadata }

// Raw returns the exact text the version was parsed from.
func (v *Version) Raw() string { return v.raw }

// IsPrerelease reports whether the version carries any prerelease labels.
func (v *Version) IsPrerelease() bool { return len(v.prerelease) > 0 }

// Compare orders two versions. A nil version sorts below any parsed version,
// which lets callers use nil as a stable "no version" sentinel.
//
// Order of evaluation: the four numeric components lexicographically, then the
// release/prerelease distinction (a release version outranks any prerelease of
// the same numeric version), then prerelease labels element-by-element, and
// finally the package-release integer as the tie-break.
func Compare(a, b *Version) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	for i := 0; i < componentCount; i++ {
		if c := compareUint(a.numeric[i], b.numeric[i]); c != 0 {
			return c
		}
	}

	releaseCmp := compareUint(a.release, b.release)

	switch {
	case !a.IsPrerelease() && !b.IsPrerelease():
		return releaseCmp
	case !a.IsPrerelease():
		return 1
	case !b.IsPrerelease():
		return -1
	}

	if c := comparePrerelease(a.prerelease, b.prerelease); c != 0 {
		return c
	}
	return releaseCmp
}

// Compare orders the receiver against another version; see the package-level Compare.
func (v *Version) Compare(o *Version) int { return Compare(v, o) }

func (v *Version) LessThan(o *Version) bool       { return Compare(v, o) < 0 }
func (v *Version) LessOrEqual(o *Version) bool    { return Compare(v, o) <= 0 }
func (v *Version) GreaterThan(o *Version) bool    { return Compare(v, o) > 0 }
func (v *Version) GreaterOrEqual(o *Version) bool { return Compare(v, o) >= 0 }

// EqualTo reports value equality: numeric components, prerelease labels
// (case-insensitive) and package release. Build metadata is excluded.
func (v *Version) EqualTo(o *Version) bool { return Compare(v, o) == 0 }

// String returns the normalized form: major.minor.build, the revision only when
// non-zero, prerelease labels and the package-release suffix only when present.
// Build metadata is omitted. Rendered once at parse time.
func (v *Version) String() string {
	return v.normalized
}

// FullString returns the normalized form with build metadata reinserted before
// the package-release suffix. Rendered once at parse time.
func (v *Version) FullString() string {
	return v.full
}

// Key returns a stable identity string suitable for map keys. Prerelease labels
// are case-folded and build metadata is excluded, matching EqualTo.
func (v *Version) Key() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d.%d.%d.%d", v.numeric[0], v.numeric[1], v.numeric[2], v.numeric[3])
	if v.IsPrerelease() {
		sb.WriteByte('-')
		sb.WriteString(strings.ToLower(strings.Join(v.prerelease, ".")))
	}
	fmt.Fprintf(&sb, "_%d", v.release)
	return sb.String()
}

func (v *Version) render(withMetadata bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d.%d.%d", v.numeric[0], v.numeric[1], v.numeric[2])
	if v.numeric[3] > 0 {
		fmt.Fprintf(&sb, ".%d", v.numeric[3])
	}
	if v.IsPrerelease() {
		sb.WriteByte('-')
		sb.WriteString(strings.Join(v.prerelease, "."))
	}
	if withMetadata && v.metadata != "" {
		sb.WriteByte('+')
		sb.WriteString(v.metadata)
	}
	if v.release > 0 {
		fmt.Fprintf(&sb, "_%d", v.release)
	}
	return sb.String()
}

func comparePrerelease(a, b []string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	for i := 0; i < n; i++ {
		if c := compareLabel(a[i], b[i]); c != 0 {
			return c
		}
	}

	// A sequence that runs out of labels first sorts lower.
	return compareUint(uint64(len(a)), uint64(len(b)))
}

func compareLabel(a, b string) int {
	an, aNumeric := parseNumericLabel(a)
	bn, bNumeric := parseNumericLabel(b)

	switch {
	case aNumeric && bNumeric:
		return compareUint(an, bn)
	case aNumeric:
		return -1
	case bNumeric:
		return 1
	}

	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func parseNumericLabel(label string) (uint64, bool) {
	n, err := strconv.ParseUint(label, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func compareUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
