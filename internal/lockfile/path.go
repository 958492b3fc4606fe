package lockfile

import "strings"

// PathFormat describes how a lockfile spells dependency path keys.
//
//	lockfile < 6:   /name/1.0.0       /@scope/name/1.0.0_peer@1.0.0
//	lockfile 6..8:  /name@1.0.0       /@scope/name@1.0.0(peer@1.0.0)
//	lockfile >= 9:  name@1.0.0        @scope/name@1.0.0(peer@1.0.0)
type PathFormat struct {
	Prefix    string
	Separator string
}

var (
	FormatV5 = PathFormat{Prefix: "/", Separator: "/"}
	FormatV6 = PathFormat{Prefix: "/", Separator: "@"}
	FormatV9 = PathFormat{Prefix: "", Separator: "@"}
)

// FormatForMajorVersion picks the dependency path convention for a lockfile
// schema major version.
func FormatForMajorVersion(major int) PathFormat {
	switch {
	case major >= 9:
		return FormatV9
	case major >= 6:
		return FormatV6
	default:
		return FormatV5
	}
}

// Build returns the dependency path for name resolved to version.
func (f PathFormat) Build(name, version string) string {
	return f.Prefix + name + f.Separator + version
}

// Parse splits a dependency path into package name and version. Peer
// dependency suffixes are dropped from the version.
func (f PathFormat) Parse(dependencyPath string) (name, version string, ok bool) {
	s := strings.TrimPrefix(dependencyPath, f.Prefix)
	if f.Separator == "@" {
		s, _, _ = strings.Cut(s, "(")
		idx := strings.LastIndex(s, "@")
		if idx <= 0 {
			return "", "", false
		}
		return s[:idx], s[idx+1:], s[idx+1:] != ""
	}

	segments := strings.Split(s, "/")
	nameParts := 1
	if strings.HasPrefix(s, "@") {
		nameParts = 2
	}
	if len(segments) <= nameParts {
		return "", "", false
	}
	name = strings.Join(segments[:nameParts], "/")
	version, _, _ = strings.Cut(segments[nameParts], "_")
	return name, version, version != ""
}

// IsLink reports whether a dependency path or version points at another
// workspace project instead of a registry package.
func IsLink(s string) bool {
	return strings.Contains(s, "link:")
}
