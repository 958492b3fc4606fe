// Package lockfile reads pnpm lockfiles and checks version consistency of a
// package across a project's dependency graph.
package lockfile

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	rerrors "github.com/jeremymeng/rushstack/internal/errors"
)

// Document is a parsed pnpm-lock.yaml. Mapping order from the file is kept
// wherever traversal order matters.
type Document struct {
	LockfileVersion Version                    `yaml:"lockfileVersion"`
	Importers       Importers                  `yaml:"importers"`
	Packages        map[string]PackageSnapshot `yaml:"packages"`
	// Snapshots holds dependency edges in lockfile v9+, where packages only
	// carries resolution metadata.
	Snapshots map[string]PackageSnapshot `yaml:"snapshots"`
}

// Version is the raw lockfileVersion value. pnpm writes it as a number in
// older lockfiles (5.4) and as a quoted string in newer ones ('6.0').
type Version string

// UnmarshalYAML accepts any scalar.
func (v *Version) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: lockfileVersion must be a scalar", n.Line)
	}
	*v = Version(n.Value)
	return nil
}

// Major returns the major schema version.
func (v Version) Major() (int, error) {
	s := strings.TrimSpace(string(v))
	if s == "" {
		return 0, fmt.Errorf("lockfileVersion is missing")
	}
	head, _, _ := strings.Cut(s, ".")
	major, err := strconv.Atoi(head)
	if err != nil {
		return 0, fmt.Errorf("unrecognized lockfileVersion %q", s)
	}
	return major, nil
}

// DependencyRef is one dependency value. Importers in lockfile v6+ record
// {specifier, version}; older lockfiles and package snapshots use a bare
// version string.
type DependencyRef struct {
	Version   string `yaml:"version"`
	Specifier string `yaml:"specifier,omitempty"`
}

// UnmarshalYAML accepts either a scalar version or a {version, specifier} mapping.
func (r *DependencyRef) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		r.Version = n.Value
		return nil
	case yaml.MappingNode:
		var aux struct {
			Version   string `yaml:"version"`
			Specifier string `yaml:"specifier"`
		}
		if err := n.Decode(&aux); err != nil {
			return err
		}
		r.Version, r.Specifier = aux.Version, aux.Specifier
		return nil
	default:
		return fmt.Errorf("line %d: dependency must be a version string or a {version, specifier} mapping", n.Line)
	}
}

// Dependency is a named entry of a dependencies mapping.
type Dependency struct {
	Name string
	Ref  DependencyRef
}

// Dependencies is a dependencies mapping in document order.
type Dependencies []Dependency

// UnmarshalYAML decodes a mapping while preserving key order.
func (d *Dependencies) UnmarshalYAML(n *yaml.Node) error {
	if n.Tag == "!!null" {
		*d = nil
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: dependencies must be a mapping", n.Line)
	}
	out := make(Dependencies, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		var ref DependencyRef
		if err := n.Content[i+1].Decode(&ref); err != nil {
			return err
		}
		out = append(out, Dependency{Name: n.Content[i].Value, Ref: ref})
	}
	*d = out
	return nil
}

// Get returns the entry for name.
func (d Dependencies) Get(name string) (DependencyRef, bool) {
	for _, dep := range d {
		if dep.Name == name {
			return dep.Ref, true
		}
	}
	return DependencyRef{}, false
}

// Importer is one workspace project entry of the importers section.
type Importer struct {
	Key                  string       `yaml:"-"`
	Dependencies         Dependencies `yaml:"dependencies"`
	DevDependencies      Dependencies `yaml:"devDependencies"`
	OptionalDependencies Dependencies `yaml:"optionalDependencies"`
}

// Importers is the importers section in document order.
type Importers []Importer

// UnmarshalYAML decodes the importers mapping while preserving key order.
func (im *Importers) UnmarshalYAML(n *yaml.Node) error {
	if n.Tag == "!!null" {
		*im = nil
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: importers must be a mapping", n.Line)
	}
	out := make(Importers, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		var imp Importer
		if err := n.Content[i+1].Decode(&imp); err != nil {
			return err
		}
		imp.Key = n.Content[i].Value
		out = append(out, imp)
	}
	*im = out
	return nil
}

// PackageSnapshot is one entry of the packages (or snapshots) section.
type PackageSnapshot struct {
	Resolution           map[string]any `yaml:"resolution"`
	Dependencies         Dependencies   `yaml:"dependencies"`
	OptionalDependencies Dependencies   `yaml:"optionalDependencies"`
	Dev                  *bool          `yaml:"dev"`
}

// Package looks up a dependency path, preferring the v9 snapshots section.
func (d *Document) Package(dependencyPath string) (PackageSnapshot, bool) {
	if d.Snapshots != nil {
		if snap, ok := d.Snapshots[dependencyPath]; ok {
			return snap, true
		}
	}
	snap, ok := d.Packages[dependencyPath]
	return snap, ok
}

// Format returns the dependency path convention of the document.
func (d *Document) Format() (PathFormat, error) {
	major, err := d.LockfileVersion.Major()
	if err != nil {
		return PathFormat{}, err
	}
	return FormatForMajorVersion(major), nil
}

// Parse decodes lockfile YAML.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if _, err := doc.LockfileVersion.Major(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ReadFile reads and parses the lockfile at path.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rerrors.LockfileInvalid(path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, rerrors.LockfileInvalid(path, err)
	}
	return doc, nil
}
