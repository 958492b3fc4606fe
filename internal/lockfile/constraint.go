package lockfile

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Constraint accumulates the version range every resolution of the target
// package must satisfy during one rule evaluation. A pinned constraint comes
// from the rule file and is never replaced; otherwise the first discovered
// version anchors a caret range.
type Constraint struct {
	Range  string
	Anchor string
	Pinned bool

	parsed *semver.Constraints
}

// NewConstraint returns an accumulator, pinned when specified is non-empty.
func NewConstraint(specified string) (*Constraint, error) {
	c := &Constraint{}
	if specified == "" {
		return c, nil
	}
	parsed, err := semver.NewConstraint(specified)
	if err != nil {
		return nil, fmt.Errorf("invalid specifiedVersion %q: %w", specified, err)
	}
	c.Range, c.Pinned, c.parsed = specified, true, parsed
	return c, nil
}

// IsSet reports whether a range has been pinned or adopted.
func (c *Constraint) IsSet() bool { return c.parsed != nil }

// Adopt makes version the anchor of the range. It is a no-op once set.
func (c *Constraint) Adopt(version string) error {
	if c.IsSet() {
		return nil
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", version, err)
	}
	rng := "^" + v.String()
	parsed, err := semver.NewConstraint(rng)
	if err != nil {
		return err
	}
	c.Range, c.Anchor, c.parsed = rng, version, parsed
	return nil
}

// Check reports whether version satisfies the current range. An unset
// constraint accepts everything.
func (c *Constraint) Check(version string) (bool, error) {
	if !c.IsSet() {
		return true, nil
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return false, fmt.Errorf("invalid version %q: %w", version, err)
	}
	return c.parsed.Check(v), nil
}
