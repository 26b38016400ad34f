// Package matchspec parses package requests of the form `[channel::]name[ constraint]`.
package matchspec

import (
	"errors"
	"fmt"
	"strings"

	semver "github.com/Masterminds/semver/v3"

	"github.com/conn-castle/globalenv/internal/messages"
	"github.com/conn-castle/globalenv/internal/names"
)

// ErrInvalidSpec is wrapped by every parse failure in this package.
var ErrInvalidSpec = errors.New("invalid match spec")

// AnyVersion is the manifest spelling of an unconstrained dependency.
const AnyVersion = "*"

// Spec is a requested package and its optional channel and version constraint.
type Spec struct {
	Name    names.PackageName
	Channel string
	// Version is the constraint as written by the user; empty means any version.
	Version string

	constraint *semver.Constraints
}

// Parse parses a user supplied spec such as `black`, `numpy>=1.26`, `python 3.12.*` or
// `conda-forge::jupyter =1.0`.
func Parse(s string) (Spec, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Spec{}, fmt.Errorf("%w: "+messages.MatchSpecEmpty, ErrInvalidSpec)
	}
	channel := ""
	if before, after, found := strings.Cut(raw, "::"); found {
		channel = strings.TrimSpace(before)
		raw = strings.TrimSpace(after)
		if channel == "" {
			return Spec{}, fmt.Errorf("%w: "+messages.MatchSpecEmptyChannelFmt, ErrInvalidSpec, s)
		}
	}

	nameEnd := strings.IndexFunc(raw, func(r rune) bool { return !isNameRune(r) })
	if nameEnd < 0 {
		nameEnd = len(raw)
	}
	name, err := names.ParsePackageName(raw[:nameEnd])
	if err != nil {
		return Spec{}, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}
	version := strings.TrimSpace(raw[nameEnd:])
	if version == AnyVersion {
		version = ""
	}

	spec := Spec{Name: name, Channel: channel, Version: version}
	if version != "" {
		constraint, err := compileConstraint(version)
		if err != nil {
			return Spec{}, fmt.Errorf("%w: "+messages.MatchSpecInvalidVersionFmt, ErrInvalidSpec, version, s, err)
		}
		spec.constraint = constraint
	}
	return spec, nil
}

// ParseDependency parses a `depends` entry of a package record (`name [constraint [build]]`).
// Constraints that use syntax semver cannot express are treated as unconstrained.
func ParseDependency(s string) (Spec, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Spec{}, fmt.Errorf("%w: "+messages.MatchSpecEmpty, ErrInvalidSpec)
	}
	name, err := names.ParsePackageName(fields[0])
	if err != nil {
		return Spec{}, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}
	spec := Spec{Name: name}
	if len(fields) > 1 && fields[1] != AnyVersion {
		if constraint, err := compileConstraint(fields[1]); err == nil {
			spec.Version = fields[1]
			spec.constraint = constraint
		}
	}
	return spec, nil
}

// String renders the spec back to its canonical textual form.
func (s Spec) String() string {
	var b strings.Builder
	if s.Channel != "" {
		b.WriteString(s.Channel)
		b.WriteString("::")
	}
	b.WriteString(s.Name.Source())
	if s.Version != "" {
		b.WriteString(" ")
		b.WriteString(s.Version)
	}
	return b.String()
}

// VersionOrAny returns the constraint text, or AnyVersion when unconstrained.
func (s Spec) VersionOrAny() string {
	if s.Version == "" {
		return AnyVersion
	}
	return s.Version
}

// Matches reports whether version satisfies the spec's constraint.
// Versions that are not semver-like never satisfy a constraint.
func (s Spec) Matches(version string) bool {
	if s.constraint == nil {
		return true
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return s.constraint.Check(v)
}

// Constrained reports whether the spec restricts versions at all.
func (s Spec) Constrained() bool {
	return s.constraint != nil
}

func isNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '-', r == '.', r == '+':
		return true
	}
	return false
}

// compileConstraint translates conda-style operators into semver constraint syntax.
// `==v` is exact, `=v` and a bare `v` are prefix matches (`v.*`).
func compileConstraint(version string) (*semver.Constraints, error) {
	alternatives := strings.Split(version, "||")
	translated := make([]string, 0, len(alternatives))
	for _, alt := range alternatives {
		atoms := strings.Split(alt, ",")
		parts := make([]string, 0, len(atoms))
		for _, atom := range atoms {
			atom = strings.TrimSpace(atom)
			if atom == "" {
				return nil, fmt.Errorf(messages.MatchSpecEmptyAtomFmt, version)
			}
			parts = append(parts, translateAtom(atom))
		}
		translated = append(translated, strings.Join(parts, ", "))
	}
	return semver.NewConstraint(strings.Join(translated, " || "))
}

func translateAtom(atom string) string {
	for _, op := range []string{">=", "<=", "!=", ">", "<"} {
		if strings.HasPrefix(atom, op) {
			return op + strings.TrimSpace(strings.TrimPrefix(atom, op))
		}
	}
	if strings.HasPrefix(atom, "==") {
		return "=" + strings.TrimSpace(strings.TrimPrefix(atom, "=="))
	}
	if strings.HasPrefix(atom, "~=") {
		return "~" + strings.TrimSpace(strings.TrimPrefix(atom, "~="))
	}
	atom = strings.TrimSpace(strings.TrimPrefix(atom, "="))
	if atom == AnyVersion || strings.HasSuffix(atom, "*") {
		return atom
	}
	if strings.Count(atom, ".") >= 2 {
		return "=" + atom
	}
	return atom + ".*"
}
