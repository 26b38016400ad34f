// Package names defines the validated identifier types shared by the manifest, the
// installer and the CLI: environment names, exposed names, executable mappings and
// package names.
package names

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/conn-castle/globalenv/internal/messages"
)

// ErrInvalidIdentifier is wrapped by every parse failure in this package.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// ToolName is reserved and can never be used as an exposed name.
const ToolName = "genv"

var (
	environmentNamePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)
	packageNamePattern     = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.+-]*$`)
)

// EnvironmentName identifies one isolated environment in the global manifest.
type EnvironmentName string

// ParseEnvironmentName validates s against the environment-name grammar.
func ParseEnvironmentName(s string) (EnvironmentName, error) {
	if !environmentNamePattern.MatchString(s) {
		return "", fmt.Errorf("%w: "+messages.NamesInvalidEnvironmentFmt, ErrInvalidIdentifier, s)
	}
	return EnvironmentName(s), nil
}

// String returns the environment name.
func (n EnvironmentName) String() string {
	return string(n)
}

// Set implements pflag.Value so the name can be bound directly to a CLI flag.
func (n *EnvironmentName) Set(s string) error {
	parsed, err := ParseEnvironmentName(s)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// Type implements pflag.Value.
func (n *EnvironmentName) Type() string {
	return "name"
}

// ExposedName is the public alias under which an executable is published.
type ExposedName string

// ParseExposedName validates s as an exposed name.
func ParseExposedName(s string) (ExposedName, error) {
	switch {
	case s == "":
		return "", fmt.Errorf("%w: "+messages.NamesExposedEmpty, ErrInvalidIdentifier)
	case s == "." || s == "..":
		return "", fmt.Errorf("%w: "+messages.NamesExposedInvalidFmt, ErrInvalidIdentifier, s)
	case strings.ContainsAny(s, "/\\ \t\r\n"):
		return "", fmt.Errorf("%w: "+messages.NamesExposedInvalidFmt, ErrInvalidIdentifier, s)
	case s == ToolName:
		return "", fmt.Errorf("%w: "+messages.NamesExposedReservedFmt, ErrInvalidIdentifier, s)
	}
	return ExposedName(s), nil
}

// String returns the exposed name.
func (n ExposedName) String() string {
	return string(n)
}

// Mapping pairs an exposed name with the executable it resolves to inside an environment.
type Mapping struct {
	exposed    ExposedName
	executable string
}

// NewMapping builds a mapping from an already validated exposed name.
func NewMapping(exposed ExposedName, executable string) Mapping {
	return Mapping{exposed: exposed, executable: executable}
}

// ParseMapping parses `exposed=executable`, or a bare `executable` which is exposed under
// its own name.
func ParseMapping(s string) (Mapping, error) {
	exposedPart, executable, found := strings.Cut(s, "=")
	if !found {
		executable = exposedPart
	}
	exposedPart = strings.TrimSpace(exposedPart)
	executable = strings.TrimSpace(executable)
	if executable == "" {
		return Mapping{}, fmt.Errorf("%w: "+messages.NamesMappingInvalidFmt, ErrInvalidIdentifier, s)
	}
	exposed, err := ParseExposedName(exposedPart)
	if err != nil {
		return Mapping{}, err
	}
	return NewMapping(exposed, executable), nil
}

// ExposedName returns the public alias.
func (m Mapping) ExposedName() ExposedName {
	return m.exposed
}

// Executable returns the executable name inside the environment.
func (m Mapping) Executable() string {
	return m.executable
}

// String renders the mapping in the `exposed=executable` flag syntax.
func (m Mapping) String() string {
	return string(m.exposed) + "=" + m.executable
}

// PackageName keeps the spelling a user typed alongside its normalized form.
type PackageName struct {
	source string
}

// ParsePackageName validates s as a package name.
func ParsePackageName(s string) (PackageName, error) {
	if !packageNamePattern.MatchString(s) {
		return PackageName{}, fmt.Errorf("%w: "+messages.NamesInvalidPackageFmt, ErrInvalidIdentifier, s)
	}
	return PackageName{source: s}, nil
}

// Source returns the name as it was supplied.
func (p PackageName) Source() string {
	return p.source
}

// Normalized returns the lower-case form used for comparisons and lookups.
func (p PackageName) Normalized() string {
	return strings.ToLower(p.source)
}

// String returns the normalized name.
func (p PackageName) String() string {
	return p.Normalized()
}

// IsZero reports whether p was never set.
func (p PackageName) IsZero() bool {
	return p.source == ""
}
