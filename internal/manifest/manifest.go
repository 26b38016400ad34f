// Package manifest owns the global manifest: the persisted definition of every environment,
// its dependencies and its exposed executables.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/conn-castle/globalenv/internal/config"
	"github.com/conn-castle/globalenv/internal/fsutil"
	"github.com/conn-castle/globalenv/internal/matchspec"
	"github.com/conn-castle/globalenv/internal/messages"
	"github.com/conn-castle/globalenv/internal/names"
	"github.com/conn-castle/globalenv/internal/platform"
)

var (
	// ErrNotFound reports that no manifest exists at the requested path.
	ErrNotFound = errors.New("manifest not found")
	// ErrCreationDeclined reports that the user declined creating a new manifest.
	ErrCreationDeclined = errors.New("manifest creation declined")
	// ErrEnvironmentNotFound reports a mutation of an environment the manifest does not define.
	ErrEnvironmentNotFound = errors.New("environment not found")
	// ErrEnvironmentExists reports an attempt to add an environment that is already defined.
	ErrEnvironmentExists = errors.New("environment already exists")
	// ErrExposedNameTaken reports an exposed name already owned by another environment.
	ErrExposedNameTaken = errors.New("exposed name already taken")
	// ErrInvalid wraps structural problems found while decoding a manifest.
	ErrInvalid = errors.New("invalid manifest")
)

// Dependency is one requested package of an environment.
type Dependency struct {
	Name names.PackageName
	// Version is the constraint text; matchspec.AnyVersion when unconstrained.
	Version string
	// Channel pins the dependency to one channel; empty means the environment's channels.
	Channel string
}

// Spec returns the dependency as a match spec.
func (d Dependency) Spec() (matchspec.Spec, error) {
	spec, err := matchspec.Parse(d.Name.Source() + " " + d.Version)
	if err != nil {
		return matchspec.Spec{}, err
	}
	spec.Channel = d.Channel
	return spec, nil
}

// Environment is the manifest definition of one environment.
// Values returned by Manifest are copies; mutate through Manifest methods.
type Environment struct {
	name         names.EnvironmentName
	channels     []string
	platform     platform.Platform
	dependencies []Dependency
	exposed      []names.Mapping
}

// Name returns the environment name.
func (e Environment) Name() names.EnvironmentName { return e.name }

// Channels returns the ordered channel list.
func (e Environment) Channels() []string { return slices.Clone(e.channels) }

// Platform returns the platform override, if any.
func (e Environment) Platform() (platform.Platform, bool) {
	return e.platform, e.platform != ""
}

// Dependencies returns the dependencies in registration order.
func (e Environment) Dependencies() []Dependency { return slices.Clone(e.dependencies) }

// ExposedMappings returns the exposed mappings in insertion order.
func (e Environment) ExposedMappings() []names.Mapping { return slices.Clone(e.exposed) }

func (e Environment) clone() Environment {
	return Environment{
		name:         e.name,
		channels:     slices.Clone(e.channels),
		platform:     e.platform,
		dependencies: slices.Clone(e.dependencies),
		exposed:      slices.Clone(e.exposed),
	}
}

// Manifest is the in-memory global manifest bound to its file path.
type Manifest struct {
	path string
	envs []*Environment
}

// New returns an empty manifest that will be written to path on Save.
func New(path string) *Manifest {
	return &Manifest{path: path}
}

// Load reads the manifest at path. A missing file yields ErrNotFound.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf(messages.ManifestNotFoundFmt, ErrNotFound, path)
		}
		return nil, fmt.Errorf(messages.ManifestReadFailedFmt, path, err)
	}
	return Parse(data, path)
}

// Discover loads the manifest at path. When none exists, confirm (if non-nil) is asked before
// an empty manifest is returned; the file itself is first written by Save.
func Discover(path string, confirm func() (bool, error)) (*Manifest, error) {
	m, err := Load(path)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if confirm != nil {
		ok, err := confirm()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrCreationDeclined
		}
	}
	return New(path), nil
}

// Path returns the file the manifest is saved to.
func (m *Manifest) Path() string { return m.path }

// Save writes the manifest atomically, creating parent directories as needed. The output is
// Encode's sorted form; a reloaded manifest lists entries by name, not registration order.
func (m *Manifest) Save() error {
	data, err := m.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf(messages.ManifestCreateDirFmt, filepath.Dir(m.path), err)
	}
	if err := fsutil.WriteFileAtomic(m.path, data, 0o644); err != nil {
		return fmt.Errorf(messages.ManifestWriteFailedFmt, m.path, err)
	}
	return nil
}

// Clone returns a deep copy that shares no state with m.
func (m *Manifest) Clone() *Manifest {
	out := &Manifest{path: m.path, envs: make([]*Environment, 0, len(m.envs))}
	for _, env := range m.envs {
		c := env.clone()
		out.envs = append(out.envs, &c)
	}
	return out
}

// HasEnvironment reports whether name is defined.
func (m *Manifest) HasEnvironment(name names.EnvironmentName) bool {
	return m.find(name) >= 0
}

// Environment returns a copy of the named environment.
func (m *Manifest) Environment(name names.EnvironmentName) (Environment, bool) {
	idx := m.find(name)
	if idx < 0 {
		return Environment{}, false
	}
	return m.envs[idx].clone(), true
}

// Environments returns copies of every environment in manifest order.
func (m *Manifest) Environments() []Environment {
	out := make([]Environment, 0, len(m.envs))
	for _, env := range m.envs {
		out = append(out, env.clone())
	}
	return out
}

// RemoveEnvironment deletes the named environment.
func (m *Manifest) RemoveEnvironment(name names.EnvironmentName) error {
	idx := m.find(name)
	if idx < 0 {
		return fmt.Errorf(messages.ManifestEnvironmentNotFoundFmt, ErrEnvironmentNotFound, name)
	}
	m.envs = slices.Delete(m.envs, idx, idx+1)
	return nil
}

// AddEnvironment defines a new environment with the given ordered channels.
// Duplicate channels are dropped, keeping the first occurrence.
func (m *Manifest) AddEnvironment(name names.EnvironmentName, channels []string) error {
	if m.find(name) >= 0 {
		return fmt.Errorf(messages.ManifestEnvironmentExistsFmt, ErrEnvironmentExists, name)
	}
	cleaned := make([]string, 0, len(channels))
	for _, channel := range channels {
		channel = strings.TrimSpace(channel)
		if channel == "" {
			return fmt.Errorf(messages.ManifestChannelEmptyFmt, name)
		}
		if !slices.Contains(cleaned, channel) {
			cleaned = append(cleaned, channel)
		}
	}
	m.envs = append(m.envs, &Environment{name: name, channels: cleaned})
	return nil
}

// SetPlatform pins the environment to a platform.
func (m *Manifest) SetPlatform(name names.EnvironmentName, p platform.Platform) error {
	env, err := m.mustFind(name)
	if err != nil {
		return err
	}
	if _, err := platform.Parse(string(p)); err != nil {
		return err
	}
	env.platform = p
	return nil
}

// AddDependency registers spec in the environment, canonicalizing a pinned channel with
// channels. Re-adding a package replaces its entry in place.
func (m *Manifest) AddDependency(name names.EnvironmentName, spec matchspec.Spec, channels config.ChannelConfig) error {
	env, err := m.mustFind(name)
	if err != nil {
		return err
	}
	if spec.Name.IsZero() {
		return fmt.Errorf(messages.ManifestDependencyNameEmptyFmt, name)
	}
	dep := Dependency{Name: spec.Name, Version: spec.VersionOrAny()}
	if spec.Channel != "" {
		canonical, err := channels.Canonicalize(spec.Channel)
		if err != nil {
			return err
		}
		dep.Channel = canonical
	}
	for i, existing := range env.dependencies {
		if existing.Name.Normalized() == dep.Name.Normalized() {
			env.dependencies[i] = dep
			return nil
		}
	}
	env.dependencies = append(env.dependencies, dep)
	return nil
}

// AddExposedMapping adds mapping to the environment. A mapping with the same exposed name in the
// same environment is overwritten in place; one owned by another environment is an error.
func (m *Manifest) AddExposedMapping(name names.EnvironmentName, mapping names.Mapping) error {
	env, err := m.mustFind(name)
	if err != nil {
		return err
	}
	if owner, ok := m.ExposedNameOwner(mapping.ExposedName()); ok && owner != name {
		return fmt.Errorf(messages.ManifestExposedNameTakenFmt, ErrExposedNameTaken, mapping.ExposedName(), owner)
	}
	for i, existing := range env.exposed {
		if existing.ExposedName() == mapping.ExposedName() {
			env.exposed[i] = mapping
			return nil
		}
	}
	env.exposed = append(env.exposed, mapping)
	return nil
}

// ExposedNameOwner returns the environment exposing exposed, if any.
func (m *Manifest) ExposedNameOwner(exposed names.ExposedName) (names.EnvironmentName, bool) {
	for _, env := range m.envs {
		for _, mapping := range env.exposed {
			if mapping.ExposedName() == exposed {
				return env.name, true
			}
		}
	}
	return "", false
}

func (m *Manifest) find(name names.EnvironmentName) int {
	return slices.IndexFunc(m.envs, func(env *Environment) bool { return env.name == name })
}

func (m *Manifest) mustFind(name names.EnvironmentName) (*Environment, error) {
	idx := m.find(name)
	if idx < 0 {
		return nil, fmt.Errorf(messages.ManifestEnvironmentNotFoundFmt, ErrEnvironmentNotFound, name)
	}
	return m.envs[idx], nil
}
