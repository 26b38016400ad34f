package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/conn-castle/globalenv/internal/matchspec"
	"github.com/conn-castle/globalenv/internal/messages"
	"github.com/conn-castle/globalenv/internal/names"
	"github.com/conn-castle/globalenv/internal/platform"
)

// FormatVersion is the manifest schema version written by Save.
const FormatVersion = 1

type document struct {
	Version int                    `toml:"version"`
	Envs    map[string]envDocument `toml:"envs"`
}

type envDocument struct {
	Channels     []string          `toml:"channels"`
	Platform     string            `toml:"platform,omitempty"`
	Dependencies map[string]any    `toml:"dependencies,inline"`
	Exposed      map[string]string `toml:"exposed,inline"`
}

type dependencyTable struct {
	Version string `toml:"version,omitempty"`
	Channel string `toml:"channel,omitempty"`
}

// Parse decodes manifest TOML. TOML tables carry no order, so environments, dependencies and
// mappings come back sorted by name.
func Parse(data []byte, path string) (*Manifest, error) {
	var doc document
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf(messages.ManifestUnrecognizedKeysFmt, ErrInvalid, path, strict.String())
		}
		return nil, fmt.Errorf(messages.ManifestDecodeFailedFmt, ErrInvalid, path, err)
	}
	if doc.Version != 0 && doc.Version != FormatVersion {
		return nil, fmt.Errorf(messages.ManifestUnsupportedVersionFmt, ErrInvalid, path, doc.Version, FormatVersion)
	}

	m := New(path)
	for _, rawName := range sortedKeys(doc.Envs) {
		env, err := decodeEnvironment(rawName, doc.Envs[rawName])
		if err != nil {
			return nil, fmt.Errorf(messages.ManifestEnvironmentInvalidFmt, ErrInvalid, path, rawName, err)
		}
		for _, mapping := range env.exposed {
			if owner, ok := m.ExposedNameOwner(mapping.ExposedName()); ok {
				return nil, fmt.Errorf(messages.ManifestExposedNameTakenFmt, ErrExposedNameTaken, mapping.ExposedName(), owner)
			}
		}
		m.envs = append(m.envs, env)
	}
	return m, nil
}

func decodeEnvironment(rawName string, doc envDocument) (*Environment, error) {
	name, err := names.ParseEnvironmentName(rawName)
	if err != nil {
		return nil, err
	}
	env := &Environment{name: name}
	for _, channel := range doc.Channels {
		if strings.TrimSpace(channel) == "" {
			return nil, fmt.Errorf(messages.ManifestChannelEmptyFmt, name)
		}
		env.channels = append(env.channels, channel)
	}
	if doc.Platform != "" {
		p, err := platform.Parse(doc.Platform)
		if err != nil {
			return nil, err
		}
		env.platform = p
	}
	for _, rawPkg := range sortedKeys(doc.Dependencies) {
		dep, err := decodeDependency(rawPkg, doc.Dependencies[rawPkg])
		if err != nil {
			return nil, err
		}
		env.dependencies = append(env.dependencies, dep)
	}
	for _, rawExposed := range sortedKeys(doc.Exposed) {
		exposed, err := names.ParseExposedName(rawExposed)
		if err != nil {
			return nil, err
		}
		executable := strings.TrimSpace(doc.Exposed[rawExposed])
		if executable == "" {
			return nil, fmt.Errorf(messages.ManifestExecutableEmptyFmt, rawExposed)
		}
		env.exposed = append(env.exposed, names.NewMapping(exposed, executable))
	}
	return env, nil
}

func decodeDependency(rawPkg string, value any) (Dependency, error) {
	pkg, err := names.ParsePackageName(rawPkg)
	if err != nil {
		return Dependency{}, err
	}
	dep := Dependency{Name: pkg, Version: matchspec.AnyVersion}
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) != "" {
			dep.Version = strings.TrimSpace(v)
		}
	case map[string]any:
		for key, field := range v {
			text, ok := field.(string)
			if !ok {
				return Dependency{}, fmt.Errorf(messages.ManifestDependencyFieldTypeFmt, rawPkg, key)
			}
			switch key {
			case "version":
				if strings.TrimSpace(text) != "" {
					dep.Version = strings.TrimSpace(text)
				}
			case "channel":
				dep.Channel = strings.TrimSpace(text)
			default:
				return Dependency{}, fmt.Errorf(messages.ManifestDependencyFieldUnknownFmt, rawPkg, key)
			}
		}
	default:
		return Dependency{}, fmt.Errorf(messages.ManifestDependencyTypeFmt, rawPkg)
	}
	if _, err := dep.Spec(); err != nil {
		return Dependency{}, err
	}
	return dep, nil
}

// Encode renders the manifest as TOML. Environments, dependencies and exposed mappings are
// written sorted by name, so the order in which they were registered is not persisted.
func (m *Manifest) Encode() ([]byte, error) {
	doc := document{Version: FormatVersion, Envs: make(map[string]envDocument, len(m.envs))}
	for _, env := range m.envs {
		envDoc := envDocument{
			Channels:     env.channels,
			Platform:     string(env.platform),
			Dependencies: make(map[string]any, len(env.dependencies)),
			Exposed:      make(map[string]string, len(env.exposed)),
		}
		if envDoc.Channels == nil {
			envDoc.Channels = []string{}
		}
		for _, dep := range env.dependencies {
			if dep.Channel == "" {
				envDoc.Dependencies[dep.Name.Source()] = dep.Version
				continue
			}
			envDoc.Dependencies[dep.Name.Source()] = dependencyTable{Version: dep.Version, Channel: dep.Channel}
		}
		for _, mapping := range env.exposed {
			envDoc.Exposed[mapping.ExposedName().String()] = mapping.Executable()
		}
		doc.Envs[env.name.String()] = envDoc
	}
	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	encoder.SetIndentTables(false)
	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf(messages.ManifestEncodeFailedFmt, err)
	}
	return buf.Bytes(), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
