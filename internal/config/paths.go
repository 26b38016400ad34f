package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"

	"github.com/conn-castle/globalenv/internal/messages"
)

// EnvHome overrides the genv home directory.
const EnvHome = "GENV_HOME"

const defaultHomeDirName = ".genv"

// Paths holds resolved paths for the genv home directory.
type Paths struct {
	Home         string
	ConfigPath   string
	ManifestPath string
	LockPath     string
	EnvsDir      string
	BinDir       string
	PkgsDir      string
}

// DefaultPaths returns the layout below a genv home directory.
func DefaultPaths(home string) Paths {
	manifestPath := filepath.Join(home, "manifests", "global.toml")
	return Paths{
		Home:         home,
		ConfigPath:   filepath.Join(home, "config.toml"),
		ManifestPath: manifestPath,
		LockPath:     manifestPath + ".lock",
		EnvsDir:      filepath.Join(home, "envs"),
		BinDir:       filepath.Join(home, "bin"),
		PkgsDir:      filepath.Join(home, "pkgs"),
	}
}

// EnvironmentPrefix returns the prefix directory of an environment.
func (p Paths) EnvironmentPrefix(env string) string {
	return filepath.Join(p.EnvsDir, env)
}

// ResolveHome returns $GENV_HOME (with `~` expanded) or ~/.genv.
// lookupEnv is injected so tests never depend on the process environment.
func ResolveHome(lookupEnv func(string) (string, bool)) (string, error) {
	if value, ok := lookupEnv(EnvHome); ok && strings.TrimSpace(value) != "" {
		expanded, err := homedir.Expand(strings.TrimSpace(value))
		if err != nil {
			return "", fmt.Errorf(messages.ConfigExpandHomeFmt, value, err)
		}
		return filepath.Abs(expanded)
	}
	dir, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf(messages.ConfigResolveHomeFmt, err)
	}
	return filepath.Join(dir, defaultHomeDirName), nil
}
