package global

import (
	"context"
	"path/filepath"

	"github.com/conn-castle/globalenv/internal/manifest"
	"github.com/conn-castle/globalenv/internal/names"
	"github.com/conn-castle/globalenv/internal/prefix"
)

// EnvironmentInstaller solves, fetches and links an environment into its prefix.
type EnvironmentInstaller interface {
	InstallEnvironment(ctx context.Context, name names.EnvironmentName, env manifest.Environment) error
}

// PrefixInspector is a read-only view of one materialized environment.
type PrefixInspector interface {
	FindDesignatedPackage(ctx context.Context, name names.PackageName) (prefix.Record, error)
	FindExecutables(records []prefix.Record) []prefix.Executable
	FindInstalledPackages(ctx context.Context, filter func(prefix.Record) bool) ([]prefix.Record, error)
}

// PrefixOpener returns the inspector for an environment's prefix.
type PrefixOpener interface {
	OpenPrefix(name names.EnvironmentName) PrefixInspector
}

// ShimPublisher converges the shims of an environment to its exposed mappings.
type ShimPublisher interface {
	ExposeExecutablesFromEnvironment(ctx context.Context, name names.EnvironmentName, env manifest.Environment) error
}

// Reverter restores an environment after a failed install using the pre-batch manifest.
type Reverter interface {
	RevertEnvironment(ctx context.Context, name names.EnvironmentName, original *manifest.Manifest) error
}

// DiskPrefixes opens prefixes below an envs directory.
type DiskPrefixes struct {
	EnvsDir string
}

// OpenPrefix implements PrefixOpener.
func (d DiskPrefixes) OpenPrefix(name names.EnvironmentName) PrefixInspector {
	return prefix.Open(filepath.Join(d.EnvsDir, name.String()))
}
