package shim

import (
	"context"

	"github.com/conn-castle/globalenv/internal/manifest"
	"github.com/conn-castle/globalenv/internal/names"
)

// EnvironmentInstaller re-materializes an environment's prefix from its definition.
type EnvironmentInstaller interface {
	InstallEnvironment(ctx context.Context, name names.EnvironmentName, env manifest.Environment) error
}

// Reverter restores an environment to its definition in the pre-install manifest after a failed
// install: the prefix is reinstalled, then the shims are re-converged.
type Reverter struct {
	// Installer may be nil, in which case only the shims are restored.
	Installer EnvironmentInstaller
	Publisher *Publisher
}

// RevertEnvironment syncs name to its definition in original, removing its shims when original
// does not define name.
func (r Reverter) RevertEnvironment(ctx context.Context, name names.EnvironmentName, original *manifest.Manifest) error {
	env, ok := original.Environment(name)
	if !ok {
		return r.Publisher.RemoveEnvironmentShims(ctx, name)
	}
	if r.Installer != nil {
		if err := r.Installer.InstallEnvironment(ctx, name, env); err != nil {
			return err
		}
	}
	return r.Publisher.ExposeExecutablesFromEnvironment(ctx, name, env)
}
