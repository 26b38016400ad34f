package global

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/conn-castle/globalenv/internal/manifest"
	"github.com/conn-castle/globalenv/internal/messages"
	"github.com/conn-castle/globalenv/internal/names"
	"github.com/conn-castle/globalenv/internal/shim"
)

// EnvironmentRemover deletes the prefix of an environment.
type EnvironmentRemover interface {
	RemoveEnvironment(ctx context.Context, name names.EnvironmentName) error
}

// ShimStore publishes, lists and removes shims.
type ShimStore interface {
	ShimPublisher
	RemoveEnvironmentShims(ctx context.Context, name names.EnvironmentName) error
	List() ([]shim.Shim, error)
}

// SyncDeps are the collaborators of Sync.
type SyncDeps struct {
	EnvsDir   string
	Installer EnvironmentInstaller
	Remover   EnvironmentRemover
	Shims     ShimStore
}

// SyncResult lists what Sync touched.
type SyncResult struct {
	Synced  []names.EnvironmentName
	Removed []names.EnvironmentName
}

// Sync converges disk state to m: every environment is installed and its shims published, and
// prefixes or shims of environments m no longer defines are removed. A failing environment does
// not stop the others; all failures are returned joined.
func Sync(ctx context.Context, m *manifest.Manifest, deps SyncDeps) (SyncResult, error) {
	var result SyncResult
	var errs []error

	defined := map[names.EnvironmentName]bool{}
	for _, env := range m.Environments() {
		defined[env.Name()] = true
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := deps.Installer.InstallEnvironment(ctx, env.Name(), env); err != nil {
			errs = append(errs, fmt.Errorf(messages.GlobalSyncFmt, env.Name(), stageError(ErrInstall, env.Name(), StageMaterialize, err)))
			continue
		}
		if err := deps.Shims.ExposeExecutablesFromEnvironment(ctx, env.Name(), env); err != nil {
			errs = append(errs, fmt.Errorf(messages.GlobalSyncFmt, env.Name(), stageError(ErrPublish, env.Name(), StagePublish, err)))
			continue
		}
		result.Synced = append(result.Synced, env.Name())
	}

	orphans, err := orphanedEnvironments(deps, defined)
	if err != nil {
		return result, errors.Join(append(errs, err)...)
	}
	for _, name := range orphans {
		if err := deps.Shims.RemoveEnvironmentShims(ctx, name); err != nil {
			errs = append(errs, fmt.Errorf(messages.GlobalPruneFmt, name, err))
			continue
		}
		if err := deps.Remover.RemoveEnvironment(ctx, name); err != nil {
			errs = append(errs, fmt.Errorf(messages.GlobalPruneFmt, name, err))
			continue
		}
		result.Removed = append(result.Removed, name)
	}
	return result, errors.Join(errs...)
}

// orphanedEnvironments returns environments that own a prefix directory or a shim but are not
// defined, sorted by name. Directories whose names are not environment names are ignored.
func orphanedEnvironments(deps SyncDeps, defined map[names.EnvironmentName]bool) ([]names.EnvironmentName, error) {
	seen := map[names.EnvironmentName]bool{}
	entries, err := os.ReadDir(deps.EnvsDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf(messages.GlobalListEnvsFmt, deps.EnvsDir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name, err := names.ParseEnvironmentName(entry.Name())
		if err != nil {
			continue
		}
		if !defined[name] {
			seen[name] = true
		}
	}
	shims, err := deps.Shims.List()
	if err != nil {
		return nil, err
	}
	for _, s := range shims {
		if !defined[s.Environment] {
			seen[s.Environment] = true
		}
	}
	out := make([]names.EnvironmentName, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
