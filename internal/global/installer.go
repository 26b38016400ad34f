package global

import (
	"context"

	"github.com/conn-castle/globalenv/internal/manifest"
	"github.com/conn-castle/globalenv/internal/warnings"
)

// installEnvironment runs the stages of installing target into m. The first failing stage stops
// the environment; m may then hold a partial definition of target that the caller discards.
func installEnvironment(ctx context.Context, deps Deps, m *manifest.Manifest, target Target, req Request) ([]warnings.Warning, error) {
	name := target.Name

	if m.HasEnvironment(name) {
		if err := m.RemoveEnvironment(name); err != nil {
			return nil, stageError(ErrManifestMutation, name, StageRedefine, err)
		}
	}
	channels := req.Channels
	if len(channels) == 0 {
		channels = deps.Config.DefaultChannels()
	}
	if err := m.AddEnvironment(name, channels); err != nil {
		return nil, stageError(ErrManifestMutation, name, StageRedefine, err)
	}
	if req.Platform != "" {
		if err := m.SetPlatform(name, req.Platform); err != nil {
			return nil, stageError(ErrManifestMutation, name, StageRedefine, err)
		}
	}

	channelConfig := deps.Config.GlobalChannelConfig()
	for _, spec := range target.Specs {
		if err := m.AddDependency(name, spec, channelConfig); err != nil {
			return nil, stageError(ErrManifestMutation, name, StageRegister, err)
		}
	}

	env, _ := m.Environment(name)
	if err := deps.Installer.InstallEnvironment(ctx, name, env); err != nil {
		return nil, stageError(ErrInstall, name, StageMaterialize, err)
	}

	found, err := planExposure(ctx, m, name, target.Specs, req.Expose, deps.Prefixes.OpenPrefix(name))
	if err != nil {
		return found, err
	}

	env, _ = m.Environment(name)
	if err := deps.Shims.ExposeExecutablesFromEnvironment(ctx, name, env); err != nil {
		return found, stageError(ErrPublish, name, StagePublish, err)
	}
	return found, nil
}
