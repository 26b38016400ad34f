package global

import (
	"context"
	"fmt"

	"github.com/conn-castle/globalenv/internal/manifest"
	"github.com/conn-castle/globalenv/internal/matchspec"
	"github.com/conn-castle/globalenv/internal/messages"
	"github.com/conn-castle/globalenv/internal/names"
	"github.com/conn-castle/globalenv/internal/prefix"
	"github.com/conn-castle/globalenv/internal/warnings"
)

// planExposure adds the exposed mappings of env to m. Explicit mappings are added as given;
// without them every requested package exposes the executables it ships, except names another
// environment already exposes, which are reported as warnings.
func planExposure(ctx context.Context, m *manifest.Manifest, env names.EnvironmentName, specs []matchspec.Spec, explicit []names.Mapping, inspector PrefixInspector) ([]warnings.Warning, error) {
	if len(explicit) > 0 {
		for _, mapping := range explicit {
			if err := m.AddExposedMapping(env, mapping); err != nil {
				return nil, stageError(ErrManifestMutation, env, StagePlan, err)
			}
		}
		return nil, nil
	}

	var found []warnings.Warning
	for _, spec := range specs {
		mappings, warning, err := discover(ctx, inspector, spec.Name)
		if err != nil {
			return found, stageError(ErrDiscovery, env, StagePlan, err)
		}
		for _, mapping := range mappings {
			if owner, ok := m.ExposedNameOwner(mapping.ExposedName()); ok && owner != env {
				found = append(found, warnings.Warning{
					Code:     warnings.CodeExposedNameTaken,
					Subject:  mapping.ExposedName().String(),
					Message:  fmt.Sprintf(messages.WarningsExposedNameTakenFmt, mapping.ExposedName(), env, owner),
					Fix:      fmt.Sprintf(messages.WarningsExposedNameTakenFixFmt, env),
					Severity: warnings.SeverityWarning,
				})
				continue
			}
			if err := m.AddExposedMapping(env, mapping); err != nil {
				return found, stageError(ErrManifestMutation, env, StagePlan, err)
			}
		}
		if warning != nil {
			found = append(found, *warning)
		}
	}
	return found, nil
}

// discover returns a 1:1 mapping for every executable pkg ships. When none of them carries the
// package's own name, the other installed packages are searched for one that does.
func discover(ctx context.Context, inspector PrefixInspector, pkg names.PackageName) ([]names.Mapping, *warnings.Warning, error) {
	record, err := inspector.FindDesignatedPackage(ctx, pkg)
	if err != nil {
		return nil, nil, err
	}
	var mappings []names.Mapping
	ownName := false
	for _, exe := range inspector.FindExecutables([]prefix.Record{record}) {
		exposed, err := names.ParseExposedName(exe.Name)
		if err != nil {
			continue
		}
		mappings = append(mappings, names.NewMapping(exposed, exe.Name))
		if exe.Name == pkg.Normalized() {
			ownName = true
		}
	}
	if ownName {
		return mappings, nil, nil
	}

	others, err := inspector.FindInstalledPackages(ctx, func(r prefix.Record) bool {
		return r.Normalized() != pkg.Normalized()
	})
	if err != nil {
		return nil, nil, err
	}
	for _, exe := range inspector.FindExecutables(others) {
		if exe.Name != pkg.Normalized() {
			continue
		}
		exposed, err := names.ParseExposedName(exe.Name)
		if err != nil {
			return mappings, &warnings.Warning{
				Code:     warnings.CodeExposedNameInvalid,
				Subject:  exe.Name,
				Message:  fmt.Sprintf(messages.WarningsExposedNameInvalidFmt, exe.Name, exe.Package, err),
				Fix:      messages.WarningsAutoExposedFix,
				Severity: warnings.SeverityWarning,
			}, nil
		}
		mappings = append(mappings, names.NewMapping(exposed, exe.Name))
		return mappings, &warnings.Warning{
			Code:              warnings.CodeAutoExposedFromDependency,
			Subject:           exe.Name,
			Message:           fmt.Sprintf(messages.WarningsAutoExposedFmt, exe.Name, exe.Package, pkg.Source()),
			Fix:               messages.WarningsAutoExposedFix,
			Source:            warnings.SourceExternalDependency,
			Severity:          warnings.SeverityWarning,
			NoiseSuppressible: true,
		}, nil
	}
	return mappings, nil, nil
}
