// Package global installs packages into named global environments and exposes their
// executables through shims, keeping the global manifest consistent with what landed on disk.
package global

import (
	"context"
	"fmt"

	"github.com/conn-castle/globalenv/internal/config"
	"github.com/conn-castle/globalenv/internal/manifest"
	"github.com/conn-castle/globalenv/internal/matchspec"
	"github.com/conn-castle/globalenv/internal/messages"
	"github.com/conn-castle/globalenv/internal/names"
	"github.com/conn-castle/globalenv/internal/platform"
	"github.com/conn-castle/globalenv/internal/warnings"
)

// Deps are the collaborators of a batch install.
type Deps struct {
	Config    *config.Config
	Installer EnvironmentInstaller
	Prefixes  PrefixOpener
	Shims     ShimPublisher
	// Reverter may be nil, in which case failed environments are not rolled back.
	Reverter Reverter
}

// Request is one install command.
type Request struct {
	Specs []matchspec.Spec
	// Environment, when set, receives every spec. Otherwise each package gets its own environment.
	Environment names.EnvironmentName
	// Channels overrides the configured default channels.
	Channels []string
	// Platform overrides the current platform when set.
	Platform platform.Platform
	// Expose switches from auto discovery to exactly these mappings.
	Expose []names.Mapping
}

// Result describes a batch run. Warnings are collected even when the batch aborts.
type Result struct {
	// Manifest is the saved manifest; nil unless every environment installed.
	Manifest  *manifest.Manifest
	Installed []names.EnvironmentName
	Warnings  []warnings.Warning
}

// Install installs req into a copy of original, one environment at a time, and saves the copy
// once every environment succeeded. original is never modified.
//
// When an environment fails and original already defined it, the Reverter restores it from
// original. The batch then stops and nothing is saved, so environments installed earlier in the
// same run keep their files but are not registered. Cancelling ctx stops the batch before the
// next environment; an environment that has started runs to completion.
func Install(ctx context.Context, original *manifest.Manifest, req Request, deps Deps) (Result, error) {
	var result Result
	targets, err := ResolveEnvironmentNames(req.Specs, req.Environment)
	if err != nil {
		return result, fmt.Errorf(messages.GlobalNotInstalledFmt, err)
	}
	if err := CheckExposeTargets(targets, req.Expose); err != nil {
		return result, fmt.Errorf(messages.GlobalNotInstalledFmt, err)
	}

	working := original.Clone()
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf(messages.GlobalNotInstalledFmt, err)
		}
		envCtx := context.WithoutCancel(ctx)
		found, err := installEnvironment(envCtx, deps, working, target, req)
		result.Warnings = append(result.Warnings, found...)
		if err != nil {
			if deps.Reverter != nil && original.HasEnvironment(target.Name) {
				if revertErr := deps.Reverter.RevertEnvironment(envCtx, target.Name, original); revertErr != nil {
					err = &RevertError{Env: target.Name, Cause: err, RevertErr: revertErr}
				}
			}
			return result, fmt.Errorf(messages.GlobalNotInstalledFmt, err)
		}
		result.Installed = append(result.Installed, target.Name)
	}

	if err := working.Save(); err != nil {
		return result, fmt.Errorf(messages.GlobalSaveFmt, err)
	}
	result.Manifest = working
	return result, nil
}
