// Package materialize solves, fetches and links the packages of an environment into its prefix.
package materialize

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/conn-castle/globalenv/internal/config"
	"github.com/conn-castle/globalenv/internal/manifest"
	"github.com/conn-castle/globalenv/internal/matchspec"
	"github.com/conn-castle/globalenv/internal/messages"
	"github.com/conn-castle/globalenv/internal/names"
	"github.com/conn-castle/globalenv/internal/platform"
	"github.com/conn-castle/globalenv/internal/prefix"
)

const defaultConcurrency = 4

// Installer materializes manifest environments below Paths.EnvsDir.
type Installer struct {
	Paths    config.Paths
	Channels config.ChannelConfig
	Source   Source
	// Concurrency bounds parallel fetch and extraction.
	Concurrency int
	// Debug receives progress lines; nil discards them.
	Debug io.Writer
	// CurrentPlatform is used for environments without a platform override.
	CurrentPlatform func() (platform.Platform, error)
}

// NewInstaller returns an Installer using the network-capable default Source.
func NewInstaller(paths config.Paths, channels config.ChannelConfig) *Installer {
	return &Installer{
		Paths:           paths,
		Channels:        channels,
		Source:          NewSource(),
		Concurrency:     defaultConcurrency,
		CurrentPlatform: platform.Current,
	}
}

// InstallEnvironment brings the prefix of name in line with env's dependencies.
// Packages already linked with the same build are kept; packages no longer needed are unlinked
// once every new package has been fetched.
func (i *Installer) InstallEnvironment(ctx context.Context, name names.EnvironmentName, env manifest.Environment) error {
	target, ok := env.Platform()
	if !ok {
		current, err := i.currentPlatform()
		if err != nil {
			return err
		}
		target = current
	}

	specs, search, pinned, err := i.requests(env)
	if err != nil {
		return err
	}
	index, err := LoadIndex(ctx, i.Source, search, pinned, target)
	if err != nil {
		return err
	}
	solution, err := Solve(index, specs)
	if err != nil {
		return err
	}
	i.debugf(messages.MaterializeDebugSolvedFmt, name, len(solution), target)

	p := prefix.Open(i.Paths.EnvironmentPrefix(name.String()))
	if err := os.MkdirAll(p.Root(), 0o755); err != nil {
		return fmt.Errorf(messages.MaterializeCreatePrefixFmt, p.Root(), err)
	}
	installed, err := p.InstalledPackages(ctx)
	if err != nil {
		return err
	}

	wanted := map[string]bool{}
	for _, pkg := range solution {
		wanted[pkg.Key()] = true
	}
	have := map[string]bool{}
	var stale []prefix.Record
	for _, record := range installed {
		key := record.Name + "-" + record.Version + "-" + record.Build
		if wanted[key] {
			have[key] = true
			continue
		}
		stale = append(stale, record)
	}

	var toLink []PackageInfo
	for _, pkg := range solution {
		if !have[pkg.Key()] {
			toLink = append(toLink, pkg)
		}
	}
	// Everything is fetched before the prefix is touched so a failed download keeps it intact.
	extracted, err := i.fetchAll(ctx, toLink)
	if err != nil {
		return err
	}
	for _, record := range stale {
		i.debugf(messages.MaterializeDebugUnlinkFmt, record.Name+"-"+record.Version+"-"+record.Build)
		if err := unlink(p, record); err != nil {
			return err
		}
	}
	for idx, pkg := range toLink {
		i.debugf(messages.MaterializeDebugLinkFmt, pkg.Key(), pkg.Channel.Name)
		files, err := link(extracted[idx], p.Root())
		if err != nil {
			return err
		}
		record := prefix.Record{
			Name:        pkg.Name,
			Version:     pkg.Version,
			Build:       pkg.Build,
			BuildNumber: pkg.BuildNumber,
			Channel:     pkg.Channel.Name,
			Subdir:      pkg.Subdir,
			Fn:          pkg.Filename,
			Depends:     pkg.Depends,
			Files:       files,
		}
		if err := p.WriteRecord(record); err != nil {
			return err
		}
	}
	return nil
}

// RemoveEnvironment deletes the prefix of name.
func (i *Installer) RemoveEnvironment(_ context.Context, name names.EnvironmentName) error {
	root := i.Paths.EnvironmentPrefix(name.String())
	if err := os.RemoveAll(root); err != nil {
		return fmt.Errorf(messages.MaterializeRemovePrefixFmt, root, err)
	}
	return nil
}

// requests converts env's dependencies to specs and resolves the channels they draw from.
func (i *Installer) requests(env manifest.Environment) ([]matchspec.Spec, []config.Channel, []config.Channel, error) {
	var search []config.Channel
	for _, name := range env.Channels() {
		channel, err := i.Channels.Resolve(name)
		if err != nil {
			return nil, nil, nil, err
		}
		search = append(search, channel)
	}
	var specs []matchspec.Spec
	var pinned []config.Channel
	for _, dep := range env.Dependencies() {
		spec, err := dep.Spec()
		if err != nil {
			return nil, nil, nil, err
		}
		specs = append(specs, spec)
		if dep.Channel == "" || hasChannel(search, dep.Channel) || hasChannel(pinned, dep.Channel) {
			continue
		}
		channel, err := i.Channels.Resolve(dep.Channel)
		if err != nil {
			return nil, nil, nil, err
		}
		pinned = append(pinned, channel)
	}
	return specs, search, pinned, nil
}

func hasChannel(channels []config.Channel, name string) bool {
	return slices.ContainsFunc(channels, func(c config.Channel) bool { return c.Name == name })
}

func (i *Installer) fetchAll(ctx context.Context, pkgs []PackageInfo) ([]string, error) {
	cache := &Cache{Dir: i.Paths.PkgsDir, Source: i.Source}
	out := make([]string, len(pkgs))
	limit := i.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for idx, pkg := range pkgs {
		g.Go(func() error {
			dir, err := cache.Ensure(gctx, pkg)
			if err != nil {
				return err
			}
			out[idx] = dir
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (i *Installer) currentPlatform() (platform.Platform, error) {
	if i.CurrentPlatform != nil {
		return i.CurrentPlatform()
	}
	return platform.Current()
}

func (i *Installer) debugf(format string, args ...any) {
	if i.Debug == nil {
		return
	}
	_, _ = fmt.Fprintf(i.Debug, format, args...)
}
