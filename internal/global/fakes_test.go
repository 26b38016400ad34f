package global

import (
	"context"
	"errors"
	"path"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conn-castle/globalenv/internal/manifest"
	"github.com/conn-castle/globalenv/internal/matchspec"
	"github.com/conn-castle/globalenv/internal/names"
	"github.com/conn-castle/globalenv/internal/prefix"
)

var errBoom = errors.New("boom")

type fakePackage struct {
	name        string
	executables []string
}

// fakeWorld implements every collaborator of a batch with in-memory state.
type fakeWorld struct {
	mu sync.Mutex

	// contents is what each environment's prefix holds once it has been installed.
	contents map[names.EnvironmentName][]fakePackage
	prefixes map[names.EnvironmentName][]fakePackage

	installErrs  map[names.EnvironmentName]error
	publishErrs  map[names.EnvironmentName]error
	inspectErr   error
	revertErr    error
	installCalls []names.EnvironmentName
	published    map[names.EnvironmentName][]string
	reverted     []names.EnvironmentName
	opened       []names.EnvironmentName
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		contents:    map[names.EnvironmentName][]fakePackage{},
		prefixes:    map[names.EnvironmentName][]fakePackage{},
		installErrs: map[names.EnvironmentName]error{},
		publishErrs: map[names.EnvironmentName]error{},
		published:   map[names.EnvironmentName][]string{},
	}
}

func (w *fakeWorld) deps() Deps {
	return Deps{
		Config:    defaultConfig(),
		Installer: w,
		Prefixes:  w,
		Shims:     w,
		Reverter:  w,
	}
}

func (w *fakeWorld) InstallEnvironment(_ context.Context, name names.EnvironmentName, _ manifest.Environment) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.installCalls = append(w.installCalls, name)
	if err := w.installErrs[name]; err != nil {
		return err
	}
	w.prefixes[name] = w.contents[name]
	return nil
}

func (w *fakeWorld) OpenPrefix(name names.EnvironmentName) PrefixInspector {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.opened = append(w.opened, name)
	return &fakePrefix{packages: w.prefixes[name], err: w.inspectErr}
}

func (w *fakeWorld) ExposeExecutablesFromEnvironment(_ context.Context, name names.EnvironmentName, env manifest.Environment) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.publishErrs[name]; err != nil {
		return err
	}
	var out []string
	for _, mapping := range env.ExposedMappings() {
		out = append(out, mapping.String())
	}
	w.published[name] = out
	return nil
}

func (w *fakeWorld) RevertEnvironment(_ context.Context, name names.EnvironmentName, _ *manifest.Manifest) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reverted = append(w.reverted, name)
	return w.revertErr
}

type fakePrefix struct {
	packages []fakePackage
	err      error
}

func (p *fakePrefix) record(pkg fakePackage) prefix.Record {
	files := make([]string, 0, len(pkg.executables))
	for _, exe := range pkg.executables {
		files = append(files, "bin/"+exe)
	}
	return prefix.Record{Name: pkg.name, Version: "1.0.0", Build: "0", Files: files}
}

func (p *fakePrefix) FindDesignatedPackage(_ context.Context, name names.PackageName) (prefix.Record, error) {
	if p.err != nil {
		return prefix.Record{}, p.err
	}
	for _, pkg := range p.packages {
		if strings.ToLower(pkg.name) == name.Normalized() {
			return p.record(pkg), nil
		}
	}
	return prefix.Record{}, prefix.ErrPackageNotInstalled
}

func (p *fakePrefix) FindExecutables(records []prefix.Record) []prefix.Executable {
	var out []prefix.Executable
	for _, r := range records {
		for _, f := range r.Files {
			out = append(out, prefix.Executable{Name: path.Base(f), Path: "/prefix/" + f, Package: r.Name})
		}
	}
	return out
}

func (p *fakePrefix) FindInstalledPackages(_ context.Context, filter func(prefix.Record) bool) ([]prefix.Record, error) {
	if p.err != nil {
		return nil, p.err
	}
	var out []prefix.Record
	for _, pkg := range p.packages {
		r := p.record(pkg)
		if filter == nil || filter(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func mustSpecs(t *testing.T, raw ...string) []matchspec.Spec {
	t.Helper()
	out := make([]matchspec.Spec, 0, len(raw))
	for _, s := range raw {
		spec, err := matchspec.Parse(s)
		require.NoError(t, err)
		out = append(out, spec)
	}
	return out
}

func mustMappings(t *testing.T, raw ...string) []names.Mapping {
	t.Helper()
	out := make([]names.Mapping, 0, len(raw))
	for _, s := range raw {
		mapping, err := names.ParseMapping(s)
		require.NoError(t, err)
		out = append(out, mapping)
	}
	return out
}

// envSummary renders an environment definition for comparisons.
type envSummary struct {
	Channels []string
	Platform string
	Deps     []string
	Exposed  []string
}

func summarize(t *testing.T, m *manifest.Manifest, name names.EnvironmentName) envSummary {
	t.Helper()
	env, ok := m.Environment(name)
	require.True(t, ok, "environment %s missing", name)
	out := envSummary{Channels: env.Channels()}
	if p, ok := env.Platform(); ok {
		out.Platform = p.String()
	}
	for _, dep := range env.Dependencies() {
		spec, err := dep.Spec()
		require.NoError(t, err)
		out.Deps = append(out.Deps, spec.String())
	}
	for _, mapping := range env.ExposedMappings() {
		out.Exposed = append(out.Exposed, mapping.String())
	}
	return out
}
