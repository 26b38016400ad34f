// Package shim publishes exposed executables as small launcher scripts in the shared bin directory.
package shim

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/conn-castle/globalenv/internal/config"
	"github.com/conn-castle/globalenv/internal/manifest"
	"github.com/conn-castle/globalenv/internal/messages"
	"github.com/conn-castle/globalenv/internal/names"
)

var (
	// ErrExecutableNotFound reports a mapping whose target does not exist in the prefix.
	ErrExecutableNotFound = errors.New("executable not found in environment")
	// ErrShimOwned reports a shim that belongs to another environment.
	ErrShimOwned = errors.New("shim owned by another environment")
	// ErrForeignFile reports a file in the bin directory that genv did not create.
	ErrForeignFile = errors.New("file not managed by genv")
)

const markerKey = "genv-environment:"

// Shim is a published launcher.
type Shim struct {
	Exposed     names.ExposedName
	Environment names.EnvironmentName
	Path        string
}

// Publisher writes and prunes shims in BinDir for environments below EnvsDir.
type Publisher struct {
	BinDir  string
	EnvsDir string
	Sys     System
	Windows bool
}

// NewPublisher returns a Publisher for the genv home layout.
func NewPublisher(paths config.Paths) *Publisher {
	return &Publisher{
		BinDir:  paths.BinDir,
		EnvsDir: paths.EnvsDir,
		Sys:     RealSystem{},
		Windows: runtime.GOOS == "windows",
	}
}

// ExposeExecutablesFromEnvironment converges the shims of name to env's mappings: every mapping
// gets a shim pointing at its executable and shims of name that are no longer mapped are removed.
// Shims of other environments and files genv did not write are never overwritten.
func (p *Publisher) ExposeExecutablesFromEnvironment(ctx context.Context, name names.EnvironmentName, env manifest.Environment) error {
	if err := p.Sys.MkdirAll(p.BinDir, 0o755); err != nil {
		return fmt.Errorf(messages.ShimCreateBinDirFmt, p.BinDir, err)
	}
	root := filepath.Join(p.EnvsDir, name.String())
	mapped := map[names.ExposedName]bool{}
	for _, mapping := range env.ExposedMappings() {
		if err := ctx.Err(); err != nil {
			return err
		}
		target, err := p.findExecutable(root, mapping.Executable())
		if err != nil {
			return fmt.Errorf(messages.ShimExposeFmt, mapping.ExposedName(), err)
		}
		if err := p.writeShim(name, mapping.ExposedName(), root, target); err != nil {
			return err
		}
		mapped[mapping.ExposedName()] = true
	}

	shims, err := p.List()
	if err != nil {
		return err
	}
	for _, shim := range shims {
		if shim.Environment == name && !mapped[shim.Exposed] {
			if err := p.Sys.Remove(shim.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf(messages.ShimRemoveFmt, shim.Path, err)
			}
		}
	}
	return nil
}

// RemoveEnvironmentShims deletes every shim owned by name.
func (p *Publisher) RemoveEnvironmentShims(_ context.Context, name names.EnvironmentName) error {
	shims, err := p.List()
	if err != nil {
		return err
	}
	for _, shim := range shims {
		if shim.Environment != name {
			continue
		}
		if err := p.Sys.Remove(shim.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf(messages.ShimRemoveFmt, shim.Path, err)
		}
	}
	return nil
}

// List returns the genv shims in BinDir sorted by exposed name. Unmarked files are skipped.
func (p *Publisher) List() ([]Shim, error) {
	entries, err := p.Sys.ReadDir(p.BinDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf(messages.ShimReadBinDirFmt, p.BinDir, err)
	}
	var out []Shim
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		exposed := entry.Name()
		if p.Windows {
			if !strings.EqualFold(filepath.Ext(exposed), ".bat") {
				continue
			}
			exposed = strings.TrimSuffix(exposed, filepath.Ext(exposed))
		}
		path := filepath.Join(p.BinDir, entry.Name())
		data, err := p.Sys.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf(messages.ShimReadFmt, path, err)
		}
		owner, ok := parseMarker(data)
		if !ok {
			continue
		}
		out = append(out, Shim{Exposed: names.ExposedName(exposed), Environment: owner, Path: path})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Exposed < out[j].Exposed })
	return out, nil
}

func (p *Publisher) shimPath(exposed names.ExposedName) string {
	if p.Windows {
		return filepath.Join(p.BinDir, exposed.String()+".bat")
	}
	return filepath.Join(p.BinDir, exposed.String())
}

func (p *Publisher) writeShim(env names.EnvironmentName, exposed names.ExposedName, root string, target string) error {
	path := p.shimPath(exposed)
	content := p.render(env, root, target)
	existing, err := p.Sys.ReadFile(path)
	switch {
	case err == nil:
		owner, ok := parseMarker(existing)
		if !ok {
			return fmt.Errorf(messages.ShimForeignFileFmt, ErrForeignFile, path)
		}
		if owner != env {
			return fmt.Errorf(messages.ShimOwnedFmt, ErrShimOwned, exposed, owner)
		}
		if string(existing) == content {
			return nil
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf(messages.ShimReadFmt, path, err)
	}
	if err := p.Sys.WriteFileAtomic(path, []byte(content), 0o755); err != nil {
		return fmt.Errorf(messages.ShimWriteFmt, path, err)
	}
	return nil
}

func (p *Publisher) findExecutable(root string, executable string) (string, error) {
	var candidates []string
	if p.Windows {
		for _, dir := range []string{"Scripts", filepath.Join("Library", "bin"), ""} {
			for _, ext := range []string{".exe", ".bat", ".cmd"} {
				candidates = append(candidates, filepath.Join(root, dir, executable+ext))
			}
		}
	} else {
		candidates = []string{filepath.Join(root, "bin", executable)}
	}
	for _, candidate := range candidates {
		info, err := p.Sys.Stat(candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf(messages.ShimExecutableNotFoundFmt, ErrExecutableNotFound, executable, root)
}

func (p *Publisher) render(env names.EnvironmentName, root string, target string) string {
	var b strings.Builder
	if p.Windows {
		b.WriteString("@echo off\r\n")
		fmt.Fprintf(&b, "rem %s %s\r\n", markerKey, env)
		fmt.Fprintf(&b, "set \"CONDA_PREFIX=%s\"\r\n", root)
		fmt.Fprintf(&b, "set \"PATH=%s;%s;%s;%%PATH%%\"\r\n", root, filepath.Join(root, "Library", "bin"), filepath.Join(root, "Scripts"))
		fmt.Fprintf(&b, "\"%s\" %%*\r\n", target)
		return b.String()
	}
	b.WriteString("#!/bin/sh\n")
	fmt.Fprintf(&b, "# %s %s\n", markerKey, env)
	fmt.Fprintf(&b, "export CONDA_PREFIX=%s\n", shellQuote(root))
	fmt.Fprintf(&b, "export PATH=%s:\"$PATH\"\n", shellQuote(filepath.Join(root, "bin")))
	fmt.Fprintf(&b, "exec %s \"$@\"\n", shellQuote(target))
	return b.String()
}

// parseMarker extracts the owning environment from a shim's marker line.
func parseMarker(data []byte) (names.EnvironmentName, bool) {
	for _, line := range strings.SplitN(string(data), "\n", 4) {
		idx := strings.Index(line, markerKey)
		if idx < 0 {
			continue
		}
		env, err := names.ParseEnvironmentName(strings.TrimSpace(line[idx+len(markerKey):]))
		if err != nil {
			return "", false
		}
		return env, true
	}
	return "", false
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
