package main

// NOTE: Tests in this package mutate package-level seams (lookupEnv, isTerminal, confirmFunc,
// newMaterializer). Do not use t.Parallel(). Each helper restores the seams via t.Cleanup().

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/conn-castle/globalenv/internal/config"
	"github.com/conn-castle/globalenv/internal/manifest"
	"github.com/conn-castle/globalenv/internal/names"
	"github.com/conn-castle/globalenv/internal/testutil"
)

// fakeMaterializer writes prepared package records instead of solving against a channel.
type fakeMaterializer struct {
	t        *testing.T
	paths    config.Paths
	packages map[names.EnvironmentName][]testutil.InstalledPackage
	fail     map[names.EnvironmentName]error
	debug    io.Writer
	installs []names.EnvironmentName
	removed  []names.EnvironmentName
}

func (f *fakeMaterializer) InstallEnvironment(_ context.Context, name names.EnvironmentName, _ manifest.Environment) error {
	f.installs = append(f.installs, name)
	if err := f.fail[name]; err != nil {
		return err
	}
	if f.debug != nil {
		_, _ = io.WriteString(f.debug, "debug: install "+name.String()+"\n")
	}
	for _, pkg := range f.packages[name] {
		testutil.WriteInstalledPackage(f.t, f.paths.EnvironmentPrefix(name.String()), pkg)
	}
	return nil
}

func (f *fakeMaterializer) RemoveEnvironment(_ context.Context, name names.EnvironmentName) error {
	f.removed = append(f.removed, name)
	return nil
}

// withHome points the CLI at a temporary GENV_HOME and a fake materializer.
func withHome(t *testing.T) (config.Paths, *fakeMaterializer) {
	t.Helper()
	paths := config.DefaultPaths(t.TempDir())
	fake := &fakeMaterializer{
		t:        t,
		paths:    paths,
		packages: map[names.EnvironmentName][]testutil.InstalledPackage{},
		fail:     map[names.EnvironmentName]error{},
	}

	origLookup := lookupEnv
	origTerminal := isTerminal
	origMaterializer := newMaterializer
	origConfirm := confirmFunc
	t.Cleanup(func() {
		lookupEnv = origLookup
		isTerminal = origTerminal
		newMaterializer = origMaterializer
		confirmFunc = origConfirm
	})
	lookupEnv = func(key string) (string, bool) {
		if key == config.EnvHome {
			return paths.Home, true
		}
		return "", false
	}
	isTerminal = func() bool { return false }
	confirmFunc = func(string) (bool, error) {
		t.Fatalf("unexpected prompt")
		return false, nil
	}
	newMaterializer = func(_ config.Paths, _ *config.Config, debug io.Writer) materializer {
		fake.debug = debug
		return fake
	}
	return paths, fake
}

func runCLI(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	err := execute(append([]string{"genv"}, args...), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}
