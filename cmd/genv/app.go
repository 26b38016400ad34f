package main

import (
	"io"
	"os"

	"github.com/conn-castle/globalenv/internal/config"
	"github.com/conn-castle/globalenv/internal/global"
	"github.com/conn-castle/globalenv/internal/materialize"
	"github.com/conn-castle/globalenv/internal/shim"
	"github.com/conn-castle/globalenv/internal/terminal"
	"github.com/conn-castle/globalenv/internal/warnings"
)

// materializer installs and removes environment prefixes.
type materializer interface {
	global.EnvironmentInstaller
	global.EnvironmentRemover
}

var (
	lookupEnv  = os.LookupEnv
	isTerminal = terminal.IsInteractive

	newMaterializer = func(paths config.Paths, cfg *config.Config, debug io.Writer) materializer {
		installer := materialize.NewInstaller(paths, cfg.GlobalChannelConfig())
		installer.Debug = debug
		return installer
	}
)

// app is the resolved home layout and user configuration of one invocation.
type app struct {
	paths config.Paths
	cfg   *config.Config
}

func loadApp() (app, error) {
	home, err := config.ResolveHome(lookupEnv)
	if err != nil {
		return app{}, err
	}
	paths := config.DefaultPaths(home)
	cfg, err := config.LoadConfig(paths.ConfigPath)
	if err != nil {
		return app{}, err
	}
	return app{paths: paths, cfg: cfg}, nil
}

func (a app) publisher() *shim.Publisher {
	return shim.NewPublisher(a.paths)
}

func (a app) printWarnings(w io.Writer, items []warnings.Warning) {
	warnings.Print(w, warnings.ApplyNoiseControl(items, a.cfg.Warnings.NoiseMode))
}

// debugWriter returns w when verbose output is on.
func debugWriter(verbose bool, w io.Writer) io.Writer {
	if !verbose {
		return nil
	}
	return w
}
