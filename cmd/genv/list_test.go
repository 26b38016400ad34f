package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/conn-castle/globalenv/internal/config"
	"github.com/conn-castle/globalenv/internal/manifest"
	"github.com/conn-castle/globalenv/internal/matchspec"
	"github.com/conn-castle/globalenv/internal/names"
)

func writeListManifest(t *testing.T, paths config.Paths) {
	t.Helper()
	m := manifest.New(paths.ManifestPath)
	require.NoError(t, m.AddEnvironment("black", []string{"conda-forge"}))
	require.NoError(t, m.SetPlatform("black", "osx-arm64"))
	spec, err := matchspec.Parse("black >=24")
	require.NoError(t, err)
	require.NoError(t, m.AddDependency("black", spec, config.ChannelConfig{}))
	mapping, err := names.ParseMapping("bd=blackd")
	require.NoError(t, err)
	require.NoError(t, m.AddExposedMapping("black", mapping))
	require.NoError(t, m.Save())
}

func TestListText(t *testing.T) {
	paths, _ := withHome(t)

	stdout, _, err := runCLI("list")
	require.NoError(t, err)
	require.Contains(t, stdout, "No global environments installed.")

	writeListManifest(t, paths)
	stdout, _, err = runCLI("list")
	require.NoError(t, err)
	require.Equal(t, "black\n  channels: conda-forge\n  platform: osx-arm64\n  dependency: black >=24\n  exposed: bd -> blackd\n", stdout)
}

func TestListStructured(t *testing.T) {
	paths, _ := withHome(t)
	writeListManifest(t, paths)
	want := []listedEnvironment{{
		Name:         "black",
		Channels:     []string{"conda-forge"},
		Platform:     "osx-arm64",
		Dependencies: []string{"black >=24"},
		Exposed:      []listedMapping{{Exposed: "bd", Executable: "blackd"}},
	}}

	stdout, _, err := runCLI("list", "--format", "json")
	require.NoError(t, err)
	var fromJSON []listedEnvironment
	require.NoError(t, json.Unmarshal([]byte(stdout), &fromJSON))
	require.Equal(t, want, fromJSON)

	stdout, _, err = runCLI("list", "--format", "yaml")
	require.NoError(t, err)
	var fromYAML []listedEnvironment
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &fromYAML))
	require.Equal(t, want, fromYAML)
}

func TestListInvalidFormat(t *testing.T) {
	withHome(t)
	_, _, err := runCLI("list", "--format", "xml")
	require.ErrorContains(t, err, `unknown format "xml"`)
}
