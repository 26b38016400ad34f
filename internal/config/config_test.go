package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	require.Equal(t, []string{DefaultChannel}, cfg.DefaultChannels())
	require.Equal(t, DefaultChannelAlias, cfg.ChannelAlias)
	require.Empty(t, cfg.CustomChannels)
}

func TestLoadConfigReadError(t *testing.T) {
	dir := t.TempDir()
	// Reading a directory fails with something other than ErrNotExist.
	_, err := LoadConfig(dir)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "failed to read config") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseConfig(t *testing.T) {
	data := []byte(`
default_channels = ["local", "conda-forge"]
channel_alias = "https://mirror.example.com/conda"

[custom_channels]
local = "~/channels/local"

[warnings]
noise_mode = "reduce"
`)
	cfg, err := ParseConfig(data, "config.toml")
	require.NoError(t, err)
	require.Equal(t, []string{"local", "conda-forge"}, cfg.DefaultChannels())
	require.Equal(t, "https://mirror.example.com/conda", cfg.ChannelAlias)
	require.Equal(t, map[string]string{"local": "~/channels/local"}, cfg.CustomChannels)
	require.Equal(t, "reduce", cfg.Warnings.NoiseMode)
}

func TestParseConfigKeepsDefaultsForAbsentKeys(t *testing.T) {
	cfg, err := ParseConfig([]byte(`default_channels = ["bioconda"]`), "config.toml")
	require.NoError(t, err)
	require.Equal(t, []string{"bioconda"}, cfg.DefaultChannels())
	require.Equal(t, DefaultChannelAlias, cfg.ChannelAlias)
	require.NotNil(t, cfg.CustomChannels)
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		validation bool
		contains   string
	}{
		{name: "syntax", data: "default_channels = [", contains: "invalid config"},
		{name: "unknown key", data: "mirrors = []", validation: true, contains: "unrecognized keys"},
		{name: "empty defaults", data: "default_channels = []", validation: true, contains: "at least one channel"},
		{name: "blank default", data: `default_channels = ["conda-forge", " "]`, validation: true, contains: "default_channels[1]"},
		{name: "blank alias", data: `channel_alias = ""`, validation: true, contains: "channel_alias"},
		{name: "blank custom target", data: "[custom_channels]\nlocal = \"\"", validation: true, contains: "custom_channels.local"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data), "config.toml")
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := errors.Is(err, ErrConfigValidation); got != tt.validation {
				t.Fatalf("errors.Is(ErrConfigValidation) = %v, want %v (err: %v)", got, tt.validation, err)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Fatalf("expected %q in error, got %v", tt.contains, err)
			}
		})
	}
}

func TestDefaultChannelsReturnsCopy(t *testing.T) {
	cfg := DefaultConfig()
	channels := cfg.DefaultChannels()
	channels[0] = "mutated"
	require.Equal(t, []string{DefaultChannel}, cfg.DefaultChannels())
}

func TestGlobalChannelConfigCopiesCustomChannels(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CustomChannels["local"] = "/srv/channels/local"
	channels := cfg.GlobalChannelConfig()
	channels.Custom["other"] = "/tmp"
	require.NotContains(t, cfg.CustomChannels, "other")
	require.Equal(t, DefaultChannelAlias, channels.Alias)
}

func TestDefaultPaths(t *testing.T) {
	home := filepath.Join("/", "home", "user", ".genv")
	paths := DefaultPaths(home)
	require.Equal(t, filepath.Join(home, "config.toml"), paths.ConfigPath)
	require.Equal(t, filepath.Join(home, "manifests", "global.toml"), paths.ManifestPath)
	require.Equal(t, paths.ManifestPath+".lock", paths.LockPath)
	require.Equal(t, filepath.Join(home, "bin"), paths.BinDir)
	require.Equal(t, filepath.Join(home, "envs", "black"), paths.EnvironmentPrefix("black"))
	require.Equal(t, filepath.Join(home, "pkgs"), paths.PkgsDir)
}

func TestResolveHome(t *testing.T) {
	dir := t.TempDir()
	home, err := ResolveHome(func(key string) (string, bool) {
		if key == EnvHome {
			return dir, true
		}
		return "", false
	})
	require.NoError(t, err)
	require.Equal(t, dir, home)

	home, err = ResolveHome(func(string) (string, bool) { return "  ", true })
	require.NoError(t, err)
	require.Equal(t, defaultHomeDirName, filepath.Base(home))
}

func TestChannelResolve(t *testing.T) {
	local := t.TempDir()
	channels := ChannelConfig{
		Alias:  "https://conda.anaconda.org/",
		Custom: map[string]string{"local": local, "mirror": "https://mirror.example.com/internal/"},
	}

	tests := []struct {
		name     string
		input    string
		want     Channel
		isLocal  bool
		errorMsg string
	}{
		{name: "named", input: "conda-forge", want: Channel{Name: "conda-forge", Location: "https://conda.anaconda.org/conda-forge"}},
		{name: "custom directory", input: "local", want: Channel{Name: "local", Location: local}, isLocal: true},
		{name: "custom url", input: "mirror", want: Channel{Name: "mirror", Location: "https://mirror.example.com/internal"}},
		{name: "absolute path", input: local, want: Channel{Name: local, Location: local}, isLocal: true},
		{name: "file url", input: "file://" + filepath.ToSlash(local), want: Channel{Name: local, Location: local}, isLocal: true},
		{name: "http url", input: "https://repo.example.com/chan/", want: Channel{Name: "https://repo.example.com/chan", Location: "https://repo.example.com/chan"}},
		{name: "empty", input: " ", errorMsg: "must not be empty"},
		{name: "bad scheme", input: "s3://bucket/chan", errorMsg: "unsupported channel URL scheme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := channels.Resolve(tt.input)
			if tt.errorMsg != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tt.errorMsg)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.isLocal, got.IsLocal())
		})
	}
}

func TestChannelResolveLocalAlias(t *testing.T) {
	alias := t.TempDir()
	channels := ChannelConfig{Alias: alias}
	got, err := channels.Resolve("conda-forge")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(alias, "conda-forge"), got.Location)
	require.True(t, got.IsLocal())
}

func TestCanonicalize(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	rel, err := filepath.Rel(wd, dir)
	require.NoError(t, err)
	if !strings.HasPrefix(rel, ".") {
		rel = "." + string(filepath.Separator) + rel
	}

	channels := ChannelConfig{Alias: DefaultChannelAlias}
	got, err := channels.Canonicalize(rel)
	require.NoError(t, err)
	require.Equal(t, dir, got)

	got, err = channels.Canonicalize("conda-forge")
	require.NoError(t, err)
	require.Equal(t, "conda-forge", got)
}
