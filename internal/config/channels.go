package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"

	"github.com/conn-castle/globalenv/internal/messages"
)

const (
	// DefaultChannel is used when neither the CLI nor the config names a channel.
	DefaultChannel = "conda-forge"
	// DefaultChannelAlias is the base named channels resolve against.
	DefaultChannelAlias = "https://conda.anaconda.org"
)

// ChannelConfig resolves channel names to locations.
type ChannelConfig struct {
	Alias  string
	Custom map[string]string
}

// Channel is a resolved channel. Location is either an absolute directory or an http(s) URL.
type Channel struct {
	Name     string
	Location string
}

// IsLocal reports whether the channel lives on the local filesystem.
func (c Channel) IsLocal() bool {
	return !strings.HasPrefix(c.Location, "http://") && !strings.HasPrefix(c.Location, "https://")
}

// Resolve maps a channel name, URL or path to its location.
func (c ChannelConfig) Resolve(name string) (Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Channel{}, errors.New(messages.ConfigChannelEmpty)
	}
	if target, ok := c.Custom[name]; ok {
		location, err := resolveLocation(target)
		if err != nil {
			return Channel{}, fmt.Errorf(messages.ConfigChannelResolveFmt, name, err)
		}
		return Channel{Name: name, Location: location}, nil
	}
	if isLocationLike(name) {
		location, err := resolveLocation(name)
		if err != nil {
			return Channel{}, fmt.Errorf(messages.ConfigChannelResolveFmt, name, err)
		}
		return Channel{Name: location, Location: location}, nil
	}
	base, err := resolveLocation(c.Alias)
	if err != nil {
		return Channel{}, fmt.Errorf(messages.ConfigChannelResolveFmt, name, err)
	}
	if strings.Contains(base, "://") {
		return Channel{Name: name, Location: strings.TrimRight(base, "/") + "/" + name}, nil
	}
	return Channel{Name: name, Location: filepath.Join(base, name)}, nil
}

// Canonicalize returns the spelling of a channel stored in the manifest: named channels keep
// their name, paths become absolute.
func (c ChannelConfig) Canonicalize(name string) (string, error) {
	channel, err := c.Resolve(name)
	if err != nil {
		return "", err
	}
	return channel.Name, nil
}

func isLocationLike(name string) bool {
	if strings.Contains(name, "://") {
		return true
	}
	if strings.HasPrefix(name, "~") || strings.HasPrefix(name, ".") || filepath.IsAbs(name) {
		return true
	}
	return strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator)
}

func resolveLocation(target string) (string, error) {
	target = strings.TrimSpace(target)
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return strings.TrimRight(target, "/"), nil
	}
	if strings.HasPrefix(target, "file://") {
		parsed, err := url.Parse(target)
		if err != nil {
			return "", err
		}
		target = filepath.FromSlash(parsed.Path)
	} else if strings.Contains(target, "://") {
		return "", fmt.Errorf(messages.ConfigChannelSchemeFmt, target)
	}
	expanded, err := homedir.Expand(target)
	if err != nil {
		return "", err
	}
	return filepath.Abs(expanded)
}
