package config

import (
	"fmt"
	"strings"

	"github.com/conn-castle/globalenv/internal/messages"
)

// Validate ensures the config is complete and consistent.
func (c *Config) Validate(path string) error {
	if len(c.ChannelDefaults) == 0 {
		return fmt.Errorf(messages.ConfigDefaultChannelsRequiredFmt, path)
	}
	for i, channel := range c.ChannelDefaults {
		if strings.TrimSpace(channel) == "" {
			return fmt.Errorf(messages.ConfigDefaultChannelEmptyFmt, path, i)
		}
	}
	if strings.TrimSpace(c.ChannelAlias) == "" {
		return fmt.Errorf(messages.ConfigChannelAliasRequiredFmt, path)
	}
	for name, target := range c.CustomChannels {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf(messages.ConfigCustomChannelNameEmptyFmt, path)
		}
		if strings.TrimSpace(target) == "" {
			return fmt.Errorf(messages.ConfigCustomChannelTargetEmptyFmt, path, name)
		}
	}
	return nil
}
