package messages

// Config messages.
const (
	ConfigReadFailedFmt               = "failed to read config %s: %w"
	ConfigInvalidFmt                  = "invalid config %s: %w"
	ConfigUnrecognizedKeysFmt         = "config %s contains unrecognized keys: %v"
	ConfigDefaultChannelsRequiredFmt  = "%s: default_channels must list at least one channel"
	ConfigDefaultChannelEmptyFmt      = "%s: default_channels[%d] must not be empty"
	ConfigChannelAliasRequiredFmt     = "%s: channel_alias must not be empty"
	ConfigCustomChannelNameEmptyFmt   = "%s: custom_channels contains an empty channel name"
	ConfigCustomChannelTargetEmptyFmt = "%s: custom_channels.%s must not be empty"
	ConfigExpandHomeFmt               = "failed to expand %q: %w"
	ConfigResolveHomeFmt              = "failed to resolve home directory: %w"
	ConfigChannelEmpty                = "channel name must not be empty"
	ConfigChannelResolveFmt           = "failed to resolve channel %s: %w"
	ConfigChannelSchemeFmt            = "unsupported channel URL scheme in %q (use a directory, file://, http:// or https://)"
)
