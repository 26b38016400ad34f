package messages

// Match spec messages.
const (
	MatchSpecEmpty             = "package spec must not be empty"
	MatchSpecEmptyChannelFmt   = "package spec %q has an empty channel before '::'"
	MatchSpecInvalidVersionFmt = "invalid version constraint %q in %q: %v"
	MatchSpecEmptyAtomFmt      = "version constraint %q contains an empty clause"
)
