package messages

// Warnings messages.
const (
	WarningsNoiseModeInvalidFmt    = "unknown warnings.noise_mode %q (expected %q, %q or %q)"
	WarningsNoiseModeInvalidFix    = "set warnings.noise_mode in config.toml to a supported value"
	WarningsAutoExposedFmt         = "exposed %s from dependency %s because %s ships no executable of that name"
	WarningsAutoExposedFix         = "pass --expose to choose the exposed executables explicitly"
	WarningsExposedNameInvalidFmt  = "did not expose %s from dependency %s: %v"
	WarningsExposedNameTakenFmt    = "did not expose %s from environment %s because environment %s already exposes it"
	WarningsExposedNameTakenFixFmt = "pass --expose alias=executable with --environment %s to expose it under another name"
)
