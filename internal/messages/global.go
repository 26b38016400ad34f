package messages

// Global install messages.
const (
	GlobalAmbiguousMappingFmt = "%w: --expose needs exactly one target environment, got %d (%s); pass --environment"
	GlobalStageFmt            = "environment %s: %s: %v"
	GlobalRevertFmt           = "could not install environment %s (%v), and reverting also failed: %v; manual cleanup may be needed, run `genv sync` once the cause is fixed"
	GlobalNotInstalledFmt     = "packages were not installed: %w"
	GlobalSaveFmt             = "failed to save manifest: %w"
	GlobalListEnvsFmt         = "failed to list environments in %s: %w"
	GlobalPruneFmt            = "failed to remove environment %s: %w"
	GlobalSyncFmt             = "environment %s could not be synced: %w"
	GlobalInstalledFmt        = "Installed environment %s\n"
	GlobalExposedFmt          = "  exposed %s -> %s\n"
	GlobalRemovedFmt          = "Removed environment %s\n"
)
