package messages

// Manifest messages.
const (
	ManifestNotFoundFmt               = "%w: %s"
	ManifestReadFailedFmt             = "failed to read manifest %s: %w"
	ManifestDecodeFailedFmt           = "%w: %s: %v"
	ManifestUnrecognizedKeysFmt       = "%w: %s contains unrecognized keys: %s"
	ManifestUnsupportedVersionFmt     = "%w: %s has version %d, expected %d"
	ManifestEnvironmentInvalidFmt     = "%w: %s: environment %q: %w"
	ManifestEncodeFailedFmt           = "failed to encode manifest: %w"
	ManifestCreateDirFmt              = "failed to create manifest directory %s: %w"
	ManifestWriteFailedFmt            = "failed to write manifest %s: %w"
	ManifestEnvironmentNotFoundFmt    = "%w: %s"
	ManifestEnvironmentExistsFmt      = "%w: %s"
	ManifestChannelEmptyFmt           = "environment %s lists an empty channel"
	ManifestDependencyNameEmptyFmt    = "environment %s: dependency has no package name"
	ManifestExposedNameTakenFmt       = "%w: %s is exposed by environment %s"
	ManifestExecutableEmptyFmt        = "exposed name %s maps to an empty executable"
	ManifestDependencyTypeFmt         = "dependency %s must be a version string or a table"
	ManifestDependencyFieldTypeFmt    = "dependency %s: field %s must be a string"
	ManifestDependencyFieldUnknownFmt = "dependency %s: unknown field %s"
	ManifestOpenLockFmt               = "failed to open manifest lock %s: %w"
	ManifestLockFmt                   = "failed to lock manifest %s: %w"
	ManifestLockTimeoutFmt            = "timed out after %s waiting for another genv command to finish"
	ManifestCreatePromptTitle         = "No global manifest found. Create a new one?"
)
