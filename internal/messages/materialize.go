package messages

// Materialize messages.
const (
	MaterializeNotFoundFmt           = "%w: %s"
	MaterializeOpenFmt               = "failed to open %s: %w"
	MaterializeCreateRequestFmt      = "failed to create request for %s: %w"
	MaterializeStatusFmt             = "failed to fetch %s: %s"
	MaterializeDecodeRepodataFmt     = "failed to decode %s: %w"
	MaterializeChannelUnavailableFmt = "%w: %s has no repodata for %s or noarch"
	MaterializeUnsatisfiableFmt      = "%w: no build of %s satisfies %s"
	MaterializeDependencyFmt         = "%s: invalid dependency %q: %w"
	MaterializeConflictFmt           = "%w: %s requires %q but %s was already selected"
	MaterializeDecompressFmt         = "failed to decompress %s: %w"
	MaterializeUnsupportedArchiveFmt = "%w: %s"
	MaterializeExtractMemberFmt      = "failed to extract %s from %s: %w"
	MaterializeUnsafePathFmt         = "%w: %s"
	MaterializeUnsafeLinkFmt         = "%w: %s links to %s"
	MaterializeExtractFmt            = "failed to extract %s: %w"
	MaterializeFetchFmt              = "failed to fetch %s: %w"
	MaterializeChecksumFmt           = "%w: %s expected sha256 %s, got %s"
	MaterializeLinkFmt               = "failed to link %s into %s: %w"
	MaterializeUnlinkFmt             = "failed to unlink %s: %w"
	MaterializeCreatePrefixFmt       = "failed to create prefix %s: %w"
	MaterializeRemovePrefixFmt       = "failed to remove prefix %s: %w"
	MaterializeDebugSolvedFmt        = "debug: %s: solved %d packages for %s\n"
	MaterializeDebugUnlinkFmt        = "debug: unlink %s\n"
	MaterializeDebugLinkFmt          = "debug: link %s from %s\n"
)
