package messages

// Prefix messages.
const (
	PrefixReadMetaFmt            = "failed to read %s: %w"
	PrefixReadRecordFmt          = "failed to read package record %s: %w"
	PrefixDecodeRecordFmt        = "failed to decode package record %s: %w"
	PrefixPackageNotInstalledFmt = "%w: %s is not installed in %s"
	PrefixWriteRecordFmt         = "failed to write package record for %s: %w"
	PrefixRemoveRecordFmt        = "failed to remove package record for %s: %w"
)
