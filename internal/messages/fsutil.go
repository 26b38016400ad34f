package messages

// Fsutil messages.
const (
	FsutilCreateTempFmt = "failed to create temp file for %s: %w"
	FsutilWriteTempFmt  = "failed to write temp file for %s: %w"
	FsutilChmodFmt      = "failed to set permissions for %s: %w"
	FsutilRenameFmt     = "failed to replace %s: %w"
)
