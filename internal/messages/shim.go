package messages

// Shim messages.
const (
	ShimCreateBinDirFmt       = "failed to create bin directory %s: %w"
	ShimReadBinDirFmt         = "failed to read bin directory %s: %w"
	ShimReadFmt               = "failed to read shim %s: %w"
	ShimWriteFmt              = "failed to write shim %s: %w"
	ShimRemoveFmt             = "failed to remove shim %s: %w"
	ShimExposeFmt             = "cannot expose %s: %w"
	ShimExecutableNotFoundFmt = "%w: %s in %s"
	ShimOwnedFmt              = "%w: %s is exposed by environment %s"
	ShimForeignFileFmt        = "%w: %s already exists; remove it or choose another exposed name"
)
