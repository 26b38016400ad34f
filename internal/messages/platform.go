package messages

// Platform messages.
const (
	PlatformUnknownFmt    = "unknown platform %q (expected one of linux-64, linux-aarch64, osx-64, osx-arm64, win-64, noarch)"
	PlatformUndetectedFmt = "cannot map %s/%s to a package platform"
)
